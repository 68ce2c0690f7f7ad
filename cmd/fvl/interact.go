package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fvl-lang/fvl/core"
)

var interactFrom string

var interactCmd = &cobra.Command{
	Use:               "interact <sys-id> {evaluate | trigger <action> | both <action>}",
	Short:             "Evaluate a system's conditions and/or trigger a named action",
	Args:              cobra.RangeArgs(2, 3),
	PersistentPreRunE: svcInit,
	RunE:              runInteract,
}

func init() {
	interactCmd.Flags().StringVar(&interactFrom, "from", "", "calling address (default: configured sender)")
}

func runInteract(cmd *cobra.Command, args []string) error {
	sysID, err := parseSystemID(args[0])
	if err != nil {
		return err
	}

	var mode core.InteractMode
	var action string
	switch args[1] {
	case "evaluate":
		mode = core.ModeEvaluate
	case "trigger":
		if len(args) != 3 {
			return fmt.Errorf("trigger requires an action name")
		}
		mode, action = core.ModeTrigger, args[2]
	case "both":
		if len(args) != 3 {
			return fmt.Errorf("both requires an action name")
		}
		mode, action = core.ModeBoth, args[2]
	default:
		return core.ErrUnknownCommand(args[1])
	}

	sender, err := resolveSender(interactFrom)
	if err != nil {
		return err
	}

	tx := core.Transaction{
		Kind:   core.TxInteract,
		Sender: sender,
		Nonce:  nextNonce(sender),
		Payload: core.InteractPayload{
			SystemID: sysID, Mode: mode, Action: action,
		},
	}
	rec, err := svc.seq.Submit(tx)
	if err != nil {
		return err
	}
	return reportReceipt(cmd, rec)
}
