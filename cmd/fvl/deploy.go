package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fvl-lang/fvl/core"
	"github.com/fvl-lang/fvl/ir"
)

var deployFrom string

var deployCmd = &cobra.Command{
	Use:               "deploy <file>",
	Short:             "Deploy a declarative template as a new system",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: svcInit,
	RunE:              runDeploy,
}

func init() {
	deployCmd.Flags().StringVar(&deployFrom, "from", "", "deploying address (default: configured sender)")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	text, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	sender, err := resolveSender(deployFrom)
	if err != nil {
		return err
	}

	tx := core.Transaction{
		Kind:    core.TxDeploy,
		Sender:  sender,
		Nonce:   nextNonce(sender),
		Payload: core.DeployPayload{Template: text},
	}
	rec, err := svc.seq.Submit(tx)
	if err != nil {
		return err
	}
	return reportReceipt(cmd, rec)
}

// resolveSender returns explicit if non-empty, otherwise the configured
// default sender.
func resolveSender(explicit string) (ir.Address, error) {
	if explicit != "" {
		return parseAddress(explicit)
	}
	return defaultSender()
}

func reportReceipt(cmd *cobra.Command, rec core.Receipt) error {
	printResult(rec, func() {
		if rec.Success {
			fmt.Fprintf(cmd.OutOrStdout(), "block %d: ok (%d events)\n", rec.BlockNumber, len(rec.Events))
			for _, ev := range rec.Events {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %v\n", ev.Kind, ev.Data)
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "block %d: failed: %s\n", rec.BlockNumber, rec.Error)
		}
	})
	if !rec.Success {
		os.Exit(1)
	}
	return nil
}
