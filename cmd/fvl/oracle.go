package main

import (
	"github.com/spf13/cobra"

	"github.com/fvl-lang/fvl/core"
)

var oracleUpdateCmd = &cobra.Command{
	Use:               "oracle-update <sys-id> <oracle> <value>",
	Short:             "Write a new oracle value (deployer only)",
	Args:              cobra.ExactArgs(3),
	PersistentPreRunE: svcInit,
	RunE:              runOracleUpdate,
}

func runOracleUpdate(cmd *cobra.Command, args []string) error {
	sysID, err := parseSystemID(args[0])
	if err != nil {
		return err
	}
	sys, err := lookupSystem(sysID)
	if err != nil {
		return err
	}
	value, err := parseAmount(args[2])
	if err != nil {
		return err
	}

	tx := core.Transaction{
		Kind:   core.TxOracleUpdate,
		Sender: sys.Deployer,
		Nonce:  nextNonce(sys.Deployer),
		Payload: core.OracleUpdatePayload{
			SystemID: sysID, Oracle: args[1], Value: value,
		},
	}
	rec, err := svc.seq.Submit(tx)
	if err != nil {
		return err
	}
	return reportReceipt(cmd, rec)
}
