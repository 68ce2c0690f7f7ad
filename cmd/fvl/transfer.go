package main

import (
	"github.com/spf13/cobra"

	"github.com/fvl-lang/fvl/core"
)

var transferCmd = &cobra.Command{
	Use:               "transfer <from> <to> <amt> <asset>",
	Short:             "Move an asset between two addresses",
	Args:              cobra.ExactArgs(4),
	PersistentPreRunE: svcInit,
	RunE:              runTransfer,
}

func runTransfer(cmd *cobra.Command, args []string) error {
	from, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	to, err := parseAddress(args[1])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		return err
	}
	asset, err := parseAsset(args[3])
	if err != nil {
		return err
	}

	tx := core.Transaction{
		Kind:   core.TxTransfer,
		Sender: from,
		Nonce:  nextNonce(from),
		Payload: core.TransferPayload{
			From: from, To: to, Amount: amount, Asset: asset,
		},
	}
	rec, err := svc.seq.Submit(tx)
	if err != nil {
		return err
	}
	return reportReceipt(cmd, rec)
}
