package main

import (
	"github.com/spf13/cobra"

	"github.com/fvl-lang/fvl/core"
)

var mintCmd = &cobra.Command{
	Use:               "mint <addr> <amt> <asset>",
	Short:             "Mint an asset to an address (admin only)",
	Args:              cobra.ExactArgs(3),
	PersistentPreRunE: svcInit,
	RunE:              runMint,
}

func runMint(cmd *cobra.Command, args []string) error {
	to, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	asset, err := parseAsset(args[2])
	if err != nil {
		return err
	}

	admin := svc.seq.World().Admin
	tx := core.Transaction{
		Kind:    core.TxMint,
		Sender:  admin,
		Nonce:   nextNonce(admin),
		Payload: core.MintPayload{To: to, Amount: amount, Asset: asset},
	}
	rec, err := svc.seq.Submit(tx)
	if err != nil {
		return err
	}
	return reportReceipt(cmd, rec)
}
