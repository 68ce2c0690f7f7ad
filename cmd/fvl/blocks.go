package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fvl-lang/fvl/ir"
	"github.com/fvl-lang/fvl/sequencer"
)

var blocksCmd = &cobra.Command{
	Use:               "blocks",
	Short:             "List the blocks recorded in the block log",
	Args:              cobra.NoArgs,
	PersistentPreRunE: svcInit,
	RunE:              runBlocks,
}

func runBlocks(cmd *cobra.Command, args []string) error {
	records, err := sequencer.ReadAll(svc.cfg.Path("blocks.log"))
	if err != nil {
		return err
	}

	printResult(records, func() {
		for _, rec := range records {
			status := "ok"
			if !rec.Success {
				status = "failed: " + rec.ErrorKind
			}
			fmt.Fprintf(cmd.OutOrStdout(), "block %d  ts=%d  parent=%s  hash=%s  %s\n",
				rec.Number, rec.Timestamp, ir.Hash(rec.ParentHash).Hex(), ir.Hash(rec.Hash).Hex(), status)
		}
	})
	return nil
}
