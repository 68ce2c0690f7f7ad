package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fvl-lang/fvl/core"
	"github.com/fvl-lang/fvl/sequencer"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rebuild state from the block log and verify it matches the live root",
	Args:  cobra.NoArgs,
	// replay registers no PersistentPreRunE: runReplay calls svcInit itself
	// for the config, then re-derives a world from the block log on disk
	// independently of the world the service holds.
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	if err := svcInit(cmd, args); err != nil {
		return err
	}

	admin, err := resolveAdmin(svc.cfg)
	if err != nil {
		return err
	}
	world, _, err := sequencer.ReplayFromGenesis(svc.cfg.Path("blocks.log"), admin)
	if err != nil {
		return err
	}

	root := core.StateRoot(world)
	printResult(map[string]any{
		"block_number": world.BlockNumber,
		"state_root":   root.Hex(),
		"verified":     true,
	}, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "replayed %d blocks, state root %s\n", world.BlockNumber, root.Hex())
	})
	return nil
}
