// Command fvl drives the sequencer interactively or one shot: deploy
// templates, move assets, interact with deployed systems, update oracles,
// inspect state, and replay the block log.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	dataDirFlag   string
	jsonOutput    bool
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:           "fvl",
	Short:         "Sequencer console for declarative coordination templates",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default $FVL_DATA_DIR or ./data)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-parseable JSON output")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "log format: text or json (default $FVL_LOG_FORMAT)")

	rootCmd.AddCommand(deployCmd, transferCmd, mintCmd, interactCmd, oracleUpdateCmd,
		stateCmd, blocksCmd, replayCmd, configCmd, consoleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(exitCodeFor(err))
	}
}
