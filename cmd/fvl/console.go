package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive REPL over the same commands available one shot",
	Args:  cobra.NoArgs,
	RunE:  runConsole,
}

// historySize bounds the in-memory ring buffer kept by the `history`
// builtin; older lines fall off once it fills.
const historySize = 256

func runConsole(cmd *cobra.Command, args []string) error {
	history := make([]string, 0, historySize)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Fprintln(cmd.OutOrStdout(), "fvl console. Type 'help' for commands, 'exit' to quit.")
	for {
		fmt.Fprint(cmd.OutOrStdout(), "fvl> ")
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		history = append(history, line)
		if len(history) > historySize {
			history = history[len(history)-historySize:]
		}

		switch line {
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprintln(cmd.OutOrStdout(), rootCmd.UsageString())
			continue
		case "history":
			for i, h := range history {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", i+1, h)
			}
			continue
		}

		tokens := strings.Fields(line)
		rootCmd.SetArgs(tokens)
		if err := rootCmd.Execute(); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), renderError(err))
		}
	}
}
