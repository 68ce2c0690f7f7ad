package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fvl-lang/fvl/ir"
)

var stateCmd = &cobra.Command{
	Use:               "state",
	Short:             "Inspect balances and deployed systems",
	PersistentPreRunE: svcInit,
}

var stateBalanceCmd = &cobra.Command{
	Use:   "balance <addr> <asset>",
	Short: "Show an address's balance of an asset",
	Args:  cobra.ExactArgs(2),
	RunE:  runStateBalance,
}

var stateSystemCmd = &cobra.Command{
	Use:   "system <sys-id>",
	Short: "Show a deployed system's state",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateSystem,
}

func init() {
	stateCmd.AddCommand(stateBalanceCmd, stateSystemCmd)
}

func runStateBalance(cmd *cobra.Command, args []string) error {
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	asset, err := parseAsset(args[1])
	if err != nil {
		return err
	}

	world := svc.seq.World()
	acct := world.Accounts[addr]
	var balance ir.Amount
	if acct != nil {
		balance = acct.Balance(asset)
	}

	printResult(map[string]string{"address": addr.Hex(), "asset": asset.Key(), "balance": balance.String()}, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", balance.String())
	})
	return nil
}

type systemView struct {
	ID             string            `json:"id"`
	Deployer       string            `json:"deployer"`
	DeployedAt     uint64            `json:"deployed_at"`
	Paused         bool              `json:"paused"`
	TotalCollected map[string]string `json:"total_collected"`
	OracleValues   map[string]string `json:"oracle_values"`
}

func runStateSystem(cmd *cobra.Command, args []string) error {
	sysID, err := parseSystemID(args[0])
	if err != nil {
		return err
	}
	sys, err := lookupSystem(sysID)
	if err != nil {
		return err
	}

	view := systemView{
		ID:             sys.ID.Hex(),
		Deployer:       sys.Deployer.Hex(),
		DeployedAt:     sys.DeployedAt,
		Paused:         sys.Paused,
		TotalCollected: make(map[string]string, len(sys.TotalCollected)),
		OracleValues:   make(map[string]string, len(sys.OracleValues)),
	}
	for k, v := range sys.TotalCollected {
		view.TotalCollected[k] = v.String()
	}
	for k, v := range sys.OracleValues {
		view.OracleValues[k] = v.String()
	}

	printResult(view, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "system %s\n", view.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "  deployer:     %s\n", view.Deployer)
		fmt.Fprintf(cmd.OutOrStdout(), "  deployed_at:  %d\n", view.DeployedAt)
		fmt.Fprintf(cmd.OutOrStdout(), "  paused:       %v\n", view.Paused)
		for k, v := range view.TotalCollected {
			fmt.Fprintf(cmd.OutOrStdout(), "  collected[%s]: %s\n", k, v)
		}
		for k, v := range view.OracleValues {
			fmt.Fprintf(cmd.OutOrStdout(), "  oracle[%s]:    %s\n", k, v)
		}
	})
	return nil
}
