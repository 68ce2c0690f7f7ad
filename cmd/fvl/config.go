package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:               "config",
	Short:             "Show or edit the node configuration",
	PersistentPreRunE: svcInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetSenderCmd = &cobra.Command{
	Use:   "set-sender <addr>",
	Short: "Persist the default sender address",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetSender,
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetSenderCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	printResult(svc.cfg, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "admin_address:  %s\n", svc.cfg.AdminAddress)
		fmt.Fprintf(cmd.OutOrStdout(), "data_dir:       %s\n", svc.cfg.DataDir)
		fmt.Fprintf(cmd.OutOrStdout(), "default_sender: %s\n", svc.cfg.DefaultSender)
		fmt.Fprintf(cmd.OutOrStdout(), "rpc_url:        %s\n", svc.cfg.RPCURL)
	})
	return nil
}

func runConfigSetSender(cmd *cobra.Command, args []string) error {
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	if err := svc.cfg.SetSender(addr.Hex()); err != nil {
		return err
	}
	printResult(map[string]string{"default_sender": addr.Hex()}, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "default sender set to %s\n", addr.Hex())
	})
	return nil
}
