package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fvl-lang/fvl/pkg/utils"
	"github.com/fvl-lang/fvl/sequencer"
	"github.com/fvl-lang/fvl/settlement"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:               "serve",
	Short:             "Run the sequencer as a long-lived process with metrics and settlement submission",
	Args:              cobra.NoArgs,
	PersistentPreRunE: svcInit,
	RunE:              runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "listen", ":8080", "address for /metrics and /healthz")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	metrics := sequencer.NewMetrics(svc.seq, svc.log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErrs := make(chan error, 1)
	go func() { serveErrs <- metrics.Serve(ctx, serveAddr) }()

	submitter, err := newSubmitterFromEnv()
	if err != nil {
		svc.log.WithError(err).Warn("serve: settlement submission disabled")
	} else {
		submitter.Start(ctx)
		defer submitter.Stop()
	}

	svc.log.Infof("serve: listening on %s", serveAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
		fmt.Fprintln(cmd.OutOrStdout(), "shutting down")
	case err := <-serveErrs:
		return err
	}
	return nil
}

// newSubmitterFromEnv builds a Submitter against a FileContract stored as
// anchor.json in the data directory, signing with the key in FVL_SIGNER_KEY.
// The contract descriptor named by FVL_CONTRACT_FILE must load, but the
// FileContract does not use its fields.
// It is a best-effort construction: a missing descriptor or key disables
// submission rather than failing the whole process, since `serve` is still
// useful as a bare sequencer node.
func newSubmitterFromEnv() (*settlement.Submitter, error) {
	descriptor, err := settlement.LoadDescriptor()
	if err != nil {
		return nil, err
	}
	contract := settlement.NewFileContract(svc.cfg.Path("anchor.json"))

	key := utils.EnvOrDefault("FVL_SIGNER_KEY", "")
	if key == "" {
		return nil, fmt.Errorf("FVL_SIGNER_KEY is not set")
	}
	signer, err := settlement.NewSignerFromHex(key)
	if err != nil {
		return nil, err
	}
	_ = descriptor // network/rpc_url informational only for the local FileContract
	return settlement.NewSubmitter(svc.seq, contract, signer, svc.log), nil
}
