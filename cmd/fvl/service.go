package main

// service.go wires the singleton runtime shared by every subcommand:
// loaded config, an open block log, and the sequencer built on top of it.
// Every *.go file in this package is one CLI concern (deploy, transfer,
// mint, interact, oracle, state, blocks, replay, config), following the
// coin.go middleware pattern: a package-level sync.Once guards lazy init
// so the first command that runs pays the startup cost and every other
// command in the same process reuses it.

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fvl-lang/fvl/core"
	"github.com/fvl-lang/fvl/ir"
	"github.com/fvl-lang/fvl/pkg/config"
	"github.com/fvl-lang/fvl/pkg/utils"
	"github.com/fvl-lang/fvl/sequencer"
)

var (
	svcOnce sync.Once
	svcErr  error
	svc     *service
)

type service struct {
	cfg *config.Config
	log *logrus.Logger
	seq *sequencer.Sequencer
	bl  *sequencer.BlockLog
}

// svcInit is the PersistentPreRunE of the subcommands that use the shared
// service (console registers none; replay calls it directly): it lazily builds the
// shared service on first use and replays the on-disk log so the
// sequencer's in-memory world matches what was last persisted.
func svcInit(cmd *cobra.Command, _ []string) error {
	svcOnce.Do(func() {
		log := newLogger()

		cfg, err := config.Load(dataDirFlag)
		if err != nil {
			svcErr = fmt.Errorf("load config: %w", err)
			return
		}

		admin, err := resolveAdmin(cfg)
		if err != nil {
			svcErr = err
			return
		}

		bl, err := sequencer.OpenBlockLog(cfg.Path("blocks.log"))
		if err != nil {
			svcErr = fmt.Errorf("open block log: %w", err)
			return
		}

		world, lastHash, err := sequencer.ReplayFromGenesis(cfg.Path("blocks.log"), admin)
		if err != nil {
			svcErr = fmt.Errorf("replay block log: %w", err)
			return
		}

		svc = &service{
			cfg: cfg,
			log: log,
			bl:  bl,
			seq: sequencer.New(world, bl, nil, lastHash),
		}
	})
	return svcErr
}

func resolveAdmin(cfg *config.Config) (ir.Address, error) {
	if cfg.AdminAddress == "" {
		return ir.Address{}, fmt.Errorf("config: admin_address is not set")
	}
	return ir.ParseAddress(cfg.AdminAddress)
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	if jsonOutput || utilsEnvIsJSON() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func utilsEnvIsJSON() bool {
	if logFormatFlag != "" {
		return logFormatFlag == "json"
	}
	return utils.EnvOrDefault("FVL_LOG_FORMAT", "") == "json"
}

// defaultSender resolves the sender for commands that accept an implicit
// --from by falling back to the configured default sender.
func defaultSender() (ir.Address, error) {
	if svc.cfg.DefaultSender == "" {
		return ir.Address{}, fmt.Errorf("no --from given and no default sender configured (see 'config set-sender')")
	}
	return ir.ParseAddress(svc.cfg.DefaultSender)
}

// nextNonce looks up the sender's current nonce under the live world.
func nextNonce(addr ir.Address) uint64 {
	return svc.seq.World().NonceOf(addr)
}

func lookupSystem(id ir.Hash) (*core.System, error) {
	sys, ok := svc.seq.World().Systems[id]
	if !ok {
		return nil, core.ErrUnknownSystem(id.Hex())
	}
	return sys, nil
}
