package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fvl-lang/fvl/ir"
	"github.com/fvl-lang/fvl/pkg/utils"
)

// Chain is the read side a Submitter polls: the sequencer's current block
// number and state root. *sequencer.Sequencer satisfies it without this
// package importing sequencer or core directly.
type Chain interface {
	BlockNumber() uint64
	StateRoot() ir.Hash
}

// Submitter runs the settlement poll loop: every FVL_POLL_INTERVAL seconds
// it checks whether the local tip has advanced by at least
// FVL_SUBMIT_INTERVAL blocks past whatever the contract last accepted, and
// if so anchors the current state root. It never mutates chain state and
// coordinates with the sequencer purely by snapshot read.
type Submitter struct {
	chain    Chain
	contract Contract
	signer   *Signer
	log      *logrus.Logger

	pollInterval   time.Duration
	submitInterval uint64
	maxBackoff     time.Duration

	closing chan struct{}
	wg      sync.WaitGroup
}

// NewSubmitter wires a Submitter from FVL_POLL_INTERVAL (seconds) and
// FVL_SUBMIT_INTERVAL (blocks). FVL_SUBMIT_MAX_BACKOFF_SEC bounds the
// exponential backoff applied after a transient submission failure.
func NewSubmitter(chain Chain, contract Contract, signer *Signer, log *logrus.Logger) *Submitter {
	if log == nil {
		log = logrus.New()
	}
	pollSeconds := utils.EnvOrDefaultUint64("FVL_POLL_INTERVAL", 10)
	maxBackoffSeconds := utils.EnvOrDefaultUint64("FVL_SUBMIT_MAX_BACKOFF_SEC", 300)
	return &Submitter{
		chain:          chain,
		contract:       contract,
		signer:         signer,
		log:            log,
		pollInterval:   time.Duration(pollSeconds) * time.Second,
		submitInterval: utils.EnvOrDefaultUint64("FVL_SUBMIT_INTERVAL", 1),
		maxBackoff:     time.Duration(maxBackoffSeconds) * time.Second,
		closing:        make(chan struct{}),
	}
}

// Start launches the polling loop.
func (s *Submitter) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop terminates the loop and waits for any in-flight submission to drain.
func (s *Submitter) Stop() {
	close(s.closing)
	s.wg.Wait()
}

func (s *Submitter) loop(ctx context.Context) {
	defer s.wg.Done()

	backoff := s.pollInterval
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closing:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			cycleID := uuid.New().String()
			if err := s.cycle(ctx, cycleID); err != nil {
				s.log.WithError(err).WithField("cycle_id", cycleID).Warn("settlement: cycle failed, backing off")
				backoff *= 2
				if backoff > s.maxBackoff {
					backoff = s.maxBackoff
				}
				ticker.Reset(backoff)
				continue
			}
			if backoff != s.pollInterval {
				backoff = s.pollInterval
				ticker.Reset(backoff)
			}
		}
	}
}

// cycle implements one poll cycle: read the remote tip, compare to the
// local tip, and submit only once the gap reaches submitInterval blocks.
// When a signer is set, the state root is signed first and a signing
// failure fails the cycle; the signature is not passed on, since
// Contract.SubmitStateRoot takes none. cycleID correlates this cycle's log
// lines.
func (s *Submitter) cycle(ctx context.Context, cycleID string) error {
	remoteTip, err := s.contract.LatestBlockNumber(ctx)
	if err != nil {
		return err
	}
	localTip := s.chain.BlockNumber()
	if localTip <= remoteTip {
		return nil
	}
	if localTip-remoteTip < s.submitInterval {
		return nil
	}

	root := s.chain.StateRoot()
	if s.signer != nil {
		if _, err := s.signer.Sign(root); err != nil {
			return err
		}
	}
	if err := s.contract.SubmitStateRoot(ctx, localTip, root); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"cycle_id": cycleID,
		"block":    localTip,
		"root":     root.Hex(),
	}).Info("settlement: submitted state root")
	return nil
}
