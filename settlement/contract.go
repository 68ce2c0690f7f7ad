// Package settlement anchors the sequencer's state roots to an external
// settlement contract: a periodic poll-and-submit loop with strictly
// increasing block numbers and exponential backoff on transient failures.
package settlement

import (
	"context"

	"github.com/fvl-lang/fvl/ir"
)

// Contract is anything that can durably accept a state root anchor and
// report the last one it accepted. The submitter only depends on this
// interface, so a real chain-backed implementation and the local
// FileContract used in development both satisfy it identically.
type Contract interface {
	SubmitStateRoot(ctx context.Context, blockNumber uint64, root ir.Hash) error
	LatestBlockNumber(ctx context.Context) (uint64, error)
	LatestStateRoot(ctx context.Context) (ir.Hash, error)
}
