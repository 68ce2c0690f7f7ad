package sequencer

import (
	"fmt"
	"sync"
	"time"

	"github.com/fvl-lang/fvl/core"
	"github.com/fvl-lang/fvl/ir"
)

// Sequencer is the single writer of the rollup: every transaction it
// admits is applied, persisted as one block, and the world's state root
// advanced, all under one lock (single-writer concurrency model, no
// concurrent apply calls are ever in flight).
type Sequencer struct {
	mu    sync.Mutex
	world *core.World
	log   *BlockLog
	clock func() uint64

	lastTimestamp uint64
	lastHash      ir.Hash // zero until block 1 is sealed; block 1's parent hash is all zeros
}

// New wires a Sequencer around an already-initialised world and an open
// block log. clock defaults to the wall clock; tests may override it to
// get a deterministic, controllable timestamp source. lastHash is the hash
// of the most recently sealed block (the zero hash if the log is empty),
// so the next sealed block's parent hash chains correctly; callers
// restarting from disk pass the value ReplayFromGenesis returns.
func New(world *core.World, log *BlockLog, clock func() uint64, lastHash ir.Hash) *Sequencer {
	if clock == nil {
		clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	return &Sequencer{world: world, log: log, clock: clock, lastHash: lastHash}
}

// Submit applies tx against the current world, persists the resulting
// block, and returns its receipt. An admission-level error (bad nonce,
// unknown system/oracle/action) never advances the block number or
// touches the log.
func (s *Sequencer) Submit(tx core.Transaction) (core.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if now < s.lastTimestamp {
		now = s.lastTimestamp // clock must never move backwards
	}

	s.world.BlockNumber++
	rec, err := core.Apply(s.world, tx, now)
	if err != nil {
		s.world.BlockNumber-- // admission rejection consumes no block
		return core.Receipt{}, err
	}
	s.lastTimestamp = now
	s.world.StateRoot = core.StateRoot(s.world)

	blockRec := BlockRecord{
		Number:     rec.BlockNumber,
		ParentHash: s.lastHash,
		Tx:         core.EncodeTx(tx),
		Success:    rec.Success,
		ErrorKind:  rec.Error,
		Events:     toEventRecords(rec.Events),
		StateRoot:  s.world.StateRoot,
		Timestamp:  now,
	}
	blockRec.Hash = blockRec.ComputeHash()
	if err := s.log.Append(blockRec); err != nil {
		return core.Receipt{}, err
	}
	s.lastHash = blockRec.Hash
	return rec, nil
}

// World returns the sequencer's live world for read-only queries (balance,
// system inspection). Callers must not mutate it directly.
func (s *Sequencer) World() *core.World {
	return s.world
}

// BlockNumber returns the current chain tip.
func (s *Sequencer) BlockNumber() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.BlockNumber
}

// StateRoot returns the state root as of the current chain tip.
func (s *Sequencer) StateRoot() ir.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.StateRoot
}

// ReplayFromGenesis rebuilds a world by reapplying every block log record
// against a fresh genesis world, verifying the recorded state root and the
// parent-hash chain after each step. A state-root mismatch aborts with
// core.ErrStateDivergence, and a broken parent-hash chain or a record whose
// own hash does not match its contents aborts with core.ErrLogCorruption,
// rather than silently continuing on drifted state. It returns the hash of the last replayed block (the zero hash if
// the log is empty), so the caller can resume sealing with the correct
// next parent hash.
func ReplayFromGenesis(path string, admin ir.Address) (*core.World, ir.Hash, error) {
	records, err := ReadAll(path)
	if err != nil {
		return nil, ir.Hash{}, err
	}
	w := core.NewWorld(admin)
	var lastHash ir.Hash // block 1's parent hash must be all zeros
	for _, rec := range records {
		if ir.Hash(rec.ParentHash) != lastHash {
			return nil, ir.Hash{}, core.ErrLogCorruption(fmt.Sprintf(
				"block %d: parent hash %s does not match block %d's hash %s",
				rec.Number, ir.Hash(rec.ParentHash).Hex(), rec.Number-1, lastHash.Hex()))
		}
		if rec.ComputeHash() != ir.Hash(rec.Hash) {
			return nil, ir.Hash{}, core.ErrLogCorruption(fmt.Sprintf("block %d: recorded hash does not match its own contents", rec.Number))
		}

		tx, err := core.DecodeTx(rec.Tx)
		if err != nil {
			return nil, ir.Hash{}, err
		}
		w.BlockNumber++
		if _, err := core.Apply(w, tx, rec.Timestamp); err != nil {
			return nil, ir.Hash{}, err
		}
		w.StateRoot = core.StateRoot(w)
		if w.StateRoot != ir.Hash(rec.StateRoot) {
			return nil, ir.Hash{}, core.ErrStateDivergence(ir.Hash(rec.StateRoot), w.StateRoot, rec.Number)
		}
		lastHash = ir.Hash(rec.Hash)
	}
	return w, lastHash, nil
}
