package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/fvl-lang/fvl/ir"
)

// anchorRecord is the on-disk shape of the last accepted submission: a
// small JSON document rewritten atomically on each update.
type anchorRecord struct {
	BlockNumber uint64 `json:"block_number"`
	StateRoot   string `json:"state_root"`
	Submitter   string `json:"submitter"`
}

// FileContract is a local stand-in for an on-chain settlement contract: it
// persists the latest accepted anchor to a JSON file. It satisfies
// Contract so the submitter's polling loop and backoff logic can be
// exercised and tested without a live chain.
type FileContract struct {
	mu   sync.Mutex
	path string
}

// NewFileContract returns a file-backed contract at path. Nothing is opened
// here; the file is first written by an accepted submission.
func NewFileContract(path string) *FileContract {
	return &FileContract{path: path}
}

func (c *FileContract) read() (anchorRecord, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return anchorRecord{}, nil
	}
	if err != nil {
		return anchorRecord{}, err
	}
	var rec anchorRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return anchorRecord{}, fmt.Errorf("decode anchor record: %w", err)
	}
	return rec, nil
}

// SubmitStateRoot rejects any blockNumber that does not strictly exceed
// the previously accepted one.
func (c *FileContract) SubmitStateRoot(ctx context.Context, blockNumber uint64, root ir.Hash) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, err := c.read()
	if err != nil {
		return err
	}
	if blockNumber <= cur.BlockNumber && cur.BlockNumber != 0 {
		return fmt.Errorf("settlement: block %d is not strictly after latest %d", blockNumber, cur.BlockNumber)
	}
	rec := anchorRecord{BlockNumber: blockNumber, StateRoot: root.Hex()}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

func (c *FileContract) LatestBlockNumber(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, err := c.read()
	if err != nil {
		return 0, err
	}
	return rec.BlockNumber, nil
}

func (c *FileContract) LatestStateRoot(ctx context.Context) (ir.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, err := c.read()
	if err != nil {
		return ir.Hash{}, err
	}
	if rec.StateRoot == "" {
		return ir.Hash{}, nil
	}
	return ir.ParseHash(rec.StateRoot)
}
