// Package sequencer assembles admitted transactions into a single-writer,
// append-only block log and replays that log deterministically from
// genesis. One transaction produces exactly one block.
package sequencer

import (
	"encoding/binary"
	"sort"

	"github.com/fvl-lang/fvl/core"
	"github.com/fvl-lang/fvl/ir"
)

// EventRecord is the RLP-friendly form of core.Event: rlp cannot encode a
// map, so Data is flattened into two parallel, key-sorted slices.
type EventRecord struct {
	Kind   string
	Keys   []string
	Values []string
}

// BlockRecord is one persisted entry of the block log. Tx carries the full
// canonical transaction encoding so replay can reconstruct it exactly;
// StateRoot is the root *after* this block was applied. ParentHash chains
// each block to the one before it (block 1's parent hash is all zeros,
// standing in for the implicit, unrecorded genesis block 0); Hash is this
// block's own hash, computed over the other fields.
type BlockRecord struct {
	Number     uint64
	ParentHash [32]byte
	Tx         []byte
	Success    bool
	ErrorKind  string
	Events     []EventRecord
	StateRoot  [32]byte
	Timestamp  uint64
	Hash       [32]byte
}

// ComputeHash derives the block hash: hash(parent_hash || number ||
// timestamp || canonical_tx_bytes || state_root), each field length
// prefixed. It depends only on fields fixed before sealing, so it can be
// recomputed identically during replay.
func (r BlockRecord) ComputeHash() ir.Hash {
	var buf []byte
	buf = appendBytes(buf, r.ParentHash[:])
	buf = appendU64(buf, r.Number)
	buf = appendU64(buf, r.Timestamp)
	buf = appendBytes(buf, r.Tx)
	buf = appendBytes(buf, r.StateRoot[:])
	return ir.Sum(buf)
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendBytes(buf, data []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, data...)
}

func toEventRecords(events []core.Event) []EventRecord {
	out := make([]EventRecord, 0, len(events))
	for _, e := range events {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]string, len(keys))
		for i, k := range keys {
			values[i] = e.Data[k]
		}
		out = append(out, EventRecord{Kind: e.Kind, Keys: keys, Values: values})
	}
	return out
}

func fromEventRecords(records []EventRecord) []core.Event {
	out := make([]core.Event, 0, len(records))
	for _, r := range records {
		data := make(map[string]string, len(r.Keys))
		for i, k := range r.Keys {
			if i < len(r.Values) {
				data[k] = r.Values[i]
			}
		}
		out = append(out, core.Event{Kind: r.Kind, Data: data})
	}
	return out
}
