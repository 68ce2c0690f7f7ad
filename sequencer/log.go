package sequencer

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/fvl-lang/fvl/core"
)

// BlockLog is the append-only, fsync-before-ack file backing the
// sequencer. Each record is RLP-encoded and framed with a 4-byte
// big-endian length prefix so a partially-written tail record can be
// detected and reported rather than silently corrupting the next read.
type BlockLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenBlockLog opens (creating if necessary) the block log at path for
// appending. Existing content is left untouched; callers that need to
// replay history should use ReadAll or ReplayFromGenesis first.
func OpenBlockLog(path string) (*BlockLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open block log: %w", err)
	}
	return &BlockLog{file: f}, nil
}

// Append writes one record and fsyncs before returning, so an
// acknowledged block is durable even across a crash immediately after.
func (l *BlockLog) Append(rec BlockRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	enc, err := rlp.EncodeToBytes(&rec)
	if err != nil {
		return core.ErrIoFailure(fmt.Sprintf("encode block record: %v", err))
	}
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(enc)))
	if _, err := l.file.Write(lenPrefix[:]); err != nil {
		return core.ErrIoFailure(err.Error())
	}
	if _, err := l.file.Write(enc); err != nil {
		return core.ErrIoFailure(err.Error())
	}
	return l.file.Sync()
}

// Close releases the underlying file.
func (l *BlockLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// ReadAll reads every complete record currently in the log, in order. A
// trailing partial record (a crash mid-write) is reported via
// core.ErrLogCorruption rather than silently dropped.
func ReadAll(path string) ([]BlockRecord, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open block log: %w", err)
	}
	defer f.Close()

	var records []BlockRecord
	var lenPrefix [4]byte
	for {
		if _, err := io.ReadFull(f, lenPrefix[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, core.ErrLogCorruption("truncated record length prefix")
		}
		length := binary.BigEndian.Uint32(lenPrefix[:])
		buf := make([]byte, length)
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, core.ErrLogCorruption("truncated record body")
		}
		var rec BlockRecord
		if err := rlp.DecodeBytes(buf, &rec); err != nil {
			return nil, core.ErrLogCorruption(fmt.Sprintf("decode block record: %v", err))
		}
		records = append(records, rec)
	}
	return records, nil
}
