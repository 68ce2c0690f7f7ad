package core

import (
	"encoding/binary"

	"github.com/fvl-lang/fvl/ir"
)

// Hash returns the canonical transaction hash used as the receipt's TxHash
// and as the block log's per-record identity. Encoding mirrors the
// template package's approach: fixed-width fields, explicit length
// prefixes, no reliance on map iteration order.
func (t Transaction) Hash() ir.Hash {
	var buf []byte
	buf = append(buf, byte(t.Kind))
	buf = append(buf, t.Sender[:]...)
	buf = appendU64(buf, t.Nonce)

	switch p := t.Payload.(type) {
	case DeployPayload:
		buf = appendBytes(buf, p.Template)
	case TransferPayload:
		buf = append(buf, p.From[:]...)
		buf = append(buf, p.To[:]...)
		buf = appendBytes(buf, assetBytes(p.Asset))
		b16 := p.Amount.Bytes16()
		buf = append(buf, b16[:]...)
	case MintPayload:
		buf = append(buf, p.To[:]...)
		buf = appendBytes(buf, assetBytes(p.Asset))
		b16 := p.Amount.Bytes16()
		buf = append(buf, b16[:]...)
	case InteractPayload:
		buf = append(buf, p.SystemID[:]...)
		buf = append(buf, byte(p.Mode))
		buf = appendBytes(buf, []byte(p.Action))
	case OracleUpdatePayload:
		buf = append(buf, p.SystemID[:]...)
		buf = appendBytes(buf, []byte(p.Oracle))
		b16 := p.Value.Bytes16()
		buf = append(buf, b16[:]...)
	}
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

// assetBytes gives a stable byte encoding of an asset for hashing purposes.
func assetBytes(a ir.Asset) []byte {
	return []byte(a.Key())
}
