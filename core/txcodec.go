package core

import (
	"encoding/binary"

	"github.com/fvl-lang/fvl/ir"
)

// EncodeTx and DecodeTx give the block log a reversible, deterministic
// transaction encoding so a sequencer can persist a transaction once and
// reconstruct it exactly during replay. The layout mirrors Hash's
// fixed-width/length-prefixed approach, but unlike Hash it must round-trip.
func EncodeTx(tx Transaction) []byte {
	buf := []byte{byte(tx.Kind)}
	buf = append(buf, tx.Sender[:]...)
	buf = appendU64(buf, tx.Nonce)

	switch p := tx.Payload.(type) {
	case DeployPayload:
		buf = appendBytes(buf, p.Template)
	case TransferPayload:
		buf = append(buf, p.From[:]...)
		buf = append(buf, p.To[:]...)
		buf = appendAsset(buf, p.Asset)
		b16 := p.Amount.Bytes16()
		buf = append(buf, b16[:]...)
	case MintPayload:
		buf = append(buf, p.To[:]...)
		buf = appendAsset(buf, p.Asset)
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
	return buf
}

func appendAsset(buf []byte, a ir.Asset) []byte {
	buf = append(buf, byte(a.Kind))
	buf = append(buf, a.Token[:]...)
	b16 := a.ID.Bytes16()
	return append(buf, b16[:]...)
}

type txReader struct {
	buf []byte
	pos int
}

func (r *txReader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return ErrLogCorruption("truncated transaction record")
	}
	return nil
}

func (r *txReader) byte_() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *txReader) u64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *txReader) addr() (ir.Address, error) {
	var a ir.Address
	if err := r.need(len(a)); err != nil {
		return a, err
	}
	copy(a[:], r.buf[r.pos:r.pos+len(a)])
	r.pos += len(a)
	return a, nil
}

func (r *txReader) hash() (ir.Hash, error) {
	var h ir.Hash
	if err := r.need(len(h)); err != nil {
		return h, err
	}
	copy(h[:], r.buf[r.pos:r.pos+len(h)])
	r.pos += len(h)
	return h, nil
}

func (r *txReader) amount16() (ir.Amount, error) {
	var b [16]byte
	if err := r.need(16); err != nil {
		return ir.ZeroAmount, err
	}
	copy(b[:], r.buf[r.pos:r.pos+16])
	r.pos += 16
	return ir.AmountFromBytes16(b), nil
}

// bytesLP reads a 4-byte big-endian length prefix followed by that many
// bytes, matching appendBytes's encoding.
func (r *txReader) bytesLP() ([]byte, error) {
	if err := r.need(4); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	if err := r.need(int(length)); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, r.buf[r.pos:r.pos+int(length)])
	r.pos += int(length)
	return out, nil
}

func (r *txReader) asset() (ir.Asset, error) {
	var a ir.Asset
	kindB, err := r.byte_()
	if err != nil {
		return a, err
	}
	a.Kind = ir.AssetKind(kindB)
	token, err := r.addr()
	if err != nil {
		return a, err
	}
	a.Token = token
	id, err := r.amount16()
	if err != nil {
		return a, err
	}
	a.ID = id
	return a, nil
}

// DecodeTx inverts EncodeTx. It returns an *ErrLogCorruption-kinded error
// on any structural mismatch.
func DecodeTx(data []byte) (Transaction, error) {
	r := &txReader{buf: data}
	kindB, err := r.byte_()
	if err != nil {
		return Transaction{}, err
	}
	tx := Transaction{Kind: TxKind(kindB)}
	if tx.Sender, err = r.addr(); err != nil {
		return Transaction{}, err
	}
	if tx.Nonce, err = r.u64(); err != nil {
		return Transaction{}, err
	}

	switch tx.Kind {
	case TxDeploy:
		tmpl, err := r.bytesLP()
		if err != nil {
			return Transaction{}, err
		}
		tx.Payload = DeployPayload{Template: tmpl}
	case TxTransfer:
		from, err := r.addr()
		if err != nil {
			return Transaction{}, err
		}
		to, err := r.addr()
		if err != nil {
			return Transaction{}, err
		}
		asset, err := r.asset()
		if err != nil {
			return Transaction{}, err
		}
		amt, err := r.amount16()
		if err != nil {
			return Transaction{}, err
		}
		tx.Payload = TransferPayload{From: from, To: to, Asset: asset, Amount: amt}
	case TxMint:
		to, err := r.addr()
		if err != nil {
			return Transaction{}, err
		}
		asset, err := r.asset()
		if err != nil {
			return Transaction{}, err
		}
		amt, err := r.amount16()
		if err != nil {
			return Transaction{}, err
		}
		tx.Payload = MintPayload{To: to, Asset: asset, Amount: amt}
	case TxInteract:
		sysID, err := r.hash()
		if err != nil {
			return Transaction{}, err
		}
		mode, err := r.byte_()
		if err != nil {
			return Transaction{}, err
		}
		action, err := r.bytesLP()
		if err != nil {
			return Transaction{}, err
		}
		tx.Payload = InteractPayload{SystemID: sysID, Mode: InteractMode(mode), Action: string(action)}
	case TxOracleUpdate:
		sysID, err := r.hash()
		if err != nil {
			return Transaction{}, err
		}
		oracle, err := r.bytesLP()
		if err != nil {
			return Transaction{}, err
		}
		val, err := r.amount16()
		if err != nil {
			return Transaction{}, err
		}
		tx.Payload = OracleUpdatePayload{SystemID: sysID, Oracle: string(oracle), Value: val}
	default:
		return Transaction{}, ErrLogCorruption("unknown transaction kind in record")
	}
	return tx, nil
}
