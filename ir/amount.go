package ir

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
)

// Amount is an unsigned 128-bit integer, used for every asset quantity,
// threshold, and price in the template IR and runtime. It is backed by
// uint256.Int (the word size go-ethereum's stack already standardizes on)
// but every constructor and arithmetic operation enforces a 128-bit
// ceiling.
type Amount struct {
	v uint256.Int
}

// maxU128 is 2^128 - 1, used to bound-check every Amount produced here.
var maxU128 = func() uint256.Int {
	var one, max uint256.Int
	one.SetOne()
	max.Lsh(&one, 128)
	max.Sub(&max, &one)
	return max
}()

// ZeroAmount is the additive identity.
var ZeroAmount = Amount{}

// AmountFromUint64 builds an Amount from a uint64, always within bounds.
func AmountFromUint64(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// ParseAmount parses a decimal string into an Amount, rejecting values that
// do not fit in 128 bits or are not well-formed unsigned decimal integers.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if s == "" {
		return a, fmt.Errorf("amount: empty string")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return a, fmt.Errorf("amount: %q is not a decimal integer", s)
		}
	}
	if _, overflow := a.v.SetFromDecimal(s); overflow {
		return a, fmt.Errorf("amount: %q overflows 256 bits", s)
	}
	if a.v.Gt(&maxU128) {
		return a, fmt.Errorf("amount: %q overflows u128", s)
	}
	return a, nil
}

// Add returns a+b and an error if the result would overflow u128.
func (a Amount) Add(b Amount) (Amount, error) {
	var out Amount
	out.v.Add(&a.v, &b.v)
	if out.v.Gt(&maxU128) || out.v.Lt(&a.v) {
		return Amount{}, fmt.Errorf("amount: addition overflows u128")
	}
	return out, nil
}

// Sub returns a-b and an error if b > a (underflow is a rejection, not a clamp).
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.v.Lt(&b.v) {
		return Amount{}, fmt.Errorf("amount: subtraction underflows")
	}
	var out Amount
	out.v.Sub(&a.v, &b.v)
	return out, nil
}

func (a Amount) Cmp(b Amount) int  { return a.v.Cmp(&b.v) }
func (a Amount) IsZero() bool      { return a.v.IsZero() }
func (a Amount) GreaterThan(b Amount) bool { return a.v.Gt(&b.v) }
func (a Amount) LessThan(b Amount) bool    { return a.v.Lt(&b.v) }
func (a Amount) String() string    { return a.v.Dec() }

// Uint64 returns the low 64 bits; callers must only use it where the value
// is known to fit (e.g. Erc1155 token ids, loop counters).
func (a Amount) Uint64() uint64 { return a.v.Uint64() }

// Bytes16 renders the amount as a fixed-width 16-byte big-endian buffer,
// the canonical wire form required by the template hashing discipline.
func (a Amount) Bytes16() [16]byte {
	var b32 [32]byte
	a.v.WriteToArray32(&b32)
	var out [16]byte
	copy(out[:], b32[16:])
	return out
}

// AmountFromBytes16 is the inverse of Bytes16.
func AmountFromBytes16(b [16]byte) Amount {
	var full [32]byte
	copy(full[16:], b[:])
	var a Amount
	a.v.SetBytes(full[:])
	return a
}

// PutUint64BE writes v as 8 fixed-width big-endian bytes, the canonical
// encoding for block numbers, timestamps and nonces.
func PutUint64BE(v uint64) [8]byte {
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], v)
	return out
}
