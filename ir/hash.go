package ir

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Hash is a 32-byte content digest. The system fixes Keccak-256 as its
// collision-resistant digest, using go-ethereum/crypto uniformly for
// system IDs, block hashes and state roots.
type Hash [32]byte

// Sum hashes b with Keccak-256.
func Sum(b []byte) Hash {
	return Hash(crypto.Keccak256Hash(b))
}

// Hex renders the hash as 0x + 64 lowercase hex digits.
func (h Hash) Hex() string {
	const digits = "0123456789abcdef"
	out := make([]byte, 2+len(h)*2)
	out[0], out[1] = '0', 'x'
	for i, v := range h {
		out[2+i*2] = digits[v>>4]
		out[3+i*2] = digits[v&0x0f]
	}
	return string(out)
}

func (h Hash) IsZero() bool { return h == Hash{} }

// ParseHash parses a 0x-prefixed, 64-hex-digit hash, the inverse of Hex.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != 2+len(h)*2 || s[0] != '0' || s[1] != 'x' {
		return h, fmt.Errorf("malformed hash %q", s)
	}
	for i := range h {
		hi, err := hexNibble(s[2+i*2])
		if err != nil {
			return h, err
		}
		lo, err := hexNibble(s[3+i*2])
		if err != nil {
			return h, err
		}
		h[i] = hi<<4 | lo
	}
	return h, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex digit %q", c)
	}
}
