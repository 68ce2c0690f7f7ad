package settlement

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/fvl-lang/fvl/ir"
)

// Signer holds the ECDSA key used to authorise settlement submissions.
// Anchoring a state root is itself a side-effecting write against an
// external system, so every submission is signed the same way
// transactions are signed elsewhere in this system.
type Signer struct {
	priv *ecdsa.PrivateKey
	addr ir.Address
}

// NewSignerFromHex loads a signer from a hex-encoded ECDSA private key
// (no 0x prefix), matching go-ethereum's crypto.HexToECDSA convention.
func NewSignerFromHex(hexKey string) (*Signer, error) {
	priv, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, err
	}
	var addr ir.Address
	copy(addr[:], crypto.PubkeyToAddress(priv.PublicKey).Bytes())
	return &Signer{priv: priv, addr: addr}, nil
}

// Address returns the signer's on-chain address.
func (s *Signer) Address() ir.Address { return s.addr }

// Sign produces a 65-byte {R||S||V} signature over digest.
func (s *Signer) Sign(digest ir.Hash) ([]byte, error) {
	return crypto.Sign(digest[:], s.priv)
}
