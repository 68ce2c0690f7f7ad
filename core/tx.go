// Package core implements the deterministic runtime of the rollup: the
// world state, the pure transaction applier, and the typed error taxonomy
// that the sequencer and settlement layers build on.
package core

import "github.com/fvl-lang/fvl/ir"

// TxKind enumerates the five transaction kinds.
type TxKind uint8

const (
	TxDeploy TxKind = iota
	TxTransfer
	TxMint
	TxInteract
	TxOracleUpdate
)

func (k TxKind) String() string {
	switch k {
	case TxDeploy:
		return "Deploy"
	case TxTransfer:
		return "Transfer"
	case TxMint:
		return "Mint"
	case TxInteract:
		return "Interact"
	case TxOracleUpdate:
		return "OracleUpdate"
	default:
		return "Unknown"
	}
}

// InteractMode enumerates the Interact transaction's evaluation mode.
type InteractMode uint8

const (
	ModeEvaluate InteractMode = iota
	ModeTrigger
	ModeBoth
)

// DeployPayload carries the raw template document text.
type DeployPayload struct {
	Template []byte
}

// TransferPayload carries a self-move of an asset.
type TransferPayload struct {
	From   ir.Address
	To     ir.Address
	Amount ir.Amount
	Asset  ir.Asset
}

// MintPayload carries an admin-only mint.
type MintPayload struct {
	To     ir.Address
	Amount ir.Amount
	Asset  ir.Asset
}

// InteractPayload carries a system interaction.
type InteractPayload struct {
	SystemID ir.Hash
	Mode     InteractMode
	Action   string // optional; required for Trigger/Both
}

// OracleUpdatePayload carries a deployer-only oracle write.
type OracleUpdatePayload struct {
	SystemID ir.Hash
	Oracle   string
	Value    ir.Amount
}

// Transaction is an immutable, ordered unit of work. Payload holds one of
// the *Payload types above, selected by Kind.
type Transaction struct {
	Kind    TxKind
	Sender  ir.Address
	Nonce   uint64
	Payload any
}
