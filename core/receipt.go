package core

import "github.com/fvl-lang/fvl/ir"

// Receipt records the outcome of one apply call. It is what gets persisted
// alongside the transaction in the block log and rendered back to
// the CLI.
type Receipt struct {
	TxHash      ir.Hash
	BlockNumber uint64
	Success     bool
	Events      []Event
	Error       string // Kinded.Kind(), empty on success
}

func successReceipt(hash ir.Hash, block uint64, events []Event) Receipt {
	return Receipt{TxHash: hash, BlockNumber: block, Success: true, Events: events}
}

func failureReceipt(hash ir.Hash, block uint64, err error) Receipt {
	kind := "Execution"
	if k, ok := err.(Kinded); ok {
		kind = k.Kind()
	}
	return Receipt{TxHash: hash, BlockNumber: block, Success: false, Error: kind}
}
