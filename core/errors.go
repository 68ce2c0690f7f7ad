package core

import (
	"fmt"

	"github.com/fvl-lang/fvl/ir"
)

// Kinded is implemented by every typed error so the CLI
// layer can render `[ERROR] <kind>: <message>` or the JSON error shape
// without type-switching on concrete types.
type Kinded interface {
	error
	Kind() string
}

type kindedErr struct {
	kind    string
	message string
}

func (e *kindedErr) Error() string { return e.message }
func (e *kindedErr) Kind() string  { return e.kind }

// Admission errors. Rejected before the sender's nonce is touched and
// before any transaction is recorded: no receipt, no block, no log entry.

func ErrInvalidNonce(expected, got uint64) error {
	return &kindedErr{"InvalidNonce", fmt.Sprintf("expected nonce %d, got %d", expected, got)}
}

func ErrUnknownSystem(id string) error {
	return &kindedErr{"UnknownSystem", fmt.Sprintf("no system deployed with id %s", id)}
}

func ErrUnknownOracle(name string) error {
	return &kindedErr{"UnknownOracle", fmt.Sprintf("oracle %q is not declared", name)}
}

func ErrUnknownAction(name string) error {
	return &kindedErr{"UnknownAction", fmt.Sprintf("action %q is not recognised", name)}
}

// Execution errors. The sender's nonce has already advanced and a failure
// receipt is recorded; only the scratch world scope is discarded.

func ErrInsufficientBalance(required, have string) error {
	return &kindedErr{"InsufficientBalance", fmt.Sprintf("required %s, have %s", required, have)}
}

func ErrUnauthorized(who, action string) error {
	return &kindedErr{"Unauthorized", fmt.Sprintf("%s is not authorised to perform %q", who, action)}
}

func ErrPaused() error {
	return &kindedErr{"Paused", "system is paused"}
}

func ErrNotDeployer() error {
	return &kindedErr{"NotDeployer", "only the deploying address may perform this operation"}
}

func ErrCapExceeded() error {
	return &kindedErr{"CapExceeded", "operation would exceed a configured cap"}
}

// System errors (fatal).

func ErrStateDivergence(expected, actual ir.Hash, block uint64) error {
	return &kindedErr{"StateDivergence", fmt.Sprintf("block %d: expected root %s, got %s", block, expected.Hex(), actual.Hex())}
}

func ErrLogCorruption(reason string) error {
	return &kindedErr{"LogCorruption", reason}
}

func ErrIoFailure(reason string) error {
	return &kindedErr{"IoFailure", reason}
}

// Input errors.

func ErrBadAddress(s string) error {
	return &kindedErr{"BadAddress", fmt.Sprintf("invalid address %q", s)}
}

func ErrBadAmount(s string) error {
	return &kindedErr{"BadAmount", fmt.Sprintf("invalid amount %q", s)}
}

func ErrUnknownCommand(s string) error {
	return &kindedErr{"UnknownCommand", fmt.Sprintf("unknown command %q", s)}
}
