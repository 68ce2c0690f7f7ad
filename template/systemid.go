package template

import "github.com/fvl-lang/fvl/ir"

// SystemID derives the content-addressed identifier of a template: the
// Keccak-256 digest of its canonical byte image. Two templates that
// canonicalize to the same bytes always yield the same system ID,
// independent of source whitespace, key order or numeric formatting.
func SystemID(t *IR) ir.Hash {
	return ir.Sum(Canonicalize(t))
}
