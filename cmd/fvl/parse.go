package main

import (
	"strings"

	"github.com/fvl-lang/fvl/core"
	"github.com/fvl-lang/fvl/ir"
)

// parseAddress parses a 0x-prefixed hex address, returning a typed
// BadAddress error on failure so the CLI reports kind "BadAddress".
func parseAddress(s string) (ir.Address, error) {
	a, err := ir.ParseAddress(s)
	if err != nil {
		return a, core.ErrBadAddress(s)
	}
	return a, nil
}

// parseSystemID parses a 0x-prefixed 32-byte system id.
func parseSystemID(s string) (ir.Hash, error) {
	h, err := ir.ParseHash(s)
	if err != nil {
		return h, core.ErrBadAddress(s)
	}
	return h, nil
}

// parseAmount parses a decimal asset quantity.
func parseAmount(s string) (ir.Amount, error) {
	a, err := ir.ParseAmount(s)
	if err != nil {
		return a, core.ErrBadAmount(s)
	}
	return a, nil
}

// parseAsset parses the CLI's asset identifiers: ETH, ERC20:0x…,
// ERC721:0x…, ERC1155:0x…:<id>.
func parseAsset(s string) (ir.Asset, error) {
	var a ir.Asset
	switch {
	case s == "ETH":
		a.Kind = ir.AssetEth
		return a, nil
	case strings.HasPrefix(s, "ERC20:"):
		tok, err := parseAddress(strings.TrimPrefix(s, "ERC20:"))
		if err != nil {
			return a, err
		}
		return ir.Asset{Kind: ir.AssetErc20, Token: tok}, nil
	case strings.HasPrefix(s, "ERC721:"):
		tok, err := parseAddress(strings.TrimPrefix(s, "ERC721:"))
		if err != nil {
			return a, err
		}
		return ir.Asset{Kind: ir.AssetErc721, Token: tok}, nil
	case strings.HasPrefix(s, "ERC1155:"):
		rest := strings.TrimPrefix(s, "ERC1155:")
		parts := strings.SplitN(rest, ":", 2)
		if len(parts) != 2 {
			return a, core.ErrBadAmount(s)
		}
		tok, err := parseAddress(parts[0])
		if err != nil {
			return a, err
		}
		id, err := parseAmount(parts[1])
		if err != nil {
			return a, err
		}
		return ir.Asset{Kind: ir.AssetErc1155, Token: tok, ID: id}, nil
	default:
		return a, core.ErrBadAmount(s)
	}
}
