package core

import "github.com/fvl-lang/fvl/ir"

// Account holds one address's balances. It is lazily created on first
// reference and never deleted.
type Account struct {
	Eth     ir.Amount
	ERC20   map[string]ir.Amount          // token hex -> balance
	ERC1155 map[string]ir.Amount          // "token:id" -> balance
	ERC721  map[string]map[string]bool    // token hex -> set of owned ids (by decimal string)
	Nonce   uint64
}

func newAccount() *Account {
	return &Account{
		ERC20:   make(map[string]ir.Amount),
		ERC1155: make(map[string]ir.Amount),
		ERC721:  make(map[string]map[string]bool),
	}
}

// Balance returns the account's holding of asset. For ERC721 it returns the
// count of owned instances (used by balance_* conditions and holder-count
// derivations), since per-token-id ownership is a set, not a quantity.
func (a *Account) Balance(asset ir.Asset) ir.Amount {
	switch asset.Kind {
	case ir.AssetEth:
		return a.Eth
	case ir.AssetErc20:
		if v, ok := a.ERC20[asset.Token.Hex()]; ok {
			return v
		}
		return ir.ZeroAmount
	case ir.AssetErc1155:
		if v, ok := a.ERC1155[asset.Token.Hex()+":"+asset.ID.String()]; ok {
			return v
		}
		return ir.ZeroAmount
	case ir.AssetErc721:
		ids := a.ERC721[asset.Token.Hex()]
		return ir.AmountFromUint64(uint64(len(ids)))
	default:
		return ir.ZeroAmount
	}
}

func (a *Account) addFungible(asset ir.Asset, amount ir.Amount) error {
	switch asset.Kind {
	case ir.AssetEth:
		v, err := a.Eth.Add(amount)
		if err != nil {
			return err
		}
		a.Eth = v
	case ir.AssetErc20:
		key := asset.Token.Hex()
		v, err := a.ERC20[key].Add(amount)
		if err != nil {
			return err
		}
		a.ERC20[key] = v
	case ir.AssetErc1155:
		key := asset.Token.Hex() + ":" + asset.ID.String()
		v, err := a.ERC1155[key].Add(amount)
		if err != nil {
			return err
		}
		a.ERC1155[key] = v
	default:
		return ErrBadAmount("fungible add on non-fungible asset")
	}
	return nil
}

func (a *Account) subFungible(asset ir.Asset, amount ir.Amount) error {
	switch asset.Kind {
	case ir.AssetEth:
		v, err := a.Eth.Sub(amount)
		if err != nil {
			return ErrInsufficientBalance(amount.String(), a.Eth.String())
		}
		a.Eth = v
	case ir.AssetErc20:
		key := asset.Token.Hex()
		cur := a.ERC20[key]
		v, err := cur.Sub(amount)
		if err != nil {
			return ErrInsufficientBalance(amount.String(), cur.String())
		}
		a.ERC20[key] = v
	case ir.AssetErc1155:
		key := asset.Token.Hex() + ":" + asset.ID.String()
		cur := a.ERC1155[key]
		v, err := cur.Sub(amount)
		if err != nil {
			return ErrInsufficientBalance(amount.String(), cur.String())
		}
		a.ERC1155[key] = v
	default:
		return ErrBadAmount("fungible sub on non-fungible asset")
	}
	return nil
}

// clone deep-copies the account for snapshot-style rollback on a failed
// transaction (the runtime always operates on a scratch copy; see world.go).
func (a *Account) clone() *Account {
	out := &Account{Eth: a.Eth, Nonce: a.Nonce,
		ERC20:   make(map[string]ir.Amount, len(a.ERC20)),
		ERC1155: make(map[string]ir.Amount, len(a.ERC1155)),
		ERC721:  make(map[string]map[string]bool, len(a.ERC721)),
	}
	for k, v := range a.ERC20 {
		out.ERC20[k] = v
	}
	for k, v := range a.ERC1155 {
		out.ERC1155[k] = v
	}
	for k, ids := range a.ERC721 {
		set := make(map[string]bool, len(ids))
		for id := range ids {
			set[id] = true
		}
		out.ERC721[k] = set
	}
	return out
}
