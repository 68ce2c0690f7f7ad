package core

import "github.com/fvl-lang/fvl/ir"

// mintAsset, burnAsset and transferAsset are the shared balance-effect
// primitives used both by top-level Mint/Transfer transactions (runtime.go)
// and by system-triggered actions (actions.go). ERC721 is handled as a
// world-wide instantiate-once set rather than a fungible quantity: an id can
// be minted once, then only transferred or burned.
func mintAsset(scope *txScope, to ir.Address, asset ir.Asset, amount ir.Amount) error {
	if asset.Kind == ir.AssetErc721 {
		key := nftKey(asset.Token, asset.ID)
		if scope.instantiated(key) {
			return ErrBadAmount("erc721 instance already minted")
		}
		acct := scope.account(to)
		ids := acct.ERC721[asset.Token.Hex()]
		if ids == nil {
			ids = make(map[string]bool)
			acct.ERC721[asset.Token.Hex()] = ids
		}
		ids[asset.ID.String()] = true
		scope.markInstantiated(key)
		return nil
	}
	return scope.account(to).addFungible(asset, amount)
}

func burnAsset(scope *txScope, from ir.Address, asset ir.Asset, amount ir.Amount) error {
	if asset.Kind == ir.AssetErc721 {
		acct := scope.account(from)
		idStr := asset.ID.String()
		ids := acct.ERC721[asset.Token.Hex()]
		if ids == nil || !ids[idStr] {
			return ErrInsufficientBalance("instance "+idStr, "not owned")
		}
		delete(ids, idStr)
		return nil
	}
	return scope.account(from).subFungible(asset, amount)
}

func transferAsset(scope *txScope, from, to ir.Address, asset ir.Asset, amount ir.Amount) error {
	if asset.Kind == ir.AssetErc721 {
		key := nftKey(asset.Token, asset.ID)
		if !scope.instantiated(key) {
			return ErrBadAmount("erc721 instance not instantiated")
		}
		idStr := asset.ID.String()
		fromAcct := scope.account(from)
		ids := fromAcct.ERC721[asset.Token.Hex()]
		if ids == nil || !ids[idStr] {
			return ErrInsufficientBalance("instance "+idStr, "not owned")
		}
		delete(ids, idStr)
		toAcct := scope.account(to)
		toIDs := toAcct.ERC721[asset.Token.Hex()]
		if toIDs == nil {
			toIDs = make(map[string]bool)
			toAcct.ERC721[asset.Token.Hex()] = toIDs
		}
		toIDs[idStr] = true
		return nil
	}
	if err := scope.account(from).subFungible(asset, amount); err != nil {
		return err
	}
	return scope.account(to).addFungible(asset, amount)
}
