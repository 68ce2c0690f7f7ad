package core

import "github.com/fvl-lang/fvl/ir"

// applyAction effects one action, either reached via a condition's `then`
// during Evaluate or named directly during Trigger. It never checks
// role permissions itself; the caller has already authorised the action
// before reaching here.
func applyAction(scope *txScope, sys *System, a ir.Action) ([]Event, error) {
	switch a.Kind {
	case ir.ActionEnable:
		sys.EnabledPermissions[a.Perm] = true
		return []Event{newEvent("PermissionEnabled", "system_id", sys.ID.Hex(), "perm", a.Perm)}, nil

	case ir.ActionDisable:
		delete(sys.EnabledPermissions, a.Perm)
		return []Event{newEvent("PermissionDisabled", "system_id", sys.ID.Hex(), "perm", a.Perm)}, nil

	case ir.ActionLiquidate:
		contributed, ok := sys.Contributors[a.Target]
		if !ok || contributed.IsZero() {
			return nil, ErrInsufficientBalance("a positive contribution", "0")
		}
		pool := sys.Template.Pool
		if err := transferAsset(scope, a.Target, pool.Collector, pool.Asset, contributed); err != nil {
			return nil, err
		}
		delete(sys.Contributors, a.Target)
		return []Event{newEvent("Liquidated", "system_id", sys.ID.Hex(), "target", a.Target.Hex(), "amount", contributed.String())}, nil

	case ir.ActionMint:
		if err := mintAsset(scope, a.To, a.Asset, a.Amount); err != nil {
			return nil, err
		}
		return []Event{newEvent("Minted", "system_id", sys.ID.Hex(), "to", a.To.Hex(), "asset", a.Asset.Key())}, nil

	case ir.ActionBurn:
		if err := burnAsset(scope, a.From, a.Asset, a.Amount); err != nil {
			return nil, err
		}
		return []Event{newEvent("Burned", "system_id", sys.ID.Hex(), "from", a.From.Hex(), "asset", a.Asset.Key())}, nil

	case ir.ActionTransfer:
		if err := transferAsset(scope, a.From, a.To, a.Asset, a.Amount); err != nil {
			return nil, err
		}
		return []Event{newEvent("Transferred", "system_id", sys.ID.Hex(), "from", a.From.Hex(), "to", a.To.Hex(), "asset", a.Asset.Key())}, nil

	case ir.ActionPause:
		sys.Paused = true
		return []Event{newEvent("Paused", "system_id", sys.ID.Hex())}, nil

	case ir.ActionUnpause:
		sys.Paused = false
		return []Event{newEvent("Unpaused", "system_id", sys.ID.Hex())}, nil

	case ir.ActionExecute:
		return []Event{newEvent("Executed", "system_id", sys.ID.Hex(), "name", a.Name)}, nil

	case ir.ActionNone:
		return nil, nil

	default:
		return nil, ErrUnknownAction(a.Name)
	}
}
