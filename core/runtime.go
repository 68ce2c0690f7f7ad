package core

import (
	"sort"

	"github.com/fvl-lang/fvl/ir"
	"github.com/fvl-lang/fvl/template"
)

// Apply is the rollup's single state-transition function. It is pure with
// respect to World's contents on any failure path: admission failures
// leave World untouched, execution failures leave only the nonce bump
// behind.
func Apply(w *World, tx Transaction, now uint64) (Receipt, error) {
	expected := w.NonceOf(tx.Sender)
	if tx.Nonce != expected {
		return Receipt{}, ErrInvalidNonce(expected, tx.Nonce)
	}
	if err := admit(w, tx); err != nil {
		return Receipt{}, err
	}

	w.bumpNonce(tx.Sender)
	hash := tx.Hash()

	scope := newTxScope(w)
	events, err := execute(scope, w, tx, now)
	if err != nil {
		return failureReceipt(hash, w.BlockNumber, err), nil
	}
	scope.commit()
	return successReceipt(hash, w.BlockNumber, events), nil
}

// admit runs the checks that must pass before a transaction even consumes
// a nonce: the target of an Interact or OracleUpdate must already exist, an
// OracleUpdate must name a declared oracle, and a Trigger/Both must name an
// Execute action declared in the system's rules.
func admit(w *World, tx Transaction) error {
	switch p := tx.Payload.(type) {
	case InteractPayload:
		sys := w.Systems[p.SystemID]
		if sys == nil {
			return ErrUnknownSystem(p.SystemID.Hex())
		}
		if p.Mode != ModeEvaluate && (p.Action == "" || !declaresExecute(sys.Template, p.Action)) {
			return ErrUnknownAction(p.Action)
		}
	case OracleUpdatePayload:
		sys := w.Systems[p.SystemID]
		if sys == nil {
			return ErrUnknownSystem(p.SystemID.Hex())
		}
		if !declaresOracle(sys.Template, p.Oracle) {
			return ErrUnknownOracle(p.Oracle)
		}
	}
	return nil
}

func declaresOracle(t *template.IR, name string) bool {
	for _, o := range t.Oracles {
		if o.Name == name {
			return true
		}
	}
	return false
}

// declaresExecute reports whether name appears as an Execute(name) action
// somewhere in the template's rules, the recognized-action check
// Trigger/Both must pass before a Trigger authorization is even
// considered, let alone applied.
func declaresExecute(t *template.IR, name string) bool {
	for _, c := range t.Conditions {
		if c.Then.Kind == ir.ActionExecute && c.Then.Name == name {
			return true
		}
	}
	return false
}

func execute(scope *txScope, w *World, tx Transaction, now uint64) ([]Event, error) {
	switch p := tx.Payload.(type) {
	case DeployPayload:
		return executeDeploy(scope, w, tx, p)
	case TransferPayload:
		return executeTransfer(scope, tx, p)
	case MintPayload:
		return executeMint(scope, w, tx, p)
	case InteractPayload:
		return executeInteract(scope, tx, now, p)
	case OracleUpdatePayload:
		return executeOracleUpdate(scope, tx, p)
	default:
		return nil, ErrUnknownCommand(tx.Kind.String())
	}
}

func executeDeploy(scope *txScope, w *World, tx Transaction, p DeployPayload) ([]Event, error) {
	t, err := template.Parse(p.Template)
	if err != nil {
		return nil, err
	}
	id := template.SystemID(t)
	if w.Systems[id] != nil {
		// Re-deploying the same template is a no-op, not an error: the
		// system id is content-addressed, so this is provably the same
		// declaration.
		return []Event{newEvent("Deployed", "system_id", id.Hex())}, nil
	}
	sys := newSystem(id, t, tx.Sender, w.BlockNumber)
	scope.installSystem(sys)
	return []Event{newEvent("Deployed", "system_id", id.Hex())}, nil
}

func executeTransfer(scope *txScope, tx Transaction, p TransferPayload) ([]Event, error) {
	if tx.Sender != p.From {
		return nil, ErrUnauthorized(tx.Sender.Hex(), "transfer")
	}
	if err := transferAsset(scope, p.From, p.To, p.Asset, p.Amount); err != nil {
		return nil, err
	}
	if err := recordContribution(scope, p.From, p.To, p.Asset, p.Amount); err != nil {
		return nil, err
	}
	return []Event{newEvent("Transferred", "from", p.From.Hex(), "to", p.To.Hex(), "asset", p.Asset.Key(), "amount", p.Amount.String())}, nil
}

func executeMint(scope *txScope, w *World, tx Transaction, p MintPayload) ([]Event, error) {
	if tx.Sender != w.Admin {
		return nil, ErrUnauthorized(tx.Sender.Hex(), "mint")
	}
	if err := mintAsset(scope, p.To, p.Asset, p.Amount); err != nil {
		return nil, err
	}
	return []Event{newEvent("Minted", "to", p.To.Hex(), "asset", p.Asset.Key(), "amount", p.Amount.String())}, nil
}

func executeInteract(scope *txScope, tx Transaction, now uint64, p InteractPayload) ([]Event, error) {
	sys := scope.system(p.SystemID)
	if sys.Paused {
		return nil, ErrPaused()
	}

	var events []Event
	if p.Mode == ModeEvaluate || p.Mode == ModeBoth {
		for _, c := range sys.Template.Conditions {
			if c.Then.Kind == ir.ActionNone {
				continue
			}
			if !evalCondition(scope, sys, tx.Sender, now, c) {
				continue
			}
			ev, err := applyAction(scope, sys, c.Then)
			if err != nil {
				return nil, err
			}
			events = append(events, ev...)
		}
	}
	if p.Mode == ModeTrigger || p.Mode == ModeBoth {
		if !declaresExecute(sys.Template, p.Action) {
			return nil, ErrUnknownAction(p.Action)
		}
		if tx.Sender != sys.Deployer && !sys.RoleGrants(scope.world, tx.Sender, p.Action) {
			return nil, ErrUnauthorized(tx.Sender.Hex(), p.Action)
		}
		ev, err := applyAction(scope, sys, ir.Action{Kind: ir.ActionExecute, Name: p.Action})
		if err != nil {
			return nil, err
		}
		events = append(events, ev...)
	}
	return events, nil
}

func executeOracleUpdate(scope *txScope, tx Transaction, p OracleUpdatePayload) ([]Event, error) {
	sys := scope.system(p.SystemID)
	if tx.Sender != sys.Deployer {
		return nil, ErrNotDeployer()
	}
	sys.OracleValues[p.Oracle] = p.Value
	return []Event{newEvent("OracleUpdated", "system_id", sys.ID.Hex(), "oracle", p.Oracle, "value", p.Value.String())}, nil
}

// recordContribution attributes a transfer to a system's pool when its
// destination is that system's configured collector address and the asset
// matches the pool's asset. When several systems match, only the one with
// the lowest system ID is credited. Caps are enforced here,
// against the running total, not against any single sender's share.
func recordContribution(scope *txScope, from, to ir.Address, asset ir.Asset, amount ir.Amount) error {
	ids := make([]ir.Hash, 0, len(scope.world.Systems))
	for id := range scope.world.Systems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return hashLess(ids[i], ids[j]) })
	for _, id := range ids {
		pool := scope.world.Systems[id].Template.Pool
		if pool.Collector != to || pool.Asset.Key() != asset.Key() {
			continue
		}
		sys := scope.system(id)
		total, err := sys.TotalCollected[asset.Key()].Add(amount)
		if err != nil {
			return err
		}
		if pool.HasCap && total.GreaterThan(pool.Cap) {
			return ErrCapExceeded()
		}
		sys.TotalCollected[asset.Key()] = total
		contributed, err := sys.Contributors[from].Add(amount)
		if err != nil {
			return err
		}
		sys.Contributors[from] = contributed
		return nil
	}
	return nil
}
