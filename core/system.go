package core

import (
	"github.com/fvl-lang/fvl/ir"
	"github.com/fvl-lang/fvl/template"
)

// System is a deployed template instance. It is created once by a Deploy
// transaction and mutated only by Interact and OracleUpdate transactions
// that target it.
type System struct {
	ID                 ir.Hash
	Template           *template.IR
	Deployer           ir.Address
	DeployedAt         uint64
	OracleValues       map[string]ir.Amount
	Paused             bool
	EnabledPermissions map[string]bool
	TotalCollected     map[string]ir.Amount    // asset key -> cumulative
	Contributors       map[ir.Address]ir.Amount // contributor -> amount contributed
}

func newSystem(id ir.Hash, t *template.IR, deployer ir.Address, at uint64) *System {
	return &System{
		ID:                 id,
		Template:           t,
		Deployer:           deployer,
		DeployedAt:         at,
		OracleValues:       make(map[string]ir.Amount),
		EnabledPermissions: make(map[string]bool),
		TotalCollected:     make(map[string]ir.Amount),
		Contributors:       make(map[ir.Address]ir.Amount),
	}
}

// clone deep-copies the system for scratch-copy execution.
func (s *System) clone() *System {
	out := &System{
		ID: s.ID, Template: s.Template, Deployer: s.Deployer, DeployedAt: s.DeployedAt,
		Paused:             s.Paused,
		OracleValues:       make(map[string]ir.Amount, len(s.OracleValues)),
		EnabledPermissions: make(map[string]bool, len(s.EnabledPermissions)),
		TotalCollected:     make(map[string]ir.Amount, len(s.TotalCollected)),
		Contributors:       make(map[ir.Address]ir.Amount, len(s.Contributors)),
	}
	for k, v := range s.OracleValues {
		out.OracleValues[k] = v
	}
	for k, v := range s.EnabledPermissions {
		out.EnabledPermissions[k] = v
	}
	for k, v := range s.TotalCollected {
		out.TotalCollected[k] = v
	}
	for k, v := range s.Contributors {
		out.Contributors[k] = v
	}
	return out
}

// RoleGrants reports whether addr holds a role whose access rule it
// satisfies given its holdings and whose permission list contains perm.
func (s *System) RoleGrants(w *World, addr ir.Address, perm string) bool {
	for _, role := range s.Template.Roles {
		if !hasPermission(role.Permissions, perm) {
			continue
		}
		if satisfiesAccess(w, addr, role.Access) {
			return true
		}
	}
	return false
}

func hasPermission(perms []string, perm string) bool {
	for _, p := range perms {
		if p == perm {
			return true
		}
	}
	return false
}

func satisfiesAccess(w *World, addr ir.Address, rule ir.AccessRule) bool {
	switch rule.Kind {
	case ir.AccessAnyone:
		return true
	case ir.AccessTokenHolders:
		acct := w.peekAccount(addr)
		return acct != nil && acct.Balance(ir.Asset{Kind: ir.AssetErc20, Token: rule.ERC20}).GreaterThan(ir.ZeroAmount)
	case ir.AccessNftHolders:
		acct := w.peekAccount(addr)
		return acct != nil && acct.Balance(ir.Asset{Kind: ir.AssetErc721, Token: rule.ERC721}).GreaterThan(ir.ZeroAmount)
	case ir.AccessWhitelist:
		for _, a := range rule.Whitelist {
			if a == addr {
				return true
			}
		}
		return false
	case ir.AccessMinBalance:
		acct := w.peekAccount(addr)
		if acct == nil {
			return false
		}
		bal := acct.Balance(ir.Asset{Kind: ir.AssetErc20, Token: rule.Token})
		return !bal.LessThan(rule.Amount)
	default:
		return false
	}
}
