package core

import "github.com/fvl-lang/fvl/ir"

// compare applies an explicit comparison operator (gt/gte/eq/lte/lt).
func compare(op ir.CompareOp, lhs, rhs ir.Amount) bool {
	c := lhs.Cmp(rhs)
	switch op {
	case ir.OpGt:
		return c > 0
	case ir.OpGte:
		return c >= 0
	case ir.OpEq:
		return c == 0
	case ir.OpLte:
		return c <= 0
	case ir.OpLt:
		return c < 0
	default:
		return false
	}
}

// holderCount, totalValue, collateralRatio and utilization are
// deterministic derived counters: they depend only on the
// system's own contributor map and world balances it has already recorded
// via TotalCollected, never on oracle state or external input. Ratios are
// expressed as integer percentage points (e.g. 150 means 150%).
func holderCount(sys *System) ir.Amount {
	n := uint64(0)
	for _, amt := range sys.Contributors {
		if amt.GreaterThan(ir.ZeroAmount) {
			n++
		}
	}
	return ir.AmountFromUint64(n)
}

func totalValue(sys *System) ir.Amount {
	total := ir.ZeroAmount
	for _, amt := range sys.Contributors {
		if v, err := total.Add(amt); err == nil {
			total = v
		}
	}
	return total
}

func collateralRatio(sys *System, poolAsset ir.Asset) ir.Amount {
	tv := totalValue(sys)
	if tv.IsZero() {
		return ir.ZeroAmount
	}
	collected := sys.TotalCollected[poolAsset.Key()]
	num := collected.Uint64() * 100
	return ir.AmountFromUint64(num / tv.Uint64())
}

func utilization(sys *System, hasCap bool, cap ir.Amount) ir.Amount {
	if !hasCap || cap.IsZero() {
		return ir.ZeroAmount
	}
	tv := totalValue(sys).Uint64()
	return ir.AmountFromUint64((tv * 100) / cap.Uint64())
}

// evalCondition evaluates one condition against the current apply context.
// A missing oracle evaluates to false, never an error.
func evalCondition(scope *txScope, sys *System, sender ir.Address, now uint64, c ir.Condition) bool {
	switch c.Kind {
	case ir.CondBalance:
		acct := scope.account(sender)
		return compare(c.Op, acct.Balance(c.Asset), c.Value)
	case ir.CondPrice:
		v, ok := sys.OracleValues[c.Oracle]
		if !ok {
			return false
		}
		return compare(c.Op, v, c.Value)
	case ir.CondTime:
		return compare(c.Op, ir.AmountFromUint64(now), c.Value)
	case ir.CondHolderCount:
		return compare(c.Op, holderCount(sys), c.Value)
	case ir.CondTotalValue:
		return compare(c.Op, totalValue(sys), c.Value)
	case ir.CondCollateralRatio:
		return compare(c.Op, collateralRatio(sys, sys.Template.Pool.Asset), c.Value)
	case ir.CondUtilization:
		return compare(c.Op, utilization(sys, sys.Template.Pool.HasCap, sys.Template.Pool.Cap), c.Value)
	case ir.CondEvent:
		// Named-event matches have no declared producer in this core; no
		// event has ever fired, so the match is always false.
		return false
	default:
		return false
	}
}
