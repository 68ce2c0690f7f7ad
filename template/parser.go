package template

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fvl-lang/fvl/ir"
)

var requiredSections = []string{"system", "pool", "rules", "rights", "time", "oracles"}

var addrRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
var nameRe = regexp.MustCompile(`^[0-9A-Za-z ]{1,64}$`)
var identRe = regexp.MustCompile(`^[0-9A-Za-z_]{1,64}$`)

const maxStringBytes = 256

// IR is the parsed, validated in-memory representation of a template. It is
// immutable once returned from Parse.
type IR struct {
	Name       string
	Pool       Pool
	Conditions []ir.Condition
	Roles      map[string]Role
	Time       ir.TimeSpec
	Oracles    []ir.OracleDecl
}

// Pool is the IR shadow of the `pool` section.
type Pool struct {
	Asset     ir.Asset
	HasCap    bool
	Cap       ir.Amount
	Collector ir.Address
	Formula   ir.Distribution
	Recipient ir.Recipient
}

// Role is the IR shadow of one entry under `rights`.
type Role struct {
	Access      ir.AccessRule
	Permissions []string
}

// Parse decodes a declarative template document, validates every
// syntactic/semantic invariant, and returns the built IR. Errors are
// either *ParseError (malformed YAML) or *ValidationError (well-formed YAML
// that violates a template invariant).
func Parse(text []byte) (*IR, error) {
	if len(text) == 0 {
		return nil, &ParseError{Cause: fmt.Errorf("empty document")}
	}

	var presence map[string]yaml.Node
	if err := yaml.Unmarshal(text, &presence); err != nil {
		return nil, &ParseError{Cause: err}
	}
	for _, s := range requiredSections {
		if _, ok := presence[s]; !ok {
			return nil, valErr(s, "required section is missing")
		}
	}

	var doc rawDoc
	if err := yaml.Unmarshal(text, &doc); err != nil {
		return nil, &ParseError{Cause: err}
	}

	return build(&doc)
}

func build(doc *rawDoc) (*IR, error) {
	out := &IR{Roles: make(map[string]Role)}

	name, err := buildSystem(doc.System)
	if err != nil {
		return nil, err
	}
	out.Name = name

	oracles, oracleNames, err := buildOracles(doc.Oracles)
	if err != nil {
		return nil, err
	}
	out.Oracles = oracles

	roles, rolePerms, err := buildRoles(doc.Rights)
	if err != nil {
		return nil, err
	}
	out.Roles = roles

	pool, err := buildPool(doc.Pool)
	if err != nil {
		return nil, err
	}
	out.Pool = pool

	conditions, err := buildRules(doc.Rules, oracleNames, rolePerms)
	if err != nil {
		return nil, err
	}
	out.Conditions = conditions

	ts, err := buildTime(doc.Time)
	if err != nil {
		return nil, err
	}
	out.Time = ts

	return out, nil
}

func buildSystem(s *rawSystem) (string, error) {
	if s == nil {
		return "", valErr("system", "section is empty")
	}
	if len(s.Name) < 1 || len(s.Name) > 64 {
		return "", valErr("system.name", "must be 1-64 characters")
	}
	if !nameRe.MatchString(s.Name) {
		return "", valErr("system.name", "must be alphanumeric and spaces")
	}
	return s.Name, nil
}

func parseAddr(path, s string) (ir.Address, error) {
	var a ir.Address
	if !addrRe.MatchString(s) {
		return a, valErr(path, "invalid address %q", s)
	}
	for i := 0; i < 20; i++ {
		hi := hexNibble(s[2+i*2])
		lo := hexNibble(s[3+i*2])
		a[i] = hi<<4 | lo
	}
	return a, nil
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func parseAmount(path, s string) (ir.Amount, error) {
	a, err := ir.ParseAmount(s)
	if err != nil {
		return a, valErr(path, "%v", err)
	}
	return a, nil
}

func parseAsset(path, s string) (ir.Asset, error) {
	var a ir.Asset
	if len(s) > maxStringBytes {
		return a, valErr(path, "asset identifier too long")
	}
	switch {
	case s == "ETH":
		a.Kind = ir.AssetEth
		return a, nil
	case strings.HasPrefix(s, "ERC20:"):
		addr, err := parseAddr(path, strings.TrimPrefix(s, "ERC20:"))
		if err != nil {
			return a, err
		}
		a.Kind = ir.AssetErc20
		a.Token = addr
		return a, nil
	case strings.HasPrefix(s, "ERC721:"):
		addr, err := parseAddr(path, strings.TrimPrefix(s, "ERC721:"))
		if err != nil {
			return a, err
		}
		a.Kind = ir.AssetErc721
		a.Token = addr
		return a, nil
	case strings.HasPrefix(s, "ERC1155:"):
		rest := strings.TrimPrefix(s, "ERC1155:")
		parts := strings.SplitN(rest, ":", 2)
		if len(parts) != 2 {
			return a, valErr(path, "ERC1155 asset requires address:id")
		}
		addr, err := parseAddr(path, parts[0])
		if err != nil {
			return a, err
		}
		id, err := parseAmount(path, parts[1])
		if err != nil {
			return a, err
		}
		a.Kind = ir.AssetErc1155
		a.Token = addr
		a.ID = id
		return a, nil
	default:
		return a, valErr(path, "unrecognised asset identifier %q", s)
	}
}

func buildOracles(raw []rawOracle) ([]ir.OracleDecl, map[string]bool, error) {
	names := make(map[string]bool, len(raw))
	out := make([]ir.OracleDecl, 0, len(raw))
	for i, o := range raw {
		path := fmt.Sprintf("oracles[%d]", i)
		if !identRe.MatchString(o.Name) {
			return nil, nil, valErr(path+".name", "must be alphanumeric/underscore, <=64 chars")
		}
		if names[o.Name] {
			return nil, nil, valErr(path+".name", "duplicate oracle name %q", o.Name)
		}
		names[o.Name] = true
		out = append(out, ir.OracleDecl{Name: o.Name, Type: o.Type, Source: o.Source})
	}
	return out, names, nil
}

var reservedRoleNames = map[string]bool{"system": true, "deployer": true}

func buildRoles(raw map[string]rawRole) (map[string]Role, map[string]bool, error) {
	roles := make(map[string]Role, len(raw))
	perms := make(map[string]bool)
	for name, r := range raw {
		path := fmt.Sprintf("rights.%s", name)
		if !identRe.MatchString(name) {
			return nil, nil, valErr(path, "role name must be alphanumeric/underscore, <=64 chars")
		}
		if reservedRoleNames[name] {
			return nil, nil, valErr(path, "role name %q is reserved", name)
		}
		access, err := buildAccess(path+".access", r.Access)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range r.Permissions {
			if !identRe.MatchString(p) {
				return nil, nil, valErr(path+".permissions", "permission name %q invalid", p)
			}
			perms[p] = true
		}
		roles[name] = Role{Access: access, Permissions: append([]string(nil), r.Permissions...)}
	}
	return roles, perms, nil
}

func buildAccess(path string, a rawAccess) (ir.AccessRule, error) {
	var out ir.AccessRule
	switch a.Kind {
	case "Anyone", "":
		out.Kind = ir.AccessAnyone
	case "TokenHolders":
		addr, err := parseAddr(path+".erc20", a.Erc20)
		if err != nil {
			return out, err
		}
		out.Kind = ir.AccessTokenHolders
		out.ERC20 = addr
	case "NftHolders":
		addr, err := parseAddr(path+".erc721", a.Erc721)
		if err != nil {
			return out, err
		}
		out.Kind = ir.AccessNftHolders
		out.ERC721 = addr
	case "Whitelist":
		list := make([]ir.Address, 0, len(a.Whitelist))
		for _, s := range a.Whitelist {
			addr, err := parseAddr(path+".whitelist", s)
			if err != nil {
				return out, err
			}
			list = append(list, addr)
		}
		out.Kind = ir.AccessWhitelist
		out.Whitelist = list
	case "MinBalance":
		addr, err := parseAddr(path+".token", a.Token)
		if err != nil {
			return out, err
		}
		amt, err := parseAmount(path+".amount", a.Amount)
		if err != nil {
			return out, err
		}
		out.Kind = ir.AccessMinBalance
		out.Token = addr
		out.Amount = amt
	default:
		return out, valErr(path, "unrecognised access rule kind %q", a.Kind)
	}
	return out, nil
}

func buildPool(p *rawPool) (Pool, error) {
	var out Pool
	if p == nil {
		return out, valErr("pool", "section is empty")
	}
	asset, err := parseAsset("pool.asset", p.Asset)
	if err != nil {
		return out, err
	}
	out.Asset = asset
	if p.Cap != "" {
		cap, err := parseAmount("pool.cap", p.Cap)
		if err != nil {
			return out, err
		}
		out.HasCap = true
		out.Cap = cap
	}
	if p.Collector != "" {
		addr, err := parseAddr("pool.collector", p.Collector)
		if err != nil {
			return out, err
		}
		out.Collector = addr
	}
	formula, err := buildFormula(p)
	if err != nil {
		return out, err
	}
	out.Formula = formula
	recipient, err := buildRecipient(p.Recipient)
	if err != nil {
		return out, err
	}
	out.Recipient = recipient
	return out, nil
}

func buildFormula(p *rawPool) (ir.Distribution, error) {
	var out ir.Distribution
	switch p.Formula {
	case "Proportional", "":
		out.Kind = ir.DistProportional
	case "Equal":
		out.Kind = ir.DistEqual
	case "Weighted":
		if p.Metric == "" {
			return out, valErr("pool.metric", "required for Weighted formula")
		}
		out.Kind = ir.DistWeighted
		out.Metric = p.Metric
	case "Tiered":
		thresholds := make([]ir.Amount, 0, len(p.Thresholds))
		var prev ir.Amount
		for i, s := range p.Thresholds {
			amt, err := parseAmount(fmt.Sprintf("pool.thresholds[%d]", i), s)
			if err != nil {
				return out, err
			}
			if i > 0 && !amt.GreaterThan(prev) {
				return out, valErr("pool.thresholds", "must be strictly increasing")
			}
			thresholds = append(thresholds, amt)
			prev = amt
		}
		out.Kind = ir.DistTiered
		out.Thresholds = thresholds
	case "Quadratic":
		out.Kind = ir.DistQuadratic
	default:
		return out, valErr("pool.formula", "unrecognised distribution formula %q", p.Formula)
	}
	return out, nil
}

func buildRecipient(r rawRecipient) (ir.Recipient, error) {
	var out ir.Recipient
	switch r.Kind {
	case "Contributors", "":
		out.Kind = ir.RecipContributors
	case "AllHolders":
		out.Kind = ir.RecipAllHolders
	case "TopN":
		if r.Count == 0 {
			return out, valErr("pool.recipient.count", "must be positive")
		}
		out.Kind = ir.RecipTopN
		out.Count = r.Count
	case "Role":
		if r.Role == "" {
			return out, valErr("pool.recipient.role", "required for Role recipient")
		}
		out.Kind = ir.RecipRole
		out.Role = r.Role
	case "Conditional":
		out.Kind = ir.RecipConditional
		out.Expression = r.Expression
	default:
		return out, valErr("pool.recipient.kind", "unrecognised recipient kind %q", r.Kind)
	}
	return out, nil
}

func buildRules(r *rawRules, oracleNames map[string]bool, rolePerms map[string]bool) ([]ir.Condition, error) {
	if r == nil {
		return nil, valErr("rules", "section is empty")
	}
	out := make([]ir.Condition, 0, len(r.Conditions))
	for i, rc := range r.Conditions {
		path := fmt.Sprintf("rules.conditions[%d]", i)
		c, err := buildCondition(path, rc, oracleNames)
		if err != nil {
			return nil, err
		}
		if (c.Then.Kind == ir.ActionEnable || c.Then.Kind == ir.ActionDisable) && !rolePerms[c.Then.Perm] {
			return nil, valErr(path+".then.perm", "permission %q is not granted to any role", c.Then.Perm)
		}
		out = append(out, c)
	}
	return out, nil
}

var compareOps = map[string]ir.CompareOp{
	"gt": ir.OpGt, "gte": ir.OpGte, "eq": ir.OpEq, "lte": ir.OpLte, "lt": ir.OpLt,
}

func buildCondition(path string, rc rawCondition, oracleNames map[string]bool) (ir.Condition, error) {
	var c ir.Condition
	op, ok := compareOps[rc.Op]
	if !ok && rc.Type != "event" {
		return c, valErr(path+".op", "unrecognised comparison operator %q", rc.Op)
	}
	c.Op = op

	switch rc.Type {
	case "balance":
		asset, err := parseAsset(path+".asset", rc.Asset)
		if err != nil {
			return c, err
		}
		val, err := parseAmount(path+".value", rc.Value)
		if err != nil {
			return c, err
		}
		c.Kind, c.Asset, c.Value = ir.CondBalance, asset, val
	case "price":
		if rc.Oracle == "" || !oracleNames[rc.Oracle] {
			return c, valErr(path+".oracle", "undeclared oracle %q", rc.Oracle)
		}
		val, err := parseAmount(path+".value", rc.Value)
		if err != nil {
			return c, err
		}
		c.Kind, c.Oracle, c.Value = ir.CondPrice, rc.Oracle, val
	case "time":
		val, err := parseAmount(path+".value", rc.Value)
		if err != nil {
			return c, err
		}
		c.Kind, c.Value = ir.CondTime, val
	case "holder_count":
		val, err := parseAmount(path+".value", rc.Value)
		if err != nil {
			return c, err
		}
		c.Kind, c.Value = ir.CondHolderCount, val
	case "total_value":
		val, err := parseAmount(path+".value", rc.Value)
		if err != nil {
			return c, err
		}
		c.Kind, c.Value = ir.CondTotalValue, val
	case "collateral_ratio":
		val, err := parseAmount(path+".value", rc.Value)
		if err != nil {
			return c, err
		}
		c.Kind, c.Value = ir.CondCollateralRatio, val
	case "utilization":
		val, err := parseAmount(path+".value", rc.Value)
		if err != nil {
			return c, err
		}
		c.Kind, c.Value = ir.CondUtilization, val
	case "event":
		if rc.Event == "" {
			return c, valErr(path+".event", "required for event condition")
		}
		c.Kind, c.Event = ir.CondEvent, rc.Event
	default:
		return c, valErr(path+".type", "unrecognised condition type %q", rc.Type)
	}

	if rc.Then != nil {
		action, err := buildAction(path+".then", rc.Then)
		if err != nil {
			return c, err
		}
		c.Then = action
	} else {
		c.Then = ir.Action{Kind: ir.ActionNone}
	}
	return c, nil
}

func buildAction(path string, ra *rawAction) (ir.Action, error) {
	var a ir.Action
	switch ra.Kind {
	case "Enable":
		if ra.Perm == "" {
			return a, valErr(path+".perm", "required for Enable action")
		}
		a.Kind, a.Perm = ir.ActionEnable, ra.Perm
	case "Disable":
		if ra.Perm == "" {
			return a, valErr(path+".perm", "required for Disable action")
		}
		a.Kind, a.Perm = ir.ActionDisable, ra.Perm
	case "Liquidate":
		addr, err := parseAddr(path+".target", ra.Target)
		if err != nil {
			return a, err
		}
		a.Kind, a.Target = ir.ActionLiquidate, addr
	case "Mint", "Burn", "Transfer":
		asset, err := parseAsset(path+".asset", ra.Asset)
		if err != nil {
			return a, err
		}
		amt, err := parseAmount(path+".amount", ra.Amount)
		if err != nil {
			return a, err
		}
		a.Asset, a.Amount = asset, amt
		switch ra.Kind {
		case "Mint":
			to, err := parseAddr(path+".to", ra.To)
			if err != nil {
				return a, err
			}
			a.Kind, a.To = ir.ActionMint, to
		case "Burn":
			from, err := parseAddr(path+".from", ra.From)
			if err != nil {
				return a, err
			}
			a.Kind, a.From = ir.ActionBurn, from
		case "Transfer":
			from, err := parseAddr(path+".from", ra.From)
			if err != nil {
				return a, err
			}
			to, err := parseAddr(path+".to", ra.To)
			if err != nil {
				return a, err
			}
			a.Kind, a.From, a.To = ir.ActionTransfer, from, to
		}
	case "Pause":
		a.Kind = ir.ActionPause
	case "Unpause":
		a.Kind = ir.ActionUnpause
	case "Execute":
		if ra.Name == "" {
			return a, valErr(path+".name", "required for Execute action")
		}
		a.Kind, a.Name = ir.ActionExecute, ra.Name
	default:
		return a, valErr(path+".kind", "unrecognised action kind %q", ra.Kind)
	}
	return a, nil
}

func buildTimeBound(path string, b rawTimeBound) (ir.TimeBound, error) {
	var out ir.TimeBound
	switch b.Kind {
	case "Now":
		out.Kind = ir.TimeNow
	case "None", "":
		out.Kind = ir.TimeNone
	case "Timestamp":
		amt, err := parseAmount(path+".value", b.Value)
		if err != nil {
			return out, err
		}
		out.Kind = ir.TimeTimestamp
		out.Value = amt.Uint64()
	default:
		return out, valErr(path+".kind", "unrecognised time bound kind %q", b.Kind)
	}
	return out, nil
}

func buildTime(t *rawTime) (ir.TimeSpec, error) {
	var out ir.TimeSpec
	if t == nil {
		return out, valErr("time", "section is empty")
	}
	start, err := buildTimeBound("time.start", t.Start)
	if err != nil {
		return out, err
	}
	end, err := buildTimeBound("time.end", t.End)
	if err != nil {
		return out, err
	}
	if start.Kind == ir.TimeTimestamp && end.Kind == ir.TimeTimestamp && start.Value >= end.Value {
		return out, valErr("time", "start must be strictly before end")
	}
	out.Start, out.End = start, end

	locks := t.Locks
	if locks == "" {
		out.Lock = ir.Lock{Kind: ir.LockNone}
	} else {
		amt, err := parseAmount("time.locks", locks)
		if err != nil {
			return out, err
		}
		out.Lock = ir.Lock{Kind: ir.LockDuration, Seconds: amt.Uint64()}
	}

	vesting, err := buildVesting(t.Vesting)
	if err != nil {
		return out, err
	}
	out.Vesting = vesting
	return out, nil
}

func buildVesting(v rawVesting) (ir.Vesting, error) {
	var out ir.Vesting
	switch v.Kind {
	case "None", "":
		out.Kind = ir.VestNone
	case "Linear":
		amt, err := parseAmount("time.vesting.duration", v.Duration)
		if err != nil {
			return out, err
		}
		out.Kind, out.DurationSecs = ir.VestLinear, amt.Uint64()
	case "Cliff":
		amt, err := parseAmount("time.vesting.duration", v.Duration)
		if err != nil {
			return out, err
		}
		out.Kind, out.DurationSecs = ir.VestCliff, amt.Uint64()
	case "Graded":
		schedule := make([]uint64, 0, len(v.Schedule))
		var prev uint64
		for i, s := range v.Schedule {
			amt, err := parseAmount(fmt.Sprintf("time.vesting.schedule[%d]", i), s)
			if err != nil {
				return out, err
			}
			val := amt.Uint64()
			if i > 0 && val <= prev {
				return out, valErr("time.vesting.schedule", "must be strictly increasing")
			}
			schedule = append(schedule, val)
			prev = val
		}
		out.Kind, out.Schedule = ir.VestGraded, schedule
	case "Milestone":
		conds := make([]ir.Condition, 0, len(v.Conditions))
		for i, rc := range v.Conditions {
			c, err := buildCondition(fmt.Sprintf("time.vesting.conditions[%d]", i), rc, map[string]bool{})
			if err != nil {
				return out, err
			}
			conds = append(conds, c)
		}
		out.Kind, out.Conditions = ir.VestMilestone, conds
	default:
		return out, valErr("time.vesting.kind", "unrecognised vesting kind %q", v.Kind)
	}
	if v.CliffSeconds != "" {
		amt, err := parseAmount("time.vesting.cliff", v.CliffSeconds)
		if err != nil {
			return out, err
		}
		out.HasCliff = true
		out.CliffSeconds = amt.Uint64()
	}
	return out, nil
}
