package template

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/fvl-lang/fvl/ir"
)

// canonWriter accumulates the canonical byte image of a template. Every
// variant is tagged with a single byte; every variable-length field is
// length-prefixed; every integer is fixed-width big-endian. Map-shaped data
// (the `rights` section) is sorted by key before encoding so canonicalization
// never depends on source key order.
type canonWriter struct {
	buf bytes.Buffer
}

func (w *canonWriter) tag(b byte) { w.buf.WriteByte(b) }

func (w *canonWriter) u64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *canonWriter) u128(a ir.Amount) {
	b := a.Bytes16()
	w.buf.Write(b[:])
}

func (w *canonWriter) bytes(b []byte) {
	var lb [4]byte
	binary.BigEndian.PutUint32(lb[:], uint32(len(b)))
	w.buf.Write(lb[:])
	w.buf.Write(b)
}

func (w *canonWriter) str(s string) { w.bytes([]byte(s)) }

func (w *canonWriter) addr(a ir.Address) { w.buf.Write(a[:]) }

// Canonicalize produces the deterministic byte image of an IR, the input to
// system-ID hashing. Re-parsing any template that canonicalizes to the same
// source semantics yields byte-identical output regardless of whitespace,
// key order, or numeric formatting in the original document.
func Canonicalize(t *IR) []byte {
	w := &canonWriter{}
	w.str(t.Name)

	encodePool(w, t.Pool)

	w.u64(uint64(len(t.Conditions)))
	for _, c := range t.Conditions {
		encodeCondition(w, c)
	}

	roleNames := make([]string, 0, len(t.Roles))
	for name := range t.Roles {
		roleNames = append(roleNames, name)
	}
	sort.Strings(roleNames)
	w.u64(uint64(len(roleNames)))
	for _, name := range roleNames {
		w.str(name)
		encodeRole(w, t.Roles[name])
	}

	encodeTime(w, t.Time)

	oracles := append([]ir.OracleDecl(nil), t.Oracles...)
	sort.Slice(oracles, func(i, j int) bool { return oracles[i].Name < oracles[j].Name })
	w.u64(uint64(len(oracles)))
	for _, o := range oracles {
		w.str(o.Name)
		w.str(o.Type)
		w.str(o.Source)
	}

	return w.buf.Bytes()
}

func encodeAsset(w *canonWriter, a ir.Asset) {
	w.tag(byte(a.Kind))
	switch a.Kind {
	case ir.AssetErc20, ir.AssetErc721:
		w.addr(a.Token)
	case ir.AssetErc1155:
		w.addr(a.Token)
		w.u128(a.ID)
	case ir.AssetMultiple:
		w.u64(uint64(len(a.Members)))
		for _, m := range a.Members {
			encodeAsset(w, m)
		}
	}
}

func encodeAccess(w *canonWriter, a ir.AccessRule) {
	w.tag(byte(a.Kind))
	switch a.Kind {
	case ir.AccessTokenHolders:
		w.addr(a.ERC20)
	case ir.AccessNftHolders:
		w.addr(a.ERC721)
	case ir.AccessWhitelist:
		list := append([]ir.Address(nil), a.Whitelist...)
		sort.Slice(list, func(i, j int) bool { return bytes.Compare(list[i][:], list[j][:]) < 0 })
		w.u64(uint64(len(list)))
		for _, addr := range list {
			w.addr(addr)
		}
	case ir.AccessMinBalance:
		w.addr(a.Token)
		w.u128(a.Amount)
	}
}

func encodeDistribution(w *canonWriter, d ir.Distribution) {
	w.tag(byte(d.Kind))
	switch d.Kind {
	case ir.DistWeighted:
		w.str(d.Metric)
	case ir.DistTiered:
		w.u64(uint64(len(d.Thresholds)))
		for _, t := range d.Thresholds {
			w.u128(t)
		}
	}
}

func encodeRecipient(w *canonWriter, r ir.Recipient) {
	w.tag(byte(r.Kind))
	switch r.Kind {
	case ir.RecipTopN:
		w.u64(r.Count)
	case ir.RecipRole:
		w.str(r.Role)
	case ir.RecipConditional:
		w.str(r.Expression)
	}
}

func encodePool(w *canonWriter, p Pool) {
	encodeAsset(w, p.Asset)
	w.buf.WriteByte(boolByte(p.HasCap))
	if p.HasCap {
		w.u128(p.Cap)
	}
	w.addr(p.Collector)
	encodeDistribution(w, p.Formula)
	encodeRecipient(w, p.Recipient)
}

func encodeAction(w *canonWriter, a ir.Action) {
	w.tag(byte(a.Kind))
	switch a.Kind {
	case ir.ActionEnable, ir.ActionDisable:
		w.str(a.Perm)
	case ir.ActionLiquidate:
		w.addr(a.Target)
	case ir.ActionMint:
		encodeAsset(w, a.Asset)
		w.u128(a.Amount)
		w.addr(a.To)
	case ir.ActionBurn:
		encodeAsset(w, a.Asset)
		w.u128(a.Amount)
		w.addr(a.From)
	case ir.ActionTransfer:
		encodeAsset(w, a.Asset)
		w.u128(a.Amount)
		w.addr(a.From)
		w.addr(a.To)
	case ir.ActionExecute:
		w.str(a.Name)
	}
}

func encodeCondition(w *canonWriter, c ir.Condition) {
	w.tag(byte(c.Kind))
	w.tag(byte(c.Op))
	switch c.Kind {
	case ir.CondBalance:
		encodeAsset(w, c.Asset)
		w.u128(c.Value)
	case ir.CondPrice:
		w.str(c.Oracle)
		w.u128(c.Value)
	case ir.CondEvent:
		w.str(c.Event)
	default: // time, holder_count, total_value, collateral_ratio, utilization
		w.u128(c.Value)
	}
	encodeAction(w, c.Then)
}

func encodeRole(w *canonWriter, r Role) {
	encodeAccess(w, r.Access)
	perms := append([]string(nil), r.Permissions...)
	sort.Strings(perms)
	w.u64(uint64(len(perms)))
	for _, p := range perms {
		w.str(p)
	}
}

func encodeTimeBound(w *canonWriter, b ir.TimeBound) {
	w.tag(byte(b.Kind))
	if b.Kind == ir.TimeTimestamp {
		w.u64(b.Value)
	}
}

func encodeVesting(w *canonWriter, v ir.Vesting) {
	w.tag(byte(v.Kind))
	switch v.Kind {
	case ir.VestLinear, ir.VestCliff:
		w.u64(v.DurationSecs)
	case ir.VestGraded:
		w.u64(uint64(len(v.Schedule)))
		for _, s := range v.Schedule {
			w.u64(s)
		}
	case ir.VestMilestone:
		w.u64(uint64(len(v.Conditions)))
		for _, c := range v.Conditions {
			encodeCondition(w, c)
		}
	}
	w.buf.WriteByte(boolByte(v.HasCliff))
	if v.HasCliff {
		w.u64(v.CliffSeconds)
	}
}

func encodeTime(w *canonWriter, t ir.TimeSpec) {
	encodeTimeBound(w, t.Start)
	encodeTimeBound(w, t.End)
	w.tag(byte(t.Lock.Kind))
	if t.Lock.Kind == ir.LockDuration {
		w.u64(t.Lock.Seconds)
	}
	encodeVesting(w, t.Vesting)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
