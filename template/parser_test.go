package template

import (
	"strings"
	"testing"
)

const stakingYAML = `
system:
  name: Staking Pool

pool:
  asset: "ETH"
  formula: Proportional
  recipient:
    kind: Contributors
  collector: "0x0000000000000000000000000000000000000001"

rules:
  conditions:
    - type: balance
      op: gte
      asset: "ETH"
      value: "1000"
      then:
        kind: Enable
        perm: withdraw

rights:
  staker:
    access:
      kind: Anyone
    permissions:
      - withdraw

time:
  start:
    kind: Now
  end:
    kind: None
  locks: "0"
  vesting:
    kind: None

oracles:
  - name: eth_price
    type: price
    source: chainlink
`

func mustParse(t *testing.T, doc string) *IR {
	t.Helper()
	ir, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return ir
}

func TestParseValidTemplate(t *testing.T) {
	irDoc := mustParse(t, stakingYAML)
	if irDoc.Name != "Staking Pool" {
		t.Fatalf("unexpected name: %q", irDoc.Name)
	}
	if len(irDoc.Conditions) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(irDoc.Conditions))
	}
	if _, ok := irDoc.Roles["staker"]; !ok {
		t.Fatalf("expected staker role")
	}
}

func TestCanonicalizationIsDeterministic(t *testing.T) {
	a := mustParse(t, stakingYAML)

	reordered := strings.Replace(stakingYAML, "system:\n  name: Staking Pool\n\npool:", "pool:", 1)
	reordered = reordered + "\nsystem:\n  name: Staking Pool\n"

	b := mustParse(t, reordered)

	ca, cb := Canonicalize(a), Canonicalize(b)
	if string(ca) != string(cb) {
		t.Fatalf("canonical bytes differ across semantically identical documents")
	}
	if SystemID(a) != SystemID(b) {
		t.Fatalf("system IDs differ across semantically identical documents")
	}
}

func TestMissingSectionRejected(t *testing.T) {
	doc := strings.Replace(stakingYAML, "oracles:\n  - name: eth_price\n    type: price\n    source: chainlink\n", "", 1)
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatalf("expected error for missing oracles section")
	}
}

func TestReservedRoleNameRejected(t *testing.T) {
	doc := strings.Replace(stakingYAML, "staker:", "deployer:", 1)
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatalf("expected error for reserved role name")
	}
}

func TestUndeclaredOracleRejected(t *testing.T) {
	doc := strings.Replace(stakingYAML, `type: balance
      op: gte
      asset: "ETH"
      value: "1000"`, `type: price
      op: gte
      oracle: unknown_oracle
      value: "1000"`, 1)
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatalf("expected error for undeclared oracle")
	}
}

func TestTieredThresholdsMustBeIncreasing(t *testing.T) {
	doc := strings.Replace(stakingYAML, "formula: Proportional", "formula: Tiered\n  thresholds: [\"100\", \"50\"]", 1)
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatalf("expected error for non-increasing tiers")
	}
}

func TestUnenabledPermissionRejected(t *testing.T) {
	doc := strings.Replace(stakingYAML, "perm: withdraw", "perm: nuke", 1)
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatalf("expected error: perm not granted to any role")
	}
}
