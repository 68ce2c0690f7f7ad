package sequencer

import (
	"testing"

	"github.com/fvl-lang/fvl/core"
	"github.com/fvl-lang/fvl/internal/testutil"
	"github.com/fvl-lang/fvl/ir"
)

func addr(last byte) ir.Address {
	var a ir.Address
	a[len(a)-1] = last
	return a
}

var admin = addr(1)

func newTestSequencer(t *testing.T, logPath string) *Sequencer {
	t.Helper()
	log, err := OpenBlockLog(logPath)
	if err != nil {
		t.Fatalf("open block log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })

	var tick uint64
	clock := func() uint64 { tick++; return tick }
	return New(core.NewWorld(admin), log, clock, ir.Hash{})
}

func TestSubmitProducesOneBlockPerTransaction(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("sandbox: %v", err)
	}
	defer sb.Cleanup()

	seq := newTestSequencer(t, sb.Path("blocks.log"))
	alice := addr(2)

	r1, err := seq.Submit(core.Transaction{Kind: core.TxMint, Sender: admin, Nonce: 0, Payload: core.MintPayload{
		To: alice, Amount: ir.AmountFromUint64(100), Asset: ir.Asset{Kind: ir.AssetEth},
	}})
	if err != nil || !r1.Success {
		t.Fatalf("mint failed: %v %+v", err, r1)
	}
	if seq.BlockNumber() != 1 {
		t.Fatalf("expected block 1, got %d", seq.BlockNumber())
	}

	r2, err := seq.Submit(core.Transaction{Kind: core.TxTransfer, Sender: alice, Nonce: 0, Payload: core.TransferPayload{
		From: alice, To: admin, Amount: ir.AmountFromUint64(10), Asset: ir.Asset{Kind: ir.AssetEth},
	}})
	if err != nil || !r2.Success {
		t.Fatalf("transfer failed: %v %+v", err, r2)
	}
	if seq.BlockNumber() != 2 {
		t.Fatalf("expected block 2, got %d", seq.BlockNumber())
	}

	records, err := ReadAll(sb.Path("blocks.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 persisted blocks, got %d", len(records))
	}
	if records[0].Number != 1 || records[1].Number != 2 {
		t.Fatalf("unexpected block numbers: %d, %d", records[0].Number, records[1].Number)
	}
}

func TestAdmissionRejectionDoesNotConsumeABlock(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("sandbox: %v", err)
	}
	defer sb.Cleanup()

	seq := newTestSequencer(t, sb.Path("blocks.log"))
	alice := addr(2)

	_, err = seq.Submit(core.Transaction{Kind: core.TxTransfer, Sender: alice, Nonce: 7, Payload: core.TransferPayload{
		From: alice, To: admin, Amount: ir.AmountFromUint64(1), Asset: ir.Asset{Kind: ir.AssetEth},
	}})
	if err == nil {
		t.Fatalf("expected admission rejection")
	}
	if seq.BlockNumber() != 0 {
		t.Fatalf("expected block number unchanged, got %d", seq.BlockNumber())
	}
	records, err := ReadAll(sb.Path("blocks.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no persisted blocks, got %d", len(records))
	}
}

func TestReplayFromGenesisReproducesState(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("sandbox: %v", err)
	}
	defer sb.Cleanup()

	logPath := sb.Path("blocks.log")
	seq := newTestSequencer(t, logPath)
	alice, bob := addr(2), addr(3)

	txs := []core.Transaction{
		{Kind: core.TxMint, Sender: admin, Nonce: 0, Payload: core.MintPayload{To: alice, Amount: ir.AmountFromUint64(5000), Asset: ir.Asset{Kind: ir.AssetEth}}},
		{Kind: core.TxTransfer, Sender: alice, Nonce: 0, Payload: core.TransferPayload{From: alice, To: bob, Amount: ir.AmountFromUint64(777), Asset: ir.Asset{Kind: ir.AssetEth}}},
	}
	for _, tx := range txs {
		if _, err := seq.Submit(tx); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	wantRoot := core.StateRoot(seq.World())

	replayed, lastHash, err := ReplayFromGenesis(logPath, admin)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if core.StateRoot(replayed) != wantRoot {
		t.Fatalf("replayed state root does not match live state root")
	}
	if replayed.Accounts[bob].Eth.Uint64() != 777 {
		t.Fatalf("replayed bob balance = %d, want 777", replayed.Accounts[bob].Eth.Uint64())
	}
	if lastHash != seq.lastHash {
		t.Fatalf("replayed last hash does not match live sequencer's last hash")
	}
}

func TestReplayDetectsStateDivergence(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("sandbox: %v", err)
	}
	defer sb.Cleanup()

	logPath := sb.Path("blocks.log")
	seq := newTestSequencer(t, logPath)
	alice := addr(2)
	if _, err := seq.Submit(core.Transaction{Kind: core.TxMint, Sender: admin, Nonce: 0, Payload: core.MintPayload{
		To: alice, Amount: ir.AmountFromUint64(10), Asset: ir.Asset{Kind: ir.AssetEth},
	}}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Corrupt the recorded root of the one persisted block, then recompute
	// its self-hash so the tamper is only visible once replay reapplies
	// the transaction and recomputes the real root — not at the
	// self-consistency check.
	records, err := ReadAll(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	records[0].StateRoot[0] ^= 0xff
	records[0].Hash = records[0].ComputeHash()
	corrupted, err := OpenBlockLog(sb.Path("corrupt.log"))
	if err != nil {
		t.Fatalf("open corrupt log: %v", err)
	}
	if err := corrupted.Append(records[0]); err != nil {
		t.Fatalf("append corrupt record: %v", err)
	}
	_ = corrupted.Close()

	_, _, err = ReplayFromGenesis(sb.Path("corrupt.log"), admin)
	if err == nil {
		t.Fatalf("expected state divergence error")
	}
	if kinded, ok := err.(core.Kinded); !ok || kinded.Kind() != "StateDivergence" {
		t.Fatalf("expected StateDivergence error, got %v", err)
	}
}

func TestFirstBlockHasZeroParentHash(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("sandbox: %v", err)
	}
	defer sb.Cleanup()

	seq := newTestSequencer(t, sb.Path("blocks.log"))
	alice := addr(2)
	if _, err := seq.Submit(core.Transaction{Kind: core.TxMint, Sender: admin, Nonce: 0, Payload: core.MintPayload{
		To: alice, Amount: ir.AmountFromUint64(1), Asset: ir.Asset{Kind: ir.AssetEth},
	}}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	records, err := ReadAll(sb.Path("blocks.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if ir.Hash(records[0].ParentHash) != (ir.Hash{}) {
		t.Fatalf("expected block 1's parent hash to be all zeros, got %s", ir.Hash(records[0].ParentHash).Hex())
	}
	if ir.Hash(records[0].Hash) != records[0].ComputeHash() {
		t.Fatalf("recorded hash does not match its own contents")
	}
}

func TestReplayDetectsParentHashMismatch(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("sandbox: %v", err)
	}
	defer sb.Cleanup()

	logPath := sb.Path("blocks.log")
	seq := newTestSequencer(t, logPath)
	alice, bob := addr(2), addr(3)
	for _, tx := range []core.Transaction{
		{Kind: core.TxMint, Sender: admin, Nonce: 0, Payload: core.MintPayload{To: alice, Amount: ir.AmountFromUint64(10), Asset: ir.Asset{Kind: ir.AssetEth}}},
		{Kind: core.TxMint, Sender: admin, Nonce: 1, Payload: core.MintPayload{To: bob, Amount: ir.AmountFromUint64(20), Asset: ir.Asset{Kind: ir.AssetEth}}},
	} {
		if _, err := seq.Submit(tx); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	records, err := ReadAll(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	// Break the chain: block 2 no longer points at block 1's real hash.
	records[1].ParentHash[0] ^= 0xff
	records[1].Hash = records[1].ComputeHash()

	broken, err := OpenBlockLog(sb.Path("broken.log"))
	if err != nil {
		t.Fatalf("open broken log: %v", err)
	}
	for _, rec := range records {
		if err := broken.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	_ = broken.Close()

	_, _, err = ReplayFromGenesis(sb.Path("broken.log"), admin)
	if err == nil {
		t.Fatalf("expected parent-hash chain break to be detected")
	}
	if kinded, ok := err.(core.Kinded); !ok || kinded.Kind() != "LogCorruption" {
		t.Fatalf("expected LogCorruption error, got %v", err)
	}
}
