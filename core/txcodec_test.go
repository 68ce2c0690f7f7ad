package core

import (
	"testing"

	"github.com/fvl-lang/fvl/ir"
)

func TestEncodeDecodeTxRoundTrip(t *testing.T) {
	cases := []Transaction{
		{Kind: TxDeploy, Sender: addr(1), Nonce: 0, Payload: DeployPayload{Template: []byte(stakingTemplate)}},
		{Kind: TxTransfer, Sender: addr(2), Nonce: 4, Payload: TransferPayload{
			From: addr(2), To: addr(3), Amount: ir.AmountFromUint64(900), Asset: ir.Asset{Kind: ir.AssetEth},
		}},
		{Kind: TxMint, Sender: admin, Nonce: 1, Payload: MintPayload{
			To: addr(5), Amount: ir.AmountFromUint64(42), Asset: ir.Asset{Kind: ir.AssetErc20, Token: addr(9)},
		}},
		{Kind: TxInteract, Sender: addr(2), Nonce: 2, Payload: InteractPayload{
			SystemID: ir.Sum([]byte("x")), Mode: ModeTrigger, Action: "withdraw",
		}},
		{Kind: TxOracleUpdate, Sender: admin, Nonce: 3, Payload: OracleUpdatePayload{
			SystemID: ir.Sum([]byte("y")), Oracle: "eth_price", Value: ir.AmountFromUint64(2500),
		}},
	}

	for _, tx := range cases {
		encoded := EncodeTx(tx)
		decoded, err := DecodeTx(encoded)
		if err != nil {
			t.Fatalf("decode failed for %s: %v", tx.Kind, err)
		}
		if decoded.Hash() != tx.Hash() {
			t.Fatalf("round-tripped %s hash mismatch", tx.Kind)
		}
	}
}

func TestDecodeTxRejectsTruncatedRecord(t *testing.T) {
	encoded := EncodeTx(Transaction{Kind: TxMint, Sender: admin, Nonce: 0, Payload: MintPayload{
		To: addr(2), Amount: ir.AmountFromUint64(1), Asset: ir.Asset{Kind: ir.AssetEth},
	}})
	_, err := DecodeTx(encoded[:len(encoded)-5])
	if err == nil {
		t.Fatalf("expected decode error on truncated record")
	}
}
