package main

import (
	"testing"

	"github.com/fvl-lang/fvl/ir"
)

func TestParseAddressRoundTrip(t *testing.T) {
	want := ir.Address{1, 2, 3}
	got, err := parseAddress(want.Hex())
	if err != nil {
		t.Fatalf("parseAddress: %v", err)
	}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	if _, err := parseAddress("not-an-address"); err == nil {
		t.Fatal("expected error for malformed address")
	}
}

func TestParseSystemIDRoundTrip(t *testing.T) {
	want := ir.Sum([]byte("system"))
	got, err := parseSystemID(want.Hex())
	if err != nil {
		t.Fatalf("parseSystemID: %v", err)
	}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseAmount(t *testing.T) {
	a, err := parseAmount("42")
	if err != nil {
		t.Fatalf("parseAmount: %v", err)
	}
	if a.String() != "42" {
		t.Fatalf("got %s, want 42", a.String())
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	if _, err := parseAmount("not-a-number"); err == nil {
		t.Fatal("expected error for malformed amount")
	}
}

func TestParseAssetEth(t *testing.T) {
	a, err := parseAsset("ETH")
	if err != nil {
		t.Fatalf("parseAsset: %v", err)
	}
	if a.Kind != ir.AssetEth {
		t.Fatalf("got kind %v, want AssetEth", a.Kind)
	}
}

func TestParseAssetErc20(t *testing.T) {
	tok := ir.Address{9, 9}
	a, err := parseAsset("ERC20:" + tok.Hex())
	if err != nil {
		t.Fatalf("parseAsset: %v", err)
	}
	if a.Kind != ir.AssetErc20 || a.Token != tok {
		t.Fatalf("got %+v, want token %v", a, tok)
	}
}

func TestParseAssetErc1155(t *testing.T) {
	tok := ir.Address{4, 4}
	a, err := parseAsset("ERC1155:" + tok.Hex() + ":7")
	if err != nil {
		t.Fatalf("parseAsset: %v", err)
	}
	if a.Kind != ir.AssetErc1155 || a.Token != tok || a.ID.String() != "7" {
		t.Fatalf("got %+v", a)
	}
}

func TestParseAssetRejectsUnknownKind(t *testing.T) {
	if _, err := parseAsset("DOGE:nonsense"); err == nil {
		t.Fatal("expected error for unknown asset kind")
	}
}
