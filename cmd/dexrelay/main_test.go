package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"testing"

	"dexRelay/internal/chain"
	"dexRelay/internal/model"
)

func TestFormatTokenAmount(t *testing.T) {
	supply, _ := new(big.Int).SetString("1234500000000000000000", 10)
	tests := []struct {
		value    *big.Int
		decimals uint8
		want     string
	}{
		{value: nil, decimals: 18, want: "0"},
		{value: big.NewInt(42), decimals: 0, want: "42"},
		{value: big.NewInt(1500000), decimals: 6, want: "1.500000"},
		{value: supply, decimals: 18, want: "1234.500000000000000000"},
	}
	for _, tt := range tests {
		if got := formatTokenAmount(tt.value, tt.decimals); got != tt.want {
			t.Fatalf("formatTokenAmount(%v, %d) = %s, want %s", tt.value, tt.decimals, got, tt.want)
		}
	}
}

func TestSelectNetwork(t *testing.T) {
	defs := chain.NetworkDefinitions{Networks: map[string]chain.NetworkDefinition{
		"mainnet": {ChainID: 1, RPCURL: "http://localhost:8545"},
		"bsc":     {ChainID: 56, RPCURL: "http://localhost:8546"},
	}}

	selected, err := selectNetwork(defs, 56)
	if err != nil {
		t.Fatalf("select network: %v", err)
	}
	if len(selected.Networks) != 1 || selected.Networks["bsc"].ChainID != 56 {
		t.Fatalf("unexpected selection: %+v", selected)
	}

	if _, err := selectNetwork(defs, 10); err == nil {
		t.Fatalf("expected error for unknown chain id")
	}
}

func TestLatestSwaps(t *testing.T) {
	records := []model.SwapRecord{
		{ID: "1", ChainID: 1},
		{ID: "2", ChainID: 56},
		{ID: "3", ChainID: 1},
		{ID: "4", ChainID: 1},
	}

	got := latestSwaps(records, 1, 2)
	if len(got) != 2 || got[0].ID != "4" || got[1].ID != "3" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if all := latestSwaps(records, 0, 0); len(all) != 4 || all[0].ID != "4" {
		t.Fatalf("unexpected unfiltered records: %+v", all)
	}
}

func TestPrintJSONSupply(t *testing.T) {
	var buf bytes.Buffer
	out := supplyOutput{
		Token:     model.TokenDescriptor{ChainID: 1, Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6},
		Amount:    "2500000",
		Formatted: formatTokenAmount(big.NewInt(2500000), 6),
	}
	if err := printJSON(&buf, out); err != nil {
		t.Fatalf("print json: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded["amount"] != "2500000" || decoded["formatted"] != "2.500000" {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
