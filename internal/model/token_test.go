package model

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestTokenAmountJSONStringAmount(t *testing.T) {
	amount, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	payload := TokenAmount{
		Token: TokenDescriptor{
			ChainID:  1,
			Address:  "0x1111111111111111111111111111111111111111",
			Symbol:   "FOO",
			Name:     "Foo Token",
			Decimals: 18,
		},
		Amount: amount,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got, ok := decoded["amount"].(string); !ok || got != amount.String() {
		t.Fatalf("amount should be decimal string, got %v", decoded["amount"])
	}
	token, ok := decoded["token"].(map[string]interface{})
	if !ok || token["symbol"] != "FOO" || token["decimals"] != float64(18) {
		t.Fatalf("token should be nested under \"token\", got %v", decoded["token"])
	}
}

func TestTokenAmountNilAmountEncodesZero(t *testing.T) {
	data, err := json.Marshal(TokenAmount{})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["amount"] != "0" {
		t.Fatalf("nil amount should encode as \"0\", got %v", decoded["amount"])
	}
}

func TestTradeTypeString(t *testing.T) {
	if ExactInput.String() != "EXACT_INPUT" {
		t.Fatalf("unexpected name %q", ExactInput.String())
	}
	if ExactOutput.String() != "EXACT_OUTPUT" {
		t.Fatalf("unexpected name %q", ExactOutput.String())
	}
	if TradeType(7).String() != "TradeType(7)" {
		t.Fatalf("unexpected name %q", TradeType(7).String())
	}
}
