package model

import (
	"encoding/json"
	"math/big"
)

// TokenQuery is the partial identification of a token on a chain.
// Symbol and Name are optional hints; empty means absent.
type TokenQuery struct {
	ChainID uint64 `json:"chain_id"`
	Address string `json:"address"`
	Symbol  string `json:"symbol,omitempty"`
	Name    string `json:"name,omitempty"`
}

// TokenDescriptor is a resolved token. Identity is (ChainID, Address).
type TokenDescriptor struct {
	ChainID  uint64 `json:"chain_id"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
	Decimals uint8  `json:"decimals"`
}

// TokenAmount is a raw base-unit amount of a token.
type TokenAmount struct {
	Token  TokenDescriptor
	Amount *big.Int
}

type tokenAmountJSON struct {
	Token  TokenDescriptor `json:"token"`
	Amount string          `json:"amount"`
}

// MarshalJSON encodes the amount as a decimal string.
func (ta TokenAmount) MarshalJSON() ([]byte, error) {
	amount := "0"
	if ta.Amount != nil {
		amount = ta.Amount.String()
	}
	return json.Marshal(tokenAmountJSON{Token: ta.Token, Amount: amount})
}
