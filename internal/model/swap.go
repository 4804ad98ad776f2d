package model

import (
	"fmt"
	"math/big"
)

// TradeType is the direction of a trade.
type TradeType int

const (
	// ExactInput fixes the input amount; the output is set by the market.
	ExactInput TradeType = iota
	// ExactOutput fixes the output amount.
	ExactOutput
)

func (t TradeType) String() string {
	switch t {
	case ExactInput:
		return "EXACT_INPUT"
	case ExactOutput:
		return "EXACT_OUTPUT"
	default:
		return fmt.Sprintf("TradeType(%d)", int(t))
	}
}

// TradeOptions is passed through to the provider untouched.
type TradeOptions struct {
	// AllowedSlippage is a percentage, e.g. "0.5".
	AllowedSlippage string `json:"allowed_slippage,omitempty"`
	Recipient       string `json:"recipient,omitempty"`
	// Deadline is a unix timestamp in seconds.
	Deadline uint64 `json:"deadline,omitempty"`
	// TTL is used to derive a deadline when Deadline is zero.
	TTL uint64 `json:"ttl,omitempty"`
}

// TxOverrides replaces provider-chosen transaction fields.
type TxOverrides struct {
	GasLimit uint64
	GasPrice *big.Int
	Nonce    *uint64
}

// SwapRequest is the single-hop trade submitted to a swap executor.
type SwapRequest struct {
	TokenIn      TokenDescriptor
	TokenOut     TokenDescriptor
	Amount       *big.Int
	TradeType    TradeType
	TradeOptions TradeOptions
	TxOverrides  *TxOverrides
}

// SwapResponse is the executor's raw response.
type SwapResponse struct {
	Hash string `json:"hash"`
}

// SwapOutput is the result returned to swap callers.
type SwapOutput struct {
	TxHash string `json:"tx_hash"`
}
