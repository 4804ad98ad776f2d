package model

// SwapRecord is a journal entry for a submitted swap.
type SwapRecord struct {
	ID              string `json:"id"`
	ChainID         uint64 `json:"chain_id"`
	TokenIn         string `json:"token_in"`
	TokenOut        string `json:"token_out"`
	AmountIn        string `json:"amount_in"`
	AllowedSlippage string `json:"allowed_slippage,omitempty"`
	Recipient       string `json:"recipient,omitempty"`
	TxHash          string `json:"tx_hash"`
	SubmittedAt     string `json:"submitted_at"`
}
