package dex

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	bipsTotal           = 10000
	defaultSlippageBips = 50
)

// QuoteAmountsOut asks the router for the output amounts along path.
func QuoteAmountsOut(ctx context.Context, caller Caller, router common.Address, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	routerABI, err := V2RouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	values, err := callMethod(ctx, caller, router, routerABI, "getAmountsOut", amountIn, path)
	if err != nil {
		return nil, err
	}
	amounts, ok := values[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("getAmountsOut unexpected type %T", values[0])
	}
	if len(amounts) != len(path) {
		return nil, fmt.Errorf("getAmountsOut returned %d amounts for path of %d", len(amounts), len(path))
	}
	return amounts, nil
}

// PackSwapExactTokensForTokens encodes the router call.
func PackSwapExactTokensForTokens(amountIn, amountOutMin *big.Int, path []common.Address, to common.Address, deadline *big.Int) ([]byte, error) {
	routerABI, err := V2RouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	data, err := routerABI.Pack("swapExactTokensForTokens", amountIn, amountOutMin, path, to, deadline)
	if err != nil {
		return nil, fmt.Errorf("pack swapExactTokensForTokens: %w", err)
	}
	return data, nil
}

// ParseSlippageBips converts a percentage string such as "0.5" into basis
// points, truncating below one bip. Empty input yields the default.
func ParseSlippageBips(percent string) (uint64, error) {
	percent = strings.TrimSpace(percent)
	if percent == "" {
		return defaultSlippageBips, nil
	}
	rat, ok := new(big.Rat).SetString(percent)
	if !ok {
		return 0, fmt.Errorf("invalid slippage %q", percent)
	}
	if rat.Sign() < 0 || rat.Cmp(big.NewRat(100, 1)) > 0 {
		return 0, fmt.Errorf("slippage %s%% out of range [0, 100]", percent)
	}
	rat.Mul(rat, big.NewRat(100, 1))
	bips := new(big.Int).Quo(rat.Num(), rat.Denom())
	return bips.Uint64(), nil
}

func deductSlippage(amount *big.Int, slippageBips uint64) *big.Int {
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0)
	}

	total := big.NewInt(bipsTotal)
	slippageBig := new(big.Int).SetUint64(slippageBips)

	multiplier := new(big.Int).Sub(total, slippageBig)
	result := new(big.Int).Mul(amount, multiplier)
	result.Div(result, total)

	return result
}
