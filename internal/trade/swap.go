package trade

import (
	"context"
	"math/big"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dexRelay/internal/model"
)

// SwapExecutor submits a trade and returns the transaction handle.
type SwapExecutor interface {
	Swap(ctx context.Context, req model.SwapRequest) (model.SwapResponse, error)
}

// SimpleSwapInput describes a single-hop exact-input swap.
type SimpleSwapInput struct {
	ChainID         uint64
	TokenInAddress  string
	TokenOutAddress string
	// TokenInAmount is a base-10 integer in the input token's base units.
	TokenInAmount string
	TradeOptions  model.TradeOptions
}

// Swapper resolves both legs of a swap and hands the trade to an executor.
type Swapper struct {
	resolver *Resolver
	executor SwapExecutor
	logger   *zap.Logger
}

func NewSwapper(resolver *Resolver, executor SwapExecutor, logger *zap.Logger) *Swapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Swapper{resolver: resolver, executor: executor, logger: logger}
}

// SimpleSwap always submits an ExactInput trade with no transaction
// overrides. Errors from the executor are returned as-is, never retried.
func (s *Swapper) SimpleSwap(ctx context.Context, input SimpleSwapInput) (model.SwapOutput, error) {
	amount, err := parseAmount(input.TokenInAmount)
	if err != nil {
		return model.SwapOutput{}, err
	}

	var tokenIn, tokenOut model.TokenDescriptor
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tokenIn, err = s.resolver.resolve(gctx, StepResolveTokenIn, model.TokenQuery{
			ChainID: input.ChainID,
			Address: input.TokenInAddress,
		})
		return err
	})
	g.Go(func() error {
		var err error
		tokenOut, err = s.resolver.resolve(gctx, StepResolveTokenOut, model.TokenQuery{
			ChainID: input.ChainID,
			Address: input.TokenOutAddress,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return model.SwapOutput{}, err
	}

	req := buildSwapRequest(tokenIn, tokenOut, amount, input.TradeOptions)

	s.logger.Debug("submit swap",
		zap.Uint64("chain_id", input.ChainID),
		zap.String("token_in", tokenIn.Address),
		zap.String("token_out", tokenOut.Address),
		zap.String("amount", amount.String()),
		zap.Stringer("trade_type", req.TradeType),
	)

	resp, err := s.executor.Swap(ctx, req)
	if err != nil {
		return model.SwapOutput{}, &SwapExecutionError{
			Step:    StepExecuteSwap,
			ChainID: input.ChainID,
			Err:     err,
		}
	}

	return model.SwapOutput{TxHash: resp.Hash}, nil
}

func buildSwapRequest(tokenIn, tokenOut model.TokenDescriptor, amount *big.Int, opts model.TradeOptions) model.SwapRequest {
	return model.SwapRequest{
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		Amount:       amount,
		TradeType:    model.ExactInput,
		TradeOptions: opts,
		TxOverrides:  nil,
	}
}

func parseAmount(input string) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, &InvalidInputError{Step: StepParseAmount, Field: "tokenInAmount", Reason: "empty"}
	}
	amount, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return nil, &InvalidInputError{Step: StepParseAmount, Field: "tokenInAmount", Reason: "not a base-10 integer: " + input}
	}
	if amount.Sign() < 0 {
		return nil, &InvalidInputError{Step: StepParseAmount, Field: "tokenInAmount", Reason: "negative"}
	}
	return amount, nil
}
