package trade

import (
	"context"

	"go.uber.org/zap"

	"dexRelay/internal/model"
)

// TokenDataFetcher looks up token data on chain.
type TokenDataFetcher interface {
	FetchTokenData(ctx context.Context, query model.TokenQuery) (model.TokenDescriptor, error)
}

// Resolver turns a partial token identification into a TokenDescriptor.
type Resolver struct {
	fetcher TokenDataFetcher
	logger  *zap.Logger
}

func NewResolver(fetcher TokenDataFetcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{fetcher: fetcher, logger: logger}
}

// Resolve returns the provider's descriptor for the query. Provider symbol
// and name win over the query hints.
func (r *Resolver) Resolve(ctx context.Context, query model.TokenQuery) (model.TokenDescriptor, error) {
	return r.resolve(ctx, StepResolveToken, query)
}

func (r *Resolver) resolve(ctx context.Context, step Step, query model.TokenQuery) (model.TokenDescriptor, error) {
	token, err := r.fetcher.FetchTokenData(ctx, query)
	if err != nil {
		r.logger.Debug("token resolution failed",
			zap.String("step", string(step)),
			zap.Uint64("chain_id", query.ChainID),
			zap.String("address", query.Address),
			zap.Error(err),
		)
		return model.TokenDescriptor{}, &ResolutionError{
			Step:    step,
			ChainID: query.ChainID,
			Address: query.Address,
			Err:     err,
		}
	}

	r.logger.Debug("token resolved",
		zap.String("step", string(step)),
		zap.Uint64("chain_id", token.ChainID),
		zap.String("address", token.Address),
		zap.String("symbol", token.Symbol),
	)
	return token, nil
}
