package trade

import (
	"context"
	"errors"

	"dexRelay/internal/model"
)

// SupplyFetcher reads the total supply of a resolved token.
type SupplyFetcher interface {
	FetchTotalSupply(ctx context.Context, token model.TokenDescriptor) (model.TokenAmount, error)
}

// SupplyQuery resolves a token and reads its total supply.
type SupplyQuery struct {
	resolver *Resolver
	supply   SupplyFetcher
}

func NewSupplyQuery(resolver *Resolver, supply SupplyFetcher) *SupplyQuery {
	return &SupplyQuery{resolver: resolver, supply: supply}
}

// FetchTokenTotalSupply re-resolves and re-queries on every call.
func (q *SupplyQuery) FetchTokenTotalSupply(ctx context.Context, query model.TokenQuery) (model.TokenAmount, error) {
	token, err := q.resolver.Resolve(ctx, query)
	if err != nil {
		return model.TokenAmount{}, err
	}

	amount, err := q.supply.FetchTotalSupply(ctx, token)
	if err != nil {
		return model.TokenAmount{}, &ProviderError{
			Step:    StepQuerySupply,
			ChainID: token.ChainID,
			Address: token.Address,
			Err:     err,
		}
	}
	if amount.Amount == nil || amount.Amount.Sign() < 0 {
		return model.TokenAmount{}, &ProviderError{
			Step:    StepQuerySupply,
			ChainID: token.ChainID,
			Address: token.Address,
			Err:     errors.New("supply amount missing or negative"),
		}
	}
	return amount, nil
}
