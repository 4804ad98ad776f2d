package trade

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"dexRelay/internal/model"
)

type fakeToken struct {
	symbol   string
	name     string
	decimals uint8
	supply   *big.Int
}

// fakeProvider implements every provider capability over an in-memory token table.
type fakeProvider struct {
	mu         sync.Mutex
	tokens     map[string]fakeToken
	supplyErr  error
	swapErr    error
	swapHash   string
	swapCalls  []model.SwapRequest
	dataCalls  int
	supplyCall int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{tokens: make(map[string]fakeToken)}
}

func (f *fakeProvider) add(chainID uint64, address string, token fakeToken) {
	f.tokens[tokenKey(chainID, address)] = token
}

func tokenKey(chainID uint64, address string) string {
	return fmt.Sprintf("%d:%s", chainID, strings.ToLower(address))
}

func (f *fakeProvider) FetchTokenData(ctx context.Context, query model.TokenQuery) (model.TokenDescriptor, error) {
	f.mu.Lock()
	f.dataCalls++
	token, ok := f.tokens[tokenKey(query.ChainID, query.Address)]
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return model.TokenDescriptor{}, err
	}
	if !ok {
		return model.TokenDescriptor{}, errors.New("no contract code at address")
	}

	desc := model.TokenDescriptor{
		ChainID:  query.ChainID,
		Address:  query.Address,
		Symbol:   token.symbol,
		Name:     token.name,
		Decimals: token.decimals,
	}
	if desc.Symbol == "" {
		desc.Symbol = query.Symbol
	}
	if desc.Name == "" {
		desc.Name = query.Name
	}
	return desc, nil
}

func (f *fakeProvider) FetchTotalSupply(ctx context.Context, token model.TokenDescriptor) (model.TokenAmount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supplyCall++
	if f.supplyErr != nil {
		return model.TokenAmount{}, f.supplyErr
	}
	entry := f.tokens[tokenKey(token.ChainID, token.Address)]
	return model.TokenAmount{Token: token, Amount: new(big.Int).Set(entry.supply)}, nil
}

func (f *fakeProvider) Swap(ctx context.Context, req model.SwapRequest) (model.SwapResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swapCalls = append(f.swapCalls, req)
	if f.swapErr != nil {
		return model.SwapResponse{}, f.swapErr
	}
	return model.SwapResponse{Hash: f.swapHash}, nil
}
