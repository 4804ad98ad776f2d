package trade

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"go.uber.org/zap"

	"dexRelay/internal/model"
)

func TestResolveUsesProviderMetadata(t *testing.T) {
	provider := newFakeProvider()
	provider.add(1, "0xTOKENIN", fakeToken{symbol: "FOO", name: "Foo Token", decimals: 18, supply: big.NewInt(1000000)})
	resolver := NewResolver(provider, zap.NewNop())

	got, err := resolver.Resolve(context.Background(), model.TokenQuery{
		ChainID: 1,
		Address: "0xTOKENIN",
		Symbol:  "HINT",
		Name:    "Hint Name",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	want := model.TokenDescriptor{ChainID: 1, Address: "0xTOKENIN", Symbol: "FOO", Name: "Foo Token", Decimals: 18}
	if got != want {
		t.Fatalf("descriptor mismatch: %+v != %+v", got, want)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	provider := newFakeProvider()
	provider.add(1, "0xTOKENIN", fakeToken{symbol: "FOO", name: "Foo Token", supply: big.NewInt(1)})
	resolver := NewResolver(provider, nil)

	query := model.TokenQuery{ChainID: 1, Address: "0xTOKENIN"}
	first, err := resolver.Resolve(context.Background(), query)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := resolver.Resolve(context.Background(), query)
		if err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
		if next != first {
			t.Fatalf("resolve not idempotent: %+v != %+v", next, first)
		}
	}
}

func TestResolveUnknownAddress(t *testing.T) {
	provider := newFakeProvider()
	resolver := NewResolver(provider, nil)

	_, err := resolver.Resolve(context.Background(), model.TokenQuery{ChainID: 1, Address: "0xMISSING"})
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}

	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected *ResolutionError, got %T", err)
	}
	if resErr.Step != StepResolveToken || resErr.ChainID != 1 || resErr.Address != "0xMISSING" {
		t.Fatalf("unexpected error context: %+v", resErr)
	}
	if errors.Is(err, ErrProvider) || errors.Is(err, ErrSwapExecution) {
		t.Fatalf("resolution error matched another kind")
	}
}
