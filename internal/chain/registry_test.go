package chain

import (
	"context"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

type chainIDService struct {
	id int64
}

func (s *chainIDService) ChainId() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(s.id))
}

func newRPCServer(t *testing.T, chainID int64) string {
	t.Helper()
	server := rpc.NewServer()
	if err := server.RegisterName("eth", &chainIDService{id: chainID}); err != nil {
		t.Fatalf("register eth service: %v", err)
	}
	httpServer := httptest.NewServer(server)
	t.Cleanup(func() {
		httpServer.Close()
		server.Stop()
	})
	return httpServer.URL
}

func TestNewRegistry(t *testing.T) {
	defs := NetworkDefinitions{Networks: map[string]NetworkDefinition{
		"mainnet": {ChainID: 1, RPCURL: newRPCServer(t, 1)},
		"bsc":     {ChainID: 56, RPCURL: newRPCServer(t, 56)},
	}}

	registry, err := NewRegistry(context.Background(), defs, nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	defer registry.Close()

	for _, id := range []uint64{1, 56} {
		client, ok := registry.Client(id)
		if !ok || client == nil {
			t.Fatalf("chain %d not registered", id)
		}
		remote, err := client.ChainID(context.Background())
		if err != nil || remote.Uint64() != id {
			t.Fatalf("chain %d: remote id %v (%v)", id, remote, err)
		}
	}
	if _, ok := registry.Client(10); ok {
		t.Fatalf("unexpected client for chain 10")
	}
}

func TestNewRegistryChainIDMismatch(t *testing.T) {
	defs := NetworkDefinitions{Networks: map[string]NetworkDefinition{
		"mainnet": {ChainID: 1, RPCURL: newRPCServer(t, 5)},
	}}

	_, err := NewRegistry(context.Background(), defs, nil)
	if err == nil || !strings.Contains(err.Error(), "rpc reports chain id 5") {
		t.Fatalf("expected chain id mismatch, got %v", err)
	}
}

func TestNewRegistryNoNetworks(t *testing.T) {
	if _, err := NewRegistry(context.Background(), NetworkDefinitions{}, nil); err == nil {
		t.Fatalf("expected error for empty definitions")
	}
}

func TestRegistryNilSafe(t *testing.T) {
	var registry *Registry
	if _, ok := registry.Client(1); ok {
		t.Fatalf("nil registry should have no clients")
	}
	registry.Close()
}
