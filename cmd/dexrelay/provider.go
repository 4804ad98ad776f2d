package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"dexRelay/internal/chain"
	"dexRelay/internal/config"
	"dexRelay/internal/dex"
)

// openProvider dials the network for chainID and builds a provider over it.
// The caller closes the returned registry.
func openProvider(ctx context.Context, cfg config.Common, chainID uint64, privateKey string, logger *zap.Logger) (*dex.Provider, *chain.Registry, error) {
	if chainID == 0 {
		return nil, nil, fmt.Errorf("chain id is required")
	}
	defs, err := chain.LoadNetworks(cfg.Networks)
	if err != nil {
		return nil, nil, err
	}
	selected, err := selectNetwork(defs, chainID)
	if err != nil {
		return nil, nil, err
	}

	registry, err := chain.NewRegistry(ctx, selected, logger)
	if err != nil {
		return nil, nil, err
	}

	var key *ecdsa.PrivateKey
	if privateKey != "" {
		key, err = crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
		if err != nil {
			registry.Close()
			return nil, nil, fmt.Errorf("parse private key: %w", err)
		}
	}

	networks := make([]dex.Network, 0, len(selected.Networks))
	for _, name := range selected.Names() {
		def := selected.Networks[name]
		client, ok := registry.Client(def.ChainID)
		if !ok {
			registry.Close()
			return nil, nil, fmt.Errorf("network %s not connected", name)
		}
		var router common.Address
		if def.Router != "" {
			router = common.HexToAddress(def.Router)
		}
		networks = append(networks, dex.Network{
			ChainID:     def.ChainID,
			Backend:     client,
			Router:      router,
			AutoApprove: def.AutoApprove,
		})
	}

	provider, err := dex.NewProvider(dex.ProviderConfig{
		Networks:     networks,
		SignerKey:    key,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	if err != nil {
		registry.Close()
		return nil, nil, err
	}
	return provider, registry, nil
}

func selectNetwork(defs chain.NetworkDefinitions, chainID uint64) (chain.NetworkDefinitions, error) {
	for _, name := range defs.Names() {
		def := defs.Networks[name]
		if def.ChainID == chainID {
			return chain.NetworkDefinitions{Networks: map[string]chain.NetworkDefinition{name: def}}, nil
		}
	}
	return chain.NetworkDefinitions{}, fmt.Errorf("chain id %d is not defined in networks file", chainID)
}
