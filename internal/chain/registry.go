package chain

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Network is a dialed network entry.
type Network struct {
	Name       string
	Definition NetworkDefinition
	Client     *Client
}

// Registry holds one client per configured network, keyed by chain id.
type Registry struct {
	networks map[uint64]Network
}

// NewRegistry dials every defined network and checks the remote chain id.
func NewRegistry(ctx context.Context, defs NetworkDefinitions, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(defs.Networks) == 0 {
		return nil, errors.New("no networks configured")
	}

	r := &Registry{networks: make(map[uint64]Network, len(defs.Networks))}
	for _, name := range defs.Names() {
		def := defs.Networks[name]
		client, err := NewClient(ctx, def.RPCURL)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("connect network %s: %w", name, err)
		}

		remoteID, err := client.ChainID(ctx)
		if err != nil {
			client.Close()
			r.Close()
			return nil, fmt.Errorf("network %s chain id: %w", name, err)
		}
		if !remoteID.IsUint64() || remoteID.Uint64() != def.ChainID {
			client.Close()
			r.Close()
			return nil, fmt.Errorf("network %s: rpc reports chain id %s, configured %d", name, remoteID, def.ChainID)
		}

		r.networks[def.ChainID] = Network{Name: name, Definition: def, Client: client}
		logger.Debug("network connected", zap.String("network", name), zap.Uint64("chain_id", def.ChainID))
	}
	return r, nil
}

// Client returns the client for a chain id.
func (r *Registry) Client(chainID uint64) (*Client, bool) {
	if r == nil {
		return nil, false
	}
	network, ok := r.networks[chainID]
	return network.Client, ok
}

// Close releases all clients.
func (r *Registry) Close() {
	if r == nil {
		return
	}
	for id, network := range r.networks {
		if network.Client != nil {
			network.Client.Close()
		}
		delete(r.networks, id)
	}
}
