package chain

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// NetworkDefinitions models the networks YAML file.
type NetworkDefinitions struct {
	Networks map[string]NetworkDefinition `yaml:"networks"`
}

// NetworkDefinition describes a single EVM network and its swap router.
type NetworkDefinition struct {
	ChainID     uint64 `yaml:"chain_id"`
	RPCURL      string `yaml:"rpc_url"`
	Router      string `yaml:"router"`
	AutoApprove bool   `yaml:"auto_approve"`
	Description string `yaml:"description"`
}

// LoadNetworks reads and validates a networks file.
func LoadNetworks(path string) (NetworkDefinitions, error) {
	if strings.TrimSpace(path) == "" {
		return NetworkDefinitions{Networks: map[string]NetworkDefinition{}}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return NetworkDefinitions{}, fmt.Errorf("read networks file: %w", err)
	}
	return ParseNetworks(content)
}

// ParseNetworks decodes and validates network definitions.
func ParseNetworks(content []byte) (NetworkDefinitions, error) {
	var defs NetworkDefinitions
	if err := yaml.Unmarshal(content, &defs); err != nil {
		return NetworkDefinitions{}, fmt.Errorf("parse networks file: %w", err)
	}
	if defs.Networks == nil {
		defs.Networks = map[string]NetworkDefinition{}
	}
	if err := defs.Validate(); err != nil {
		return NetworkDefinitions{}, err
	}
	return defs, nil
}

// Validate checks required fields and chain id uniqueness.
func (d NetworkDefinitions) Validate() error {
	seen := make(map[uint64]string, len(d.Networks))
	for _, name := range d.Names() {
		def := d.Networks[name]
		if def.ChainID == 0 {
			return fmt.Errorf("network %s: chain_id is required", name)
		}
		if strings.TrimSpace(def.RPCURL) == "" {
			return fmt.Errorf("network %s: rpc_url is required", name)
		}
		if def.Router != "" && !common.IsHexAddress(def.Router) {
			return fmt.Errorf("network %s: invalid router address %s", name, def.Router)
		}
		if other, ok := seen[def.ChainID]; ok {
			return fmt.Errorf("network %s: chain_id %d already used by %s", name, def.ChainID, other)
		}
		seen[def.ChainID] = name
	}
	return nil
}

// Names returns network names in sorted order.
func (d NetworkDefinitions) Names() []string {
	names := make([]string, 0, len(d.Networks))
	for name := range d.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
