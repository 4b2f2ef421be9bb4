package network

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Endpoints holds the per-network collaborator endpoints the gateway and its
// tooling need. The trading client owns the connections; this registry only
// records where they live.
type Endpoints struct {
	IndexerURL   string `yaml:"indexer_url"`
	ValidatorURL string `yaml:"validator_url"`
	FaucetURL    string `yaml:"faucet_url"`
}

// Registry maps each known network to its endpoints.
type Registry map[ID]Endpoints

// DefaultRegistry returns the built-in endpoints for the supported networks.
func DefaultRegistry() Registry {
	return Registry{
		Testnet: {
			IndexerURL:   "https://indexer.v4testnet.dydx.exchange",
			ValidatorURL: "https://test-dydx.kingnodes.com",
			FaucetURL:    "https://faucet.v4testnet.dydx.exchange",
		},
		Mainnet: {
			IndexerURL:   "https://indexer.dydx.trade",
			ValidatorURL: "https://dydx-ops-rpc.kingnodes.com",
		},
	}
}

// LoadRegistry reads endpoint overrides from a YAML file and merges them over
// the defaults. An empty path returns the defaults unchanged.
func LoadRegistry(path string) (Registry, error) {
	reg := DefaultRegistry()
	if path == "" {
		return reg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network registry: %w", err)
	}

	var overrides map[string]Endpoints
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse network registry: %w", err)
	}

	for name, ep := range overrides {
		id, err := Parse(name)
		if err != nil {
			return nil, fmt.Errorf("network registry: %w", err)
		}
		merged := reg[id]
		if ep.IndexerURL != "" {
			merged.IndexerURL = ep.IndexerURL
		}
		if ep.ValidatorURL != "" {
			merged.ValidatorURL = ep.ValidatorURL
		}
		if ep.FaucetURL != "" {
			merged.FaucetURL = ep.FaucetURL
		}
		reg[id] = merged
	}

	return reg, nil
}
