// Package network defines the statically known set of chain networks a
// wallet credential can be scoped to. The set is deliberately small: the
// public Sepolia testnet and the production network.
package network

import (
	"fmt"
	"strconv"
	"strings"
)

// ID identifies one chain network. The integer values match the chain
// identifiers persisted in the users table (dydx_network_id column).
type ID int64

const (
	// Mainnet is the production network.
	Mainnet ID = 1
	// Testnet is the public Sepolia test network.
	Testnet ID = 11155111
)

// Known reports whether id is one of the supported networks.
func Known(id ID) bool {
	return id == Mainnet || id == Testnet
}

func (id ID) String() string {
	switch id {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	default:
		return fmt.Sprintf("network(%d)", int64(id))
	}
}

// Parse converts a network hint carried on a signal into an ID. Both
// symbolic names ("testnet", "mainnet") and numeric chain identifiers are
// accepted.
func Parse(s string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mainnet":
		return Mainnet, nil
	case "testnet", "sepolia":
		return Testnet, nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown network %q", s)
	}
	if !Known(ID(n)) {
		return 0, fmt.Errorf("unsupported network id %d", n)
	}
	return ID(n), nil
}
