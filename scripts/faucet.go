//go:build ignore

// Requests testnet funds for a dYdX chain address from the network faucet.
//
// Run: go run scripts/faucet.go -config config.yaml -address dydx1...
//
// Only the testnet has a faucet endpoint. Mainnet requests fail.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dexhook/signal-gateway/pkg/config"
	"github.com/dexhook/signal-gateway/pkg/network"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	address := flag.String("address", "", "dYdX chain address to fund (dydx1...)")
	flag.Parse()

	if *address == "" {
		fmt.Println("ERROR: -address flag is required")
		fmt.Println()
		fmt.Println("Run: go run scripts/faucet.go -config config.yaml -address dydx1...")
		os.Exit(1)
	}
	if !strings.HasPrefix(*address, "dydx1") {
		fmt.Printf("ERROR: address %q does not look like a dYdX chain address\n", *address)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	registry, err := network.LoadRegistry(cfg.Networks.RegistryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load network registry: %v\n", err)
		os.Exit(1)
	}

	endpoints := registry[network.Testnet]
	if endpoints.FaucetURL == "" {
		fmt.Fprintln(os.Stderr, "No faucet endpoint registered for the testnet")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body, _ := json.Marshal(map[string]string{"address": *address})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoints.FaucetURL+"/faucet/tokens", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Faucet request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		fmt.Fprintf(os.Stderr, "Faucet returned status %d: %s\n", resp.StatusCode, out)
		os.Exit(1)
	}

	fmt.Println("=== Faucet request accepted ===")
	fmt.Println()
	fmt.Printf("Address: %s\n", *address)
	fmt.Printf("Response: %s\n", out)
}
