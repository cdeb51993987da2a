package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/altaire/deepbook_trader/internal/config"
	"github.com/altaire/deepbook_trader/internal/domain"
	"github.com/altaire/deepbook_trader/internal/infrastructure/deepbook"
	"github.com/altaire/deepbook_trader/internal/infrastructure/ledger"
)

// Prints a pool's book parameters (tick, lot and minimum size).
func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	poolKey := flag.String("pool", "", "pool key, defaults to the configured one")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	pool := *poolKey
	if pool == "" {
		pool = cfg.PoolKey
	}

	cred, err := cfg.LoadCredential()
	if err != nil {
		fmt.Printf("Failed to load credential: %v\n", err)
		os.Exit(1)
	}
	signer, err := ledger.NewSigner(cred)
	if err != nil {
		fmt.Printf("Failed to resolve signer: %v\n", err)
		os.Exit(1)
	}

	log := zap.NewNop()
	nodeURL := cfg.FullnodeURL
	if nodeURL == "" {
		nodeURL = ledger.FullnodeURL(cfg.Network)
	}
	client := ledger.NewClient(nodeURL, signer, cfg.CallTimeout(), log)

	registry, err := deepbook.NewRegistry(cfg.Network, domain.BalanceManager{
		Key:     cfg.Manager.Key,
		Address: cfg.Manager.Address,
	})
	if err != nil {
		fmt.Printf("Failed to build registry: %v\n", err)
		os.Exit(1)
	}
	fetcher := deepbook.NewPoolParamsFetcher(client, registry, log)

	params, err := fetcher.Get(context.Background(), pool)
	if err != nil {
		fmt.Printf("Failed to fetch pool params: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Parameters for %s:\n", pool)
	fmt.Printf("  tick size: %d\n", params.TickSize)
	fmt.Printf("  lot size:  %d\n", params.LotSize)
	fmt.Printf("  min size:  %d\n", params.MinSize)
}
