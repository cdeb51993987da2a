package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/altaire/deepbook_trader/internal/config"
	"github.com/altaire/deepbook_trader/internal/domain"
	"github.com/altaire/deepbook_trader/internal/infrastructure/deepbook"
	"github.com/altaire/deepbook_trader/internal/infrastructure/ledger"
	"go.uber.org/zap"
)

// Prints the owner wallet balance and every configured manager balance.
func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	coinAsset := flag.String("asset", "", "also print the owner wallet balance of this asset")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
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

	manager := domain.BalanceManager{
		Key:      cfg.Manager.Key,
		Address:  cfg.Manager.Address,
		TradeCap: cfg.Manager.TradeCap,
	}
	registry, err := deepbook.NewRegistry(cfg.Network, manager)
	if err != nil {
		fmt.Printf("Failed to build registry: %v\n", err)
		os.Exit(1)
	}
	balances := deepbook.NewBalanceManagerClient(client, registry, log)

	ctx := context.Background()
	fmt.Printf("Running on %s\n", cfg.Network)
	fmt.Printf("Operator address: %s\n", signer.Address())
	fmt.Printf("Manager: %s (%s)\n", manager.Key, manager.Address)

	if *coinAsset != "" {
		coinType, err := registry.CoinType(*coinAsset)
		if err != nil {
			fmt.Printf("Unknown asset %s: %v\n", *coinAsset, err)
			os.Exit(1)
		}
		owned, err := client.OwnerBalance(ctx, signer.Address(), coinType)
		if err != nil {
			fmt.Printf("Failed to fetch owner balance: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Owner %s balance: %d\n", *coinAsset, owned)
	}

	for _, asset := range cfg.Assets {
		bal, err := balances.CheckBalance(ctx, manager.Key, asset)
		if err != nil {
			fmt.Printf("%s: lookup failed: %v\n", asset, err)
			continue
		}
		fmt.Printf("%s: %d\n", bal.Asset, bal.Quantity)
	}
}
