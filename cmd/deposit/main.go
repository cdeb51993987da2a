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

// Deposits an asset from the operator wallet into the balance manager and
// prints the manager balances before and after.
func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	asset := flag.String("asset", "", "asset to deposit")
	amount := flag.Uint64("amount", 0, "amount in smallest units")
	flag.Parse()

	if *asset == "" || *amount == 0 {
		fmt.Println("Usage: deposit -asset SUI -amount 100000000")
		os.Exit(1)
	}

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

	printBalances(ctx, balances, manager.Key, cfg.Assets)

	instruction, err := balances.DepositInstruction(manager.Key, *asset, *amount)
	if err != nil {
		fmt.Printf("Failed to build deposit: %v\n", err)
		os.Exit(1)
	}
	tx := domain.NewTransaction()
	tx.Add(instruction)

	fmt.Printf("Depositing %d %s into %s\n", *amount, *asset, manager.Key)
	result, err := client.Submit(ctx, tx)
	if err != nil {
		fmt.Printf("Submission failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Transaction Digest: %s, Status: %s\n", result.Digest, result.Status)
	if !result.Succeeded() {
		fmt.Printf("Ledger reported failure: %s\n", result.Error)
		os.Exit(1)
	}

	printBalances(ctx, balances, manager.Key, cfg.Assets)
}

func printBalances(ctx context.Context, balances *deepbook.BalanceManagerClient, managerKey string, assets []string) {
	for _, asset := range assets {
		bal, err := balances.CheckBalance(ctx, managerKey, asset)
		if err != nil {
			fmt.Printf("%s: lookup failed: %v\n", asset, err)
			continue
		}
		fmt.Printf("%s: %d\n", bal.Asset, bal.Quantity)
	}
}
