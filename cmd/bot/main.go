package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/altaire/deepbook_trader/internal/config"
	"github.com/altaire/deepbook_trader/internal/domain"
	"github.com/altaire/deepbook_trader/internal/infrastructure/deepbook"
	"github.com/altaire/deepbook_trader/internal/infrastructure/ledger"
	"github.com/altaire/deepbook_trader/internal/infrastructure/logger"
	"github.com/altaire/deepbook_trader/internal/infrastructure/storage"
	"github.com/altaire/deepbook_trader/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// .env is optional; the credential env var may come from the machine.
	_ = godotenv.Load()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	var log *zap.Logger
	if cfg.Logging.File != "" {
		log, err = logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	} else {
		log, err = logger.NewLogger(cfg.Logging.Level)
	}
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Running on", zap.String("network", cfg.Network))

	// 3. Resolve Credential into a Signer
	cred, err := cfg.LoadCredential()
	if err != nil {
		log.Fatal("Failed to load credential", zap.Error(err))
	}
	signer, err := ledger.NewSigner(cred)
	if err != nil {
		log.Fatal("Failed to resolve signer", zap.Error(err))
	}
	log.Info("Operator address", zap.String("address", signer.Address()))

	// 4. Init Cycle Journal
	journalPath := cfg.Journal.Path
	if journalPath == "" {
		journalPath = "bot.db"
	}
	journal, err := storage.NewSQLiteStore(journalPath)
	if err != nil {
		log.Fatal("Failed to init cycle journal", zap.Error(err))
	}
	defer journal.Close()

	// 5. Init Ledger Client and DeepBook Adapters
	nodeURL := cfg.FullnodeURL
	if nodeURL == "" {
		nodeURL = ledger.FullnodeURL(cfg.Network)
	}
	ledgerClient := ledger.NewClient(nodeURL, signer, cfg.CallTimeout(), log)

	manager := domain.BalanceManager{
		Key:      cfg.Manager.Key,
		Address:  cfg.Manager.Address,
		TradeCap: cfg.Manager.TradeCap,
	}
	registry, err := deepbook.NewRegistry(cfg.Network, manager)
	if err != nil {
		log.Fatal("Failed to build registry", zap.Error(err))
	}
	balances := deepbook.NewBalanceManagerClient(ledgerClient, registry, log)
	params := deepbook.NewPoolParamsFetcher(ledgerClient, registry, log)

	// 6. Init Engine
	builder := usecase.NewOrderBuilder(registry.DeepbookPackage(), registry, registry)
	engine := usecase.NewTradingEngine(balances, params, ledgerClient, builder, usecase.EngineConfig{
		ManagerKey:     cfg.Manager.Key,
		PoolKey:        cfg.PoolKey,
		Assets:         cfg.Assets,
		Side:           domain.Side(cfg.Order.Side),
		Kind:           domain.OrderKind(cfg.Order.Kind),
		Quantity:       cfg.Order.Quantity,
		Price:          cfg.Order.Price,
		PayFeeWithBase: cfg.Order.PayFeeWithBase,
		MinBalances:    cfg.MinBalances,
		CallTimeout:    cfg.CallTimeout(),
	}, log)

	// 7. Start Scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := usecase.NewScheduler(cfg.Schedule.Cron, engine.RunCycle, journal, log)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// 8. Wait for Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	cancel()
	scheduler.Stop()
}
