package tests

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/altaire/deepbook_trader/internal/config"
	"github.com/altaire/deepbook_trader/internal/domain"
	"github.com/altaire/deepbook_trader/internal/infrastructure/deepbook"
	"github.com/altaire/deepbook_trader/internal/infrastructure/storage"
	"github.com/altaire/deepbook_trader/internal/usecase"
)

// fakeLedger plays the fullnode: balance dry-runs return the configured
// balances, pool dry-runs return the configured book params, submissions
// succeed with a canned digest.
type fakeLedger struct {
	balances  map[string]uint64 // coin type -> quantity
	params    [3]uint64         // tick, lot, min
	submitted []*domain.Transaction
}

func (f *fakeLedger) Submit(ctx context.Context, tx *domain.Transaction) (*domain.ExecutionResult, error) {
	f.submitted = append(f.submitted, tx)
	return &domain.ExecutionResult{Digest: "E2EDigest", Status: "success"}, nil
}

func (f *fakeLedger) Simulate(ctx context.Context, tx *domain.Transaction) ([][]byte, error) {
	inst := tx.Instructions[0]
	switch {
	case len(inst.TypeArgs) == 1: // balance_manager::balance
		return [][]byte{deepbook.EncodeU64(f.balances[inst.TypeArgs[0]])}, nil
	default: // pool::pool_book_params
		return [][]byte{
			deepbook.EncodeU64(f.params[0]),
			deepbook.EncodeU64(f.params[1]),
			deepbook.EncodeU64(f.params[2]),
		}, nil
	}
}

func (f *fakeLedger) OwnerBalance(ctx context.Context, owner, coinType string) (uint64, error) {
	return f.balances[coinType], nil
}

func TestFullCycleThroughScheduler(t *testing.T) {
	log := zap.NewNop()

	registry, err := deepbook.NewRegistry(config.NetworkTestnet, domain.BalanceManager{
		Key:     "MANAGER_1",
		Address: "0xmanager",
	})
	require.NoError(t, err)

	suiType, err := registry.CoinType("SUI")
	require.NoError(t, err)
	ledger := &fakeLedger{
		balances: map[string]uint64{suiType: 5000000},
		params:   [3]uint64{1, 100, 100},
	}

	balances := deepbook.NewBalanceManagerClient(ledger, registry, log)
	params := deepbook.NewPoolParamsFetcher(ledger, registry, log)
	builder := usecase.NewOrderBuilder(registry.DeepbookPackage(), registry, registry)

	engine := usecase.NewTradingEngine(balances, params, ledger, builder, usecase.EngineConfig{
		ManagerKey:  "MANAGER_1",
		PoolKey:     "DEEP_SUI",
		Assets:      []string{"SUI"},
		Side:        domain.SideBid,
		Kind:        domain.OrderKindMarket,
		Quantity:    100,
		CallTimeout: time.Second,
	}, log)

	journal, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer journal.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := usecase.NewScheduler("@every 1s", engine.RunCycle, journal, log)
	require.NoError(t, scheduler.Start(ctx))

	deadline := time.Now().Add(5 * time.Second)
	for scheduler.LastResult() == nil && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	scheduler.Stop()
	cancel()

	result := scheduler.LastResult()
	require.NotNil(t, result, "scheduler never completed a cycle")
	assert.Equal(t, domain.OutcomeSubmitted, result.Outcome)
	assert.Equal(t, "E2EDigest", result.Digest)

	// The submitted order carries the exact requested quantity.
	require.NotEmpty(t, ledger.submitted)
	order := ledger.submitted[0].Instructions[0]
	assert.Contains(t, order.Target, "::pool::place_market_order")
	assert.Contains(t, order.Args, uint64(100))

	// Every cycle left one journal record.
	records, err := journal.ListCycleResults(context.Background(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	var submitted *domain.CycleResult
	for _, r := range records {
		if r.Outcome == domain.OutcomeSubmitted {
			submitted = r
			break
		}
	}
	require.NotNil(t, submitted)
	assert.Equal(t, "E2EDigest", submitted.Digest)
}
