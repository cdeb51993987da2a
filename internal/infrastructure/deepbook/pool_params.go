package deepbook

import (
	"context"

	"go.uber.org/zap"

	"github.com/altaire/deepbook_trader/internal/domain"
)

// PoolParamsFetcher retrieves a pool's tick, lot and minimum sizes via
// dry-run. Implements domain.MarketParamsFetcher.
type PoolParamsFetcher struct {
	ledger   domain.LedgerClient
	registry *Registry
	logger   *zap.Logger
}

func NewPoolParamsFetcher(ledger domain.LedgerClient, registry *Registry, logger *zap.Logger) *PoolParamsFetcher {
	return &PoolParamsFetcher{
		ledger:   ledger,
		registry: registry,
		logger:   logger,
	}
}

// Get dry-runs pool::pool_book_params and strictly decodes three u64s in
// tick/lot/min order. A shape mismatch is a ParamDecodeError, never a
// best-effort read.
func (f *PoolParamsFetcher) Get(ctx context.Context, poolKey string) (domain.PoolParameters, error) {
	pool, err := f.registry.Pool(poolKey)
	if err != nil {
		return domain.PoolParameters{}, err
	}

	tx := domain.NewTransaction()
	tx.Add(&domain.Instruction{
		Target:   f.registry.DeepbookPackage() + "::pool::pool_book_params",
		TypeArgs: []string{pool.BaseCoinType, pool.QuoteCoinType},
		Args:     []any{pool.Address},
	})

	values, err := f.ledger.Simulate(ctx, tx)
	if err != nil {
		return domain.PoolParameters{}, err
	}

	tickSize, lotSize, minSize, err := DecodeU64Triple(values)
	if err != nil {
		return domain.PoolParameters{}, &domain.ParamDecodeError{PoolKey: poolKey, Reason: err.Error()}
	}

	f.logger.Debug("Fetched pool book params",
		zap.String("pool", poolKey),
		zap.Uint64("tick_size", tickSize),
		zap.Uint64("lot_size", lotSize),
		zap.Uint64("min_size", minSize))

	return domain.PoolParameters{
		PoolKey:  poolKey,
		TickSize: tickSize,
		LotSize:  lotSize,
		MinSize:  minSize,
	}, nil
}
