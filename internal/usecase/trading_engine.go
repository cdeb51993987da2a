package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/altaire/deepbook_trader/internal/domain"
)

// EngineConfig is the immutable per-cycle intent the engine was constructed
// with. No ambient configuration is read inside the cycle.
type EngineConfig struct {
	ManagerKey     string
	PoolKey        string
	Assets         []string
	Side           domain.Side
	Kind           domain.OrderKind
	Quantity       uint64
	Price          uint64
	PayFeeWithBase bool
	MinBalances    map[string]uint64
	CallTimeout    time.Duration
}

// TradingEngine runs one trading cycle at a time: fetch balances, fetch pool
// parameters, validate the order, submit it. Every remote call is bounded by
// CallTimeout, and a failure at any step terminates the cycle with a typed
// result. The next scheduled cycle is the only retry mechanism.
type TradingEngine struct {
	balances domain.BalanceManagerClient
	params   domain.MarketParamsFetcher
	ledger   domain.LedgerClient
	builder  *OrderBuilder
	cfg      EngineConfig
	logger   *zap.Logger

	mu       sync.Mutex
	degraded map[string]bool // pools with a decode failure; skipped until restart
}

func NewTradingEngine(
	balances domain.BalanceManagerClient,
	params domain.MarketParamsFetcher,
	ledger domain.LedgerClient,
	builder *OrderBuilder,
	cfg EngineConfig,
	logger *zap.Logger,
) *TradingEngine {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	return &TradingEngine{
		balances: balances,
		params:   params,
		ledger:   ledger,
		builder:  builder,
		cfg:      cfg,
		logger:   logger,
		degraded: make(map[string]bool),
	}
}

// RunCycle executes one full cycle and always returns a terminal result.
// Cancellation is observed between steps only, never mid-instruction, so a
// cancelled cycle leaves no half-built transaction behind.
func (e *TradingEngine) RunCycle(ctx context.Context) *domain.CycleResult {
	startedAt := time.Now()

	if e.isDegraded(e.cfg.PoolKey) {
		reason := fmt.Sprintf("pool %s degraded after decode failure, awaiting fix", e.cfg.PoolKey)
		e.logger.Warn("Skipping cycle", zap.String("reason", reason))
		return domain.SkippedResult(startedAt, reason)
	}
	if err := ctx.Err(); err != nil {
		return domain.SkippedResult(startedAt, "shutdown requested")
	}

	// FetchingBalances: all-or-nothing; a partial snapshot is never acted on.
	snapshot, err := e.fetchBalances(ctx)
	if err != nil {
		e.logger.Error("Balance lookup failed", zap.Error(err))
		return domain.FailedResult(startedAt, err)
	}
	for _, bal := range snapshot {
		e.logger.Info("Manager balance",
			zap.String("manager", bal.Manager),
			zap.String("asset", bal.Asset),
			zap.Uint64("quantity", bal.Quantity))
	}
	if reason, ok := e.floorsMet(snapshot); !ok {
		e.logger.Warn("Skipping cycle", zap.String("reason", reason))
		return domain.SkippedResult(startedAt, reason)
	}
	if err := ctx.Err(); err != nil {
		return domain.SkippedResult(startedAt, "shutdown requested")
	}

	// FetchingPoolParams: re-fetched every cycle, exchange parameters move.
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	params, err := e.params.Get(callCtx, e.cfg.PoolKey)
	cancel()
	if err != nil {
		var decode *domain.ParamDecodeError
		if errors.As(err, &decode) {
			e.markDegraded(e.cfg.PoolKey)
			e.logger.Error("Pool marked degraded", zap.String("pool", e.cfg.PoolKey), zap.Error(err))
		} else {
			e.logger.Error("Pool params fetch failed", zap.Error(err))
		}
		return domain.FailedResult(startedAt, err)
	}
	e.logger.Info("Pool parameters",
		zap.String("pool", params.PoolKey),
		zap.Uint64("tick_size", params.TickSize),
		zap.Uint64("lot_size", params.LotSize),
		zap.Uint64("min_size", params.MinSize))
	if err := ctx.Err(); err != nil {
		return domain.SkippedResult(startedAt, "shutdown requested")
	}

	// BuildingOrder: pure validation, the ledger is not contacted again.
	req := domain.OrderRequest{
		PoolKey:        e.cfg.PoolKey,
		ManagerKey:     e.cfg.ManagerKey,
		ClientOrderID:  uuid.NewString(),
		Side:           e.cfg.Side,
		Kind:           e.cfg.Kind,
		Quantity:       e.cfg.Quantity,
		Price:          e.cfg.Price,
		PayFeeWithBase: e.cfg.PayFeeWithBase,
	}
	validated, err := e.builder.Validate(req, params)
	if err != nil {
		e.logger.Error("Order validation failed", zap.Error(err))
		return domain.FailedResult(startedAt, err)
	}
	instruction, err := e.builder.Build(validated)
	if err != nil {
		e.logger.Error("Order build failed", zap.Error(err))
		return domain.FailedResult(startedAt, err)
	}
	if err := ctx.Err(); err != nil {
		return domain.SkippedResult(startedAt, "shutdown requested")
	}

	// Submitting.
	tx := domain.NewTransaction()
	tx.Add(instruction)

	callCtx, cancel = context.WithTimeout(ctx, e.cfg.CallTimeout)
	result, err := e.ledger.Submit(callCtx, tx)
	cancel()
	if err != nil {
		e.logger.Error("Submission failed", zap.Error(err))
		return domain.FailedResult(startedAt, err)
	}
	if !result.Succeeded() {
		// Executed but rejected. Terminal for this cycle; the root cause may
		// recur identically, so no blind retry.
		rejection := &domain.LedgerRejection{Digest: result.Digest, Status: result.Status, Detail: result.Error}
		e.logger.Error("Ledger rejected transaction",
			zap.String("digest", result.Digest),
			zap.String("status", result.Status),
			zap.String("detail", result.Error))
		return domain.FailedResult(startedAt, rejection)
	}

	e.logger.Info("Order submitted",
		zap.String("digest", result.Digest),
		zap.String("status", result.Status),
		zap.String("client_order_id", req.ClientOrderID),
		zap.Uint64("quantity", req.Quantity))
	return domain.SubmittedResult(startedAt, result.Digest, result.Status)
}

func (e *TradingEngine) fetchBalances(ctx context.Context) ([]domain.AssetBalance, error) {
	snapshot := make([]domain.AssetBalance, 0, len(e.cfg.Assets))
	for _, asset := range e.cfg.Assets {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		bal, err := e.balances.CheckBalance(callCtx, e.cfg.ManagerKey, asset)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("balance lookup for %s: %w", asset, err)
		}
		snapshot = append(snapshot, bal)
	}
	return snapshot, nil
}

// floorsMet reports whether every configured balance floor is met. The first
// return carries the shortfall reason when one is not.
func (e *TradingEngine) floorsMet(snapshot []domain.AssetBalance) (string, bool) {
	if len(e.cfg.MinBalances) == 0 {
		return "", true
	}
	held := make(map[string]uint64, len(snapshot))
	for _, bal := range snapshot {
		held[bal.Asset] = bal.Quantity
	}
	for asset, floor := range e.cfg.MinBalances {
		if held[asset] < floor {
			return fmt.Sprintf("balance of %s is %d, below floor %d", asset, held[asset], floor), false
		}
	}
	return "", true
}

func (e *TradingEngine) isDegraded(poolKey string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.degraded[poolKey]
}

func (e *TradingEngine) markDegraded(poolKey string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.degraded[poolKey] = true
}
