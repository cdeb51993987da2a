package usecase

import (
	"fmt"

	"github.com/altaire/deepbook_trader/internal/domain"
)

// OrderBuilder validates order intents against pool parameters and builds
// the order instruction. Pure, no I/O.
type OrderBuilder struct {
	deepbookPackage string
	pools           PoolRegistry
	managers        ManagerRegistry
}

// PoolRegistry resolves a pool key to its object id and coin types.
type PoolRegistry interface {
	Pool(poolKey string) (PoolEntry, error)
}

// ManagerRegistry resolves a manager key to its on-ledger references.
type ManagerRegistry interface {
	Manager(managerKey string) (domain.BalanceManager, error)
}

type PoolEntry struct {
	Address       string
	BaseCoinType  string
	QuoteCoinType string
}

func NewOrderBuilder(deepbookPackage string, pools PoolRegistry, managers ManagerRegistry) *OrderBuilder {
	return &OrderBuilder{
		deepbookPackage: deepbookPackage,
		pools:           pools,
		managers:        managers,
	}
}

// Validate checks the request against the pool's granularity constraints.
// Out-of-granularity requests are rejected, never rounded: silent adjustment
// would hide operator sizing mistakes.
func (b *OrderBuilder) Validate(req domain.OrderRequest, params domain.PoolParameters) (*domain.ValidatedOrder, error) {
	if req.Quantity == 0 {
		return nil, &domain.InvalidOrderError{Reason: "quantity must be positive"}
	}
	if params.LotSize == 0 {
		return nil, &domain.InvalidOrderError{Reason: fmt.Sprintf("pool %s reports zero lot size", params.PoolKey)}
	}
	if req.Quantity%params.LotSize != 0 {
		return nil, &domain.InvalidOrderError{
			Reason: fmt.Sprintf("quantity %d is not a multiple of lot size %d", req.Quantity, params.LotSize),
		}
	}
	if req.Quantity < params.MinSize {
		return nil, &domain.InvalidOrderError{
			Reason: fmt.Sprintf("quantity %d is below minimum size %d", req.Quantity, params.MinSize),
		}
	}
	switch req.Kind {
	case domain.OrderKindLimit:
		if req.Price == 0 {
			return nil, &domain.InvalidOrderError{Reason: "limit order requires a price"}
		}
		if params.TickSize == 0 {
			return nil, &domain.InvalidOrderError{Reason: fmt.Sprintf("pool %s reports zero tick size", params.PoolKey)}
		}
		if req.Price%params.TickSize != 0 {
			return nil, &domain.InvalidOrderError{
				Reason: fmt.Sprintf("price %d is not a multiple of tick size %d", req.Price, params.TickSize),
			}
		}
	case domain.OrderKindMarket:
		if req.Price != 0 {
			return nil, &domain.InvalidOrderError{Reason: "market order must not carry a price"}
		}
	default:
		return nil, &domain.InvalidOrderError{Reason: fmt.Sprintf("unsupported order kind %q", req.Kind)}
	}
	if req.Side != domain.SideBid && req.Side != domain.SideAsk {
		return nil, &domain.InvalidOrderError{Reason: fmt.Sprintf("unsupported side %q", req.Side)}
	}

	return &domain.ValidatedOrder{Request: req, Params: params}, nil
}

// Build produces the place-order instruction for a validated order.
func (b *OrderBuilder) Build(order *domain.ValidatedOrder) (*domain.Instruction, error) {
	req := order.Request

	pool, err := b.pools.Pool(req.PoolKey)
	if err != nil {
		return nil, err
	}
	manager, err := b.managers.Manager(req.ManagerKey)
	if err != nil {
		return nil, err
	}

	isBid := req.Side == domain.SideBid
	switch req.Kind {
	case domain.OrderKindLimit:
		return &domain.Instruction{
			Target:   b.deepbookPackage + "::pool::place_limit_order",
			TypeArgs: []string{pool.BaseCoinType, pool.QuoteCoinType},
			Args: []any{
				pool.Address,
				manager.Address,
				req.ClientOrderID,
				req.Price,
				req.Quantity,
				isBid,
				!req.PayFeeWithBase,
			},
		}, nil
	case domain.OrderKindMarket:
		return &domain.Instruction{
			Target:   b.deepbookPackage + "::pool::place_market_order",
			TypeArgs: []string{pool.BaseCoinType, pool.QuoteCoinType},
			Args: []any{
				pool.Address,
				manager.Address,
				req.ClientOrderID,
				req.Quantity,
				isBid,
				!req.PayFeeWithBase,
			},
		}, nil
	default:
		return nil, &domain.InvalidOrderError{Reason: fmt.Sprintf("unsupported order kind %q", req.Kind)}
	}
}
