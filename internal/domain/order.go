package domain

type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

type OrderKind string

const (
	OrderKindLimit  OrderKind = "limit"
	OrderKindMarket OrderKind = "market"
)

// OrderRequest is the operator's trading intent for one cycle, before
// validation against the pool parameters.
type OrderRequest struct {
	PoolKey        string
	ManagerKey     string
	ClientOrderID  string // unique per (manager, pool); the ledger dedupes on it
	Side           Side
	Kind           OrderKind
	Quantity       uint64
	Price          uint64 // limit orders only
	PayFeeWithBase bool
}

// ValidatedOrder wraps a request that passed granularity validation. Only the
// order builder constructs it.
type ValidatedOrder struct {
	Request OrderRequest
	Params  PoolParameters
}
