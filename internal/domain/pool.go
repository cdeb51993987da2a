package domain

// PoolParameters are the exchange-imposed granularity constraints of a pool.
// Tick size bounds price steps, lot size bounds quantity steps, min size is
// the floor quantity. Re-fetched every cycle since the exchange may change
// them.
type PoolParameters struct {
	PoolKey  string
	TickSize uint64
	LotSize  uint64
	MinSize  uint64
}
