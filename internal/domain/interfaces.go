package domain

import "context"

// LedgerClient submits signed transactions and performs read-only simulated
// execution against the node. Wire formats and signing are its problem.
type LedgerClient interface {
	// Submit signs and executes the transaction, waiting for effects.
	Submit(ctx context.Context, tx *Transaction) (*ExecutionResult, error)
	// Simulate dry-runs the transaction and returns the raw return values,
	// one byte slice per returned value, in call order.
	Simulate(ctx context.Context, tx *Transaction) ([][]byte, error)
	// OwnerBalance returns the signer-owned balance of a coin type, in
	// smallest units.
	OwnerBalance(ctx context.Context, owner, coinType string) (uint64, error)
}

// BalanceManagerClient reads custodial balances and builds balance-manager
// instructions. Reads are idempotent and side-effect free.
type BalanceManagerClient interface {
	CheckBalance(ctx context.Context, managerKey, asset string) (AssetBalance, error)
	// DepositInstruction builds (does not submit) a deposit of amount
	// smallest units into the manager.
	DepositInstruction(managerKey, asset string, amount uint64) (*Instruction, error)
	// DelegateTradeCapInstructions mints a trade capability for the manager
	// and transfers it to recipient.
	DelegateTradeCapInstructions(managerKey, recipient string) ([]*Instruction, error)
}

// MarketParamsFetcher retrieves a pool's book parameters via dry-run.
type MarketParamsFetcher interface {
	Get(ctx context.Context, poolKey string) (PoolParameters, error)
}

// CycleJournal is the append-only audit log of cycle results. Journal
// failures never fail a cycle.
type CycleJournal interface {
	SaveCycleResult(ctx context.Context, result *CycleResult) error
	ListCycleResults(ctx context.Context, limit int) ([]*CycleResult, error)
}
