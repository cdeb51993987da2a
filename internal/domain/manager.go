package domain

// BalanceManager references a custodial on-ledger account object holding
// per-asset balances on behalf of an owner. Provisioned out-of-band; the bot
// only ever reads it.
type BalanceManager struct {
	Key      string // local registry key, e.g. "MANAGER_1"
	Address  string // on-ledger object id
	TradeCap string // optional delegated trade capability object id, "" = owner-signed
}

// AssetBalance is a snapshot of one asset held by a balance manager,
// denominated in the asset's smallest unit. Fetched fresh every cycle and
// never cached across cycles.
type AssetBalance struct {
	Manager  string
	Asset    string
	Quantity uint64
}
