package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies cycle failures for logging and journaling.
type ErrorKind string

const (
	KindTransport       ErrorKind = "transport"        // node unreachable or timed out; next cycle retries
	KindLookup          ErrorKind = "lookup"           // unknown manager/asset/pool; configuration defect
	KindParamDecode     ErrorKind = "param_decode"     // ledger response shape changed; compatibility break
	KindInvalidOrder    ErrorKind = "invalid_order"    // local validation failure
	KindLedgerRejection ErrorKind = "ledger_rejection" // executed but reported failure
	KindUnknown         ErrorKind = "unknown"
)

// TransportError wraps a network-level failure reaching the node, including
// per-call timeouts imposed by the engine.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// LookupError means a manager, asset or pool is not known to the registry or
// the ledger. This is an operator configuration defect, not a transient fault.
type LookupError struct {
	Entity string // "manager", "asset", "pool"
	Name   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Entity, e.Name)
}

// ParamDecodeError means a dry-run returned a payload whose shape does not
// match the expected ABI. Treated as a compatibility break: the pool is
// degraded until the integration is fixed.
type ParamDecodeError struct {
	PoolKey string
	Reason  string
}

func (e *ParamDecodeError) Error() string {
	return fmt.Sprintf("pool %s: cannot decode book params: %s", e.PoolKey, e.Reason)
}

// InvalidOrderError is a local validation failure. The order never reaches
// the ledger; requests are rejected, never silently rounded.
type InvalidOrderError struct {
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid order: %s", e.Reason)
}

// LedgerRejection means the transaction executed but the ledger reported a
// failure status. Distinct from a transport failure: the root cause may recur
// identically, so it is never blindly retried.
type LedgerRejection struct {
	Digest string
	Status string // effects status as reported, e.g. "failure"
	Detail string // ledger-provided error detail, may be empty
}

func (e *LedgerRejection) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("ledger rejected transaction %s: %s", e.Digest, e.Status)
	}
	return fmt.Sprintf("ledger rejected transaction %s: %s: %s", e.Digest, e.Status, e.Detail)
}

// KindOf maps an error to its taxonomy kind via errors.As, so wrapped errors
// classify the same as bare ones.
func KindOf(err error) ErrorKind {
	var (
		transport *TransportError
		lookup    *LookupError
		decode    *ParamDecodeError
		invalid   *InvalidOrderError
		rejection *LedgerRejection
	)
	switch {
	case errors.As(err, &transport):
		return KindTransport
	case errors.As(err, &lookup):
		return KindLookup
	case errors.As(err, &decode):
		return KindParamDecode
	case errors.As(err, &invalid):
		return KindInvalidOrder
	case errors.As(err, &rejection):
		return KindLedgerRejection
	default:
		return KindUnknown
	}
}
