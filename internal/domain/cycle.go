package domain

import "time"

type CycleOutcome string

const (
	OutcomeSubmitted CycleOutcome = "submitted"
	OutcomeSkipped   CycleOutcome = "skipped"
	OutcomeFailed    CycleOutcome = "failed"
)

// CycleResult records the terminal state of one trading cycle. Every cycle
// produces exactly one, whatever happened.
type CycleResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    CycleOutcome
	Digest     string    // set when Outcome == OutcomeSubmitted
	Status     string    // ledger effects status for submitted cycles
	Reason     string    // human-readable detail for skipped/failed cycles
	ErrorKind  ErrorKind // set when Outcome == OutcomeFailed
}

func SubmittedResult(startedAt time.Time, digest, status string) *CycleResult {
	return &CycleResult{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Outcome:    OutcomeSubmitted,
		Digest:     digest,
		Status:     status,
	}
}

func SkippedResult(startedAt time.Time, reason string) *CycleResult {
	return &CycleResult{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Outcome:    OutcomeSkipped,
		Reason:     reason,
	}
}

func FailedResult(startedAt time.Time, err error) *CycleResult {
	return &CycleResult{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Outcome:    OutcomeFailed,
		Reason:     err.Error(),
		ErrorKind:  KindOf(err),
	}
}
