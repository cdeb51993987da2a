package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/altaire/deepbook_trader/internal/domain"
)

// CycleFunc runs one trading cycle and returns its terminal result.
type CycleFunc func(ctx context.Context) *domain.CycleResult

// Scheduler fires cycles on a cron cadence with at most one cycle in flight.
// A trigger arriving while a cycle is still running is dropped and recorded,
// never queued: cycles perform remote I/O of unbounded latency and a backlog
// of stale cycles is worse than a missed one.
type Scheduler struct {
	cronSpec string
	cycleFn  CycleFunc
	journal  domain.CycleJournal
	logger   *zap.Logger

	cron    *cron.Cron
	baseCtx context.Context

	mu           sync.Mutex
	running      bool
	lastResult   *domain.CycleResult
	skippedTicks int
}

func NewScheduler(cronSpec string, cycleFn CycleFunc, journal domain.CycleJournal, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cronSpec: cronSpec,
		cycleFn:  cycleFn,
		journal:  journal,
		logger:   logger,
	}
}

// Start registers the cron trigger. A malformed expression is a startup
// error; the caller treats it as fatal.
func (s *Scheduler) Start(ctx context.Context) error {
	s.baseCtx = ctx
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cronSpec, s.tick); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.cronSpec, err)
	}
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.String("cron", s.cronSpec))
	return nil
}

// Stop halts the trigger and waits for any in-flight cycle to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Scheduler stopped", zap.Int("skipped_ticks", s.SkippedTicks()))
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.running {
		s.skippedTicks++
		skipped := s.skippedTicks
		s.mu.Unlock()

		s.logger.Warn("Previous cycle still running, skipping trigger",
			zap.Int("skipped_ticks", skipped))
		s.record(domain.SkippedResult(time.Now(), "previous cycle still running"))
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("Running a trade cycle")
	result := s.cycleFn(s.baseCtx)
	s.record(result)

	s.mu.Lock()
	s.lastResult = result
	s.running = false
	s.mu.Unlock()
}

// record emits the one structured record per cycle and journals it. Journal
// failures are logged, never propagated.
func (s *Scheduler) record(result *domain.CycleResult) {
	s.logger.Info("Cycle finished",
		zap.Time("started_at", result.StartedAt),
		zap.Time("finished_at", result.FinishedAt),
		zap.String("outcome", string(result.Outcome)),
		zap.String("digest", result.Digest),
		zap.String("status", result.Status),
		zap.String("reason", result.Reason),
		zap.String("error_kind", string(result.ErrorKind)))

	if s.journal == nil {
		return
	}
	if err := s.journal.SaveCycleResult(context.Background(), result); err != nil {
		s.logger.Error("Failed to journal cycle result", zap.Error(err))
	}
}

// LastResult returns the most recent completed cycle result, nil before the
// first cycle.
func (s *Scheduler) LastResult() *domain.CycleResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

func (s *Scheduler) SkippedTicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skippedTicks
}
