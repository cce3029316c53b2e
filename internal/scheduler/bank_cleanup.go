package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/ledger/internal/audit"
	"github.com/mrlokans/ledger/internal/config"
	"github.com/mrlokans/ledger/internal/database/banks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// BankCleaner removes banks that have no statements.
type BankCleaner interface {
	CleanupAllOrphaned(ctx context.Context) (banks.CleanupResult, error)
}

// BankCleanupScheduler periodically removes orphaned banks.
type BankCleanupScheduler struct {
	cleaner  BankCleaner
	cfg      config.BankCleanup
	recorder *audit.Recorder

	cron       *cron.Cron
	schedule   cron.Schedule
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	resultMu   sync.Mutex
	lastRun    time.Time
	lastResult banks.CleanupResult
	lastErr    error
}

func NewBankCleanupScheduler(cleaner BankCleaner, cfg config.BankCleanup) *BankCleanupScheduler {
	return &BankCleanupScheduler{
		cleaner: cleaner,
		cfg:     cfg,
	}
}

// WithRecorder records each cleanup that removed banks or failed.
func (s *BankCleanupScheduler) WithRecorder(recorder *audit.Recorder) *BankCleanupScheduler {
	s.recorder = recorder
	return s
}

// Start schedules the cleanup job if enabled. The scheduler stops when ctx is done.
func (s *BankCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Info().Msg("Bank cleanup scheduler: disabled")
		return nil
	}

	schedule, err := cronParser.Parse(s.cfg.Schedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.schedule = schedule
	s.cron = cron.New(cron.WithParser(cronParser))
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		_, _ = s.runCleanup(cancelCtx)
	}))

	s.cron.Start()
	s.isRunning = true

	log.Info().
		Str("schedule", s.cfg.Schedule).
		Time("next_run", schedule.Next(time.Now())).
		Msg("Bank cleanup scheduler: started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running cleanup to finish and stops the scheduler.
func (s *BankCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	done := s.cron.Stop()
	<-done.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Info().Msg("Bank cleanup scheduler: stopped")
}

// IsRunning returns whether the scheduler is active
func (s *BankCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next cleanup will occur, or nil when stopped.
func (s *BankCleanupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.schedule.Next(time.Now())
	return &next
}

// RunNow performs a cleanup immediately, regardless of the schedule.
func (s *BankCleanupScheduler) RunNow(ctx context.Context) (banks.CleanupResult, error) {
	return s.runCleanup(ctx)
}

// LastRun reports the time and outcome of the most recent cleanup.
func (s *BankCleanupScheduler) LastRun() (time.Time, banks.CleanupResult, error) {
	s.resultMu.Lock()
	defer s.resultMu.Unlock()
	return s.lastRun, s.lastResult, s.lastErr
}

func (s *BankCleanupScheduler) runCleanup(ctx context.Context) (banks.CleanupResult, error) {
	start := time.Now()
	result, err := s.cleaner.CleanupAllOrphaned(ctx)

	s.resultMu.Lock()
	s.lastRun = start
	s.lastResult = result
	s.lastErr = err
	s.resultMu.Unlock()

	s.recorder.BanksCleaned(ctx, "", result.RemovedBanks, err)

	if err != nil {
		log.Error().Err(err).Msg("Bank cleanup: failed")
		return result, err
	}
	log.Info().
		Int("removed", result.RemovedCount).
		Dur("duration", time.Since(start)).
		Msg("Bank cleanup: finished")
	return result, nil
}
