// Package scheduler runs recurring maintenance on cron schedules. Jobs do
// no work themselves; they enqueue tasks so execution, retries and audit
// stay in the task queue.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/QuoteSync/quotesync/internal/tasks"
)

// CleanupScheduler periodically enqueues the import-log retention sweep.
type CleanupScheduler struct {
	tasks         *tasks.Client
	schedule      string
	retentionDays int

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewCleanupScheduler(taskClient *tasks.Client, schedule string, retentionDays int) *CleanupScheduler {
	return &CleanupScheduler{
		tasks:         taskClient,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueCleanup); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	log.Printf("Cleanup scheduler: started with schedule %q, retention %d days", s.schedule, s.retentionDays)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job before returning.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false
	log.Printf("Cleanup scheduler: stopped")
}

func (s *CleanupScheduler) enqueueCleanup() {
	_, err := s.tasks.Add(tasks.CleanupImportLogsTask{RetentionDays: s.retentionDays}).Save()
	if err != nil {
		log.Printf("Cleanup scheduler: failed to enqueue cleanup task: %v", err)
	}
}
