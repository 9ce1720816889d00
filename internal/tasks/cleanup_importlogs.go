package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ImportLogCleaner deletes import logs outside the retention window.
type ImportLogCleaner interface {
	DeleteOldImportLogs(retention time.Duration) (int64, error)
}

// CleanupImportLogsTask prunes old import audit records. Enqueued daily by
// the scheduler.
type CleanupImportLogsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupImportLogsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_import_logs",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupImportLogsProcessor creates the processor for CleanupImportLogsTask.
func CleanupImportLogsProcessor(cleaner ImportLogCleaner) backlite.QueueProcessor[CleanupImportLogsTask] {
	return func(ctx context.Context, task CleanupImportLogsTask) error {
		if cleaner == nil {
			return fmt.Errorf("import log cleaner not configured")
		}

		days := task.RetentionDays
		if days <= 0 {
			days = 90
		}

		deleted, err := cleaner.DeleteOldImportLogs(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			return fmt.Errorf("cleanup import logs: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d import logs older than %d days", deleted, days)
		return nil
	}
}

// NewCleanupImportLogsQueue creates the backlite queue for log cleanup.
func NewCleanupImportLogsQueue(cleaner ImportLogCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupImportLogsProcessor(cleaner))
}
