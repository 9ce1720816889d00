package tasks

import "time"

// Config tunes the queue workers and retention.
type Config struct {
	Workers           int           // concurrent workers
	MaxRetries        int           // default attempts for failing tasks
	RetryDelay        time.Duration // backoff between attempts
	TaskTimeout       time.Duration // per-task execution limit
	ReleaseAfter      time.Duration // stuck tasks return to the queue after this
	CleanupInterval   time.Duration // completed-task sweep interval
	RetentionDuration time.Duration // how long completed tasks are kept
}

func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
