package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/QuoteSync/quotesync/internal/database"
	"github.com/QuoteSync/quotesync/internal/tagger"
)

// AutotagQuoteTask generates and attaches topical tags for one quote.
// Enqueued after every import so tagging never blocks the upload response.
type AutotagQuoteTask struct {
	QuoteID uint `json:"quote_id"`
	NumTags int  `json:"num_tags"`
}

func (t AutotagQuoteTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "autotag_quote",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// AutotagQuoteProcessor creates the processor for AutotagQuoteTask. A quote
// deleted between enqueue and execution is not an error.
func AutotagQuoteProcessor(db *database.Database, tg tagger.Tagger) backlite.QueueProcessor[AutotagQuoteTask] {
	return func(ctx context.Context, task AutotagQuoteTask) error {
		if tg == nil {
			return fmt.Errorf("tagger not configured")
		}

		quote, err := db.GetQuoteByID(task.QuoteID)
		if err != nil {
			log.Printf("[TASK] Quote %d no longer exists, skipping autotag", task.QuoteID)
			return nil
		}

		numTags := task.NumTags
		if numTags <= 0 {
			numTags = 5
		}

		titles, err := tg.GenerateTags(ctx, quote.Body, "en", numTags)
		if err != nil {
			return fmt.Errorf("generating tags for quote %d: %w", task.QuoteID, err)
		}

		for _, title := range titles {
			tag, err := db.GetOrCreateTag(title)
			if err != nil {
				return fmt.Errorf("resolving tag %q: %w", title, err)
			}
			if err := db.AddTagToQuote(quote.ID, tag); err != nil {
				return fmt.Errorf("attaching tag %q to quote %d: %w", title, quote.ID, err)
			}
		}

		log.Printf("[TASK] Autotagged quote %d with %d tags (%s)", quote.ID, len(titles), tg.Name())
		return nil
	}
}

// NewAutotagQuoteQueue creates the backlite queue for autotag tasks.
func NewAutotagQuoteQueue(db *database.Database, tg tagger.Tagger) backlite.Queue {
	return backlite.NewQueue(AutotagQuoteProcessor(db, tg))
}
