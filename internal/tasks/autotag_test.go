package tasks

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuoteSync/quotesync/internal/database"
	"github.com/QuoteSync/quotesync/internal/entities"
	"github.com/QuoteSync/quotesync/internal/tagger"
)

func TestAutotagQuoteProcessor(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	user, err := db.CreateUser("reader", "reader@example.com", "hash")
	require.NoError(t, err)

	quote := &entities.Quote{
		OwnerID: user.ID,
		Title:   "Courage quote",
		Body:    "Courage is not the absence of fear but the triumph over it.",
	}
	require.NoError(t, db.CreateQuote(quote))

	processor := AutotagQuoteProcessor(db, tagger.NewSeededKeywordTagger(1))

	t.Run("AttachesTags", func(t *testing.T) {
		err := processor(context.Background(), AutotagQuoteTask{QuoteID: quote.ID, NumTags: 3})
		require.NoError(t, err)

		tagged, err := db.GetQuoteByID(quote.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, tagged.Tags)

		var titles []string
		for _, tag := range tagged.Tags {
			titles = append(titles, tag.Title)
		}
		assert.Contains(t, titles, "courage")
	})

	t.Run("MissingQuoteIsNotAnError", func(t *testing.T) {
		err := processor(context.Background(), AutotagQuoteTask{QuoteID: 99999})
		assert.NoError(t, err)
	})

	t.Run("NilTaggerFails", func(t *testing.T) {
		broken := AutotagQuoteProcessor(db, nil)
		assert.Error(t, broken(context.Background(), AutotagQuoteTask{QuoteID: quote.ID}))
	})
}
