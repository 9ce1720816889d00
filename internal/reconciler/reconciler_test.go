package reconciler

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuoteSync/quotesync/internal/database"
	"github.com/QuoteSync/quotesync/internal/entities"
)

func setup(t *testing.T) (*Reconciler, *database.Database, *entities.User) {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	user, err := db.CreateUser("reader", "reader@example.com", "hash")
	require.NoError(t, err)

	return NewReconciler(db), db, user
}

func TestReconcile(t *testing.T) {
	t.Run("CreatesQuoteWithBookAndAuthor", func(t *testing.T) {
		rec, db, user := setup(t)

		result, err := rec.Reconcile(user.ID, QuoteInput{
			BookTitle: "The Name of the Wind",
			Author:    "Patrick Rothfuss",
			Publisher: "DAW Books",
			Body:      "Words are pale shadows of forgotten names.",
			Page:      "42",
			Platform:  entities.PlatformKindle,
		})
		require.NoError(t, err)
		assert.False(t, result.Duplicate)

		quote, err := db.GetQuoteByID(result.Quote.ID)
		require.NoError(t, err)
		assert.Equal(t, "Words are pale shadows of forgotten names.", quote.Body)
		assert.Equal(t, "42", quote.Location)
		require.NotNil(t, quote.Book)
		assert.Equal(t, "The Name of the Wind", quote.Book.Title)
		require.NotNil(t, quote.Book.Author)
		assert.Equal(t, "Patrick Rothfuss", quote.Book.Author.Name)
	})

	t.Run("ReusesExistingBookAndAuthor", func(t *testing.T) {
		rec, db, user := setup(t)

		first, err := rec.Reconcile(user.ID, QuoteInput{
			BookTitle: "Dune", Author: "Frank Herbert", Body: "Fear is the mind-killer.",
		})
		require.NoError(t, err)

		second, err := rec.Reconcile(user.ID, QuoteInput{
			BookTitle: "Dune", Author: "Frank Herbert", Body: "The sleeper must awaken.",
		})
		require.NoError(t, err)

		assert.Equal(t, *first.Quote.BookID, *second.Quote.BookID)

		authors, err := db.GetAllAuthors()
		require.NoError(t, err)
		assert.Len(t, authors, 1)

		books, err := db.GetAllBooks()
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("TitleTruncation", func(t *testing.T) {
		rec, _, user := setup(t)

		long := strings.Repeat("palabra ", 20)
		result, err := rec.Reconcile(user.ID, QuoteInput{Body: long})
		require.NoError(t, err)

		assert.Equal(t, strings.TrimSpace(long), result.Quote.Body, "body keeps full text, trimmed")
		assert.Len(t, []rune(result.Quote.Title), 53)
		assert.True(t, strings.HasSuffix(result.Quote.Title, "..."))
	})

	t.Run("ShortTitleKeptWhole", func(t *testing.T) {
		rec, _, user := setup(t)

		result, err := rec.Reconcile(user.ID, QuoteInput{Body: "Short quote."})
		require.NoError(t, err)
		assert.Equal(t, "Short quote.", result.Quote.Title)
	})

	t.Run("RepresentativeURL", func(t *testing.T) {
		rec, _, user := setup(t)

		withOwn, err := rec.Reconcile(user.ID, QuoteInput{
			Body:    "A quote with its own anchor.",
			URLs:    []string{"http://example.com/page/7", "http://example.com/page/8"},
			BookURL: "http://example.com/book",
		})
		require.NoError(t, err)
		assert.Equal(t, "http://example.com/page/7", withOwn.Quote.BookURL)

		fallback, err := rec.Reconcile(user.ID, QuoteInput{
			Body:    "A quote relying on the book anchor.",
			BookURL: "http://example.com/book",
		})
		require.NoError(t, err)
		assert.Equal(t, "http://example.com/book", fallback.Quote.BookURL)
	})

	t.Run("PlatformTagAttached", func(t *testing.T) {
		rec, db, user := setup(t)

		result, err := rec.Reconcile(user.ID, QuoteInput{
			Body:     "Tagged by its source platform.",
			Platform: entities.PlatformGoogleBooks,
		})
		require.NoError(t, err)

		quote, err := db.GetQuoteByID(result.Quote.ID)
		require.NoError(t, err)
		require.Len(t, quote.Tags, 1)
		assert.Equal(t, "google_books", quote.Tags[0].Title)
	})

	t.Run("DuplicateBodyStillCreatesRow", func(t *testing.T) {
		rec, db, user := setup(t)

		first, err := rec.Reconcile(user.ID, QuoteInput{Body: "Exactly the same words."})
		require.NoError(t, err)
		assert.False(t, first.Duplicate)

		second, err := rec.Reconcile(user.ID, QuoteInput{Body: "Exactly the same words."})
		require.NoError(t, err)
		assert.True(t, second.Duplicate)
		assert.NotEqual(t, first.Quote.ID, second.Quote.ID, "duplicate is counted, not rejected")

		_, total, err := db.GetQuotesForUser(user.ID, 0, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("DuplicateScopedToOwner", func(t *testing.T) {
		rec, db, user := setup(t)

		other, err := db.CreateUser("other", "other@example.com", "hash")
		require.NoError(t, err)

		_, err = rec.Reconcile(user.ID, QuoteInput{Body: "Shared across owners."})
		require.NoError(t, err)

		result, err := rec.Reconcile(other.ID, QuoteInput{Body: "Shared across owners."})
		require.NoError(t, err)
		assert.False(t, result.Duplicate, "another owner's identical quote is not a duplicate")
	})

	t.Run("BackdatedQuote", func(t *testing.T) {
		rec, db, user := setup(t)

		highlighted := time.Date(2023, 3, 14, 9, 26, 53, 0, time.UTC)
		result, err := rec.Reconcile(user.ID, QuoteInput{
			Body:    "Backdated to when it was highlighted.",
			AddedAt: highlighted,
		})
		require.NoError(t, err)

		quote, err := db.GetQuoteByID(result.Quote.ID)
		require.NoError(t, err)
		assert.True(t, quote.CreatedAt.Equal(highlighted))
	})

	t.Run("EmptyBodyRejected", func(t *testing.T) {
		rec, _, user := setup(t)

		_, err := rec.Reconcile(user.ID, QuoteInput{Body: "   \n  "})
		assert.Error(t, err)
	})
}
