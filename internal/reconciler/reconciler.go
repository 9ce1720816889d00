// Package reconciler folds parsed quote records into the persistent corpus:
// shared authors, books and tags are resolved by natural key, quotes are
// always appended.
package reconciler

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/QuoteSync/quotesync/internal/database"
	"github.com/QuoteSync/quotesync/internal/entities"
)

const titleLimit = 50

// QuoteInput is one normalized record ready for persistence, regardless of
// which source dialect produced it.
type QuoteInput struct {
	BookTitle string
	Author    string
	Publisher string
	Body      string
	Page      string
	Chapter   string
	URLs      []string
	BookURL   string
	Platform  entities.SourcePlatform
	// AddedAt backdates the quote to when the highlight was made. Zero
	// means unknown; the quote then carries the import time.
	AddedAt time.Time
}

// Result reports what happened to one input.
type Result struct {
	Quote *entities.Quote
	// Duplicate is set when the owner already had a quote with the same
	// body fingerprint. The row is created regardless; the flag only feeds
	// the import summary.
	Duplicate bool
}

type Reconciler struct {
	db *database.Database
}

func NewReconciler(db *database.Database) *Reconciler {
	return &Reconciler{db: db}
}

// Reconcile persists one record for the owner. Author and book are upserted
// by natural key; the quote row is always new.
func (r *Reconciler) Reconcile(ownerID uint, in QuoteInput) (*Result, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, fmt.Errorf("quote body is empty")
	}

	var authorID *uint
	if name := strings.TrimSpace(in.Author); name != "" {
		author, err := r.db.GetOrCreateAuthor(name)
		if err != nil {
			return nil, fmt.Errorf("resolving author %q: %w", name, err)
		}
		authorID = &author.ID
	}

	var bookID *uint
	if title := strings.TrimSpace(in.BookTitle); title != "" {
		book, err := r.db.GetOrCreateBook(title, authorID, strings.TrimSpace(in.Publisher))
		if err != nil {
			return nil, fmt.Errorf("resolving book %q: %w", title, err)
		}
		bookID = &book.ID
	}

	duplicates, err := r.db.CountQuotesByHash(ownerID, entities.Fingerprint(body))
	if err != nil {
		return nil, fmt.Errorf("checking for duplicates: %w", err)
	}

	quote := &entities.Quote{
		OwnerID:        ownerID,
		Title:          truncateTitle(body),
		Body:           body,
		BookID:         bookID,
		Location:       in.Page,
		Chapter:        in.Chapter,
		SourcePlatform: in.Platform,
		BookURL:        representativeURL(in),
	}
	if !in.AddedAt.IsZero() {
		quote.CreatedAt = in.AddedAt
	}

	if in.Platform != "" {
		tag, err := r.db.GetOrCreateTag(string(in.Platform))
		if err != nil {
			return nil, fmt.Errorf("resolving platform tag: %w", err)
		}
		quote.Tags = []entities.Tag{*tag}
	}

	if err := r.db.CreateQuote(quote); err != nil {
		return nil, fmt.Errorf("creating quote: %w", err)
	}

	return &Result{Quote: quote, Duplicate: duplicates > 0}, nil
}

// representativeURL picks the quote's own first URL, falling back to the
// book-level URL.
func representativeURL(in QuoteInput) string {
	if len(in.URLs) > 0 {
		return in.URLs[0]
	}
	return in.BookURL
}

func truncateTitle(body string) string {
	if utf8.RuneCountInString(body) <= titleLimit {
		return body
	}
	runes := []rune(body)
	return string(runes[:titleLimit]) + "..."
}
