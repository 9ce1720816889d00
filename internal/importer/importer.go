// Package importer orchestrates the import workflow for every source
// format: decode → parse → associate → reconcile → audit log.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/QuoteSync/quotesync/internal/database"
	"github.com/QuoteSync/quotesync/internal/docdecode"
	"github.com/QuoteSync/quotesync/internal/entities"
	"github.com/QuoteSync/quotesync/internal/googlebooks"
	"github.com/QuoteSync/quotesync/internal/kindle"
	"github.com/QuoteSync/quotesync/internal/reconciler"
)

// ErrInvalidInput marks client-side input problems (empty file, wrong
// extension, unreadable archive). Nothing is persisted when it is returned.
var ErrInvalidInput = errors.New("invalid input")

type Importer struct {
	db         *database.Database
	reconciler *reconciler.Reconciler
	parserOpts *googlebooks.ParserOptions
}

func NewImporter(db *database.Database, rec *reconciler.Reconciler, opts *googlebooks.ParserOptions) *Importer {
	if opts == nil {
		opts = googlebooks.DefaultParserOptions()
	}
	return &Importer{db: db, reconciler: rec, parserOpts: opts}
}

// Summary reports the outcome of one import run.
type Summary struct {
	Log         *entities.ImportLog
	QuotesAdded int
	Duplicates  int
	QuoteIDs    []uint

	// Single-document annotation imports carry the parsed book.
	Book *googlebooks.BookData

	// Batch imports carry per-archive aggregates.
	TotalFiles     int
	ProcessedFiles int
	Books          map[string]int // book title -> quotes imported
	Errors         []string
}

// ImportClippings imports a delimited plaintext highlights export.
func (i *Importer) ImportClippings(ownerID uint, r io.Reader, fileName string) (*Summary, error) {
	clippings, err := kindle.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(clippings) == 0 {
		return nil, fmt.Errorf("%w: no highlights found in %s", ErrInvalidInput, fileName)
	}

	logEntry, err := i.startLog(ownerID, entities.PlatformKindle, fileName)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Log: logEntry}
	for _, clipping := range clippings {
		result, err := i.reconciler.Reconcile(ownerID, reconciler.QuoteInput{
			BookTitle: clipping.BookTitle,
			Author:    clipping.Author,
			Body:      clipping.Text,
			Page:      clipping.Page,
			Platform:  entities.PlatformKindle,
			AddedAt:   clipping.AddedAt,
		})
		if err != nil {
			return nil, i.failLog(logEntry, err)
		}
		summary.record(result)
	}

	return summary, i.completeLog(logEntry, summary)
}

// ImportDocx imports a single annotation-export document from disk.
func (i *Importer) ImportDocx(ownerID uint, path, fileName string) (*Summary, error) {
	book, err := i.decodeAnnotations(path)
	if err != nil {
		return nil, err
	}

	logEntry, err := i.startLog(ownerID, entities.PlatformGoogleBooks, fileName)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Log: logEntry, Book: book}
	if err := i.reconcileBook(ownerID, book, summary); err != nil {
		return nil, i.failLog(logEntry, err)
	}

	return summary, i.completeLog(logEntry, summary)
}

// ImportZip imports a ZIP archive of annotation exports. Files are
// processed in isolation: one broken document is reported in the summary
// and does not abort the batch.
func (i *Importer) ImportZip(ownerID uint, zipPath, fileName string) (*Summary, error) {
	tmpDir, err := os.MkdirTemp("", "quotesync-batch-*")
	if err != nil {
		return nil, fmt.Errorf("creating extraction dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := extractZip(zipPath, tmpDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	docxFiles, err := findDocxFiles(tmpDir)
	if err != nil {
		return nil, err
	}
	if len(docxFiles) == 0 {
		return nil, fmt.Errorf("%w: archive %s contains no .docx files", ErrInvalidInput, fileName)
	}

	logEntry, err := i.startLog(ownerID, entities.PlatformGoogleBooksBatch, fileName)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Log:        logEntry,
		TotalFiles: len(docxFiles),
		Books:      map[string]int{},
	}

	for _, path := range docxFiles {
		name := filepath.Base(path)

		book, err := i.decodeAnnotations(path)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		fileSummary := &Summary{}
		if err := i.reconcileBook(ownerID, book, fileSummary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		summary.ProcessedFiles++
		summary.QuotesAdded += fileSummary.QuotesAdded
		summary.Duplicates += fileSummary.Duplicates
		summary.QuoteIDs = append(summary.QuoteIDs, fileSummary.QuoteIDs...)
		if book.Title != "" {
			summary.Books[book.Title] += fileSummary.QuotesAdded
		}
	}

	return summary, i.completeLog(logEntry, summary)
}

// decodeAnnotations decodes one DOCX and runs the annotation parser and URL
// association over it.
func (i *Importer) decodeAnnotations(path string) (*googlebooks.BookData, error) {
	decoded, err := docdecode.DecodeDocx(path)
	if err != nil {
		if errors.Is(err, docdecode.ErrDecode) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	book := googlebooks.Convert(decoded.Text, decoded.URLs, i.parserOpts)
	if len(book.Quotes) == 0 {
		return nil, fmt.Errorf("%w: no annotations found in %s", ErrInvalidInput, filepath.Base(path))
	}
	return book, nil
}

func (i *Importer) reconcileBook(ownerID uint, book *googlebooks.BookData, summary *Summary) error {
	for _, record := range book.Quotes {
		result, err := i.reconciler.Reconcile(ownerID, reconciler.QuoteInput{
			BookTitle: book.Title,
			Author:    book.Author,
			Publisher: book.Publisher,
			Body:      record.Text,
			Page:      record.Page,
			Chapter:   record.Chapter,
			URLs:      record.URLs,
			BookURL:   book.BookURL,
			Platform:  entities.PlatformGoogleBooks,
		})
		if err != nil {
			return err
		}
		summary.record(result)
	}
	return nil
}

func (s *Summary) record(result *reconciler.Result) {
	s.QuotesAdded++
	if result.Duplicate {
		s.Duplicates++
	}
	s.QuoteIDs = append(s.QuoteIDs, result.Quote.ID)
}

// --- audit log lifecycle ---

func (i *Importer) startLog(ownerID uint, platform entities.SourcePlatform, fileName string) (*entities.ImportLog, error) {
	logEntry := &entities.ImportLog{
		OwnerID:  ownerID,
		Platform: platform,
		Status:   entities.ImportStatusPending,
		FileName: fileName,
	}
	if err := i.db.CreateImportLog(logEntry); err != nil {
		return nil, fmt.Errorf("creating import log: %w", err)
	}
	return logEntry, nil
}

func (i *Importer) completeLog(logEntry *entities.ImportLog, summary *Summary) error {
	logEntry.Status = entities.ImportStatusCompleted
	logEntry.QuotesAdded = summary.QuotesAdded
	logEntry.DuplicatesSkipped = summary.Duplicates
	if len(summary.Errors) > 0 {
		if data, err := json.Marshal(summary.Errors); err == nil {
			logEntry.Errors = string(data)
		}
	}
	if err := i.db.UpdateImportLog(logEntry); err != nil {
		return fmt.Errorf("finalizing import log: %w", err)
	}
	return nil
}

func (i *Importer) failLog(logEntry *entities.ImportLog, cause error) error {
	logEntry.Status = entities.ImportStatusFailed
	if data, err := json.Marshal([]string{cause.Error()}); err == nil {
		logEntry.Errors = string(data)
	}
	if err := i.db.UpdateImportLog(logEntry); err != nil {
		log.Printf("Failed to mark import log %d as failed: %v", logEntry.ID, err)
	}
	return cause
}

// findDocxFiles walks the extracted tree for annotation documents, skipping
// macOS resource directories and dotfiles.
func findDocxFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if name == "__MACOSX" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".docx") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
