// Package googlebooks parses Google Play Books annotation exports: DOCX
// documents containing a header (title, author, publisher), a
// notes/highlights count line, and the highlighted passages with chapter
// headings, page numbers and per-highlight dates.
package googlebooks

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// QuoteRecord is one extracted highlight. Intermediate and in-memory only;
// it lives for a single import run.
type QuoteRecord struct {
	Chapter string   `json:"chapter,omitempty"`
	Text    string   `json:"text"`
	Date    string   `json:"date,omitempty"` // free-form, source locale
	Page    string   `json:"page,omitempty"`
	URLs    []string `json:"urls"`
}

// BookData is the full parsed representation of one annotation export.
type BookData struct {
	Title     string        `json:"title"`
	Author    string        `json:"author"`
	Publisher string        `json:"publisher"`
	Quotes    []QuoteRecord `json:"quotes"`
	BookURL   string        `json:"book_url,omitempty"`
}

// ParserOptions carry the locale-bound markers of the export format. The
// date matcher is pluggable because exports from other locales use different
// month-name formats; the defaults match the Spanish exports the format was
// reverse-engineered from.
type ParserOptions struct {
	// DateMatcher recognizes the trailing per-highlight date line.
	DateMatcher *regexp.Regexp
	// BoilerplatePrefix marks header lines to skip ("Este documento...").
	BoilerplatePrefix string
	// MetaBoundary marks the notes/highlights count line that ends the
	// header region.
	MetaBoundary string
	// EpilogueMarker is moved from a quote body into its chapter.
	EpilogueMarker string
}

// DefaultParserOptions returns the Spanish-locale markers.
func DefaultParserOptions() *ParserOptions {
	return &ParserOptions{
		DateMatcher:       regexp.MustCompile(`(\d+)\s+de\s+(\w+)\s+de\s+(\d{4})`),
		BoilerplatePrefix: "Este documento",
		MetaBoundary:      "notas/fragmentos resaltados",
		EpilogueMarker:    "Epílogo",
	}
}

const (
	headerScanLimit = 10
	minBodyRunes    = 4
)

var (
	// "3. Chapter title"
	chapterPattern = regexp.MustCompile(`^(\d+)\.\s+(.*)`)
	// Bare page number line.
	pageOnlyPattern = regexp.MustCompile(`^\d+$`)
	// Page-number artifact at the start of an accumulated body.
	leadingPagePattern = regexp.MustCompile(`^\s*\d+\s+`)
)

// Parse converts decoded annotation-export text into book metadata and an
// ordered list of quote records. URLs are attached separately by
// AssociateURLs.
func Parse(text string, opts *ParserOptions) *BookData {
	if opts == nil {
		opts = DefaultParserOptions()
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	book := &BookData{Quotes: []QuoteRecord{}}

	parseHeader(lines, book, opts)
	parseQuotes(lines, book, opts)
	applyEpiloguePass(book, opts)

	return book
}

// parseHeader fills title, author and publisher, in that order, from the
// first non-empty, non-boilerplate lines.
func parseHeader(lines []string, book *BookData, opts *ParserOptions) {
	limit := headerScanLimit
	if len(lines) < limit {
		limit = len(lines)
	}

	for i := 0; i < limit; i++ {
		if book.Title != "" && book.Author != "" && book.Publisher != "" {
			break
		}

		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, opts.BoilerplatePrefix) {
			continue
		}

		switch {
		case book.Title == "":
			book.Title = line
		case book.Author == "":
			book.Author = line
		case book.Publisher == "":
			book.Publisher = line
		}
	}
}

// parseQuotes runs the line-oriented state machine over the region after
// the metadata boundary: accumulate body lines, track the current chapter
// and a pending page number, and close out a record when a date line
// appears.
func parseQuotes(lines []string, book *BookData, opts *ParserOptions) {
	start := 0
	for i, line := range lines {
		if strings.Contains(line, opts.MetaBoundary) {
			start = i + 2 // skip the boundary line and the one after it
			break
		}
	}

	var currentChapter, quoteText, quoteDate, pageNumber string

	flush := func() {
		cleaned := strings.TrimSpace(leadingPagePattern.ReplaceAllString(quoteText, ""))
		if utf8.RuneCountInString(cleaned) >= minBodyRunes {
			book.Quotes = append(book.Quotes, QuoteRecord{
				Chapter: currentChapter,
				Text:    cleaned,
				Date:    quoteDate,
				Page:    pageNumber,
			})
		}
		quoteText = ""
		pageNumber = ""
	}

	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if line == "" {
			continue
		}

		if chapterPattern.MatchString(line) {
			currentChapter = line
			continue
		}

		if opts.DateMatcher.MatchString(line) {
			quoteDate = line
			if quoteText != "" {
				flush()
			}
			continue
		}

		if pageOnlyPattern.MatchString(line) && quoteText == "" {
			pageNumber = line
			continue
		}

		if quoteText == "" {
			quoteText = line
		} else {
			quoteText += " " + line
		}
	}

	// A body still pending at end of input is flushed when a date was seen.
	if quoteText != "" && quoteDate != "" {
		flush()
	}
}

// applyEpiloguePass fixes chapter assignment for quotes whose body carries
// the epilogue marker: the marker becomes the chapter and is stripped from
// the text.
func applyEpiloguePass(book *BookData, opts *ParserOptions) {
	if opts.EpilogueMarker == "" {
		return
	}
	for i := range book.Quotes {
		q := &book.Quotes[i]
		if q.Chapter != "" && strings.Contains(q.Text, opts.EpilogueMarker) {
			q.Chapter = opts.EpilogueMarker
			q.Text = strings.TrimSpace(strings.ReplaceAll(q.Text, opts.EpilogueMarker, ""))
		}
	}
}

// Convert runs the full decode-side pipeline for one annotation export:
// parse the text, associate the document's URLs with the records, and pick
// the canonical book URL.
func Convert(text string, urls []string, opts *ParserOptions) *BookData {
	book := Parse(text, opts)

	if len(urls) > 0 {
		book.Quotes = AssociateURLs(book.Quotes, urls)
	}
	for i := range book.Quotes {
		if book.Quotes[i].URLs == nil {
			book.Quotes[i].URLs = []string{}
		}
	}

	book.BookURL = ExtractBookURL(urls)
	return book
}
