// Package kindle parses delimited plaintext highlight exports
// (My Clippings.txt style): blocks separated by a literal delimiter line,
// each opening with "Title (Author)" and an "Added on <date>" marker line.
package kindle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// Clipping is one parsed highlight block.
type Clipping struct {
	BookTitle string
	Author    string
	Page      string // page or location marker, when the metadata line has one
	AddedAt   time.Time // zero when the date line could not be parsed
	Text      string
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

const entrySeparator = "=========="

var (
	// Title with author: "Book Title (Author Name)".
	// Some exports omit the author parentheses.
	titleAuthorPattern = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)\s*$`)

	// Marker for the metadata line.
	addedOnPattern = regexp.MustCompile(`(?i)added on`)

	// "on page 8" / "page 207-207" / "at location 784-785"
	pagePattern     = regexp.MustCompile(`(?i)(?:on )?page (\d+)`)
	locationPattern = regexp.MustCompile(`(?i)(?:at )?location (\d+)`)

	// Date formats observed in the wild.
	datePatterns = []string{
		"Monday, January 2, 2006 3:04:05 PM",
		"Monday, January 2, 2006 15:04:05",
		"Monday, 2 January 2006 3:04:05 PM",
		"Monday, 2 January 2006 15:04:05",
	}
)

// Parse reads a delimited export and returns the clippings in document
// order. Malformed blocks (fewer than 4 lines) are skipped silently.
func (p *Parser) Parse(r io.Reader) ([]Clipping, error) {
	scanner := bufio.NewScanner(r)

	var clippings []Clipping
	var currentLines []string

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == entrySeparator {
			if clipping := p.parseBlock(currentLines); clipping != nil {
				clippings = append(clippings, *clipping)
			}
			currentLines = nil
			continue
		}

		currentLines = append(currentLines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading clippings: %w", err)
	}

	// Last block when the file doesn't end with a separator.
	if clipping := p.parseBlock(currentLines); clipping != nil {
		clippings = append(clippings, *clipping)
	}

	return clippings, nil
}

// parseBlock parses one delimited block. Layout: title line, "Added on"
// metadata line, then the body (usually preceded by a blank line). Returns
// nil for malformed blocks.
func (p *Parser) parseBlock(lines []string) *Clipping {
	if len(lines) < 4 {
		return nil
	}

	titleLine := strings.TrimSpace(lines[0])
	if titleLine == "" {
		return nil
	}
	title, author := parseTitleAuthor(titleLine)

	metadataLine := strings.TrimSpace(lines[1])
	if !addedOnPattern.MatchString(metadataLine) {
		return nil
	}
	addedAt := parseDate(metadataLine)
	page := parsePage(metadataLine)

	var bodyLines []string
	for _, line := range lines[2:] {
		if strings.TrimSpace(line) == "" && len(bodyLines) == 0 {
			continue
		}
		bodyLines = append(bodyLines, line)
	}

	text := strings.TrimSpace(strings.Join(bodyLines, "\n"))
	if text == "" {
		return nil
	}

	return &Clipping{
		BookTitle: title,
		Author:    author,
		Page:      page,
		AddedAt:   addedAt,
		Text:      text,
	}
}

// parsePage pulls a page number from the metadata line, falling back to a
// Kindle location marker.
func parsePage(line string) string {
	if matches := pagePattern.FindStringSubmatch(line); len(matches) == 2 {
		return matches[1]
	}
	if matches := locationPattern.FindStringSubmatch(line); len(matches) == 2 {
		return matches[1]
	}
	return ""
}

func parseTitleAuthor(line string) (title, author string) {
	matches := titleAuthorPattern.FindStringSubmatch(line)
	if len(matches) == 3 {
		return strings.TrimSpace(matches[1]), strings.TrimSpace(matches[2])
	}
	return strings.TrimSpace(line), ""
}

// parseDate extracts the timestamp after the "Added on" marker. Returns the
// zero time when no known format matches; callers fall back to the import
// time.
func parseDate(line string) time.Time {
	idx := strings.Index(strings.ToLower(line), "added on")
	if idx == -1 {
		return time.Time{}
	}

	dateStr := strings.TrimSpace(line[idx+len("added on"):])

	for _, pattern := range datePatterns {
		if t, err := time.Parse(pattern, dateStr); err == nil {
			return t
		}
	}

	return time.Time{}
}
