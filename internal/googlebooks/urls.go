package googlebooks

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// Reader URLs carry the page as a GBS.PA<n> token.
	pageTokenPattern = regexp.MustCompile(`GBS\.PA(\d+)`)

	// Canonical front-cover reader URL, truncated before the page fragment.
	bookURLPattern = regexp.MustCompile(`(http://play\.google\.com/books/reader\?printsec=frontcover&output=reader&id=[^&]+)`)
)

// AssociateURLs attaches the document's URLs to quote records in three
// passes of decreasing precision: exact page-token match, page number found
// in the quote body, then a book-level fallback shared by every record that
// matched nothing.
func AssociateURLs(quotes []QuoteRecord, urls []string) []QuoteRecord {
	byPage := groupURLsByPage(urls)

	pages := make([]string, 0, len(byPage))
	for page := range byPage {
		pages = append(pages, page)
	}
	sort.Strings(pages)

	// Pass 1: the record's own page number names a URL group.
	for i := range quotes {
		if quotes[i].Page == "" {
			continue
		}
		if group, ok := byPage[quotes[i].Page]; ok {
			quotes[i].URLs = group
		}
	}

	// Pass 2: a page number appearing inside the body text.
	for i := range quotes {
		if len(quotes[i].URLs) > 0 {
			continue
		}
		for _, page := range pages {
			if strings.Contains(quotes[i].Text, page) {
				quotes[i].URLs = byPage[page]
				break
			}
		}
	}

	// Pass 3: book-level fallback for everything still unmatched.
	fallback := bookLevelURLs(urls)
	for i := range quotes {
		if len(quotes[i].URLs) == 0 {
			quotes[i].URLs = fallback
		}
	}

	return quotes
}

func groupURLsByPage(urls []string) map[string][]string {
	byPage := make(map[string][]string)
	for _, url := range urls {
		matches := pageTokenPattern.FindStringSubmatch(url)
		if len(matches) != 2 {
			continue
		}
		byPage[matches[1]] = append(byPage[matches[1]], url)
	}
	return byPage
}

// bookLevelURLs picks the URLs that are not page anchors. When every URL is
// a page anchor the first one stands in for the book.
func bookLevelURLs(urls []string) []string {
	var out []string
	for _, url := range urls {
		if !strings.Contains(url, "GBS.PA") || !strings.Contains(url, "w.0.0.0") {
			out = append(out, url)
		}
	}
	if len(out) == 0 && len(urls) > 0 {
		out = []string{urls[0]}
	}
	return out
}

// ExtractBookURL finds the canonical reader URL for the book itself,
// stripped of any page fragment. Empty when the document carries none.
func ExtractBookURL(urls []string) string {
	for _, url := range urls {
		if !strings.Contains(url, "id=") || !strings.Contains(url, "GBS.PA") {
			continue
		}
		if matches := bookURLPattern.FindStringSubmatch(url); len(matches) == 2 {
			return matches[1]
		}
	}
	return ""
}
