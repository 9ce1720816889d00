package tagger

import (
	"context"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Score weights, from strongest to weakest signal.
const (
	scoreExact       = 5.0
	scoreContainment = 2.0
	scorePrefix      = 1.0
	scoreCategory    = 0.5
)

const (
	minTermLength = 3
	minTextLength = 10
)

// Categories used for padding when scoring alone does not fill the
// requested tag count.
var popularCategories = []string{"emotions", "life", "knowledge", "philosophy"}

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"the a an and or but is are was were be been being in on at by for " +
			"with about against between into through during before after above " +
			"below to from up down of off over under again further then once " +
			"here there when where why how all any both each few more most " +
			"other some such no nor not only own same so than too very can " +
			"will just should now this that these those") {
		stopWords[w] = struct{}{}
	}
}

// KeywordTagger scores every vocabulary tag against the terms of the text.
// It needs no external services.
type KeywordTagger struct {
	vocabulary []string
	rng        *rand.Rand
}

func NewKeywordTagger() *KeywordTagger {
	return NewSeededKeywordTagger(time.Now().UnixNano())
}

// NewSeededKeywordTagger fixes the padding randomness, which makes output
// reproducible in tests.
func NewSeededKeywordTagger(seed int64) *KeywordTagger {
	return &KeywordTagger{
		vocabulary: AllTags(),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

func (k *KeywordTagger) Name() string { return "keyword" }

// GenerateTags scores the vocabulary against the text's terms and returns
// the top tags, padding from matched categories when scores alone do not
// reach numTags. Texts under 10 characters yield nothing.
func (k *KeywordTagger) GenerateTags(_ context.Context, text, _ string, numTags int) ([]string, error) {
	if numTags <= 0 {
		numTags = 5
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextLength {
		return []string{}, nil
	}

	terms := extractTerms(text)
	if len(terms) == 0 {
		return []string{}, nil
	}

	scores := k.scoreTags(terms)

	ranked := make([]string, 0, len(scores))
	for tag, score := range scores {
		if score > 0 {
			ranked = append(ranked, tag)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if len(ranked) > numTags {
		ranked = ranked[:numTags]
	}
	return k.pad(ranked, numTags), nil
}

// extractTerms lowercases the text, drops punctuation, and filters stop
// words and short tokens.
func extractTerms(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")

	var terms []string
	for _, word := range strings.Fields(cleaned) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if utf8.RuneCountInString(word) < minTermLength {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

func (k *KeywordTagger) scoreTags(terms []string) map[string]float64 {
	scores := make(map[string]float64, len(k.vocabulary))

	for _, term := range terms {
		for _, tag := range k.vocabulary {
			switch {
			case term == tag:
				scores[tag] += scoreExact
			case strings.Contains(tag, term) || strings.Contains(term, tag):
				scores[tag] += scoreContainment
			case len(term) >= 4 && len(tag) >= 4 && term[:4] == tag[:4]:
				scores[tag] += scorePrefix
			default:
				termCategory := categoryForTerm(term)
				if termCategory != "" && termCategory == CategoryForTag(tag) {
					scores[tag] += scoreCategory
				}
			}
		}
	}
	return scores
}

// categoryForTerm resolves a term to a vocabulary category, exactly first,
// then by containment.
func categoryForTerm(term string) string {
	if category := CategoryForTag(term); category != "" {
		return category
	}
	for _, category := range categoryOrder {
		for _, tag := range tagsByCategory[category] {
			if strings.Contains(tag, term) || strings.Contains(term, tag) {
				return category
			}
		}
	}
	return ""
}

// pad fills the result up to numTags: first with random tags from the
// categories the scored tags belong to, then from a fixed set of popular
// categories.
func (k *KeywordTagger) pad(tags []string, numTags int) []string {
	if len(tags) >= numTags {
		return tags
	}

	var matched []string
	seen := map[string]struct{}{}
	for _, tag := range tags {
		category := CategoryForTag(tag)
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		matched = append(matched, category)
	}

	tags = k.padFromCategories(tags, matched, numTags)
	if len(tags) < numTags {
		tags = k.padFromCategories(tags, append([]string{}, popularCategories...), numTags)
	}
	return tags
}

func (k *KeywordTagger) padFromCategories(tags []string, categories []string, numTags int) []string {
	for len(tags) < numTags && len(categories) > 0 {
		idx := k.rng.Intn(len(categories))
		category := categories[idx]
		categories = append(categories[:idx], categories[idx+1:]...)

		var available []string
		for _, tag := range tagsByCategory[category] {
			if !contains(tags, tag) {
				available = append(available, tag)
			}
		}
		if len(available) > 0 {
			tags = append(tags, available[k.rng.Intn(len(available))])
		}
	}
	return tags
}

func contains(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
