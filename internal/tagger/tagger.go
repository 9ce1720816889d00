// Package tagger generates topical tags for quote bodies. Two strategies
// exist: a model-backed tagger using a local Ollama instance, and a keyword
// scorer over a predefined vocabulary for hosts without one. The variant is
// chosen once at startup and injected into callers.
package tagger

import (
	"context"
	"log"
)

// Tagger produces up to numTags tags for a text.
type Tagger interface {
	GenerateTags(ctx context.Context, text, language string, numTags int) ([]string, error)
	// Name identifies the active strategy for logs and diagnostics.
	Name() string
}

// Select probes the model backend once and returns the strategy to use for
// the lifetime of the process.
func Select(ctx context.Context, ollamaURL, model string) Tagger {
	ollama := NewOllamaTagger(ollamaURL, model)
	if err := ollama.Ping(ctx); err == nil {
		log.Printf("Tagger: using Ollama model %s at %s", ollama.model, ollama.baseURL)
		return ollama
	}

	log.Printf("Tagger: Ollama unavailable, falling back to keyword scoring")
	return NewKeywordTagger()
}
