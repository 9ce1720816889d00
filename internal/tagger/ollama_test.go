package tagger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOllama(t *testing.T, response string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Model)
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(generateResponse{Response: response, Done: true})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestOllamaTagger(t *testing.T) {
	ctx := context.Background()

	t.Run("GenerateTags", func(t *testing.T) {
		server := fakeOllama(t, `["stoicism", "resilience", "philosophy"]`)
		tagger := NewOllamaTagger(server.URL, "test-model")

		tags, err := tagger.GenerateTags(ctx, "The obstacle is the way.", "en", 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"stoicism", "resilience", "philosophy"}, tags)
	})

	t.Run("TruncatesOverlongAnswer", func(t *testing.T) {
		server := fakeOllama(t, `["one", "two", "three", "four"]`)
		tagger := NewOllamaTagger(server.URL, "test-model")

		tags, err := tagger.GenerateTags(ctx, "Some quote text here.", "en", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two"}, tags)
	})

	t.Run("ToleratesProseAroundArray", func(t *testing.T) {
		server := fakeOllama(t, `Here are your tags: ["hope", "memory"] enjoy!`)
		tagger := NewOllamaTagger(server.URL, "test-model")

		tags, err := tagger.GenerateTags(ctx, "Some quote text here.", "en", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"hope", "memory"}, tags)
	})

	t.Run("NormalizesTags", func(t *testing.T) {
		server := fakeOllama(t, `[" Hope ", "", "MEMORY"]`)
		tagger := NewOllamaTagger(server.URL, "test-model")

		tags, err := tagger.GenerateTags(ctx, "Some quote text here.", "en", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"hope", "memory"}, tags)
	})

	t.Run("RejectsNonArrayAnswer", func(t *testing.T) {
		server := fakeOllama(t, `I cannot produce tags for this.`)
		tagger := NewOllamaTagger(server.URL, "test-model")

		_, err := tagger.GenerateTags(ctx, "Some quote text here.", "en", 5)
		assert.Error(t, err)
	})

	t.Run("Ping", func(t *testing.T) {
		server := fakeOllama(t, `[]`)
		assert.NoError(t, NewOllamaTagger(server.URL, "m").Ping(ctx))

		down := NewOllamaTagger("http://127.0.0.1:1", "m")
		assert.Error(t, down.Ping(ctx))
	})
}

func TestSelect(t *testing.T) {
	ctx := context.Background()

	t.Run("PrefersOllamaWhenReachable", func(t *testing.T) {
		server := fakeOllama(t, `[]`)
		tagger := Select(ctx, server.URL, "test-model")
		assert.Equal(t, "ollama", tagger.Name())
	})

	t.Run("FallsBackToKeyword", func(t *testing.T) {
		tagger := Select(ctx, "http://127.0.0.1:1", "test-model")
		assert.Equal(t, "keyword", tagger.Name())
	})
}
