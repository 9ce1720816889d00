package tagger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OllamaTagger asks a local Ollama model for tags.
type OllamaTagger struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaTagger(baseURL, model string) *OllamaTagger {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaTagger{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *OllamaTagger) Name() string { return "ollama" }

// Ping checks whether the Ollama instance is reachable. Used once at
// startup to pick the tagging strategy.
func (o *OllamaTagger) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(pingCtx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// GenerateTags prompts the model for a JSON array of topical tags.
func (o *OllamaTagger) GenerateTags(ctx context.Context, text, language string, numTags int) ([]string, error) {
	if numTags <= 0 {
		numTags = 5
	}
	if language == "" {
		language = "en"
	}

	prompt := fmt.Sprintf(
		"Generate exactly %d short topical tags for the following quote. "+
			"The quote is in language %q; answer with lowercase tags in English. "+
			"Respond with a JSON array of strings and nothing else.\n\nQuote: %s",
		numTags, language, text,
	)

	reqBody, err := json.Marshal(generateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	tags, err := parseTagArray(genResp.Response)
	if err != nil {
		return nil, err
	}
	if len(tags) > numTags {
		tags = tags[:numTags]
	}
	return tags, nil
}

// parseTagArray extracts a JSON string array from model output, tolerating
// prose around the brackets.
func parseTagArray(response string) ([]string, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no tag array in model response")
	}

	var tags []string
	if err := json.Unmarshal([]byte(response[start:end+1]), &tags); err != nil {
		return nil, fmt.Errorf("parsing tag array: %w", err)
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out, nil
}
