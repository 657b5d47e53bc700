// Package ai generates query summaries with the Gemini API. Summaries are
// best-effort: any failure is logged and reported as an empty summary so
// search keeps working when the API is down or the key is missing.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
	"github.com/abiiranathan/lexicon-sub000/pkg/cache"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	requestTimeout = 20 * time.Second

	// Summaries are expensive, so they are cached far longer than the
	// search results they accompany.
	summaryCacheSize = 500
	summaryCacheTTL  = 24 * time.Hour

	// maxErrorBodyLog caps how much of an error response body is logged.
	maxErrorBodyLog = 500
)

// Client talks to the Gemini generateContent endpoint. Safe for concurrent
// use. Summaries are cached per query for 24 hours.
type Client struct {
	apiKey  string
	model   string
	baseURL string

	httpClient *http.Client
	cache      *cache.Cache
}

// NewClient creates a client for the given API key and model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      cache.New(summaryCacheSize, summaryCacheTTL),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Summarize returns an HTML summary answering query, grounded in the packed
// page excerpts. An empty string means no summary is available; the caller
// should degrade gracefully rather than fail the request.
func (c *Client) Summarize(ctx context.Context, query, excerpts string) string {
	if v := c.cache.Get(query); v != nil {
		summary := string(v.Bytes())
		v.Release()
		return summary
	}

	summary, err := c.generate(ctx, query, excerpts)
	if err != nil {
		logger.Warn("ai summary unavailable", logger.Query(query), logger.Err(err))
		return ""
	}
	if summary != "" {
		c.cache.Set(query, []byte(summary), 0)
	}
	return summary
}

func (c *Client) generate(ctx context.Context, query, excerpts string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, query, excerpts)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := respBody
		if len(snippet) > maxErrorBodyLog {
			snippet = snippet[:maxErrorBodyLog]
		}
		return "", fmt.Errorf("api returned %d: %s", resp.StatusCode, snippet)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("api error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("response contained no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
