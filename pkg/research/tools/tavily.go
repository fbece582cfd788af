// Package tools holds the external search adapters used by the research
// engine.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/quantrisk/riskscan/pkg/research"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilySearch queries the Tavily search API. It implements
// research.Searcher.
type TavilySearch struct {
	APIKey     string
	MaxResults int
	BaseURL    string
	HTTPClient *http.Client
}

// NewTavilySearch returns a client with the defaults the research workflow
// uses: two results per query, advanced search depth.
func NewTavilySearch(apiKey string) *TavilySearch {
	return &TavilySearch{
		APIKey:     apiKey,
		MaxResults: 2,
		BaseURL:    tavilyEndpoint,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type tavilyRequest struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search runs one query and returns the result documents, deduplicated by
// URL within this response, first seen kept. Content is empty when the API
// omits it.
func (t *TavilySearch) Search(ctx context.Context, query string) ([]research.Document, error) {
	payload, err := json.Marshal(tavilyRequest{
		Query:             query,
		MaxResults:        t.MaxResults,
		SearchDepth:       "advanced",
		IncludeAnswer:     true,
		IncludeRawContent: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	url := t.BaseURL
	if url == "" {
		url = tavilyEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	client := t.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("search API returned non-200 status code", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	seen := make(map[string]bool, len(parsed.Results))
	docs := make([]research.Document, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		docs = append(docs, research.Document{
			SearchQuery: query,
			Title:       r.Title,
			URL:         r.URL,
			Content:     r.Content,
		})
	}

	slog.Info("search done", "query", query, "results", len(docs))
	return docs, nil
}
