// Package websearch provides a web search tool backed by the Tavily search
// API, for conversational agents that need fresh information.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/tool"
)

const defaultEndpoint = "https://api.tavily.com/search"

// ClientOptions configures the Tavily client.
type ClientOptions struct {
	// Endpoint overrides the API URL, mainly for tests.
	Endpoint string
	// MaxResults caps the number of results per query.
	MaxResults int
	// HTTPClient overrides the underlying HTTP client.
	HTTPClient *http.Client
}

// Client is a minimal Tavily search API client.
type Client struct {
	apiKey     string
	endpoint   string
	maxResults int
	httpClient *http.Client
}

// NewClient constructs a Tavily client with the given API key.
func NewClient(apiKey string, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		Endpoint:   defaultEndpoint,
		MaxResults: 5,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{
		apiKey:     apiKey,
		endpoint:   opts.Endpoint,
		maxResults: opts.MaxResults,
		httpClient: opts.HTTPClient,
	}
}

// Result is one search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Answer  string   `json:"answer"`
	Results []Result `json:"results"`
}

// Search runs a query and returns the ranked results.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	payload, err := json.Marshal(searchRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tavily api error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return parsed.Results, nil
}

// NewSearchTool wraps the client as a web_search tool. Results are formatted
// as a plain text digest the model can quote from.
func NewSearchTool(client *Client) *tool.FunctionTool {
	return tool.NewFunctionTool(
		"web_search",
		"Search the web for current information on a topic",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query",
				},
			},
			"required": []string{"query"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			query := args["query"].(string)

			results, err := client.Search(toolCtx.Context(), query)
			if err != nil {
				return nil, err
			}
			if len(results) == 0 {
				return "No results found.", nil
			}

			var b strings.Builder
			for i, r := range results {
				fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Content)
			}
			return strings.TrimRight(b.String(), "\n"), nil
		},
	)
}
