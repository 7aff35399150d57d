// Package search queries the Custom Search JSON API, optionally through a
// Redis response cache.
package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// BaseURL is the Google Custom Search JSON API.
	BaseURL = "https://www.googleapis.com"

	// MaxResultsPerQuery is the most results the API returns for one request.
	MaxResultsPerQuery = 10
)

// ErrMissingConfig is returned when the API key or engine id is absent.
var ErrMissingConfig = errors.New("search api key or engine id is not configured")

// Result is one raw search result.
type Result struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Snippet   string `json:"snippet"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Searcher runs a free-text query and returns at most num results.
type Searcher interface {
	Search(ctx context.Context, query string, num int) ([]Result, error)
}

// Config configures the search client.
type Config struct {
	APIKey   string
	EngineID string
	BaseURL  string // optional, for testing
}

// Client handles the Custom Search API.
type Client struct {
	httpClient *resty.Client
	apiKey     string
	engineID   string
}

// NewClient creates a search client. Missing credentials are reported here,
// before any request is made.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, ErrMissingConfig
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/json")
	return &Client{httpClient: httpClient, apiKey: cfg.APIKey, engineID: cfg.EngineID}, nil
}

type response struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Pagemap struct {
			CSEThumbnail []struct {
				Src string `json:"src"`
			} `json:"cse_thumbnail"`
		} `json:"pagemap"`
	} `json:"items"`
}

// Search performs one query. num is clamped to 1..MaxResultsPerQuery.
func (c *Client) Search(ctx context.Context, query string, num int) ([]Result, error) {
	if num <= 0 || num > MaxResultsPerQuery {
		num = MaxResultsPerQuery
	}

	var result response
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key": c.apiKey,
			"cx":  c.engineID,
			"q":   query,
			"num": strconv.Itoa(num),
		}).
		SetResult(&result).
		Get("/customsearch/v1")
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search failed: %d - %s", res.StatusCode(), res.String())
	}

	results := make([]Result, 0, len(result.Items))
	for _, item := range result.Items {
		r := Result{Title: item.Title, Link: item.Link, Snippet: item.Snippet}
		if len(item.Pagemap.CSEThumbnail) > 0 {
			r.Thumbnail = item.Pagemap.CSEThumbnail[0].Src
		}
		results = append(results, r)
	}
	return results, nil
}
