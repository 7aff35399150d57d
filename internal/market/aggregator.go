// Package market searches for comparable listings and turns them into a
// price summary.
package market

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raine/photo-pricer/internal/apperrors"
	"github.com/raine/photo-pricer/internal/metrics"
	"github.com/raine/photo-pricer/internal/search"
	"github.com/raine/photo-pricer/internal/signals"
	"github.com/raine/photo-pricer/internal/vision"
)

// Pass selects the query variants used for a search.
type Pass string

const (
	PassShopping Pass = "shopping"
	PassWeb      Pass = "web"

	// SourceMatchingPage marks hits taken from pages with matching images.
	SourceMatchingPage = "matching-page"
)

const (
	// MaxQueriesPerPass is the number of variants issued per pass.
	MaxQueriesPerPass = 3

	// DefaultMaxResults is the default number of hits returned by Search.
	DefaultMaxResults = 10
)

// Hit is one search result with the signals extracted from it.
type Hit struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Snippet     string   `json:"snippet,omitempty"`
	Price       float64  `json:"price,omitempty"` // 0 = no price found
	Currency    string   `json:"currency,omitempty"`
	Merchant    string   `json:"merchant,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"reviewCount,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Source      string   `json:"source"`
}

// Options controls one aggregation pass.
type Options struct {
	Pass       Pass
	MinPrice   float64 // 0 = unset
	MaxPrice   float64 // 0 = unset
	MaxResults int
	PerQuery   int
	Condition  string
}

// Aggregator runs query variants against a search service.
type Aggregator struct {
	searcher search.Searcher

	// QueryDelay is waited between consecutive queries.
	QueryDelay time.Duration
}

// New creates an Aggregator.
func New(searcher search.Searcher) *Aggregator {
	return &Aggregator{searcher: searcher}
}

// Search issues up to MaxQueriesPerPass variants of seed, one after another,
// and returns the filtered hits with priced hits first. A failing query is
// logged and skipped. The only error returned is a cancelled context.
func (a *Aggregator) Search(ctx context.Context, seed string, opts Options) ([]Hit, error) {
	if opts.Pass == "" {
		opts.Pass = PassShopping
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.PerQuery <= 0 || opts.PerQuery > search.MaxResultsPerQuery {
		opts.PerQuery = search.MaxResultsPerQuery
	}

	firstWord := ""
	if words := strings.Fields(strings.ToLower(seed)); len(words) > 0 {
		firstWord = words[0]
	}

	queries := Variants(seed, opts.Pass, opts.Condition)
	if len(queries) > MaxQueriesPerPass {
		queries = queries[:MaxQueriesPerPass]
	}

	seen := make(map[string]bool)
	var hits []Hit
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 && a.QueryDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.QueryDelay):
			}
		}

		results, err := a.searcher.Search(ctx, q, opts.PerQuery)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.SearchQueries.WithLabelValues(string(opts.Pass), "error").Inc()
			log.Warn().Err(apperrors.NewSearchQueryError(q, err)).Str("pass", string(opts.Pass)).Msg("search query failed, skipping")
			continue
		}
		metrics.SearchQueries.WithLabelValues(string(opts.Pass), "ok").Inc()
		log.Debug().Str("query", q).Int("results", len(results)).Msg("search completed")

		for _, r := range results {
			if r.Link == "" || seen[r.Link] {
				continue
			}
			seen[r.Link] = true

			hit := newHit(r, string(opts.Pass))
			if hit.Price > 0 {
				if opts.MinPrice > 0 && hit.Price < opts.MinPrice {
					continue
				}
				if opts.MaxPrice > 0 && hit.Price > opts.MaxPrice {
					continue
				}
			} else if firstWord == "" || !strings.Contains(strings.ToLower(hit.Title), firstWord) {
				continue
			}
			hits = append(hits, hit)
		}
	}

	sortPricedFirst(hits)
	if len(hits) > opts.MaxResults {
		hits = hits[:opts.MaxResults]
	}
	return hits, nil
}

func newHit(r search.Result, source string) Hit {
	s := signals.Extract(r.Title + " " + r.Snippet)
	return Hit{
		Title:       r.Title,
		Link:        r.Link,
		Snippet:     r.Snippet,
		Price:       s.Price,
		Currency:    s.Currency,
		Merchant:    merchant(r.Link),
		Condition:   s.Condition,
		Rating:      s.Rating,
		ReviewCount: s.ReviewCount,
		Thumbnail:   r.Thumbnail,
		Source:      source,
	}
}

// merchant is the link's host without a leading "www.".
func merchant(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func sortPricedFirst(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Price > 0 && hits[j].Price == 0
	})
}

// HitsFromPages converts up to n matching pages into unpriced hits.
func HitsFromPages(pages []vision.Page, n int) []Hit {
	var hits []Hit
	for _, p := range pages {
		if len(hits) == n {
			break
		}
		if p.URL == "" {
			continue
		}
		hits = append(hits, Hit{
			Title:    p.Title,
			Link:     p.URL,
			Merchant: merchant(p.URL),
			Source:   SourceMatchingPage,
		})
	}
	return hits
}

// Dedupe drops hits whose link was already seen. The first occurrence wins.
func Dedupe(hits []Hit) []Hit {
	seen := make(map[string]bool, len(hits))
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if seen[h.Link] {
			continue
		}
		seen[h.Link] = true
		out = append(out, h)
	}
	return out
}
