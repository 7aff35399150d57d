// Package recognizer runs the photo-to-price pipeline: annotate the image,
// resolve what it shows, search the market and assemble listing material.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/raine/photo-pricer/internal/apperrors"
	"github.com/raine/photo-pricer/internal/identity"
	"github.com/raine/photo-pricer/internal/listing"
	"github.com/raine/photo-pricer/internal/market"
	"github.com/raine/photo-pricer/internal/metrics"
	"github.com/raine/photo-pricer/internal/search"
	"github.com/raine/photo-pricer/internal/vision"
)

// ErrEmptyImage is returned when there is nothing to recognize.
var ErrEmptyImage = errors.New("image is empty")

// A shopping-pass average below this is treated as noise.
const implausibleAverage = 10

// Config tunes the pipeline. Zero fields take the DefaultConfig value.
type Config struct {
	MaxResults       int           // hits kept per search pass
	MinShoppingHits  int           // priced shopping hits needed to skip the web pass
	MaxMatchingPages int           // matching pages added as unpriced candidates
	MaxSimilarItems  int           // similar items in the result
	QueryDelay       time.Duration // pause between search queries
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		MaxResults:       10,
		MinShoppingHits:  3,
		MaxMatchingPages: 3,
		MaxSimilarItems:  10,
	}
}

// SimilarItem is a comparable listing found on the market.
type SimilarItem struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
	Platform string  `json:"platform"`
	URL      string  `json:"url"`
}

// Result is everything recognized about one photo.
type Result struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Brand          string              `json:"brand,omitempty"`
	Model          string              `json:"model,omitempty"`
	Confidence     float64             `json:"confidence"`
	Description    string              `json:"description"`
	Category       string              `json:"category"`
	Condition      string              `json:"condition"`
	Specifications map[string]string   `json:"specifications"`
	SimilarItems   []SimilarItem       `json:"similarItems"`
	Pricing        market.Summary      `json:"pricing"`
	Query          string              `json:"query"`
	Attributes     []listing.Attribute `json:"attributes"`
	Duration       time.Duration       `json:"duration"`
}

// Recognizer is safe for concurrent use; requests share no mutable state.
type Recognizer struct {
	annotator  vision.Annotator
	aggregator *market.Aggregator
	cfg        Config
}

// New validates the collaborators before any network call is made.
func New(cfg Config, annotator vision.Annotator, searcher search.Searcher) (*Recognizer, error) {
	if annotator == nil {
		return nil, apperrors.NewConfigurationError("create recognizer", errors.New("image annotator is not configured"))
	}
	if searcher == nil {
		return nil, apperrors.NewConfigurationError("create recognizer", errors.New("search service is not configured"))
	}

	def := DefaultConfig()
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.MinShoppingHits <= 0 {
		cfg.MinShoppingHits = def.MinShoppingHits
	}
	if cfg.MaxMatchingPages <= 0 {
		cfg.MaxMatchingPages = def.MaxMatchingPages
	}
	if cfg.MaxSimilarItems <= 0 {
		cfg.MaxSimilarItems = def.MaxSimilarItems
	}

	agg := market.New(searcher)
	agg.QueryDelay = cfg.QueryDelay
	return &Recognizer{annotator: annotator, aggregator: agg, cfg: cfg}, nil
}

// RecognizeBase64 decodes a base64 image (optionally a data: URL) and
// recognizes it.
func (r *Recognizer) RecognizeBase64(ctx context.Context, encoded string) (*Result, error) {
	image, err := vision.DecodeImage(encoded)
	if err != nil {
		return nil, err
	}
	return r.Recognize(ctx, image)
}

// Recognize runs the whole pipeline for one image. Search failures never
// surface here; annotation and configuration failures do.
func (r *Recognizer) Recognize(ctx context.Context, image []byte) (*Result, error) {
	start := time.Now()
	res, err := r.recognize(ctx, image)
	elapsed := time.Since(start)

	metrics.RecognitionDuration.Observe(elapsed.Seconds())
	metrics.Recognitions.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("recognition failed")
		return nil, err
	}
	res.Duration = elapsed
	log.Info().
		Str("id", res.ID).
		Str("name", res.Name).
		Float64("confidence", res.Confidence).
		Float64("suggested", res.Pricing.Suggested).
		Int("priced", res.Pricing.Count).
		Dur("elapsed", elapsed).
		Msg("recognition complete")
	return res, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case apperrors.IsConfiguration(err):
		return "configuration_error"
	case apperrors.IsAnnotation(err):
		return "annotation_error"
	}
	return "error"
}

func (r *Recognizer) recognize(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	analysis, err := r.annotator.Annotate(ctx, image)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if apperrors.IsConfiguration(err) {
			return nil, err
		}
		return nil, apperrors.NewAnnotationError("annotate image", err)
	}
	if analysis == nil {
		return nil, apperrors.NewAnnotationError("annotate image", errors.New("empty response"))
	}

	id := identity.Resolve(analysis)
	query := market.BuildQuery(id.Name, id.Brand, id.Model)
	condition := listing.InferCondition(analysis)
	log.Debug().Str("name", id.Name).Str("source", string(id.Source)).Str("query", query).Msg("identity resolved")

	hits, pricing, err := r.searchMarket(ctx, analysis, id, query, condition)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	category := listing.Categorize(analysis)
	return &Result{
		ID:             uuid.NewString(),
		Name:           id.Name,
		Brand:          id.Brand,
		Model:          id.Model,
		Confidence:     id.Confidence,
		Description:    listing.Describe(analysis, id),
		Category:       category,
		Condition:      condition,
		Specifications: listing.Specifications(analysis, id),
		SimilarItems:   similarItems(hits, r.cfg.MaxSimilarItems),
		Pricing:        pricing,
		Query:          query,
		Attributes:     listing.AttributesFor(category),
	}, nil
}

// searchMarket runs the shopping pass for specific identities, falls back to
// the web pass when that finds too few prices and always adds matching pages.
func (r *Recognizer) searchMarket(ctx context.Context, a *vision.Analysis, id identity.Identity, query, condition string) ([]market.Hit, market.Summary, error) {
	specific := id.TextDerived() || (id.Brand != "" && id.Model != "") || id.Confidence > 0.8

	var shopping, web []market.Hit
	var err error
	if specific {
		shopping, err = r.aggregator.Search(ctx, query, market.Options{
			Pass:       market.PassShopping,
			MaxResults: r.cfg.MaxResults,
			Condition:  condition,
		})
		if err != nil {
			return nil, market.Summary{}, fmt.Errorf("shopping search: %w", err)
		}
	}

	ranWeb := false
	if countPriced(shopping) < r.cfg.MinShoppingHits {
		ranWeb = true
		web, err = r.aggregator.Search(ctx, query, market.Options{
			Pass:       market.PassWeb,
			MaxResults: r.cfg.MaxResults,
		})
		if err != nil {
			return nil, market.Summary{}, fmt.Errorf("web search: %w", err)
		}
	}

	combined := make([]market.Hit, 0, len(shopping)+len(web)+r.cfg.MaxMatchingPages)
	combined = append(combined, shopping...)
	combined = append(combined, web...)
	combined = append(combined, market.HitsFromPages(a.MatchingPages, r.cfg.MaxMatchingPages)...)
	combined = market.Dedupe(combined)

	pricing := market.Summarize(shopping)
	if ranWeb || pricing.Average < implausibleAverage {
		pricing = market.Summarize(combined)
	}

	log.Debug().
		Bool("specific", specific).
		Int("shopping", len(shopping)).
		Int("web", len(web)).
		Int("combined", len(combined)).
		Msg("market search done")
	return combined, pricing, nil
}

func countPriced(hits []market.Hit) int {
	n := 0
	for _, h := range hits {
		if h.Price > 0 {
			n++
		}
	}
	return n
}

// similarItems lists priced hits first, keeping order otherwise.
func similarItems(hits []market.Hit, n int) []SimilarItem {
	sorted := make([]market.Hit, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price > 0 && sorted[j].Price == 0
	})

	items := make([]SimilarItem, 0, n)
	for _, h := range sorted {
		if len(items) == n {
			break
		}
		items = append(items, SimilarItem{Title: h.Title, Price: h.Price, Currency: h.Currency, Platform: h.Merchant, URL: h.Link})
	}
	return items
}
