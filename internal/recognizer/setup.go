package recognizer

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/raine/photo-pricer/internal/apperrors"
	"github.com/raine/photo-pricer/internal/config"
	"github.com/raine/photo-pricer/internal/search"
	"github.com/raine/photo-pricer/internal/vision"
)

// NewAnnotator builds the annotator selected by cfg. When cache is non-nil,
// results are cached by image hash.
func NewAnnotator(ctx context.Context, cfg *config.Config, cache vision.CacheStore) (vision.Annotator, error) {
	var annotator vision.Annotator
	switch cfg.Annotator {
	case config.AnnotatorGemini:
		g, err := vision.NewGeminiAnnotator(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, apperrors.NewConfigurationError("create gemini annotator", err)
		}
		annotator = g
	default:
		c, err := vision.NewCloudVisionClient(cfg.VisionAPIKey, "")
		if err != nil {
			return nil, apperrors.NewConfigurationError("create cloud vision client", err)
		}
		annotator = c
	}
	log.Info().Str("annotator", cfg.Annotator).Msg("image annotator initialized")

	if cache == nil {
		return annotator, nil
	}
	log.Info().Msg("annotation caching enabled")
	return vision.NewCachedAnnotator(annotator, cache), nil
}

// NewSearcher builds the search client, backed by the Redis cache when
// cfg.RedisAddr is set and reachable. The returned func releases resources.
func NewSearcher(ctx context.Context, cfg *config.Config) (search.Searcher, func(), error) {
	client, err := search.NewClient(search.Config{APIKey: cfg.SearchAPIKey, EngineID: cfg.SearchEngineID})
	if err != nil {
		return nil, nil, apperrors.NewConfigurationError("create search client", err)
	}
	if cfg.RedisAddr == "" {
		return client, func() {}, nil
	}

	rdb, err := search.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("search cache unavailable, continuing without it")
		return client, func() {}, nil
	}
	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.SearchCacheTTL).Msg("search caching enabled")
	return search.NewCachedSearcher(client, rdb, cfg.SearchCacheTTL), func() { rdb.Close() }, nil
}
