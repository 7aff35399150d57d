package vision

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/raine/photo-pricer/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"
)

// CacheStore persists serialized analyses keyed by image hash.
// Get returns nil, nil on a miss.
type CacheStore interface {
	GetAnnotationCache(imageHash string) ([]byte, error)
	SetAnnotationCache(imageHash string, payload []byte) error
}

// CachedAnnotator wraps an Annotator with a persistent cache so the same photo
// is only annotated once.
type CachedAnnotator struct {
	inner Annotator
	store CacheStore
}

// NewCachedAnnotator creates a cached annotator.
func NewCachedAnnotator(inner Annotator, store CacheStore) *CachedAnnotator {
	return &CachedAnnotator{inner: inner, store: store}
}

// HashImage returns the hex BLAKE2b-256 digest of the image bytes.
func HashImage(image []byte) string {
	sum := blake2b.Sum256(image)
	return hex.EncodeToString(sum[:])
}

// Annotate implements Annotator with caching. Cache failures are logged and
// never fail the request.
func (c *CachedAnnotator) Annotate(ctx context.Context, image []byte) (*Analysis, error) {
	hash := HashImage(image)

	if c.store != nil {
		payload, err := c.store.GetAnnotationCache(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check annotation cache")
		} else if payload != nil {
			var cached Analysis
			if err := json.Unmarshal(payload, &cached); err != nil {
				log.Warn().Err(err).Str("hash", hash[:16]).Msg("discarding corrupt annotation cache entry")
			} else {
				metrics.AnnotationCache.WithLabelValues("hit").Inc()
				log.Debug().Str("hash", hash[:16]).Msg("annotation cache hit")
				return &cached, nil
			}
		}
	}
	metrics.AnnotationCache.WithLabelValues("miss").Inc()

	analysis, err := c.inner.Annotate(ctx, image)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		payload, err := json.Marshal(analysis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to encode annotation for cache")
		} else if err := c.store.SetAnnotationCache(hash, payload); err != nil {
			log.Warn().Err(err).Msg("failed to cache annotation")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached annotation")
		}
	}

	return analysis, nil
}
