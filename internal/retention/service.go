// Package retention prunes cached annotations and the recognition log in the
// background.
package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// PruneInterval is how often old rows are pruned.
	PruneInterval = 24 * time.Hour

	// AnnotationCacheMaxAge is how long a cached annotation is kept.
	AnnotationCacheMaxAge = 30 * 24 * time.Hour

	// RecognitionsMaxAge is how long logged recognitions are kept.
	RecognitionsMaxAge = 180 * 24 * time.Hour
)

// Store is the part of the store the service prunes.
type Store interface {
	PruneAnnotationCache(olderThan time.Duration) (int64, error)
	PruneOldRecognitions(olderThan time.Duration) (int64, error)
}

// Service periodically deletes expired rows.
type Service struct {
	store    Store
	Interval time.Duration
}

// NewService creates a new retention service.
func NewService(store Store) *Service {
	return &Service{store: store, Interval: PruneInterval}
}

// Run prunes once at startup and then every Interval. It blocks until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Info().Dur("interval", s.Interval).Msg("starting retention service")

	s.prune()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("retention service stopped")
			return
		case <-ticker.C:
			s.prune()
		}
	}
}

func (s *Service) prune() {
	count, err := s.store.PruneAnnotationCache(AnnotationCacheMaxAge)
	if err != nil {
		log.Error().Err(err).Msg("failed to prune annotation cache")
	} else if count > 0 {
		log.Info().Int64("pruned", count).Msg("pruned annotation cache")
	}

	count, err = s.store.PruneOldRecognitions(RecognitionsMaxAge)
	if err != nil {
		log.Error().Err(err).Msg("failed to prune old recognitions")
	} else if count > 0 {
		log.Info().Int64("pruned", count).Msg("pruned old recognitions")
	}
}
