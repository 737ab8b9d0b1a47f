// Package reload swaps the searcher's active corpus for the latest stored
// artifact, either on demand or when the indexer announces a rebuild.
package reload

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/metrics"
)

type Service struct {
	store    corpus.Artifacts
	artifact string
	holder   *corpus.Holder
	cache    *cache.QueryCache
	group    singleflight.Group
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService reloads artifact from store into holder. queryCache may be nil.
func NewService(store corpus.Artifacts, artifact string, holder *corpus.Holder, queryCache *cache.QueryCache) *Service {
	return &Service{
		store:    store,
		artifact: artifact,
		holder:   holder,
		cache:    queryCache,
		logger:   slog.Default().With("component", "corpus-reload", "artifact", artifact),
	}
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// Reload fetches, verifies and installs the stored corpus. Concurrent calls
// share one fetch. On failure the active corpus is left in place.
func (s *Service) Reload(ctx context.Context) (corpus.Stats, error) {
	val, err, shared := s.group.Do(s.artifact, func() (interface{}, error) {
		return s.reload(ctx)
	})
	if err != nil {
		return corpus.Stats{}, err
	}
	if shared {
		s.logger.Debug("reload shared with concurrent caller")
	}
	return val.(corpus.Stats), nil
}

func (s *Service) reload(ctx context.Context) (corpus.Stats, error) {
	start := time.Now()
	c, err := corpus.Fetch(ctx, s.store, s.artifact)
	if err == nil {
		err = c.Verify()
	}
	if err != nil {
		s.record("failure")
		s.logger.Error("corpus reload failed", "error", err)
		return corpus.Stats{}, err
	}

	prev := s.holder.Swap(c)
	stats := c.Stats()
	s.record("success")
	if s.metrics != nil {
		s.metrics.CorpusDocuments.Set(float64(stats.Documents))
		s.metrics.CorpusTerms.Set(float64(stats.Terms))
	}

	if s.cache != nil && (prev == nil || prev.Version != c.Version) {
		if _, err := s.cache.Invalidate(ctx); err != nil {
			// Stale entries are keyed by the old version and expire on their own.
			s.logger.Warn("cache invalidation after reload failed", "error", err)
		}
	}

	previous := ""
	if prev != nil {
		previous = prev.Version
	}
	s.logger.Info("corpus reloaded",
		"version", stats.Version,
		"previous_version", previous,
		"documents", stats.Documents,
		"terms", stats.Terms,
		"duration", time.Since(start),
	)
	return stats, nil
}

// HandleRebuilt reloads when ev announces a new version of this service's
// artifact. Events for other artifacts or for the version already active
// are ignored.
func (s *Service) HandleRebuilt(ctx context.Context, ev kafka.CorpusRebuilt) error {
	if ev.Artifact != s.artifact {
		s.logger.Debug("ignoring rebuild of other artifact", "event_artifact", ev.Artifact)
		return nil
	}
	if c, err := s.holder.Load(); err == nil && c.Version == ev.Version {
		s.logger.Debug("corpus already current", "version", ev.Version)
		return nil
	}
	if _, err := s.Reload(ctx); err != nil {
		return fmt.Errorf("reloading after rebuild event %s: %w", ev.Version, err)
	}
	return nil
}

// Handler adapts HandleRebuilt for a kafka consumer.
func (s *Service) Handler() kafka.MessageHandler {
	return kafka.CorpusRebuiltHandler(s.HandleRebuilt)
}

func (s *Service) record(status string) {
	if s.metrics != nil {
		s.metrics.CorpusReloadsTotal.WithLabelValues(status).Inc()
	}
}
