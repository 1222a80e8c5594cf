package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/metrics"
)

type Service struct {
	provider Provider
	logger   logrus.FieldLogger
}

func NewService(provider Provider, logger logrus.FieldLogger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Search is the best-effort lookup used by anonymous browsing. It never
// fails: a blank query or a provider failure yields an empty result.
func (s *Service) Search(ctx context.Context, query string, limit int) []Summary {
	results, err := s.SearchStrict(ctx, query, limit)
	if err != nil {
		if !errors.Is(err, ErrEmptyQuery) {
			s.logger.WithError(err).WithField("query", query).Warn("catalog search degraded to empty result")
		}
		return []Summary{}
	}
	return results
}

// SearchStrict returns at most limit summaries, or ErrEmptyQuery /
// ErrUpstreamUnavailable. Malformed items are skipped.
func (s *Service) SearchStrict(ctx context.Context, query string, limit int) ([]Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	res, err := s.provider.SearchVolumes(ctx, query, limit)
	if err != nil {
		metrics.RecordCatalog("search", "error")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	metrics.RecordCatalog("search", "ok")

	summaries := make([]Summary, 0, len(res.Items))
	for _, item := range res.Items {
		if limit > 0 && len(summaries) == limit {
			break
		}
		rec, ok := fromVolume(item)
		if !ok {
			continue
		}
		summaries = append(summaries, rec.Summary)
	}
	return summaries, nil
}

// Fetch resolves one record. A provider miss, or a record without volume info
// or title, is ErrNotFound.
func (s *Service) Fetch(ctx context.Context, externalID string) (Record, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return Record{}, ErrNotFound
	}

	vol, err := s.provider.GetVolume(ctx, externalID)
	if err != nil {
		if errors.Is(err, googlebooks.ErrNotFound) {
			metrics.RecordCatalog("fetch", "not_found")
			return Record{}, ErrNotFound
		}
		metrics.RecordCatalog("fetch", "error")
		return Record{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if vol == nil {
		metrics.RecordCatalog("fetch", "not_found")
		return Record{}, ErrNotFound
	}
	rec, ok := fromVolume(*vol)
	if !ok || rec.Title == "" {
		metrics.RecordCatalog("fetch", "not_found")
		return Record{}, ErrNotFound
	}
	metrics.RecordCatalog("fetch", "ok")
	return rec, nil
}
