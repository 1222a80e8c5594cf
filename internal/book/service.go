package book

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bookshelf/internal/catalog"
	"bookshelf/internal/platform/metrics"
	"bookshelf/internal/session"
)

// Result sizes for the catalog-backed routes.
const (
	AddSearchLimit  = 10
	FullSearchLimit = 25
)

// MaxBatchIDs caps one batch add; each id costs a paced catalog fetch.
const MaxBatchIDs = 25

// DefaultBatchTimeout bounds the catalog lookups of one batch add, leaving
// room under the server write timeout for the insert and the response.
const DefaultBatchTimeout = 20 * time.Second

const (
	failReasonNotFound = "not found in catalog"
	failReasonUpstream = "catalog unavailable"
)

type Service struct {
	repo         Repository
	catalog      Catalog
	logger       logrus.FieldLogger
	batchTimeout time.Duration
}

func NewService(repo Repository, catalog Catalog, logger logrus.FieldLogger) *Service {
	return &Service{repo: repo, catalog: catalog, logger: logger, batchTimeout: DefaultBatchTimeout}
}

// WithBatchTimeout overrides DefaultBatchTimeout.
func (s *Service) WithBatchTimeout(d time.Duration) *Service {
	if d > 0 {
		s.batchTimeout = d
	}
	return s
}

// ListAll backs the public home page.
func (s *Service) ListAll(ctx context.Context) ([]Book, error) {
	return s.repo.ListAll(ctx)
}

// ListByOwner is public; profiles show every book of their user.
func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]Book, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListMine(ctx context.Context, id session.Identity) ([]Book, error) {
	if err := id.Require(); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, id.UserID)
}

// AddByExternalID copies a catalog record into the caller's collection. When
// the caller already owns it the existing book is returned with added=false.
func (s *Service) AddByExternalID(ctx context.Context, id session.Identity, externalID string) (b Book, added bool, err error) {
	if err := id.Require(); err != nil {
		return Book{}, false, err
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return Book{}, false, ErrMissingExternalID
	}

	existing, err := s.repo.GetByOwnerAndExternalID(ctx, id.UserID, externalID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Book{}, false, err
	}

	rec, err := s.catalog.Fetch(ctx, externalID)
	if err != nil {
		return Book{}, false, err
	}

	b = FromRecord(id.UserID, rec)
	if err := s.repo.Create(ctx, &b); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// lost a race with a concurrent add of the same id
			existing, err := s.repo.GetByOwnerAndExternalID(ctx, id.UserID, externalID)
			return existing, false, err
		}
		return Book{}, false, err
	}
	b.OwnerUsername = id.Username
	metrics.BooksAdded.Inc()
	return b, true, nil
}

// AddByExternalIDs resolves every id and stores the resolvable ones in one
// batch. Unresolvable ids are reported in Failed, owned ones in Duplicates.
// Ids still unresolved when the batch timeout expires fail as unavailable.
func (s *Service) AddByExternalIDs(ctx context.Context, id session.Identity, externalIDs []string) (BatchResult, error) {
	if err := id.Require(); err != nil {
		return BatchResult{}, err
	}
	ids := normalizeIDs(externalIDs)
	if len(ids) == 0 {
		return BatchResult{}, ErrNoExternalIDs
	}
	if len(ids) > MaxBatchIDs {
		return BatchResult{}, ErrTooManyExternalIDs
	}

	ownedIDs, err := s.repo.ExternalIDsByOwner(ctx, id.UserID)
	if err != nil {
		return BatchResult{}, err
	}
	owned := make(map[string]struct{}, len(ownedIDs))
	for _, ext := range ownedIDs {
		owned[ext] = struct{}{}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.batchTimeout)
	defer cancel()

	res := BatchResult{Books: []Book{}, Failed: []BatchFailure{}, Duplicates: []string{}}
	pending := make([]*Book, 0, len(ids))
	for _, ext := range ids {
		if _, ok := owned[ext]; ok {
			res.Duplicates = append(res.Duplicates, ext)
			continue
		}
		if fetchCtx.Err() != nil {
			res.Failed = append(res.Failed, BatchFailure{ExternalID: ext, Reason: failReasonUpstream})
			continue
		}
		rec, err := s.catalog.Fetch(fetchCtx, ext)
		if err != nil {
			reason := failReasonUpstream
			if errors.Is(err, catalog.ErrNotFound) {
				reason = failReasonNotFound
			}
			s.logger.WithError(err).WithField("google_id", ext).Warn("skipping unresolved book in batch")
			res.Failed = append(res.Failed, BatchFailure{ExternalID: ext, Reason: reason})
			continue
		}
		b := FromRecord(id.UserID, rec)
		pending = append(pending, &b)
	}

	if len(pending) == 0 {
		return res, nil
	}
	dups, err := s.repo.CreateBatch(ctx, pending)
	if err != nil {
		return BatchResult{}, err
	}
	skipped := make(map[string]struct{}, len(dups))
	for _, ext := range dups {
		skipped[ext] = struct{}{}
	}
	res.Duplicates = append(res.Duplicates, dups...)
	for _, b := range pending {
		if _, ok := skipped[b.ExternalID]; ok {
			continue
		}
		b.OwnerUsername = id.Username
		res.Books = append(res.Books, *b)
	}
	metrics.BooksAdded.Add(float64(len(res.Books)))
	return res, nil
}

// Delete removes a book owned by the caller.
func (s *Service) Delete(ctx context.Context, id session.Identity, bookID int64) error {
	if err := id.Require(); err != nil {
		return err
	}
	b, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	if !session.Owns(id, b) {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, b.ID, id.UserID)
}

// SearchForAdd is the logged-in variant of the catalog search: provider
// failures are errors rather than an empty list.
func (s *Service) SearchForAdd(ctx context.Context, id session.Identity, query string) ([]catalog.Summary, error) {
	if err := id.Require(); err != nil {
		return nil, err
	}
	return s.catalog.SearchStrict(ctx, query, AddSearchLimit)
}

// SearchResults marks each hit the viewer already owns. Anonymous viewers own
// nothing.
func (s *Service) SearchResults(ctx context.Context, id session.Identity, query string) ([]SearchResult, error) {
	hits, err := s.catalog.SearchStrict(ctx, query, FullSearchLimit)
	if err != nil {
		return nil, err
	}

	owned := map[string]struct{}{}
	if id.Authenticated() {
		ids, err := s.repo.ExternalIDsByOwner(ctx, id.UserID)
		if err != nil {
			return nil, err
		}
		for _, ext := range ids {
			owned[ext] = struct{}{}
		}
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		_, ok := owned[h.ExternalID]
		results = append(results, SearchResult{Summary: h, AlreadyAdded: ok})
	}
	return results, nil
}

func normalizeIDs(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, ext := range in {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}
