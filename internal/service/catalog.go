package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"sales-request-api/internal/cache"
	"sales-request-api/internal/entity"
	"sales-request-api/internal/repo"
	"sales-request-api/internal/repo/repo_errors"
)

const (
	contactsCatalogKey = "catalog:contacts"
	productsCatalogKey = "catalog:products"
)

// CatalogService serves the cached CRM dataset: redis in front, the kv_cache
// table as the persisted copy, the CRM itself only on explicit refresh.
// Staleness is computed against the fetch time and always surfaced.
type CatalogService struct {
	kvRepo  repo.KVCache
	fetcher DatasetFetcher
	cache   cache.Cache
	ttl     time.Duration
	now     func() time.Time
}

func NewCatalogService(repos *repo.Repositories, fetcher DatasetFetcher, c cache.Cache, ttl time.Duration) *CatalogService {
	if c == nil {
		c = cache.NewNoop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &CatalogService{
		kvRepo:  repos.KVCache,
		fetcher: fetcher,
		cache:   c,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *CatalogService) Contacts(ctx context.Context) (*entity.ContactsCatalog, error) {
	var catalog entity.ContactsCatalog
	if err := s.load(ctx, contactsCatalogKey, &catalog); err != nil {
		return nil, err
	}
	catalog.Stale = s.isStale(catalog.FetchedAt)

	return &catalog, nil
}

func (s *CatalogService) Products(ctx context.Context) (*entity.ProductsCatalog, error) {
	var catalog entity.ProductsCatalog
	if err := s.load(ctx, productsCatalogKey, &catalog); err != nil {
		return nil, err
	}
	catalog.Stale = s.isStale(catalog.FetchedAt)

	return &catalog, nil
}

// Refresh pulls both datasets from the CRM, persists them and drops the fast
// layer so the next read sees the new copy.
func (s *CatalogService) Refresh(ctx context.Context) error {
	contacts, err := s.fetcher.FetchContacts(ctx)
	if err != nil {
		return err
	}
	products, err := s.fetcher.FetchProducts(ctx)
	if err != nil {
		return err
	}

	if err := s.store(ctx, contactsCatalogKey, contacts); err != nil {
		return err
	}
	if err := s.store(ctx, productsCatalogKey, products); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"mineGroups": len(contacts.Groups),
		"categories": len(products.Categories),
	}).Info("Catalog refreshed from CRM")

	return nil
}

func (s *CatalogService) load(ctx context.Context, key string, out interface{}) error {
	raw, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		// A broken cache must not take the catalog down with it.
		logrus.WithField("key", key).WithError(err).Warn("Catalog cache read failed")
	}
	if hit {
		if err := json.Unmarshal(raw, out); err == nil {
			return nil
		}
		logrus.WithField("key", key).Warn("Discarding undecodable catalog cache entry")
	}

	entry, err := s.kvRepo.GetEntry(ctx, key)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return ErrCatalogNotLoaded
		}

		return err
	}

	if err := json.Unmarshal(entry.Payload, out); err != nil {
		return err
	}

	if err := s.cache.Set(ctx, key, entry.Payload, s.ttl); err != nil {
		logrus.WithField("key", key).WithError(err).Warn("Catalog cache write failed")
	}

	return nil
}

func (s *CatalogService) store(ctx context.Context, key string, catalog interface{}) error {
	raw, err := json.Marshal(catalog)
	if err != nil {
		return err
	}

	if err := s.kvRepo.PutEntry(ctx, key, raw); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, key); err != nil {
		logrus.WithField("key", key).WithError(err).Warn("Catalog cache invalidation failed")
	}

	return nil
}

func (s *CatalogService) isStale(fetchedAt time.Time) bool {
	if fetchedAt.IsZero() {
		return true
	}

	return s.now().Sub(fetchedAt) > s.ttl
}
