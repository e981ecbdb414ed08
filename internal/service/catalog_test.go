package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-request-api/internal/entity"
	"sales-request-api/internal/repo"
	"sales-request-api/internal/repo/repo_errors"
)

type fakeKVCache struct {
	entries map[string]*entity.KVEntry
	gets    int
}

func newFakeKVCache() *fakeKVCache {
	return &fakeKVCache{entries: make(map[string]*entity.KVEntry)}
}

func (f *fakeKVCache) GetEntry(ctx context.Context, key string) (*entity.KVEntry, error) {
	f.gets++
	entry, ok := f.entries[key]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return entry, nil
}

func (f *fakeKVCache) PutEntry(ctx context.Context, key string, payload []byte) error {
	f.entries[key] = &entity.KVEntry{Key: key, Payload: payload, UpdatedAt: time.Now()}

	return nil
}

type memoryCache struct {
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := m.values[key]

	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.values[key] = value

	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.values, key)

	return nil
}

type fakeFetcher struct {
	contacts *entity.ContactsCatalog
	products *entity.ProductsCatalog
}

func (f *fakeFetcher) FetchContacts(ctx context.Context) (*entity.ContactsCatalog, error) {
	return f.contacts, nil
}

func (f *fakeFetcher) FetchProducts(ctx context.Context) (*entity.ProductsCatalog, error) {
	return f.products, nil
}

func catalogFixture(fetchedAt time.Time) *entity.ContactsCatalog {
	return &entity.ContactsCatalog{
		Groups: map[string]map[string][]entity.CatalogPerson{
			"G": {"M": {{PersonId: 1, Name: "A", MineGroup: "G", MineName: "M"}}},
		},
		FetchedAt: fetchedAt,
	}
}

func newCatalogTestService(kv *fakeKVCache, mem *memoryCache, fetcher *fakeFetcher, ttl time.Duration) *CatalogService {
	repos := &repo.Repositories{KVCache: kv}

	return NewCatalogService(repos, fetcher, mem, ttl)
}

func TestCatalogContacts_NotLoaded(t *testing.T) {
	svc := newCatalogTestService(newFakeKVCache(), newMemoryCache(), &fakeFetcher{}, time.Hour)

	_, err := svc.Contacts(context.Background())

	assert.ErrorIs(t, err, ErrCatalogNotLoaded)
}

func TestCatalogRefreshThenRead(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	kv := newFakeKVCache()
	fetcher := &fakeFetcher{
		contacts: catalogFixture(now),
		products: &entity.ProductsCatalog{
			Categories: map[string][]entity.CatalogProduct{
				"Pumps": {{ProductId: 1, Name: "Pump", Category: "Pumps", Price: 100}},
			},
			FetchedAt: now,
		},
	}
	svc := newCatalogTestService(kv, newMemoryCache(), fetcher, time.Hour)
	svc.now = func() time.Time { return now.Add(10 * time.Minute) }

	require.NoError(t, svc.Refresh(context.Background()))

	contacts, err := svc.Contacts(context.Background())
	require.NoError(t, err)
	assert.False(t, contacts.Stale)
	assert.Len(t, contacts.Groups["G"]["M"], 1)

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	assert.False(t, products.Stale)
	assert.Len(t, products.Categories["Pumps"], 1)
}

func TestCatalogContacts_StaleAfterTTL(t *testing.T) {
	fetchedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	kv := newFakeKVCache()
	payload, _ := json.Marshal(catalogFixture(fetchedAt))
	require.NoError(t, kv.PutEntry(context.Background(), "catalog:contacts", payload))

	svc := newCatalogTestService(kv, newMemoryCache(), &fakeFetcher{}, time.Hour)
	svc.now = func() time.Time { return fetchedAt.Add(2 * time.Hour) }

	contacts, err := svc.Contacts(context.Background())

	require.NoError(t, err)
	assert.True(t, contacts.Stale, "staleness must be surfaced, not hidden")
}

func TestCatalogContacts_ReadThroughCache(t *testing.T) {
	fetchedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	kv := newFakeKVCache()
	payload, _ := json.Marshal(catalogFixture(fetchedAt))
	require.NoError(t, kv.PutEntry(context.Background(), "catalog:contacts", payload))

	svc := newCatalogTestService(kv, newMemoryCache(), &fakeFetcher{}, time.Hour)
	svc.now = func() time.Time { return fetchedAt.Add(time.Minute) }

	_, err := svc.Contacts(context.Background())
	require.NoError(t, err)
	firstGets := kv.gets

	_, err = svc.Contacts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, firstGets, kv.gets, "second read must come from the fast layer")
}
