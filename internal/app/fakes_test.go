package app_test

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"reviewdash/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	businesses map[string]domain.Business
	cache      map[domain.CacheKey]domain.CachedReview

	inserts, updates int
	failOn           map[string]error // review id -> write error
	listErr          error
	failures         []string
	// stale entries are listed but not stored, as if deleted after the cache load
	stale []domain.CachedReview
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		businesses: map[string]domain.Business{},
		cache:      map[domain.CacheKey]domain.CachedReview{},
		failOn:     map[string]error{},
	}
}

// UpsertCachedReview mirrors the MySQL upsert: the stored row decides insert vs update and
// an existing row keeps its created_at.
func (f *fakeRepo) UpsertCachedReview(ctx context.Context, c domain.CachedReview) (bool, error) {
	if err := f.failOn[c.ExternalID]; err != nil {
		return false, err
	}
	prev, ok := f.cache[c.Key()]
	if ok {
		c.CreatedAt = prev.CreatedAt
		f.updates++
	} else {
		f.inserts++
	}
	f.cache[c.Key()] = c
	return !ok, nil
}

func (f *fakeRepo) LogSyncFailure(ctx context.Context, businessID, reviewID, reason string) error {
	f.failures = append(f.failures, businessID+"/"+reviewID)
	return nil
}

func (f *fakeRepo) ListCachedReviews(ctx context.Context, businessIDs ...string) ([]domain.CachedReview, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	want := map[string]bool{}
	for _, id := range businessIDs {
		want[id] = true
	}
	out := append([]domain.CachedReview(nil), f.stale...)
	for _, c := range f.cache {
		if want[c.BusinessID] {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out, nil
}

func (f *fakeRepo) GetCachedReview(ctx context.Context, businessID, externalID string) (domain.CachedReview, error) {
	c, ok := f.cache[domain.CacheKey{BusinessID: businessID, ExternalID: externalID}]
	if !ok {
		return domain.CachedReview{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) GetBusiness(ctx context.Context, id string) (domain.Business, error) {
	b, ok := f.businesses[id]
	if !ok {
		return domain.Business{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) ListBusinesses(ctx context.Context, ownerID string) ([]domain.Business, error) {
	var out []domain.Business
	for _, b := range f.businesses {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) ListAllBusinesses(ctx context.Context) ([]domain.Business, error) {
	return f.ListBusinesses(ctx, "")
}

type fakePlatform struct {
	byAccount map[string][]domain.LocationReviews
	fetchErr  map[string]error
	replies   []string
}

func (p *fakePlatform) FetchReviews(ctx context.Context, creds domain.Credentials, accountName string) ([]domain.LocationReviews, error) {
	if err := p.fetchErr[accountName]; err != nil {
		return nil, err
	}
	return p.byAccount[accountName], nil
}

func (p *fakePlatform) UpdateReply(ctx context.Context, creds domain.Credentials, locationName, reviewID, comment string) (domain.Reply, error) {
	if creds.AccessToken == "" {
		return domain.Reply{}, domain.ErrUnauthorized
	}
	p.replies = append(p.replies, locationName+"/"+reviewID)
	return domain.Reply{Comment: comment}, nil
}

// fakeCache stores JSON so reads never alias the stored value.
type fakeCache struct {
	store   map[string][]byte
	deleted []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.store, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *fakeCache) DelPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
		}
	}
	c.deleted = append(c.deleted, pattern)
	return nil
}
