package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"reviewdash/internal/domain"
)

const (
	DefaultWindowDays = 30
	MaxWindowDays     = 365
)

func reviewsKey(businessID string) string { return "reviews:" + businessID }

func metricsKey(businessID string, days int) string {
	return fmt.Sprintf("metrics:%s:%d", businessID, days)
}

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl, now: time.Now}
}

// Business returns the business if it belongs to ownerID.
func (s *QueryService) Business(ctx context.Context, ownerID, businessID string) (domain.Business, error) {
	b, err := s.repo.GetBusiness(ctx, businessID)
	if err != nil {
		return domain.Business{}, err
	}
	if b.OwnerID != ownerID {
		return domain.Business{}, domain.ErrForbidden
	}
	return b, nil
}

func (s *QueryService) Businesses(ctx context.Context, ownerID string) ([]domain.Business, error) {
	return s.repo.ListBusinesses(ctx, ownerID)
}

// ListReviews returns the cached reviews of a business, newest first.
func (s *QueryService) ListReviews(ctx context.Context, businessID string) ([]domain.ReviewRecord, error) {
	key := reviewsKey(businessID)
	var out []domain.ReviewRecord
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	cached, err := s.repo.ListCachedReviews(ctx, businessID)
	if err != nil {
		return nil, err
	}
	out = make([]domain.ReviewRecord, 0, len(cached))
	for _, c := range cached {
		out = append(out, c.Review)
	}
	SortNewestFirst(out)

	// optional size guard
	if b, _ := json.Marshal(out); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// Metrics builds the dashboard snapshot over windows of `days` ending now.
func (s *QueryService) Metrics(ctx context.Context, businessID string, days int) (domain.ReviewMetrics, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	key := metricsKey(businessID, days)
	var out domain.ReviewMetrics
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	reviews, err := s.ListReviews(ctx, businessID)
	if err != nil {
		return domain.ReviewMetrics{}, err
	}
	out = BuildReviewMetrics(reviews, days, s.now().UTC())
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}
