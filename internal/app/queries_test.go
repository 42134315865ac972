package app_test

import (
	"context"
	"testing"
	"time"

	"reviewdash/internal/app"
	"reviewdash/internal/domain"
)

func TestListReviews_CacheMissThenHit(t *testing.T) {
	repo := newFakeRepo()
	seedCached(t, repo, bizA, domain.ReviewRecord{ID: "r1", AuthorName: "Ana", Rating: 5, CreateTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	seedCached(t, repo, bizA, domain.ReviewRecord{ID: "r2", AuthorName: "Bob", Rating: 3, CreateTime: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)})
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	out, err := q.ListReviews(context.Background(), bizA.ID)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 2 || out[0].ID != "r2" || out[1].ID != "r1" {
		t.Fatalf("unexpected reviews: %+v", out)
	}

	// Mutate repo to ensure second read indeed comes from cache
	seedCached(t, repo, bizA, domain.ReviewRecord{ID: "r3", AuthorName: "SHOULD NOT SEE THIS"})

	out2, err := q.ListReviews(context.Background(), bizA.ID)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out2) != 2 {
		t.Fatalf("expected cached list of 2, got %d", len(out2))
	}
}

func TestMetrics_CachedPerWindow(t *testing.T) {
	repo := newFakeRepo()
	recent := time.Now().Add(-36 * time.Hour)
	seedCached(t, repo, bizA, domain.ReviewRecord{ID: "r1", Rating: 4, VenueName: "Harbour", CreateTime: recent})
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, time.Minute)

	m, err := q.Metrics(context.Background(), bizA.ID, 0)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if m.WindowDays != app.DefaultWindowDays || m.TotalReviews != 1 || m.AverageRating != 4 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
	if len(m.VenueMetrics) != 1 || m.VenueMetrics[0].VenueName != "Harbour" {
		t.Fatalf("unexpected venues: %+v", m.VenueMetrics)
	}
	if _, ok := cache.store["metrics:biz-a:30"]; !ok {
		t.Fatalf("expected metrics to be cached, have %v", cache.store)
	}

	// a one-day window excludes the review
	m1, err := q.Metrics(context.Background(), bizA.ID, 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if m1.TotalReviews != 0 || m1.PreviousPeriodMetrics.TotalReviews != 1 || m1.MonthOverMonth.TotalReviews != -100 {
		t.Fatalf("unexpected 1-day metrics: %+v", m1)
	}
}

func TestBusiness_OwnerCheck(t *testing.T) {
	repo := newFakeRepo()
	repo.businesses[bizA.ID] = bizA
	q := app.NewQueryService(repo, &fakeCache{}, time.Minute)

	if _, err := q.Business(context.Background(), "u1", bizA.ID); err != nil {
		t.Fatalf("owner should see business: %v", err)
	}
	if _, err := q.Business(context.Background(), "intruder", bizA.ID); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := q.Business(context.Background(), "u1", "nope"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
