package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"reviewdash/internal/domain"
)

// SyncResult is the outcome of one synchronization run.
type SyncResult struct {
	RunID string
	// Reviews is the merged cache + fresh view, unique by review id, newest first.
	Reviews []domain.ReviewRecord
	// Stored holds the cache writes; a failed write keeps its entry and reason.
	Stored domain.Outcome[domain.CachedReview]
	// Rejected holds payloads that did not survive boundary mapping.
	Rejected []domain.Failure[domain.RawReviewPayload]
	// Errors holds batch-level failures (cache load, upstream fetch).
	Errors   []string
	Inserted int
	Updated  int
}

// Messages flattens every failure of the run into human-readable strings.
func (r SyncResult) Messages() []string {
	out := make([]string, 0, len(r.Errors)+len(r.Stored.Failed)+len(r.Rejected))
	out = append(out, r.Errors...)
	for _, f := range r.Stored.Failed {
		out = append(out, f.Reason)
	}
	for _, f := range r.Rejected {
		out = append(out, f.Reason)
	}
	return out
}

type SyncService struct {
	platform domain.ReviewPlatform
	repo     domain.ReviewRepository
	cache    domain.Cache
	now      func() time.Time
}

func NewSyncService(p domain.ReviewPlatform, r domain.ReviewRepository, cache domain.Cache) *SyncService {
	return &SyncService{platform: p, repo: r, cache: cache, now: time.Now}
}

// Sync reconciles freshly fetched reviews of the given businesses with the review cache.
// Every review is inserted when its (business, review id) is unknown and updated in place
// otherwise. Failures are collected; the batch always runs to the end.
func (s *SyncService) Sync(ctx context.Context, businesses []domain.Business) SyncResult {
	res := SyncResult{RunID: uuid.NewString()}

	ids := make([]string, 0, len(businesses))
	for _, b := range businesses {
		ids = append(ids, b.ID)
	}

	// 1) Read the full relevant cache slice once.
	existing := make(map[domain.CacheKey]domain.CachedReview)
	cached, err := s.repo.ListCachedReviews(ctx, ids...)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("load cached reviews: %v", err))
		log.Warn().Err(err).Str("run", res.RunID).Msg("cache load failed; continuing with fresh data only")
	}
	for _, c := range cached {
		existing[c.Key()] = c
	}

	// 2) Fetch and upsert per business; one business failing does not stop the others.
	var fresh []domain.ReviewRecord
	for _, b := range businesses {
		fresh = append(fresh, s.syncBusiness(ctx, b, existing, &res)...)
	}

	// 3) Merge cache and fresh data by review id; fresh wins.
	merged := make(map[string]domain.ReviewRecord, len(cached)+len(fresh))
	for _, c := range cached {
		merged[c.Review.ID] = c.Review
	}
	for _, rv := range fresh {
		merged[rv.ID] = rv
	}
	res.Reviews = make([]domain.ReviewRecord, 0, len(merged))
	for _, rv := range merged {
		res.Reviews = append(res.Reviews, rv)
	}
	SortNewestFirst(res.Reviews)

	if s.cache != nil {
		for _, id := range ids {
			s.invalidateBusiness(ctx, id)
		}
	}
	return res
}

func (s *SyncService) syncBusiness(ctx context.Context, b domain.Business, existing map[domain.CacheKey]domain.CachedReview, res *SyncResult) []domain.ReviewRecord {
	l := log.With().Str("run", res.RunID).Str("business", b.ID).Logger()

	locs, err := s.platform.FetchReviews(ctx, b.Credentials(), b.AccountName)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("business %s: fetch reviews: %v", b.ID, err))
		l.Warn().Err(err).Msg("fetch reviews failed")
		return nil
	}

	var fresh []domain.ReviewRecord
	var inserted, updated, failed, rejected int
	for _, loc := range locs {
		if loc.Err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("business %s: location %s: fetch reviews: %v", b.ID, loc.LocationName, loc.Err))
			l.Warn().Err(loc.Err).Str("location", loc.LocationName).Msg("fetch location reviews failed")
			continue
		}
		for _, raw := range loc.Reviews {
			rv, err := mapReview(loc, raw)
			if err != nil {
				res.Rejected = append(res.Rejected, domain.Failure[domain.RawReviewPayload]{Input: raw, Reason: err.Error()})
				_ = s.repo.LogSyncFailure(ctx, b.ID, raw.ReviewID, err.Error())
				rejected++
				continue
			}
			fresh = append(fresh, rv)

			// The store decides insert vs update, so a stale or missing cache slice
			// never turns an existing entry into a duplicate-key failure.
			now := s.now().UTC()
			entry := domain.CachedReview{BusinessID: b.ID, ExternalID: rv.ID, Review: rv, CreatedAt: now, UpdatedAt: now}
			if prev, ok := existing[entry.Key()]; ok {
				entry.CreatedAt = prev.CreatedAt
			}
			isNew, err := s.repo.UpsertCachedReview(ctx, entry)
			if err != nil {
				reason := fmt.Sprintf("store review %s for business %s: %v", rv.ID, b.ID, err)
				res.Stored.Fail(entry, reason)
				_ = s.repo.LogSyncFailure(ctx, b.ID, rv.ID, reason)
				failed++
				continue
			}

			if isNew {
				res.Inserted++
				inserted++
			} else {
				res.Updated++
				updated++
			}
			existing[entry.Key()] = entry
			res.Stored.Succeed(entry)
		}
	}

	l.Info().
		Int("locations", len(locs)).
		Int("inserted", inserted).
		Int("updated", updated).
		Int("rejected", rejected).
		Int("failed", failed).
		Msg("business synced")
	return fresh
}

// Reply posts an owner reply through the platform and replaces the cached payload.
func (s *SyncService) Reply(ctx context.Context, b domain.Business, reviewID, comment string) (domain.ReviewRecord, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return domain.ReviewRecord{}, fmt.Errorf("%w: empty reply", domain.ErrInvalidReview)
	}
	cur, err := s.repo.GetCachedReview(ctx, b.ID, reviewID)
	if err != nil {
		return domain.ReviewRecord{}, err
	}

	rp, err := s.platform.UpdateReply(ctx, b.Credentials(), cur.Review.Location, reviewID, comment)
	if err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("post reply for review %s: %w", reviewID, err)
	}
	if rp.UpdateTime.IsZero() {
		rp.UpdateTime = s.now().UTC()
	}

	cur.Review.Reply = &rp
	cur.UpdatedAt = s.now().UTC()
	if _, err := s.repo.UpsertCachedReview(ctx, cur); err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("update review %s for business %s: %w", reviewID, b.ID, err)
	}
	if s.cache != nil {
		s.invalidateBusiness(ctx, b.ID)
	}
	return cur.Review, nil
}

// invalidate every read model derived from a business's reviews
func (s *SyncService) invalidateBusiness(ctx context.Context, businessID string) {
	_ = s.cache.Del(ctx, reviewsKey(businessID))
	_ = s.cache.DelPattern(ctx, fmt.Sprintf("metrics:%s:*", businessID))
}
