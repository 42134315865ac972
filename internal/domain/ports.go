package domain

import "context"

type ReviewRepository interface {
	// Write paths
	// UpsertCachedReview stores c under (BusinessID, ExternalID). An existing entry keeps its
	// CreatedAt and gets the new payload; inserted reports which of the two happened.
	UpsertCachedReview(ctx context.Context, c CachedReview) (inserted bool, err error)
	LogSyncFailure(ctx context.Context, businessID, reviewID, reason string) error

	// Read paths
	ListCachedReviews(ctx context.Context, businessIDs ...string) ([]CachedReview, error)
	GetCachedReview(ctx context.Context, businessID, externalID string) (CachedReview, error)
	GetBusiness(ctx context.Context, id string) (Business, error)
	ListBusinesses(ctx context.Context, ownerID string) ([]Business, error)
	ListAllBusinesses(ctx context.Context) ([]Business, error)
}

// ReviewPlatform is the third-party review API.
type ReviewPlatform interface {
	FetchReviews(ctx context.Context, creds Credentials, accountName string) ([]LocationReviews, error)
	UpdateReply(ctx context.Context, creds Credentials, locationName, reviewID, comment string) (Reply, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, keys ...string) error
	DelPattern(ctx context.Context, pattern string) error
}
