package domain

import "time"

// Reply is the owner's public answer to a review.
type Reply struct {
	Comment    string    `json:"comment"`
	UpdateTime time.Time `json:"updateTime"`
}

// ReviewRecord is one customer review after boundary mapping. Rating is 1..5.
type ReviewRecord struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"authorName"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreateTime time.Time `json:"createTime"`
	Reply      *Reply    `json:"reply,omitempty"`
	VenueName  string    `json:"venueName"`
	PlaceID    string    `json:"placeId"`
	Location   string    `json:"locationName,omitempty"`
	Photos     []string  `json:"photos,omitempty"`
}

// HasReply reports whether the review carries an owner reply.
func (r ReviewRecord) HasReply() bool { return r.Reply != nil }

// CachedReview is the persisted copy of a review, keyed by (BusinessID, ExternalID).
type CachedReview struct {
	BusinessID string
	ExternalID string // google_review_id
	Review     ReviewRecord
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Key returns the natural key of the cache entry.
func (c CachedReview) Key() CacheKey {
	return CacheKey{BusinessID: c.BusinessID, ExternalID: c.ExternalID}
}

type CacheKey struct {
	BusinessID string
	ExternalID string
}
