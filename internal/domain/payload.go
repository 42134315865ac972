package domain

import (
	"encoding/json"
	"time"
)

// Raw shapes returned by the review platform. Mapped into ReviewRecord at the boundary.

type RawReviewer struct {
	DisplayName     string `json:"displayName"`
	ProfilePhotoURL string `json:"profilePhotoUrl,omitempty"`
}

type RawReply struct {
	Comment    string `json:"comment"`
	UpdateTime string `json:"updateTime"`
}

type RawPhoto struct {
	PhotoURI string `json:"photoUri"`
}

type RawReviewPayload struct {
	ReviewID     string          `json:"reviewId"`
	Name         string          `json:"name,omitempty"`
	Reviewer     RawReviewer     `json:"reviewer"`
	StarRating   json.RawMessage `json:"starRating"` // "FOUR" or 4
	Comment      *string         `json:"comment,omitempty"`
	CreateTime   string          `json:"createTime"`
	UpdateTime   string          `json:"updateTime,omitempty"`
	ReviewReply  *RawReply       `json:"reviewReply,omitempty"`
	ReviewPhotos []RawPhoto      `json:"reviewPhotos,omitempty"`
}

// Location is one venue of a business account on the review platform.
type Location struct {
	Name    string // accounts/{a}/locations/{l}
	Title   string
	PlaceID string
}

// LocationReviews is the fetch collaborator's output for one venue.
type LocationReviews struct {
	LocationName string
	Title        string
	PlaceID      string
	Reviews      []RawReviewPayload
	// Err is set when this location's reviews could not be listed; Reviews is then empty.
	Err error
}

// Business is a tenant-owned account connected to the review platform.
type Business struct {
	ID          string
	OwnerID     string
	Name        string
	AccountName string // accounts/{a}
	AccessToken string
	CreatedAt   time.Time
}

// Credentials returns the platform credentials of the business.
func (b Business) Credentials() Credentials {
	return Credentials{AccessToken: b.AccessToken}
}

// Credentials are passed explicitly into every platform call.
type Credentials struct {
	AccessToken string
}
