package app

import (
	"fmt"
	"strings"
	"time"

	"reviewdash/internal/domain"
)

const anonymousReviewer = "Anonymous"

/********** tiny helpers **********/

// parseTimeFlexible accepts RFC 3339 with or without fractional seconds.
func parseTimeFlexible(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

func venueName(loc domain.LocationReviews) string {
	if t := strings.TrimSpace(loc.Title); t != "" {
		return t
	}
	return loc.LocationName
}

func photoURIs(in []domain.RawPhoto) []string {
	var out []string
	for _, p := range in {
		if u := strings.TrimSpace(p.PhotoURI); u != "" {
			out = append(out, u)
		}
	}
	return out
}

/********** review mapper **********/

// mapReview converts one platform payload into a ReviewRecord. It fails closed: a payload
// without id, with an unparsable createTime or with a rating outside 1..5 is rejected.
func mapReview(loc domain.LocationReviews, raw domain.RawReviewPayload) (domain.ReviewRecord, error) {
	id := strings.TrimSpace(raw.ReviewID)
	if id == "" {
		return domain.ReviewRecord{}, fmt.Errorf("%w: missing reviewId", domain.ErrInvalidReview)
	}

	rating := domain.NormalizeRating(raw.StarRating)
	if !domain.ValidRating(rating) {
		return domain.ReviewRecord{}, fmt.Errorf("%w: review %s: rating %s out of range",
			domain.ErrInvalidReview, id, strings.TrimSpace(string(raw.StarRating)))
	}

	created, err := parseTimeFlexible(raw.CreateTime)
	if err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("%w: review %s: createTime: %v", domain.ErrInvalidReview, id, err)
	}

	rv := domain.ReviewRecord{
		ID:         id,
		AuthorName: strings.TrimSpace(raw.Reviewer.DisplayName),
		Rating:     int(rating),
		CreateTime: created,
		VenueName:  venueName(loc),
		PlaceID:    loc.PlaceID,
		Location:   loc.LocationName,
		Photos:     photoURIs(raw.ReviewPhotos),
	}
	if rv.AuthorName == "" {
		rv.AuthorName = anonymousReviewer
	}
	if raw.Comment != nil {
		rv.Comment = *raw.Comment
	}

	// Reply: a present reply with a bad updateTime is still a reply; fall back to createTime.
	if raw.ReviewReply != nil {
		rp := &domain.Reply{Comment: raw.ReviewReply.Comment, UpdateTime: created}
		if t, err := parseTimeFlexible(raw.ReviewReply.UpdateTime); err == nil {
			rp.UpdateTime = t
		}
		rv.Reply = rp
	}
	return rv, nil
}
