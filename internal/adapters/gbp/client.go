// internal/adapters/gbp/client.go
package gbp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"reviewdash/internal/adapters/observability"
	"reviewdash/internal/domain"
)

const (
	service     = "gbp"
	maxPages    = 50
	pageSize    = 50
	maxRetries  = 3
	initialWait = 200 * time.Millisecond
)

// Client talks to the Business Profile style review API. Credentials are passed per call.
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- wire shapes ----

type locationJSON struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Metadata struct {
		PlaceID string `json:"placeId"`
	} `json:"metadata"`
}

type locationsPage struct {
	Locations     []locationJSON `json:"locations"`
	NextPageToken string         `json:"nextPageToken"`
}

type reviewsPage struct {
	Reviews          []domain.RawReviewPayload `json:"reviews"`
	AverageRating    float64                   `json:"averageRating"`
	TotalReviewCount int                       `json:"totalReviewCount"`
	NextPageToken    string                    `json:"nextPageToken"`
}

// ---- Public API ----

func (c *Client) ListLocations(ctx context.Context, creds domain.Credentials, accountName string) ([]domain.Location, error) {
	var out []domain.Location
	token := ""
	for page := 0; page < maxPages; page++ {
		q := url.Values{"pageSize": {strconv.Itoa(100)}}
		if token != "" {
			q.Set("pageToken", token)
		}
		var p locationsPage
		u := fmt.Sprintf("%s/%s/locations?%s", c.base, strings.Trim(accountName, "/"), q.Encode())
		if err := c.do(ctx, "locations", http.MethodGet, u, creds, nil, &p); err != nil {
			return nil, fmt.Errorf("list locations of %s: %w", accountName, err)
		}
		for _, l := range p.Locations {
			out = append(out, domain.Location{Name: l.Name, Title: l.Title, PlaceID: l.Metadata.PlaceID})
		}
		if p.NextPageToken == "" {
			break
		}
		token = p.NextPageToken
	}
	return out, nil
}

func (c *Client) ListReviews(ctx context.Context, creds domain.Credentials, locationName string) ([]domain.RawReviewPayload, error) {
	var out []domain.RawReviewPayload
	token := ""
	for page := 0; page < maxPages; page++ {
		q := url.Values{"pageSize": {strconv.Itoa(pageSize)}}
		if token != "" {
			q.Set("pageToken", token)
		}
		var p reviewsPage
		u := fmt.Sprintf("%s/%s/reviews?%s", c.base, strings.Trim(locationName, "/"), q.Encode())
		if err := c.do(ctx, "reviews", http.MethodGet, u, creds, nil, &p); err != nil {
			return nil, fmt.Errorf("list reviews of %s: %w", locationName, err)
		}
		out = append(out, p.Reviews...)
		if p.NextPageToken == "" {
			break
		}
		token = p.NextPageToken
	}
	return out, nil
}

// FetchReviews lists every location of the account and its reviews. A location whose reviews
// cannot be listed is returned with Err set; only credential and context failures abort the call.
func (c *Client) FetchReviews(ctx context.Context, creds domain.Credentials, accountName string) ([]domain.LocationReviews, error) {
	locs, err := c.ListLocations(ctx, creds, accountName)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LocationReviews, 0, len(locs))
	for _, l := range locs {
		lr := domain.LocationReviews{LocationName: l.Name, Title: l.Title, PlaceID: l.PlaceID}
		revs, err := c.ListReviews(ctx, creds, l.Name)
		switch {
		case err == nil:
			lr.Reviews = revs
		case ctx.Err() != nil, errors.Is(err, domain.ErrUnauthorized):
			return nil, err
		default:
			lr.Err = err
		}
		out = append(out, lr)
	}
	return out, nil
}

func (c *Client) UpdateReply(ctx context.Context, creds domain.Credentials, locationName, reviewID, comment string) (domain.Reply, error) {
	body, err := json.Marshal(map[string]string{"comment": comment})
	if err != nil {
		return domain.Reply{}, err
	}
	u := fmt.Sprintf("%s/%s/reviews/%s/reply", c.base, strings.Trim(locationName, "/"), url.PathEscape(reviewID))

	var raw domain.RawReply
	if err := c.do(ctx, "reply", http.MethodPut, u, creds, body, &raw); err != nil {
		return domain.Reply{}, fmt.Errorf("update reply of %s: %w", reviewID, err)
	}
	rp := domain.Reply{Comment: raw.Comment}
	if rp.Comment == "" {
		rp.Comment = comment
	}
	if t, err := time.Parse(time.RFC3339Nano, raw.UpdateTime); err == nil {
		rp.UpdateTime = t.UTC()
	}
	return rp, nil
}

// ---- Internals ----

// do performs one call with client-side rate limiting per attempt, retries and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) do(ctx context.Context, endpoint, method, u string, creds domain.Credentials, body []byte, out any) error {
	if creds.AccessToken == "" {
		return fmt.Errorf("%w: missing access token", domain.ErrUnauthorized)
	}
	op := func() error {
		// every attempt, retries included, spends a limiter token
		if err := c.rl.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		// build a fresh request each attempt
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rdr)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "reviewdash/1.0")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()
		observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
				return backoff.Permanent(fmt.Errorf("decode %s: %w", endpoint, err))
			}
			return nil

		case http.StatusNoContent:
			return nil

		case http.StatusNotFound:
			return backoff.Permanent(domain.ErrNotFound)

		case http.StatusUnauthorized:
			return backoff.Permanent(domain.ErrUnauthorized)

		case http.StatusForbidden:
			return backoff.Permanent(domain.ErrForbidden)

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After on top of the exponential schedule.
			if wait := retryAfter(resp); wait > 0 && !sleepCtx(ctx, wait) {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("remote %d", resp.StatusCode)

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return backoff.Permanent(fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialWait
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.5
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	// seconds form
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	// HTTP-date form
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
