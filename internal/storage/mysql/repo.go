package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"reviewdash/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// UpsertCachedReview relies on the default affected-rows semantics of the driver; a DSN with
// clientFoundRows=true would report an unchanged row as 1 and read as an insert.
func (r *Repo) UpsertCachedReview(ctx context.Context, c domain.CachedReview) (bool, error) {
	payload, err := json.Marshal(c.Review)
	if err != nil {
		return false, fmt.Errorf("marshal review %s: %w", c.ExternalID, err)
	}
	res, err := r.db.ExecContext(ctx, upsertCachedReviewSQL,
		c.BusinessID,
		c.ExternalID,
		string(payload),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("upsert cached review %s: %w", c.ExternalID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert cached review %s: rows affected: %w", c.ExternalID, err)
	}
	return n == 1, nil
}

func (r *Repo) LogSyncFailure(ctx context.Context, businessID, reviewID, reason string) error {
	// review_id is part of the key; batch-level failures use an empty id.
	_, err := r.db.ExecContext(ctx, insertSyncFailureSQL, businessID, reviewID, reason)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCachedReview(s rowScanner) (domain.CachedReview, error) {
	var c domain.CachedReview
	var payload []byte
	if err := s.Scan(&c.BusinessID, &c.ExternalID, &payload, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.CachedReview{}, err
	}
	if err := json.Unmarshal(payload, &c.Review); err != nil {
		return domain.CachedReview{}, fmt.Errorf("decode review %s: %w", c.ExternalID, err)
	}
	return c, nil
}

func (r *Repo) ListCachedReviews(ctx context.Context, businessIDs ...string) ([]domain.CachedReview, error) {
	if len(businessIDs) == 0 {
		return nil, nil
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(businessIDs)), ",")
	args := make([]any, 0, len(businessIDs))
	for _, id := range businessIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, listCachedReviewsPrefix+"("+marks+")"+listCachedReviewsSuffix, args...)
	if err != nil {
		return nil, fmt.Errorf("list cached reviews: %w", err)
	}
	defer rows.Close()

	var out []domain.CachedReview
	for rows.Next() {
		c, err := scanCachedReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetCachedReview(ctx context.Context, businessID, externalID string) (domain.CachedReview, error) {
	c, err := scanCachedReview(r.db.QueryRowContext(ctx, getCachedReviewSQL, businessID, externalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CachedReview{}, domain.ErrNotFound
		}
		return domain.CachedReview{}, err
	}
	return c, nil
}

func scanBusiness(s rowScanner) (domain.Business, error) {
	var b domain.Business
	var token sql.NullString
	if err := s.Scan(&b.ID, &b.OwnerID, &b.Name, &b.AccountName, &token, &b.CreatedAt); err != nil {
		return domain.Business{}, err
	}
	if token.Valid {
		b.AccessToken = token.String
	}
	return b, nil
}

func (r *Repo) GetBusiness(ctx context.Context, id string) (domain.Business, error) {
	b, err := scanBusiness(r.db.QueryRowContext(ctx, getBusinessSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Business{}, domain.ErrNotFound
		}
		return domain.Business{}, err
	}
	return b, nil
}

func (r *Repo) ListBusinesses(ctx context.Context, ownerID string) ([]domain.Business, error) {
	return r.listBusinesses(ctx, listBusinessesSQL, ownerID)
}

func (r *Repo) ListAllBusinesses(ctx context.Context) ([]domain.Business, error) {
	return r.listBusinesses(ctx, listAllBusinessesSQL)
}

func (r *Repo) listBusinesses(ctx context.Context, query string, args ...any) ([]domain.Business, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var out []domain.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertBusiness stores a connected business; used by the onboarding flow and tests.
func (r *Repo) UpsertBusiness(ctx context.Context, b domain.Business) error {
	_, err := r.db.ExecContext(ctx, upsertBusinessSQL,
		b.ID,
		b.OwnerID,
		b.Name,
		b.AccountName,
		valStr(b.AccessToken),
	)
	return err
}
