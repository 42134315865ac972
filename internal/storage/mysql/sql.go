package mysql

// Payload is replaced wholesale; created_at is never touched after the first write.
// RowsAffected: 1 inserted, 2 updated, 0 existing row left unchanged.
const upsertCachedReviewSQL = `
INSERT INTO cached_reviews
  (business_id, google_review_id, review_data, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  review_data = VALUES(review_data),
  updated_at  = VALUES(updated_at)
`

const insertSyncFailureSQL = `
INSERT INTO sync_failures (business_id, review_id, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  reason  = VALUES(reason),
  seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// The IN list is expanded by the repo: one placeholder per business id.
const listCachedReviewsPrefix = `
SELECT business_id, google_review_id, review_data, created_at, updated_at
FROM cached_reviews
WHERE business_id IN `

const listCachedReviewsSuffix = `
ORDER BY business_id, google_review_id`

const getCachedReviewSQL = `
SELECT business_id, google_review_id, review_data, created_at, updated_at
FROM cached_reviews
WHERE business_id = ? AND google_review_id = ?
`

const selectBusinessCols = `
SELECT id, owner_id, name, account_name, access_token, created_at
FROM businesses`

const getBusinessSQL = selectBusinessCols + `
WHERE id = ?`

const listBusinessesSQL = selectBusinessCols + `
WHERE owner_id = ?
ORDER BY name, id`

const listAllBusinessesSQL = selectBusinessCols + `
WHERE access_token IS NOT NULL AND access_token <> ''
ORDER BY id`

const upsertBusinessSQL = `
INSERT INTO businesses
  (id, owner_id, name, account_name, access_token)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  owner_id     = VALUES(owner_id),
  name         = VALUES(name),
  account_name = VALUES(account_name),
  access_token = VALUES(access_token),
  updated_at   = CURRENT_TIMESTAMP
`
