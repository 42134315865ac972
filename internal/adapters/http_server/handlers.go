// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"reviewdash/internal/adapters/auth"
	"reviewdash/internal/adapters/observability"
	"reviewdash/internal/app"
	"reviewdash/internal/domain"
)

type Handlers struct {
	Q           *app.QueryService
	S           *app.SyncService
	DefaultDays int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type businessView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AccountName string    `json:"accountName"`
	Connected   bool      `json:"connected"`
	CreatedAt   time.Time `json:"createdAt"`
}

type syncView struct {
	RunID    string                `json:"runId"`
	Inserted int                   `json:"inserted"`
	Updated  int                   `json:"updated"`
	Reviews  []domain.ReviewRecord `json:"reviews"`
	Errors   []string              `json:"errors"`
}

type replyRequest struct {
	Comment string `json:"comment"`
}

func (s *Server) MountHandlers(h *Handlers, v auth.Verifier) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(Authenticate(v))
		r.Get("/businesses", h.listBusinesses)
		r.Get("/businesses/{id}/reviews", h.listReviews)
		r.Get("/businesses/{id}/metrics", h.getMetrics)
		r.Post("/businesses/{id}/sync", h.syncBusiness)
		r.Post("/businesses/{id}/reviews/{reviewID}/reply", h.postReply)
		r.Post("/sync", h.syncAll)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeDomainError maps domain sentinels onto problem responses.
func writeDomainError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", what+" not found")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", what+" belongs to another account")
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusBadGateway, "Upstream Unauthorized", "review platform rejected the stored credentials")
	case errors.Is(err, domain.ErrInvalidReview):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	default:
		log.Error().Err(err).Str("err_type", observability.LabelErr(err)).Str("what", what).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "unexpected error")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any, withETag bool) {
	etag, body := calcETagAndBody(v)
	if withETag && etag != "" {
		// If client already has this version, short-circuit.
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
			w.Header().Set("ETag", etag) // include ETag on 304
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func userID(r *http.Request) string {
	if c, ok := auth.ClaimsFrom(r.Context()); ok {
		return c.UserID()
	}
	return ""
}

// business resolves {id} for the calling user, writing the problem response on failure.
func (h *Handlers) business(w http.ResponseWriter, r *http.Request) (domain.Business, bool) {
	b, err := h.Q.Business(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "business")
		return domain.Business{}, false
	}
	return b, true
}

func (h *Handlers) listBusinesses(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Q.Businesses(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err, "businesses")
		return
	}
	out := make([]businessView, 0, len(bs))
	for _, b := range bs {
		out = append(out, businessView{
			ID:          b.ID,
			Name:        b.Name,
			AccountName: b.AccountName,
			Connected:   b.AccessToken != "",
			CreatedAt:   b.CreatedAt,
		})
	}
	writeJSON(w, r, http.StatusOK, out, true)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	b, ok := h.business(w, r)
	if !ok {
		return
	}
	out, err := h.Q.ListReviews(r.Context(), b.ID)
	if err != nil {
		writeDomainError(w, err, "reviews")
		return
	}
	writeJSON(w, r, http.StatusOK, out, true)
}

func (h *Handlers) getMetrics(w http.ResponseWriter, r *http.Request) {
	days := h.DefaultDays
	if ds := r.URL.Query().Get("days"); ds != "" {
		d, err := strconv.Atoi(ds)
		if err != nil || d <= 0 || d > app.MaxWindowDays {
			writeProblem(w, http.StatusBadRequest, "Invalid days", "days must be an integer between 1 and 365")
			return
		}
		days = d
	}

	b, ok := h.business(w, r)
	if !ok {
		return
	}
	out, err := h.Q.Metrics(r.Context(), b.ID, days)
	if err != nil {
		writeDomainError(w, err, "metrics")
		return
	}
	writeJSON(w, r, http.StatusOK, out, true)
}

func (h *Handlers) syncBusiness(w http.ResponseWriter, r *http.Request) {
	b, ok := h.business(w, r)
	if !ok {
		return
	}
	h.runSync(w, r, []domain.Business{b})
}

func (h *Handlers) syncAll(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Q.Businesses(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err, "businesses")
		return
	}
	h.runSync(w, r, bs)
}

// runSync always answers 200: partial failures travel in the errors list.
func (h *Handlers) runSync(w http.ResponseWriter, r *http.Request, bs []domain.Business) {
	res := h.S.Sync(r.Context(), bs)
	msgs := res.Messages()
	observability.ObserveSync(res.Inserted, res.Updated, len(res.Rejected), len(res.Stored.Failed), len(msgs))

	writeJSON(w, r, http.StatusOK, syncView{
		RunID:    res.RunID,
		Inserted: res.Inserted,
		Updated:  res.Updated,
		Reviews:  res.Reviews,
		Errors:   msgs,
	}, false)
}

func (h *Handlers) postReply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected JSON {\"comment\": \"...\"}")
		return
	}

	b, ok := h.business(w, r)
	if !ok {
		return
	}
	rv, err := h.S.Reply(r.Context(), b, chi.URLParam(r, "reviewID"), req.Comment)
	if err != nil {
		writeDomainError(w, err, "review")
		return
	}
	writeJSON(w, r, http.StatusOK, rv, false)
}
