// Package digesth exposes the digest trigger endpoints: the cron-driven
// cadence sweep and the self-serve on-demand digest.
package digesth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/handler/http/authh"
	"newsdigest/internal/handler/http/respond"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/repository"
	"newsdigest/internal/usecase/digest"
)

// Handler serves the /digest endpoints.
type Handler struct {
	Digest *digest.Service
	Users  repository.UserRepository

	// CronSecret guards the sweep trigger. When empty the endpoint is
	// disabled entirely rather than left open.
	CronSecret string
}

// NewHandler creates a digest Handler.
func NewHandler(svc *digest.Service, users repository.UserRepository, cronSecret string) *Handler {
	return &Handler{Digest: svc, Users: users, CronSecret: cronSecret}
}

type runRequest struct {
	Frequency string `json:"frequency"`
}

type userErrorResponse struct {
	UserID  int64  `json:"userId"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type runResponse struct {
	Frequency  string              `json:"frequency"`
	TotalUsers int                 `json:"totalUsers"`
	SentCount  int                 `json:"sentCount"`
	Errors     []userErrorResponse `json:"errors"`
}

type selfResponse struct {
	ArticleCount int      `json:"articleCount"`
	Accepted     []string `json:"accepted"`
	MessageID    string   `json:"messageId,omitempty"`
}

// Run handles POST /digest/run, the scheduler-facing sweep trigger.
// The secret is taken from the x-cron-secret header or, for schedulers
// that cannot set headers, the secret query parameter. The cadence
// defaults to daily and can be overridden by the frequency query
// parameter or a JSON body.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	raw := r.URL.Query().Get("frequency")
	if raw == "" {
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			raw = req.Frequency
		}
	}
	if raw == "" {
		raw = entity.FrequencyDaily.String()
	}

	freq, err := entity.ParseEmailFrequency(raw)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	logger := logging.WithRequestID(r.Context(), slog.Default())
	logger.Info("digest sweep triggered", slog.String("frequency", freq.String()))

	run, err := h.Digest.RunForFrequency(r.Context(), freq)
	if err != nil {
		if errors.Is(err, digest.ErrInvalidFrequency) {
			respond.Error(w, http.StatusBadRequest, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	userErrors := make([]userErrorResponse, 0, len(run.Errors))
	for _, ue := range run.Errors {
		userErrors = append(userErrors, userErrorResponse{
			UserID:  ue.UserID,
			Email:   ue.Email,
			Message: ue.Message,
		})
	}
	respond.JSON(w, http.StatusOK, runResponse{
		Frequency:  run.Frequency.String(),
		TotalUsers: run.TotalUsers,
		SentCount:  run.SentCount,
		Errors:     userErrors,
	})
}

// Self handles POST /digest/self: an on-demand digest for the
// authenticated user, independent of the cadence schedule.
func (h *Handler) Self(w http.ResponseWriter, r *http.Request) {
	userID, ok := authh.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	user, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if user == nil {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	delivery, count, err := h.Digest.SendForUser(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, digest.ErrFrequencyNever), errors.Is(err, digest.ErrNoFavoriteTopics):
			respond.Error(w, http.StatusBadRequest, err)
		case errors.Is(err, digest.ErrNoArticles):
			respond.Error(w, http.StatusNotFound, err)
		default:
			respond.SafeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, selfResponse{
		ArticleCount: count,
		Accepted:     delivery.Accepted,
		MessageID:    delivery.MessageID,
	})
}

// authorized checks the cron secret in constant time. An unset secret
// rejects every request.
func (h *Handler) authorized(r *http.Request) bool {
	if h.CronSecret == "" {
		return false
	}
	got := r.Header.Get("x-cron-secret")
	if got == "" {
		got = r.URL.Query().Get("secret")
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.CronSecret)) == 1
}
