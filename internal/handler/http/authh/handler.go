// Package authh exposes registration, login and profile management over
// HTTP, plus the JWT middleware protecting the authenticated routes.
package authh

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/handler/http/respond"
	"newsdigest/internal/service/auth"
)

// Handler serves the /auth endpoints.
type Handler struct {
	Svc *auth.Service
}

// NewHandler creates an auth Handler.
func NewHandler(svc *auth.Service) *Handler {
	return &Handler{Svc: svc}
}

type registerRequest struct {
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	FavoriteTopics []string `json:"favoriteTopics"`
	EmailFrequency string   `json:"emailFrequency"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	FavoriteTopics *[]string `json:"favoriteTopics"`
	EmailFrequency *string   `json:"emailFrequency"`
}

type userResponse struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	EmailFrequency   string     `json:"emailFrequency"`
	FavoriteTopics   []string   `json:"favoriteTopics"`
	LastDigestSentAt *time.Time `json:"lastDigestSentAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(user *entity.User) userResponse {
	topics := entity.TopicStrings(user.FavoriteTopics)
	if topics == nil {
		topics = []string{}
	}
	return userResponse{
		ID:               user.ID,
		Email:            user.Email,
		EmailFrequency:   user.EmailFrequency.String(),
		FavoriteTopics:   topics,
		LastDigestSentAt: user.LastDigestSentAt,
		CreatedAt:        user.CreatedAt,
	}
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	user, token, err := h.Svc.Register(r.Context(), auth.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		FavoriteTopics: req.FavoriteTopics,
		EmailFrequency: req.EmailFrequency,
	})
	if err != nil {
		writeAuthError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, sessionResponse{User: toUserResponse(user), Token: token})
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	user, token, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, sessionResponse{User: toUserResponse(user), Token: token})
}

// Profile handles GET /auth/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	user, err := h.Svc.Profile(r.Context(), userID)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PATCH /auth/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	in := auth.UpdateProfileInput{EmailFrequency: req.EmailFrequency}
	if req.FavoriteTopics != nil {
		in.FavoriteTopics = *req.FavoriteTopics
		if in.FavoriteTopics == nil {
			in.FavoriteTopics = []string{}
		}
	}

	user, err := h.Svc.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toUserResponse(user))
}

// writeAuthError maps auth service errors onto HTTP status codes.
func writeAuthError(w http.ResponseWriter, err error) {
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		respond.Error(w, http.StatusBadRequest, err)
	case errors.Is(err, auth.ErrEmailTaken):
		respond.Error(w, http.StatusConflict, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnauthorized, err)
	case errors.Is(err, auth.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, err)
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
