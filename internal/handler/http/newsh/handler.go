// Package newsh exposes the windowed news browsing endpoints: the broad
// stream, top headlines, topic search and the favorites stream.
package newsh

import (
	"errors"
	"net/http"
	"time"

	"newsdigest/internal/common/pagination"
	"newsdigest/internal/domain/entity"
	"newsdigest/internal/handler/http/authh"
	"newsdigest/internal/handler/http/respond"
	"newsdigest/internal/repository"
	"newsdigest/internal/usecase/news"
)

// Handler serves the /news endpoints.
type Handler struct {
	Svc   *news.Service
	Users repository.UserRepository
}

// NewHandler creates a news Handler.
func NewHandler(svc *news.Service, users repository.UserRepository) *Handler {
	return &Handler{Svc: svc, Users: users}
}

type articleResponse struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	URLToImage  string     `json:"urlToImage"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Source      string     `json:"source"`
	Author      string     `json:"author"`
}

type windowResponse struct {
	Articles       []articleResponse `json:"articles"`
	TotalResults   int               `json:"totalResults"`
	Page           int               `json:"page"`
	PageSize       int               `json:"pageSize"`
	FromFavorites  bool              `json:"fromFavorites"`
	FavoriteTopics []string          `json:"favoriteTopics,omitempty"`
}

func toWindowResponse(result news.Result) windowResponse {
	articles := make([]articleResponse, 0, len(result.Articles))
	for _, a := range result.Articles {
		item := articleResponse{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			URLToImage:  a.ImageURL,
			Source:      a.SourceName,
			Author:      a.Author,
		}
		if !a.PublishedAt.IsZero() {
			publishedAt := a.PublishedAt
			item.PublishedAt = &publishedAt
		}
		articles = append(articles, item)
	}
	return windowResponse{
		Articles:       articles,
		TotalResults:   result.TotalResults,
		Page:           result.Page,
		PageSize:       result.Size,
		FromFavorites:  result.FromFavorites,
		FavoriteTopics: result.FavoriteTopics,
	}
}

// All handles GET /news: one window of the broad keyword stream.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	result, err := h.Svc.Everything(r.Context(), pagination.ParseQueryParams(r))
	if err != nil {
		writeNewsError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toWindowResponse(result))
}

// Headlines handles GET /news/headlines: one window of the unfiltered
// headline stream.
func (h *Handler) Headlines(w http.ResponseWriter, r *http.Request) {
	result, err := h.Svc.TopHeadlines(r.Context(), pagination.ParseQueryParams(r))
	if err != nil {
		writeNewsError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toWindowResponse(result))
}

// Search handles GET /news/search?topic=...: a single upstream keyword
// search without window assembly.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.Svc.SearchByTopic(r.Context(), r.URL.Query().Get("topic"), pagination.ParseQueryParams(r))
	if err != nil {
		writeNewsError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toWindowResponse(result))
}

// Favorites handles GET /news/favorites: one window filtered to the
// authenticated user's favorite topics.
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.Svc.FavoriteTopicsNewsFor(r.Context(), user.FavoriteTopics, pagination.ParseQueryParams(r))
	if err != nil {
		writeNewsError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toWindowResponse(result))
}

// writeNewsError maps news use case errors onto HTTP status codes.
// Upstream failures surface as 502: the server is fine, the provider
// is not.
func writeNewsError(w http.ResponseWriter, err error) {
	var ve *entity.ValidationError
	switch {
	case errors.Is(err, news.ErrEmptyTopic), errors.As(err, &ve):
		respond.Error(w, http.StatusBadRequest, err)
	case errors.Is(err, news.ErrUpstreamAuth):
		respond.Error(w, http.StatusBadGateway, err)
	case errors.Is(err, news.ErrUpstreamFailed):
		respond.Error(w, http.StatusBadGateway, err)
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
