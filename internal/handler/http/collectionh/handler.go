// Package collectionh exposes collection management over HTTP: CRUD on
// collections plus saving and removing articles inside them.
package collectionh

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/handler/http/authh"
	"newsdigest/internal/handler/http/respond"
	"newsdigest/internal/repository"
	"newsdigest/internal/usecase/collection"
)

// Handler serves the /collections endpoints. All routes require an
// authenticated user.
type Handler struct {
	Svc *collection.Service
}

// NewHandler creates a collection Handler.
func NewHandler(svc *collection.Service) *Handler {
	return &Handler{Svc: svc}
}

type collectionRequest struct {
	Name string `json:"name"`
}

type addArticleRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	URLToImage  string     `json:"urlToImage"`
	PublishedAt *time.Time `json:"publishedAt"`
	Source      string     `json:"source"`
	Author      string     `json:"author"`
}

type savedArticleResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	URLToImage  string     `json:"urlToImage"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Source      string     `json:"source"`
	Author      string     `json:"author"`
	SavedAt     time.Time  `json:"savedAt"`
}

type collectionResponse struct {
	ID        int64                  `json:"id"`
	Name      string                 `json:"name"`
	CreatedAt time.Time              `json:"createdAt"`
	Articles  []savedArticleResponse `json:"articles"`
}

func toSavedArticleResponse(a entity.SavedArticle) savedArticleResponse {
	resp := savedArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		URLToImage:  a.ImageURL,
		Source:      a.SourceName,
		Author:      a.Author,
		SavedAt:     a.CreatedAt,
	}
	if !a.PublishedAt.IsZero() {
		publishedAt := a.PublishedAt
		resp.PublishedAt = &publishedAt
	}
	return resp
}

func toCollectionResponse(col *entity.Collection, articles []entity.SavedArticle) collectionResponse {
	items := make([]savedArticleResponse, 0, len(articles))
	for _, a := range articles {
		items = append(items, toSavedArticleResponse(a))
	}
	return collectionResponse{
		ID:        col.ID,
		Name:      col.Name,
		CreatedAt: col.CreatedAt,
		Articles:  items,
	}
}

// Create handles POST /collections.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := authh.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	col, err := h.Svc.Create(r.Context(), userID, req.Name)
	if err != nil {
		writeCollectionError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toCollectionResponse(col, nil))
}

// List handles GET /collections.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authh.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	cols, err := h.Svc.List(r.Context(), userID)
	if err != nil {
		writeCollectionError(w, err)
		return
	}

	items := make([]collectionResponse, 0, len(cols))
	for _, c := range cols {
		items = append(items, toCollectionResponse(c.Collection, c.Articles))
	}
	respond.JSON(w, http.StatusOK, items)
}

// Get handles GET /collections/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := authh.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	col, err := h.Svc.Get(r.Context(), id, userID)
	if err != nil {
		writeCollectionError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toCollectionResponse(col.Collection, col.Articles))
}

// Rename handles PATCH /collections/{id}.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := authh.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	if err := h.Svc.Rename(r.Context(), id, userID, req.Name); err != nil {
		writeCollectionError(w, err)
		return
	}

	col, err := h.Svc.Get(r.Context(), id, userID)
	if err != nil {
		writeCollectionError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toCollectionResponse(col.Collection, col.Articles))
}

// Delete handles DELETE /collections/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := authh.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Svc.Delete(r.Context(), id, userID); err != nil {
		writeCollectionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddArticle handles POST /collections/{id}/articles.
func (h *Handler) AddArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := authh.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	in := collection.ArticleInput{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		ImageURL:    req.URLToImage,
		SourceName:  req.Source,
		Author:      req.Author,
	}
	if req.PublishedAt != nil {
		in.PublishedAt = *req.PublishedAt
	}

	article, err := h.Svc.AddArticle(r.Context(), id, userID, in)
	if err != nil {
		writeCollectionError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSavedArticleResponse(*article))
}

// RemoveArticle handles DELETE /collections/{id}/articles/{articleID}.
func (h *Handler) RemoveArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := authh.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	articleID, ok := pathID(w, r, "articleID")
	if !ok {
		return
	}

	if err := h.Svc.RemoveArticle(r.Context(), id, articleID, userID); err != nil {
		writeCollectionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses a numeric chi URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return id, true
}

// writeCollectionError maps collection use case errors onto HTTP status
// codes. Not-owned collections surface as 404, never 403.
func writeCollectionError(w http.ResponseWriter, err error) {
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		respond.Error(w, http.StatusBadRequest, err)
	case errors.Is(err, collection.ErrCollectionNotFound),
		errors.Is(err, collection.ErrArticleNotFound):
		respond.Error(w, http.StatusNotFound, err)
	case errors.Is(err, collection.ErrDuplicateArticle):
		respond.Error(w, http.StatusConflict, err)
	case errors.Is(err, repository.ErrDuplicateArticleURL):
		respond.Error(w, http.StatusConflict, err)
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
