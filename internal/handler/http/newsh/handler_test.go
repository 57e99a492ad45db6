package newsh_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/handler/http/authh"
	"newsdigest/internal/handler/http/newsh"
	"newsdigest/internal/repository"
	"newsdigest/internal/usecase/news"
)

// ---- in-memory stubs ----

type stubProvider struct {
	articles []entity.ArticleSummary
	err      error

	lastQuery news.EverythingQuery
}

func (s *stubProvider) TopHeadlines(_ context.Context, page, pageSize int) (news.Page, error) {
	return s.page(page, pageSize)
}

func (s *stubProvider) Everything(_ context.Context, q news.EverythingQuery, page, pageSize int) (news.Page, error) {
	s.lastQuery = q
	return s.page(page, pageSize)
}

func (s *stubProvider) page(page, pageSize int) (news.Page, error) {
	if s.err != nil {
		return news.Page{}, s.err
	}
	start := (page - 1) * pageSize
	if start >= len(s.articles) {
		return news.Page{TotalResults: len(s.articles)}, nil
	}
	end := start + pageSize
	if end > len(s.articles) {
		end = len(s.articles)
	}
	return news.Page{Articles: s.articles[start:end], TotalResults: len(s.articles)}, nil
}

type stubUsers struct {
	user *entity.User
}

func (s *stubUsers) Get(_ context.Context, id int64) (*entity.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, _ string) (*entity.User, error) {
	return nil, nil
}
func (s *stubUsers) Create(_ context.Context, _ *entity.User) error { return nil }
func (s *stubUsers) UpdateProfile(_ context.Context, _ int64, _ repository.ProfileUpdate) error {
	return nil
}
func (s *stubUsers) ListByFrequency(_ context.Context, _ entity.EmailFrequency) ([]*entity.User, error) {
	return nil, nil
}
func (s *stubUsers) MarkDigestSent(_ context.Context, _ int64, _ time.Time) error { return nil }

func someArticles(n int) []entity.ArticleSummary {
	articles := make([]entity.ArticleSummary, 0, n)
	for i := 0; i < n; i++ {
		articles = append(articles, entity.NewArticleSummary(
			fmt.Sprintf("Article %d", i),
			"description",
			fmt.Sprintf("https://example.com/%d", i),
			"",
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			"Example News",
			"",
		))
	}
	return articles
}

type windowDTO struct {
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source string `json:"source"`
		Author string `json:"author"`
	} `json:"articles"`
	TotalResults   int      `json:"totalResults"`
	Page           int      `json:"page"`
	PageSize       int      `json:"pageSize"`
	FromFavorites  bool     `json:"fromFavorites"`
	FavoriteTopics []string `json:"favoriteTopics"`
}

func decodeWindow(t *testing.T, rr *httptest.ResponseRecorder) windowDTO {
	t.Helper()
	var dto windowDTO
	if err := json.NewDecoder(rr.Body).Decode(&dto); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return dto
}

// ---- /news ----

func TestAll_ReturnsRequestedWindow(t *testing.T) {
	provider := &stubProvider{articles: someArticles(30)}
	handler := newsh.NewHandler(news.NewService(provider), &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/news?page=2&pageSize=5", nil)
	rr := httptest.NewRecorder()

	handler.All(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	dto := decodeWindow(t, rr)
	if len(dto.Articles) != 5 {
		t.Fatalf("articles length = %d, want 5", len(dto.Articles))
	}
	if dto.Articles[0].Title != "Article 5" {
		t.Errorf("first title = %q, want %q", dto.Articles[0].Title, "Article 5")
	}
	if dto.TotalResults != 30 {
		t.Errorf("totalResults = %d, want 30", dto.TotalResults)
	}
	if dto.Page != 2 || dto.PageSize != 5 {
		t.Errorf("page/pageSize = %d/%d, want 2/5", dto.Page, dto.PageSize)
	}
	if dto.FromFavorites {
		t.Error("fromFavorites = true, want false")
	}
}

func TestAll_MalformedPaginationFallsBackToDefaults(t *testing.T) {
	provider := &stubProvider{articles: someArticles(30)}
	handler := newsh.NewHandler(news.NewService(provider), &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/news?page=abc&pageSize=-1", nil)
	rr := httptest.NewRecorder()

	handler.All(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	dto := decodeWindow(t, rr)
	if dto.Page != 1 || dto.PageSize != 9 {
		t.Errorf("page/pageSize = %d/%d, want defaults 1/9", dto.Page, dto.PageSize)
	}
}

func TestAll_UpstreamAuthFailureIs502(t *testing.T) {
	provider := &stubProvider{err: &news.UpstreamError{StatusCode: 401, Message: "apiKeyInvalid"}}
	handler := newsh.NewHandler(news.NewService(provider), &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/news", nil)
	rr := httptest.NewRecorder()

	handler.All(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadGateway)
	}
}

// ---- /news/search ----

func TestSearch_MissingTopicIs400(t *testing.T) {
	handler := newsh.NewHandler(news.NewService(&stubProvider{}), &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/news/search?topic=+++", nil)
	rr := httptest.NewRecorder()

	handler.Search(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSearch_PassesTopicUpstream(t *testing.T) {
	provider := &stubProvider{articles: someArticles(3)}
	handler := newsh.NewHandler(news.NewService(provider), &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/news/search?topic=quantum", nil)
	rr := httptest.NewRecorder()

	handler.Search(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if provider.lastQuery.Query != "quantum" {
		t.Errorf("upstream query = %q, want %q", provider.lastQuery.Query, "quantum")
	}
}

// ---- /news/favorites ----

func TestFavorites_TagsResultAndBuildsQuery(t *testing.T) {
	provider := &stubProvider{articles: someArticles(10)}
	users := &stubUsers{user: &entity.User{
		ID:             7,
		Email:          "reader@example.com",
		FavoriteTopics: []entity.Topic{entity.TopicScience, entity.TopicHealth},
	}}
	handler := newsh.NewHandler(news.NewService(provider), users)

	req := httptest.NewRequest(http.MethodGet, "/news/favorites", nil)
	req = req.WithContext(authh.WithUserID(req.Context(), 7))
	rr := httptest.NewRecorder()

	handler.Favorites(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	dto := decodeWindow(t, rr)
	if !dto.FromFavorites {
		t.Error("fromFavorites = false, want true")
	}
	if len(dto.FavoriteTopics) != 2 {
		t.Errorf("favoriteTopics length = %d, want 2", len(dto.FavoriteTopics))
	}
	want := `"science" OR "health"`
	if provider.lastQuery.Query != want {
		t.Errorf("upstream query = %q, want %q", provider.lastQuery.Query, want)
	}
}

func TestFavorites_NoTopicsFallsBackToHeadlines(t *testing.T) {
	provider := &stubProvider{articles: someArticles(10)}
	users := &stubUsers{user: &entity.User{ID: 7, Email: "reader@example.com"}}
	handler := newsh.NewHandler(news.NewService(provider), users)

	req := httptest.NewRequest(http.MethodGet, "/news/favorites", nil)
	req = req.WithContext(authh.WithUserID(req.Context(), 7))
	rr := httptest.NewRecorder()

	handler.Favorites(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if dto := decodeWindow(t, rr); dto.FromFavorites {
		t.Error("fromFavorites = true, want false")
	}
}

func TestFavorites_NoAuthContextIs401(t *testing.T) {
	handler := newsh.NewHandler(news.NewService(&stubProvider{}), &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/news/favorites", nil)
	rr := httptest.NewRecorder()

	handler.Favorites(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
