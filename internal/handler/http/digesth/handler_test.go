package digesth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsdigest/internal/common/pagination"
	"newsdigest/internal/domain/entity"
	"newsdigest/internal/handler/http/authh"
	"newsdigest/internal/handler/http/digesth"
	"newsdigest/internal/repository"
	"newsdigest/internal/usecase/digest"
	"newsdigest/internal/usecase/news"
)

const testCronSecret = "sweep-me"

// ---- in-memory stubs ----

type stubUsers struct {
	users  map[int64]*entity.User
	marked map[int64]time.Time
}

func newStubUsers(users ...*entity.User) *stubUsers {
	s := &stubUsers{
		users:  make(map[int64]*entity.User),
		marked: make(map[int64]time.Time),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUsers) Get(_ context.Context, id int64) (*entity.User, error) {
	return s.users[id], nil
}

func (s *stubUsers) GetByEmail(_ context.Context, _ string) (*entity.User, error) {
	return nil, nil
}
func (s *stubUsers) Create(_ context.Context, _ *entity.User) error { return nil }
func (s *stubUsers) UpdateProfile(_ context.Context, _ int64, _ repository.ProfileUpdate) error {
	return nil
}

func (s *stubUsers) ListByFrequency(_ context.Context, freq entity.EmailFrequency) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range s.users {
		if u.EmailFrequency == freq {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *stubUsers) MarkDigestSent(_ context.Context, id int64, sentAt time.Time) error {
	s.marked[id] = sentAt
	return nil
}

type stubFetcher struct {
	articles []entity.ArticleSummary
}

func (s *stubFetcher) FavoriteTopicsNewsFor(_ context.Context, _ []entity.Topic, _ pagination.Params) (news.Result, error) {
	return news.Result{
		Window:        news.Window{Articles: s.articles, TotalResults: len(s.articles)},
		FromFavorites: true,
	}, nil
}

type stubMailer struct {
	sent int
}

func (s *stubMailer) Send(_ context.Context, _ digest.Message) (digest.Delivery, error) {
	s.sent++
	return digest.Delivery{Accepted: []string{"reader@example.com"}, MessageID: "<test@local>"}, nil
}

func someArticles(n int) []entity.ArticleSummary {
	articles := make([]entity.ArticleSummary, 0, n)
	for i := 0; i < n; i++ {
		articles = append(articles, entity.NewArticleSummary(
			"Title", "description", "https://example.com/a", "",
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "Example News", "Jo Writer",
		))
	}
	return articles
}

func dailyUser(id int64) *entity.User {
	return &entity.User{
		ID:             id,
		Email:          "reader@example.com",
		EmailFrequency: entity.FrequencyDaily,
		FavoriteTopics: []entity.Topic{entity.TopicTechnology},
	}
}

func newHandler(users *stubUsers, articles []entity.ArticleSummary) (*digesth.Handler, *stubMailer) {
	mailer := &stubMailer{}
	svc := digest.NewService(users, &stubFetcher{articles: articles}, mailer)
	return digesth.NewHandler(svc, users, testCronSecret), mailer
}

// ---- /digest/run ----

func TestRun_RequiresSecret(t *testing.T) {
	handler, _ := newHandler(newStubUsers(), nil)

	tests := []struct {
		name   string
		target string
		header string
	}{
		{name: "no secret", target: "/digest/run"},
		{name: "wrong header secret", target: "/digest/run", header: "nope"},
		{name: "wrong query secret", target: "/digest/run?secret=nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("x-cron-secret", tt.header)
			}
			rr := httptest.NewRecorder()

			handler.Run(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status code = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRun_EmptyConfiguredSecretDisablesEndpoint(t *testing.T) {
	users := newStubUsers()
	svc := digest.NewService(users, &stubFetcher{}, &stubMailer{})
	handler := digesth.NewHandler(svc, users, "")

	req := httptest.NewRequest(http.MethodPost, "/digest/run", nil)
	req.Header.Set("x-cron-secret", "")
	rr := httptest.NewRecorder()

	handler.Run(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRun_DefaultsToDaily(t *testing.T) {
	users := newStubUsers(dailyUser(1))
	handler, mailer := newHandler(users, someArticles(3))

	req := httptest.NewRequest(http.MethodPost, "/digest/run", nil)
	req.Header.Set("x-cron-secret", testCronSecret)
	rr := httptest.NewRecorder()

	handler.Run(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp struct {
		Frequency  string `json:"frequency"`
		TotalUsers int    `json:"totalUsers"`
		SentCount  int    `json:"sentCount"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Frequency != "daily" {
		t.Errorf("frequency = %q, want %q", resp.Frequency, "daily")
	}
	if resp.TotalUsers != 1 || resp.SentCount != 1 {
		t.Errorf("totalUsers/sentCount = %d/%d, want 1/1", resp.TotalUsers, resp.SentCount)
	}
	if mailer.sent != 1 {
		t.Errorf("sent emails = %d, want 1", mailer.sent)
	}
}

func TestRun_AcceptsQuerySecretAndFrequency(t *testing.T) {
	users := newStubUsers()
	handler, _ := newHandler(users, nil)

	req := httptest.NewRequest(http.MethodPost, "/digest/run?secret="+testCronSecret+"&frequency=weekly", nil)
	rr := httptest.NewRecorder()

	handler.Run(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp struct {
		Frequency string `json:"frequency"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Frequency != "weekly" {
		t.Errorf("frequency = %q, want %q", resp.Frequency, "weekly")
	}
}

func TestRun_FrequencyFromBody(t *testing.T) {
	handler, _ := newHandler(newStubUsers(), nil)

	req := httptest.NewRequest(http.MethodPost, "/digest/run", strings.NewReader(`{"frequency": "weekly"}`))
	req.Header.Set("x-cron-secret", testCronSecret)
	rr := httptest.NewRecorder()

	handler.Run(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRun_RejectsNonRunnableFrequency(t *testing.T) {
	handler, _ := newHandler(newStubUsers(), nil)

	for _, freq := range []string{"never", "hourly"} {
		req := httptest.NewRequest(http.MethodPost, "/digest/run?frequency="+freq, nil)
		req.Header.Set("x-cron-secret", testCronSecret)
		rr := httptest.NewRecorder()

		handler.Run(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("frequency %q: status code = %d, want %d", freq, rr.Code, http.StatusBadRequest)
		}
	}
}

// ---- /digest/self ----

func TestSelf_Success(t *testing.T) {
	user := dailyUser(1)
	users := newStubUsers(user)
	handler, mailer := newHandler(users, someArticles(3))

	req := httptest.NewRequest(http.MethodPost, "/digest/self", nil)
	req = req.WithContext(authh.WithUserID(req.Context(), user.ID))
	rr := httptest.NewRecorder()

	handler.Self(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp struct {
		ArticleCount int      `json:"articleCount"`
		Accepted     []string `json:"accepted"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ArticleCount != 3 {
		t.Errorf("articleCount = %d, want 3", resp.ArticleCount)
	}
	if mailer.sent != 1 {
		t.Errorf("sent emails = %d, want 1", mailer.sent)
	}

	// On-demand sends never suppress the next scheduled digest.
	if len(users.marked) != 0 {
		t.Error("lastDigestSentAt was updated by an on-demand send")
	}
}

func TestSelf_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		user     *entity.User
		articles []entity.ArticleSummary
		want     int
	}{
		{
			name: "frequency never",
			user: &entity.User{ID: 1, Email: "r@example.com", EmailFrequency: entity.FrequencyNever,
				FavoriteTopics: []entity.Topic{entity.TopicScience}},
			want: http.StatusBadRequest,
		},
		{
			name: "no favorite topics",
			user: &entity.User{ID: 1, Email: "r@example.com", EmailFrequency: entity.FrequencyDaily},
			want: http.StatusBadRequest,
		},
		{
			name:     "no articles",
			user:     dailyUser(1),
			articles: nil,
			want:     http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newStubUsers(tt.user)
			handler, _ := newHandler(users, tt.articles)

			req := httptest.NewRequest(http.MethodPost, "/digest/self", nil)
			req = req.WithContext(authh.WithUserID(req.Context(), tt.user.ID))
			rr := httptest.NewRecorder()

			handler.Self(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("status code = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestSelf_NoAuthContextIs401(t *testing.T) {
	handler, _ := newHandler(newStubUsers(), nil)

	req := httptest.NewRequest(http.MethodPost, "/digest/self", nil)
	rr := httptest.NewRecorder()

	handler.Self(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
