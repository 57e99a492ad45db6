package news

import (
	"context"
	"fmt"
	"strings"

	"newsdigest/internal/common/pagination"
	"newsdigest/internal/domain/entity"
)

// Sort and scope values passed through to the upstream search endpoint.
const (
	sortByPublishedAt = "publishedAt"
	searchInTitleDesc = "title,description"
)

// EverythingQuery describes one keyword search against the upstream
// provider's full-archive endpoint.
type EverythingQuery struct {
	Query    string
	SearchIn string // field scope, e.g. "title,description"; empty means provider default
	SortBy   string
}

// Provider issues paginated queries against the upstream news provider.
// Implementations own the credential, language/country defaults and
// transport policy (timeouts, rate limiting, circuit breaking).
type Provider interface {
	// TopHeadlines fetches one page of the unfiltered headline stream.
	TopHeadlines(ctx context.Context, page, pageSize int) (Page, error)
	// Everything fetches one page of a keyword search.
	Everything(ctx context.Context, q EverythingQuery, page, pageSize int) (Page, error)
}

// Result is a window plus the favorites tagging exposed to callers.
// FavoriteTopics echoes the original, unnormalized topic list when the
// window came from a favorites query.
type Result struct {
	Window
	FromFavorites  bool
	FavoriteTopics []string
}

// Service provides windowed news retrieval use cases on top of an
// injected Provider.
type Service struct {
	Provider Provider

	// BroadQuery is the keyword used for the unscoped "all news" stream.
	// The headline endpoint returns a thin stream, so browsing "all"
	// goes through the search endpoint with a deliberately broad term.
	BroadQuery string
}

// NewService creates a news Service with the default broad query.
func NewService(provider Provider) *Service {
	return &Service{Provider: provider, BroadQuery: "news"}
}

// TopHeadlines returns one logical window of the unfiltered headline stream.
func (s *Service) TopHeadlines(ctx context.Context, params pagination.Params) (Result, error) {
	window, err := AssembleWindow(ctx, params, func(ctx context.Context, page, pageSize int) (Page, error) {
		return s.Provider.TopHeadlines(ctx, page, pageSize)
	})
	if err != nil {
		return Result{}, translateUpstream(err)
	}
	return Result{Window: window, FromFavorites: false}, nil
}

// Everything returns one logical window of the broad keyword stream.
func (s *Service) Everything(ctx context.Context, params pagination.Params) (Result, error) {
	q := EverythingQuery{Query: s.BroadQuery, SortBy: sortByPublishedAt}
	window, err := AssembleWindow(ctx, params, func(ctx context.Context, page, pageSize int) (Page, error) {
		return s.Provider.Everything(ctx, q, page, pageSize)
	})
	if err != nil {
		return Result{}, translateUpstream(err)
	}
	return Result{Window: window, FromFavorites: false}, nil
}

// SearchByTopic runs a single upstream keyword search. Unlike the
// windowed streams this is a raw passthrough of the provider page: the
// caller's page and pageSize go straight upstream.
// Returns ErrEmptyTopic before any I/O when the topic is blank.
func (s *Service) SearchByTopic(ctx context.Context, topic string, params pagination.Params) (Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Result{}, ErrEmptyTopic
	}

	params = params.Coerce()
	q := EverythingQuery{Query: topic, SortBy: sortByPublishedAt}
	page, err := s.Provider.Everything(ctx, q, params.Page, params.Size)
	if err != nil {
		return Result{}, translateUpstream(err)
	}

	return Result{
		Window: Window{
			Articles:     page.Articles,
			TotalResults: page.TotalResults,
			Page:         params.Page,
			Size:         params.Size,
		},
	}, nil
}

// FavoriteTopicsNews returns one logical window of articles matching
// the user's favorite topics.
//
// Topics are trimmed and blank entries dropped. With no usable topics
// the call delegates to TopHeadlines and tags the result
// FromFavorites=false. Otherwise all topics are combined into a single
// disjunctive exact-phrase query ("business" OR "science"), scoped to
// title and description and sorted by recency, so the upstream call
// count stays bounded to what one window needs regardless of how many
// topics the user follows.
func (s *Service) FavoriteTopicsNews(ctx context.Context, topics []string, params pagination.Params) (Result, error) {
	safe := make([]string, 0, len(topics))
	for _, t := range topics {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			safe = append(safe, trimmed)
		}
	}

	if len(safe) == 0 {
		return s.TopHeadlines(ctx, params)
	}

	q := EverythingQuery{
		Query:    buildTopicQuery(safe),
		SearchIn: searchInTitleDesc,
		SortBy:   sortByPublishedAt,
	}

	window, err := AssembleWindow(ctx, params, func(ctx context.Context, page, pageSize int) (Page, error) {
		return s.Provider.Everything(ctx, q, page, pageSize)
	})
	if err != nil {
		return Result{}, translateUpstream(err)
	}

	return Result{
		Window:         window,
		FromFavorites:  true,
		FavoriteTopics: topics,
	}, nil
}

// FavoriteTopicsNewsFor is a convenience wrapper taking the domain
// topic type used on user profiles.
func (s *Service) FavoriteTopicsNewsFor(ctx context.Context, topics []entity.Topic, params pagination.Params) (Result, error) {
	return s.FavoriteTopicsNews(ctx, entity.TopicStrings(topics), params)
}

// buildTopicQuery joins topics as exact-phrase alternatives:
// "topic1" OR "topic2" OR "topic3".
func buildTopicQuery(topics []string) string {
	quoted := make([]string, 0, len(topics))
	for _, t := range topics {
		quoted = append(quoted, fmt.Sprintf("%q", t))
	}
	return strings.Join(quoted, " OR ")
}
