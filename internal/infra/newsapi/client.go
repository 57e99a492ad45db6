package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/resilience/breaker"
	"newsdigest/internal/usecase/news"
)

const (
	endpointEverything   = "/v2/everything"
	endpointTopHeadlines = "/v2/top-headlines"
)

// Client is the NewsAPI adapter. It implements news.Provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *breaker.CircuitBreaker
}

// NewClient creates a provider client. The API key is mandatory.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultConfig().RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultConfig().Burst
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker:    breaker.New(breaker.NewsAPIConfig()),
	}, nil
}

// TopHeadlines fetches one page of the country headline stream.
func (c *Client) TopHeadlines(ctx context.Context, page, pageSize int) (news.Page, error) {
	params := url.Values{}
	params.Set("country", c.cfg.Country)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	return c.get(ctx, endpointTopHeadlines, params)
}

// Everything fetches one page of a keyword search.
func (c *Client) Everything(ctx context.Context, q news.EverythingQuery, page, pageSize int) (news.Page, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("language", c.cfg.Language)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	if q.SearchIn != "" {
		params.Set("searchIn", q.SearchIn)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	return c.get(ctx, endpointEverything, params)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (news.Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return news.Page{}, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, endpoint, params)
	})
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordNewsRequest(endpoint, outcome, time.Since(start))

	if err != nil {
		return news.Page{}, err
	}
	return result.(news.Page), nil
}

// apiResponse is the provider's wire format for both endpoints. The
// code and message fields are only populated on error responses.
type apiResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
}

type apiArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (news.Page, error) {
	reqURL := c.cfg.BaseURL + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return news.Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return news.Page{}, fmt.Errorf("news provider request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return news.Page{}, fmt.Errorf("read response: %w", err)
	}

	var decoded apiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		if resp.StatusCode != http.StatusOK {
			return news.Page{}, &news.UpstreamError{StatusCode: resp.StatusCode}
		}
		return news.Page{}, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || decoded.Status == "error" {
		return news.Page{}, &news.UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    decoded.Message,
		}
	}

	articles := make([]entity.ArticleSummary, 0, len(decoded.Articles))
	for _, a := range decoded.Articles {
		publishedAt, _ := time.Parse(time.RFC3339, a.PublishedAt)
		articles = append(articles, entity.NewArticleSummary(
			a.Title, a.Description, a.URL, a.URLToImage,
			publishedAt, a.Source.Name, a.Author,
		))
	}

	return news.Page{Articles: articles, TotalResults: decoded.TotalResults}, nil
}
