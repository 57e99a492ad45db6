package news

import (
	"context"

	"newsdigest/internal/common/pagination"
	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/metrics"
)

// maxUpstreamPageSize is the largest page size the upstream provider accepts.
const maxUpstreamPageSize = 100

// Page is one raw upstream result page: the articles it contained and
// the provider-reported total across all pages. The total is
// best-effort and may be stale or approximate.
type Page struct {
	Articles     []entity.ArticleSummary
	TotalResults int
}

// PageFetcher retrieves a single upstream page. It is injected into
// AssembleWindow so the same windowing algorithm serves top headlines,
// keyword search and favorites-filtered search.
type PageFetcher func(ctx context.Context, page, pageSize int) (Page, error)

// Window is a deterministic slice of the logical concatenation of all
// upstream pages, at most Size articles long. Page and Size echo the
// coerced request parameters.
type Window struct {
	Articles     []entity.ArticleSummary
	TotalResults int
	Page         int
	Size         int
}

// internalPageSize picks the upstream page size used to fill a logical
// window: three times the logical size, capped at the provider maximum.
// Over-fetching reduces the number of upstream round-trips.
func internalPageSize(size int) int {
	s := size * 3
	if s > maxUpstreamPageSize {
		return maxUpstreamPageSize
	}
	return s
}

// AssembleWindow converts a logical (page, size) request into an exact
// slice [start, start+size) of the continuous upstream article stream.
//
// Upstream pages are fetched sequentially starting at page 1; a running
// global index counts every article seen across pages, and only those
// falling inside the window are collected. Iteration stops when the
// window is full, when the provider returns an empty page (exhaustion),
// or when the global index passes the provider-reported total. A stream
// that runs out before the window is filled yields a short result, not
// an error.
//
// Fetcher failures propagate unmodified; translating upstream errors is
// the caller's job.
func AssembleWindow(ctx context.Context, params pagination.Params, fetch PageFetcher) (Window, error) {
	params = params.Coerce()

	start := params.StartIndex()
	end := params.EndIndex()
	apiSize := internalPageSize(params.Size)

	collected := make([]entity.ArticleSummary, 0, params.Size)
	globalIndex := 0
	totalResults := 0
	rounds := 0

	for apiPage := 1; globalIndex < end; apiPage++ {
		page, err := fetch(ctx, apiPage, apiSize)
		if err != nil {
			return Window{}, err
		}
		rounds++

		// Last reported total wins across rounds; zero means the
		// provider did not report one.
		if page.TotalResults != 0 {
			totalResults = page.TotalResults
		}

		if len(page.Articles) == 0 {
			break
		}

		for _, article := range page.Articles {
			if globalIndex >= start && len(collected) < params.Size {
				collected = append(collected, article)
			}
			globalIndex++

			if len(collected) >= params.Size || globalIndex >= end {
				break
			}
		}

		if len(collected) >= params.Size || (totalResults > 0 && globalIndex >= totalResults) {
			break
		}
	}

	metrics.RecordWindowRounds(rounds)

	return Window{
		Articles:     collected,
		TotalResults: totalResults,
		Page:         params.Page,
		Size:         params.Size,
	}, nil
}
