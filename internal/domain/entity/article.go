// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as ArticleSummary, User and Collection,
// along with their validation rules and domain-specific errors.
package entity

import "time"

// UnknownField is the sentinel used when the upstream provider omits
// the source name or author of an article.
const UnknownField = "unknown"

// ArticleSummary represents one normalized article from the upstream
// news provider. It is a value type: produced once when the raw
// provider record is normalized and never mutated afterwards. The URL
// identifies the article within a provider result set, not globally.
type ArticleSummary struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	SourceName  string
	Author      string
}

// NewArticleSummary builds an ArticleSummary from raw provider fields,
// applying the "unknown" sentinel for a missing source name or author.
func NewArticleSummary(title, description, url, imageURL string, publishedAt time.Time, sourceName, author string) ArticleSummary {
	if sourceName == "" {
		sourceName = UnknownField
	}
	if author == "" {
		author = UnknownField
	}
	return ArticleSummary{
		Title:       title,
		Description: description,
		URL:         url,
		ImageURL:    imageURL,
		PublishedAt: publishedAt,
		SourceName:  sourceName,
		Author:      author,
	}
}
