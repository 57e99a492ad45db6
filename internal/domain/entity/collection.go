package entity

import "time"

// Collection is a user-owned, named set of saved articles.
type Collection struct {
	ID        int64
	UserID    int64
	Name      string
	CreatedAt time.Time
}

// SavedArticle is an article persisted inside a collection. Unlike
// ArticleSummary it carries a database identity; the (URL, CollectionID)
// pair is unique so the same article cannot be saved twice into one
// collection.
type SavedArticle struct {
	ID           int64
	CollectionID int64
	Title        string
	Description  string
	URL          string
	ImageURL     string
	PublishedAt  time.Time
	SourceName   string
	Author       string
	CreatedAt    time.Time
}
