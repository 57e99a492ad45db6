package repository

import (
	"context"
	"errors"

	"newsdigest/internal/domain/entity"
)

// ErrDuplicateArticleURL indicates that the article URL is already
// saved in the target collection. Saving the same URL into a different
// collection is allowed; the uniqueness constraint is per collection.
var ErrDuplicateArticleURL = errors.New("article with this URL already exists in the collection")

// CollectionWithArticles pairs a collection with its saved articles,
// ordered by publication time descending.
type CollectionWithArticles struct {
	Collection *entity.Collection
	Articles   []entity.SavedArticle
}

type CollectionRepository interface {
	// Create stores a new collection and fills in its generated ID.
	Create(ctx context.Context, collection *entity.Collection) error
	// ListByOwner returns all collections of a user with their articles,
	// newest collection first.
	ListByOwner(ctx context.Context, userID int64) ([]CollectionWithArticles, error)
	// GetOwned retrieves a collection by ID scoped to its owner.
	// Returns (nil, nil) when the collection does not exist or belongs
	// to another user; callers cannot tell ownership mismatch from
	// absence.
	GetOwned(ctx context.Context, id, userID int64) (*CollectionWithArticles, error)
	Rename(ctx context.Context, id, userID int64, name string) (bool, error)
	// Delete removes a collection and its articles. Returns false when
	// nothing matched the (id, owner) pair.
	Delete(ctx context.Context, id, userID int64) (bool, error)

	// SaveArticle stores an article inside a collection and fills in its
	// generated ID. Returns ErrDuplicateArticleURL when the
	// (url, collection) pair already exists.
	SaveArticle(ctx context.Context, article *entity.SavedArticle) error
	// RemoveArticle deletes an article from a collection. Returns false
	// when no article matched.
	RemoveArticle(ctx context.Context, collectionID, articleID int64) (bool, error)
}
