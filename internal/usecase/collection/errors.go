// Package collection provides use cases for user-owned article
// collections: creating, renaming and deleting collections, and saving
// or removing articles inside them. Ownership is enforced on every
// operation; a collection belonging to another user behaves exactly
// like a missing one.
package collection

import "errors"

// Sentinel errors for collection use case operations.
var (
	// ErrCollectionNotFound indicates that the collection does not exist
	// or does not belong to the requesting user. The two cases are
	// deliberately indistinguishable.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrArticleNotFound indicates that the article does not exist inside
	// the given collection.
	ErrArticleNotFound = errors.New("article not found in this collection")

	// ErrDuplicateArticle indicates that an article with the same URL is
	// already saved in the target collection. The same URL may still be
	// saved into other collections.
	ErrDuplicateArticle = errors.New("article already exists in this collection")
)
