package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
)

// maxNameLength caps collection names.
const maxNameLength = 120

// ArticleInput represents the article payload saved into a collection.
// Only Title and URL are required; the rest is carried as-is from the
// upstream article the user is saving.
type ArticleInput struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	SourceName  string
	Author      string
}

// Service provides collection management use cases.
// It handles validation and ownership checks and delegates persistence
// to the repository.
type Service struct {
	Repo repository.CollectionRepository
}

// NewService creates a collection Service.
func NewService(repo repository.CollectionRepository) *Service {
	return &Service{Repo: repo}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &entity.ValidationError{Field: "name", Message: "is required"}
	}
	if len(name) > maxNameLength {
		return "", &entity.ValidationError{Field: "name", Message: "is too long"}
	}
	return name, nil
}

// Create stores a new, empty collection for the user.
// Returns a ValidationError when the name is blank or too long.
func (s *Service) Create(ctx context.Context, userID int64, name string) (*entity.Collection, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	col := &entity.Collection{UserID: userID, Name: name}
	if err := s.Repo.Create(ctx, col); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return col, nil
}

// List returns all collections of the user with their saved articles,
// newest collection first.
func (s *Service) List(ctx context.Context, userID int64) ([]repository.CollectionWithArticles, error) {
	cols, err := s.Repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return cols, nil
}

// Get retrieves one collection of the user with its articles.
// Returns ErrCollectionNotFound when it does not exist or belongs to
// someone else.
func (s *Service) Get(ctx context.Context, id, userID int64) (*repository.CollectionWithArticles, error) {
	col, err := s.Repo.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	if col == nil {
		return nil, ErrCollectionNotFound
	}
	return col, nil
}

// Rename changes the collection's name.
// Returns a ValidationError for a bad name and ErrCollectionNotFound
// when nothing matched the (id, owner) pair.
func (s *Service) Rename(ctx context.Context, id, userID int64, name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}

	renamed, err := s.Repo.Rename(ctx, id, userID, name)
	if err != nil {
		return fmt.Errorf("rename collection: %w", err)
	}
	if !renamed {
		return ErrCollectionNotFound
	}
	return nil
}

// Delete removes the collection and all articles saved in it.
// Returns ErrCollectionNotFound when nothing matched the (id, owner) pair.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	deleted, err := s.Repo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	if !deleted {
		return ErrCollectionNotFound
	}
	return nil
}

// AddArticle saves an article into the user's collection.
// The ownership check runs before the insert, so saving into another
// user's collection reports ErrCollectionNotFound. A URL already saved
// in this collection reports ErrDuplicateArticle; the same URL in a
// different collection is fine.
func (s *Service) AddArticle(ctx context.Context, collectionID, userID int64, in ArticleInput) (*entity.SavedArticle, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &entity.ValidationError{Field: "title", Message: "is required"}
	}
	if in.URL == "" {
		return nil, &entity.ValidationError{Field: "url", Message: "is required"}
	}
	if err := entity.ValidateURL(in.URL); err != nil {
		return nil, fmt.Errorf("validate article URL: %w", err)
	}

	col, err := s.Repo.GetOwned(ctx, collectionID, userID)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	if col == nil {
		return nil, ErrCollectionNotFound
	}

	article := &entity.SavedArticle{
		CollectionID: collectionID,
		Title:        title,
		Description:  in.Description,
		URL:          in.URL,
		ImageURL:     in.ImageURL,
		PublishedAt:  in.PublishedAt,
		SourceName:   in.SourceName,
		Author:       in.Author,
	}

	if err := s.Repo.SaveArticle(ctx, article); err != nil {
		if errors.Is(err, repository.ErrDuplicateArticleURL) {
			return nil, ErrDuplicateArticle
		}
		return nil, fmt.Errorf("save article: %w", err)
	}
	return article, nil
}

// RemoveArticle deletes an article from the user's collection.
// Returns ErrCollectionNotFound when the collection is not the user's,
// and ErrArticleNotFound when the article is not in it.
func (s *Service) RemoveArticle(ctx context.Context, collectionID, articleID, userID int64) error {
	col, err := s.Repo.GetOwned(ctx, collectionID, userID)
	if err != nil {
		return fmt.Errorf("get collection: %w", err)
	}
	if col == nil {
		return ErrCollectionNotFound
	}

	removed, err := s.Repo.RemoveArticle(ctx, collectionID, articleID)
	if err != nil {
		return fmt.Errorf("remove article: %w", err)
	}
	if !removed {
		return ErrArticleNotFound
	}
	return nil
}
