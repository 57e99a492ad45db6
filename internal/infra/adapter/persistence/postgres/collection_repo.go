package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
)

// pgUniqueViolation is the PostgreSQL error code for a unique
// constraint violation.
const pgUniqueViolation = "23505"

type CollectionRepo struct{ db *sql.DB }

func NewCollectionRepo(db *sql.DB) repository.CollectionRepository {
	return &CollectionRepo{db: db}
}

const articleColumns = `id, collection_id, title, description, url, image_url, published_at, source_name, author, created_at`

func scanSavedArticle(rows *sql.Rows) (entity.SavedArticle, error) {
	var article entity.SavedArticle
	var description, imageURL, sourceName, author sql.NullString
	var publishedAt sql.NullTime
	if err := rows.Scan(
		&article.ID, &article.CollectionID, &article.Title,
		&description, &article.URL, &imageURL,
		&publishedAt, &sourceName, &author, &article.CreatedAt,
	); err != nil {
		return entity.SavedArticle{}, err
	}
	article.Description = description.String
	article.ImageURL = imageURL.String
	article.PublishedAt = publishedAt.Time
	article.SourceName = sourceName.String
	article.Author = author.String
	return article, nil
}

func (repo *CollectionRepo) Create(ctx context.Context, collection *entity.Collection) error {
	const query = `
INSERT INTO collections (user_id, name)
VALUES ($1, $2)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query, collection.UserID, collection.Name).
		Scan(&collection.ID, &collection.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *CollectionRepo) ListByOwner(ctx context.Context, userID int64) ([]repository.CollectionWithArticles, error) {
	const query = `
SELECT id, user_id, name, created_at
FROM collections
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	defer func() { _ = rows.Close() }()

	collections := make([]repository.CollectionWithArticles, 0, 10)
	ids := make([]int64, 0, 10)
	for rows.Next() {
		var col entity.Collection
		if err := rows.Scan(&col.ID, &col.UserID, &col.Name, &col.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByOwner: %w", err)
		}
		collections = append(collections, repository.CollectionWithArticles{Collection: &col})
		ids = append(ids, col.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	if len(collections) == 0 {
		return collections, nil
	}

	// One query for all articles instead of one per collection.
	byCollection, err := repo.articlesFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	for i := range collections {
		collections[i].Articles = byCollection[collections[i].Collection.ID]
	}
	return collections, nil
}

func (repo *CollectionRepo) articlesFor(ctx context.Context, collectionIDs []int64) (map[int64][]entity.SavedArticle, error) {
	const query = `
SELECT ` + articleColumns + `
FROM collection_articles
WHERE collection_id = ANY($1)
ORDER BY published_at DESC`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(collectionIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	byCollection := make(map[int64][]entity.SavedArticle, len(collectionIDs))
	for rows.Next() {
		article, err := scanSavedArticle(rows)
		if err != nil {
			return nil, err
		}
		byCollection[article.CollectionID] = append(byCollection[article.CollectionID], article)
	}
	return byCollection, rows.Err()
}

func (repo *CollectionRepo) GetOwned(ctx context.Context, id, userID int64) (*repository.CollectionWithArticles, error) {
	const query = `
SELECT id, user_id, name, created_at
FROM collections
WHERE id = $1 AND user_id = $2
LIMIT 1`
	var col entity.Collection
	err := repo.db.QueryRowContext(ctx, query, id, userID).
		Scan(&col.ID, &col.UserID, &col.Name, &col.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetOwned: %w", err)
	}

	byCollection, err := repo.articlesFor(ctx, []int64{col.ID})
	if err != nil {
		return nil, fmt.Errorf("GetOwned: %w", err)
	}
	return &repository.CollectionWithArticles{
		Collection: &col,
		Articles:   byCollection[col.ID],
	}, nil
}

func (repo *CollectionRepo) Rename(ctx context.Context, id, userID int64, name string) (bool, error) {
	const query = `UPDATE collections SET name = $1 WHERE id = $2 AND user_id = $3`
	res, err := repo.db.ExecContext(ctx, query, name, id, userID)
	if err != nil {
		return false, fmt.Errorf("Rename: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (repo *CollectionRepo) Delete(ctx context.Context, id, userID int64) (bool, error) {
	const query = `DELETE FROM collections WHERE id = $1 AND user_id = $2`
	res, err := repo.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("Delete: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (repo *CollectionRepo) SaveArticle(ctx context.Context, article *entity.SavedArticle) error {
	const query = `
INSERT INTO collection_articles (collection_id, title, description, url, image_url, published_at, source_name, author)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		article.CollectionID, article.Title,
		nullString(article.Description), article.URL,
		nullString(article.ImageURL), nullTime(article.PublishedAt),
		nullString(article.SourceName), nullString(article.Author),
	).Scan(&article.ID, &article.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return repository.ErrDuplicateArticleURL
		}
		return fmt.Errorf("SaveArticle: %w", err)
	}
	return nil
}

func (repo *CollectionRepo) RemoveArticle(ctx context.Context, collectionID, articleID int64) (bool, error) {
	const query = `DELETE FROM collection_articles WHERE id = $1 AND collection_id = $2`
	res, err := repo.db.ExecContext(ctx, query, articleID, collectionID)
	if err != nil {
		return false, fmt.Errorf("RemoveArticle: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
