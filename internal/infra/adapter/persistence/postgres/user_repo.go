package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
)

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) repository.UserRepository {
	return &UserRepo{db: db}
}

const userColumns = `id, email, password_hash, email_frequency, favorite_topics, last_digest_sent_at, created_at, updated_at`

// scanUser scans one user row; favorite_topics arrives as a text[].
func scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	var user entity.User
	var freq string
	var topics []string
	if err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &freq,
		pq.Array(&topics), &user.LastDigestSentAt,
		&user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.EmailFrequency = entity.EmailFrequency(freq)
	user.FavoriteTopics = entity.NormalizeTopics(topics)
	return &user, nil
}

func (repo *UserRepo) Get(ctx context.Context, id int64) (*entity.User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1`
	user, err := scanUser(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return user, nil
}

func (repo *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
LIMIT 1`
	user, err := scanUser(repo.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return user, nil
}

func (repo *UserRepo) Create(ctx context.Context, user *entity.User) error {
	const query = `
INSERT INTO users (email, password_hash, email_frequency, favorite_topics)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at`
	err := repo.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash,
		user.EmailFrequency.String(),
		pq.Array(entity.TopicStrings(user.FavoriteTopics)),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// UpdateProfile applies only the fields present in the update. The SET
// clause is assembled dynamically so untouched columns keep their value.
func (repo *UserRepo) UpdateProfile(ctx context.Context, id int64, update repository.ProfileUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if update.FavoriteTopics != nil {
		args = append(args, pq.Array(entity.TopicStrings(update.FavoriteTopics)))
		sets = append(sets, fmt.Sprintf("favorite_topics = $%d", len(args)))
	}
	if update.EmailFrequency != nil {
		args = append(args, update.EmailFrequency.String())
		sets = append(sets, fmt.Sprintf("email_frequency = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("UpdateProfile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateProfile: no rows affected")
	}
	return nil
}

func (repo *UserRepo) ListByFrequency(ctx context.Context, freq entity.EmailFrequency) ([]*entity.User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE email_frequency = $1
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, freq.String())
	if err != nil {
		return nil, fmt.Errorf("ListByFrequency: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]*entity.User, 0, 50)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByFrequency: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (repo *UserRepo) MarkDigestSent(ctx context.Context, id int64, sentAt time.Time) error {
	const query = `UPDATE users SET last_digest_sent_at = $1, updated_at = now() WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, sentAt, id)
	if err != nil {
		return fmt.Errorf("MarkDigestSent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("MarkDigestSent: no rows affected")
	}
	return nil
}
