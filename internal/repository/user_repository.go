// Package repository defines the persistence interfaces consumed by the
// use case layer. Concrete adapters live under internal/infra/adapter.
package repository

import (
	"context"
	"time"

	"newsdigest/internal/domain/entity"
)

// ProfileUpdate contains the optional profile fields a user may change.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FavoriteTopics []entity.Topic        // nil means no change; empty slice clears
	EmailFrequency *entity.EmailFrequency
}

type UserRepository interface {
	// Get retrieves a user by ID. Returns (nil, nil) if not found.
	Get(ctx context.Context, id int64) (*entity.User, error)
	// GetByEmail retrieves a user by email. Returns (nil, nil) if not found.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	// UpdateProfile applies the non-nil fields of the update to the user.
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) error
	// ListByFrequency returns all users subscribed to exactly the given
	// cadence. Users with "never" or another cadence are excluded.
	ListByFrequency(ctx context.Context, freq entity.EmailFrequency) ([]*entity.User, error)
	// MarkDigestSent records the timestamp of a successful digest send.
	// Called strictly after the send succeeded, never before.
	MarkDigestSent(ctx context.Context, id int64, sentAt time.Time) error
}
