package entity

import "time"

// User represents a registered account. The digest-related fields
// (EmailFrequency, FavoriteTopics, LastDigestSentAt) are the only state
// the digest engine reads and writes; LastDigestSentAt is nil until the
// first successful digest send.
type User struct {
	ID               int64
	Email            string
	PasswordHash     string
	EmailFrequency   EmailFrequency
	FavoriteTopics   []Topic
	LastDigestSentAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasFavoriteTopics reports whether the user opted into at least one topic.
func (u *User) HasFavoriteTopics() bool {
	return len(u.FavoriteTopics) > 0
}
