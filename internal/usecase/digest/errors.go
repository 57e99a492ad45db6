// Package digest provides the digest eligibility engine: it decides
// which users of a cadence are due for a digest email, fetches their
// favorite-topic articles, sends the email, and marks the send, with
// per-user failure isolation.
package digest

import "errors"

// Sentinel errors for digest operations.
var (
	// ErrInvalidFrequency indicates that a sweep was requested for a
	// cadence that is not runnable. "never" is a valid subscription but
	// not a runnable cadence; the sweep fails before touching any user.
	ErrInvalidFrequency = errors.New("invalid frequency, must be daily or weekly")

	// ErrFrequencyNever indicates a self-serve digest was requested by a
	// user who opted out of digest emails.
	ErrFrequencyNever = errors.New("user has disabled digest emails (frequency never)")

	// ErrNoFavoriteTopics indicates the user has no favorite topics, so
	// there is nothing topic-specific to digest.
	ErrNoFavoriteTopics = errors.New("user has no favorite topics")

	// ErrNoArticles indicates no articles were found for the user's
	// favorite topics.
	ErrNoArticles = errors.New("no articles found for the user's favorite topics")
)
