// Package news provides use cases for retrieving articles from the
// upstream news provider. It implements the windowed pagination layer
// that reconciles the caller's fixed page size with the provider's
// independently paginated, variable-length result pages, and the
// favorite-topics query building on top of it.
package news

import (
	"errors"
	"fmt"
)

// Sentinel errors for news retrieval operations.
var (
	// ErrUpstreamAuth indicates that the upstream provider rejected the
	// API credential. It is always surfaced as-is and never retried.
	ErrUpstreamAuth = errors.New("news provider token is invalid or expired")

	// ErrUpstreamFailed indicates any non-authentication upstream
	// failure. The provider-supplied message is attached when available.
	ErrUpstreamFailed = errors.New("news retrieval failed")

	// ErrEmptyTopic indicates that a topic search was requested without
	// a topic. Rejected before any upstream I/O.
	ErrEmptyTopic = errors.New("topic is required")
)

// UpstreamError carries the status code and message reported by the
// upstream provider. Infrastructure adapters return it untranslated;
// the service layer maps it onto the sentinel errors above.
type UpstreamError struct {
	StatusCode int
	Message    string
}

// Error returns a formatted message including the provider status code.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream news provider returned status %d: %s", e.StatusCode, e.Message)
}

// translateUpstream converts raw fetch errors into the use case's error
// taxonomy: HTTP 401 becomes ErrUpstreamAuth, everything else becomes
// ErrUpstreamFailed carrying the upstream message.
func translateUpstream(err error) error {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		if ue.StatusCode == 401 {
			return ErrUpstreamAuth
		}
		if ue.Message != "" {
			return fmt.Errorf("%w: %s", ErrUpstreamFailed, ue.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
}
