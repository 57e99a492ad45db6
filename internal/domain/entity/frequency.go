package entity

import "fmt"

// EmailFrequency is the digest cadence a user is subscribed to.
// It is a closed enumeration; parse external input with
// ParseEmailFrequency instead of comparing raw strings at call sites.
type EmailFrequency string

const (
	FrequencyDaily  EmailFrequency = "daily"
	FrequencyWeekly EmailFrequency = "weekly"
	FrequencyNever  EmailFrequency = "never"
)

// ParseEmailFrequency converts a raw string into an EmailFrequency.
// Returns a ValidationError for values outside the enumeration.
func ParseEmailFrequency(raw string) (EmailFrequency, error) {
	switch EmailFrequency(raw) {
	case FrequencyDaily, FrequencyWeekly, FrequencyNever:
		return EmailFrequency(raw), nil
	default:
		return "", &ValidationError{
			Field:   "emailFrequency",
			Message: fmt.Sprintf("invalid frequency %q, must be daily, weekly or never", raw),
		}
	}
}

// Runnable reports whether a digest sweep can be executed for this
// cadence. "never" is a valid subscription state but not a runnable one.
func (f EmailFrequency) Runnable() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// String returns the wire representation of the frequency.
func (f EmailFrequency) String() string { return string(f) }
