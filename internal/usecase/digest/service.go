package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsdigest/internal/common/pagination"
	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/repository"
	"newsdigest/internal/usecase/news"
)

// digestArticleCount is how many favorite-topic articles one digest carries.
const digestArticleCount = 5

// Cadence windows: how far back a previous send blocks a new one.
const (
	dailyWindow  = 24 * time.Hour
	weeklyWindow = 7 * 24 * time.Hour
)

// FavoritesFetcher retrieves a window of favorite-topic articles.
// Satisfied by *news.Service.
type FavoritesFetcher interface {
	FavoriteTopicsNewsFor(ctx context.Context, topics []entity.Topic, params pagination.Params) (news.Result, error)
}

// Delivery describes the transport-level outcome of one sent email.
type Delivery struct {
	Accepted       []string
	MessageID      string
	ServerResponse string
}

// Mailer sends a rendered digest message. Implementations own transport
// policy; a failed send returns an error and no Delivery.
type Mailer interface {
	Send(ctx context.Context, msg Message) (Delivery, error)
}

// UserError records one user's failure inside a sweep.
type UserError struct {
	UserID  int64
	Email   string
	Message string
}

// Run is the ephemeral outcome of one cadence execution. It is created
// fresh per invocation and returned to the caller for logging or
// reporting; nothing about it is persisted.
type Run struct {
	Frequency  entity.EmailFrequency
	TotalUsers int
	SentCount  int
	Errors     []UserError
}

// Service is the digest eligibility engine.
type Service struct {
	Users  repository.UserRepository
	News   FavoritesFetcher
	Mailer Mailer

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewService creates a digest Service with the real clock.
func NewService(users repository.UserRepository, newsSvc FavoritesFetcher, mailer Mailer) *Service {
	return &Service{Users: users, News: newsSvc, Mailer: mailer, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// cadenceWindow returns the cutoff span for a runnable cadence.
func cadenceWindow(freq entity.EmailFrequency) time.Duration {
	if freq == entity.FrequencyWeekly {
		return weeklyWindow
	}
	return dailyWindow
}

// RunForFrequency executes one digest sweep for the given cadence.
//
// The sweep is a single linear pass: it loads exactly the users
// subscribed to this cadence and processes them one at a time. A user
// is skipped (not errored) when their last send still falls inside the
// cadence window, when they have no favorite topics, or when no
// articles were found. A successful send is followed by marking
// lastDigestSentAt; the send-then-mark ordering means a crash between
// the two can cause one duplicate send on the next run, an accepted
// risk. Any per-user failure is captured into the run's error list and
// never aborts the sweep for the remaining users.
//
// Fails before touching any user record when the cadence is not
// runnable ("never" or an unknown value).
func (s *Service) RunForFrequency(ctx context.Context, freq entity.EmailFrequency) (*Run, error) {
	if !freq.Runnable() {
		return nil, ErrInvalidFrequency
	}

	start := s.now()
	cutoff := start.Add(-cadenceWindow(freq))

	users, err := s.Users.ListByFrequency(ctx, freq)
	if err != nil {
		return nil, fmt.Errorf("list users by frequency: %w", err)
	}

	run := &Run{Frequency: freq, TotalUsers: len(users)}
	for _, user := range users {
		sent, err := s.processUser(ctx, user, cutoff)
		if err != nil {
			run.Errors = append(run.Errors, UserError{
				UserID:  user.ID,
				Email:   user.Email,
				Message: err.Error(),
			})
			continue
		}
		if sent {
			run.SentCount++
		}
	}

	duration := time.Since(start)
	metrics.RecordDigestRun(freq.String(), run.SentCount, len(run.Errors), duration)
	slog.Info("digest sweep completed",
		slog.String("frequency", freq.String()),
		slog.Int("total_users", run.TotalUsers),
		slog.Int("sent", run.SentCount),
		slog.Int("errors", len(run.Errors)),
		slog.Duration("duration", duration))

	return run, nil
}

// processUser handles one user of a sweep. Returns (true, nil) when a
// digest was sent, (false, nil) when the user was skipped, and an error
// when fetch, send or mark failed.
func (s *Service) processUser(ctx context.Context, user *entity.User, cutoff time.Time) (bool, error) {
	// A send inside the cadence window makes re-running the sweep a no-op
	// for this user.
	if user.LastDigestSentAt != nil && user.LastDigestSentAt.After(cutoff) {
		return false, nil
	}
	if !user.HasFavoriteTopics() {
		return false, nil
	}

	result, err := s.News.FavoriteTopicsNewsFor(ctx, user.FavoriteTopics, pagination.Params{Page: 1, Size: digestArticleCount})
	if err != nil {
		return false, fmt.Errorf("fetch favorite topic news: %w", err)
	}
	if len(result.Articles) == 0 {
		return false, nil
	}

	msg := RenderDigest(user.Email, result.Articles)
	if _, err := s.Mailer.Send(ctx, msg); err != nil {
		return false, fmt.Errorf("send digest email: %w", err)
	}

	// Mark strictly after the send succeeded, never before.
	if err := s.Users.MarkDigestSent(ctx, user.ID, s.now()); err != nil {
		return false, fmt.Errorf("mark digest sent: %w", err)
	}
	return true, nil
}

// SendForUser sends an on-demand digest to a single user, bypassing the
// cadence cutoff entirely. It still requires a frequency other than
// "never" and a non-empty favorite topic set, and does not update
// lastDigestSentAt: an on-demand send never suppresses the next
// scheduled digest.
func (s *Service) SendForUser(ctx context.Context, user *entity.User) (Delivery, int, error) {
	if !user.EmailFrequency.Runnable() {
		return Delivery{}, 0, ErrFrequencyNever
	}
	if !user.HasFavoriteTopics() {
		return Delivery{}, 0, ErrNoFavoriteTopics
	}

	result, err := s.News.FavoriteTopicsNewsFor(ctx, user.FavoriteTopics, pagination.Params{Page: 1, Size: digestArticleCount})
	if err != nil {
		return Delivery{}, 0, fmt.Errorf("fetch favorite topic news: %w", err)
	}
	if len(result.Articles) == 0 {
		return Delivery{}, 0, ErrNoArticles
	}

	msg := RenderDigest(user.Email, result.Articles)
	delivery, err := s.Mailer.Send(ctx, msg)
	if err != nil {
		return Delivery{}, 0, fmt.Errorf("send digest email: %w", err)
	}
	return delivery, len(result.Articles), nil
}
