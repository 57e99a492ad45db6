package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
)

const (
	minPasswordLength = 8
	defaultTokenTTL   = 24 * time.Hour
)

// RegisterInput represents the input parameters for user registration.
// FavoriteTopics and EmailFrequency are optional; unknown topics are
// silently dropped and the frequency defaults to "never".
type RegisterInput struct {
	Email          string
	Password       string
	FavoriteTopics []string
	EmailFrequency string
}

// UpdateProfileInput represents a partial profile update.
// Nil fields are left untouched.
type UpdateProfileInput struct {
	FavoriteTopics []string // nil means no change; empty slice clears
	EmailFrequency *string
}

// Service handles registration, login, profile management and tokens.
type Service struct {
	Users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an auth Service with the default token lifetime.
func NewService(users repository.UserRepository, secret []byte) *Service {
	return &Service{Users: users, secret: secret, tokenTTL: defaultTokenTTL}
}

// Register creates a new user and returns it together with a signed
// token. Returns ErrEmailTaken when the address is already registered
// and a ValidationError for a malformed email, short password or
// unknown frequency.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, string, error) {
	if err := entity.ValidateEmail(in.Email); err != nil {
		return nil, "", err
	}
	if len(in.Password) < minPasswordLength {
		return nil, "", &entity.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", minPasswordLength),
		}
	}

	freq := entity.FrequencyNever
	if in.EmailFrequency != "" {
		parsed, err := entity.ParseEmailFrequency(in.EmailFrequency)
		if err != nil {
			return nil, "", err
		}
		freq = parsed
	}

	existing, err := s.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("check existing email: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Email:          in.Email,
		PasswordHash:   string(hash),
		EmailFrequency: freq,
		FavoriteTopics: entity.NormalizeTopics(in.FavoriteTopics),
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the credentials and returns the user with a signed
// token. Unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Profile returns the user's profile. Returns ErrUserNotFound when the
// user no longer exists.
func (s *Service) Profile(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies a partial profile update and returns the fresh
// profile. Unknown favorite topics are silently dropped; an unknown
// frequency is a ValidationError.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*entity.User, error) {
	update := repository.ProfileUpdate{}

	if in.FavoriteTopics != nil {
		topics := entity.NormalizeTopics(in.FavoriteTopics)
		if topics == nil {
			topics = []entity.Topic{}
		}
		update.FavoriteTopics = topics
	}
	if in.EmailFrequency != nil {
		freq, err := entity.ParseEmailFrequency(*in.EmailFrequency)
		if err != nil {
			return nil, err
		}
		update.EmailFrequency = &freq
	}

	if update.FavoriteTopics != nil || update.EmailFrequency != nil {
		if err := s.Users.UpdateProfile(ctx, userID, update); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	return s.Profile(ctx, userID)
}

// IssueToken signs an HS256 token carrying the user ID as subject.
func (s *Service) IssueToken(user *entity.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(user.ID, 10),
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a token string and returns the user ID it was
// issued for. Every defect maps to ErrInvalidToken; callers get no hint
// about what exactly was wrong with the token.
func (s *Service) VerifyToken(tokenString string) (int64, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	if exp, ok := claims["exp"].(float64); !ok || int64(exp) < time.Now().Unix() {
		return 0, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
