package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/scoutdesk/scoutdesk/internal/metrics"
	"github.com/scoutdesk/scoutdesk/internal/model"
	"github.com/scoutdesk/scoutdesk/internal/repository"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
	VerifyDummy(password string)
}

// TokenIssuer signs bearer tokens for a user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthService handles signup, login and profile changes.
type AuthService struct {
	users   UserStore
	hasher  PasswordHasher
	tokens  TokenIssuer
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		metrics: recorder,
		logger:  logger,
	}
}

// SignupInput defines input for creating an account.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// UpdateProfileInput carries optional profile changes. Nil fields are left alone.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

// Signup creates an account and returns a signed token for it.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	email := NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrCredentialsRequired
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index decides concurrent signups for the same address.
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncSignup()
	s.logger.Info("user_signed_up", "user_id", user.ID)

	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Login verifies credentials and returns a signed token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	if len(password) > MaxPasswordLength {
		s.metrics.IncLogin(metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.VerifyDummy(password)
			s.metrics.IncLogin(metrics.OutcomeFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("password_hash_invalid", "user_id", user.ID, "error", err.Error())
		s.metrics.IncLogin(metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.metrics.IncLogin(metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLogin(metrics.OutcomeSuccess)
	return &AuthResult{Token: token, User: user.Public()}, nil
}

// GetMe returns the public profile of the user.
func (s *AuthService) GetMe(ctx context.Context, userID string) (*model.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	public := user.Public()
	return &public, nil
}

// UpdateMe applies profile changes. Moving to an email held by another
// account fails with ErrEmailInUse; re-submitting one's own email is allowed.
func (s *AuthService) UpdateMe(ctx context.Context, userID string, input UpdateProfileInput) (*model.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		user.Name = name
	}

	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		if err := ValidateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			existing, err := s.users.GetUserByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != user.ID:
				return nil, ErrEmailInUse
			case err != nil && !errors.Is(err, repository.ErrUserNotFound):
				return nil, fmt.Errorf("failed to look up user: %w", err)
			}
			user.Email = email
		}
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailInUse
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	public := user.Public()
	return &public, nil
}
