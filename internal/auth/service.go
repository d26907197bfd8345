package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service is the authentication engine. It owns the credential store
// and the token signing configuration; everything is injected at
// construction so handlers and tests share one wiring path.
type Service struct {
	repo      UserRepository
	secret    string
	algorithm string
	tokenTTL  time.Duration
}

// NewService creates an auth service.
func NewService(repo UserRepository, secret, algorithm string, tokenTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		secret:    secret,
		algorithm: algorithm,
		tokenTTL:  tokenTTL,
	}
}

// Users exposes the underlying user repository for account management
// handlers that need direct store access.
func (s *Service) Users() UserRepository {
	return s.repo
}

// IssueToken creates a signed access token for a username.
func (s *Service) IssueToken(username string) (string, error) {
	return GenerateAccessToken(username, s.secret, s.algorithm, s.tokenTTL)
}

// Login verifies credentials and returns a signed access token.
// Unknown usernames, wrong passwords and corrupt stored hashes all
// produce the same ErrInvalidCredentials. Store failures are not
// credential failures and propagate as-is.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.Username)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}
	return token, nil
}

// CurrentUser resolves a bearer token to the account it names.
// A valid signature is not enough: the subject must still exist in the
// store, so tokens for deleted accounts fail here.
func (s *Service) CurrentUser(ctx context.Context, token string) (*User, error) {
	claims, err := ParseToken(token, s.secret, s.algorithm)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.repo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return user, nil
}

// RequireAdmin passes the user through when they hold the admin flag,
// and returns ErrForbidden otherwise.
func (s *Service) RequireAdmin(user *User) (*User, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if !user.IsAdmin {
		return nil, ErrForbidden
	}
	return user, nil
}
