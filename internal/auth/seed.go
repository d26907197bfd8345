package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// BootstrapAdmin ensures an admin account exists with the given
// credentials. If the username is free the account is created; if it is
// taken the account is promoted to admin and its password re-hashed to
// the supplied one. Safe to run on every boot.
func BootstrapAdmin(ctx context.Context, repo UserRepository, logger *slog.Logger, username, email, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing bootstrap password: %w", err)
	}

	existing, err := repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		existing.IsAdmin = true
		if email != "" {
			existing.Email = email
		}
		if err := repo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("promoting bootstrap admin: %w", err)
		}
		if err := repo.UpdatePassword(ctx, existing.ID, hash); err != nil {
			return nil, fmt.Errorf("resetting bootstrap admin password: %w", err)
		}
		logger.Info("bootstrap admin updated", "username", username, "user_id", existing.ID)
		return existing, nil

	case errors.Is(err, ErrUserNotFound):
		admin := &User{
			Username:     username,
			Email:        email,
			FullName:     "Administrator",
			PasswordHash: hash,
			IsAdmin:      true,
		}
		if err := repo.Create(ctx, admin); err != nil {
			return nil, fmt.Errorf("creating bootstrap admin: %w", err)
		}
		logger.Info("bootstrap admin created", "username", username, "user_id", admin.ID)
		return admin, nil

	default:
		return nil, fmt.Errorf("looking up bootstrap admin: %w", err)
	}
}
