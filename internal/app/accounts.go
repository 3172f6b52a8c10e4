package service

import (
	"context"
	"errors"
	"strings"

	"github.com/okian/pricewise/internal/adapters/auth"
	"github.com/okian/pricewise/internal/adapters/repository"
	"github.com/okian/pricewise/internal/domain/errs"
	"github.com/okian/pricewise/internal/domain/types"
	"github.com/okian/pricewise/pkg/logger"
	"github.com/okian/pricewise/pkg/metrics"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. A taken email or username is a conflict.
func (s *Service) Register(ctx context.Context, username, email, password string) (types.User, error) {
	const op = "service.Register"

	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		metrics.RecordAuthAttempt("register", "invalid")
		return types.User{}, errs.New(op, errs.ErrValidation, "Username, email, and password are required")
	}
	if !strings.Contains(email, "@") {
		metrics.RecordAuthAttempt("register", "invalid")
		return types.User{}, errs.New(op, errs.ErrValidation, "Email address is invalid")
	}

	if _, err := s.store.UserByEmail(ctx, email); err == nil {
		metrics.RecordAuthAttempt("register", "conflict")
		return types.User{}, errs.New(op, errs.ErrConflict, "Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return types.User{}, errs.WrapKind(op, errs.ErrInternal, err)
	}
	taken, err := s.store.UserExists(ctx, email, username)
	if err != nil {
		return types.User{}, errs.WrapKind(op, errs.ErrInternal, err)
	}
	if taken {
		metrics.RecordAuthAttempt("register", "conflict")
		return types.User{}, errs.New(op, errs.ErrConflict, "Username already taken")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return types.User{}, errs.WrapKind(op, errs.ErrInternal, err)
	}

	u := repository.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			metrics.RecordAuthAttempt("register", "conflict")
			return types.User{}, errs.New(op, errs.ErrConflict, "Email already registered")
		}
		return types.User{}, errs.WrapKind(op, errs.ErrInternal, err)
	}

	metrics.RecordAuthAttempt("register", "ok")
	s.logger.Info(ctx, "user registered", logger.Uint("userID", u.ID))
	return projectUser(u), nil
}

// Login checks credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	const op = "service.Login"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		metrics.RecordAuthAttempt("login", "invalid")
		return "", errs.New(op, errs.ErrValidation, "Email and password are required")
	}

	u, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordAuthAttempt("login", "denied")
			return "", errs.New(op, errs.ErrUnauthorized, "Invalid credentials")
		}
		return "", errs.WrapKind(op, errs.ErrInternal, err)
	}
	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrMismatch) {
			metrics.RecordAuthAttempt("login", "denied")
			return "", errs.New(op, errs.ErrUnauthorized, "Invalid credentials")
		}
		return "", errs.WrapKind(op, errs.ErrInternal, err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", errs.WrapKind(op, errs.ErrInternal, err)
	}
	metrics.RecordAuthAttempt("login", "ok")
	s.logger.Info(ctx, "user logged in", logger.Uint("userID", u.ID))
	return token, nil
}

// Authenticate returns the user id an access token was issued for.
func (s *Service) Authenticate(_ context.Context, token string) (uint, error) {
	uid, err := s.tokens.Verify(token)
	if err != nil {
		return 0, errs.New("service.Authenticate", errs.ErrUnauthorized, "Invalid or expired token")
	}
	return uid, nil
}

// UpdateProfile changes the username and/or profile picture of userID. Nil
// arguments are left unchanged.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, username, profilePicture *string) (types.User, error) {
	const op = "service.UpdateProfile"

	if username != nil {
		name := strings.TrimSpace(*username)
		if name == "" {
			return types.User{}, errs.New(op, errs.ErrValidation, "Username must not be empty")
		}
		username = &name
	}
	if username == nil && profilePicture == nil {
		return types.User{}, errs.New(op, errs.ErrValidation, "Nothing to update")
	}

	u, err := s.store.UpdateProfile(ctx, userID, repository.ProfileUpdate{
		Username:       username,
		ProfilePicture: profilePicture,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return types.User{}, errs.New(op, errs.ErrConflict, "Username already taken")
		}
		return types.User{}, storeErr(op, err, "User not found")
	}
	return projectUser(u), nil
}

// RequestPasswordReset sends a one-time code to email. Unknown addresses
// succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "service.RequestPasswordReset"

	email = normalizeEmail(email)
	if email == "" {
		return errs.New(op, errs.ErrValidation, "Email is required")
	}

	u, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug(ctx, "password reset for unknown email")
			return nil
		}
		return errs.WrapKind(op, errs.ErrInternal, err)
	}

	code, err := auth.GenerateCode(resetCodeLength)
	if err != nil {
		return errs.WrapKind(op, errs.ErrInternal, err)
	}
	reset := repository.PasswordReset{
		UserID:    u.ID,
		Code:      code,
		ExpiresAt: s.now().UTC().Add(s.resetCodeTTL),
	}
	if err := s.store.CreatePasswordReset(ctx, &reset); err != nil {
		return errs.WrapKind(op, errs.ErrInternal, err)
	}
	if err := s.notifier.SendResetCode(ctx, u.Email, code, s.resetCodeTTL); err != nil {
		return errs.WrapKind(op, errs.ErrInternal, err)
	}
	return nil
}

// ResetPassword sets a new password when code is a live reset code of email.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	const op = "service.ResetPassword"

	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return errs.New(op, errs.ErrValidation, "Email, code, and new password are required")
	}

	u, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(op, errs.ErrUnauthorized, "Invalid or expired reset code")
		}
		return errs.WrapKind(op, errs.ErrInternal, err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return errs.WrapKind(op, errs.ErrInternal, err)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.ConsumePasswordReset(ctx, u.ID, code, s.now().UTC()); err != nil {
			return err
		}
		return tx.UpdatePassword(ctx, u.ID, hash)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(op, errs.ErrUnauthorized, "Invalid or expired reset code")
		}
		return errs.WrapKind(op, errs.ErrInternal, err)
	}

	s.logger.Info(ctx, "password reset", logger.Uint("userID", u.ID))
	return nil
}
