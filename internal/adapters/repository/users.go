package repository

import (
	"context"
	"fmt"
	"time"
)

// CreateUser inserts u. A taken username or email yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if err := s.conn(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

// UserByEmail loads a user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	if err := s.conn(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return User{}, fmt.Errorf("user by email: %w", translate(err))
	}
	return u, nil
}

// UserByID loads a user by id.
func (s *Store) UserByID(ctx context.Context, id uint) (User, error) {
	var u User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return User{}, fmt.Errorf("user %d: %w", id, translate(err))
	}
	return u, nil
}

// UserExists reports whether any user already holds email or username.
func (s *Store) UserExists(ctx context.Context, email, username string) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("user exists: %w", translate(err))
	}
	return n > 0, nil
}

// ProfileUpdate holds the optional fields of a profile change. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Username       *string
	ProfilePicture *string
}

// UpdateProfile applies upd to user id and returns the stored user.
func (s *Store) UpdateProfile(ctx context.Context, id uint, upd ProfileUpdate) (User, error) {
	fields := make(map[string]any, 2)
	if upd.Username != nil {
		fields["username"] = *upd.Username
	}
	if upd.ProfilePicture != nil {
		fields["profile_picture"] = *upd.ProfilePicture
	}

	u, err := s.UserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if len(fields) == 0 {
		return u, nil
	}
	if err := s.conn(ctx).Model(&User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return User{}, fmt.Errorf("update profile %d: %w", id, translate(err))
	}
	return s.UserByID(ctx, id)
}

// UpdatePassword replaces the password hash of user id.
func (s *Store) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := s.conn(ctx).Model(&User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return fmt.Errorf("update password %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update password %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreatePasswordReset stores a reset code.
func (s *Store) CreatePasswordReset(ctx context.Context, r *PasswordReset) error {
	if err := s.conn(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create password reset: %w", translate(err))
	}
	return nil
}

// ConsumePasswordReset marks the newest unused, unexpired reset of userID
// with code as used. It returns ErrNotFound when no such reset exists.
func (s *Store) ConsumePasswordReset(ctx context.Context, userID uint, code string, now time.Time) error {
	var r PasswordReset
	err := s.conn(ctx).
		Where("user_id = ? AND code = ? AND used_at IS NULL AND expires_at > ?", userID, code, now).
		Order("id DESC").
		First(&r).Error
	if err != nil {
		return fmt.Errorf("password reset: %w", translate(err))
	}

	res := s.conn(ctx).Model(&PasswordReset{}).
		Where("id = ? AND used_at IS NULL", r.ID).
		Update("used_at", now)
	if res.Error != nil {
		return fmt.Errorf("consume password reset: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("consume password reset: %w", ErrNotFound)
	}
	return nil
}
