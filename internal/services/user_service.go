package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "spendsnap/internal/errors"
	"spendsnap/internal/events"
	"spendsnap/internal/models"
	"spendsnap/internal/session"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
	minPasswordLength      = 6
)

// userService handles user-related business logic.
type userService struct {
	db        *gorm.DB
	publisher events.Publisher
	resetTTL  time.Duration
}

// NewUserService creates a new UserServicer. Password-reset tokens are
// published through publisher and stay valid for resetTTL.
func NewUserService(db *gorm.DB, publisher events.Publisher, resetTTL time.Duration) UserServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &userService{db: db, publisher: publisher, resetTTL: resetTTL}
}

// CreateUser registers a new user
func (s *userService) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 6 characters")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:          email,
		Password:       string(hashedPassword),
		FirstName:      firstName,
		LastName:       lastName,
		IsActive:       true,
		SessionVersion: 1,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	return s.LookupUser(context.Background(), id)
}

// LookupUser retrieves a user by ID, honouring ctx cancellation. The session
// provider uses it on every guarded request.
func (s *userService) LookupUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin checks credentials and tracks failures. Five consecutive
// failures lock the account for fifteen minutes.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrUserNotFound.Code {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.VerifyPassword(user, password) {
		updates := map[string]interface{}{"failed_login_attempts": user.FailedLoginAttempts + 1}
		if user.FailedLoginAttempts+1 >= maxFailedLoginAttempts {
			updates["locked_until"] = now.Add(lockoutDuration)
		}
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	return user, nil
}

// SignOut revokes every session token issued to the user so far.
func (s *userService) SignOut(userID string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("session_version", gorm.Expr("session_version + 1"))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// RequestPasswordReset stores a reset token for the account and publishes it
// for delivery. Unknown emails succeed silently so callers cannot probe for
// registered addresses.
func (s *userService) RequestPasswordReset(email string) error {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrUserNotFound.Code {
			return nil
		}
		return err
	}

	token, digest, err := session.NewResetToken()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expiresAt := time.Now().UTC().Add(s.resetTTL)

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"reset_token_hash":       digest,
		"reset_token_expires_at": expiresAt,
	}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	publish(s.publisher, events.PasswordResetRequested, user.ID, events.PasswordResetPayload{
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	})
	return nil
}

// ResetPassword sets a new password using a reset token. Outstanding
// sessions are revoked and any lockout is cleared.
func (s *userService) ResetPassword(token, password, confirmPassword string) (string, error) {
	if token == "" || password == "" || confirmPassword == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "token, password and confirmation are required")
	}
	if password != confirmPassword {
		return "", apperrors.ErrPasswordMismatch
	}
	if len(password) < minPasswordLength {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 6 characters")
	}

	var user models.User
	err := s.db.Where("reset_token_hash = ? AND reset_token_expires_at > ?", session.HashToken(token), time.Now().UTC()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrInvalidResetToken
		}
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"password":               string(hashedPassword),
		"reset_token_hash":       "",
		"reset_token_expires_at": nil,
		"failed_login_attempts":  0,
		"locked_until":           nil,
		"session_version":        gorm.Expr("session_version + 1"),
	}).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user.ID, nil
}
