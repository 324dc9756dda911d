package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bazaarlabs/bazaar-backend/pkg/auth"
	"github.com/bazaarlabs/bazaar-backend/pkg/config"
	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarlabs/bazaar-backend/pkg/errors"
	"github.com/bazaarlabs/bazaar-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// resetTokenTTL bounds how long a password reset token stays usable.
const resetTokenTTL = 24 * time.Hour

// Service exposes the account lifecycle operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Activate(ctx context.Context, token string) error
	ResendActivation(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ListCustomers(ctx context.Context) ([]models.User, error)
	SetUserFlag(ctx context.Context, userID uuid.UUID, flag UserFlag, value bool) error
}

// UserFlag names an account flag admins may toggle. The set is closed; any
// other field name is rejected rather than resolved dynamically.
type UserFlag string

const (
	FlagActive UserFlag = "is_active"
	FlagSeller UserFlag = "is_seller"
)

// ParseUserFlag converts raw input into a UserFlag.
func ParseUserFlag(value string) (UserFlag, error) {
	switch flag := UserFlag(value); flag {
	case FlagActive, FlagSeller:
		return flag, nil
	default:
		return "", fmt.Errorf("invalid user flag %q", value)
	}
}

// RegisterInput carries the validated registration payload.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	IsSeller bool
}

// LoginResult bundles the minted token with the authenticated user.
type LoginResult struct {
	AccessToken string
	User        *models.User
}

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByActivationToken(ctx context.Context, token string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	ListCustomers(ctx context.Context) ([]models.User, error)
}

type service struct {
	repo        userStore
	notifier    Notifier
	jwtConfig   config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService constructs a users service instance.
func NewService(repo userStore, notifier Notifier, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:        repo,
		notifier:    notifier,
		jwtConfig:   jwtCfg,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

// Register creates an inactive account and hands the activation token to the
// notifier. Duplicate emails surface as CONFLICT.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}
	token, err := security.GenerateToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating activation token")
	}

	now := s.now()
	user := &models.User{
		Email:                    email,
		PasswordHash:             hash,
		FullName:                 input.FullName,
		IsSeller:                 input.IsSeller,
		ActivationToken:          &token,
		ActivationTokenCreatedAt: &now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}

	if err := s.notifier.SendActivation(ctx, email, token); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending activation")
	}
	return user, nil
}

// Activate flips the account active and burns the token.
func (s *service) Activate(ctx context.Context, token string) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "activation token is required")
	}
	user, err := s.repo.FindByActivationToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invalid activation token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	user.IsActive = true
	user.ActivationToken = nil
	user.ActivationTokenCreatedAt = nil
	if err := s.repo.Save(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activating user")
	}
	return nil
}

// ResendActivation issues a fresh activation token for a pending account.
// Unknown emails and already-active accounts succeed silently so the
// endpoint does not leak account state.
func (s *service) ResendActivation(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if user.IsActive {
		return nil
	}

	token, err := security.GenerateToken()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating activation token")
	}
	now := s.now()
	user.ActivationToken = &token
	user.ActivationTokenCreatedAt = &now
	if err := s.repo.Save(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing activation token")
	}

	if err := s.notifier.SendActivation(ctx, user.Email, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending activation")
	}
	return nil
}

// ChangePassword replaces the caller's password after verifying the current
// one.
func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	ok, err := security.VerifyPassword(oldPassword, user.PasswordHash)
	if err != nil || !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "current password is incorrect")
	}

	hash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}
	user.PasswordHash = hash
	if err := s.repo.Save(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing new password")
	}
	return nil
}

// ListCustomers returns every non-staff account for the admin dashboard.
func (s *service) ListCustomers(ctx context.Context) ([]models.User, error) {
	rows, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing users")
	}
	return rows, nil
}

// SetUserFlag flips one of the whitelisted account flags.
func (s *service) SetUserFlag(ctx context.Context, userID uuid.UUID, flag UserFlag, value bool) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	switch flag {
	case FlagActive:
		user.IsActive = value
	case FlagSeller:
		user.IsSeller = value
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid user flag %q", flag))
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating user")
	}
	return nil
}

// Login verifies credentials and mints an access token. Inactive accounts and
// bad credentials both return UNAUTHORIZED without distinguishing the cause.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is not active")
	}

	token, err := auth.MintAccessToken(s.jwtConfig, s.now(), auth.Identity{
		UserID:   user.ID,
		IsSeller: user.IsSeller,
		IsStaff:  user.IsStaff,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}
	return &LoginResult{AccessToken: token, User: user}, nil
}

// RequestPasswordReset issues a reset token. Unknown emails succeed silently
// so the endpoint does not leak account existence.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	token, err := security.GenerateToken()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating reset token")
	}
	now := s.now()
	user.ResetPasswordToken = &token
	user.ResetPasswordCreatedAt = &now
	if err := s.repo.Save(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing reset token")
	}

	if err := s.notifier.SendPasswordReset(ctx, user.Email, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending reset")
	}
	return nil
}

// ResetPassword burns a valid reset token and replaces the password hash.
func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reset token is required")
	}
	user, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invalid reset token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if user.ResetPasswordCreatedAt == nil || s.now().Sub(*user.ResetPasswordCreatedAt) > resetTokenTTL {
		return pkgerrors.New(pkgerrors.CodeValidation, "reset token expired")
	}

	hash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}
	user.PasswordHash = hash
	user.ResetPasswordToken = nil
	user.ResetPasswordCreatedAt = nil
	if err := s.repo.Save(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing new password")
	}
	return nil
}
