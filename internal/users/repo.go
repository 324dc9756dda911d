package users

import (
	"context"
	"strings"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together user persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user row.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID loads a user row by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListCustomers returns every non-staff account, newest first.
func (r *Repository) ListCustomers(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("is_staff = ?", false).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// Save persists all fields of the user row.
func (r *Repository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// FindByEmail looks a user up by normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByActivationToken resolves the pending user for an activation token.
func (r *Repository) FindByActivationToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "activation_token = ?", token).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByResetToken resolves the user for a password reset token.
func (r *Repository) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "reset_password_token = ?", token).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
