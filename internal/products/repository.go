package product

import (
	"context"
	"strings"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	"github.com/bazaarlabs/bazaar-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product with its images.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListFilters narrows the public catalog listing.
type ListFilters struct {
	Query    string
	Featured *bool
	SellerID *uuid.UUID
}

// ListApproved returns approved products, newest first. A non-nil cursor
// resumes after the row it names; limit bounds the page size.
func (r *Repository) ListApproved(ctx context.Context, filters ListFilters, limit int, cursor *pagination.Cursor) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).
		Preload("Images").
		Where("is_approved = ?", true)

	if search := strings.TrimSpace(filters.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("LOWER(title) LIKE ?", pattern)
	}
	if filters.Featured != nil {
		qb = qb.Where("is_featured = ?", *filters.Featured)
	}
	if filters.SellerID != nil {
		qb = qb.Where("seller_id = ?", *filters.SellerID)
	}
	if cursor != nil {
		qb = qb.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Product
	err := qb.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// DeductStock decrements the product's stock only when enough remains. It
// returns false without touching the row when stock would go negative.
func (r *Repository) DeductStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
		quantity, productID, quantity,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
