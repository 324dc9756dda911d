package orders

import (
	"context"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	"github.com/bazaarlabs/bazaar-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together order persistence helpers.
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

// FindByID loads the order with its item snapshots.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns the user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListBySeller returns orders containing at least one of the seller's items,
// newest first. Preloaded items are narrowed to the seller's own lines.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", "seller_id = ?", sellerID).
		Where("id IN (SELECT order_id FROM order_items WHERE seller_id = ?)", sellerID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListAll returns every order, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateStatus persists the new lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).
		Error
}

// ClaimStockDeduction flips stock_deducted from false to true. It returns
// false when another transaction already claimed the order, which makes
// settlement exactly-once.
func (r *Repository) ClaimStockDeduction(ctx context.Context, orderID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE orders SET stock_deducted = ? WHERE id = ? AND stock_deducted = ?`,
		true, orderID, false,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeductProductStock decrements the product's stock only when enough remains.
func (r *Repository) DeductProductStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
		quantity, productID, quantity,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ProductTitle resolves a product title for error messages.
func (r *Repository) ProductTitle(ctx context.Context, productID uuid.UUID) (string, error) {
	var title string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Pluck("title", &title).
		Error
	return title, err
}
