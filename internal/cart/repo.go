package cart

import (
	"context"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wires together cart persistence helpers.
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

// GetOrCreateCart returns the user's cart, creating it on first use.
func (r *Repository) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where(models.Cart{UserID: userID}).
		FirstOrCreate(&cart).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddQuantity inserts the line or adds to its quantity in a single statement,
// so concurrent adds never lose updates.
func (r *Repository) AddQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	item := models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			}),
		}).
		Create(&item).
		Error
}

// FindItemForUser loads a cart line only when it belongs to the user's cart.
func (r *Repository) FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		First(&item).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity sets the line's quantity.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).
		Error
}

// DeleteItem removes a cart line by ID.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&models.CartItem{}).Error
}

// DeleteItemsByCart drains all lines from a cart.
func (r *Repository) DeleteItemsByCart(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// ListItemsByCart returns the raw lines of a cart.
func (r *Repository) ListItemsByCart(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

type cartLineRecord struct {
	ItemID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Title     string
	Price     decimal.Decimal
	Discount  int
	ImageURL  *string
}

const cartLinesQuery = `
SELECT ci.id AS item_id,
       ci.product_id,
       ci.quantity,
       p.title,
       p.price,
       p.discount,
       (SELECT url FROM product_images pi
        WHERE pi.product_id = p.id
        ORDER BY pi.created_at ASC LIMIT 1) AS image_url
FROM cart_items ci
JOIN carts c ON c.id = ci.cart_id
JOIN products p ON p.id = ci.product_id
WHERE c.user_id = ?
ORDER BY ci.created_at ASC
`

// ListLines returns the user's cart lines joined with current product data.
func (r *Repository) ListLines(ctx context.Context, userID uuid.UUID) ([]cartLineRecord, error) {
	var records []cartLineRecord
	if err := r.db.WithContext(ctx).Raw(cartLinesQuery, userID).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountItems sums the quantities across the user's cart.
func (r *Repository) CountItems(ctx context.Context, userID uuid.UUID) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Select("SUM(cart_items.quantity)").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Scan(&total).
		Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
