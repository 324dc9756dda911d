package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarlabs/bazaar-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes cart operations for the authenticated shopper.
type Service interface {
	Sync(ctx context.Context, userID uuid.UUID, lines []SyncLine) error
	AddOne(ctx context.Context, userID, productID uuid.UUID) error
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	List(ctx context.Context, userID uuid.UUID) ([]LineDTO, error)
}

// SyncLine is one client-side cart entry to merge into the server cart.
type SyncLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// LineDTO is a cart line joined with current product data. Prices here are
// live catalog prices; they are only frozen at checkout.
type LineDTO struct {
	ItemID    uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	ImageURL  *string         `json:"image_url"`
}

type cartStore interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ListLines(ctx context.Context, userID uuid.UUID) ([]cartLineRecord, error)
	CountItems(ctx context.Context, userID uuid.UUID) (int, error)
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     cartStore
	products productReader
}

// NewService constructs a cart service instance.
func NewService(repo cartStore, products productReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	return &service{repo: repo, products: products}, nil
}

// Sync merges client-side lines into the server cart. Existing lines gain the
// synced quantity, new lines are created with it.
func (s *service) Sync(ctx context.Context, userID uuid.UUID, lines []SyncLine) error {
	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		if err := s.ensureProductExists(ctx, line.ProductID); err != nil {
			return err
		}
		if err := s.repo.AddQuantity(ctx, cart.ID, line.ProductID, line.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merging cart line")
		}
	}
	return nil
}

// AddOne adds a single unit of the product, creating the line when absent.
func (s *service) AddOne(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.ensureProductExists(ctx, productID); err != nil {
		return err
	}
	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if err := s.repo.AddQuantity(ctx, cart.ID, productID, 1); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart line")
	}
	return nil
}

// UpdateQuantity sets the line's quantity. A non-positive quantity removes
// the line; a persisted line always has quantity >= 1.
func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	item, err := s.findOwnedItem(ctx, itemID, userID)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
		}
		return nil
	}
	if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart line")
	}
	return nil
}

// Remove deletes the line when it belongs to the caller.
func (s *service) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.findOwnedItem(ctx, itemID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
	}
	return nil
}

// Count returns the sum of quantities across the user's cart.
func (s *service) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	total, err := s.repo.CountItems(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting cart items")
	}
	return total, nil
}

// List returns the cart lines with current product pricing.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]LineDTO, error) {
	records, err := s.repo.ListLines(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing cart lines")
	}
	lines := make([]LineDTO, 0, len(records))
	for _, record := range records {
		unit := (models.Product{Price: record.Price, Discount: record.Discount}).FinalPrice()
		lines = append(lines, LineDTO{
			ItemID:    record.ItemID,
			ProductID: record.ProductID,
			Title:     record.Title,
			Quantity:  record.Quantity,
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(record.Quantity))),
			ImageURL:  record.ImageURL,
		})
	}
	return lines, nil
}

func (s *service) findOwnedItem(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error) {
	item, err := s.repo.FindItemForUser(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
	}
	return item, nil
}

func (s *service) ensureProductExists(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return nil
}
