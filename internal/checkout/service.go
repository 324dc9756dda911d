package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	"github.com/bazaarlabs/bazaar-backend/pkg/enums"
	pkgerrors "github.com/bazaarlabs/bazaar-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service turns a cart into an order.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error)
}

// CreateOrderInput carries the shipping and payment details captured at
// checkout.
type CreateOrderInput struct {
	FullName      string
	Address       string
	City          string
	Phone         string
	PaymentMethod string
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	txRunner TxRunner
}

// NewService constructs a checkout service instance.
func NewService(repo *Repository, txRunner TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if txRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, txRunner: txRunner}, nil
}

// CreateOrder snapshots the cart into a PENDING order in one transaction:
// prices are read at call time, order items freeze product, seller, quantity
// and unit price, and the cart is drained. Stock is not touched here.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	var created *models.Order

	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindCartWithItems(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			product, err := repo.FindProduct(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
			}

			unit := product.FinalPrice()
			total = total.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
			orderItems = append(orderItems, models.OrderItem{
				ProductID: product.ID,
				SellerID:  product.SellerID,
				Quantity:  line.Quantity,
				UnitPrice: unit,
			})
		}

		order := &models.Order{
			UserID:        userID,
			FullName:      input.FullName,
			Address:       input.Address,
			City:          input.City,
			Phone:         input.Phone,
			PaymentMethod: input.PaymentMethod,
			Status:        enums.OrderStatusPending,
			TotalPrice:    total,
			Items:         orderItems,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}
		if err := repo.DeleteCartItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "draining cart")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
