package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	"github.com/bazaarlabs/bazaar-backend/pkg/enums"
	pkgerrors "github.com/bazaarlabs/bazaar-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes order reads and the status state machine.
type Service interface {
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetMyOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	SellerUpdateStatus(ctx context.Context, sellerID, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	txRunner TxRunner
}

// NewService constructs an orders service instance.
func NewService(repo *Repository, txRunner TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if txRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, txRunner: txRunner}, nil
}

func (s *service) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return rows, nil
}

func (s *service) GetMyOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListSellerOrders(ctx context.Context, sellerID uuid.UUID) ([]models.Order, error) {
	rows, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing seller orders")
	}
	return rows, nil
}

func (s *service) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing all orders")
	}
	return rows, nil
}

// sellerAllowedTargets are the statuses a seller may move an order to. PENDING
// is reserved for checkout itself.
var sellerAllowedTargets = map[enums.OrderStatus]bool{
	enums.OrderStatusProcessing: true,
	enums.OrderStatusShipped:    true,
	enums.OrderStatusDelivered:  true,
}

// SellerUpdateStatus advances the status on behalf of a seller whose items are
// in the order. The seller path never settles stock; only the admin transition
// into PROCESSING deducts inventory.
func (s *service) SellerUpdateStatus(ctx context.Context, sellerID, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if !sellerAllowedTargets[target] {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", target))
	}

	var updated *models.Order
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if !orderContainsSeller(order, sellerID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not contain your items")
		}
		if err := checkTransition(order.Status, target); err != nil {
			return err
		}
		if order.Status != target {
			if err := repo.UpdateStatus(ctx, order.ID, target); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
			}
			order.Status = target
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AdminUpdateStatus advances the status with staff privileges. Moving an
// unsettled order into PROCESSING runs stock settlement in the same
// transaction: either every item is deducted and the status commits, or
// nothing changes.
func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", target))
	}

	var updated *models.Order
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if err := checkTransition(order.Status, target); err != nil {
			return err
		}
		if target == enums.OrderStatusProcessing && !order.StockDeducted {
			if err := settleStock(ctx, repo, order); err != nil {
				return err
			}
			order.StockDeducted = true
		}
		if order.Status != target {
			if err := repo.UpdateStatus(ctx, order.ID, target); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
			}
			order.Status = target
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) loadOrder(ctx context.Context, repo *Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func orderContainsSeller(order *models.Order, sellerID uuid.UUID) bool {
	for _, item := range order.Items {
		if item.SellerID == sellerID {
			return true
		}
	}
	return false
}

func checkTransition(from, target enums.OrderStatus) error {
	if !from.CanTransitionTo(target) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", from, target))
	}
	return nil
}
