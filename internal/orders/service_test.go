package orders

import (
	"context"
	"testing"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	"github.com/bazaarlabs/bazaar-backend/pkg/enums"
	pkgerrors "github.com/bazaarlabs/bazaar-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), testTxRunner{db: db})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedProduct(t *testing.T, db *gorm.DB, title string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:   uuid.New(),
		Title:      title,
		Price:      decimal.NewFromInt(10),
		Stock:      stock,
		IsApproved: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedOrder(t *testing.T, db *gorm.DB, items []models.OrderItem) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:     uuid.New(),
		Status:     enums.OrderStatusPending,
		TotalPrice: decimal.NewFromInt(100),
		Items:      items,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func reloadOrder(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Order {
	t.Helper()
	var order models.Order
	if err := db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	return &order
}

func stockOf(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return product.Stock
}

func TestAdminUpdateStatusSettlesOnProcessing(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := newTestService(t, db)

	mug := seedProduct(t, db, "Mug", 5)
	lamp := seedProduct(t, db, "Lamp", 5)
	order := seedOrder(t, db, []models.OrderItem{
		{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		{ProductID: lamp.ID, SellerID: lamp.SellerID, Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
	})

	updated, err := svc.AdminUpdateStatus(ctx, order.ID, enums.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing || !updated.StockDeducted {
		t.Fatalf("expected settled PROCESSING order, got %+v", updated)
	}
	if got := stockOf(t, db, mug.ID); got != 3 {
		t.Fatalf("expected mug stock 3, got %d", got)
	}
	if got := stockOf(t, db, lamp.ID); got != 2 {
		t.Fatalf("expected lamp stock 2, got %d", got)
	}
}

func TestAdminUpdateStatusSettlesExactlyOnce(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := newTestService(t, db)

	mug := seedProduct(t, db, "Mug", 5)
	order := seedOrder(t, db, []models.OrderItem{
		{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
	})

	if _, err := svc.AdminUpdateStatus(ctx, order.ID, enums.OrderStatusProcessing); err != nil {
		t.Fatalf("first update: %v", err)
	}
	// repeating the same transition must not deduct again
	if _, err := svc.AdminUpdateStatus(ctx, order.ID, enums.OrderStatusProcessing); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if got := stockOf(t, db, mug.ID); got != 3 {
		t.Fatalf("expected stock 3 after double transition, got %d", got)
	}
}

func TestAdminUpdateStatusAtomicOnShortStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := newTestService(t, db)

	mug := seedProduct(t, db, "Mug", 5)
	lamp := seedProduct(t, db, "Lamp", 1)
	order := seedOrder(t, db, []models.OrderItem{
		{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		{ProductID: lamp.ID, SellerID: lamp.SellerID, Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
	})

	_, err := svc.AdminUpdateStatus(ctx, order.ID, enums.OrderStatusProcessing)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if appErr.Message() != "insufficient stock for Lamp" {
		t.Fatalf("error must name the short product, got %q", appErr.Message())
	}

	// nothing may change: claim, deductions and status all roll back
	reloaded := reloadOrder(t, db, order.ID)
	if reloaded.Status != enums.OrderStatusPending || reloaded.StockDeducted {
		t.Fatalf("expected untouched order, got %+v", reloaded)
	}
	if got := stockOf(t, db, mug.ID); got != 5 {
		t.Fatalf("expected mug stock untouched, got %d", got)
	}
	if got := stockOf(t, db, lamp.ID); got != 1 {
		t.Fatalf("expected lamp stock untouched, got %d", got)
	}
}

func TestSettlementCompetingOrdersOneWins(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := newTestService(t, db)

	mug := seedProduct(t, db, "Mug", 3)
	first := seedOrder(t, db, []models.OrderItem{
		{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
	})
	second := seedOrder(t, db, []models.OrderItem{
		{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
	})

	if _, err := svc.AdminUpdateStatus(ctx, first.ID, enums.OrderStatusProcessing); err != nil {
		t.Fatalf("first settlement: %v", err)
	}
	_, err := svc.AdminUpdateStatus(ctx, second.ID, enums.OrderStatusProcessing)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT for losing order, got %v", err)
	}
	if got := stockOf(t, db, mug.ID); got != 1 {
		t.Fatalf("stock must never go negative, got %d", got)
	}
}

func TestAdminUpdateStatusRejectsBackward(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := newTestService(t, db)

	mug := seedProduct(t, db, "Mug", 5)
	order := seedOrder(t, db, []models.OrderItem{
		{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
	})
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", enums.OrderStatusShipped).Error; err != nil {
		t.Fatalf("advance order: %v", err)
	}

	_, err := svc.AdminUpdateStatus(ctx, order.ID, enums.OrderStatusPending)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestAdminUpdateStatusUnknownOrder(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.AdminUpdateStatus(context.Background(), uuid.New(), enums.OrderStatusProcessing)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestSellerUpdateStatusNeverSettles(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := newTestService(t, db)

	mug := seedProduct(t, db, "Mug", 5)
	order := seedOrder(t, db, []models.OrderItem{
		{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
	})

	updated, err := svc.SellerUpdateStatus(ctx, mug.SellerID, order.ID, enums.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("seller update: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected PROCESSING, got %s", updated.Status)
	}
	if updated.StockDeducted {
		t.Fatal("seller path must not settle stock")
	}
	if got := stockOf(t, db, mug.ID); got != 5 {
		t.Fatalf("expected untouched stock, got %d", got)
	}
}

func TestSellerUpdateStatusRejectsPendingTarget(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	mug := seedProduct(t, db, "Mug", 5)
	order := seedOrder(t, db, []models.OrderItem{
		{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
	})

	_, err := svc.SellerUpdateStatus(context.Background(), mug.SellerID, order.ID, enums.OrderStatusPending)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestSellerUpdateStatusForeignSeller(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	mug := seedProduct(t, db, "Mug", 5)
	order := seedOrder(t, db, []models.OrderItem{
		{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
	})

	_, err := svc.SellerUpdateStatus(context.Background(), uuid.New(), order.ID, enums.OrderStatusShipped)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestListBySellerNarrowsItems(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	mug := seedProduct(t, db, "Mug", 5)
	lamp := seedProduct(t, db, "Lamp", 5)
	seedOrder(t, db, []models.OrderItem{
		{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		{ProductID: lamp.ID, SellerID: lamp.SellerID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
	})
	seedOrder(t, db, []models.OrderItem{
		{ProductID: lamp.ID, SellerID: lamp.SellerID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
	})

	rows, err := repo.ListBySeller(ctx, mug.SellerID)
	if err != nil {
		t.Fatalf("list by seller: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 order for mug seller, got %d", len(rows))
	}
	if len(rows[0].Items) != 1 || rows[0].Items[0].SellerID != mug.SellerID {
		t.Fatalf("expected only the seller's items, got %+v", rows[0].Items)
	}
}

func TestGetMyOrderHidesForeignOrders(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	mug := seedProduct(t, db, "Mug", 5)
	order := seedOrder(t, db, []models.OrderItem{
		{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
	})

	if _, err := svc.GetMyOrder(context.Background(), order.UserID, order.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	_, err := svc.GetMyOrder(context.Background(), uuid.New(), order.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for foreign reader, got %v", err)
	}
}
