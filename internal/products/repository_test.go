package product

import (
	"context"
	"testing"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	"github.com/bazaarlabs/bazaar-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ProductImage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int, approved bool) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:   uuid.New(),
		Title:      "Ceramic Mug",
		Price:      decimal.NewFromInt(20),
		Stock:      stock,
		IsApproved: approved,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestListApprovedFiltersUnapproved(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	approved := seedProduct(t, db, 5, true)
	seedProduct(t, db, 5, false)

	rows, err := repo.ListApproved(ctx, ListFilters{}, 10, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != approved.ID {
		t.Fatalf("expected only the approved product, got %d rows", len(rows))
	}
}

func TestListApprovedCursorPaging(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	for i := 0; i < 5; i++ {
		seedProduct(t, db, 5, true)
	}

	first, err := repo.ListApproved(ctx, ListFilters{}, 3, nil)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("first page size = %d, want 3", len(first))
	}

	last := first[len(first)-1]
	rest, err := repo.ListApproved(ctx, ListFilters{}, 10, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("second page size = %d, want 2", len(rest))
	}
	seen := map[uuid.UUID]bool{}
	for _, row := range append(first, rest...) {
		if seen[row.ID] {
			t.Fatalf("product %s returned twice across pages", row.ID)
		}
		seen[row.ID] = true
	}
}

func TestFindByIDLoadsImages(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	product := seedProduct(t, db, 5, true)
	if err := db.Create(&models.ProductImage{ProductID: product.ID, URL: "https://img/1.jpg"}).Error; err != nil {
		t.Fatalf("seed image: %v", err)
	}

	got, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got.Images) != 1 || got.Images[0].URL != "https://img/1.jpg" {
		t.Fatalf("expected preloaded image, got %+v", got.Images)
	}
}

func TestDeductStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)
	product := seedProduct(t, db, 3, true)

	ok, err := repo.DeductStock(ctx, product.ID, 2)
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if !ok {
		t.Fatal("expected deduction to succeed")
	}

	ok, err = repo.DeductStock(ctx, product.ID, 2)
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if ok {
		t.Fatal("expected deduction to fail when stock is short")
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stock != 1 {
		t.Fatalf("expected stock 1 after one successful deduction, got %d", reloaded.Stock)
	}
}
