package analytics

import (
	"context"
	"testing"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:analytics_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := svc.Summarize(context.Background())
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.TotalCustomers != 0 || summary.TotalOrders != 0 || summary.TotalProducts != 0 {
		t.Fatalf("expected zero counts, got %+v", summary)
	}
	if !summary.TotalRevenue.IsZero() {
		t.Fatalf("expected zero revenue, got %s", summary.TotalRevenue)
	}
	if summary.BestSeller != nil {
		t.Fatalf("expected no best seller, got %+v", summary.BestSeller)
	}
}

func TestSummarizeAggregates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	customer := &models.User{Email: "c@example.com", PasswordHash: "x", IsActive: true}
	staff := &models.User{Email: "s@example.com", PasswordHash: "x", IsStaff: true}
	for _, u := range []*models.User{customer, staff} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	mug := &models.Product{SellerID: uuid.New(), Title: "Mug", Price: decimal.NewFromInt(10)}
	lamp := &models.Product{SellerID: uuid.New(), Title: "Lamp", Price: decimal.NewFromInt(45)}
	for _, p := range []*models.Product{mug, lamp} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	orders := []*models.Order{
		{UserID: customer.ID, TotalPrice: decimal.NewFromInt(110), Items: []models.OrderItem{
			{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: lamp.ID, SellerID: lamp.SellerID, Quantity: 2, UnitPrice: decimal.NewFromInt(45)},
		}},
		{UserID: customer.ID, TotalPrice: decimal.NewFromInt(30), Items: []models.OrderItem{
			{ProductID: mug.ID, SellerID: mug.SellerID, Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
		}},
	}
	for _, o := range orders {
		if err := db.Create(o).Error; err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}

	summary, err := svc.Summarize(context.Background())
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.TotalCustomers != 1 {
		t.Fatalf("staff must not count as customers, got %d", summary.TotalCustomers)
	}
	if summary.TotalOrders != 2 || summary.TotalProducts != 2 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if !summary.TotalRevenue.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("expected revenue 140, got %s", summary.TotalRevenue)
	}
	if summary.BestSeller == nil || summary.BestSeller.ProductID != mug.ID || summary.BestSeller.UnitsSold != 5 {
		t.Fatalf("expected mug as best seller with 5 units, got %+v", summary.BestSeller)
	}
}
