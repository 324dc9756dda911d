package analytics

import (
	"context"
	"fmt"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarlabs/bazaar-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Summary is the admin dashboard aggregate.
type Summary struct {
	TotalCustomers int64           `json:"total_customers"`
	TotalOrders    int64           `json:"total_orders"`
	TotalProducts  int64           `json:"total_products"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	BestSeller     *BestSeller     `json:"best_seller"`
}

// BestSeller is the product with the highest ordered quantity.
type BestSeller struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	UnitsSold int64     `json:"units_sold"`
}

// Service computes admin dashboard aggregates.
type Service interface {
	Summarize(ctx context.Context) (*Summary, error)
}

type service struct {
	db *gorm.DB
}

// NewService constructs an analytics service instance.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{db: db}, nil
}

const bestSellerQuery = `
SELECT oi.product_id,
       p.title,
       SUM(oi.quantity) AS units_sold
FROM order_items oi
JOIN products p ON p.id = oi.product_id
GROUP BY oi.product_id, p.title
ORDER BY units_sold DESC
LIMIT 1
`

func (s *service) Summarize(ctx context.Context) (*Summary, error) {
	summary := &Summary{TotalRevenue: decimal.Zero}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Where("is_staff = ?", false).Count(&summary.TotalCustomers).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting customers")
	}
	if err := db.Model(&models.Order{}).Count(&summary.TotalOrders).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting orders")
	}
	if err := db.Model(&models.Product{}).Count(&summary.TotalProducts).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting products")
	}

	var revenue *decimal.Decimal
	if err := db.Model(&models.Order{}).Select("SUM(total_price)").Scan(&revenue).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing revenue")
	}
	if revenue != nil {
		summary.TotalRevenue = *revenue
	}

	var best BestSeller
	result := db.Raw(bestSellerQuery).Scan(&best)
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "finding best seller")
	}
	if result.RowsAffected > 0 {
		summary.BestSeller = &best
	}
	return summary, nil
}
