package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a seller listing. Price carries the list price; Discount
// is a whole percentage applied by FinalPrice.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SellerID    uuid.UUID       `gorm:"column:seller_id;type:uuid;not null"`
	Title       string          `gorm:"column:title;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Discount    int             `gorm:"column:discount;not null;default:0"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	IsApproved  bool            `gorm:"column:is_approved;not null;default:false"`
	IsFeatured  bool            `gorm:"column:is_featured;not null;default:false"`
	Images      []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// FinalPrice returns the unit price after the percentage discount, rounded to
// two decimal places.
func (p Product) FinalPrice() decimal.Decimal {
	if p.Discount <= 0 {
		return p.Price
	}
	factor := decimal.NewFromInt(int64(100 - p.Discount)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(2)
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
