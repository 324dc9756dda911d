package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bazaarlabs/bazaar-backend/pkg/enums"
)

// Order is the immutable record produced by checkout. Only Status and
// StockDeducted change after creation; TotalPrice is fixed at creation and
// never recomputed.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	FullName      string            `gorm:"column:full_name;not null"`
	Address       string            `gorm:"column:address;not null"`
	City          string            `gorm:"column:city;not null"`
	Phone         string            `gorm:"column:phone;not null"`
	PaymentMethod string            `gorm:"column:payment_method;not null"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	TotalPrice    decimal.Decimal   `gorm:"column:total_price;type:numeric(10,2);not null"`
	StockDeducted bool              `gorm:"column:stock_deducted;not null;default:false"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
