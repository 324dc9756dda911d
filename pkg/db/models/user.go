package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email        string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	FullName     string    `gorm:"column:full_name;not null"`
	Phone        *string   `gorm:"column:phone"`
	Address      *string   `gorm:"column:address"`
	City         *string   `gorm:"column:city"`
	Country      *string   `gorm:"column:country"`
	IsSeller     bool      `gorm:"column:is_seller;not null;default:false"`
	IsStaff      bool      `gorm:"column:is_staff;not null;default:false"`
	IsActive     bool      `gorm:"column:is_active;not null;default:false"`

	ActivationToken          *string    `gorm:"column:activation_token"`
	ActivationTokenCreatedAt *time.Time `gorm:"column:activation_token_created_at"`
	ResetPasswordToken       *string    `gorm:"column:reset_password_token"`
	ResetPasswordCreatedAt   *time.Time `gorm:"column:reset_password_created_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
