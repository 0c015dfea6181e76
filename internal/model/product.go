package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	SKU         string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Active      bool            `gorm:"not null" json:"active"`
	Description string          `gorm:"type:text" json:"description"`

	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   *Category `json:"category,omitempty"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`

	Photos []ProductPhoto `gorm:"constraint:OnDelete:RESTRICT;" json:"photos,omitempty"`
}

// OwnerID is the user allowed to edit or delete the product.
func (p *Product) OwnerID() uuid.UUID { return p.UserID }

// Status renders the active flag the way the catalog forms submit it.
func (p *Product) Status() string {
	if p.Active {
		return StatusActive
	}
	return StatusInactive
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)
