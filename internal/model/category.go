package model

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name    string    `gorm:"type:varchar(255);not null" json:"name"`
	SKUCode string    `gorm:"column:sku_code;type:varchar(10);uniqueIndex;not null" json:"sku_code"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User    *User     `gorm:"foreignKey:UserID" json:"-"`

	Products []Product `gorm:"constraint:OnDelete:RESTRICT;" json:"products,omitempty"`
}

// OwnerID is the user allowed to edit or delete the category.
func (c *Category) OwnerID() uuid.UUID { return c.UserID }
