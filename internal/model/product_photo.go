package model

import "github.com/google/uuid"

// ProductPhoto records a stored upload. The file lives in the storage backend under Filename.
type ProductPhoto struct {
	BaseModel
	Filename       string    `gorm:"type:varchar(255);not null" json:"filename"`
	OrderPlacement int       `gorm:"not null" json:"order_placement"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
}
