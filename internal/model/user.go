package model

// User is a person known through the external identity provider.
type User struct {
	BaseModel
	Name    string `gorm:"type:varchar(255)" json:"name"`
	Email   string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Picture string `gorm:"type:varchar(1024)" json:"picture"`
}
