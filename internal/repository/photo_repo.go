package repository

import (
	"go-store-catalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PhotoRepository interface {
	Create(photo *model.ProductPhoto) error
	FindByProduct(productID uuid.UUID) ([]model.ProductPhoto, error)
	CountByProduct(productID uuid.UUID) (int64, error)
	Delete(id uuid.UUID) error
	WithTx(tx *gorm.DB) PhotoRepository
}

type photoRepo struct {
	db *gorm.DB
}

func NewPhotoRepo(db *gorm.DB) PhotoRepository {
	return &photoRepo{db}
}

func (r *photoRepo) WithTx(tx *gorm.DB) PhotoRepository {
	return &photoRepo{tx}
}

func (r *photoRepo) Create(photo *model.ProductPhoto) error {
	return r.db.Create(photo).Error
}

// FindByProduct lists photos in display order.
func (r *photoRepo) FindByProduct(productID uuid.UUID) ([]model.ProductPhoto, error) {
	var photos []model.ProductPhoto
	err := r.db.Where("product_id = ?", productID).Order("order_placement ASC").Find(&photos).Error
	return photos, err
}

func (r *photoRepo) CountByProduct(productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.ProductPhoto{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *photoRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.ProductPhoto{}, "id = ?", id).Error
}
