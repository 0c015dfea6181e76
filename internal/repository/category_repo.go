package repository

import (
	"go-store-catalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(category *model.Category) error
	FindAll() ([]model.Category, error)
	FindAllWithProducts() ([]model.Category, error)
	FindByID(id uuid.UUID) (*model.Category, error)
	FindBySKUCode(code string) (*model.Category, error)
	Update(category *model.Category) error
	Delete(id uuid.UUID) error
	WithTx(tx *gorm.DB) CategoryRepository
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) WithTx(tx *gorm.DB) CategoryRepository {
	return &categoryRepo{tx}
}

func (r *categoryRepo) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

// FindAll lists categories by name.
func (r *categoryRepo) FindAll() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) FindAllWithProducts() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	}).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) FindByID(id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.Take(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) FindBySKUCode(code string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Take(&category, "sku_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Update writes the editable columns only; the owner is never reassigned.
func (r *categoryRepo) Update(category *model.Category) error {
	return r.db.Model(&model.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":     category.Name,
			"sku_code": category.SKUCode,
		}).Error
}

func (r *categoryRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.Category{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
