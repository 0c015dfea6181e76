package repository

import (
	"go-store-catalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindLatest() ([]model.Product, error)
	FindAllByCategoryAndName() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	FindByCategory(categoryID uuid.UUID, active *bool) ([]model.Product, error)
	FindHighestSKU(categoryID uuid.UUID) (*model.Product, error)
	CountByCategory(categoryID uuid.UUID) (int64, error)
	Update(product *model.Product) error
	Delete(id uuid.UUID) error
	GetStats() (*CatalogStats, error)
	WithTx(tx *gorm.DB) ProductRepository
}

// CatalogStats untuk overview stats
type CatalogStats struct {
	TotalCategories  int64 `json:"total_categories"`
	TotalProducts    int64 `json:"total_products"`
	ActiveProducts   int64 `json:"active_products"`
	InactiveProducts int64 `json:"inactive_products"`
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Omit("Category", "User", "Photos").Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("name ASC").Find(&products).Error
	return products, err
}

// FindLatest lists products newest first.
func (r *productRepo) FindLatest() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Category").Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindAllByCategoryAndName() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Category").Order("category_id ASC").Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_placement ASC")
		}).
		Take(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Take(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByCategory lists a category's products by name, optionally filtered on the active flag.
func (r *productRepo) FindByCategory(categoryID uuid.UUID, active *bool) ([]model.Product, error) {
	var products []model.Product
	q := r.db.Where("category_id = ?", categoryID)
	if active != nil {
		q = q.Where("active = ?", *active)
	}
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

// FindHighestSKU returns the category product with the numerically highest SKU.
// Longer SKUs sort first so that "BK-10" outranks "BK-9".
func (r *productRepo) FindHighestSKU(categoryID uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Where("category_id = ?", categoryID).
		Order("LENGTH(sku) DESC").
		Order("sku DESC").
		Limit(1).
		Take(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) CountByCategory(categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

// Update writes the editable columns only; the owner is never reassigned.
func (r *productRepo) Update(product *model.Product) error {
	return r.db.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"sku":         product.SKU,
			"price":       product.Price,
			"active":      product.Active,
			"description": product.Description,
			"category_id": product.CategoryID,
		}).Error
}

func (r *productRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) GetStats() (*CatalogStats, error) {
	var stats CatalogStats

	if err := r.db.Model(&model.Category{}).Count(&stats.TotalCategories).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).Where("active = ?", true).Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}
	stats.InactiveProducts = stats.TotalProducts - stats.ActiveProducts

	return &stats, nil
}
