package service

import (
	"context"
	"errors"
	"io"

	"go-store-catalog/internal/model"
	"go-store-catalog/internal/render"
	"go-store-catalog/internal/repository"
	"go-store-catalog/internal/storage"

	"github.com/google/uuid"
)

// CatalogPage is a category listing with a product listing.
type CatalogPage struct {
	Categories []model.Category `json:"categories"`
	Products   []model.Product  `json:"products"`
}

type CategoryPage struct {
	Category         *model.Category  `json:"category"`
	Categories       []model.Category `json:"categories"`
	ActiveProducts   []model.Product  `json:"active_products"`
	InactiveProducts []model.Product  `json:"inactive_products"`
	UserCanEdit      bool             `json:"user_can_edit"`
}

type ProductPage struct {
	Product         *model.Product      `json:"product"`
	Category        *model.Category     `json:"category"`
	Photo           *model.ProductPhoto `json:"photo"`
	DescriptionHTML string              `json:"description_html"`
	UserCanEdit     bool                `json:"user_can_edit"`
}

// CatalogService serves the read side of the catalog.
type CatalogService interface {
	Latest() (*CatalogPage, error)
	All() (*CatalogPage, error)
	CategoryPage(id uuid.UUID, session *model.Session) (*CategoryPage, error)
	ProductPage(id uuid.UUID, session *model.Session) (*ProductPage, error)

	CategoriesWithProducts() ([]model.Category, error)
	Categories() ([]model.Category, error)
	Products() ([]model.Product, error)
	CategoryItems(id uuid.UUID) ([]model.Product, error)
	Category(id uuid.UUID) (*model.Category, error)
	Product(id uuid.UUID) (*model.Product, error)

	OpenPhoto(ctx context.Context, filename string) (io.ReadCloser, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	files        storage.FileStorage
}

func NewCatalogService(cRepo repository.CategoryRepository, pRepo repository.ProductRepository, files storage.FileStorage) CatalogService {
	return &catalogService{categoryRepo: cRepo, productRepo: pRepo, files: files}
}

func (s *catalogService) Latest() (*CatalogPage, error) {
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, storageError("failed to load categories", err)
	}
	products, err := s.productRepo.FindLatest()
	if err != nil {
		return nil, storageError("failed to load products", err)
	}
	return &CatalogPage{Categories: categories, Products: products}, nil
}

func (s *catalogService) All() (*CatalogPage, error) {
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, storageError("failed to load categories", err)
	}
	products, err := s.productRepo.FindAllByCategoryAndName()
	if err != nil {
		return nil, storageError("failed to load products", err)
	}
	return &CatalogPage{Categories: categories, Products: products}, nil
}

func (s *catalogService) CategoryPage(id uuid.UUID, session *model.Session) (*CategoryPage, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, lookupError("category", err)
	}
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, storageError("failed to load categories", err)
	}

	active, inactive := true, false
	activeProducts, err := s.productRepo.FindByCategory(id, &active)
	if err != nil {
		return nil, storageError("failed to load products", err)
	}
	inactiveProducts, err := s.productRepo.FindByCategory(id, &inactive)
	if err != nil {
		return nil, storageError("failed to load products", err)
	}

	return &CategoryPage{
		Category:         category,
		Categories:       categories,
		ActiveProducts:   activeProducts,
		InactiveProducts: inactiveProducts,
		UserCanEdit:      CanMutate(session, category),
	}, nil
}

func (s *catalogService) ProductPage(id uuid.UUID, session *model.Session) (*ProductPage, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, lookupError("product", err)
	}
	page := &ProductPage{
		Product:     product,
		Category:    product.Category,
		UserCanEdit: CanMutate(session, product),
	}
	if len(product.Photos) > 0 {
		page.Photo = &product.Photos[0]
	}
	page.DescriptionHTML = render.DescriptionHTML(product.Description)
	return page, nil
}

func (s *catalogService) CategoriesWithProducts() ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAllWithProducts()
	if err != nil {
		return nil, storageError("failed to load catalog", err)
	}
	return categories, nil
}

func (s *catalogService) Categories() ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, storageError("failed to load categories", err)
	}
	return categories, nil
}

func (s *catalogService) Products() ([]model.Product, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, storageError("failed to load products", err)
	}
	return products, nil
}

func (s *catalogService) CategoryItems(id uuid.UUID) ([]model.Product, error) {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		return nil, lookupError("category", err)
	}
	products, err := s.productRepo.FindByCategory(id, nil)
	if err != nil {
		return nil, storageError("failed to load products", err)
	}
	return products, nil
}

func (s *catalogService) Category(id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, lookupError("category", err)
	}
	return category, nil
}

func (s *catalogService) Product(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, lookupError("product", err)
	}
	return product, nil
}

func (s *catalogService) OpenPhoto(ctx context.Context, filename string) (io.ReadCloser, error) {
	rc, err := s.files.Open(ctx, filename)
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidName):
		return nil, notFoundError("photo")
	case err != nil:
		return nil, storageError("failed to open photo", err)
	}
	return rc, nil
}
