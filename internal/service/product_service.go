package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go-store-catalog/internal/events"
	"go-store-catalog/internal/model"
	"go-store-catalog/internal/render"
	"go-store-catalog/internal/repository"
	"go-store-catalog/internal/storage"
	"go-store-catalog/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	msgDuplicateSKU = "SKU must be unique"

	// maxAllocAttempts bounds re-allocation when a concurrent insert takes the generated SKU.
	maxAllocAttempts = 3
)

// Upload is a photo submitted with a product form.
type Upload struct {
	Filename string
	Reader   io.Reader
}

type ProductInput struct {
	Name        string          `validate:"required,max=255"`
	SKU         string          `validate:"omitempty,sku"`
	Price       *decimal.Decimal `validate:"-"`
	Status      string          `validate:"omitempty,oneof=active inactive"`
	CategoryID  uuid.UUID       `validate:"uuid_required"`
	Description string
	Photo       *Upload `validate:"-"`
}

type ProductService interface {
	Create(ctx context.Context, session *model.Session, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, session *model.Session, id uuid.UUID, in ProductInput) (*model.Product, error)
	Delete(ctx context.Context, session *model.Session, id uuid.UUID) error
}

type productService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	photoRepo    repository.PhotoRepository
	allocator    SKUAllocator
	files        storage.FileStorage
	db           *gorm.DB
	publisher    events.Publisher
	log          *zap.Logger
}

func NewProductService(cRepo repository.CategoryRepository, pRepo repository.ProductRepository, phRepo repository.PhotoRepository, alloc SKUAllocator, files storage.FileStorage, db *gorm.DB, pub events.Publisher, log *zap.Logger) ProductService {
	if pub == nil {
		pub = events.Nop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &productService{
		categoryRepo: cRepo,
		productRepo:  pRepo,
		photoRepo:    phRepo,
		allocator:    alloc,
		files:        files,
		db:           db,
		publisher:    pub,
		log:          log,
	}
}

func (in *ProductInput) normalize() {
	in.Name = strings.TrimSpace(render.PlainText(in.Name))
	in.SKU = strings.TrimSpace(in.SKU)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.Description = strings.TrimSpace(in.Description)
}

func (in *ProductInput) validate() error {
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return validationError("%s", validator.Message(errs))
	}
	if in.Price != nil && in.Price.IsNegative() {
		return validationError("Price cannot be negative")
	}
	if in.Photo != nil && !storage.AllowedFile(in.Photo.Filename) {
		return validationError("Photo must be a png, jpg, jpeg or gif file")
	}
	return nil
}

// Create inserts a product owned by the session user. A blank SKU is allocated from the category.
func (s *productService) Create(ctx context.Context, session *model.Session, in ProductInput) (*model.Product, error) {
	if err := requireLogin(session); err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		product *model.Product
		stored  string
		err     error
	)
	auto := in.SKU == ""
	for attempt := 1; attempt <= maxAllocAttempts; attempt++ {
		product = &model.Product{
			Name:        in.Name,
			SKU:         in.SKU,
			Price:       in.price(),
			Active:      in.Status != model.StatusInactive,
			Description: in.Description,
			CategoryID:  in.CategoryID,
			UserID:      session.UserID,
		}
		err = s.db.Transaction(func(tx *gorm.DB) error {
			category, err := s.categoryRepo.WithTx(tx).FindByID(in.CategoryID)
			if err != nil {
				return lookupError("category", err)
			}
			product.Category = category

			alloc := s.allocator.WithTx(tx)
			if auto {
				if product.SKU, err = alloc.Allocate(category); err != nil {
					return err
				}
			} else {
				unique, err := alloc.IsUniqueProductSKU(product.SKU)
				if err != nil {
					return err
				}
				if !unique {
					return validationError(msgDuplicateSKU)
				}
			}

			if err := s.productRepo.WithTx(tx).Create(product); err != nil {
				return err
			}
			if in.Photo != nil {
				if stored == "" {
					if stored, err = s.saveUpload(ctx, in.Photo); err != nil {
						return err
					}
				}
				return s.attachPhoto(tx, product, stored)
			}
			return nil
		})
		if auto && errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Info("generated SKU taken concurrently, re-allocating",
				zap.String("sku", product.SKU), zap.Int("attempt", attempt))
			continue
		}
		break
	}
	if err != nil {
		s.discard(ctx, stored)
		return nil, productWriteError(err)
	}

	s.publish(session, events.ProductCreated, product,
		fmt.Sprintf("%s created product '%s'", actorName(session), product.Name))
	return product, nil
}

// Update edits an owned product. A blank SKU, price, status or category keeps the current value;
// a new photo replaces the old ones.
func (s *productService) Update(ctx context.Context, session *model.Session, id uuid.UUID, in ProductInput) (*model.Product, error) {
	if err := requireLogin(session); err != nil {
		return nil, err
	}
	in.normalize()

	var (
		product *model.Product
		stored  string
	)
	plan := newDeletionPlan(ctx, s.categoryRepo, s.productRepo, s.photoRepo, s.files, s.log)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.productRepo.WithTx(tx).FindByID(id)
		if err != nil {
			return lookupError("product", err)
		}
		if err := authorize(session, product, "edit this product"); err != nil {
			return err
		}
		if in.CategoryID == uuid.Nil {
			in.CategoryID = product.CategoryID
		}
		if err := in.validate(); err != nil {
			return err
		}

		if in.CategoryID != product.CategoryID {
			category, err := s.categoryRepo.WithTx(tx).FindByID(in.CategoryID)
			if err != nil {
				return lookupError("category", err)
			}
			product.CategoryID = category.ID
			product.Category = category
		}
		if in.SKU != "" && in.SKU != product.SKU {
			unique, err := s.allocator.WithTx(tx).IsUniqueProductSKU(in.SKU)
			if err != nil {
				return err
			}
			if !unique {
				return validationError(msgDuplicateSKU)
			}
			product.SKU = in.SKU
		}
		product.Name = in.Name
		if in.Price != nil {
			product.Price = *in.Price
		}
		product.Description = in.Description
		if in.Status != "" {
			product.Active = in.Status == model.StatusActive
		}
		if err := s.productRepo.WithTx(tx).Update(product); err != nil {
			return err
		}

		if in.Photo == nil {
			return nil
		}
		if stored, err = s.saveUpload(ctx, in.Photo); err != nil {
			return err
		}
		if err := plan.in(tx).deletePhotos(product.ID); err != nil {
			return err
		}
		return s.attachPhoto(tx, product, stored)
	})
	plan.settle(err)
	if err != nil {
		s.discard(ctx, stored)
		return nil, productWriteError(err)
	}

	s.publish(session, events.ProductUpdated, product,
		fmt.Sprintf("%s updated product '%s'", actorName(session), product.Name))
	return product, nil
}

// Delete removes an owned product after its photos.
func (s *productService) Delete(ctx context.Context, session *model.Session, id uuid.UUID) error {
	if err := requireLogin(session); err != nil {
		return err
	}

	var product *model.Product
	plan := newDeletionPlan(ctx, s.categoryRepo, s.productRepo, s.photoRepo, s.files, s.log)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.productRepo.WithTx(tx).FindByID(id)
		if err != nil {
			return lookupError("product", err)
		}
		if err := authorize(session, product, "delete this product"); err != nil {
			return err
		}
		return plan.in(tx).deleteProduct(product)
	})
	plan.settle(err)
	if err != nil {
		return err
	}

	s.publish(session, events.ProductDeleted, product,
		fmt.Sprintf("%s deleted product '%s'", actorName(session), product.Name))
	return nil
}

// price is the submitted price, zero when the field was left blank.
func (in *ProductInput) price() decimal.Decimal {
	if in.Price == nil {
		return decimal.Zero
	}
	return *in.Price
}

func (s *productService) saveUpload(ctx context.Context, up *Upload) (string, error) {
	name, err := s.files.Save(ctx, up.Filename, up.Reader)
	switch {
	case errors.Is(err, storage.ErrTypeNotAllowed), errors.Is(err, storage.ErrInvalidName):
		return "", validationError("Photo file name is not allowed")
	case err != nil:
		return "", storageError("failed to store photo", err)
	}
	return name, nil
}

func (s *productService) attachPhoto(tx *gorm.DB, product *model.Product, filename string) error {
	photo := model.ProductPhoto{Filename: filename, OrderPlacement: 1, ProductID: product.ID}
	if err := s.photoRepo.WithTx(tx).Create(&photo); err != nil {
		return storageError("failed to record photo", err)
	}
	product.Photos = []model.ProductPhoto{photo}
	return nil
}

// discard removes a file stored for a mutation that did not commit.
func (s *productService) discard(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.files.Delete(ctx, name); err != nil {
		s.log.Warn("failed to remove orphaned upload", zap.String("file", name), zap.Error(err))
	}
}

func (s *productService) publish(session *model.Session, action string, p *model.Product, msg string) {
	s.publisher.Publish(events.Event{
		Type:   events.TypeCatalogUpdate,
		Action: action,
		Entity: map[string]interface{}{
			"id":          p.ID,
			"name":        p.Name,
			"sku":         p.SKU,
			"price":       p.Price,
			"status":      p.Status(),
			"category_id": p.CategoryID,
		},
		User:    actor(session),
		Message: msg,
		At:      time.Now(),
	})
}

func productWriteError(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return validationError(msgDuplicateSKU)
	}
	return storageError("failed to save product", err)
}
