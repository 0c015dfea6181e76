package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-store-catalog/internal/events"
	"go-store-catalog/internal/model"
	"go-store-catalog/internal/render"
	"go-store-catalog/internal/repository"
	"go-store-catalog/internal/storage"
	"go-store-catalog/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const msgDuplicateCode = "SKU code must be unique"

type CategoryInput struct {
	Name    string `validate:"required,max=255"`
	SKUCode string `validate:"required,skucode"`
}

type CategoryService interface {
	Create(session *model.Session, in CategoryInput) (*model.Category, error)
	Update(session *model.Session, id uuid.UUID, in CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, session *model.Session, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	photoRepo    repository.PhotoRepository
	allocator    SKUAllocator
	files        storage.FileStorage
	db           *gorm.DB
	publisher    events.Publisher
	log          *zap.Logger
}

func NewCategoryService(cRepo repository.CategoryRepository, pRepo repository.ProductRepository, phRepo repository.PhotoRepository, alloc SKUAllocator, files storage.FileStorage, db *gorm.DB, pub events.Publisher, log *zap.Logger) CategoryService {
	if pub == nil {
		pub = events.Nop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &categoryService{
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

func (in *CategoryInput) normalize() {
	in.Name = strings.TrimSpace(render.PlainText(in.Name))
	in.SKUCode = strings.TrimSpace(in.SKUCode)
}

func (s *categoryService) Create(session *model.Session, in CategoryInput) (*model.Category, error) {
	if err := requireLogin(session); err != nil {
		return nil, err
	}
	in.normalize()
	if errs := validator.ValidateStruct(&in); len(errs) > 0 {
		return nil, validationError("%s", validator.Message(errs))
	}

	category := &model.Category{Name: in.Name, SKUCode: in.SKUCode, UserID: session.UserID}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		unique, err := s.allocator.WithTx(tx).IsUniqueCategoryCode(category.SKUCode)
		if err != nil {
			return err
		}
		if !unique {
			return validationError(msgDuplicateCode)
		}
		return s.categoryRepo.WithTx(tx).Create(category)
	})
	if err != nil {
		return nil, categoryWriteError(err)
	}

	s.publish(session, events.CategoryCreated, category,
		fmt.Sprintf("%s created category '%s'", actorName(session), category.Name))
	return category, nil
}

// Update edits a category in place. The code is frozen once the category holds products.
func (s *categoryService) Update(session *model.Session, id uuid.UUID, in CategoryInput) (*model.Category, error) {
	if err := requireLogin(session); err != nil {
		return nil, err
	}
	in.normalize()

	var category *model.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		category, err = s.categoryRepo.WithTx(tx).FindByID(id)
		if err != nil {
			return lookupError("category", err)
		}
		if err := authorize(session, category, "edit this category"); err != nil {
			return err
		}
		if errs := validator.ValidateStruct(&in); len(errs) > 0 {
			return validationError("%s", validator.Message(errs))
		}

		if in.SKUCode != category.SKUCode {
			count, err := s.productRepo.WithTx(tx).CountByCategory(category.ID)
			if err != nil {
				return storageError("failed to count category products", err)
			}
			if count > 0 {
				return validationError("SKU code cannot change once the category has products")
			}
			unique, err := s.allocator.WithTx(tx).IsUniqueCategoryCode(in.SKUCode)
			if err != nil {
				return err
			}
			if !unique {
				return validationError(msgDuplicateCode)
			}
		}

		category.Name = in.Name
		category.SKUCode = in.SKUCode
		return s.categoryRepo.WithTx(tx).Update(category)
	})
	if err != nil {
		return nil, categoryWriteError(err)
	}

	s.publish(session, events.CategoryUpdated, category,
		fmt.Sprintf("%s updated category '%s'", actorName(session), category.Name))
	return category, nil
}

// Delete removes the category with all of its products and their photos.
func (s *categoryService) Delete(ctx context.Context, session *model.Session, id uuid.UUID) error {
	if err := requireLogin(session); err != nil {
		return err
	}

	var (
		category *model.Category
		removed  int
	)
	plan := newDeletionPlan(ctx, s.categoryRepo, s.productRepo, s.photoRepo, s.files, s.log)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		category, err = s.categoryRepo.WithTx(tx).FindByID(id)
		if err != nil {
			return lookupError("category", err)
		}
		if err := authorize(session, category, "delete this category"); err != nil {
			return err
		}
		removed, err = plan.in(tx).deleteCategory(category)
		return err
	})
	plan.settle(err)
	if err != nil {
		return err
	}

	s.publish(session, events.CategoryDeleted, category,
		fmt.Sprintf("%s deleted category '%s' and %d product(s)", actorName(session), category.Name, removed))
	return nil
}

func (s *categoryService) publish(session *model.Session, action string, c *model.Category, msg string) {
	s.publisher.Publish(events.Event{
		Type:   events.TypeCatalogUpdate,
		Action: action,
		Entity: map[string]interface{}{
			"id":       c.ID,
			"name":     c.Name,
			"sku_code": c.SKUCode,
		},
		User:    actor(session),
		Message: msg,
		At:      time.Now(),
	})
}

func categoryWriteError(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return validationError(msgDuplicateCode)
	}
	return storageError("failed to save category", err)
}

func actor(session *model.Session) events.Actor {
	return events.Actor{ID: session.UserID.String(), Name: session.Name, Email: session.Email}
}

func actorName(session *model.Session) string {
	if session.Name != "" {
		return session.Name
	}
	return session.Email
}
