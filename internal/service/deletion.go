package service

import (
	"context"

	"go-store-catalog/internal/model"
	"go-store-catalog/internal/repository"
	"go-store-catalog/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deletionPlan removes catalog rows in dependency order inside one transaction:
// photos, then products, then the category.
// Photo files are trashed while the transaction runs. settle purges them once it
// commits and restores them when it rolls back, so a row never outlives its file.
type deletionPlan struct {
	ctx        context.Context
	categories repository.CategoryRepository
	products   repository.ProductRepository
	photos     repository.PhotoRepository
	files      storage.FileStorage
	log        *zap.Logger
	trashed    []string
}

func newDeletionPlan(ctx context.Context, c repository.CategoryRepository, p repository.ProductRepository, ph repository.PhotoRepository, files storage.FileStorage, log *zap.Logger) *deletionPlan {
	return &deletionPlan{
		ctx:        ctx,
		categories: c,
		products:   p,
		photos:     ph,
		files:      files,
		log:        log,
	}
}

// in binds the repositories to tx.
func (p *deletionPlan) in(tx *gorm.DB) *deletionPlan {
	p.categories = p.categories.WithTx(tx)
	p.products = p.products.WithTx(tx)
	p.photos = p.photos.WithTx(tx)
	return p
}

func (p *deletionPlan) deletePhotos(productID uuid.UUID) error {
	photos, err := p.photos.FindByProduct(productID)
	if err != nil {
		return storageError("failed to load product photos", err)
	}
	for _, photo := range photos {
		if err := p.files.Trash(p.ctx, photo.Filename); err != nil {
			return storageError("failed to remove photo "+photo.Filename, err)
		}
		p.trashed = append(p.trashed, photo.Filename)
		if err := p.photos.Delete(photo.ID); err != nil {
			return storageError("failed to delete photo record", err)
		}
	}
	return nil
}

func (p *deletionPlan) deleteProduct(product *model.Product) error {
	if err := p.deletePhotos(product.ID); err != nil {
		return err
	}
	if err := p.products.Delete(product.ID); err != nil {
		return lookupError("product", err)
	}
	return nil
}

func (p *deletionPlan) deleteCategory(category *model.Category) (int, error) {
	products, err := p.products.FindByCategory(category.ID, nil)
	if err != nil {
		return 0, storageError("failed to load category products", err)
	}
	for i := range products {
		if err := p.deleteProduct(&products[i]); err != nil {
			return 0, err
		}
	}
	if err := p.categories.Delete(category.ID); err != nil {
		return 0, lookupError("category", err)
	}
	return len(products), nil
}

// settle finishes the file side once the transaction outcome is known.
func (p *deletionPlan) settle(txErr error) {
	for _, name := range p.trashed {
		if txErr != nil {
			if err := p.files.Restore(p.ctx, name); err != nil {
				p.log.Error("failed to restore photo after rollback", zap.String("file", name), zap.Error(err))
			}
			continue
		}
		if err := p.files.Purge(p.ctx, name); err != nil {
			p.log.Warn("failed to purge deleted photo", zap.String("file", name), zap.Error(err))
		}
	}
	p.trashed = nil
}
