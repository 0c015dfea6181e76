package service_test

import (
	"context"
	"strings"
	"testing"

	"go-store-catalog/internal/events"
	"go-store-catalog/internal/model"
	"go-store-catalog/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	f := newFixture(t)
	owner := f.login(t, "owner@example.com")

	c, err := f.categorySv.Create(owner, service.CategoryInput{Name: " <b>Books</b> ", SKUCode: "BK"})
	require.NoError(t, err)
	assert.Equal(t, "Books", c.Name)
	assert.Equal(t, owner.UserID, c.UserID)
	assert.Equal(t, []string{events.CategoryCreated}, f.published.actions())

	_, err = f.categorySv.Create(owner, service.CategoryInput{Name: "Other books", SKUCode: "BK"})
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Equal(t, "SKU code must be unique", service.Message(err))
	assert.Equal(t, int64(1), f.count(t, &model.Category{}))
}

func TestCategoryService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.login(t, "owner@example.com")

	_, err := f.categorySv.Create(nil, service.CategoryInput{Name: "Books", SKUCode: "BK"})
	assert.ErrorIs(t, err, service.ErrAuthRequired)

	_, err = f.categorySv.Create(owner, service.CategoryInput{Name: "", SKUCode: "BK"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.categorySv.Create(owner, service.CategoryInput{Name: "Books", SKUCode: "B K"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.categorySv.Create(owner, service.CategoryInput{Name: "Books", SKUCode: strings.Repeat("A", 11)})
	assert.ErrorIs(t, err, service.ErrValidation)

	assert.Equal(t, int64(0), f.count(t, &model.Category{}))
}

func TestCategoryService_UpdateInPlace(t *testing.T) {
	f := newFixture(t)
	owner := f.login(t, "owner@example.com")
	books := f.category(t, owner, "Books", "BK")

	updated, err := f.categorySv.Update(owner, books.ID, service.CategoryInput{Name: "Novels", SKUCode: "NV"})
	require.NoError(t, err)
	assert.Equal(t, books.ID, updated.ID)

	stored, err := f.categories.FindByID(books.ID)
	require.NoError(t, err)
	assert.Equal(t, "Novels", stored.Name)
	assert.Equal(t, "NV", stored.SKUCode)
	assert.Equal(t, int64(1), f.count(t, &model.Category{}))
}

func TestCategoryService_CodeFrozenOnceProductsExist(t *testing.T) {
	f := newFixture(t)
	owner := f.login(t, "owner@example.com")
	books := f.category(t, owner, "Books", "BK")
	f.product(t, owner, books, "")

	_, err := f.categorySv.Update(owner, books.ID, service.CategoryInput{Name: "Books", SKUCode: "NV"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.categorySv.Update(owner, books.ID, service.CategoryInput{Name: "Fine books", SKUCode: "BK"})
	require.NoError(t, err, "renaming keeps the code")

	stored, err := f.categories.FindByID(books.ID)
	require.NoError(t, err)
	assert.Equal(t, "BK", stored.SKUCode)
	assert.Equal(t, "Fine books", stored.Name)
}

func TestCategoryService_UpdateDuplicateCode(t *testing.T) {
	f := newFixture(t)
	owner := f.login(t, "owner@example.com")
	f.category(t, owner, "Books", "BK")
	movies := f.category(t, owner, "Movies", "MV")

	_, err := f.categorySv.Update(owner, movies.ID, service.CategoryInput{Name: "Movies", SKUCode: "BK"})
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Equal(t, "SKU code must be unique", service.Message(err))
}

func TestCategoryService_NonOwnerCannotMutate(t *testing.T) {
	f := newFixture(t)
	owner := f.login(t, "owner@example.com")
	intruder := f.login(t, "intruder@example.com")
	books := f.category(t, owner, "Books", "BK")
	f.product(t, owner, books, "")

	_, err := f.categorySv.Update(intruder, books.ID, service.CategoryInput{Name: "Mine", SKUCode: "XX"})
	assert.ErrorIs(t, err, service.ErrForbidden)
	assert.Equal(t, "You do not have permission to edit this category.", service.Message(err))

	_, err = f.categorySv.Update(intruder, books.ID, service.CategoryInput{})
	assert.ErrorIs(t, err, service.ErrForbidden, "rejected regardless of payload")

	err = f.categorySv.Delete(context.Background(), intruder, books.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	err = f.categorySv.Delete(context.Background(), nil, books.ID)
	assert.ErrorIs(t, err, service.ErrAuthRequired)

	stored, err := f.categories.FindByID(books.ID)
	require.NoError(t, err)
	assert.Equal(t, "Books", stored.Name)
	assert.Equal(t, "BK", stored.SKUCode)
	assert.Equal(t, int64(1), f.count(t, &model.Product{}))
}

func TestCategoryService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.login(t, "owner@example.com")
	books := f.category(t, owner, "Books", "BK")
	other := f.category(t, owner, "Movies", "MV")

	for i := 0; i < 2; i++ {
		_, err := f.productSv.Create(ctx, owner, service.ProductInput{
			Name: "Book", CategoryID: books.ID, Photo: photo("cover.png"),
		})
		require.NoError(t, err)
	}
	kept := f.product(t, owner, other, "")
	require.Len(t, f.storedFiles(t), 2)

	require.NoError(t, f.categorySv.Delete(ctx, owner, books.ID))

	assert.Equal(t, int64(1), f.count(t, &model.Category{}))
	assert.Equal(t, int64(1), f.count(t, &model.Product{}))
	assert.Equal(t, int64(0), f.count(t, &model.ProductPhoto{}))
	assert.Empty(t, f.storedFiles(t))

	_, err := f.products.FindByID(kept.ID)
	assert.NoError(t, err)

	last := f.published.events[len(f.published.events)-1]
	assert.Equal(t, events.CategoryDeleted, last.Action)
	assert.Contains(t, last.Message, "2 product(s)")

	// the code is released with the row
	f.category(t, owner, "Books again", "BK")
}

func TestCategoryService_DeleteAbortsOnStorageFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.login(t, "owner@example.com")
	books := f.category(t, owner, "Books", "BK")
	_, err := f.productSv.Create(ctx, owner, service.ProductInput{
		Name: "Book", CategoryID: books.ID, Photo: photo("cover.jpg"),
	})
	require.NoError(t, err)

	f.files.failTrash = 1
	err = f.categorySv.Delete(ctx, owner, books.ID)
	assert.ErrorIs(t, err, service.ErrStorage)

	assert.Equal(t, int64(1), f.count(t, &model.Category{}))
	assert.Equal(t, int64(1), f.count(t, &model.Product{}))
	assert.Equal(t, int64(1), f.count(t, &model.ProductPhoto{}))
	assert.Len(t, f.storedFiles(t), 1)
}

func TestCategoryService_DeleteRestoresFilesOnLaterFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.login(t, "owner@example.com")
	books := f.category(t, owner, "Books", "BK")
	for i := 0; i < 2; i++ {
		_, err := f.productSv.Create(ctx, owner, service.ProductInput{
			Name: "Book", CategoryID: books.ID, Photo: photo("cover.jpg"),
		})
		require.NoError(t, err)
	}

	f.files.failTrash = 2
	err := f.categorySv.Delete(ctx, owner, books.ID)
	assert.ErrorIs(t, err, service.ErrStorage)

	assert.Equal(t, int64(1), f.count(t, &model.Category{}))
	assert.Equal(t, int64(2), f.count(t, &model.Product{}))
	var photos []model.ProductPhoto
	require.NoError(t, f.db.Find(&photos).Error)
	require.Len(t, photos, 2)
	for _, p := range photos {
		assert.Equal(t, "fake image bytes", f.readFile(t, p.Filename), "every surviving row keeps its file")
	}
}

func TestCategoryService_DeleteMissing(t *testing.T) {
	f := newFixture(t)
	owner := f.login(t, "owner@example.com")

	err := f.categorySv.Delete(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
