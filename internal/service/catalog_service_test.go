package service_test

import (
	"context"
	"io"
	"testing"

	"go-store-catalog/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_Pages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.login(t, "owner@example.com")
	visitor := f.login(t, "visitor@example.com")
	books := f.category(t, owner, "Books", "BK")
	f.category(t, owner, "Art", "AR")

	dune, err := f.productSv.Create(ctx, owner, service.ProductInput{
		Name: "Dune", CategoryID: books.ID, Description: "**spice** <script>alert(1)</script>", Photo: photo("dune.png"),
	})
	require.NoError(t, err)
	_, err = f.productSv.Create(ctx, owner, service.ProductInput{Name: "Atlas", CategoryID: books.ID, Status: "inactive"})
	require.NoError(t, err)

	latest, err := f.catalogSv.Latest()
	require.NoError(t, err)
	require.Len(t, latest.Categories, 2)
	assert.Equal(t, "Art", latest.Categories[0].Name)
	assert.Len(t, latest.Products, 2)

	all, err := f.catalogSv.All()
	require.NoError(t, err)
	assert.Len(t, all.Products, 2)

	page, err := f.catalogSv.CategoryPage(books.ID, owner)
	require.NoError(t, err)
	assert.True(t, page.UserCanEdit)
	require.Len(t, page.ActiveProducts, 1)
	assert.Equal(t, "Dune", page.ActiveProducts[0].Name)
	require.Len(t, page.InactiveProducts, 1)
	assert.Equal(t, "Atlas", page.InactiveProducts[0].Name)

	page, err = f.catalogSv.CategoryPage(books.ID, visitor)
	require.NoError(t, err)
	assert.False(t, page.UserCanEdit)

	productPage, err := f.catalogSv.ProductPage(dune.ID, nil)
	require.NoError(t, err)
	assert.False(t, productPage.UserCanEdit)
	assert.Equal(t, "Books", productPage.Category.Name)
	require.NotNil(t, productPage.Photo)
	assert.Contains(t, productPage.DescriptionHTML, "<strong>spice</strong>")
	assert.NotContains(t, productPage.DescriptionHTML, "<script>")

	items, err := f.catalogSv.CategoryItems(books.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	withProducts, err := f.catalogSv.CategoriesWithProducts()
	require.NoError(t, err)
	assert.Len(t, withProducts[1].Products, 2)

	rc, err := f.catalogSv.OpenPhoto(ctx, productPage.Photo.Filename)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(body))
}

func TestCatalogService_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalogSv.CategoryPage(uuid.New(), nil)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.catalogSv.ProductPage(uuid.New(), nil)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.catalogSv.CategoryItems(uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.catalogSv.OpenPhoto(ctx, "missing.png")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.catalogSv.OpenPhoto(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestStatsService(t *testing.T) {
	f := newFixture(t)
	owner := f.login(t, "owner@example.com")
	books := f.category(t, owner, "Books", "BK")
	f.product(t, owner, books, "")
	_, err := f.productSv.Create(context.Background(), owner, service.ProductInput{Name: "Old", CategoryID: books.ID, Status: "inactive"})
	require.NoError(t, err)

	stats, err := service.NewStatsService(f.products).GetCatalogStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalCategories)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.InactiveProducts)
}
