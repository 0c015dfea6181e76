package service_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-store-catalog/internal/events"
	"go-store-catalog/internal/model"
	"go-store-catalog/internal/repository"
	"go-store-catalog/internal/service"
	"go-store-catalog/internal/storage"
	"go-store-catalog/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recorder struct {
	events []events.Event
}

func (r *recorder) Publish(evt events.Event) { r.events = append(r.events, evt) }

func (r *recorder) actions() []string {
	var out []string
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

// flakyStorage wraps a real disk store. When failTrash is n > 0 the n-th
// following Trash call fails.
type flakyStorage struct {
	*storage.Local
	failTrash int
}

func (f *flakyStorage) Trash(ctx context.Context, name string) error {
	if f.failTrash > 0 {
		f.failTrash--
		if f.failTrash == 0 {
			return errors.New("disk unavailable")
		}
	}
	return f.Local.Trash(ctx, name)
}

type fixture struct {
	db         *gorm.DB
	dir        string
	files      *flakyStorage
	published  *recorder
	users      repository.UserRepository
	categories repository.CategoryRepository
	products   repository.ProductRepository
	photos     repository.PhotoRepository
	allocator  service.SKUAllocator
	identity   service.IdentityResolver
	categorySv service.CategoryService
	productSv  service.ProductService
	catalogSv  service.CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := database.NewTestDB(t)
	dir := t.TempDir()
	local, err := storage.NewLocal(dir)
	require.NoError(t, err)

	f := &fixture{
		db:         db,
		dir:        dir,
		files:      &flakyStorage{Local: local},
		published:  &recorder{},
		users:      repository.NewUserRepo(db),
		categories: repository.NewCategoryRepo(db),
		products:   repository.NewProductRepo(db),
		photos:     repository.NewPhotoRepo(db),
	}
	f.allocator = service.NewSKUAllocator(f.categories, f.products)
	f.identity = service.NewIdentityResolver(f.users)
	f.categorySv = service.NewCategoryService(f.categories, f.products, f.photos, f.allocator, f.files, db, f.published, nil)
	f.productSv = service.NewProductService(f.categories, f.products, f.photos, f.allocator, f.files, db, f.published, nil)
	f.catalogSv = service.NewCatalogService(f.categories, f.products, f.files)
	return f
}

func (f *fixture) login(t *testing.T, email string) *model.Session {
	t.Helper()
	user, err := f.identity.Resolve(email, strings.Split(email, "@")[0], "")
	require.NoError(t, err)
	return &model.Session{UserID: user.ID, Email: user.Email, Name: user.Name}
}

func (f *fixture) category(t *testing.T, owner *model.Session, name, code string) *model.Category {
	t.Helper()
	c, err := f.categorySv.Create(owner, service.CategoryInput{Name: name, SKUCode: code})
	require.NoError(t, err)
	return c
}

func (f *fixture) product(t *testing.T, owner *model.Session, category *model.Category, sku string) *model.Product {
	t.Helper()
	p, err := f.productSv.Create(context.Background(), owner, service.ProductInput{
		Name:       "Item " + sku,
		SKU:        sku,
		Price:      price("9.99"),
		Status:     model.StatusActive,
		CategoryID: category.ID,
	})
	require.NoError(t, err)
	return p
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func photo(name string) *service.Upload {
	return &service.Upload{Filename: name, Reader: strings.NewReader("fake image bytes")}
}

func (f *fixture) storedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}

func (f *fixture) readFile(t *testing.T, name string) string {
	t.Helper()
	rc, err := os.Open(filepath.Join(f.dir, name))
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func (f *fixture) count(t *testing.T, value interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(value).Count(&n).Error)
	return n
}
