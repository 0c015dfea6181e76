package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go-store-catalog/internal/handler"
	"go-store-catalog/internal/middleware"
	"go-store-catalog/internal/model"
	"go-store-catalog/internal/oauth"
	"go-store-catalog/internal/repository"
	"go-store-catalog/internal/service"
	"go-store-catalog/internal/storage"
	"go-store-catalog/internal/ws"
	"go-store-catalog/pkg/database"
	"go-store-catalog/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const flashCookie = "catalog_flash"

type fakeProvider struct {
	identity *oauth.Identity
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.test/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*oauth.Identity, error) {
	if code != "good-code" {
		return nil, oauth.ErrExchangeFailed
	}
	return p.identity, nil
}

type testEnv struct {
	app  *fiber.App
	db   *gorm.DB
	auth service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.NewTestDB(t)
	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	userRepo := repository.NewUserRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	photoRepo := repository.NewPhotoRepo(db)

	allocator := service.NewSKUAllocator(categoryRepo, productRepo)
	authService := service.NewAuthService(service.NewIdentityResolver(userRepo), userRepo, jwt.NewManager("test-secret", time.Hour))
	flash := middleware.NewFlash(session.New(session.Config{KeyLookup: "cookie:" + flashCookie}))
	provider := &fakeProvider{identity: &oauth.Identity{Email: "ann@example.com", Name: "Ann"}}

	routes := handler.Routes{
		Auth:     handler.NewAuthHandler(authService, provider, flash, nil, false, time.Hour),
		Catalog:  handler.NewCatalogHandler(service.NewCatalogService(categoryRepo, productRepo, files), flash, nil),
		Category: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, productRepo, photoRepo, allocator, files, db, nil, nil), flash, nil),
		Product:  handler.NewProductHandler(service.NewProductService(categoryRepo, productRepo, photoRepo, allocator, files, db, nil, nil), flash, nil, 1<<20),
		Stats:    handler.NewStatsHandler(service.NewStatsService(productRepo)),
		Hub:      ws.NewHub(nil),
	}
	go routes.Hub.Run()
	t.Cleanup(routes.Hub.Stop)

	app := fiber.New()
	routes.Register(app, authService)
	return &testEnv{app: app, db: db, auth: authService}
}

// client is a tiny cookie jar around app.Test.
type client struct {
	t       *testing.T
	env     *testEnv
	cookies map[string]string
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, env: e, cookies: map[string]string{}}
}

func (e *testEnv) loggedIn(t *testing.T, email string) *client {
	t.Helper()
	resp, err := e.auth.Login(email, strings.Split(email, "@")[0], "")
	require.NoError(t, err)
	c := e.client(t)
	c.cookies[middleware.SessionCookie] = resp.Token
	return c
}

func (c *client) do(req *http.Request) *http.Response {
	c.t.Helper()
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := c.env.app.Test(req, -1)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (c *client) get(path string) *http.Response {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, values url.Values) *http.Response {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postMultipart(path string, values map[string]string, photoName string) *http.Response {
	c.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range values {
		require.NoError(c.t, w.WriteField(k, v))
	}
	if photoName != "" {
		part, err := w.CreateFormFile("photo", photoName)
		require.NoError(c.t, err)
		_, err = part.Write([]byte("png bytes"))
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func (c *client) json(resp *http.Response) map[string]interface{} {
	c.t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// flashes reads the pending messages through the latest view.
func (c *client) flashes() []string {
	c.t.Helper()
	body := c.json(c.get("/catalog"))
	var out []string
	for _, m := range body["flashes"].([]interface{}) {
		out = append(out, m.(string))
	}
	return out
}

func (e *testEnv) categoryByCode(t *testing.T, code string) *model.Category {
	t.Helper()
	c, err := repository.NewCategoryRepo(e.db).FindBySKUCode(code)
	require.NoError(t, err)
	return c
}

func (e *testEnv) productBySKU(t *testing.T, sku string) (*model.Product, error) {
	t.Helper()
	return repository.NewProductRepo(e.db).FindBySKU(sku)
}

func TestAnonymousMutationRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)
	anon := env.client(t)

	resp := anon.postForm("/categories", url.Values{"name": {"Books"}, "sku_code": {"BK"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	var n int64
	require.NoError(t, env.db.Model(&model.Category{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAnonymousReadsAreNotGated(t *testing.T) {
	env := newTestEnv(t)
	anon := env.client(t)

	resp := anon.get("/no-such-page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Location"))

	// a plain GET reaches the websocket endpoint and is asked to upgrade
	resp = anon.get("/ws")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)

	resp = anon.get("/catalog.json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	browser := env.client(t)

	login := browser.json(browser.get("/login"))
	state := login["state"].(string)
	require.NotEmpty(t, state)
	assert.Contains(t, login["auth_url"], url.QueryEscape(state))

	resp := browser.get("/gconnect?state=wrong&code=good-code")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// a failed attempt consumes the state
	state = browser.json(browser.get("/login"))["state"].(string)
	resp = browser.get("/gconnect?state=" + url.QueryEscape(state) + "&code=good-code")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/catalog", resp.Header.Get("Location"))
	require.Contains(t, browser.cookies, middleware.SessionCookie)

	me := browser.json(browser.get("/me"))
	assert.Equal(t, "ann@example.com", me["email"])
	assert.Equal(t, []string{"You are now logged in as ann@example.com"}, browser.flashes())

	resp = browser.get("/disconnect")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.NotContains(t, browser.cookies, middleware.SessionCookie)
	assert.Equal(t, []string{"You have successfully been logged out."}, browser.flashes())

	assert.Equal(t, http.StatusUnauthorized, browser.get("/me").StatusCode)
	browser.get("/disconnect")
	assert.Equal(t, []string{"You were not logged in"}, browser.flashes())
}

func TestGConnectRejectsBadCode(t *testing.T) {
	env := newTestEnv(t)
	browser := env.client(t)

	state := browser.json(browser.get("/login"))["state"].(string)
	resp := browser.get("/gconnect?state=" + url.QueryEscape(state) + "&code=bad")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotContains(t, browser.cookies, middleware.SessionCookie)
}

func TestCatalogScenario(t *testing.T) {
	env := newTestEnv(t)
	owner := env.loggedIn(t, "owner@example.com")

	resp := owner.postForm("/categories", url.Values{"name": {"Books"}, "sku_code": {"BK"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, []string{"New category Books successfully created"}, owner.flashes())
	books := env.categoryByCode(t, "BK")

	owner.postForm("/categories", url.Values{"name": {"More books"}, "sku_code": {"BK"}})
	assert.Equal(t, []string{"SKU code must be unique"}, owner.flashes())

	form := map[string]string{"name": "Dune", "price": "9.99", "status": "active", "category_id": books.ID.String()}
	resp = owner.postMultipart("/products", form, "cover.png")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	first, err := env.productBySKU(t, "BK-1")
	require.NoError(t, err)
	assert.Equal(t, "/catalog/products/"+first.ID.String(), resp.Header.Get("Location"))

	owner.postMultipart("/products", form, "")
	_, err = env.productBySKU(t, "BK-2")
	require.NoError(t, err)

	form["sku"] = "BK-2"
	owner.postMultipart("/products", form, "")
	flashes := owner.flashes()
	assert.Contains(t, flashes, "SKU must be unique")

	page := owner.json(owner.get("/catalog/products/" + first.ID.String()))
	assert.Equal(t, true, page["user_can_edit"])
	photo := page["photo"].(map[string]interface{})
	upload := owner.get("/uploads/" + photo["filename"].(string))
	assert.Equal(t, http.StatusOK, upload.StatusCode)
	body, err := io.ReadAll(upload.Body)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(body))

	visitor := env.client(t)
	page = visitor.json(visitor.get("/catalog/products/" + first.ID.String()))
	assert.Equal(t, false, page["user_can_edit"])
	assert.Nil(t, page["user"])

	items := visitor.json(visitor.get("/categories/" + books.ID.String() + "/items.json"))
	assert.Len(t, items["items"], 2)

	stats := visitor.json(visitor.get("/stats"))
	assert.Equal(t, float64(2), stats["total_products"])
}

func TestNonOwnerIsTurnedAway(t *testing.T) {
	env := newTestEnv(t)
	owner := env.loggedIn(t, "owner@example.com")
	intruder := env.loggedIn(t, "intruder@example.com")

	owner.postForm("/categories", url.Values{"name": {"Books"}, "sku_code": {"BK"}})
	books := env.categoryByCode(t, "BK")
	back := "/catalog/categories/" + books.ID.String()

	resp := intruder.postForm(back[len("/catalog"):]+"/edit", url.Values{"name": {"Mine"}, "sku_code": {"MN"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, back, resp.Header.Get("Location"))
	assert.Equal(t, []string{"You do not have permission to edit this category."}, intruder.flashes())

	resp = intruder.postForm(back[len("/catalog"):]+"/delete", nil)
	assert.Equal(t, back, resp.Header.Get("Location"))

	stored := env.categoryByCode(t, "BK")
	assert.Equal(t, "Books", stored.Name)

	page := intruder.json(intruder.get(back))
	assert.Equal(t, false, page["user_can_edit"])
}

func TestProductDeleteAndNotFound(t *testing.T) {
	env := newTestEnv(t)
	owner := env.loggedIn(t, "owner@example.com")
	owner.postForm("/categories", url.Values{"name": {"Books"}, "sku_code": {"BK"}})
	books := env.categoryByCode(t, "BK")
	owner.postMultipart("/products", map[string]string{"name": "Dune", "category_id": books.ID.String()}, "a.png")
	p, err := env.productBySKU(t, "BK-1")
	require.NoError(t, err)

	resp := owner.postForm("/products/"+p.ID.String()+"/delete", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/catalog", resp.Header.Get("Location"))

	_, err = env.productBySKU(t, "BK-1")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	assert.Equal(t, http.StatusNotFound, owner.postForm("/products/"+p.ID.String()+"/delete", nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, owner.get("/catalog/products/"+p.ID.String()).StatusCode)
	assert.Equal(t, http.StatusNotFound, owner.get("/catalog/products/not-a-uuid").StatusCode)
	assert.Equal(t, http.StatusNotFound, owner.get("/uploads/missing.png").StatusCode)
}
