package handler

import (
	"go-store-catalog/internal/middleware"
	"go-store-catalog/internal/service"
	"go-store-catalog/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Routes groups the handlers mounted on the app.
type Routes struct {
	Auth     *AuthHandler
	Catalog  *CatalogHandler
	Category *CategoryHandler
	Product  *ProductHandler
	Stats    *StatsHandler
	Hub      *ws.Hub
}

func (r Routes) Register(app *fiber.App, authService service.AuthService) {
	app.Use(middleware.LoadSession(authService))

	// ============ AUTH ============
	app.Get("/login", r.Auth.Login)
	app.Get("/gconnect", r.Auth.GConnect)
	app.Get("/disconnect", r.Auth.Disconnect)
	app.Get("/me", r.Auth.Me)

	// ============ PUBLIC VIEWS ============
	app.Get("/", r.Catalog.Latest)
	app.Get("/catalog", r.Catalog.Latest)
	app.Get("/catalog/all", r.Catalog.All)
	app.Get("/catalog/categories/:id", r.Catalog.Category)
	app.Get("/catalog/products/:id", r.Catalog.Product)
	app.Get("/uploads/:filename", r.Catalog.Upload)
	app.Get("/stats", r.Stats.GetCatalogStats)

	// ============ JSON API ============
	app.Get("/catalog.json", r.Catalog.CatalogJSON)
	app.Get("/categories.json", r.Catalog.CategoriesJSON)
	app.Get("/products.json", r.Catalog.ProductsJSON)
	app.Get("/categories/:id/items.json", r.Catalog.CategoryItemsJSON)
	app.Get("/categories/:id/details.json", r.Catalog.CategoryJSON)
	app.Get("/products/:id/details.json", r.Catalog.ProductJSON)

	// ============ MUTATIONS (login required) ============
	// A prefix-less group would Use RequireLogin on every later path, so each route carries it.
	login := middleware.RequireLogin()
	app.Post("/categories", login, r.Category.Create)
	app.Post("/categories/:id/edit", login, r.Category.Update)
	app.Post("/categories/:id/delete", login, r.Category.Delete)
	app.Post("/products", login, r.Product.Create)
	app.Post("/products/:id/edit", login, r.Product.Update)
	app.Post("/products/:id/delete", login, r.Product.Delete)

	// ============ LIVE EVENTS ============
	if r.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(func(c *websocket.Conn) {
			r.Hub.Join(c)
			defer r.Hub.Leave(c)

			for {
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}
}
