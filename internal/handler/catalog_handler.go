package handler

import (
	"path/filepath"

	"go-store-catalog/internal/middleware"
	"go-store-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CatalogHandler serves the public read-only views and JSON endpoints.
type CatalogHandler struct {
	service service.CatalogService
	responder
}

func NewCatalogHandler(s service.CatalogService, flash *middleware.Flash, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{service: s, responder: newResponder(flash, log)}
}

// Latest lists categories and the newest products.
// GET / and GET /catalog
func (h *CatalogHandler) Latest(c *fiber.Ctx) error {
	page, err := h.service.Latest()
	if err != nil {
		return h.readError(c, err)
	}
	return h.view(c, fiber.Map{"categories": page.Categories, "products": page.Products})
}

// All lists every product grouped by category.
// GET /catalog/all
func (h *CatalogHandler) All(c *fiber.Ctx) error {
	page, err := h.service.All()
	if err != nil {
		return h.readError(c, err)
	}
	return h.view(c, fiber.Map{"categories": page.Categories, "products": page.Products})
}

// GET /catalog/categories/:id
func (h *CatalogHandler) Category(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	page, err := h.service.CategoryPage(id, middleware.CurrentSession(c))
	if err != nil {
		return h.readError(c, err)
	}
	return h.view(c, fiber.Map{
		"category":          page.Category,
		"categories":        page.Categories,
		"active_products":   page.ActiveProducts,
		"inactive_products": page.InactiveProducts,
		"user_can_edit":     page.UserCanEdit,
	})
}

// GET /catalog/products/:id
func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	page, err := h.service.ProductPage(id, middleware.CurrentSession(c))
	if err != nil {
		return h.readError(c, err)
	}
	return h.view(c, fiber.Map{
		"product":          page.Product,
		"category":         page.Category,
		"photo":            page.Photo,
		"description_html": page.DescriptionHTML,
		"user_can_edit":    page.UserCanEdit,
	})
}

// Upload streams a stored product photo.
// GET /uploads/:filename
func (h *CatalogHandler) Upload(c *fiber.Ctx) error {
	name := c.Params("filename")
	rc, err := h.service.OpenPhoto(c.UserContext(), name)
	if err != nil {
		return h.readError(c, err)
	}
	c.Type(filepath.Ext(name))
	return c.SendStream(rc)
}

// GET /catalog.json
func (h *CatalogHandler) CatalogJSON(c *fiber.Ctx) error {
	categories, err := h.service.CategoriesWithProducts()
	if err != nil {
		return h.readError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// GET /categories.json
func (h *CatalogHandler) CategoriesJSON(c *fiber.Ctx) error {
	categories, err := h.service.Categories()
	if err != nil {
		return h.readError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// GET /products.json
func (h *CatalogHandler) ProductsJSON(c *fiber.Ctx) error {
	products, err := h.service.Products()
	if err != nil {
		return h.readError(c, err)
	}
	return c.JSON(fiber.Map{"products": products})
}

// GET /categories/:id/items.json
func (h *CatalogHandler) CategoryItemsJSON(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	items, err := h.service.CategoryItems(id)
	if err != nil {
		return h.readError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// GET /categories/:id/details.json
func (h *CatalogHandler) CategoryJSON(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	category, err := h.service.Category(id)
	if err != nil {
		return h.readError(c, err)
	}
	return c.JSON(fiber.Map{"category": category})
}

// GET /products/:id/details.json
func (h *CatalogHandler) ProductJSON(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	product, err := h.service.Product(id)
	if err != nil {
		return h.readError(c, err)
	}
	return c.JSON(fiber.Map{"product": product})
}
