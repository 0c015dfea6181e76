package handler

import (
	"mime/multipart"
	"strings"

	"go-store-catalog/internal/middleware"
	"go-store-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductHandler struct {
	service        service.ProductService
	maxUploadBytes int64
	responder
}

func NewProductHandler(s service.ProductService, flash *middleware.Flash, log *zap.Logger, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{service: s, maxUploadBytes: maxUploadBytes, responder: newResponder(flash, log)}
}

type productForm struct {
	Name        string `form:"name" json:"name"`
	SKU         string `form:"sku" json:"sku"`
	Price       string `form:"price" json:"price"`
	Status      string `form:"status" json:"status"`
	CategoryID  string `form:"category_id" json:"category_id"`
	Description string `form:"description" json:"description"`
}

// parseProduct reads the form and the optional photo. The returned closer must be called.
func (h *ProductHandler) parseProduct(c *fiber.Ctx) (service.ProductInput, func(), string) {
	noop := func() {}
	var form productForm
	if err := c.BodyParser(&form); err != nil {
		return service.ProductInput{}, noop, "Invalid form data"
	}

	in := service.ProductInput{
		Name:        form.Name,
		SKU:         form.SKU,
		Status:      form.Status,
		Description: form.Description,
	}
	if price := strings.TrimSpace(form.Price); price != "" {
		p, err := decimal.NewFromString(price)
		if err != nil {
			return in, noop, "Price must be a number"
		}
		in.Price = &p
	}
	if id := strings.TrimSpace(form.CategoryID); id != "" {
		categoryID, err := uuid.Parse(id)
		if err != nil {
			return in, noop, "Unknown category"
		}
		in.CategoryID = categoryID
	}

	fh, err := c.FormFile("photo")
	if err != nil || fh == nil || fh.Filename == "" {
		return in, noop, ""
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return in, noop, "Photo is too large"
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Warn("failed to open uploaded photo", zap.Error(err))
		return in, noop, "Photo could not be read"
	}
	in.Photo = &service.Upload{Filename: fh.Filename, Reader: f}
	return in, func() { closeUpload(h.log, f) }, ""
}

func closeUpload(log *zap.Logger, f multipart.File) {
	if err := f.Close(); err != nil {
		log.Warn("failed to close uploaded photo", zap.Error(err))
	}
}

// POST /products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	in, done, problem := h.parseProduct(c)
	defer done()
	if problem != "" {
		return h.redirectWith(c, "/catalog", problem)
	}

	product, err := h.service.Create(c.UserContext(), middleware.CurrentSession(c), in)
	if err != nil {
		return h.mutationError(c, err, "/catalog")
	}
	return h.redirectWith(c, "/catalog/products/"+product.ID.String(), "New product "+product.Name+" successfully created")
}

// POST /products/:id/edit
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	back := "/catalog/products/" + id.String()

	in, done, problem := h.parseProduct(c)
	defer done()
	if problem != "" {
		return h.redirectWith(c, back, problem)
	}

	product, err := h.service.Update(c.UserContext(), middleware.CurrentSession(c), id, in)
	if err != nil {
		return h.mutationError(c, err, back)
	}
	return h.redirectWith(c, back, "Product "+product.Name+" successfully edited")
}

// POST /products/:id/delete
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}

	if err := h.service.Delete(c.UserContext(), middleware.CurrentSession(c), id); err != nil {
		return h.mutationError(c, err, "/catalog/products/"+id.String())
	}
	return h.redirectWith(c, "/catalog", "Product successfully deleted")
}
