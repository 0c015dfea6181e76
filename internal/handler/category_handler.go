package handler

import (
	"go-store-catalog/internal/middleware"
	"go-store-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	service service.CategoryService
	responder
}

func NewCategoryHandler(s service.CategoryService, flash *middleware.Flash, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{service: s, responder: newResponder(flash, log)}
}

type categoryForm struct {
	Name    string `form:"name" json:"name"`
	SKUCode string `form:"sku_code" json:"sku_code"`
}

func (f categoryForm) input() service.CategoryInput {
	return service.CategoryInput{Name: f.Name, SKUCode: f.SKUCode}
}

// POST /categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var form categoryForm
	if err := c.BodyParser(&form); err != nil {
		return h.redirectWith(c, "/catalog", "Invalid form data")
	}

	category, err := h.service.Create(middleware.CurrentSession(c), form.input())
	if err != nil {
		return h.mutationError(c, err, "/catalog")
	}
	return h.redirectWith(c, "/catalog", "New category "+category.Name+" successfully created")
}

// POST /categories/:id/edit
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	back := "/catalog/categories/" + id.String()

	var form categoryForm
	if err := c.BodyParser(&form); err != nil {
		return h.redirectWith(c, back, "Invalid form data")
	}

	category, err := h.service.Update(middleware.CurrentSession(c), id, form.input())
	if err != nil {
		return h.mutationError(c, err, back)
	}
	return h.redirectWith(c, back, "Category "+category.Name+" successfully edited")
}

// POST /categories/:id/delete
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}

	if err := h.service.Delete(c.UserContext(), middleware.CurrentSession(c), id); err != nil {
		return h.mutationError(c, err, "/catalog/categories/"+id.String())
	}
	return h.redirectWith(c, "/catalog", "Category successfully deleted")
}
