package handler

import (
	"errors"

	"go-store-catalog/internal/middleware"
	"go-store-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// responder turns service errors into the response each route class expects.
type responder struct {
	flash *middleware.Flash
	log   *zap.Logger
}

func newResponder(flash *middleware.Flash, log *zap.Logger) responder {
	if log == nil {
		log = zap.NewNop()
	}
	return responder{flash: flash, log: log}
}

// redirectWith flashes msg and sends the browser to url.
func (r responder) redirectWith(c *fiber.Ctx, url, msg string) error {
	if err := r.flash.Add(c, msg); err != nil {
		r.log.Warn("failed to store flash message", zap.Error(err))
	}
	return c.Redirect(url, fiber.StatusSeeOther)
}

// mutationError handles a failed mutation. Recoverable failures go back to safeURL with a message.
func (r responder) mutationError(c *fiber.Ctx, err error, safeURL string) error {
	switch {
	case errors.Is(err, service.ErrAuthRequired):
		return c.Redirect("/login", fiber.StatusSeeOther)
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrForbidden):
		return r.redirectWith(c, safeURL, service.Message(err))
	default:
		return r.readError(c, err)
	}
}

// readError answers a failed read with a JSON error.
func (r responder) readError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": service.Message(err)})
	}
	r.log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": service.Message(err)})
}

// view renders data together with the pending flash messages and the current user.
func (r responder) view(c *fiber.Ctx, data fiber.Map) error {
	messages, err := r.flash.Consume(c)
	if err != nil {
		r.log.Warn("failed to read flash messages", zap.Error(err))
		messages = []string{}
	}
	data["flashes"] = messages

	session := middleware.CurrentSession(c)
	if session.Authenticated() {
		data["user"] = session
	} else {
		data["user"] = nil
	}
	return c.JSON(data)
}

func paramID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
}
