package middleware

import (
	"go-store-catalog/internal/model"

	"github.com/gofiber/fiber/v2"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "catalog_session"

	localsSession = "session"
)

// SessionValidator turns a session token back into a session.
type SessionValidator interface {
	ValidateToken(token string) (*model.Session, error)
}

// LoadSession validates the session cookie and puts the request session in context.
// Visitors without a valid token get an anonymous session.
func LoadSession(validator SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := &model.Session{}

		if token := c.Cookies(SessionCookie); token != "" {
			if s, err := validator.ValidateToken(token); err == nil {
				session = s
			} else {
				c.ClearCookie(SessionCookie)
			}
		}

		c.Locals(localsSession, session)
		return c.Next()
	}
}

// CurrentSession returns the session LoadSession stored. It never returns nil.
func CurrentSession(c *fiber.Ctx) *model.Session {
	if s, ok := c.Locals(localsSession).(*model.Session); ok && s != nil {
		return s
	}
	return &model.Session{}
}

// RequireLogin sends anonymous visitors to the login entry point.
func RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentSession(c).Authenticated() {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}
