package handler

import (
	"errors"
	"time"

	"go-store-catalog/internal/middleware"
	"go-store-catalog/internal/oauth"
	"go-store-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  service.AuthService
	provider     oauth.Provider
	cookieSecure bool
	sessionTTL   time.Duration
	responder
}

func NewAuthHandler(authService service.AuthService, provider oauth.Provider, flash *middleware.Flash, log *zap.Logger, cookieSecure bool, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		provider:     provider,
		cookieSecure: cookieSecure,
		sessionTTL:   sessionTTL,
		responder:    newResponder(flash, log),
	}
}

// Login issues the anti-forgery state and the provider URL to start the handshake.
// GET /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	state := uuid.NewString()
	if err := h.flash.SetState(c, state); err != nil {
		return h.readError(c, err)
	}

	return h.view(c, fiber.Map{
		"state":    state,
		"provider": h.provider.Name(),
		"auth_url": h.provider.AuthCodeURL(state),
	})
}

// GConnect completes the handshake and logs the user in.
// GET /gconnect?state=&code=
func (h *AuthHandler) GConnect(c *fiber.Ctx) error {
	expected, err := h.flash.TakeState(c)
	if err != nil {
		return h.readError(c, err)
	}
	if state := c.Query("state"); state == "" || state != expected {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid state parameter."})
	}

	identity, err := h.provider.Exchange(c.UserContext(), c.Query("code"))
	if err != nil {
		h.log.Warn("identity provider rejected login", zap.Error(err))
		if errors.Is(err, oauth.ErrUnverifiedEmail) || errors.Is(err, oauth.ErrIncompleteAnswer) {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(401).JSON(fiber.Map{"error": "Failed to upgrade the authorization code."})
	}

	response, err := h.authService.Login(identity.Email, identity.Name, identity.Picture)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.Status(401).JSON(fiber.Map{"error": service.Message(err)})
		}
		return h.readError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    response.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return h.redirectWith(c, "/catalog", "You are now logged in as "+response.User.Email)
}

// Disconnect logs the user out.
// GET /disconnect
func (h *AuthHandler) Disconnect(c *fiber.Ctx) error {
	if !middleware.CurrentSession(c).Authenticated() {
		return h.redirectWith(c, "/catalog", "You were not logged in")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return h.redirectWith(c, "/catalog", "You have successfully been logged out.")
}

// Me returns the logged-in user.
// GET /me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)
	if !session.Authenticated() {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return c.JSON(session)
}
