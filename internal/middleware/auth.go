// Package middleware provides request identity, logging, metrics and tracing for the HTTP API.
package middleware

import (
	"context"
	"errors"

	"cookconnect/internal/identity"
	"cookconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	viewerLocal    = "viewer"
	authErrorLocal = "authError"
)

// Authenticate resolves the Authorization header into a Viewer on every
// request. It never rejects: a bad or missing token yields an anonymous viewer,
// and the verification error is kept for AuthRequired to report.
func Authenticate(v identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer, err := identity.Resolve(c.UserContext(), v, c.Get(fiber.HeaderAuthorization))
		if err != nil {
			c.Locals(authErrorLocal, err)
		}

		c.Locals(viewerLocal, viewer)
		if viewer.Authenticated() {
			c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, viewer.UserID()))
		}
		return c.Next()
	}
}

// AuthRequired rejects anonymous viewers with 401. It must run after Authenticate.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ViewerFrom(c).Authenticated() {
			return c.Next()
		}

		msg := "Authorization required"
		if err, ok := c.Locals(authErrorLocal).(error); ok {
			switch {
			case errors.Is(err, identity.ErrRevokedToken):
				msg = "Token has been revoked"
			case errors.Is(err, identity.ErrInvalidToken):
				msg = "Invalid or expired token"
			}
		}
		return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthenticatedError(msg))
	}
}

// ViewerFrom returns the viewer resolved for this request, anonymous if none.
func ViewerFrom(c *fiber.Ctx) identity.Viewer {
	if v, ok := c.Locals(viewerLocal).(identity.Viewer); ok {
		return v
	}
	return identity.Anonymous()
}
