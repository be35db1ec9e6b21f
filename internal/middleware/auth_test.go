package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cookconnect/internal/identity"
	"cookconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type revokeAll struct{}

func (revokeAll) Revoke(context.Context, string, time.Duration) error { return nil }
func (revokeAll) IsRevoked(context.Context, string) (bool, error)     { return true, nil }

func newAuthApp(v identity.Verifier) *fiber.App {
	app := fiber.New()
	app.Use(Authenticate(v))
	app.Get("/public", func(c *fiber.Ctx) error {
		viewer := ViewerFrom(c)
		return c.JSON(fiber.Map{"userID": viewer.UserID(), "authenticated": viewer.Authenticated()})
	})
	app.Get("/private", AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": ViewerFrom(c).UserID()})
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	tokens := identity.NewTokenService(testSecret, time.Hour, nil)
	valid, err := tokens.Issue(&models.User{ID: 123, Role: models.RoleUser})
	require.NoError(t, err)

	expired := identity.NewTokenService(testSecret, -time.Hour, nil)
	stale, err := expired.Issue(&models.User{ID: 123, Role: models.RoleUser})
	require.NoError(t, err)

	app := newAuthApp(tokens)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
		expectedMsg    string
	}{
		{name: "Happy Path", authHeader: "Bearer " + valid, expectedStatus: http.StatusOK, expectedUserID: 123},
		{name: "Missing Header", expectedStatus: http.StatusUnauthorized, expectedMsg: "Authorization required"},
		{name: "Invalid Format", authHeader: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized, expectedMsg: "Invalid or expired token"},
		{name: "Malformed Token", authHeader: "Bearer malformed.token.here", expectedStatus: http.StatusUnauthorized, expectedMsg: "Invalid or expired token"},
		{name: "Expired Token", authHeader: "Bearer " + stale, expectedStatus: http.StatusUnauthorized, expectedMsg: "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, float64(tt.expectedUserID), body["userID"])
			} else {
				assert.Equal(t, tt.expectedMsg, body["error"])
				assert.Equal(t, models.CodeUnauthenticated, body["code"])
			}
		})
	}
}

func TestAuthenticate_PublicRoutesDegradeToAnonymous(t *testing.T) {
	tokens := identity.NewTokenService(testSecret, time.Hour, nil)
	app := newAuthApp(tokens)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["authenticated"])
	assert.Equal(t, float64(0), body["userID"])
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	tokens := identity.NewTokenService(testSecret, time.Hour, revokeAll{})
	token, err := tokens.Issue(&models.User{ID: 5, Role: models.RoleUser})
	require.NoError(t, err)

	app := newAuthApp(tokens)
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Token has been revoked", body["error"])
}

func TestViewerFrom_DefaultsToAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.False(t, ViewerFrom(c).Authenticated())
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
