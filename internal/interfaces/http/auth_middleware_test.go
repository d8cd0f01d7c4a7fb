package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	apphttp "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Inventario-ledger/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "inventario-ledger-test"
	testExpMin    = 60
)

// tokenForRole genera el header Authorization para el rol indicado en la empresa de prueba.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testTenantID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// guardedApp expone /writer (admin|bodeguero) y /admin (solo admin), igual que el router del libro.
func guardedApp() *fiber.App {
	app := fiber.New()
	ok := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"role": apphttp.GetRole(c), "tenant_id": apphttp.GetTenantID(c)})
	}
	api := app.Group("/", apphttp.AuthMiddleware(testJWTSecret))
	api.Get("/writer", apphttp.RequireRole(apphttp.RoleAdmin, apphttp.RoleBodeguero), ok)
	api.Get("/admin", apphttp.RequireRole(apphttp.RoleAdmin), ok)
	api.Get("/any", ok)
	return app
}

func get(t *testing.T, app *fiber.App, path, auth string) (int, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	if resp.StatusCode >= 400 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func TestRequireRole_Matriz(t *testing.T) {
	app := guardedApp()
	cases := []struct {
		role, path string
		status     int
	}{
		{apphttp.RoleAdmin, "/writer", http.StatusOK},
		{apphttp.RoleBodeguero, "/writer", http.StatusOK},
		{apphttp.RoleVendedor, "/writer", http.StatusForbidden},
		{apphttp.RoleAdmin, "/admin", http.StatusOK},
		{apphttp.RoleBodeguero, "/admin", http.StatusForbidden},
		{apphttp.RoleVendedor, "/any", http.StatusOK},
		{"auditor", "/writer", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.role+tc.path, func(t *testing.T) {
			status, body := get(t, app, tc.path, tokenForRole(t, tc.role))
			assert.Equal(t, tc.status, status)
			if tc.status == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", body.Code)
			}
		})
	}
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testTenantID, "", testIssuer, testExpMin)
	require.NoError(t, err)

	status, body := get(t, guardedApp(), "/writer", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", body.Code)
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	noTenant, err := pkgjwt.Generate(testJWTSecret, testUserID, "", apphttp.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testTenantID, apphttp.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)
	otherSecret, err := pkgjwt.Generate("otro-secret", testUserID, testTenantID, apphttp.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name, auth, code string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto", "Basic abc", "INVALID_TOKEN"},
		{"bearer vacío", "Bearer   ", "MISSING_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"otro secreto", "Bearer " + otherSecret, "INVALID_TOKEN"},
		{"sin empresa", "Bearer " + noTenant, "INVALID_TOKEN"},
	}
	app := guardedApp()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, app, "/any", tc.auth)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestAuthMiddleware_CargaLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   apphttp.GetUserID(c),
			"tenant_id": apphttp.GetTenantID(c),
			"role":      apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleBodeguero))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testTenantID, body["tenant_id"])
	assert.Equal(t, apphttp.RoleBodeguero, body["role"])
}
