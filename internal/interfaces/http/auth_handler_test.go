package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/auth"
	"github.com/jhoicas/agro-trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/agro-trazabilidad-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/agro-trazabilidad-api/pkg/jwt"
)

func buildLoginApp(t *testing.T) *fiber.App {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte("clave-segura"), bcrypt.MinCost)
	require.NoError(t, err)
	uc := auth.NewAuthUseCase([]auth.User{{Username: "ana", Role: pkgjwt.RoleOperator, PasswordHash: string(h)}},
		auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		BatchService: traceability.NewBatchTraceabilityService(memory.NewBatchRepository(), zerolog.Nop(), nil),
		AuthUC:       uc,
		JWTSecret:    testJWTSecret,
		Log:          zerolog.Nop(),
	})
	return app
}

func postLogin(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestLogin_TokenSirveParaRutasProtegidas(t *testing.T) {
	app := buildLoginApp(t)
	resp := postLogin(t, app, `{"username":"ana","password":"clave-segura"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, pkgjwt.RoleOperator, out.Role)

	req := httptest.NewRequest(http.MethodGet, "/api/batches", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	listResp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer listResp.Body.Close()
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	app := buildLoginApp(t)

	resp := postLogin(t, app, `{"username":"ana","password":"otra"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2 := postLogin(t, app, `{"username":"ana"}`)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestBatches_SinTokenRetorna401(t *testing.T) {
	app := buildLoginApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/batches", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
