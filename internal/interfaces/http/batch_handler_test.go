package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/manifest"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/memory"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/agro-trazabilidad-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/agro-trazabilidad-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type apiClient struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	svc := traceability.NewBatchTraceabilityService(memory.NewBatchRepository(), zerolog.Nop(), nil)
	reports := traceability.NewReportUseCase(svc, pdf.NewMarotoReportGenerator(), manifest.NewXMLBuilder())
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		BatchService: svc,
		Reports:      reports,
		JWTSecret:    testJWTSecret,
		Log:          zerolog.Nop(),
	})
	return &apiClient{t: t, app: app, token: tokenForRole(t, pkgjwt.RoleAdmin)}
}

func (a *apiClient) as(role string) *apiClient {
	return &apiClient{t: a.t, app: a.app, token: tokenForRole(a.t, role)}
}

func (a *apiClient) do(method, path string, body any) (*http.Response, []byte) {
	a.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		rd = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", a.token)
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp, raw
}

func (a *apiClient) create(number, parentID string) dto.BatchResponse {
	a.t.Helper()
	resp, raw := a.do(http.MethodPost, "/api/batches", map[string]any{
		"batchNumber":     number,
		"batchType":       "seed",
		"initialQuantity": 100,
		"parentBatchId":   parentID,
	})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode, string(raw))
	var out dto.BatchResponse
	require.NoError(a.t, json.Unmarshal(raw, &out))
	return out
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

func TestBatchAPI_CreateProjection(t *testing.T) {
	api := newAPI(t)
	resp, raw := api.do(http.MethodPost, "/api/batches", map[string]any{
		"batchNumber":     "SEED-1",
		"batchType":       "SEED",
		"initialQuantity": "100",
		"expiryDate":      "2999-01-01T00:00:00Z",
		"customFields":    map[string]any{"variedad": "criolla"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	for _, k := range []string{"id", "batchNumber", "batchType", "status", "initialQuantity", "remainingQuantity",
		"allocatedQuantity", "availableQuantity", "unitOfMeasure", "isExpired", "isExpiringSoon",
		"daysUntilExpiry", "ageInDays", "version", "createdAt", "updatedAt", "createdBy", "expiryDate", "customFields"} {
		assert.Contains(t, body, k)
	}
	assert.NotContains(t, body, "parentBatchId")
	assert.Equal(t, "ACTIVE", body["status"])
	assert.Equal(t, "KG", body["unitOfMeasure"])
	assert.Equal(t, testUserID, body["createdBy"])
	assert.Equal(t, "2999-01-01T00:00:00Z", body["expiryDate"])
}

func TestBatchAPI_LedgerFlow(t *testing.T) {
	api := newAPI(t)
	b := api.create("SEED-1", "")

	resp, raw := api.do(http.MethodPost, "/api/batches/"+b.ID+"/allocate", map[string]any{"quantity": 40})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var out dto.BatchResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "60", out.AvailableQuantity.String())

	resp, raw = api.do(http.MethodPost, "/api/batches/"+b.ID+"/allocate", map[string]any{"quantity": 61})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))

	_, raw = api.do(http.MethodPost, "/api/batches/"+b.ID+"/consume", map[string]any{"quantity": 40})
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "60", out.RemainingQuantity.String())
	assert.Equal(t, "ACTIVE", out.Status)

	api.do(http.MethodPost, "/api/batches/"+b.ID+"/allocate", map[string]any{"quantity": 60})
	_, raw = api.do(http.MethodPost, "/api/batches/"+b.ID+"/consume", map[string]any{"quantity": 60})
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "CONSUMED", out.Status)
}

func TestBatchAPI_HoldReleaseBlock(t *testing.T) {
	api := newAPI(t)
	b := api.create("SEED-1", "")

	resp, raw := api.do(http.MethodPost, "/api/batches/"+b.ID+"/hold", map[string]any{"reason": "pending QA"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var out dto.BatchResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "ON_HOLD", out.Status)
	assert.Contains(t, out.Notes, "[HOLD] pending QA")

	resp, _ = api.do(http.MethodPost, "/api/batches/"+b.ID+"/allocate", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = api.do(http.MethodPost, "/api/batches/"+b.ID+"/release", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "ACTIVE", out.Status)

	resp, raw = api.do(http.MethodPost, "/api/batches/"+b.ID+"/block", map[string]any{"reason": "contaminación"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "BLOCKED", out.Status)
}

func TestBatchAPI_ErrorMapping(t *testing.T) {
	api := newAPI(t)
	parent := api.create("SEED-1", "")
	api.create("CROP-1", parent.ID)

	resp, raw := api.do(http.MethodPost, "/api/batches", map[string]any{"batchNumber": "SEED-1", "batchType": "SEED", "initialQuantity": 5})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", errorCode(t, raw))

	resp, raw = api.do(http.MethodDelete, "/api/batches/"+parent.ID, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "HAS_CHILDREN", errorCode(t, raw))

	resp, raw = api.do(http.MethodGet, "/api/batches/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, raw))

	resp, raw = api.do(http.MethodPost, "/api/batches", map[string]any{"batchNumber": "X", "batchType": "SEED", "initialQuantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))

	resp, raw = api.do(http.MethodPost, "/api/batches", []byte("{no es json"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", errorCode(t, raw))
}

func TestBatchAPI_UpdateAndDeleteLeaf(t *testing.T) {
	api := newAPI(t)
	b := api.create("SEED-1", "")

	resp, raw := api.do(http.MethodPut, "/api/batches/"+b.ID, map[string]any{"notes": "bodega 3", "customFields": map[string]any{"humedad": 12}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var out dto.BatchResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "bodega 3", out.Notes)
	assert.Equal(t, int64(2), out.Version)
	assert.Equal(t, testUserID, out.UpdatedBy)

	resp, _ = api.do(http.MethodDelete, "/api/batches/"+b.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = api.do(http.MethodGet, "/api/batches/"+b.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBatchAPI_UpdateClearsExpiryDate(t *testing.T) {
	api := newAPI(t)
	resp, raw := api.do(http.MethodPost, "/api/batches", map[string]any{
		"batchNumber": "SEED-1", "batchType": "SEED", "initialQuantity": "10", "expiryDate": "2999-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var created dto.BatchResponse
	require.NoError(t, json.Unmarshal(raw, &created))

	resp, raw = api.do(http.MethodPut, "/api/batches/"+created.ID, map[string]any{"clearExpiryDate": true})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotContains(t, body, "expiryDate")
	assert.Nil(t, body["daysUntilExpiry"])
}

func TestBatchAPI_QuantityScaleIsValidated(t *testing.T) {
	api := newAPI(t)
	b := api.create("SEED-1", "")

	resp, raw := api.do(http.MethodPost, "/api/batches/"+b.ID+"/allocate", map[string]any{"quantity": "33.33333"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))

	resp, _ = api.do(http.MethodPost, "/api/batches/"+b.ID+"/allocate", map[string]any{"quantity": "33.3333"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, raw = api.do(http.MethodPost, "/api/batches/"+b.ID+"/consume", map[string]any{"quantity": "33.3333"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var out dto.BatchResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.AllocatedQuantity.IsZero())
	assert.Equal(t, "66.6667", out.RemainingQuantity.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestBatchAPI_ListFiltersAndPaging(t *testing.T) {
	api := newAPI(t)
	for _, n := range []string{"SEED-1", "SEED-2", "SEED-3"} {
		api.create(n, "")
	}

	resp, raw := api.do(http.MethodGet, "/api/batches?sortBy=batchNumber&sortOrder=asc&pageSize=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var page dto.BatchPageResponse
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNext)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "SEED-1", page.Items[0].BatchNumber)

	_, raw = api.do(http.MethodGet, "/api/batches?batchNumber=seed-2", nil)
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Equal(t, 1, page.Total)

	resp, raw = api.do(http.MethodGet, "/api/batches?status=RANCIO", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))

	resp, _ = api.do(http.MethodGet, "/api/batches?harvestFrom=ayer", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = api.do(http.MethodGet, "/api/batches?isExpired=quizas", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatchAPI_StatisticsAndStaticRoutes(t *testing.T) {
	api := newAPI(t)
	api.create("SEED-1", "")

	resp, raw := api.do(http.MethodGet, "/api/batches/statistics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var stats dto.BatchStatisticsResponse
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus["ACTIVE"])
	assert.Equal(t, 0, stats.ByStatus["EXPIRED"])

	for _, path := range []string{"/api/batches/expired", "/api/batches/expiring-soon?days=10", "/api/batches/by-status/active", "/api/batches/by-product/p-1"} {
		resp, raw := api.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.True(t, strings.HasPrefix(string(raw), "["), path)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Trazabilidad
// ──────────────────────────────────────────────────────────────────────────────

func TestTraceabilityAPI_TreeAndChain(t *testing.T) {
	api := newAPI(t)
	a := api.create("A", "")
	b := api.create("B", a.ID)
	c := api.create("C", b.ID)

	resp, raw := api.do(http.MethodGet, "/api/batches/"+a.ID+"/traceability/tree", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var tree dto.TraceabilityTreeResponse
	require.NoError(t, json.Unmarshal(raw, &tree))
	assert.Equal(t, 2, tree.Depth)
	assert.Equal(t, 3, tree.TotalBatches)
	assert.Equal(t, []string{"A", "B", "C"}, batchNumbers(tree.TraceabilityChain))
	require.Len(t, tree.Root.Children, 1)
	assert.Equal(t, "B", tree.Root.Children[0].BatchNumber)

	// Las hojas no llevan la clave children.
	var generic struct {
		Root map[string]any `json:"root"`
	}
	require.NoError(t, json.Unmarshal(raw, &generic))
	bNode := generic.Root["children"].([]any)[0].(map[string]any)
	leaf := bNode["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "C", leaf["batchNumber"])
	assert.NotContains(t, leaf, "children")

	_, raw = api.do(http.MethodGet, "/api/batches/"+c.ID+"/traceability/chain", nil)
	var chain []dto.BatchResponse
	require.NoError(t, json.Unmarshal(raw, &chain))
	assert.Equal(t, []string{"A", "B", "C"}, batchNumbers(chain))

	_, raw = api.do(http.MethodGet, "/api/batches/"+a.ID+"/children", nil)
	var children []dto.BatchResponse
	require.NoError(t, json.Unmarshal(raw, &children))
	assert.Equal(t, []string{"B"}, batchNumbers(children))
}

func TestTraceabilityAPI_ReportAndManifest(t *testing.T) {
	api := newAPI(t)
	a := api.create("A", "")
	api.create("B", a.ID)

	resp, raw := api.do(http.MethodGet, "/api/batches/"+a.ID+"/traceability/report.pdf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "trazabilidad-A.pdf")
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp, xml := api.do(http.MethodGet, "/api/batches/"+a.ID+"/traceability/manifest.xml", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(xml))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "trazabilidad-A.xml")

	resp, raw = api.as(pkgjwt.RoleAuditor).do(http.MethodPost, "/api/batches/manifest/verify", xml)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.JSONEq(t, `{"valid":true}`, string(raw))

	tampered := bytes.Replace(xml, []byte(`batchNumber="B"`), []byte(`batchNumber="Z"`), 1)
	require.NotEqual(t, xml, tampered)
	_, raw = api.do(http.MethodPost, "/api/batches/manifest/verify", tampered)
	assert.JSONEq(t, `{"valid":false}`, string(raw))

	resp, raw = api.do(http.MethodPost, "/api/batches/manifest/verify", []byte("<roto"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_MANIFEST", errorCode(t, raw))
}

// ──────────────────────────────────────────────────────────────────────────────
// RBAC
// ──────────────────────────────────────────────────────────────────────────────

func TestBatchAPI_RolePermissions(t *testing.T) {
	api := newAPI(t)
	b := api.create("SEED-1", "")
	auditor := api.as(pkgjwt.RoleAuditor)
	operator := api.as(pkgjwt.RoleOperator)

	resp, _ := auditor.do(http.MethodGet, "/api/batches/"+b.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = auditor.do(http.MethodPost, "/api/batches/"+b.ID+"/allocate", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = operator.do(http.MethodPost, "/api/batches/"+b.ID+"/allocate", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = operator.do(http.MethodDelete, "/api/batches/"+b.ID, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = operator.do(http.MethodPost, "/api/batches/"+b.ID+"/block", map[string]any{"reason": "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func batchNumbers(bs []dto.BatchResponse) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.BatchNumber)
	}
	return out
}
