package agents

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhub/medhub/internal/agent/specialist"
	"github.com/medhub/medhub/internal/platform/auth"
)

func TestHandler_Query(t *testing.T) {
	svc, _, _ := newTestService(true)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/query", strings.NewReader(`{"query":"Where is the femur?"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(auth.WithIdentity(req.Context(), "user-7", []string{auth.RolePatient}))
	rec := httptest.NewRecorder()

	require.NoError(t, h.Query(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "The femur.", body["response"])
	assert.Equal(t, "ANATOMY", body["category"])
	assert.Len(t, svc.History("user-7"), 1)
}

func TestHandler_Query_Empty(t *testing.T) {
	svc, _, _ := newTestService(true)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/query", strings.NewReader(`{"query":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.Query(e.NewContext(req, httptest.NewRecorder()))

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
}

func TestHandler_ComplianceCheck(t *testing.T) {
	svc, _, c := newTestService(true)
	c.decision = specialist.Decision{Verdict: specialist.VerdictFail, Reason: "Patient identifier requested."}
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/agents/compliance-check?query=Show+Patient+ID+999", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ComplianceCheck(e.NewContext(req, rec)))

	var d specialist.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, specialist.VerdictFail, d.Verdict)
	assert.Equal(t, []string{"Show Patient ID 999"}, c.queries)
}

func TestHandler_Routes(t *testing.T) {
	svc, _, _ := newTestService(true)
	h := NewHandler(svc)
	e := echo.New()

	var limited int
	limit := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limited++
			return next(c)
		}
	}
	h.RegisterRoutes(e.Group("/api/v1"), limit)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/query", strings.NewReader(`{"query":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agents/history", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, limited, "only model-backed routes are rate limited")
}
