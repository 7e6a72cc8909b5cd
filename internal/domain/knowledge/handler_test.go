package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medhub/medhub/internal/platform/auth"
)

func TestHandler_Search(t *testing.T) {
	svc, _ := newTestService()
	svc.Ingest(context.Background(), IngestRequest{Source: "notes", Text: sampleDoc})
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/knowledge/search?q=heart+chambers", nil)
	rec := httptest.NewRecorder()
	if err := h.Search(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body struct {
		Query   string `json:"query"`
		Results []Hit  `json:"results"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if len(body.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(body.Results))
	}
	if !strings.Contains(body.Results[0].Content, "heart") {
		t.Errorf("unexpected result %q", body.Results[0].Content)
	}
}

func TestHandler_Search_MissingQuery(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/knowledge/search", nil)
	err := h.Search(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_AddPassage(t *testing.T) {
	svc, repo := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	body := `{"source":"manual","content":"The pancreas produces insulin and digestive enzymes."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/knowledge/passages", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.AddPassage(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated || len(repo.passages) != 1 {
		t.Errorf("expected passage to be created, got %d", rec.Code)
	}
}

func TestHandler_WriteRoutesRequireRole(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1"))

	body := `{"content":"The spleen filters blood and supports the immune system."}`
	for role, want := range map[string]int{
		auth.RolePatient:    http.StatusForbidden,
		auth.RoleResearcher: http.StatusCreated,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/knowledge/passages", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req = req.WithContext(auth.WithIdentity(req.Context(), uuid.NewString(), []string{role}))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("role %s: expected %d, got %d", role, want, rec.Code)
		}
	}
}
