package inbox

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medhub/medhub/internal/platform/auth"
)

func asUser(req *http.Request, id uuid.UUID, role string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), id.String(), []string{role}))
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

func TestHandler_List_DefaultLimit(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	uid := uuid.New()
	for i := 0; i < 25; i++ {
		mustCreate(t, svc, uid, "n")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/"+uid.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues(uid.String())

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Data    []Notification `json:"data"`
		Total   int            `json:"total"`
		Limit   int            `json:"limit"`
		HasMore bool           `json:"has_more"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Limit != DefaultListLimit || len(body.Data) != DefaultListLimit {
		t.Errorf("expected %d items, got %d (limit %d)", DefaultListLimit, len(body.Data), body.Limit)
	}
	if body.Total != 25 || !body.HasMore {
		t.Errorf("expected total 25 with more, got %d %v", body.Total, body.HasMore)
	}
}

func markReadContext(e *echo.Echo, id string, caller uuid.UUID, role string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/notifications/"+id+"/read", nil)
	req = asUser(req, caller, role)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestHandler_MarkRead(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	uid := uuid.New()
	n := mustCreate(t, svc, uid, "hello")

	c, rec := markReadContext(e, n.ID.String(), uid, auth.RolePatient)
	if err := h.MarkRead(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Notification
	json.Unmarshal(rec.Body.Bytes(), &got)
	if !got.IsRead {
		t.Error("expected notification to be read")
	}
}

func TestHandler_MarkRead_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	c, _ := markReadContext(e, uuid.NewString(), uuid.New(), auth.RolePatient)
	err := h.MarkRead(c)
	if httpStatus(t, err) != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
	if msg := err.(*echo.HTTPError).Message; msg != "Notification not found" {
		t.Errorf("unexpected message %v", msg)
	}
}

func TestHandler_MarkRead_OtherUser(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	n := mustCreate(t, svc, uuid.New(), "private")

	c, _ := markReadContext(e, n.ID.String(), uuid.New(), auth.RolePatient)
	if httpStatus(t, h.MarkRead(c)) != http.StatusNotFound {
		t.Error("expected 404 for another user's notification")
	}
	if n.IsRead {
		t.Error("expected notification to stay unread")
	}
}

func TestHandler_MarkAllRead(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	uid := uuid.New()
	mustCreate(t, svc, uid, "a")

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/notifications/read-all/"+uid.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues(uid.String())

	if err := h.MarkAllRead(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "All notifications marked as read") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_Routes_SelfOrAdmin(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1"))
	owner := uuid.New()

	tests := []struct {
		name   string
		caller uuid.UUID
		role   string
		want   int
	}{
		{"self", owner, auth.RolePatient, http.StatusOK},
		{"other patient", uuid.New(), auth.RolePatient, http.StatusForbidden},
		{"doctor", uuid.New(), auth.RoleDoctor, http.StatusForbidden},
		{"admin", uuid.New(), auth.RoleAdmin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/"+owner.String(), nil)
			req = asUser(req, tt.caller, tt.role)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
