package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func roleContext(c echo.Context, uid string, roles ...string) {
	c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), uid, roles)))
}

func TestRequireRole_Allowed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	roleContext(c, "u1", RoleDoctor)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	err := RequireRole(RoleDoctor, RoleResearcher)(handler)(c)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	roleContext(c, "u1", RolePatient)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	err := RequireRole(RoleDoctor, RoleResearcher)(handler)(c)
	if err == nil {
		t.Fatal("expected error for unauthorized role")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	roleContext(c, "root", RoleAdmin)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	if err := RequireRole(RoleDoctor)(handler)(c); err != nil {
		t.Error("admin should bypass role checks")
	}
}

func TestRequireSelfOrRole(t *testing.T) {
	tests := []struct {
		name    string
		uid     string
		roles   []string
		param   string
		allowed bool
	}{
		{"own data", "patient-1", []string{RolePatient}, "patient-1", true},
		{"other patient", "patient-1", []string{RolePatient}, "patient-2", false},
		{"doctor", "doc-1", []string{RoleDoctor}, "patient-2", true},
		{"admin", "root", []string{RoleAdmin}, "patient-2", true},
		{"anonymous", "", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("user_id")
			c.SetParamValues(tt.param)
			roleContext(c, tt.uid, tt.roles...)

			err := RequireSelfOrRole("user_id", RoleDoctor)(func(c echo.Context) error { return nil })(c)
			if tt.allowed && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tt.allowed && err == nil {
				t.Error("expected 403")
			}
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDKey, "user-123")
	if uid := UserIDFromContext(ctx); uid != "user-123" {
		t.Errorf("expected user-123, got %s", uid)
	}

	if empty := UserIDFromContext(context.Background()); empty != "" {
		t.Errorf("expected empty string, got %s", empty)
	}
}

func TestIsPublicPath(t *testing.T) {
	if !IsPublicPath("/health") {
		t.Error("expected /health to be public")
	}
	if IsPublicPath("/api/v1/users") {
		t.Error("expected /api/v1/users to require auth")
	}
}
