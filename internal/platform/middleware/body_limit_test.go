package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 1 << 20},
		{"512", 512},
		{"512K", 512 << 10},
		{"2M", 2 << 20},
		{"2MB", 2 << 20},
		{"1g", 1 << 30},
		{"junk", 1 << 20},
		{"-5", 1 << 20},
	}
	for _, tt := range tests {
		if got := parseLimit(tt.in); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBodyLimit_RejectsByContentLength(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 100)))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := BodyLimit("10")(func(c echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %v", err)
	}
}

func TestBodyLimit_RejectsWhileReading(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 100)))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var readErr error
	BodyLimit("10")(func(c echo.Context) error {
		_, readErr = io.ReadAll(c.Request().Body)
		return nil
	})(c)

	if readErr == nil {
		t.Fatal("expected read error once the limit is exceeded")
	}
}

func TestBodyLimit_AllowsSmallBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query":"hi"}`))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var body []byte
	err := BodyLimit("1K")(func(c echo.Context) error {
		var rerr error
		body, rerr = io.ReadAll(c.Request().Body)
		return rerr
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"query":"hi"}` {
		t.Errorf("unexpected body %q", body)
	}
}
