package agents

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medhub/medhub/internal/platform/auth"
)

const anonymousSession = "anonymous"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the agent routes. queryLimit guards the routes
// that reach a model and may be nil.
func (h *Handler) RegisterRoutes(api *echo.Group, queryLimit echo.MiddlewareFunc) {
	g := api.Group("/agents")
	var limited []echo.MiddlewareFunc
	if queryLimit != nil {
		limited = append(limited, queryLimit)
	}
	g.POST("/query", h.Query, limited...)
	g.GET("/compliance-check", h.ComplianceCheck, limited...)
	g.GET("/history", h.History)
	g.DELETE("/history", h.ResetHistory)
}

func sessionKey(c echo.Context) string {
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		return uid
	}
	return anonymousSession
}

func (h *Handler) Query(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.Query(c.Request().Context(), sessionKey(c), req.Query)
	if err != nil {
		if errors.Is(err, ErrEmptyQuery) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ComplianceCheck(c echo.Context) error {
	d, err := h.svc.CheckCompliance(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		if errors.Is(err, ErrEmptyQuery) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) History(c echo.Context) error {
	return c.JSON(http.StatusOK, HistoryResponse{Turns: h.svc.History(sessionKey(c))})
}

func (h *Handler) ResetHistory(c echo.Context) error {
	h.svc.ResetHistory(sessionKey(c))
	return c.NoContent(http.StatusNoContent)
}
