package inbox

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medhub/medhub/internal/platform/auth"
	"github.com/medhub/medhub/internal/platform/db"
	"github.com/medhub/medhub/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/notifications")
	g.POST("", h.Send, auth.RequireRole(auth.RoleAdmin))
	g.GET("/:user_id", h.List, auth.RequireSelfOrRole("user_id", auth.RoleAdmin))
	g.GET("/:user_id/unread-count", h.UnreadCount, auth.RequireSelfOrRole("user_id", auth.RoleAdmin))
	g.PATCH("/:id/read", h.MarkRead)
	g.PATCH("/read-all/:user_id", h.MarkAllRead, auth.RequireSelfOrRole("user_id", auth.RoleAdmin))
}

func userParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	return id, nil
}

func (h *Handler) Send(c echo.Context) error {
	var n Notification
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Send(c.Request().Context(), &n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) List(c echo.Context) error {
	uid, err := userParam(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	if c.QueryParam("limit") == "" {
		pg.Limit = DefaultListLimit
	}
	items, total, err := h.svc.List(c.Request().Context(), uid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UnreadCount(c echo.Context) error {
	uid, err := userParam(c)
	if err != nil {
		return err
	}
	n, err := h.svc.CountUnread(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"unread": n})
}

// MarkRead marks one notification read. Another user's notification reads
// as missing.
func (h *Handler) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()

	n, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if caller, err := auth.CallerID(ctx); !auth.HasRole(ctx, auth.RoleAdmin) && (err != nil || caller != n.UserID) {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}

	n, err = h.svc.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) MarkAllRead(c echo.Context) error {
	uid, err := userParam(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.MarkAllRead(c.Request().Context(), uid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}
