package appointment

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
	g := api.Group("/appointments")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PUT("/:id/status", h.UpdateStatus)
	g.PATCH("/:id/status", h.UpdateStatus)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// authorize loads the appointment id and checks that the caller owns it or
// is a doctor.
func (h *Handler) authorize(c echo.Context, id uuid.UUID) (*Appointment, error) {
	ctx := c.Request().Context()
	a, err := h.svc.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if auth.HasRole(ctx, auth.RoleDoctor) {
		return a, nil
	}
	if caller, err := auth.CallerID(ctx); err == nil && caller == a.UserID {
		return a, nil
	}
	return nil, echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	caller, err := auth.CallerID(ctx)
	if a.UserID == uuid.Nil && err == nil {
		a.UserID = caller
	}
	if !auth.HasRole(ctx, auth.RoleDoctor) && (err != nil || a.UserID != caller) {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to book for this user")
	}
	if err := h.svc.Create(ctx, &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) List(c echo.Context) error {
	caller, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForCaller(c.Request().Context(), caller, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.authorize(c, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if _, err := h.authorize(c, id); err != nil {
		return err
	}
	var in Appointment
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Update(c.Request().Context(), id, &in)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return notFoundOr(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

// UpdateStatus accepts the new status as a ?status= query parameter or as
// a {"status": ...} body.
func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	status := c.QueryParam("status")
	if status == "" {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.Bind(&body); err == nil {
			status = body.Status
		}
	}
	if status == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "status is required")
	}

	if _, err := h.authorize(c, id); err != nil {
		return err
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), id, status)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return notFoundOr(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if _, err := h.authorize(c, id); err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return notFoundOr(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Appointment deleted successfully"})
}
