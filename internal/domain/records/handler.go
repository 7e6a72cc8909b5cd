package records

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
	// The caller's own records
	own := api.Group("/patient-data")
	own.GET("/visits", h.ListMyVisits)
	own.POST("/visits", h.CreateVisit)
	own.GET("/visits/:id", h.GetVisit)
	own.GET("/prescriptions", h.ListMyPrescriptions)
	own.POST("/prescriptions", h.CreatePrescription)
	own.GET("/allergies", h.ListMyAllergies)
	own.POST("/allergies", h.CreateAllergy)
	own.GET("/lab-results", h.ListMyLabResults)
	own.POST("/lab-results", h.CreateLabResult)

	// Doctor access to a patient's records
	doctor := api.Group("/patients", auth.RequireRole(auth.RoleDoctor))
	doctor.GET("/:id/visits", h.ListPatientVisits)
	doctor.GET("/:id/prescriptions", h.ListPatientPrescriptions)
	doctor.GET("/:id/allergies", h.ListPatientAllergies)
	doctor.GET("/:id/lab-results", h.ListPatientLabResults)
}

// canWriteFor allows writes to the caller's own records, or to anyone's for
// doctors.
func canWriteFor(c echo.Context, userID uuid.UUID) error {
	ctx := c.Request().Context()
	if auth.HasRole(ctx, auth.RoleDoctor) {
		return nil
	}
	if caller, err := auth.CallerID(ctx); err == nil && caller == userID {
		return nil
	}
	return echo.NewHTTPError(http.StatusForbidden, "Not authorized to create records for this user")
}

func callerOrUnauthorized(c echo.Context) (uuid.UUID, error) {
	id, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return id, nil
}

func patientParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return id, nil
}

// -- Hospital Visits --

func (h *Handler) CreateVisit(c echo.Context) error {
	var v HospitalVisit
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := canWriteFor(c, v.UserID); err != nil {
		return err
	}
	if err := h.svc.CreateVisit(c.Request().Context(), &v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.GetVisit(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "visit not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := canWriteFor(c, v.UserID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "visit not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListMyVisits(c echo.Context) error {
	uid, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}
	return h.listVisits(c, uid)
}

func (h *Handler) ListPatientVisits(c echo.Context) error {
	uid, err := patientParam(c)
	if err != nil {
		return err
	}
	return h.listVisits(c, uid)
}

func (h *Handler) listVisits(c echo.Context, userID uuid.UUID) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListVisits(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Prescriptions --

func (h *Handler) CreatePrescription(c echo.Context) error {
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := canWriteFor(c, p.UserID); err != nil {
		return err
	}
	caller, _ := auth.CallerID(c.Request().Context())
	if err := h.svc.CreatePrescription(c.Request().Context(), caller, &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListMyPrescriptions(c echo.Context) error {
	uid, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}
	return h.listPrescriptions(c, uid)
}

func (h *Handler) ListPatientPrescriptions(c echo.Context) error {
	uid, err := patientParam(c)
	if err != nil {
		return err
	}
	return h.listPrescriptions(c, uid)
}

func (h *Handler) listPrescriptions(c echo.Context, userID uuid.UUID) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPrescriptions(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Allergies --

func (h *Handler) CreateAllergy(c echo.Context) error {
	var a Allergy
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := canWriteFor(c, a.UserID); err != nil {
		return err
	}
	if err := h.svc.CreateAllergy(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListMyAllergies(c echo.Context) error {
	uid, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}
	return h.listAllergies(c, uid)
}

func (h *Handler) ListPatientAllergies(c echo.Context) error {
	uid, err := patientParam(c)
	if err != nil {
		return err
	}
	return h.listAllergies(c, uid)
}

func (h *Handler) listAllergies(c echo.Context, userID uuid.UUID) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAllergies(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Lab Results --

func (h *Handler) CreateLabResult(c echo.Context) error {
	var l LabResult
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := canWriteFor(c, l.UserID); err != nil {
		return err
	}
	if err := h.svc.CreateLabResult(c.Request().Context(), &l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) ListMyLabResults(c echo.Context) error {
	uid, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}
	return h.listLabResults(c, uid)
}

func (h *Handler) ListPatientLabResults(c echo.Context) error {
	uid, err := patientParam(c)
	if err != nil {
		return err
	}
	return h.listLabResults(c, uid)
}

func (h *Handler) listLabResults(c echo.Context, userID uuid.UUID) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListLabResults(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Doctor Dashboard --

type DashboardHandler struct {
	dash *Dashboard
}

func NewDashboardHandler(dash *Dashboard) *DashboardHandler {
	return &DashboardHandler{dash: dash}
}

func (h *DashboardHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors/me/dashboard-stats", h.Stats, auth.RequireRole(auth.RoleDoctor))
	api.GET("/doctors/me/recent-activity", h.RecentActivity, auth.RequireRole(auth.RoleDoctor))
}

func dashboardError(err error) error {
	switch {
	case errors.Is(err, ErrNotDoctor):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, db.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	uid, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}
	stats, err := h.dash.Stats(c.Request().Context(), uid)
	if err != nil {
		return dashboardError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) RecentActivity(c echo.Context) error {
	uid, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}
	feed, err := h.dash.RecentActivity(c.Request().Context(), uid)
	if err != nil {
		return dashboardError(err)
	}
	return c.JSON(http.StatusOK, feed)
}
