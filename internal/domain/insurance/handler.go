package insurance

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
	own := api.Group("/patient-data")
	own.GET("/insurance", h.ListMyPolicies)
	own.POST("/insurance", h.CreatePolicy)
	own.GET("/insurance/:id", h.GetPolicy)
	own.GET("/claims", h.ListMyClaims)
	own.POST("/claims", h.CreateClaim)
	own.GET("/claims/:id", h.GetClaim)

	api.PATCH("/claims/:id/status", h.AdjudicateClaim, auth.RequireRole(auth.RoleAdmin))

	doctor := api.Group("/patients", auth.RequireRole(auth.RoleDoctor))
	doctor.GET("/:id/insurance", h.ListPatientPolicies)
	doctor.GET("/:id/claims", h.ListPatientClaims)
}

// canAccess allows the record owner and doctors.
func canAccess(c echo.Context, userID uuid.UUID) bool {
	ctx := c.Request().Context()
	if auth.HasRole(ctx, auth.RoleDoctor) {
		return true
	}
	caller, err := auth.CallerID(ctx)
	return err == nil && caller == userID
}

func idParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func callerOrUnauthorized(c echo.Context) (uuid.UUID, error) {
	id, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return id, nil
}

func lookupError(err error, what string) error {
	if errors.Is(err, db.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// -- Policies --

func (h *Handler) CreatePolicy(c echo.Context) error {
	var p Policy
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !canAccess(c, p.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to add a policy for this user")
	}
	if err := h.svc.CreatePolicy(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPolicy(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPolicy(c.Request().Context(), id)
	if err != nil {
		return lookupError(err, "policy")
	}
	if !canAccess(c, p.UserID) {
		return echo.NewHTTPError(http.StatusNotFound, "policy not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListMyPolicies(c echo.Context) error {
	uid, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}
	return h.listPolicies(c, uid)
}

func (h *Handler) ListPatientPolicies(c echo.Context) error {
	uid, err := idParam(c)
	if err != nil {
		return err
	}
	return h.listPolicies(c, uid)
}

func (h *Handler) listPolicies(c echo.Context, userID uuid.UUID) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPolicies(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Claims --

func (h *Handler) CreateClaim(c echo.Context) error {
	var cl Claim
	if err := c.Bind(&cl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !canAccess(c, cl.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to file a claim for this user")
	}
	if err := h.svc.CreateClaim(c.Request().Context(), &cl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) GetClaim(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	cl, err := h.svc.GetClaim(c.Request().Context(), id)
	if err != nil {
		return lookupError(err, "claim")
	}
	if !canAccess(c, cl.UserID) {
		return echo.NewHTTPError(http.StatusNotFound, "claim not found")
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) ListMyClaims(c echo.Context) error {
	uid, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}
	return h.listClaims(c, uid)
}

func (h *Handler) ListPatientClaims(c echo.Context) error {
	uid, err := idParam(c)
	if err != nil {
		return err
	}
	return h.listClaims(c, uid)
}

func (h *Handler) listClaims(c echo.Context, userID uuid.UUID) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListClaims(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AdjudicateClaim(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var a Adjudication
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cl, err := h.svc.Adjudicate(c.Request().Context(), id, a)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "claim not found")
		case errors.Is(err, ErrClaimClosed):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, cl)
}
