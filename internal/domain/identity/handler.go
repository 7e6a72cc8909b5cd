package identity

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
	// Self-service, any authenticated user
	api.GET("/me", h.GetMe)
	api.PATCH("/me", h.UpdateMe)
	api.GET("/doctors", h.ListDoctors)
	api.GET("/researchers", h.ListResearchers)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/users", h.CreateUser)
	admin.GET("/users", h.ListUsers)
	admin.POST("/researchers", h.CreateResearcher)

	api.GET("/users/:id", h.GetUser, auth.RequireSelfOrRole("id", auth.RoleDoctor))

	api.GET("/patients/profile/me", h.GetMyPatientProfile)
	api.PATCH("/patients/profile/me", h.UpdateMyPatientProfile)

	clinical := api.Group("", auth.RequireRole(auth.RoleDoctor))
	clinical.GET("/patients", h.ListPatients)
	clinical.DELETE("/patients/:id", h.DeletePatient)
	clinical.GET("/patients/:id/profile", h.GetPatientProfile)

	api.PUT("/doctors/me", h.UpdateMyDoctorProfile, auth.RequireRole(auth.RoleDoctor))
	api.PUT("/researchers/me", h.UpdateMyResearcherProfile, auth.RequireRole(auth.RoleResearcher))
}

// -- Users --

func (h *Handler) CreateUser(c echo.Context) error {
	var u User
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateUser(c.Request().Context(), &u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := UserFilter{Role: c.QueryParam("role"), HospitalName: c.QueryParam("hospital_name")}
	users, total, err := h.svc.ListUsers(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetMe(c echo.Context) error {
	id, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateMe(c echo.Context) error {
	id, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var upd ProfileUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.UpdateProfile(c.Request().Context(), id, upd)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

// -- Patients --

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.ListPatients(c.Request().Context(), c.QueryParam("hospital_name"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetMyPatientProfile(c echo.Context) error {
	id, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	p, err := h.svc.MyPatientProfile(c.Request().Context(), id)
	if err != nil {
		return profileError(err, "Only patients have a patient profile")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateMyPatientProfile(c echo.Context) error {
	id, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var upd PatientProfileUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdateMyPatientProfile(c.Request().Context(), id, upd)
	if err != nil {
		return profileError(err, "Only patients have a patient profile")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetPatientProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	p, err := h.svc.GetPatientProfile(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

// -- Doctors --

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctors, total, err := h.svc.ListDoctors(c.Request().Context(), c.QueryParam("hospital_name"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateMyDoctorProfile(c echo.Context) error {
	id, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var upd DoctorUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.UpdateMyDoctorProfile(c.Request().Context(), id, upd)
	if err != nil {
		return profileError(err, "Only doctors can update their profile")
	}
	return c.JSON(http.StatusOK, d)
}

// -- Researchers --

func (h *Handler) ListResearchers(c echo.Context) error {
	pg := pagination.FromContext(c)
	researchers, total, err := h.svc.ListResearchers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(researchers, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateResearcher(c echo.Context) error {
	var r Researcher
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if q := c.QueryParam("user_id"); q != "" && r.UserID == uuid.Nil {
		id, err := uuid.Parse(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		r.UserID = id
	}
	if err := h.svc.CreateResearcher(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) UpdateMyResearcherProfile(c echo.Context) error {
	id, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var upd ResearcherUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.UpdateMyResearcherProfile(c.Request().Context(), id, upd)
	if err != nil {
		return profileError(err, "Only researchers can update their profile")
	}
	return c.JSON(http.StatusOK, r)
}

func profileError(err error, forbidden string) error {
	switch {
	case errors.Is(err, ErrWrongRole):
		return echo.NewHTTPError(http.StatusForbidden, forbidden)
	case errors.Is(err, db.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
