package intake

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wetreat/intake/internal/platform/auth"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With().Str("component", "intake").Logger()}
}

// RegisterRoutes mounts the public intake endpoint and the admin group on api.
func (h *Handler) RegisterRoutes(api *echo.Group, gate *auth.Gate) {
	api.POST("/intake", h.Intake)

	admin := api.Group("/patients", auth.RequireAdmin(gate))
	admin.GET("", h.List)
	admin.PUT("/:id/consultation", h.UpdateConsultation)
	admin.DELETE("/:id", h.Delete)
	admin.GET("/:id/report", h.Report)
}

type result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

var (
	okResult       = result{Success: true}
	failedResult   = result{Success: false}
	notFoundResult = result{Success: false, Message: "Not found"}
)

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c echo.Context, op string, id int64, err error) {
	rid, _ := c.Get("request_id").(string)
	evt := h.logger.Error().Err(err).Str("request_id", rid).Str("op", op)
	if id > 0 {
		evt = evt.Int64("patient_id", id)
	}
	evt.Msg("operation failed")
}

func (h *Handler) Intake(c echo.Context) error {
	var in IntakeRequest
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, result{Message: "invalid body"})
	}
	if _, err := h.svc.Intake(c.Request().Context(), &in); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, result{Message: err.Error()})
		}
		h.fail(c, "intake", 0, err)
		return c.JSON(http.StatusInternalServerError, failedResult)
	}
	return c.JSON(http.StatusOK, okResult)
}

func (h *Handler) List(c echo.Context) error {
	recs, err := h.svc.List(c.Request().Context(), c.QueryParam("search"), c.QueryParam("sort"), c.QueryParam("dir"))
	if err != nil {
		h.fail(c, "list", 0, err)
		return c.JSON(http.StatusInternalServerError, failedResult)
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) UpdateConsultation(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, result{Message: "invalid id"})
	}
	var body Consultation
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, result{Message: "invalid body"})
	}

	err := h.svc.UpdateConsultation(c.Request().Context(), id, &body)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, okResult)
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, notFoundResult)
	case errors.Is(err, ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, result{Message: err.Error()})
	default:
		h.fail(c, "update_consultation", id, err)
		return c.JSON(http.StatusInternalServerError, failedResult)
	}
}

func (h *Handler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, result{Message: "invalid id"})
	}

	err := h.svc.Delete(c.Request().Context(), id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, okResult)
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, notFoundResult)
	default:
		h.fail(c, "delete", id, err)
		return c.JSON(http.StatusInternalServerError, failedResult)
	}
}

// Report streams the record's PDF as an attachment. The document is fully
// rendered before any byte is sent.
func (h *Handler) Report(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.String(http.StatusBadRequest, "Invalid id")
	}

	buf, err := h.svc.Export(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return c.String(http.StatusNotFound, "Not found")
	}
	if err != nil {
		h.fail(c, "report", id, err)
		return c.String(http.StatusInternalServerError, "Failed to generate report")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+ReportFilename(id))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
