package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/veriflow/kyc-system/internal/api/metrics"
	"github.com/veriflow/kyc-system/internal/core/domain"
	"github.com/veriflow/kyc-system/internal/core/ports"
)

// maxUploadBytes caps each uploaded image. Dimension and quality checks are
// the extractor's job; this only keeps oversized bodies out of memory.
const maxUploadBytes = 10 << 20

// ApplicantHandler handles HTTP requests for applicant submission and reads.
type ApplicantHandler struct {
	service ports.VerificationService
}

func NewApplicantHandler(service ports.VerificationService) *ApplicantHandler {
	return &ApplicantHandler{service: service}
}

// Submit handles POST /v1/applicants. The body is multipart/form-data with
// two image parts and an optional name field.
//
// @Summary      Submit an identity verification
// @Tags         applicants
// @Accept       multipart/form-data
// @Produce      json
// @Param        id_image  formData  file    true   "Identity document image"
// @Param        selfie    formData  file    true   "Selfie image"
// @Param        name      formData  string  false  "Name override (takes precedence over OCR)"
// @Success      201       {object}  submitApplicantResponse
// @Success      200       {object}  submitApplicantResponse  "Duplicate image pair; stored evaluation replayed"
// @Failure      400       {object}  errorResponse
// @Failure      502       {object}  errorResponse
// @Failure      504       {object}  errorResponse
// @Router       /v1/applicants [post]
func (h *ApplicantHandler) Submit(c echo.Context) error {
	idImage, err := readFormFile(c, "id_image")
	if err != nil {
		return err
	}
	selfie, err := readFormFile(c, "selfie")
	if err != nil {
		return err
	}

	result, err := h.service.Submit(c.Request().Context(), ports.SubmitInput{
		IDImage:      idImage,
		Selfie:       selfie,
		NameOverride: c.FormValue("name"),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrExtractionTimeout):
			metrics.ExtractionErrorsTotal.WithLabelValues("timeout").Inc()
		case errors.Is(err, domain.ErrExtractionFailed):
			metrics.ExtractionErrorsTotal.WithLabelValues("failed").Inc()
		}
		return err
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	} else {
		metrics.VerificationsTotal.WithLabelValues(string(result.Suggestion)).Inc()
		metrics.RiskScore.Observe(result.Score)
	}

	return c.JSON(status, toSubmitResponse(result))
}

// Get handles GET /v1/applicants/:id.
//
// @Summary      Get an applicant by ID
// @Tags         applicants
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Applicant ID"
// @Success      200  {object}  getApplicantResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/applicants/{id} [get]
func (h *ApplicantHandler) Get(c echo.Context) error {
	if _, err := ctxAdmin(c); err != nil {
		return err
	}

	detail, err := h.service.GetApplicant(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toGetResponse(detail))
}

// List handles GET /v1/applicants.
//
// @Summary      List applicants
// @Tags         applicants
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Substring match on name, suggestion or status"
// @Param        status  query     string  false  "Exact final status filter"
// @Param        page    query     int     false  "Page number (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  listApplicantsResponse
// @Failure      401     {object}  errorResponse
// @Router       /v1/applicants [get]
func (h *ApplicantHandler) List(c echo.Context) error {
	if _, err := ctxAdmin(c); err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListApplicants(c.Request().Context(), ports.ListApplicantsInput{
		Search: c.QueryParam("search"),
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(result))
}

// Stats handles GET /v1/applicants/stats.
//
// @Summary      Dashboard counters by final status
// @Tags         applicants
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/applicants/stats [get]
func (h *ApplicantHandler) Stats(c echo.Context) error {
	if _, err := ctxAdmin(c); err != nil {
		return err
	}

	result, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toStatsResponse(result))
}

// readFormFile pulls one named part out of the multipart form.
func readFormFile(c echo.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, field+" file is required")
	}
	if fh.Size > maxUploadBytes {
		return nil, echo.NewHTTPError(http.StatusBadRequest, field+" exceeds maximum upload size")
	}

	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "cannot read "+field)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "cannot read "+field)
	}
	if len(data) == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, field+" file is empty")
	}
	if len(data) > maxUploadBytes {
		return nil, echo.NewHTTPError(http.StatusBadRequest, field+" exceeds maximum upload size")
	}
	return data, nil
}
