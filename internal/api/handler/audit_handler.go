package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/veriflow/kyc-system/internal/core/ports"
)

// AuditHandler serves the append-only admin action ledger.
type AuditHandler struct {
	reviews ports.ReviewService
}

func NewAuditHandler(reviews ports.ReviewService) *AuditHandler {
	return &AuditHandler{reviews: reviews}
}

// List handles GET /v1/audit.
//
// @Summary      Query the admin action ledger
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        applicant_id  query     string  false  "Filter by applicant ID"
// @Param        admin         query     string  false  "Filter by admin username"
// @Param        order         query     string  false  "Sort order: asc or desc (default asc)"
// @Param        page          query     int     false  "Page number (1-based)"
// @Param        limit         query     int     false  "Page size (max 100)"
// @Success      200           {object}  listAuditResponse
// @Failure      401           {object}  errorResponse
// @Router       /v1/audit [get]
func (h *AuditHandler) List(c echo.Context) error {
	if _, err := ctxAdmin(c); err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.reviews.QueryAudit(c.Request().Context(), ports.AuditQueryInput{
		ApplicantID:   c.QueryParam("applicant_id"),
		AdminUsername: c.QueryParam("admin"),
		Descending:    c.QueryParam("order") == "desc",
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuditResponse(result))
}
