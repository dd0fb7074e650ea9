package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/veriflow/kyc-system/internal/api/metrics"
	"github.com/veriflow/kyc-system/internal/core/domain"
	"github.com/veriflow/kyc-system/internal/core/ports"
	"github.com/veriflow/kyc-system/internal/infrastructure/queue"
)

// ReviewHandler handles admin review actions on applicants.
type ReviewHandler struct {
	reviews      ports.ReviewService
	verification ports.VerificationService
	dispatcher   *queue.Dispatcher
}

func NewReviewHandler(reviews ports.ReviewService, verification ports.VerificationService, dispatcher *queue.Dispatcher) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, verification: verification, dispatcher: dispatcher}
}

// Transition handles POST /v1/applicants/:id/status.
//
// @Summary      Apply a review action to an applicant
// @Tags         review
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Applicant ID"
// @Param        body  body      statusActionRequest  true  "Review action"
// @Success      200   {object}  getApplicantResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/applicants/{id}/status [post]
func (h *ReviewHandler) Transition(c echo.Context) error {
	username, err := ctxAdmin(c)
	if err != nil {
		return err
	}

	var req statusActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	detail, err := h.reviews.Transition(c.Request().Context(), ports.TransitionInput{
		ApplicantID:   c.Param("id"),
		Action:        domain.ReviewAction(req.Action),
		AdminUsername: username,
	})
	if err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(req.Action, string(detail.FinalStatus)).Inc()

	return c.JSON(http.StatusOK, toGetResponse(detail))
}

// Reevaluate handles POST /v1/applicants/:id/reevaluate. The recompute runs
// asynchronously on the worker shard owning this applicant; the admin request
// is logged immediately.
//
// @Summary      Queue a re-evaluation of an applicant's signals and risk
// @Tags         review
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Applicant ID"
// @Success      202  {object}  reevaluateResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/applicants/{id}/reevaluate [post]
func (h *ReviewHandler) Reevaluate(c echo.Context) error {
	username, err := ctxAdmin(c)
	if err != nil {
		return err
	}

	applicantID := c.Param("id")

	// Fail fast on unknown applicants so the admin gets a 404 instead of a
	// silently dropped job.
	if _, err := h.verification.GetApplicant(c.Request().Context(), applicantID); err != nil {
		return err
	}

	if err := h.reviews.RecordReevaluation(c.Request().Context(), applicantID, username); err != nil {
		return err
	}

	h.dispatcher.Enqueue(queue.ReevaluationJob{
		ApplicantID: applicantID,
		RequestedBy: username,
	})

	return c.JSON(http.StatusAccepted, reevaluateResponse{ApplicantID: applicantID, Queued: true})
}
