package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siteworks/records-api/internal/api/metrics"
	"github.com/siteworks/records-api/internal/core/domain"
	"github.com/siteworks/records-api/internal/core/ports"
)

// RecordHandler handles HTTP requests for progress and payment records.
type RecordHandler struct {
	workflow ports.WorkflowService
}

func NewRecordHandler(workflow ports.WorkflowService) *RecordHandler {
	return &RecordHandler{workflow: workflow}
}

// CreateProgress handles POST /v1/progress.
//
// @Summary      Submit a field progress record
// @Tags         progress
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProgressRequest  true  "Progress submission"
// @Success      201   {object}  recordResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/progress [post]
func (h *RecordHandler) CreateProgress(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req createProgressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.workflow.Submit(c.Request().Context(), caller, ports.SubmitRecordInput{
		Kind:        domain.KindProgress,
		Date:        req.Date,
		Description: req.Description,
		PhotoKeys:   req.PhotoKeys,
		VideoKey:    req.VideoKey,
	})
	if err != nil {
		return err
	}

	metrics.RecordsSubmittedTotal.WithLabelValues(string(domain.KindProgress)).Inc()
	return c.JSON(http.StatusCreated, toRecordResponse(rec))
}

// CreatePayment handles POST /v1/payments.
//
// @Summary      Submit a payment record
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPaymentRequest  true  "Payment submission"
// @Success      201   {object}  recordResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/payments [post]
func (h *RecordHandler) CreatePayment(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.workflow.Submit(c.Request().Context(), caller, ports.SubmitRecordInput{
		Kind:        domain.KindPayment,
		Date:        req.Date,
		Description: req.Description,
		PaymentID:   req.PaymentID,
		Amount:      req.Amount,
		Remarks:     req.Remarks,
	})
	if err != nil {
		return err
	}

	metrics.RecordsSubmittedTotal.WithLabelValues(string(domain.KindPayment)).Inc()
	return c.JSON(http.StatusCreated, toRecordResponse(rec))
}

// ListProgress handles GET /v1/progress.
//
// @Summary      List progress records visible to the caller
// @Tags         progress
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Status filter (pending|approved|rejected)"
// @Param        date_from  query     string  false  "Inclusive lower bound on submitted_at (RFC 3339)"
// @Param        date_to    query     string  false  "Inclusive upper bound on submitted_at (RFC 3339)"
// @Success      200        {array}   recordResponse
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Router       /v1/progress [get]
func (h *RecordHandler) ListProgress(c echo.Context) error {
	return h.list(c, domain.KindProgress)
}

// ListPayments handles GET /v1/payments.
//
// @Summary      List payment records visible to the caller
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Status filter (pending|approved|rejected)"
// @Param        date_from  query     string  false  "Inclusive lower bound on submitted_at (RFC 3339)"
// @Param        date_to    query     string  false  "Inclusive upper bound on submitted_at (RFC 3339)"
// @Success      200        {array}   recordResponse
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Router       /v1/payments [get]
func (h *RecordHandler) ListPayments(c echo.Context) error {
	return h.list(c, domain.KindPayment)
}

func (h *RecordHandler) list(c echo.Context, kind domain.RecordKind) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	in := ports.ListRecordsInput{Kind: kind}

	if status := c.QueryParam("status"); status != "" {
		st := domain.RecordStatus(status)
		if st != domain.StatusPending && st != domain.StatusApproved && st != domain.StatusRejected {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status filter")
		}
		in.Status = st
	}

	in.DateFrom, err = parseTimeParam(c.QueryParam("date_from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_from must be RFC 3339")
	}
	in.DateTo, err = parseTimeParam(c.QueryParam("date_to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_to must be RFC 3339")
	}

	records, err := h.workflow.List(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordResponses(records))
}

// ApproveProgress handles PATCH /v1/progress/:id/approve.
//
// @Summary      Approve or reject a pending progress record
// @Tags         progress
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Record id"
// @Param        body  body      reviewRequest  true  "Review decision"
// @Success      200   {object}  recordResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/progress/{id}/approve [patch]
func (h *RecordHandler) ApproveProgress(c echo.Context) error {
	return h.review(c, func(ctx echo.Context, caller domain.Identity, decision domain.RecordStatus, comment string) (*domain.Record, error) {
		return h.workflow.Transition(ctx.Request().Context(), caller, ctx.Param("id"), decision, comment)
	})
}

// ApprovePayment handles PATCH /v1/payments/:id/approve.
//
// @Summary      Approve or reject a pending payment record
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Record id"
// @Param        body  body      reviewRequest  true  "Review decision"
// @Success      200   {object}  recordResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/payments/{id}/approve [patch]
func (h *RecordHandler) ApprovePayment(c echo.Context) error {
	return h.review(c, func(ctx echo.Context, caller domain.Identity, decision domain.RecordStatus, comment string) (*domain.Record, error) {
		return h.workflow.Transition(ctx.Request().Context(), caller, ctx.Param("id"), decision, comment)
	})
}

// ApprovePaymentByPaymentID handles PATCH /v1/payments/by-payment-id/:payment_id/approve.
// Payment reviews in the approval screens are keyed by the externally
// assigned payment id rather than the record id.
//
// @Summary      Approve or reject a pending payment by external payment id
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payment_id  path      string         true  "External payment id"
// @Param        body        body      reviewRequest  true  "Review decision"
// @Success      200         {object}  recordResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Failure      409         {object}  errorResponse
// @Router       /v1/payments/by-payment-id/{payment_id}/approve [patch]
func (h *RecordHandler) ApprovePaymentByPaymentID(c echo.Context) error {
	return h.review(c, func(ctx echo.Context, caller domain.Identity, decision domain.RecordStatus, comment string) (*domain.Record, error) {
		return h.workflow.TransitionByPaymentID(ctx.Request().Context(), caller, ctx.Param("payment_id"), decision, comment)
	})
}

func (h *RecordHandler) review(c echo.Context, apply func(echo.Context, domain.Identity, domain.RecordStatus, string) (*domain.Record, error)) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := apply(c, caller, domain.RecordStatus(req.Status), req.Comment)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			metrics.TransitionConflictsTotal.Inc()
		}
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(string(rec.Kind), string(rec.Status)).Inc()
	return c.JSON(http.StatusOK, toRecordResponse(rec))
}

// DeletePayment handles DELETE /v1/payments/:id.
//
// @Summary      Delete an own pending payment record
// @Tags         payments
// @Security     BearerAuth
// @Param        id  path  string  true  "Record id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/payments/{id} [delete]
func (h *RecordHandler) DeletePayment(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	if err := h.workflow.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseTimeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}
