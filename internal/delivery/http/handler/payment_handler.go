package handler

import (
	"encoding/json"
	"net/http"

	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/usecase"
	"clinic-backend/pkg/response"
	"clinic-backend/pkg/validator"
)

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
	validator      *validator.CustomValidator
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUsecase, validator *validator.CustomValidator) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		validator:      validator,
	}
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	payment, err := h.paymentUsecase.Create(r.Context(), &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to create payment")
		return
	}

	response.Success(w, http.StatusCreated, "Payment created successfully", payment)
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	payment, err := h.paymentUsecase.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "Failed to get payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment retrieved successfully", payment)
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	result, err := h.paymentUsecase.List(r.Context(), query)
	if err != nil {
		h.handleError(w, err, "Failed to list payments")
		return
	}

	response.Success(w, http.StatusOK, "Payments retrieved successfully", result)
}

func (h *PaymentHandler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	result, err := h.paymentUsecase.ListMine(r.Context(), query)
	if err != nil {
		h.handleError(w, err, "Failed to list payments")
		return
	}

	response.Success(w, http.StatusOK, "Payments retrieved successfully", result)
}

func (h *PaymentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	var req dto.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	payment, err := h.paymentUsecase.Update(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to update payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment updated successfully", payment)
}

func (h *PaymentHandler) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	var req dto.SetPaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	payment, err := h.paymentUsecase.SetStatus(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to update payment status")
		return
	}

	response.Success(w, http.StatusOK, "Payment status updated successfully", payment)
}

func (h *PaymentHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	var req dto.RefundPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	payment, err := h.paymentUsecase.Refund(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to refund payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment refunded successfully", payment)
}

func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	if err := h.paymentUsecase.Delete(r.Context(), id, sourceAddr(r)); err != nil {
		h.handleError(w, err, "Failed to delete payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment deleted successfully", nil)
}

func (h *PaymentHandler) PaymentStats(w http.ResponseWriter, r *http.Request) {
	query, ok := statsQuery(w, r)
	if !ok {
		return
	}

	stats, err := h.paymentUsecase.Stats(r.Context(), query)
	if err != nil {
		h.handleError(w, err, "Failed to aggregate payment stats")
		return
	}

	response.Success(w, http.StatusOK, "Payment stats retrieved successfully", stats)
}

func (h *PaymentHandler) listQuery(w http.ResponseWriter, r *http.Request) (*dto.PaymentListQuery, bool) {
	page, limit := parsePagination(r)
	query := &dto.PaymentListQuery{
		Status: r.URL.Query().Get("status"),
		Page:   page,
		Limit:  limit,
	}

	patientID, malformed := queryUUID(r, "patient_id")
	if malformed {
		response.BadRequest(w, "Invalid patient_id")
		return nil, false
	}
	query.PatientID = patientID
	return query, true
}

func (h *PaymentHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	if handleCommonError(w, err) {
		return
	}
	switch err {
	case usecase.ErrPaymentNotFound:
		response.NotFound(w, "Payment not found")
	case usecase.ErrDuplicateInvoice:
		response.BadRequest(w, "Invoice number already exists")
	case usecase.ErrItemsTotalMismatch:
		response.BadRequest(w, "Total amount does not match line items")
	case usecase.ErrInvalidPaymentStatus:
		response.BadRequest(w, "Invalid payment status")
	case usecase.ErrRefundExceedsAmount:
		response.BadRequest(w, "Refund amount exceeds payment amount")
	case usecase.ErrRefundNotPositive:
		response.BadRequest(w, "Refund amount must be positive")
	case usecase.ErrPaymentAlreadyRefunded:
		response.Conflict(w, "Payment already refunded")
	default:
		response.InternalServerError(w, fallback)
	}
}
