package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/usecase"
	"clinic-backend/pkg/response"
	"clinic-backend/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Create(r.Context(), &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	appointment, err := h.appointmentUsecase.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	result, err := h.appointmentUsecase.List(r.Context(), query)
	if err != nil {
		h.handleError(w, err, "Failed to list appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", result)
}

func (h *AppointmentHandler) ListMyAppointments(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	result, err := h.appointmentUsecase.ListMine(r.Context(), query)
	if err != nil {
		h.handleError(w, err, "Failed to list appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", result)
}

func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Update(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to update appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", appointment)
}

func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	if err := h.appointmentUsecase.Delete(r.Context(), id, sourceAddr(r)); err != nil {
		h.handleError(w, err, "Failed to delete appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment deleted successfully", nil)
}

func (h *AppointmentHandler) ApproveAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	// Approval notes are optional; an empty body is fine.
	var req dto.ApproveAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Approve(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to approve appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment approved successfully", appointment)
}

func (h *AppointmentHandler) RejectAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.RejectAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Reject(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to reject appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment rejected successfully", appointment)
}

func (h *AppointmentHandler) SetAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.SetAppointmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.SetStatus(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to update appointment status")
		return
	}

	response.Success(w, http.StatusOK, "Appointment status updated successfully", appointment)
}

func (h *AppointmentHandler) RequestHomeCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.HomeCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.RequestHomeCollection(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to request home collection")
		return
	}

	response.Success(w, http.StatusOK, "Home collection requested successfully", appointment)
}

func (h *AppointmentHandler) ApproveHomeCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.ApproveHomeCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.ApproveHomeCollection(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to approve home collection")
		return
	}

	response.Success(w, http.StatusOK, "Home collection approved successfully", appointment)
}

func (h *AppointmentHandler) AddTestResults(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.AddTestResultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.AddTestResults(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to add test results")
		return
	}

	response.Success(w, http.StatusOK, "Test results added successfully", appointment)
}

func (h *AppointmentHandler) listQuery(w http.ResponseWriter, r *http.Request) (*dto.AppointmentListQuery, bool) {
	page, limit := parsePagination(r)
	query := &dto.AppointmentListQuery{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
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

func (h *AppointmentHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	if handleCommonError(w, err) {
		return
	}
	switch err {
	case usecase.ErrAppointmentNotFound:
		response.NotFound(w, "Appointment not found")
	case usecase.ErrInvalidAppointmentType:
		response.BadRequest(w, "Invalid appointment type")
	case usecase.ErrInvalidTargetStatus:
		response.BadRequest(w, "Invalid target status")
	case usecase.ErrInvalidDateFormat:
		response.BadRequest(w, "Date must use YYYY-MM-DD format")
	case usecase.ErrHomeCollectionNotAsked:
		response.Conflict(w, "Home collection has not been requested")
	default:
		response.InternalServerError(w, fallback)
	}
}
