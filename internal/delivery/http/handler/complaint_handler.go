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

type ComplaintHandler struct {
	complaintUsecase usecase.ComplaintUsecase
	validator        *validator.CustomValidator
}

func NewComplaintHandler(complaintUsecase usecase.ComplaintUsecase, validator *validator.CustomValidator) *ComplaintHandler {
	return &ComplaintHandler{
		complaintUsecase: complaintUsecase,
		validator:        validator,
	}
}

func (h *ComplaintHandler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	complaint, err := h.complaintUsecase.Create(r.Context(), &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to create complaint")
		return
	}

	response.Success(w, http.StatusCreated, "Complaint created successfully", complaint)
}

func (h *ComplaintHandler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid complaint ID")
		return
	}

	complaint, err := h.complaintUsecase.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "Failed to get complaint")
		return
	}

	response.Success(w, http.StatusOK, "Complaint retrieved successfully", complaint)
}

func (h *ComplaintHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	result, err := h.complaintUsecase.List(r.Context(), query)
	if err != nil {
		h.handleError(w, err, "Failed to list complaints")
		return
	}

	response.Success(w, http.StatusOK, "Complaints retrieved successfully", result)
}

func (h *ComplaintHandler) ListMyComplaints(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	result, err := h.complaintUsecase.ListMine(r.Context(), query)
	if err != nil {
		h.handleError(w, err, "Failed to list complaints")
		return
	}

	response.Success(w, http.StatusOK, "Complaints retrieved successfully", result)
}

func (h *ComplaintHandler) ListOverdueComplaints(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.complaintUsecase.ListOverdue(r.Context())
	if err != nil {
		h.handleError(w, err, "Failed to list overdue complaints")
		return
	}

	response.Success(w, http.StatusOK, "Overdue complaints retrieved successfully", complaints)
}

func (h *ComplaintHandler) UpdateComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid complaint ID")
		return
	}

	var req dto.UpdateComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	complaint, err := h.complaintUsecase.Update(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to update complaint")
		return
	}

	response.Success(w, http.StatusOK, "Complaint updated successfully", complaint)
}

func (h *ComplaintHandler) DeleteComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid complaint ID")
		return
	}

	if err := h.complaintUsecase.Delete(r.Context(), id, sourceAddr(r)); err != nil {
		h.handleError(w, err, "Failed to delete complaint")
		return
	}

	response.Success(w, http.StatusOK, "Complaint deleted successfully", nil)
}

func (h *ComplaintHandler) AssignComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid complaint ID")
		return
	}

	var req dto.AssignComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	complaint, err := h.complaintUsecase.Assign(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to assign complaint")
		return
	}

	response.Success(w, http.StatusOK, "Complaint assigned successfully", complaint)
}

func (h *ComplaintHandler) ResolveComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid complaint ID")
		return
	}

	var req dto.ResolveComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	complaint, err := h.complaintUsecase.Resolve(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to resolve complaint")
		return
	}

	response.Success(w, http.StatusOK, "Complaint resolved successfully", complaint)
}

func (h *ComplaintHandler) SetComplaintPriority(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid complaint ID")
		return
	}

	var req dto.SetComplaintPriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	complaint, err := h.complaintUsecase.SetPriority(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to set complaint priority")
		return
	}

	response.Success(w, http.StatusOK, "Complaint priority updated successfully", complaint)
}

func (h *ComplaintHandler) AddComplaintComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid complaint ID")
		return
	}

	var req dto.AddComplaintCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	complaint, err := h.complaintUsecase.AddComment(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to add comment")
		return
	}

	response.Success(w, http.StatusOK, "Comment added successfully", complaint)
}

func (h *ComplaintHandler) EscalateComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid complaint ID")
		return
	}

	// The escalation note is optional; an empty body is fine.
	var req dto.EscalateComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	complaint, err := h.complaintUsecase.Escalate(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to escalate complaint")
		return
	}

	response.Success(w, http.StatusOK, "Complaint escalated successfully", complaint)
}

func (h *ComplaintHandler) ComplaintStats(w http.ResponseWriter, r *http.Request) {
	query, ok := statsQuery(w, r)
	if !ok {
		return
	}

	stats, err := h.complaintUsecase.Stats(r.Context(), query)
	if err != nil {
		h.handleError(w, err, "Failed to aggregate complaint stats")
		return
	}

	response.Success(w, http.StatusOK, "Complaint stats retrieved successfully", stats)
}

func (h *ComplaintHandler) listQuery(w http.ResponseWriter, r *http.Request) (*dto.ComplaintListQuery, bool) {
	page, limit := parsePagination(r)
	query := &dto.ComplaintListQuery{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
		Page:     page,
		Limit:    limit,
	}

	patientID, malformed := queryUUID(r, "patient_id")
	if malformed {
		response.BadRequest(w, "Invalid patient_id")
		return nil, false
	}
	query.PatientID = patientID

	assignedTo, malformed := queryUUID(r, "assigned_to")
	if malformed {
		response.BadRequest(w, "Invalid assigned_to")
		return nil, false
	}
	query.AssignedTo = assignedTo
	return query, true
}

func (h *ComplaintHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	if handleCommonError(w, err) {
		return
	}
	switch err {
	case usecase.ErrComplaintNotFound:
		response.NotFound(w, "Complaint not found")
	case usecase.ErrComplaintNotOpen:
		response.Conflict(w, "Complaint is no longer open")
	case usecase.ErrAssigneeNotFound:
		response.NotFound(w, "Assignee not found")
	case usecase.ErrAssigneeNotStaff:
		response.BadRequest(w, "Assignee must be a receptionist")
	case usecase.ErrResolutionRequired:
		response.BadRequest(w, "Resolution text is required")
	case usecase.ErrInvalidResolveStatus:
		response.BadRequest(w, "Resolve target must be RESOLVED or CLOSED")
	case usecase.ErrInvalidPriority:
		response.BadRequest(w, "Invalid priority")
	default:
		response.InternalServerError(w, fallback)
	}
}

// statsQuery parses the optional start_date/end_date range shared by the
// stats endpoints.
func statsQuery(w http.ResponseWriter, r *http.Request) (*dto.StatsQuery, bool) {
	query := &dto.StatsQuery{}

	start, malformed := queryDate(r, "start_date")
	if malformed {
		response.BadRequest(w, "start_date must use YYYY-MM-DD format")
		return nil, false
	}
	query.StartDate = start

	end, malformed := queryDate(r, "end_date")
	if malformed {
		response.BadRequest(w, "end_date must use YYYY-MM-DD format")
		return nil, false
	}
	query.EndDate = end
	return query, true
}
