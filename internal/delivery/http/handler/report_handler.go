package handler

import (
	"encoding/json"
	"net/http"

	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/usecase"
	"clinic-backend/pkg/response"
	"clinic-backend/pkg/validator"
)

type ReportHandler struct {
	reportUsecase usecase.ReportUsecase
	validator     *validator.CustomValidator
}

func NewReportHandler(reportUsecase usecase.ReportUsecase, validator *validator.CustomValidator) *ReportHandler {
	return &ReportHandler{
		reportUsecase: reportUsecase,
		validator:     validator,
	}
}

func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	report, err := h.reportUsecase.Create(r.Context(), &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to create report")
		return
	}

	response.Success(w, http.StatusCreated, "Report created successfully", report)
}

func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	report, err := h.reportUsecase.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "Failed to get report")
		return
	}

	response.Success(w, http.StatusOK, "Report retrieved successfully", report)
}

func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	result, err := h.reportUsecase.List(r.Context(), query)
	if err != nil {
		h.handleError(w, err, "Failed to list reports")
		return
	}

	response.Success(w, http.StatusOK, "Reports retrieved successfully", result)
}

func (h *ReportHandler) ListMyReports(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	result, err := h.reportUsecase.ListMine(r.Context(), query)
	if err != nil {
		h.handleError(w, err, "Failed to list reports")
		return
	}

	response.Success(w, http.StatusOK, "Reports retrieved successfully", result)
}

func (h *ReportHandler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	var req dto.UpdateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	report, err := h.reportUsecase.Update(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to update report")
		return
	}

	response.Success(w, http.StatusOK, "Report updated successfully", report)
}

func (h *ReportHandler) SetReportStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	var req dto.SetReportStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	report, err := h.reportUsecase.SetStatus(r.Context(), id, &req, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to update report status")
		return
	}

	response.Success(w, http.StatusOK, "Report status updated successfully", report)
}

// DownloadReport serves report metadata; rendering a file is out of scope so
// the endpoint responds 501 with the downloadable payload attached.
func (h *ReportHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	result, err := h.reportUsecase.Download(r.Context(), id, sourceAddr(r))
	if err != nil {
		h.handleError(w, err, "Failed to download report")
		return
	}

	response.JSON(w, http.StatusNotImplemented, response.Response{
		Status:  "error",
		Message: "Report file generation is not implemented",
		Data:    result,
	})
}

func (h *ReportHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	if err := h.reportUsecase.Delete(r.Context(), id, sourceAddr(r)); err != nil {
		h.handleError(w, err, "Failed to delete report")
		return
	}

	response.Success(w, http.StatusOK, "Report deleted successfully", nil)
}

func (h *ReportHandler) listQuery(w http.ResponseWriter, r *http.Request) (*dto.ReportListQuery, bool) {
	page, limit := parsePagination(r)
	query := &dto.ReportListQuery{
		Status:     r.URL.Query().Get("status"),
		ReportType: r.URL.Query().Get("report_type"),
		Priority:   r.URL.Query().Get("priority"),
		Page:       page,
		Limit:      limit,
	}

	patientID, malformed := queryUUID(r, "patient_id")
	if malformed {
		response.BadRequest(w, "Invalid patient_id")
		return nil, false
	}
	query.PatientID = patientID
	return query, true
}

func (h *ReportHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	if handleCommonError(w, err) {
		return
	}
	switch err {
	case usecase.ErrReportNotFound:
		response.NotFound(w, "Report not found")
	case usecase.ErrReportFrozen:
		response.Conflict(w, "Approved reports can no longer be modified")
	case usecase.ErrReportNotDownloadable:
		response.Conflict(w, "Report is not approved for download")
	case usecase.ErrInvalidReportStatus:
		response.BadRequest(w, "Invalid report status")
	case usecase.ErrInvalidPriority:
		response.BadRequest(w, "Invalid priority")
	case usecase.ErrInvalidDateFormat:
		response.BadRequest(w, "Date must use YYYY-MM-DD format")
	default:
		response.InternalServerError(w, fallback)
	}
}
