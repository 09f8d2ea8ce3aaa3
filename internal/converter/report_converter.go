package converter

import (
	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/domain/entity"
)

// ReportToResponse converts a Report entity to ReportResponse DTO
func ReportToResponse(report *entity.Report) *dto.ReportResponse {
	if report == nil {
		return nil
	}

	return &dto.ReportResponse{
		ID:            report.ID,
		PatientID:     report.PatientID,
		AppointmentID: report.AppointmentID,
		CreatedBy:     report.CreatedBy,
		ReviewedBy:    report.ReviewedBy,
		ReviewedAt:    report.ReviewedAt,
		ReportType:    report.ReportType,
		Title:         report.Title,
		Description:   report.Description,

		Findings:         report.Findings,
		Diagnosis:        report.Diagnosis,
		Recommendations:  report.Recommendations,
		FollowUpRequired: report.FollowUpRequired,
		FollowUpDate:     report.FollowUpDate,
		Attachments:      report.Attachments,
		Status:           string(report.Status),
		ReviewNotes:      report.ReviewNotes,
		Priority:         report.Priority,
		Confidential:     report.Confidential,

		CreatedAt: report.CreatedAt,
		UpdatedAt: report.UpdatedAt,
	}
}

// ReportsToResponses converts a slice of Report entities to ReportResponse DTOs
func ReportsToResponses(reports []entity.Report) []dto.ReportResponse {
	responses := make([]dto.ReportResponse, len(reports))
	for i, report := range reports {
		resp := ReportToResponse(&report)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
