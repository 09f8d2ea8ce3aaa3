package converter

import (
	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/domain/entity"
)

// ComplaintToResponse converts a Complaint entity to ComplaintResponse DTO
func ComplaintToResponse(complaint *entity.Complaint) *dto.ComplaintResponse {
	if complaint == nil {
		return nil
	}

	return &dto.ComplaintResponse{
		ID:            complaint.ID,
		PatientID:     complaint.PatientID,
		Subject:       complaint.Subject,
		Description:   complaint.Description,
		Category:      complaint.Category,
		Priority:      complaint.Priority,
		Status:        string(complaint.Status),
		AssignedTo:    complaint.AssignedTo,
		AssignedAt:    complaint.AssignedAt,
		AssignedBy:    complaint.AssignedBy,
		ResolvedBy:    complaint.ResolvedBy,
		ResolvedAt:    complaint.ResolvedAt,
		Resolution:    complaint.Resolution,
		ContactMethod: complaint.ContactMethod,

		Attachments:       complaint.Attachments,
		Comments:          complaint.Comments,
		EscalationLevel:   complaint.EscalationLevel,
		EscalationHistory: complaint.EscalationHistory,

		LastActivityAt: complaint.LastActivityAt,
		CreatedAt:      complaint.CreatedAt,
		UpdatedAt:      complaint.UpdatedAt,
	}
}

// ComplaintsToResponses converts a slice of Complaint entities to ComplaintResponse DTOs
func ComplaintsToResponses(complaints []entity.Complaint) []dto.ComplaintResponse {
	responses := make([]dto.ComplaintResponse, len(complaints))
	for i, complaint := range complaints {
		resp := ComplaintToResponse(&complaint)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
