package converter

import (
	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		ReceptionistID:  appointment.ReceptionistID,
		AppointmentDate: appointment.AppointmentDate,
		AppointmentTime: appointment.AppointmentTime,
		Type:            appointment.Type,
		Reason:          appointment.Reason,
		Status:          string(appointment.Status),
		ApprovalNotes:   appointment.ApprovalNotes,
		ApprovedAt:      appointment.ApprovedAt,
		RejectedAt:      appointment.RejectedAt,
		RejectionReason: appointment.RejectionReason,

		HomeCollection: appointment.HomeCollection,
		TestResults:    appointment.TestResults,

		PaymentStatus: appointment.PaymentStatus,
		TotalAmount:   appointment.TotalAmount,
		PaidAmount:    appointment.PaidAmount,

		CreatedAt: appointment.CreatedAt,
		UpdatedAt: appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		resp := AppointmentToResponse(&appointment)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
