package converter

import (
	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/domain/entity"
)

// PaymentToResponse converts a Payment entity to PaymentResponse DTO
func PaymentToResponse(payment *entity.Payment) *dto.PaymentResponse {
	if payment == nil {
		return nil
	}

	return &dto.PaymentResponse{
		ID:            payment.ID,
		PatientID:     payment.PatientID,
		AppointmentID: payment.AppointmentID,
		CreatedBy:     payment.CreatedBy,
		InvoiceNumber: payment.InvoiceNumber,

		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Method:      payment.Method,
		Status:      string(payment.Status),
		PaymentDate: payment.PaymentDate,
		DueDate:     payment.DueDate,
		Description: payment.Description,

		Items:       payment.Items,
		Tax:         payment.Tax,
		Discount:    payment.Discount,
		TotalAmount: payment.TotalAmount,
		Insurance:   payment.Insurance,
		Details:     payment.Details,
		RefundInfo:  payment.RefundInfo,

		CreatedAt: payment.CreatedAt,
		UpdatedAt: payment.UpdatedAt,
	}
}

// PaymentsToResponses converts a slice of Payment entities to PaymentResponse DTOs
func PaymentsToResponses(payments []entity.Payment) []dto.PaymentResponse {
	responses := make([]dto.PaymentResponse, len(payments))
	for i, payment := range payments {
		resp := PaymentToResponse(&payment)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
