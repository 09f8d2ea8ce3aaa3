package dto

import (
	"time"

	"clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type PaymentItemInput struct {
	Description string          `json:"description" validate:"required,max=200"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

type CreatePaymentRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" validate:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id"`

	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Currency    string          `json:"currency" validate:"omitempty,len=3"`
	Method      string          `json:"method" validate:"omitempty,max=30"`
	DueDate     *time.Time      `json:"due_date"`
	Description string          `json:"description" validate:"omitempty,max=1000"`

	Items       []PaymentItemInput       `json:"items" validate:"omitempty,dive"`
	Tax         decimal.Decimal          `json:"tax"`
	Discount    decimal.Decimal          `json:"discount"`
	TotalAmount decimal.Decimal          `json:"total_amount"`
	Insurance   *entity.PaymentInsurance `json:"insurance,omitempty"`
	Details     *entity.PaymentDetails   `json:"payment_details,omitempty"`
}

type UpdatePaymentRequest struct {
	Method      *string                  `json:"method" validate:"omitempty,max=30"`
	DueDate     *time.Time               `json:"due_date"`
	Description *string                  `json:"description" validate:"omitempty,max=1000"`
	Insurance   *entity.PaymentInsurance `json:"insurance,omitempty"`
	Details     *entity.PaymentDetails   `json:"payment_details,omitempty"`
}

type SetPaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PAID PARTIALLY_PAID FAILED"`
}

type RefundPaymentRequest struct {
	RefundAmount decimal.Decimal `json:"refund_amount" validate:"required"`
	Reason       string          `json:"reason" validate:"omitempty,max=500"`
	Method       string          `json:"method" validate:"omitempty,max=30"`
}

// Query DTOs

type PaymentListQuery struct {
	PatientID *uuid.UUID
	Status    string
	Page      int
	Limit     int
}

// StatsQuery bounds a stats aggregation to an optional date range.
type StatsQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// Response DTOs

type PaymentResponse struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	InvoiceNumber string     `json:"invoice_number"`

	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Method      string          `json:"method,omitempty"`
	Status      string          `json:"status"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Description string          `json:"description,omitempty"`

	Items       []entity.PaymentItem     `json:"items,omitempty"`
	Tax         decimal.Decimal          `json:"tax"`
	Discount    decimal.Decimal          `json:"discount"`
	TotalAmount decimal.Decimal          `json:"total_amount"`
	Insurance   *entity.PaymentInsurance `json:"insurance,omitempty"`
	Details     *entity.PaymentDetails   `json:"payment_details,omitempty"`
	RefundInfo  *entity.RefundInfo       `json:"refund_info,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PaymentListResponse struct {
	Payments    []PaymentResponse `json:"payments"`
	Total       int64             `json:"total"`
	CurrentPage int               `json:"currentPage"`
	TotalPages  int               `json:"totalPages"`
}
