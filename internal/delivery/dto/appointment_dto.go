package dto

import (
	"time"

	"clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateAppointmentRequest struct {
	AppointmentDate string `json:"appointment_date" validate:"required"` // Format: YYYY-MM-DD
	AppointmentTime string `json:"appointment_time" validate:"required,hhmm"`
	Type            string `json:"type" validate:"required"`
	Reason          string `json:"reason" validate:"required,min=10,max=500"`
}

type UpdateAppointmentRequest struct {
	AppointmentDate *string `json:"appointment_date" validate:"omitempty"`
	AppointmentTime *string `json:"appointment_time" validate:"omitempty,hhmm"`
	Type            *string `json:"type" validate:"omitempty"`
	Reason          *string `json:"reason" validate:"omitempty,min=10,max=500"`
}

type ApproveAppointmentRequest struct {
	ApprovalNotes string `json:"approval_notes" validate:"omitempty,max=1000"`
}

type RejectAppointmentRequest struct {
	RejectionReason string `json:"rejection_reason" validate:"required,min=5,max=1000"`
}

type SetAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=COMPLETED CANCELLED NO_SHOW"`
}

type HomeCollectionRequest struct {
	Address        string `json:"address" validate:"required,min=10,max=500"`
	CollectionDate string `json:"collection_date" validate:"required"` // Format: YYYY-MM-DD
	CollectionTime string `json:"collection_time" validate:"required,hhmm"`
}

type ApproveHomeCollectionRequest struct {
	CollectorID uuid.UUID `json:"collector_id" validate:"required"`
}

type TestResultInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Value       string `json:"value" validate:"required,max=100"`
	Unit        string `json:"unit" validate:"omitempty,max=30"`
	NormalRange string `json:"normal_range" validate:"omitempty,max=100"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
}

type AddTestResultsRequest struct {
	Results []TestResultInput `json:"results" validate:"required,min=1,dive"`
}

// Query DTOs

type AppointmentListQuery struct {
	PatientID *uuid.UUID
	Status    string
	Type      string
	Page      int
	Limit     int
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	ReceptionistID  *uuid.UUID `json:"receptionist_id,omitempty"`
	AppointmentDate time.Time  `json:"appointment_date"`
	AppointmentTime string     `json:"appointment_time"`
	Type            string     `json:"type"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	ApprovalNotes   string     `json:"approval_notes,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	HomeCollection *entity.HomeCollection `json:"home_collection,omitempty"`
	TestResults    []entity.TestResult    `json:"test_results,omitempty"`

	PaymentStatus string          `json:"payment_status,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int64                 `json:"total"`
	CurrentPage  int                   `json:"currentPage"`
	TotalPages   int                   `json:"totalPages"`
}
