package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the workflow state of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusApproved  AppointmentStatus = "APPROVED"
	AppointmentStatusRejected  AppointmentStatus = "REJECTED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusApproved, AppointmentStatusRejected,
		AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave the state.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusRejected, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// AppointmentTypes lists the accepted diagnostic appointment types.
var AppointmentTypes = []string{
	"Blood Test", "Urine Test", "X-Ray", "CT Scan", "MRI", "Ultrasound", "Other",
}

func ValidAppointmentType(t string) bool {
	for _, known := range AppointmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HomeCollection is the home-sample-collection sub-flow embedded in an
// appointment. Approved implies requested, and only an APPROVED appointment
// may carry an approved collection.
type HomeCollection struct {
	Requested      bool       `json:"requested"`
	Approved       bool       `json:"approved"`
	Address        string     `json:"address,omitempty"`
	CollectionDate *time.Time `json:"collection_date,omitempty"`
	CollectionTime string     `json:"collection_time,omitempty"`
	CollectorID    *uuid.UUID `json:"collector_id,omitempty"`
}

// TestResult is a single diagnostic result appended by staff.
type TestResult struct {
	Name        string    `json:"name"`
	Value       string    `json:"value"`
	Unit        string    `json:"unit,omitempty"`
	NormalRange string    `json:"normal_range,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	RecordedBy  uuid.UUID `json:"recorded_by"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Appointment is the aggregate root of the diagnostic appointment workflow.
// Writes to the embedded home-collection and test-result objects go through
// the appointment usecase so invariants are enforced in one place.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	ReceptionistID  *uuid.UUID        `gorm:"type:uuid;index" json:"receptionist_id,omitempty"`
	AppointmentDate time.Time         `gorm:"type:date;not null;index" json:"appointment_date"`
	AppointmentTime string            `gorm:"type:char(5);not null" json:"appointment_time"`
	Type            string            `gorm:"type:varchar(50);not null" json:"type"`
	Reason          string            `gorm:"type:text;not null" json:"reason"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ApprovalNotes   string            `gorm:"type:text" json:"approval_notes,omitempty"`
	ApprovedAt      *time.Time        `json:"approved_at,omitempty"`
	RejectedAt      *time.Time        `json:"rejected_at,omitempty"`
	RejectionReason string            `gorm:"type:text" json:"rejection_reason,omitempty"`

	HomeCollection *HomeCollection `gorm:"serializer:json;type:jsonb" json:"home_collection,omitempty"`
	TestResults    []TestResult    `gorm:"serializer:json;type:jsonb" json:"test_results,omitempty"`

	// Payment rollup maintained by the payment workflow.
	PaymentStatus string          `gorm:"type:varchar(20)" json:"payment_status,omitempty"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"paid_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

func (a *Appointment) IsApproved() bool {
	return a.Status == AppointmentStatusApproved
}

// HomeCollectionRequested reports whether the patient asked for home
// collection.
func (a *Appointment) HomeCollectionRequested() bool {
	return a.HomeCollection != nil && a.HomeCollection.Requested
}
