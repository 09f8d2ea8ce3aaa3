package repository

import (
	"clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	PatientID *uuid.UUID
	Status    entity.AppointmentStatus
	Type      string
	Page      int
	Limit     int
}

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	List(db *gorm.DB, filter AppointmentFilter) ([]entity.Appointment, int64, error)

	// Transition applies updates only while the appointment is still in the
	// from state; zero affected rows means a concurrent writer won. All
	// writes are column-scoped so stale row state is never written back.
	Transition(db *gorm.DB, id uuid.UUID, from entity.AppointmentStatus, updates map[string]interface{}) (int64, error)

	RequestHomeCollection(db *gorm.DB, id uuid.UUID, hc entity.HomeCollection) (int64, error)
	ApproveHomeCollection(db *gorm.DB, id uuid.UUID, hc entity.HomeCollection) (int64, error)

	// AppendTestResults appends the new results to the jsonb list inside the
	// store, so concurrent appends cannot drop each other.
	AppendTestResults(db *gorm.DB, id uuid.UUID, results []entity.TestResult) (int64, error)
	UpdatePaymentRollup(db *gorm.DB, id uuid.UUID, status string, total, paid decimal.Decimal) error

	// Delete removes regardless of status (staff); DeletePending only removes
	// while the appointment is still PENDING (patient owner).
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
	DeletePending(db *gorm.DB, id uuid.UUID) (int64, error)
}
