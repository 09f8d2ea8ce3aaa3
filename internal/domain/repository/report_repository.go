package repository

import (
	"clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportFilter narrows report listings.
type ReportFilter struct {
	PatientID  *uuid.UUID
	Status     entity.ReportStatus
	ReportType string
	Priority   string

	// ExcludeDraft hides DRAFT reports from patient-facing listings.
	ExcludeDraft bool

	Page  int
	Limit int
}

type ReportRepository interface {
	Create(db *gorm.DB, report *entity.Report) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Report, error)
	List(db *gorm.DB, filter ReportFilter) ([]entity.Report, int64, error)

	// Transition applies updates only while the report status is one of the
	// from states. All writes are column-scoped so stale row state is never
	// written back.
	Transition(db *gorm.DB, id uuid.UUID, from []entity.ReportStatus, updates map[string]interface{}) (int64, error)

	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}
