package repository

import (
	"time"

	"clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	PatientID  *uuid.UUID
	AssignedTo *uuid.UUID
	Status     entity.ComplaintStatus
	Priority   string
	Page       int
	Limit      int
}

// ComplaintStats is the grouped aggregation served by the stats endpoint.
type ComplaintStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
	Overdue    int64            `json:"overdue"`
}

type ComplaintRepository interface {
	Create(db *gorm.DB, complaint *entity.Complaint) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Complaint, error)
	List(db *gorm.DB, filter ComplaintFilter) ([]entity.Complaint, int64, error)
	ListOverdue(db *gorm.DB, cutoff time.Time) ([]entity.Complaint, error)

	// Transition applies updates only while the complaint status is one of the
	// from states. All writes are column-scoped so a concurrent writer can
	// never be overwritten with stale row state.
	Transition(db *gorm.DB, id uuid.UUID, from []entity.ComplaintStatus, updates map[string]interface{}) (int64, error)

	// SetPriority touches only the priority column and the activity stamp.
	SetPriority(db *gorm.DB, id uuid.UUID, priority string, now time.Time) (int64, error)

	// AppendComment appends to the comment list atomically in the store, so
	// two concurrent comments both survive.
	AppendComment(db *gorm.DB, id uuid.UUID, comment entity.ComplaintComment, now time.Time) (int64, error)

	// Escalate bumps the level and appends the history record only while the
	// row still carries fromLevel; a lost race surfaces as zero affected rows.
	Escalate(db *gorm.DB, id uuid.UUID, fromLevel, toLevel int, record entity.EscalationRecord, now time.Time) (int64, error)

	// DeleteOpen only removes while the complaint is still OPEN.
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
	DeleteOpen(db *gorm.DB, id uuid.UUID) (int64, error)

	Stats(db *gorm.DB, start, end *time.Time, now time.Time) (*ComplaintStats, error)
}
