package repository

import (
	"time"

	"clinic-backend/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	// PurgeBefore removes records of one stream older than the cutoff.
	PurgeBefore(db *gorm.DB, stream string, cutoff time.Time) (int64, error)
}
