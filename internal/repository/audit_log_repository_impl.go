package repository

import (
	"time"

	"clinic-backend/internal/domain/entity"
	domainRepo "clinic-backend/internal/domain/repository"

	"gorm.io/gorm"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Create(log).Error
}

func (r *auditLogRepository) PurgeBefore(db *gorm.DB, stream string, cutoff time.Time) (int64, error) {
	result := db.Where("stream = ? AND created_at < ?", stream, cutoff).
		Delete(&entity.AuditLog{})
	return result.RowsAffected, result.Error
}
