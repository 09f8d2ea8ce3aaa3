package repository

import (
	"errors"

	"clinic-backend/internal/domain/entity"
	domainRepo "clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reportRepository struct{}

func NewReportRepository() domainRepo.ReportRepository {
	return &reportRepository{}
}

func (r *reportRepository) Create(db *gorm.DB, report *entity.Report) error {
	return db.Create(report).Error
}

func (r *reportRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Report, error) {
	var report entity.Report
	err := db.Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) List(db *gorm.DB, filter domainRepo.ReportFilter) ([]entity.Report, int64, error) {
	query := db.Model(&entity.Report{})
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ReportType != "" {
		query = query.Where("report_type = ?", filter.ReportType)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.ExcludeDraft {
		query = query.Where("status <> ?", entity.ReportStatusDraft)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []entity.Report
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) Transition(db *gorm.DB, id uuid.UUID, from []entity.ReportStatus, updates map[string]interface{}) (int64, error) {
	result := db.Model(&entity.Report{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(jsonbColumns(updates, "findings", "attachments"))
	return result.RowsAffected, result.Error
}

func (r *reportRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Report{})
	return result.RowsAffected, result.Error
}
