package repository

import (
	"errors"
	"time"

	"clinic-backend/internal/domain/entity"
	domainRepo "clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type complaintRepository struct{}

func NewComplaintRepository() domainRepo.ComplaintRepository {
	return &complaintRepository{}
}

func (r *complaintRepository) Create(db *gorm.DB, complaint *entity.Complaint) error {
	return db.Create(complaint).Error
}

func (r *complaintRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Complaint, error) {
	var complaint entity.Complaint
	err := db.Where("id = ?", id).First(&complaint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) SetPriority(db *gorm.DB, id uuid.UUID, priority string, now time.Time) (int64, error) {
	result := db.Model(&entity.Complaint{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"priority":         priority,
			"last_activity_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *complaintRepository) AppendComment(db *gorm.DB, id uuid.UUID, comment entity.ComplaintComment, now time.Time) (int64, error) {
	result := db.Model(&entity.Complaint{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"comments":         jsonbAppend("comments", []entity.ComplaintComment{comment}),
			"last_activity_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *complaintRepository) Escalate(db *gorm.DB, id uuid.UUID, fromLevel, toLevel int, record entity.EscalationRecord, now time.Time) (int64, error) {
	result := db.Model(&entity.Complaint{}).
		Where("id = ? AND escalation_level = ?", id, fromLevel).
		Updates(map[string]interface{}{
			"escalation_level":   toLevel,
			"escalation_history": jsonbAppend("escalation_history", []entity.EscalationRecord{record}),
			"last_activity_at":   now,
		})
	return result.RowsAffected, result.Error
}

func (r *complaintRepository) List(db *gorm.DB, filter domainRepo.ComplaintFilter) ([]entity.Complaint, int64, error) {
	query := db.Model(&entity.Complaint{})
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var complaints []entity.Complaint
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&complaints).Error
	if err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

func (r *complaintRepository) ListOverdue(db *gorm.DB, cutoff time.Time) ([]entity.Complaint, error) {
	var complaints []entity.Complaint
	err := db.
		Where("status IN ? AND created_at < ?",
			[]entity.ComplaintStatus{entity.ComplaintStatusOpen, entity.ComplaintStatusAssigned}, cutoff).
		Order("created_at ASC").
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

func (r *complaintRepository) Transition(db *gorm.DB, id uuid.UUID, from []entity.ComplaintStatus, updates map[string]interface{}) (int64, error) {
	result := db.Model(&entity.Complaint{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(jsonbColumns(updates, "attachments"))
	return result.RowsAffected, result.Error
}

func (r *complaintRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Complaint{})
	return result.RowsAffected, result.Error
}

// DeleteOpen removes only while the complaint is still OPEN, so a patient
// delete cannot race an assignment.
func (r *complaintRepository) DeleteOpen(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ? AND status = ?", id, entity.ComplaintStatusOpen).
		Delete(&entity.Complaint{})
	return result.RowsAffected, result.Error
}

func (r *complaintRepository) Stats(db *gorm.DB, start, end *time.Time, now time.Time) (*domainRepo.ComplaintStats, error) {
	base := db.Model(&entity.Complaint{})
	if start != nil {
		base = base.Where("created_at >= ?", *start)
	}
	if end != nil {
		base = base.Where("created_at <= ?", *end)
	}

	stats := &domainRepo.ComplaintStats{
		ByStatus:   map[string]int64{},
		ByPriority: map[string]int64{},
	}

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type groupRow struct {
		Key   string
		Count int64
	}

	var statusRows []groupRow
	if err := base.Session(&gorm.Session{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Key] = row.Count
	}

	var priorityRows []groupRow
	if err := base.Session(&gorm.Session{}).
		Select("priority AS key, COUNT(*) AS count").
		Group("priority").
		Scan(&priorityRows).Error; err != nil {
		return nil, err
	}
	for _, row := range priorityRows {
		stats.ByPriority[row.Key] = row.Count
	}

	err := base.Session(&gorm.Session{}).
		Where("status IN ? AND created_at < ?",
			[]entity.ComplaintStatus{entity.ComplaintStatusOpen, entity.ComplaintStatusAssigned},
			now.Add(-entity.OverdueAge)).
		Count(&stats.Overdue).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
