package repository

import (
	"errors"

	"clinic-backend/internal/domain/entity"
	domainRepo "clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(db *gorm.DB, filter domainRepo.AppointmentFilter) ([]entity.Appointment, int64, error) {
	query := db.Model(&entity.Appointment{})
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appointments []entity.Appointment
	err := query.
		Order("appointment_date DESC, created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

// Transition atomically applies the updates only while the row still carries
// the expected status. Zero affected rows means the precondition no longer
// holds and the caller must surface a state conflict.
func (r *appointmentRepository) Transition(db *gorm.DB, id uuid.UUID, from entity.AppointmentStatus, updates map[string]interface{}) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) RequestHomeCollection(db *gorm.DB, id uuid.UUID, hc entity.HomeCollection) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusApproved).
		Update("home_collection", jsonbValue(hc))
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) ApproveHomeCollection(db *gorm.DB, id uuid.UUID, hc entity.HomeCollection) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ? AND home_collection->>'requested' = 'true' AND home_collection->>'approved' = 'false'",
			id, entity.AppointmentStatusApproved).
		Update("home_collection", jsonbValue(hc))
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) AppendTestResults(db *gorm.DB, id uuid.UUID, results []entity.TestResult) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusApproved).
		Update("test_results", jsonbAppend("test_results", results))
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) UpdatePaymentRollup(db *gorm.DB, id uuid.UUID, status string, total, paid decimal.Decimal) error {
	return db.Model(&entity.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": status,
			"total_amount":   total,
			"paid_amount":    paid,
		}).Error
}

func (r *appointmentRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}

// DeletePending removes only while the appointment is still PENDING,
// preventing a patient delete from racing a staff approval.
func (r *appointmentRepository) DeletePending(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ? AND status = ?", id, entity.AppointmentStatusPending).
		Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}
