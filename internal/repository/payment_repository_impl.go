package repository

import (
	"errors"
	"time"

	"clinic-backend/internal/domain/entity"
	domainRepo "clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type paymentRepository struct{}

func NewPaymentRepository() domainRepo.PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) Create(db *gorm.DB, payment *entity.Payment) error {
	return db.Create(payment).Error
}

func (r *paymentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := db.Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) List(db *gorm.DB, filter domainRepo.PaymentFilter) ([]entity.Payment, int64, error) {
	query := db.Model(&entity.Payment{})
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []entity.Payment
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *paymentRepository) Transition(db *gorm.DB, id uuid.UUID, from []entity.PaymentStatus, updates map[string]interface{}) (int64, error) {
	result := db.Model(&entity.Payment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(jsonbColumns(updates, "insurance", "payment_details"))
	return result.RowsAffected, result.Error
}

func (r *paymentRepository) Refund(db *gorm.DB, id uuid.UUID, refund entity.RefundInfo, target entity.PaymentStatus) (int64, error) {
	result := db.Model(&entity.Payment{}).
		Where("id = ? AND status = ? AND refund_info IS NULL", id, entity.PaymentStatusPaid).
		Updates(map[string]interface{}{
			"status":      target,
			"refund_info": jsonbValue(refund),
		})
	return result.RowsAffected, result.Error
}

func (r *paymentRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Payment{})
	return result.RowsAffected, result.Error
}

// NextInvoiceSeq increments the invoice counter in a single statement; the
// database serialises concurrent callers so no two ever see the same value.
func (r *paymentRepository) NextInvoiceSeq(db *gorm.DB) (int64, error) {
	var seq int64
	err := db.Raw(`
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value`, entity.CounterInvoice).
		Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *paymentRepository) Stats(db *gorm.DB, start, end *time.Time) (*domainRepo.PaymentStats, error) {
	base := db.Model(&entity.Payment{})
	if start != nil {
		base = base.Where("created_at >= ?", *start)
	}
	if end != nil {
		base = base.Where("created_at <= ?", *end)
	}

	stats := &domainRepo.PaymentStats{ByStatus: map[string]int64{}}

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

	type sumRow struct {
		Revenue  decimal.Decimal
		Refunded decimal.Decimal
	}
	var sums sumRow
	err := base.Session(&gorm.Session{}).
		Select(`
			COALESCE(SUM(amount) FILTER (WHERE status IN ('PAID','PARTIALLY_PAID','REFUNDED')), 0) AS revenue,
			COALESCE(SUM((refund_info->>'refund_amount')::numeric) FILTER (WHERE refund_info IS NOT NULL), 0) AS refunded`).
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = sums.Revenue
	stats.TotalRefunded = sums.Refunded

	return stats, nil
}
