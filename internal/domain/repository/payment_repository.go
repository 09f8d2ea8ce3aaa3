package repository

import (
	"time"

	"clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	PatientID *uuid.UUID
	Status    entity.PaymentStatus
	Page      int
	Limit     int
}

// PaymentStats is the grouped aggregation served by the stats endpoint.
type PaymentStats struct {
	Total         int64            `json:"total"`
	ByStatus      map[string]int64 `json:"by_status"`
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	TotalRefunded decimal.Decimal  `json:"total_refunded"`
}

type PaymentRepository interface {
	Create(db *gorm.DB, payment *entity.Payment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Payment, error)
	List(db *gorm.DB, filter PaymentFilter) ([]entity.Payment, int64, error)

	// Transition applies updates only while the payment status is one of the
	// from states. All writes are column-scoped so stale row state is never
	// written back.
	Transition(db *gorm.DB, id uuid.UUID, from []entity.PaymentStatus, updates map[string]interface{}) (int64, error)

	// Refund writes the refund block and target status only while the payment
	// is still PAID and carries no refund yet.
	Refund(db *gorm.DB, id uuid.UUID, refund entity.RefundInfo, target entity.PaymentStatus) (int64, error)

	Delete(db *gorm.DB, id uuid.UUID) (int64, error)

	// NextInvoiceSeq atomically increments and returns the invoice sequence.
	NextInvoiceSeq(db *gorm.DB) (int64, error)

	Stats(db *gorm.DB, start, end *time.Time) (*PaymentStats, error)
}
