package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the workflow state of a payment/invoice.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusFailed        PaymentStatus = "FAILED"
	PaymentStatusRefunded      PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusPartiallyPaid,
		PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentItem is one invoice line item.
type PaymentItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentInsurance captures the insurance block of an invoice.
type PaymentInsurance struct {
	Provider      string          `json:"provider,omitempty"`
	PolicyNumber  string          `json:"policy_number,omitempty"`
	ClaimNumber   string          `json:"claim_number,omitempty"`
	CoveredAmount decimal.Decimal `json:"covered_amount"`
}

// PaymentDetails records processor metadata. The system records payment
// metadata only; it does not move money.
type PaymentDetails struct {
	TransactionID string          `json:"transaction_id,omitempty"`
	ProcessorFee  decimal.Decimal `json:"processor_fee"`
	NetAmount     decimal.Decimal `json:"net_amount"`
}

// RefundInfo records a full or partial refund against the payment.
type RefundInfo struct {
	RefundAmount decimal.Decimal `json:"refund_amount"`
	RefundDate   time.Time       `json:"refund_date"`
	Reason       string          `json:"reason,omitempty"`
	Method       string          `json:"method,omitempty"`
}

// Payment is the aggregate root of the payment/invoice workflow.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_payments_patient_created" json:"patient_id"`
	AppointmentID *uuid.UUID      `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	InvoiceNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string          `gorm:"type:char(3);not null;default:'USD'" json:"currency"`
	Method        string          `gorm:"type:varchar(30)" json:"method,omitempty"`
	Status        PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	DueDate       *time.Time      `gorm:"type:date" json:"due_date,omitempty"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`

	Items       []PaymentItem     `gorm:"serializer:json;type:jsonb" json:"items,omitempty"`
	Tax         decimal.Decimal   `gorm:"type:decimal(12,2);default:0" json:"tax"`
	Discount    decimal.Decimal   `gorm:"type:decimal(12,2);default:0" json:"discount"`
	TotalAmount decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Insurance   *PaymentInsurance `gorm:"serializer:json;type:jsonb" json:"insurance,omitempty"`
	Details     *PaymentDetails   `gorm:"serializer:json;type:jsonb" json:"payment_details,omitempty"`
	RefundInfo  *RefundInfo       `gorm:"serializer:json;type:jsonb" json:"refund_info,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_payments_patient_created,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// RefundedAmount returns the amount refunded so far, zero if none.
func (p *Payment) RefundedAmount() decimal.Decimal {
	if p.RefundInfo == nil {
		return decimal.Zero
	}
	return p.RefundInfo.RefundAmount
}

// ItemsTotal sums line items plus tax minus discount.
func (p *Payment) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range p.Items {
		sum = sum.Add(item.Amount)
	}
	return sum.Add(p.Tax).Sub(p.Discount)
}

// StatusAfterRefund derives the post-refund status from the refunded ratio.
func (p *Payment) StatusAfterRefund(refunded decimal.Decimal) PaymentStatus {
	if refunded.Equal(p.Amount) {
		return PaymentStatusRefunded
	}
	return PaymentStatusPartiallyPaid
}
