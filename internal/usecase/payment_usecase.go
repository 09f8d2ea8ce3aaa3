package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"time"

	"clinic-backend/internal/converter"
	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/delivery/http/middleware"
	"clinic-backend/internal/domain/entity"
	"clinic-backend/internal/domain/repository"
	"clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrDuplicateInvoice       = errors.New("invoice number already exists")
	ErrItemsTotalMismatch     = errors.New("total amount does not match line items")
	ErrInvalidPaymentStatus   = errors.New("invalid payment status")
	ErrRefundExceedsAmount    = errors.New("refund amount exceeds payment amount")
	ErrRefundNotPositive      = errors.New("refund amount must be positive")
	ErrPaymentAlreadyRefunded = errors.New("payment already refunded")
)

const paymentStatsCacheKey = "stats:payments"

type PaymentUsecase interface {
	Create(ctx context.Context, req *dto.CreatePaymentRequest, sourceAddr string) (*dto.PaymentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error)
	List(ctx context.Context, query *dto.PaymentListQuery) (*dto.PaymentListResponse, error)
	ListMine(ctx context.Context, query *dto.PaymentListQuery) (*dto.PaymentListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePaymentRequest, sourceAddr string) (*dto.PaymentResponse, error)
	SetStatus(ctx context.Context, id uuid.UUID, req *dto.SetPaymentStatusRequest, sourceAddr string) (*dto.PaymentResponse, error)
	Refund(ctx context.Context, id uuid.UUID, req *dto.RefundPaymentRequest, sourceAddr string) (*dto.PaymentResponse, error)
	Delete(ctx context.Context, id uuid.UUID, sourceAddr string) error
	Stats(ctx context.Context, query *dto.StatsQuery) (*repository.PaymentStats, error)
}

type paymentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	cache           *redis.Client
	paymentRepo     repository.PaymentRepository
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
}

func NewPaymentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cache *redis.Client,
	paymentRepo repository.PaymentRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) PaymentUsecase {
	return &paymentUsecase{
		db:              db,
		log:             log,
		cache:           cache,
		paymentRepo:     paymentRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
	}
}

// Create issues an invoice. The invoice number is generated from an atomic
// store-side sequence so concurrent creations never collide.
func (u *paymentUsecase) Create(ctx context.Context, req *dto.CreatePaymentRequest, sourceAddr string) (*dto.PaymentResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	items := make([]entity.PaymentItem, len(req.Items))
	for i, item := range req.Items {
		amount := item.Amount
		if amount.IsZero() {
			amount = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		items[i] = entity.PaymentItem{
			Description: html.EscapeString(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      amount,
		}
	}

	payment := &entity.Payment{
		PatientID:     req.PatientID,
		AppointmentID: req.AppointmentID,
		CreatedBy:     actor.ID,
		Amount:        req.Amount,
		Currency:      currencyOrDefault(req.Currency),
		Method:        req.Method,
		Status:        entity.PaymentStatusPending,
		DueDate:       req.DueDate,
		Description:   html.EscapeString(req.Description),
		Items:         items,
		Tax:           req.Tax,
		Discount:      req.Discount,
		TotalAmount:   req.TotalAmount,
		Insurance:     req.Insurance,
		Details:       req.Details,
	}

	if len(payment.Items) > 0 {
		computed := payment.ItemsTotal()
		if payment.TotalAmount.IsZero() {
			payment.TotalAmount = computed
		} else if !payment.TotalAmount.Equal(computed) {
			return nil, ErrItemsTotalMismatch
		}
	} else if payment.TotalAmount.IsZero() {
		payment.TotalAmount = payment.Amount
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	seq, err := u.paymentRepo.NextInvoiceSeq(tx)
	if err != nil {
		u.log.Warnf("Failed to allocate invoice sequence: %+v", err)
		return nil, err
	}
	payment.InvoiceNumber = fmt.Sprintf("INV-%d-%04d", time.Now().UnixMilli(), seq%10000)

	if err := u.paymentRepo.Create(tx, payment); err != nil {
		if isDuplicateKeyError(err, "idx_payments_invoice_number") {
			return nil, ErrDuplicateInvoice
		}
		u.log.Warnf("Failed to create payment: %+v", err)
		return nil, err
	}

	if payment.AppointmentID != nil {
		if err := u.rollup(tx, payment); err != nil {
			return nil, err
		}
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventPaymentCreate,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "payment",
		ResourceID:   payment.ID.String(),
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	u.invalidateStats(ctx)
	return converter.PaymentToResponse(payment), nil
}

func (u *paymentUsecase) Get(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error) {
	_, payment, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.PaymentToResponse(payment), nil
}

func (u *paymentUsecase) List(ctx context.Context, query *dto.PaymentListQuery) (*dto.PaymentListResponse, error) {
	filter := repository.PaymentFilter{
		PatientID: query.PatientID,
		Status:    entity.PaymentStatus(query.Status),
		Page:      query.Page,
		Limit:     query.Limit,
	}
	return u.list(ctx, filter, query.Page, query.Limit)
}

func (u *paymentUsecase) ListMine(ctx context.Context, query *dto.PaymentListQuery) (*dto.PaymentListResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	filter := repository.PaymentFilter{
		PatientID: &actor.ID,
		Status:    entity.PaymentStatus(query.Status),
		Page:      query.Page,
		Limit:     query.Limit,
	}
	return u.list(ctx, filter, query.Page, query.Limit)
}

func (u *paymentUsecase) list(ctx context.Context, filter repository.PaymentFilter, page, limit int) (*dto.PaymentListResponse, error) {
	payments, total, err := u.paymentRepo.List(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list payments: %+v", err)
		return nil, err
	}
	return &dto.PaymentListResponse{
		Payments:    converter.PaymentsToResponses(payments),
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages(total, limit),
	}, nil
}

// Update edits invoice metadata. Only the creator or a super-admin may edit,
// and once PAID only a super-admin may.
func (u *paymentUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePaymentRequest, sourceAddr string) (*dto.PaymentResponse, error) {
	actor, payment, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsSuperAdmin() && actor.ID != payment.CreatedBy {
		return nil, ErrForbidden
	}
	if payment.IsPaid() && !actor.IsSuperAdmin() {
		return nil, ErrStateConflict
	}

	var changed []string
	updates := map[string]interface{}{}
	if req.Method != nil {
		updates["method"] = *req.Method
		changed = append(changed, "method")
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
		changed = append(changed, "due_date")
	}
	if req.Description != nil {
		updates["description"] = html.EscapeString(*req.Description)
		changed = append(changed, "description")
	}
	if req.Insurance != nil {
		updates["insurance"] = req.Insurance
		changed = append(changed, "insurance")
	}
	if req.Details != nil {
		updates["payment_details"] = req.Details
		changed = append(changed, "payment_details")
	}

	if len(changed) == 0 {
		return converter.PaymentToResponse(payment), nil
	}

	// Non-super-admin edits stay fenced out of PAID in the store as well, so
	// an edit racing a collection cannot land on the settled row.
	from := []entity.PaymentStatus{
		entity.PaymentStatusPending,
		entity.PaymentStatusPartiallyPaid,
		entity.PaymentStatusFailed,
		entity.PaymentStatusRefunded,
	}
	if actor.IsSuperAdmin() {
		from = []entity.PaymentStatus{payment.Status}
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.paymentRepo.Transition(tx, id, from, updates)
	if err != nil {
		u.log.Warnf("Failed to update payment %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStateConflict
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventPaymentUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "payment",
		ResourceID:    id.String(),
		ChangedFields: changed,
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return u.Get(ctx, id)
}

// SetStatus drives the collection side of the state machine:
//
//	PENDING        -> PAID | PARTIALLY_PAID | FAILED
//	PARTIALLY_PAID -> PAID
//
// Only the creator or a super-admin may move a payment; PAID stamps the
// payment date.
func (u *paymentUsecase) SetStatus(ctx context.Context, id uuid.UUID, req *dto.SetPaymentStatusRequest, sourceAddr string) (*dto.PaymentResponse, error) {
	actor, payment, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperAdmin() && actor.ID != payment.CreatedBy {
		return nil, ErrForbidden
	}

	target := entity.PaymentStatus(req.Status)
	var from []entity.PaymentStatus
	updates := map[string]interface{}{"status": target}

	switch target {
	case entity.PaymentStatusPaid:
		from = []entity.PaymentStatus{entity.PaymentStatusPending, entity.PaymentStatusPartiallyPaid}
		updates["payment_date"] = time.Now()
	case entity.PaymentStatusPartiallyPaid:
		from = []entity.PaymentStatus{entity.PaymentStatusPending}
	case entity.PaymentStatusFailed:
		from = []entity.PaymentStatus{entity.PaymentStatusPending}
	default:
		return nil, ErrInvalidPaymentStatus
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.paymentRepo.Transition(tx, id, from, updates)
	if err != nil {
		u.log.Warnf("Failed payment transition %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStateConflict
	}

	if payment.AppointmentID != nil {
		payment.Status = target
		if err := u.rollup(tx, payment); err != nil {
			return nil, err
		}
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventPaymentUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "payment",
		ResourceID:    id.String(),
		ChangedFields: []string{"status"},
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	u.invalidateStats(ctx)
	return u.Get(ctx, id)
}

// Refund records a full or partial refund against a PAID payment. The final
// status derives from the refunded ratio: a full refund yields REFUNDED, a
// partial one PARTIALLY_PAID.
func (u *paymentUsecase) Refund(ctx context.Context, id uuid.UUID, req *dto.RefundPaymentRequest, sourceAddr string) (*dto.PaymentResponse, error) {
	actor, payment, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperAdmin() && actor.ID != payment.CreatedBy {
		return nil, ErrForbidden
	}
	if payment.RefundInfo != nil {
		return nil, ErrPaymentAlreadyRefunded
	}
	if req.RefundAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrRefundNotPositive
	}
	if req.RefundAmount.GreaterThan(payment.Amount) {
		return nil, ErrRefundExceedsAmount
	}

	target := payment.StatusAfterRefund(req.RefundAmount)
	refund := entity.RefundInfo{
		RefundAmount: req.RefundAmount,
		RefundDate:   time.Now(),
		Reason:       html.EscapeString(req.Reason),
		Method:       req.Method,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.paymentRepo.Refund(tx, id, refund, target)
	if err != nil {
		u.log.Warnf("Failed payment refund %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStateConflict
	}

	if payment.AppointmentID != nil {
		payment.Status = target
		payment.RefundInfo = &refund
		if err := u.rollup(tx, payment); err != nil {
			return nil, err
		}
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventPaymentUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "payment",
		ResourceID:    id.String(),
		ChangedFields: []string{"status", "refund_info"},
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	u.invalidateStats(ctx)
	return u.Get(ctx, id)
}

func (u *paymentUsecase) Delete(ctx context.Context, id uuid.UUID, sourceAddr string) error {
	actor, payment, err := u.load(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsSuperAdmin() && actor.ID != payment.CreatedBy {
		return ErrForbidden
	}
	if payment.IsPaid() && !actor.IsSuperAdmin() {
		return ErrStateConflict
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.paymentRepo.Delete(tx, id)
	if err != nil {
		u.log.Warnf("Failed to delete payment %s: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}

	if payment.AppointmentID != nil {
		if err := u.appointmentRepo.UpdatePaymentRollup(tx, *payment.AppointmentID, "", decimal.Zero, decimal.Zero); err != nil {
			return err
		}
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventPaymentDelete,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "payment",
		ResourceID:   id.String(),
	})

	if err := tx.Commit().Error; err != nil {
		return err
	}
	u.invalidateStats(ctx)
	return nil
}

// Stats aggregates payment counts and revenue. Unranged queries are served
// from a short-lived redis cache.
func (u *paymentUsecase) Stats(ctx context.Context, query *dto.StatsQuery) (*repository.PaymentStats, error) {
	cacheable := u.cache != nil && query.StartDate == nil && query.EndDate == nil

	if cacheable {
		if cached, err := u.cache.Get(ctx, paymentStatsCacheKey).Result(); err == nil {
			var stats repository.PaymentStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := u.paymentRepo.Stats(u.db.WithContext(ctx), query.StartDate, query.EndDate)
	if err != nil {
		u.log.Warnf("Failed to aggregate payment stats: %+v", err)
		return nil, err
	}

	if cacheable {
		if payload, err := json.Marshal(stats); err == nil {
			if err := u.cache.Set(ctx, paymentStatsCacheKey, payload, time.Minute).Err(); err != nil {
				u.log.Debugf("Failed to cache payment stats: %+v", err)
			}
		}
	}
	return stats, nil
}

// rollup maintains the payment summary on the linked appointment.
func (u *paymentUsecase) rollup(tx *gorm.DB, payment *entity.Payment) error {
	paid := decimal.Zero
	switch payment.Status {
	case entity.PaymentStatusPaid:
		paid = payment.TotalAmount
	case entity.PaymentStatusPartiallyPaid:
		paid = payment.TotalAmount.Sub(payment.RefundedAmount())
	case entity.PaymentStatusRefunded:
		paid = decimal.Zero
	}
	if paid.IsNegative() {
		paid = decimal.Zero
	}
	return u.appointmentRepo.UpdatePaymentRollup(tx, *payment.AppointmentID, string(payment.Status), payment.TotalAmount, paid)
}

func (u *paymentUsecase) invalidateStats(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Del(ctx, paymentStatsCacheKey).Err(); err != nil {
		u.log.Debugf("Failed to invalidate payment stats cache: %+v", err)
	}
}

func (u *paymentUsecase) load(ctx context.Context, id uuid.UUID) (*entity.Principal, *entity.Payment, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, nil, ErrNoActor
	}

	payment, err := u.paymentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find payment %s: %+v", id, err)
		return nil, nil, err
	}
	if payment == nil {
		return nil, nil, ErrPaymentNotFound
	}

	if !actor.IsStaff() && !actor.Owns(payment.PatientID) {
		return nil, nil, ErrForbidden
	}

	return actor, payment, nil
}

func currencyOrDefault(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}
