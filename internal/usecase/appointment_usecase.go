package usecase

import (
	"context"
	"errors"
	"html"
	"time"

	"clinic-backend/internal/converter"
	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/delivery/http/middleware"
	"clinic-backend/internal/domain/entity"
	"clinic-backend/internal/domain/repository"
	"clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound    = errors.New("appointment not found")
	ErrInvalidAppointmentType = errors.New("invalid appointment type")
	ErrInvalidTargetStatus    = errors.New("invalid target status")
	ErrHomeCollectionNotAsked = errors.New("home collection has not been requested")
)

// AppointmentUsecase owns the appointment state machine and is the only
// writer of the appointment status field.
type AppointmentUsecase interface {
	Create(ctx context.Context, req *dto.CreateAppointmentRequest, sourceAddr string) (*dto.AppointmentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	List(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error)
	ListMine(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest, sourceAddr string) (*dto.AppointmentResponse, error)
	Delete(ctx context.Context, id uuid.UUID, sourceAddr string) error
	Approve(ctx context.Context, id uuid.UUID, req *dto.ApproveAppointmentRequest, sourceAddr string) (*dto.AppointmentResponse, error)
	Reject(ctx context.Context, id uuid.UUID, req *dto.RejectAppointmentRequest, sourceAddr string) (*dto.AppointmentResponse, error)
	SetStatus(ctx context.Context, id uuid.UUID, req *dto.SetAppointmentStatusRequest, sourceAddr string) (*dto.AppointmentResponse, error)
	RequestHomeCollection(ctx context.Context, id uuid.UUID, req *dto.HomeCollectionRequest, sourceAddr string) (*dto.AppointmentResponse, error)
	ApproveHomeCollection(ctx context.Context, id uuid.UUID, req *dto.ApproveHomeCollectionRequest, sourceAddr string) (*dto.AppointmentResponse, error)
	AddTestResults(ctx context.Context, id uuid.UUID, req *dto.AddTestResultsRequest, sourceAddr string) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
	}
}

// Create books an appointment for the acting patient. Patients can only book
// for themselves; the patient id is always taken from the actor.
func (u *appointmentUsecase) Create(ctx context.Context, req *dto.CreateAppointmentRequest, sourceAddr string) (*dto.AppointmentResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	if !entity.ValidAppointmentType(req.Type) {
		return nil, ErrInvalidAppointmentType
	}

	date, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	appointment := &entity.Appointment{
		PatientID:       actor.ID,
		AppointmentDate: date,
		AppointmentTime: req.AppointmentTime,
		Type:            req.Type,
		Reason:          html.EscapeString(req.Reason),
		Status:          entity.AppointmentStatusPending,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventAppointmentCreate,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "appointment",
		ResourceID:   appointment.ID.String(),
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) Get(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	_, appointment, err := u.loadForRead(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) List(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error) {
	filter := repository.AppointmentFilter{
		Status: entity.AppointmentStatus(query.Status),
		Type:   query.Type,
		Page:   query.Page,
		Limit:  query.Limit,
	}
	if query.PatientID != nil {
		filter.PatientID = query.PatientID
	}
	return u.list(ctx, filter, query.Page, query.Limit)
}

func (u *appointmentUsecase) ListMine(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	filter := repository.AppointmentFilter{
		PatientID: &actor.ID,
		Status:    entity.AppointmentStatus(query.Status),
		Type:      query.Type,
		Page:      query.Page,
		Limit:     query.Limit,
	}
	return u.list(ctx, filter, query.Page, query.Limit)
}

func (u *appointmentUsecase) list(ctx context.Context, filter repository.AppointmentFilter, page, limit int) (*dto.AppointmentListResponse, error) {
	appointments, total, err := u.appointmentRepo.List(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}
	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        total,
		CurrentPage:  page,
		TotalPages:   totalPages(total, limit),
	}, nil
}

// Update edits a PENDING appointment. The owning patient may edit only while
// it is PENDING; staff bypass the ownership check. The write is fenced on the
// gating status, so an edit racing an approval loses instead of silently
// reverting it.
func (u *appointmentUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest, sourceAddr string) (*dto.AppointmentResponse, error) {
	actor, appointment, err := u.loadForWrite(ctx, id)
	if err != nil {
		return nil, err
	}

	if !appointment.IsPending() && !actor.IsStaff() {
		return nil, ErrStateConflict
	}

	var changed []string
	updates := map[string]interface{}{}
	if req.AppointmentDate != nil {
		date, err := time.Parse("2006-01-02", *req.AppointmentDate)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		updates["appointment_date"] = date
		changed = append(changed, "appointment_date")
	}
	if req.AppointmentTime != nil {
		updates["appointment_time"] = *req.AppointmentTime
		changed = append(changed, "appointment_time")
	}
	if req.Type != nil {
		if !entity.ValidAppointmentType(*req.Type) {
			return nil, ErrInvalidAppointmentType
		}
		updates["type"] = *req.Type
		changed = append(changed, "type")
	}
	if req.Reason != nil {
		updates["reason"] = html.EscapeString(*req.Reason)
		changed = append(changed, "reason")
	}

	if len(changed) == 0 {
		return converter.AppointmentToResponse(appointment), nil
	}

	from := entity.AppointmentStatusPending
	if actor.IsStaff() {
		from = appointment.Status
	}
	return u.transition(ctx, actor, id, from, updates, sourceAddr, changed)
}

// Delete removes an appointment. Patients may delete their own only while it
// is PENDING; staff may delete at any status.
func (u *appointmentUsecase) Delete(ctx context.Context, id uuid.UUID, sourceAddr string) error {
	actor, _, err := u.loadForWrite(ctx, id)
	if err != nil {
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	var affected int64
	if actor.IsStaff() {
		affected, err = u.appointmentRepo.Delete(tx, id)
	} else {
		affected, err = u.appointmentRepo.DeletePending(tx, id)
	}
	if err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", id, err)
		return err
	}
	if affected == 0 {
		// Row vanished or left PENDING since the read.
		return ErrStateConflict
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventAppointmentDelete,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "appointment",
		ResourceID:   id.String(),
	})

	return tx.Commit().Error
}

// Approve moves PENDING to APPROVED and stamps the acting receptionist.
// Concurrent approve/reject: first write wins, the loser sees a conflict.
func (u *appointmentUsecase) Approve(ctx context.Context, id uuid.UUID, req *dto.ApproveAppointmentRequest, sourceAddr string) (*dto.AppointmentResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":          entity.AppointmentStatusApproved,
		"receptionist_id": actor.ID,
		"approved_at":     now,
		"approval_notes":  html.EscapeString(req.ApprovalNotes),
	}

	return u.transition(ctx, actor, id, entity.AppointmentStatusPending, updates, sourceAddr, []string{"status", "receptionist_id", "approved_at", "approval_notes"})
}

// Reject moves PENDING to REJECTED; a rejection reason is mandatory.
func (u *appointmentUsecase) Reject(ctx context.Context, id uuid.UUID, req *dto.RejectAppointmentRequest, sourceAddr string) (*dto.AppointmentResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           entity.AppointmentStatusRejected,
		"receptionist_id":  actor.ID,
		"rejected_at":      now,
		"rejection_reason": html.EscapeString(req.RejectionReason),
	}

	return u.transition(ctx, actor, id, entity.AppointmentStatusPending, updates, sourceAddr, []string{"status", "receptionist_id", "rejected_at", "rejection_reason"})
}

// SetStatus moves APPROVED to one of the terminal outcomes.
func (u *appointmentUsecase) SetStatus(ctx context.Context, id uuid.UUID, req *dto.SetAppointmentStatusRequest, sourceAddr string) (*dto.AppointmentResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	target := entity.AppointmentStatus(req.Status)
	switch target {
	case entity.AppointmentStatusCompleted, entity.AppointmentStatusCancelled, entity.AppointmentStatusNoShow:
	default:
		return nil, ErrInvalidTargetStatus
	}

	updates := map[string]interface{}{"status": target}
	return u.transition(ctx, actor, id, entity.AppointmentStatusApproved, updates, sourceAddr, []string{"status"})
}

// RequestHomeCollection records the patient's request on an APPROVED
// appointment.
func (u *appointmentUsecase) RequestHomeCollection(ctx context.Context, id uuid.UUID, req *dto.HomeCollectionRequest, sourceAddr string) (*dto.AppointmentResponse, error) {
	actor, appointment, err := u.loadForWrite(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(appointment.PatientID) {
		return nil, ErrForbidden
	}

	date, err := time.Parse("2006-01-02", req.CollectionDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	hc := entity.HomeCollection{
		Requested:      true,
		Approved:       false,
		Address:        html.EscapeString(req.Address),
		CollectionDate: &date,
		CollectionTime: req.CollectionTime,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.appointmentRepo.RequestHomeCollection(tx, id, hc)
	if err != nil {
		u.log.Warnf("Failed to request home collection for %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStateConflict
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventAppointmentUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "appointment",
		ResourceID:    id.String(),
		ChangedFields: []string{"home_collection"},
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return u.Get(ctx, id)
}

// ApproveHomeCollection assigns a collector to a requested home collection.
// Approval requires the request flag and an APPROVED appointment; both are
// checked atomically in the store.
func (u *appointmentUsecase) ApproveHomeCollection(ctx context.Context, id uuid.UUID, req *dto.ApproveHomeCollectionRequest, sourceAddr string) (*dto.AppointmentResponse, error) {
	actor, appointment, err := u.loadForWrite(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appointment.HomeCollectionRequested() {
		return nil, ErrHomeCollectionNotAsked
	}

	hc := *appointment.HomeCollection
	hc.Approved = true
	hc.CollectorID = &req.CollectorID

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.appointmentRepo.ApproveHomeCollection(tx, id, hc)
	if err != nil {
		u.log.Warnf("Failed to approve home collection for %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStateConflict
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventAppointmentUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "appointment",
		ResourceID:    id.String(),
		ChangedFields: []string{"home_collection"},
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return u.Get(ctx, id)
}

// AddTestResults appends diagnostic results to an APPROVED appointment.
func (u *appointmentUsecase) AddTestResults(ctx context.Context, id uuid.UUID, req *dto.AddTestResultsRequest, sourceAddr string) (*dto.AppointmentResponse, error) {
	actor, _, err := u.loadForWrite(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	results := make([]entity.TestResult, 0, len(req.Results))
	for _, r := range req.Results {
		results = append(results, entity.TestResult{
			Name:        html.EscapeString(r.Name),
			Value:       html.EscapeString(r.Value),
			Unit:        r.Unit,
			NormalRange: r.NormalRange,
			Notes:       html.EscapeString(r.Notes),
			RecordedBy:  actor.ID,
			RecordedAt:  now,
		})
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.appointmentRepo.AppendTestResults(tx, id, results)
	if err != nil {
		u.log.Warnf("Failed to append test results for %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStateConflict
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventAppointmentUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "appointment",
		ResourceID:    id.String(),
		ChangedFields: []string{"test_results"},
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return u.Get(ctx, id)
}

// transition runs one conditional status update and audits it.
func (u *appointmentUsecase) transition(
	ctx context.Context,
	actor *entity.Principal,
	id uuid.UUID,
	from entity.AppointmentStatus,
	updates map[string]interface{},
	sourceAddr string,
	changed []string,
) (*dto.AppointmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.appointmentRepo.Transition(tx, id, from, updates)
	if err != nil {
		u.log.Warnf("Failed appointment transition %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		existing, err := u.appointmentRepo.FindByID(tx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ErrAppointmentNotFound
		}
		return nil, ErrStateConflict
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventAppointmentUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "appointment",
		ResourceID:    id.String(),
		ChangedFields: changed,
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return u.Get(ctx, id)
}

// loadForRead enforces the read-side ownership gate: patients see only their
// own appointments, staff see all.
func (u *appointmentUsecase) loadForRead(ctx context.Context, id uuid.UUID) (*entity.Principal, *entity.Appointment, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, nil, ErrNoActor
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, nil, err
	}
	if appointment == nil {
		return nil, nil, ErrAppointmentNotFound
	}

	if !actor.IsStaff() && !actor.Owns(appointment.PatientID) {
		return nil, nil, ErrForbidden
	}

	return actor, appointment, nil
}

func (u *appointmentUsecase) loadForWrite(ctx context.Context, id uuid.UUID) (*entity.Principal, *entity.Appointment, error) {
	return u.loadForRead(ctx, id)
}
