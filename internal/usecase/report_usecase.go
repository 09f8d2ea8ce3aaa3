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
	ErrReportNotFound        = errors.New("report not found")
	ErrReportFrozen          = errors.New("report can no longer be modified")
	ErrReportNotDownloadable = errors.New("report is not available for download")
	ErrInvalidReportStatus   = errors.New("invalid report status")
	ErrInvalidPriority       = errors.New("invalid priority")
)

type ReportUsecase interface {
	Create(ctx context.Context, req *dto.CreateReportRequest, sourceAddr string) (*dto.ReportResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error)
	List(ctx context.Context, query *dto.ReportListQuery) (*dto.ReportListResponse, error)
	ListMine(ctx context.Context, query *dto.ReportListQuery) (*dto.ReportListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateReportRequest, sourceAddr string) (*dto.ReportResponse, error)
	SetStatus(ctx context.Context, id uuid.UUID, req *dto.SetReportStatusRequest, sourceAddr string) (*dto.ReportResponse, error)
	Download(ctx context.Context, id uuid.UUID, sourceAddr string) (*dto.ReportDownloadResponse, error)
	Delete(ctx context.Context, id uuid.UUID, sourceAddr string) error
}

type reportUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	reportRepo   repository.ReportRepository
	auditService service.AuditService
}

func NewReportUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	reportRepo repository.ReportRepository,
	auditService service.AuditService,
) ReportUsecase {
	return &reportUsecase{
		db:           db,
		log:          log,
		reportRepo:   reportRepo,
		auditService: auditService,
	}
}

func (u *reportUsecase) Create(ctx context.Context, req *dto.CreateReportRequest, sourceAddr string) (*dto.ReportResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	priority := req.Priority
	if priority == "" {
		priority = entity.ReportPriorityMedium
	}
	if !entity.ValidReportPriority(priority) {
		return nil, ErrInvalidPriority
	}

	var followUpDate *time.Time
	if req.FollowUpDate != nil {
		date, err := time.Parse("2006-01-02", *req.FollowUpDate)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		followUpDate = &date
	}

	report := &entity.Report{
		PatientID:        req.PatientID,
		AppointmentID:    req.AppointmentID,
		CreatedBy:        actor.ID,
		ReportType:       req.ReportType,
		Title:            html.EscapeString(req.Title),
		Description:      html.EscapeString(req.Description),
		Findings:         escapeAll(req.Findings),
		Diagnosis:        html.EscapeString(req.Diagnosis),
		Recommendations:  html.EscapeString(req.Recommendations),
		FollowUpRequired: req.FollowUpRequired,
		FollowUpDate:     followUpDate,
		Attachments:      entity.StringList(req.Attachments),
		Status:           entity.ReportStatusDraft,
		Priority:         priority,
		Confidential:     req.Confidential,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.reportRepo.Create(tx, report); err != nil {
		u.log.Warnf("Failed to create report: %+v", err)
		return nil, err
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventReportCreate,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "report",
		ResourceID:   report.ID.String(),
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return converter.ReportToResponse(report), nil
}

func (u *reportUsecase) Get(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error) {
	_, report, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.ReportToResponse(report), nil
}

func (u *reportUsecase) List(ctx context.Context, query *dto.ReportListQuery) (*dto.ReportListResponse, error) {
	filter := repository.ReportFilter{
		PatientID:  query.PatientID,
		Status:     entity.ReportStatus(query.Status),
		ReportType: query.ReportType,
		Priority:   query.Priority,
		Page:       query.Page,
		Limit:      query.Limit,
	}
	return u.list(ctx, filter, query.Page, query.Limit)
}

// ListMine returns the acting patient's reports. Drafts stay internal until
// submitted for review, so patients never see them.
func (u *reportUsecase) ListMine(ctx context.Context, query *dto.ReportListQuery) (*dto.ReportListResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	filter := repository.ReportFilter{
		PatientID:    &actor.ID,
		Status:       entity.ReportStatus(query.Status),
		ReportType:   query.ReportType,
		Priority:     query.Priority,
		ExcludeDraft: true,
		Page:         query.Page,
		Limit:        query.Limit,
	}
	return u.list(ctx, filter, query.Page, query.Limit)
}

func (u *reportUsecase) list(ctx context.Context, filter repository.ReportFilter, page, limit int) (*dto.ReportListResponse, error) {
	reports, total, err := u.reportRepo.List(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list reports: %+v", err)
		return nil, err
	}
	return &dto.ReportListResponse{
		Reports:     converter.ReportsToResponses(reports),
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages(total, limit),
	}, nil
}

// Update edits report content. Only the creator or a super-admin may edit,
// and an APPROVED or PUBLISHED report is frozen to everyone but super-admins.
// The write carries the freeze gate into the store, so an edit racing an
// approval loses instead of overwriting the frozen row.
func (u *reportUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateReportRequest, sourceAddr string) (*dto.ReportResponse, error) {
	actor, report, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsSuperAdmin() && actor.ID != report.CreatedBy {
		return nil, ErrForbidden
	}
	if report.Frozen() && !actor.IsSuperAdmin() {
		return nil, ErrReportFrozen
	}

	var changed []string
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = html.EscapeString(*req.Title)
		changed = append(changed, "title")
	}
	if req.ReportType != nil {
		updates["report_type"] = *req.ReportType
		changed = append(changed, "report_type")
	}
	if req.Description != nil {
		updates["description"] = html.EscapeString(*req.Description)
		changed = append(changed, "description")
	}
	if req.Findings != nil {
		updates["findings"] = escapeAll(req.Findings)
		changed = append(changed, "findings")
	}
	if req.Diagnosis != nil {
		updates["diagnosis"] = html.EscapeString(*req.Diagnosis)
		changed = append(changed, "diagnosis")
	}
	if req.Recommendations != nil {
		updates["recommendations"] = html.EscapeString(*req.Recommendations)
		changed = append(changed, "recommendations")
	}
	if req.FollowUpRequired != nil {
		updates["follow_up_required"] = *req.FollowUpRequired
		changed = append(changed, "follow_up_required")
	}
	if req.FollowUpDate != nil {
		date, err := time.Parse("2006-01-02", *req.FollowUpDate)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		updates["follow_up_date"] = date
		changed = append(changed, "follow_up_date")
	}
	if req.Attachments != nil {
		updates["attachments"] = entity.StringList(req.Attachments)
		changed = append(changed, "attachments")
	}
	if req.Priority != nil {
		if !entity.ValidReportPriority(*req.Priority) {
			return nil, ErrInvalidPriority
		}
		updates["priority"] = *req.Priority
		changed = append(changed, "priority")
	}
	if req.Confidential != nil {
		updates["confidential"] = *req.Confidential
		changed = append(changed, "confidential")
	}

	if len(changed) == 0 {
		return converter.ReportToResponse(report), nil
	}

	from := []entity.ReportStatus{
		entity.ReportStatusDraft,
		entity.ReportStatusPendingReview,
		entity.ReportStatusRejected,
	}
	if actor.IsSuperAdmin() {
		from = []entity.ReportStatus{report.Status}
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.reportRepo.Transition(tx, id, from, updates)
	if err != nil {
		u.log.Warnf("Failed to update report %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStateConflict
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventReportUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "report",
		ResourceID:    id.String(),
		ChangedFields: changed,
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return u.Get(ctx, id)
}

// SetStatus drives the review workflow:
//
//	DRAFT          -> PENDING_REVIEW
//	PENDING_REVIEW -> APPROVED | REJECTED
//	APPROVED       -> PUBLISHED
//
// Only the creator or a super-admin may move a report; APPROVED and REJECTED
// stamp the reviewer.
func (u *reportUsecase) SetStatus(ctx context.Context, id uuid.UUID, req *dto.SetReportStatusRequest, sourceAddr string) (*dto.ReportResponse, error) {
	actor, report, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperAdmin() && actor.ID != report.CreatedBy {
		return nil, ErrForbidden
	}

	target := entity.ReportStatus(req.Status)
	var from []entity.ReportStatus
	updates := map[string]interface{}{"status": target}

	switch target {
	case entity.ReportStatusPendingReview:
		from = []entity.ReportStatus{entity.ReportStatusDraft}
	case entity.ReportStatusApproved, entity.ReportStatusRejected:
		from = []entity.ReportStatus{entity.ReportStatusPendingReview}
		updates["reviewed_by"] = actor.ID
		updates["reviewed_at"] = time.Now()
		if req.ReviewNotes != "" {
			updates["review_notes"] = html.EscapeString(req.ReviewNotes)
		}
	case entity.ReportStatusPublished:
		from = []entity.ReportStatus{entity.ReportStatusApproved}
	default:
		return nil, ErrInvalidReportStatus
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.reportRepo.Transition(tx, id, from, updates)
	if err != nil {
		u.log.Warnf("Failed report transition %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStateConflict
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventReportUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "report",
		ResourceID:    id.String(),
		ChangedFields: []string{"status"},
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return u.Get(ctx, id)
}

// Download gates report file access: the report must be APPROVED or
// PUBLISHED, and the caller must be the subject patient, the author, or a
// super-admin. File rendering is not implemented; the response carries the
// report metadata and attachment references. Each download is audited.
func (u *reportUsecase) Download(ctx context.Context, id uuid.UUID, sourceAddr string) (*dto.ReportDownloadResponse, error) {
	actor, report, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !report.Downloadable() {
		return nil, ErrReportNotDownloadable
	}
	if !actor.IsSuperAdmin() && actor.ID != report.PatientID && actor.ID != report.CreatedBy {
		return nil, ErrForbidden
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventReportDownload,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "report",
		ResourceID:   id.String(),
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &dto.ReportDownloadResponse{
		ID:          report.ID,
		Title:       report.Title,
		ReportType:  report.ReportType,
		Status:      report.Status,
		Attachments: report.Attachments,
	}, nil
}

func (u *reportUsecase) Delete(ctx context.Context, id uuid.UUID, sourceAddr string) error {
	actor, report, err := u.load(ctx, id)
	if err != nil {
		return err
	}

	if !actor.IsSuperAdmin() && actor.ID != report.CreatedBy {
		return ErrForbidden
	}
	if report.Frozen() && !actor.IsSuperAdmin() {
		return ErrReportFrozen
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.reportRepo.Delete(tx, id)
	if err != nil {
		u.log.Warnf("Failed to delete report %s: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrReportNotFound
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventReportDelete,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "report",
		ResourceID:   id.String(),
	})

	return tx.Commit().Error
}

// load enforces the read-side ownership gate: patients see only reports about
// themselves, staff see all.
func (u *reportUsecase) load(ctx context.Context, id uuid.UUID) (*entity.Principal, *entity.Report, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, nil, ErrNoActor
	}

	report, err := u.reportRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find report %s: %+v", id, err)
		return nil, nil, err
	}
	if report == nil {
		return nil, nil, ErrReportNotFound
	}

	if !actor.IsStaff() && !actor.Owns(report.PatientID) {
		return nil, nil, ErrForbidden
	}

	return actor, report, nil
}

func escapeAll(values []string) entity.StringList {
	if values == nil {
		return nil
	}
	escaped := make(entity.StringList, len(values))
	for i, v := range values {
		escaped[i] = html.EscapeString(v)
	}
	return escaped
}
