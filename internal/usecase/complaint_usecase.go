package usecase

import (
	"context"
	"encoding/json"
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
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrComplaintNotFound    = errors.New("complaint not found")
	ErrComplaintNotOpen     = errors.New("complaint is no longer open")
	ErrAssigneeNotFound     = errors.New("assignee not found")
	ErrAssigneeNotStaff     = errors.New("assignee must be a receptionist")
	ErrResolutionRequired   = errors.New("resolution text is required")
	ErrInvalidResolveStatus = errors.New("resolve target must be RESOLVED or CLOSED")
)

const complaintStatsCacheKey = "stats:complaints"

type ComplaintUsecase interface {
	Create(ctx context.Context, req *dto.CreateComplaintRequest, sourceAddr string) (*dto.ComplaintResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ComplaintResponse, error)
	List(ctx context.Context, query *dto.ComplaintListQuery) (*dto.ComplaintListResponse, error)
	ListMine(ctx context.Context, query *dto.ComplaintListQuery) (*dto.ComplaintListResponse, error)
	ListOverdue(ctx context.Context) ([]dto.ComplaintResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateComplaintRequest, sourceAddr string) (*dto.ComplaintResponse, error)
	Delete(ctx context.Context, id uuid.UUID, sourceAddr string) error
	Assign(ctx context.Context, id uuid.UUID, req *dto.AssignComplaintRequest, sourceAddr string) (*dto.ComplaintResponse, error)
	Resolve(ctx context.Context, id uuid.UUID, req *dto.ResolveComplaintRequest, sourceAddr string) (*dto.ComplaintResponse, error)
	SetPriority(ctx context.Context, id uuid.UUID, req *dto.SetComplaintPriorityRequest, sourceAddr string) (*dto.ComplaintResponse, error)
	AddComment(ctx context.Context, id uuid.UUID, req *dto.AddComplaintCommentRequest, sourceAddr string) (*dto.ComplaintResponse, error)
	Escalate(ctx context.Context, id uuid.UUID, req *dto.EscalateComplaintRequest, sourceAddr string) (*dto.ComplaintResponse, error)
	Stats(ctx context.Context, query *dto.StatsQuery) (*repository.ComplaintStats, error)
}

type complaintUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	cache         *redis.Client
	complaintRepo repository.ComplaintRepository
	principalRepo repository.PrincipalRepository
	auditService  service.AuditService
}

func NewComplaintUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cache *redis.Client,
	complaintRepo repository.ComplaintRepository,
	principalRepo repository.PrincipalRepository,
	auditService service.AuditService,
) ComplaintUsecase {
	return &complaintUsecase{
		db:            db,
		log:           log,
		cache:         cache,
		complaintRepo: complaintRepo,
		principalRepo: principalRepo,
		auditService:  auditService,
	}
}

// Create files a complaint for the acting patient.
func (u *complaintUsecase) Create(ctx context.Context, req *dto.CreateComplaintRequest, sourceAddr string) (*dto.ComplaintResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	priority := req.Priority
	if priority == "" {
		priority = entity.ComplaintPriorityMedium
	}
	if !entity.ValidComplaintPriority(priority) {
		return nil, ErrInvalidPriority
	}

	now := time.Now()
	complaint := &entity.Complaint{
		PatientID:      actor.ID,
		Subject:        html.EscapeString(req.Subject),
		Description:    html.EscapeString(req.Description),
		Category:       req.Category,
		Priority:       priority,
		Status:         entity.ComplaintStatusOpen,
		ContactMethod:  req.ContactMethod,
		Attachments:    entity.StringList(req.Attachments),
		LastActivityAt: now,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.complaintRepo.Create(tx, complaint); err != nil {
		u.log.Warnf("Failed to create complaint: %+v", err)
		return nil, err
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventComplaintCreate,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "complaint",
		ResourceID:   complaint.ID.String(),
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	u.invalidateStats(ctx)
	return converter.ComplaintToResponse(complaint), nil
}

func (u *complaintUsecase) Get(ctx context.Context, id uuid.UUID) (*dto.ComplaintResponse, error) {
	_, complaint, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.ComplaintToResponse(complaint), nil
}

func (u *complaintUsecase) List(ctx context.Context, query *dto.ComplaintListQuery) (*dto.ComplaintListResponse, error) {
	filter := repository.ComplaintFilter{
		PatientID:  query.PatientID,
		AssignedTo: query.AssignedTo,
		Status:     entity.ComplaintStatus(query.Status),
		Priority:   query.Priority,
		Page:       query.Page,
		Limit:      query.Limit,
	}
	return u.list(ctx, filter, query.Page, query.Limit)
}

func (u *complaintUsecase) ListMine(ctx context.Context, query *dto.ComplaintListQuery) (*dto.ComplaintListResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	filter := repository.ComplaintFilter{
		PatientID: &actor.ID,
		Status:    entity.ComplaintStatus(query.Status),
		Priority:  query.Priority,
		Page:      query.Page,
		Limit:     query.Limit,
	}
	return u.list(ctx, filter, query.Page, query.Limit)
}

func (u *complaintUsecase) list(ctx context.Context, filter repository.ComplaintFilter, page, limit int) (*dto.ComplaintListResponse, error) {
	complaints, total, err := u.complaintRepo.List(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list complaints: %+v", err)
		return nil, err
	}
	return &dto.ComplaintListResponse{
		Complaints:  converter.ComplaintsToResponses(complaints),
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages(total, limit),
	}, nil
}

// ListOverdue returns OPEN and ASSIGNED complaints older than the overdue
// age.
func (u *complaintUsecase) ListOverdue(ctx context.Context) ([]dto.ComplaintResponse, error) {
	cutoff := time.Now().Add(-entity.OverdueAge)
	complaints, err := u.complaintRepo.ListOverdue(u.db.WithContext(ctx), cutoff)
	if err != nil {
		u.log.Warnf("Failed to list overdue complaints: %+v", err)
		return nil, err
	}
	return converter.ComplaintsToResponses(complaints), nil
}

// Update edits complaint content. The owning patient may edit only while the
// complaint is OPEN; staff may edit at any status. The write carries the
// status observed at load, so it only lands on the columns named here and
// only while no concurrent transition has moved the complaint.
func (u *complaintUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateComplaintRequest, sourceAddr string) (*dto.ComplaintResponse, error) {
	actor, complaint, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsStaff() && !complaint.IsOpen() {
		return nil, ErrComplaintNotOpen
	}

	var changed []string
	updates := map[string]interface{}{}
	if req.Subject != nil {
		updates["subject"] = html.EscapeString(*req.Subject)
		changed = append(changed, "subject")
	}
	if req.Description != nil {
		updates["description"] = html.EscapeString(*req.Description)
		changed = append(changed, "description")
	}
	if req.Category != nil {
		updates["category"] = *req.Category
		changed = append(changed, "category")
	}
	if req.ContactMethod != nil {
		updates["contact_method"] = *req.ContactMethod
		changed = append(changed, "contact_method")
	}
	if req.Attachments != nil {
		updates["attachments"] = entity.StringList(req.Attachments)
		changed = append(changed, "attachments")
	}

	if len(changed) == 0 {
		return converter.ComplaintToResponse(complaint), nil
	}
	updates["last_activity_at"] = time.Now()

	from := []entity.ComplaintStatus{entity.ComplaintStatusOpen}
	if actor.IsStaff() {
		from = []entity.ComplaintStatus{complaint.Status}
	}
	return u.transition(ctx, actor, id, from, updates, sourceAddr, changed)
}

// Delete removes a complaint. The owning patient may delete only while it is
// OPEN; staff may delete at any status.
func (u *complaintUsecase) Delete(ctx context.Context, id uuid.UUID, sourceAddr string) error {
	actor, _, err := u.load(ctx, id)
	if err != nil {
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	var affected int64
	if actor.IsStaff() {
		affected, err = u.complaintRepo.Delete(tx, id)
	} else {
		affected, err = u.complaintRepo.DeleteOpen(tx, id)
	}
	if err != nil {
		u.log.Warnf("Failed to delete complaint %s: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrStateConflict
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventComplaintDelete,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "complaint",
		ResourceID:   id.String(),
	})

	if err := tx.Commit().Error; err != nil {
		return err
	}
	u.invalidateStats(ctx)
	return nil
}

// Assign hands the complaint to a receptionist and moves it to IN_PROGRESS.
// Re-assignment of an already assigned complaint is allowed while it has not
// been resolved.
func (u *complaintUsecase) Assign(ctx context.Context, id uuid.UUID, req *dto.AssignComplaintRequest, sourceAddr string) (*dto.ComplaintResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	assignee, err := u.principalRepo.FindByID(u.db.WithContext(ctx), req.AssigneeID)
	if err != nil {
		return nil, err
	}
	if assignee == nil {
		return nil, ErrAssigneeNotFound
	}
	if assignee.Role != entity.RoleReceptionist {
		return nil, ErrAssigneeNotStaff
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           entity.ComplaintStatusInProgress,
		"assigned_to":      assignee.ID,
		"assigned_at":      now,
		"assigned_by":      actor.ID,
		"last_activity_at": now,
	}

	from := []entity.ComplaintStatus{
		entity.ComplaintStatusOpen,
		entity.ComplaintStatusAssigned,
		entity.ComplaintStatusInProgress,
	}
	return u.transition(ctx, actor, id, from, updates, sourceAddr, []string{"status", "assigned_to", "assigned_at", "assigned_by"})
}

// Resolve closes out the complaint with a mandatory resolution text. The
// target defaults to RESOLVED; CLOSED may be requested explicitly.
func (u *complaintUsecase) Resolve(ctx context.Context, id uuid.UUID, req *dto.ResolveComplaintRequest, sourceAddr string) (*dto.ComplaintResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	if req.Resolution == "" {
		return nil, ErrResolutionRequired
	}

	target := entity.ComplaintStatusResolved
	if req.Status != "" {
		target = entity.ComplaintStatus(req.Status)
		if target != entity.ComplaintStatusResolved && target != entity.ComplaintStatusClosed {
			return nil, ErrInvalidResolveStatus
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           target,
		"resolved_by":      actor.ID,
		"resolved_at":      now,
		"resolution":       html.EscapeString(req.Resolution),
		"last_activity_at": now,
	}

	from := []entity.ComplaintStatus{
		entity.ComplaintStatusOpen,
		entity.ComplaintStatusAssigned,
		entity.ComplaintStatusInProgress,
	}
	return u.transition(ctx, actor, id, from, updates, sourceAddr, []string{"status", "resolved_by", "resolved_at", "resolution"})
}

func (u *complaintUsecase) SetPriority(ctx context.Context, id uuid.UUID, req *dto.SetComplaintPriorityRequest, sourceAddr string) (*dto.ComplaintResponse, error) {
	actor, _, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !entity.ValidComplaintPriority(req.Priority) {
		return nil, ErrInvalidPriority
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.complaintRepo.SetPriority(tx, id, req.Priority, time.Now())
	if err != nil {
		u.log.Warnf("Failed to set complaint priority %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrComplaintNotFound
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventComplaintUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "complaint",
		ResourceID:    id.String(),
		ChangedFields: []string{"priority"},
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	u.invalidateStats(ctx)
	return u.Get(ctx, id)
}

// AddComment appends to the comment list and bumps the activity stamp. Read
// access implies comment access. The append happens inside the store, so two
// concurrent comments both land.
func (u *complaintUsecase) AddComment(ctx context.Context, id uuid.UUID, req *dto.AddComplaintCommentRequest, sourceAddr string) (*dto.ComplaintResponse, error) {
	actor, _, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	comment := entity.ComplaintComment{
		Text:      html.EscapeString(req.Text),
		Author:    actor.ID,
		CreatedAt: now,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.complaintRepo.AppendComment(tx, id, comment, now)
	if err != nil {
		u.log.Warnf("Failed to add comment to complaint %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrComplaintNotFound
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventComplaintUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "complaint",
		ResourceID:    id.String(),
		ChangedFields: []string{"comments"},
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return u.Get(ctx, id)
}

// Escalate bumps the escalation level, capped at the maximum, and appends a
// history record. Escalating an already maxed complaint is a no-op that still
// records the attempt. The write is fenced on the level observed at load, so
// two concurrent escalations produce two distinct levels instead of one.
func (u *complaintUsecase) Escalate(ctx context.Context, id uuid.UUID, req *dto.EscalateComplaintRequest, sourceAddr string) (*dto.ComplaintResponse, error) {
	actor, complaint, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	level := complaint.EscalationLevel + 1
	if level > entity.MaxEscalationLevel {
		level = entity.MaxEscalationLevel
	}
	record := entity.EscalationRecord{
		Level:       level,
		EscalatedBy: actor.ID,
		EscalatedAt: now,
		Note:        html.EscapeString(req.Note),
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.complaintRepo.Escalate(tx, id, complaint.EscalationLevel, level, record, now)
	if err != nil {
		u.log.Warnf("Failed to escalate complaint %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		existing, err := u.complaintRepo.FindByID(tx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ErrComplaintNotFound
		}
		return nil, ErrStateConflict
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventComplaintUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "complaint",
		ResourceID:    id.String(),
		ChangedFields: []string{"escalation_level", "escalation_history"},
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return u.Get(ctx, id)
}

// Stats aggregates complaint counts. Unranged queries are served from a
// short-lived redis cache.
func (u *complaintUsecase) Stats(ctx context.Context, query *dto.StatsQuery) (*repository.ComplaintStats, error) {
	cacheable := u.cache != nil && query.StartDate == nil && query.EndDate == nil

	if cacheable {
		if cached, err := u.cache.Get(ctx, complaintStatsCacheKey).Result(); err == nil {
			var stats repository.ComplaintStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := u.complaintRepo.Stats(u.db.WithContext(ctx), query.StartDate, query.EndDate, time.Now())
	if err != nil {
		u.log.Warnf("Failed to aggregate complaint stats: %+v", err)
		return nil, err
	}

	if cacheable {
		if payload, err := json.Marshal(stats); err == nil {
			if err := u.cache.Set(ctx, complaintStatsCacheKey, payload, time.Minute).Err(); err != nil {
				u.log.Debugf("Failed to cache complaint stats: %+v", err)
			}
		}
	}
	return stats, nil
}

func (u *complaintUsecase) transition(
	ctx context.Context,
	actor *entity.Principal,
	id uuid.UUID,
	from []entity.ComplaintStatus,
	updates map[string]interface{},
	sourceAddr string,
	changed []string,
) (*dto.ComplaintResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.complaintRepo.Transition(tx, id, from, updates)
	if err != nil {
		u.log.Warnf("Failed complaint transition %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		existing, err := u.complaintRepo.FindByID(tx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ErrComplaintNotFound
		}
		return nil, ErrStateConflict
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventComplaintUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "complaint",
		ResourceID:    id.String(),
		ChangedFields: changed,
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	u.invalidateStats(ctx)
	return u.Get(ctx, id)
}

func (u *complaintUsecase) invalidateStats(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Del(ctx, complaintStatsCacheKey).Err(); err != nil {
		u.log.Debugf("Failed to invalidate complaint stats cache: %+v", err)
	}
}

func (u *complaintUsecase) load(ctx context.Context, id uuid.UUID) (*entity.Principal, *entity.Complaint, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, nil, ErrNoActor
	}

	complaint, err := u.complaintRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find complaint %s: %+v", id, err)
		return nil, nil, err
	}
	if complaint == nil {
		return nil, nil, ErrComplaintNotFound
	}

	if !actor.IsStaff() && !actor.Owns(complaint.PatientID) {
		return nil, nil, ErrForbidden
	}

	return actor, complaint, nil
}
