package service

import (
	"time"

	"clinic-backend/config"
	"clinic-backend/internal/domain/entity"
	"clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService is the append-only sink for authentication outcomes, resource
// mutations and security events. Records land in the audit_logs table and are
// mirrored to the structured log; only changed-field names are recorded for
// updates, never values.
type AuditService interface {
	Record(tx *gorm.DB, rec AuditRecord) error
	PurgeExpired(db *gorm.DB, now time.Time) error
}

// AuditRecord is one audit event before persistence.
type AuditRecord struct {
	Event         string
	Stream        string
	Actor         *entity.Principal
	SourceAddr    string
	ResourceKind  string
	ResourceID    string
	ChangedFields []string
	Detail        map[string]interface{}
}

type auditService struct {
	log       *logrus.Logger
	cfg       config.LogConfig
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, cfg config.LogConfig, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{log: log, cfg: cfg, auditRepo: auditRepo}
}

func (s *auditService) Record(tx *gorm.DB, rec AuditRecord) error {
	stream := rec.Stream
	if stream == "" {
		stream = entity.AuditStreamAudit
	}

	metadata := entity.JSON{}
	for k, v := range rec.Detail {
		metadata[k] = v
	}
	if len(rec.ChangedFields) > 0 {
		metadata["changed_fields"] = rec.ChangedFields
	}

	row := &entity.AuditLog{
		Event:        rec.Event,
		Stream:       stream,
		SourceAddr:   rec.SourceAddr,
		ResourceKind: rec.ResourceKind,
		ResourceID:   rec.ResourceID,
		Metadata:     metadata,
	}

	var actorID *uuid.UUID
	if rec.Actor != nil {
		id := rec.Actor.ID
		actorID = &id
		row.ActorID = actorID
		row.ActorEmail = rec.Actor.Email
	}

	if err := s.auditRepo.Create(tx, row); err != nil {
		s.log.Errorf("Failed to persist audit record %s: %+v", rec.Event, err)
		return err
	}

	fields := logrus.Fields{
		"stream":        stream,
		"event":         rec.Event,
		"source_addr":   rec.SourceAddr,
		"resource_kind": rec.ResourceKind,
		"resource_id":   rec.ResourceID,
	}
	if actorID != nil {
		fields["actor_id"] = actorID.String()
		fields["actor_email"] = row.ActorEmail
	}
	if len(rec.ChangedFields) > 0 {
		fields["changed_fields"] = rec.ChangedFields
	}
	s.log.WithFields(fields).Info("audit event")

	return nil
}

// PurgeExpired applies the per-stream retention windows.
func (s *auditService) PurgeExpired(db *gorm.DB, now time.Time) error {
	retention := map[string]int{
		entity.AuditStreamGeneral:  s.cfg.RetentionDays,
		entity.AuditStreamSecurity: s.cfg.SecurityRetentionDays,
		entity.AuditStreamAudit:    s.cfg.AuditRetentionDays,
	}

	for stream, days := range retention {
		cutoff := now.AddDate(0, 0, -days)
		purged, err := s.auditRepo.PurgeBefore(db, stream, cutoff)
		if err != nil {
			s.log.Warnf("Failed to purge %s audit records: %+v", stream, err)
			return err
		}
		if purged > 0 {
			s.log.Infof("Purged %d expired %s audit records", purged, stream)
		}
	}
	return nil
}
