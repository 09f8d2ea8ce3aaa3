package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Audit streams; retention differs per stream.
const (
	AuditStreamGeneral  = "general"
	AuditStreamSecurity = "security"
	AuditStreamAudit    = "audit"
)

// AuditLog is one append-only record of an authentication outcome, a
// resource mutation or a security event.
type AuditLog struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Event        string     `gorm:"type:varchar(100);not null;index" json:"event"`
	Stream       string     `gorm:"type:varchar(20);not null;index" json:"stream"`
	ActorID      *uuid.UUID `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	ActorEmail   string     `gorm:"type:varchar(255)" json:"actor_email,omitempty"`
	SourceAddr   string     `gorm:"type:varchar(64)" json:"source_addr,omitempty"`
	ResourceKind string     `gorm:"type:varchar(50);index" json:"resource_kind,omitempty"`
	ResourceID   string     `gorm:"type:varchar(64)" json:"resource_id,omitempty"`
	Metadata     JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	Service      string     `gorm:"type:varchar(50);not null;default:'clinic-backend'" json:"service"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support.
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Common audit events.
const (
	AuditEventLoginSuccess      = "auth.login.success"
	AuditEventLoginFailure      = "auth.login.failure"
	AuditEventLogout            = "auth.logout"
	AuditEventRegister          = "auth.register"
	AuditEventPasswordChange    = "auth.password_change"
	AuditEventProfileUpdate     = "auth.profile_update"
	AuditEventUserCreate        = "user.create"
	AuditEventUserStatusChange  = "user.status_change"
	AuditEventUserDelete        = "user.delete"
	AuditEventAppointmentCreate = "appointment.create"
	AuditEventAppointmentUpdate = "appointment.update"
	AuditEventAppointmentDelete = "appointment.delete"
	AuditEventReportCreate      = "report.create"
	AuditEventReportUpdate      = "report.update"
	AuditEventReportDelete      = "report.delete"
	AuditEventReportDownload    = "report.download"
	AuditEventComplaintCreate   = "complaint.create"
	AuditEventComplaintUpdate   = "complaint.update"
	AuditEventComplaintDelete   = "complaint.delete"
	AuditEventPaymentCreate     = "payment.create"
	AuditEventPaymentUpdate     = "payment.update"
	AuditEventPaymentDelete     = "payment.delete"
	AuditEventRateLimited       = "security.rate_limited"
)
