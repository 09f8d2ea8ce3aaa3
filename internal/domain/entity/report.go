package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus represents the workflow state of a diagnostic report.
type ReportStatus string

const (
	ReportStatusDraft         ReportStatus = "DRAFT"
	ReportStatusPendingReview ReportStatus = "PENDING_REVIEW"
	ReportStatusApproved      ReportStatus = "APPROVED"
	ReportStatusRejected      ReportStatus = "REJECTED"
	ReportStatusPublished     ReportStatus = "PUBLISHED"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusPendingReview, ReportStatusApproved,
		ReportStatusRejected, ReportStatusPublished:
		return true
	}
	return false
}

// Reviewed reports whether the status carries a review stamp.
func (s ReportStatus) Reviewed() bool {
	return s == ReportStatusApproved || s == ReportStatusRejected || s == ReportStatusPublished
}

const (
	ReportPriorityLow      = "Low"
	ReportPriorityMedium   = "Medium"
	ReportPriorityHigh     = "High"
	ReportPriorityCritical = "Critical"
)

// ReportPriorities lists the accepted report priorities.
var ReportPriorities = []string{
	ReportPriorityLow, ReportPriorityMedium, ReportPriorityHigh, ReportPriorityCritical,
}

func ValidReportPriority(p string) bool {
	for _, known := range ReportPriorities {
		if p == known {
			return true
		}
	}
	return false
}

// Report is a diagnostic report attached to an appointment. Once APPROVED it
// is frozen to everyone except a super-admin.
type Report struct {
	ID               uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID        uuid.UUID    `gorm:"type:uuid;not null;index:idx_reports_patient_created" json:"patient_id"`
	AppointmentID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"appointment_id"`
	CreatedBy        uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
	ReviewedBy       *uuid.UUID   `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time   `json:"reviewed_at,omitempty"`
	ReportType       string       `gorm:"type:varchar(50);not null" json:"report_type"`
	Title            string       `gorm:"type:varchar(200);not null" json:"title"`
	Description      string       `gorm:"type:text;not null" json:"description"`
	Findings         StringList   `gorm:"serializer:json;type:jsonb" json:"findings,omitempty"`
	Diagnosis        string       `gorm:"type:text" json:"diagnosis,omitempty"`
	Recommendations  string       `gorm:"type:text" json:"recommendations,omitempty"`
	FollowUpRequired bool         `gorm:"not null;default:false" json:"follow_up_required"`
	FollowUpDate     *time.Time   `gorm:"type:date" json:"follow_up_date,omitempty"`
	Attachments      StringList   `gorm:"serializer:json;type:jsonb" json:"attachments,omitempty"`
	Status           ReportStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_reports_status_priority" json:"status"`
	ReviewNotes      string       `gorm:"type:text" json:"review_notes,omitempty"`
	Priority         string       `gorm:"type:varchar(20);not null;default:'Medium';index:idx_reports_status_priority" json:"priority"`
	Confidential     bool         `gorm:"not null;default:false" json:"confidential"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_reports_patient_created,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}

// Frozen reports whether the report refuses non-super-admin edits.
func (r *Report) Frozen() bool {
	return r.Status == ReportStatusApproved || r.Status == ReportStatusPublished
}

// Downloadable reports whether the report may be served through the download
// endpoint.
func (r *Report) Downloadable() bool {
	return r.Status == ReportStatusApproved || r.Status == ReportStatusPublished
}
