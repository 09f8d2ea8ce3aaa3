package entity

import (
	"time"

	"github.com/google/uuid"
)

// ComplaintStatus represents the workflow state of a patient complaint.
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "OPEN"
	ComplaintStatusAssigned   ComplaintStatus = "ASSIGNED"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
	ComplaintStatusClosed     ComplaintStatus = "CLOSED"
)

func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintStatusOpen, ComplaintStatusAssigned, ComplaintStatusInProgress,
		ComplaintStatusResolved, ComplaintStatusClosed:
		return true
	}
	return false
}

// MaxEscalationLevel bounds complaint escalation.
const MaxEscalationLevel = 3

// OverdueAge is the age past which an unassigned or merely-assigned complaint
// counts as overdue.
const OverdueAge = 7 * 24 * time.Hour

const (
	ComplaintPriorityLow    = "Low"
	ComplaintPriorityMedium = "Medium"
	ComplaintPriorityHigh   = "High"
	ComplaintPriorityUrgent = "Urgent"
)

// ComplaintPriorities lists the accepted complaint priorities.
var ComplaintPriorities = []string{
	ComplaintPriorityLow, ComplaintPriorityMedium, ComplaintPriorityHigh, ComplaintPriorityUrgent,
}

func ValidComplaintPriority(p string) bool {
	for _, known := range ComplaintPriorities {
		if p == known {
			return true
		}
	}
	return false
}

// ComplaintComment is one entry of the ordered comment list.
type ComplaintComment struct {
	Text      string    `json:"text"`
	Author    uuid.UUID `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// EscalationRecord captures one escalation step.
type EscalationRecord struct {
	Level       int       `json:"level"`
	EscalatedBy uuid.UUID `json:"escalated_by"`
	EscalatedAt time.Time `json:"escalated_at"`
	Note        string    `json:"note,omitempty"`
}

// Complaint is the aggregate root of the complaint workflow. Comments and
// escalation history are value objects owned by the root.
type Complaint struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_complaints_patient_created" json:"patient_id"`
	Subject       string          `gorm:"type:varchar(200);not null" json:"subject"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Category      string          `gorm:"type:varchar(50);not null" json:"category"`
	Priority      string          `gorm:"type:varchar(20);not null;default:'Medium';index:idx_complaints_status_priority" json:"priority"`
	Status        ComplaintStatus `gorm:"type:varchar(20);not null;default:'OPEN';index:idx_complaints_status_priority;index:idx_complaints_assigned_status" json:"status"`
	AssignedTo    *uuid.UUID      `gorm:"type:uuid;index:idx_complaints_assigned_status" json:"assigned_to,omitempty"`
	AssignedAt    *time.Time      `json:"assigned_at,omitempty"`
	AssignedBy    *uuid.UUID      `gorm:"type:uuid" json:"assigned_by,omitempty"`
	ResolvedBy    *uuid.UUID      `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty"`
	Resolution    string          `gorm:"type:text" json:"resolution,omitempty"`
	ContactMethod string          `gorm:"type:varchar(20)" json:"contact_method,omitempty"`
	Attachments   StringList      `gorm:"serializer:json;type:jsonb" json:"attachments,omitempty"`

	Comments          []ComplaintComment `gorm:"serializer:json;type:jsonb" json:"comments,omitempty"`
	EscalationLevel   int                `gorm:"not null;default:0" json:"escalation_level"`
	EscalationHistory []EscalationRecord `gorm:"serializer:json;type:jsonb" json:"escalation_history,omitempty"`

	LastActivityAt time.Time `gorm:"not null" json:"last_activity_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index:idx_complaints_patient_created,sort:desc" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Complaint) TableName() string {
	return "complaints"
}

func (c *Complaint) IsOpen() bool {
	return c.Status == ComplaintStatusOpen
}

// Overdue reports whether the complaint has sat unresolved for longer than
// the overdue age at the given instant.
func (c *Complaint) Overdue(now time.Time) bool {
	if c.Status != ComplaintStatusOpen && c.Status != ComplaintStatusAssigned {
		return false
	}
	return now.Sub(c.CreatedAt) > OverdueAge
}
