package dto

import (
	"time"

	"clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type CreateComplaintRequest struct {
	Subject       string   `json:"subject" validate:"required,min=5,max=200"`
	Description   string   `json:"description" validate:"required,min=10,max=2000"`
	Category      string   `json:"category" validate:"required,max=50"`
	Priority      string   `json:"priority" validate:"omitempty,oneof=Low Medium High Urgent"`
	ContactMethod string   `json:"contact_method" validate:"omitempty,oneof=email phone none"`
	Attachments   []string `json:"attachments" validate:"omitempty,dive,max=500"`
}

type UpdateComplaintRequest struct {
	Subject       *string  `json:"subject" validate:"omitempty,min=5,max=200"`
	Description   *string  `json:"description" validate:"omitempty,min=10,max=2000"`
	Category      *string  `json:"category" validate:"omitempty,max=50"`
	ContactMethod *string  `json:"contact_method" validate:"omitempty,oneof=email phone none"`
	Attachments   []string `json:"attachments" validate:"omitempty,dive,max=500"`
}

type AssignComplaintRequest struct {
	AssigneeID uuid.UUID `json:"assignee_id" validate:"required"`
}

type ResolveComplaintRequest struct {
	Resolution string `json:"resolution" validate:"required,min=5,max=2000"`
	Status     string `json:"status" validate:"omitempty,oneof=RESOLVED CLOSED"`
}

type SetComplaintPriorityRequest struct {
	Priority string `json:"priority" validate:"required,oneof=Low Medium High Urgent"`
}

type AddComplaintCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

type EscalateComplaintRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

// Query DTOs

type ComplaintListQuery struct {
	PatientID  *uuid.UUID
	AssignedTo *uuid.UUID
	Status     string
	Priority   string
	Page       int
	Limit      int
}

// Response DTOs

type ComplaintResponse struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	Subject       string     `json:"subject"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	AssignedTo    *uuid.UUID `json:"assigned_to,omitempty"`
	AssignedAt    *time.Time `json:"assigned_at,omitempty"`
	AssignedBy    *uuid.UUID `json:"assigned_by,omitempty"`
	ResolvedBy    *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	Resolution    string     `json:"resolution,omitempty"`
	ContactMethod string     `json:"contact_method,omitempty"`

	Attachments       entity.StringList         `json:"attachments,omitempty"`
	Comments          []entity.ComplaintComment `json:"comments,omitempty"`
	EscalationLevel   int                       `json:"escalation_level"`
	EscalationHistory []entity.EscalationRecord `json:"escalation_history,omitempty"`

	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ComplaintListResponse struct {
	Complaints  []ComplaintResponse `json:"complaints"`
	Total       int64               `json:"total"`
	CurrentPage int                 `json:"currentPage"`
	TotalPages  int                 `json:"totalPages"`
}
