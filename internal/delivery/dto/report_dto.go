package dto

import (
	"time"

	"clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type CreateReportRequest struct {
	PatientID     uuid.UUID `json:"patient_id" validate:"required"`
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
	ReportType    string    `json:"report_type" validate:"required,max=50"`
	Title         string    `json:"title" validate:"required,min=5,max=200"`
	Description   string    `json:"description" validate:"required,min=10,max=2000"`

	Findings         []string `json:"findings" validate:"omitempty,dive,max=500"`
	Diagnosis        string   `json:"diagnosis" validate:"omitempty,max=2000"`
	Recommendations  string   `json:"recommendations" validate:"omitempty,max=2000"`
	FollowUpRequired bool     `json:"follow_up_required"`
	FollowUpDate     *string  `json:"follow_up_date" validate:"omitempty"` // Format: YYYY-MM-DD
	Attachments      []string `json:"attachments" validate:"omitempty,dive,max=500"`
	Priority         string   `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	Confidential     bool     `json:"confidential"`
}

type UpdateReportRequest struct {
	ReportType  *string `json:"report_type" validate:"omitempty,max=50"`
	Title       *string `json:"title" validate:"omitempty,min=5,max=200"`
	Description *string `json:"description" validate:"omitempty,min=10,max=2000"`

	Findings         []string `json:"findings" validate:"omitempty,dive,max=500"`
	Diagnosis        *string  `json:"diagnosis" validate:"omitempty,max=2000"`
	Recommendations  *string  `json:"recommendations" validate:"omitempty,max=2000"`
	FollowUpRequired *bool    `json:"follow_up_required"`
	FollowUpDate     *string  `json:"follow_up_date" validate:"omitempty"`
	Attachments      []string `json:"attachments" validate:"omitempty,dive,max=500"`
	Priority         *string  `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	Confidential     *bool    `json:"confidential"`
}

type SetReportStatusRequest struct {
	Status      string `json:"status" validate:"required,oneof=PENDING_REVIEW APPROVED REJECTED PUBLISHED"`
	ReviewNotes string `json:"review_notes" validate:"omitempty,max=1000"`
}

// Query DTOs

type ReportListQuery struct {
	PatientID  *uuid.UUID
	Status     string
	ReportType string
	Priority   string
	Page       int
	Limit      int
}

// Response DTOs

type ReportResponse struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	ReviewedBy    *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReportType    string     `json:"report_type"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`

	Findings         entity.StringList `json:"findings,omitempty"`
	Diagnosis        string            `json:"diagnosis,omitempty"`
	Recommendations  string            `json:"recommendations,omitempty"`
	FollowUpRequired bool              `json:"follow_up_required"`
	FollowUpDate     *time.Time        `json:"follow_up_date,omitempty"`
	Attachments      entity.StringList `json:"attachments,omitempty"`
	Status           string            `json:"status"`
	ReviewNotes      string            `json:"review_notes,omitempty"`
	Priority         string            `json:"priority"`
	Confidential     bool              `json:"confidential"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReportListResponse struct {
	Reports     []ReportResponse `json:"reports"`
	Total       int64            `json:"total"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
}

// ReportDownloadResponse is the stub payload of the download endpoint; file
// rendering is out of scope so only metadata and attachment references are
// returned.
type ReportDownloadResponse struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	ReportType  string              `json:"report_type"`
	Status      entity.ReportStatus `json:"status"`
	Attachments entity.StringList   `json:"attachments,omitempty"`
}
