package dto

import (
	"time"

	"clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterRequest struct {
	FirstName   string `json:"first_name" validate:"required,min=2,max=100"`
	LastName    string `json:"last_name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,strongpassword"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	DateOfBirth string `json:"date_of_birth" validate:"required"` // Format: YYYY-MM-DD
	Gender      string `json:"gender" validate:"omitempty,oneof=male female other"`
	Address     string `json:"address" validate:"omitempty,max=500"`

	EmergencyContact *entity.EmergencyContact `json:"emergency_contact,omitempty"`
	MedicalHistory   entity.StringList        `json:"medical_history,omitempty"`
	Allergies        entity.StringList        `json:"allergies,omitempty"`
	Medications      entity.StringList        `json:"medications,omitempty"`
	InsuranceInfo    *entity.InsuranceInfo    `json:"insurance_info,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=2,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=2,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`

	// Patient whitelist.
	Address          *string                  `json:"address" validate:"omitempty,max=500"`
	EmergencyContact *entity.EmergencyContact `json:"emergency_contact,omitempty"`
	MedicalHistory   entity.StringList        `json:"medical_history,omitempty"`
	Allergies        entity.StringList        `json:"allergies,omitempty"`
	Medications      entity.StringList        `json:"medications,omitempty"`
	InsuranceInfo    *entity.InsuranceInfo    `json:"insurance_info,omitempty"`

	// Staff whitelist.
	Department *string `json:"department" validate:"omitempty,max=100"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// Response DTOs

type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	Role          string     `json:"role"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	Active        bool       `json:"active"`
	EmailVerified bool       `json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`

	DateOfBirth      *time.Time               `json:"date_of_birth,omitempty"`
	Gender           string                   `json:"gender,omitempty"`
	Address          string                   `json:"address,omitempty"`
	EmergencyContact *entity.EmergencyContact `json:"emergency_contact,omitempty"`
	MedicalHistory   entity.StringList        `json:"medical_history,omitempty"`
	Allergies        entity.StringList        `json:"allergies,omitempty"`
	Medications      entity.StringList        `json:"medications,omitempty"`
	InsuranceInfo    *entity.InsuranceInfo    `json:"insurance_info,omitempty"`

	Department string  `json:"department,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
