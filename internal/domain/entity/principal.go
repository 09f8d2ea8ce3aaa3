package entity

import (
	"time"

	"github.com/google/uuid"
)

// Role tags distinguish the three principal variants.
type Role string

const (
	RoleSuperAdmin   Role = "SUPERADMIN"
	RoleReceptionist Role = "RECEPTIONIST"
	RolePatient      Role = "PATIENT"
)

// ValidRoles lists every accepted role tag.
var ValidRoles = []Role{RoleSuperAdmin, RoleReceptionist, RolePatient}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleReceptionist, RolePatient:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to clinic staff.
func (r Role) IsStaff() bool {
	return r == RoleSuperAdmin || r == RoleReceptionist
}

// InsuranceInfo is a patient-owned value object.
type InsuranceInfo struct {
	Provider     string `json:"provider,omitempty"`
	PolicyNumber string `json:"policyNumber,omitempty"`
	GroupNumber  string `json:"groupNumber,omitempty"`
	ValidUntil   string `json:"validUntil,omitempty"`
}

// EmergencyContact is a patient-owned value object.
type EmergencyContact struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Relation string `json:"relation,omitempty"`
}

// Principal represents an authenticated actor: a super-admin, a receptionist
// or a patient. Role-specific fields are required iff the role matches; the
// usecase layer enforces that at creation time.
type Principal struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Role              Role       `gorm:"type:varchar(20);not null;index" json:"role"`
	FirstName         string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName          string     `gorm:"type:varchar(100);not null" json:"last_name"`
	Email             string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password          string     `gorm:"type:text;not null" json:"-"`
	Phone             string     `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Active            bool       `gorm:"not null;default:true;index" json:"active"`
	EmailVerified     bool       `gorm:"not null;default:false" json:"email_verified"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	PasswordChangedAt *time.Time `json:"-"`
	ResetToken        *string    `gorm:"type:varchar(128)" json:"-"`
	ResetTokenExpiry  *time.Time `json:"-"`

	// Patient variant fields.
	DateOfBirth      *time.Time        `gorm:"type:date" json:"date_of_birth,omitempty"`
	Gender           string            `gorm:"type:varchar(10)" json:"gender,omitempty"`
	Address          string            `gorm:"type:text" json:"address,omitempty"`
	EmergencyContact *EmergencyContact `gorm:"serializer:json;type:jsonb" json:"emergency_contact,omitempty"`
	MedicalHistory   StringList        `gorm:"serializer:json;type:jsonb" json:"medical_history,omitempty"`
	Allergies        StringList        `gorm:"serializer:json;type:jsonb" json:"allergies,omitempty"`
	Medications      StringList        `gorm:"serializer:json;type:jsonb" json:"medications,omitempty"`
	InsuranceInfo    *InsuranceInfo    `gorm:"serializer:json;type:jsonb" json:"insurance_info,omitempty"`

	// Staff variant fields.
	Department string  `gorm:"type:varchar(100)" json:"department,omitempty"`
	EmployeeID *string `gorm:"type:varchar(50);uniqueIndex" json:"employee_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Principal) TableName() string {
	return "principals"
}

// StringList is a JSONB-persisted list of free-text entries.
type StringList []string

// IsPatient reports whether the principal is the patient variant.
func (p *Principal) IsPatient() bool {
	return p.Role == RolePatient
}

// IsStaff reports whether the principal is a staff variant.
func (p *Principal) IsStaff() bool {
	return p.Role.IsStaff()
}

// IsSuperAdmin reports whether the principal is the super-admin variant.
func (p *Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// TokenInvalidAt reports whether a token issued at the given instant has been
// invalidated by a later password change. JWT issue stamps only carry second
// precision, so both sides are compared at second granularity; otherwise a
// token minted in the same second as the change would reject itself.
func (p *Principal) TokenInvalidAt(issuedAt time.Time) bool {
	if p.PasswordChangedAt == nil {
		return false
	}
	return p.PasswordChangedAt.Truncate(time.Second).After(issuedAt.Truncate(time.Second))
}

// Owns reports whether the principal owns the resource with the given patient
// id. Super-admins bypass ownership.
func (p *Principal) Owns(patientID uuid.UUID) bool {
	return p.IsSuperAdmin() || p.ID == patientID
}
