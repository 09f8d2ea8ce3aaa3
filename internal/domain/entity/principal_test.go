package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRoleIsStaff(t *testing.T) {
	if !RoleSuperAdmin.IsStaff() || !RoleReceptionist.IsStaff() {
		t.Error("expected super-admin and receptionist to be staff")
	}
	if RolePatient.IsStaff() {
		t.Error("expected patient not to be staff")
	}
}

func TestPrincipalOwns(t *testing.T) {
	patientID := uuid.New()
	otherID := uuid.New()

	patient := &Principal{ID: patientID, Role: RolePatient}
	if !patient.Owns(patientID) {
		t.Error("expected patient to own their own resources")
	}
	if patient.Owns(otherID) {
		t.Error("expected patient not to own another patient's resources")
	}

	admin := &Principal{ID: uuid.New(), Role: RoleSuperAdmin}
	if !admin.Owns(otherID) {
		t.Error("expected super-admin to bypass ownership")
	}

	receptionist := &Principal{ID: uuid.New(), Role: RoleReceptionist}
	if receptionist.Owns(otherID) {
		t.Error("expected receptionist not to bypass ownership")
	}
}

func TestPrincipalTokenInvalidAt(t *testing.T) {
	issued := time.Now()

	p := &Principal{}
	if p.TokenInvalidAt(issued) {
		t.Error("expected token to stay valid without a password change")
	}

	before := issued.Add(-time.Hour)
	p.PasswordChangedAt = &before
	if p.TokenInvalidAt(issued) {
		t.Error("expected token issued after the password change to stay valid")
	}

	after := issued.Add(time.Hour)
	p.PasswordChangedAt = &after
	if !p.TokenInvalidAt(issued) {
		t.Error("expected token issued before the password change to be invalid")
	}
}

// JWT issued-at claims are truncated to whole seconds on the wire, while the
// password-change stamp keeps the database's sub-second precision. A token
// minted in the same second as the change must still authenticate.
func TestPrincipalTokenInvalidAtSecondGranularity(t *testing.T) {
	base := time.Date(2026, 3, 14, 3, 45, 1, 0, time.UTC)

	tests := []struct {
		name      string
		changedAt time.Time
		issuedAt  time.Time
		invalid   bool
	}{
		{
			name:      "change milliseconds after truncated issue stamp",
			changedAt: base.Add(570 * time.Millisecond),
			issuedAt:  base,
			invalid:   false,
		},
		{
			name:      "change and issue in the same second",
			changedAt: base.Add(999 * time.Millisecond),
			issuedAt:  base.Add(100 * time.Millisecond),
			invalid:   false,
		},
		{
			name:      "change one second after issue",
			changedAt: base.Add(time.Second),
			issuedAt:  base,
			invalid:   true,
		},
		{
			name:      "issue one second after change",
			changedAt: base,
			issuedAt:  base.Add(time.Second),
			invalid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Principal{PasswordChangedAt: &tt.changedAt}
			if got := p.TokenInvalidAt(tt.issuedAt); got != tt.invalid {
				t.Errorf("TokenInvalidAt() = %v, want %v", got, tt.invalid)
			}
		})
	}
}
