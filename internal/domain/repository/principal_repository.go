package repository

import (
	"clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrincipalFilter narrows principal listings.
type PrincipalFilter struct {
	Role   entity.Role
	Active *bool
	Page   int
	Limit  int
}

type PrincipalRepository interface {
	Create(db *gorm.DB, principal *entity.Principal) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Principal, error)
	FindByEmail(db *gorm.DB, email string) (*entity.Principal, error)
	// UpdateFields applies a column-scoped update, never a full-row write, so
	// concurrent changes to untouched columns survive.
	UpdateFields(db *gorm.DB, id uuid.UUID, updates map[string]interface{}) (int64, error)

	SetActive(db *gorm.DB, id uuid.UUID, active bool) (int64, error)
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
	List(db *gorm.DB, filter PrincipalFilter) ([]entity.Principal, int64, error)
}
