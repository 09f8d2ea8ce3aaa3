package repository

import (
	"errors"
	"strings"

	"clinic-backend/internal/domain/entity"
	domainRepo "clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type principalRepository struct{}

func NewPrincipalRepository() domainRepo.PrincipalRepository {
	return &principalRepository{}
}

func (r *principalRepository) Create(db *gorm.DB, principal *entity.Principal) error {
	principal.Email = strings.ToLower(principal.Email)
	return db.Create(principal).Error
}

func (r *principalRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Principal, error) {
	var principal entity.Principal
	err := db.Where("id = ?", id).First(&principal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &principal, nil
}

func (r *principalRepository) FindByEmail(db *gorm.DB, email string) (*entity.Principal, error) {
	var principal entity.Principal
	err := db.Where("email = ?", strings.ToLower(email)).First(&principal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &principal, nil
}

func (r *principalRepository) UpdateFields(db *gorm.DB, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	if email, ok := updates["email"].(string); ok {
		updates["email"] = strings.ToLower(email)
	}
	result := db.Model(&entity.Principal{}).
		Where("id = ?", id).
		Updates(jsonbColumns(updates,
			"emergency_contact", "medical_history", "allergies", "medications", "insurance_info"))
	return result.RowsAffected, result.Error
}

func (r *principalRepository) SetActive(db *gorm.DB, id uuid.UUID, active bool) (int64, error) {
	result := db.Model(&entity.Principal{}).
		Where("id = ? AND active <> ?", id, active).
		Update("active", active)
	return result.RowsAffected, result.Error
}

func (r *principalRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Principal{})
	return result.RowsAffected, result.Error
}

func (r *principalRepository) List(db *gorm.DB, filter domainRepo.PrincipalFilter) ([]entity.Principal, int64, error) {
	query := db.Model(&entity.Principal{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var principals []entity.Principal
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&principals).Error
	if err != nil {
		return nil, 0, err
	}
	return principals, total, nil
}
