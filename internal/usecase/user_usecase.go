package usecase

import (
	"context"
	"strings"
	"time"

	"clinic-backend/internal/converter"
	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/delivery/http/middleware"
	"clinic-backend/internal/domain/entity"
	"clinic-backend/internal/domain/repository"
	"clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserUsecase is the super-admin user-management surface.
type UserUsecase interface {
	List(ctx context.Context, query *dto.UserListQuery) (*dto.UserListResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest, sourceAddr string) (*dto.UserResponse, error)
	SetStatus(ctx context.Context, id uuid.UUID, active bool, sourceAddr string) error
	Delete(ctx context.Context, id uuid.UUID, sourceAddr string) error
}

type userUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	principalRepo repository.PrincipalRepository
	auditService  service.AuditService
}

func NewUserUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	principalRepo repository.PrincipalRepository,
	auditService service.AuditService,
) UserUsecase {
	return &userUsecase{
		db:            db,
		log:           log,
		principalRepo: principalRepo,
		auditService:  auditService,
	}
}

func (u *userUsecase) List(ctx context.Context, query *dto.UserListQuery) (*dto.UserListResponse, error) {
	filter := repository.PrincipalFilter{
		Role:   entity.Role(query.Role),
		Active: query.Active,
		Page:   query.Page,
		Limit:  query.Limit,
	}

	principals, total, err := u.principalRepo.List(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list principals: %+v", err)
		return nil, err
	}

	return &dto.UserListResponse{
		Users:       converter.PrincipalsToResponses(principals),
		Total:       total,
		CurrentPage: query.Page,
		TotalPages:  totalPages(total, query.Limit),
	}, nil
}

// Create provisions an account with any role. Staff roles require a
// department and a unique employee id; patients require a date of birth.
func (u *userUsecase) Create(ctx context.Context, req *dto.CreateUserRequest, sourceAddr string) (*dto.UserResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	role := entity.Role(req.Role)

	principal := &entity.Principal{
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
		Phone:     req.Phone,
		Active:    true,
	}

	switch {
	case role == entity.RolePatient:
		if req.DateOfBirth == "" {
			return nil, ErrDateOfBirthRequired
		}
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		principal.DateOfBirth = &dob
		principal.Gender = req.Gender
		principal.Address = req.Address
	case role.IsStaff():
		principal.Department = req.Department
		employeeID := req.EmployeeID
		principal.EmployeeID = &employeeID
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}
	principal.Password = string(hashedPassword)

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.principalRepo.Create(tx, principal); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		if isDuplicateKeyError(err, "employee_id") {
			return nil, ErrEmployeeIDExists
		}
		u.log.Warnf("Failed to create principal: %+v", err)
		return nil, err
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventUserCreate,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "principal",
		ResourceID:   principal.ID.String(),
		Detail:       map[string]interface{}{"role": string(role)},
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return converter.PrincipalToResponse(principal), nil
}

func (u *userUsecase) SetStatus(ctx context.Context, id uuid.UUID, active bool, sourceAddr string) error {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return ErrNoActor
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.principalRepo.SetActive(tx, id, active)
	if err != nil {
		u.log.Warnf("Failed to set principal status: %+v", err)
		return err
	}
	if affected == 0 {
		existing, err := u.principalRepo.FindByID(tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrUserNotFound
		}
		// Already in the requested state.
		return nil
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventUserStatusChange,
		Stream:        entity.AuditStreamSecurity,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "principal",
		ResourceID:    id.String(),
		ChangedFields: []string{"active"},
	})

	return tx.Commit().Error
}

func (u *userUsecase) Delete(ctx context.Context, id uuid.UUID, sourceAddr string) error {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return ErrNoActor
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.principalRepo.Delete(tx, id)
	if err != nil {
		u.log.Warnf("Failed to delete principal: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventUserDelete,
		Stream:       entity.AuditStreamSecurity,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "principal",
		ResourceID:   id.String(),
	})

	return tx.Commit().Error
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return pages
}
