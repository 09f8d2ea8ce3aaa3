package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-backend/internal/converter"
	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/delivery/http/middleware"
	"clinic-backend/internal/domain/entity"
	"clinic-backend/internal/domain/repository"
	"clinic-backend/internal/service"
	"clinic-backend/pkg/jwt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrEmployeeIDExists     = errors.New("employee id already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDeactivated   = errors.New("account has been deactivated")
	ErrUserNotFound         = errors.New("user not found")
	ErrPasswordConfirmation = errors.New("password confirmation does not match")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	ErrInvalidDateFormat    = errors.New("invalid date format, use YYYY-MM-DD")
	ErrDateOfBirthRequired  = errors.New("date of birth is required for patients")
)

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest, sourceAddr string) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, sourceAddr string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sourceAddr string) error
	UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest, sourceAddr string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest, sourceAddr string) (*dto.LoginResponse, error)
}

type authUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	principalRepo repository.PrincipalRepository
	tokenService  *jwt.TokenService
	auditService  service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	principalRepo repository.PrincipalRepository,
	tokenService *jwt.TokenService,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:            db,
		log:           log,
		principalRepo: principalRepo,
		tokenService:  tokenService,
		auditService:  auditService,
	}
}

// Register self-registers a patient. The public endpoint never accepts a role
// from the client; staff accounts are created through the super-admin user
// surface.
func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest, sourceAddr string) (*dto.UserResponse, error) {
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	principal := &entity.Principal{
		Role:      entity.RolePatient,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
		Password:  string(hashedPassword),
		Phone:     req.Phone,
		Active:    true,

		DateOfBirth:      &dob,
		Gender:           req.Gender,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		MedicalHistory:   req.MedicalHistory,
		Allergies:        req.Allergies,
		Medications:      req.Medications,
		InsuranceInfo:    req.InsuranceInfo,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.principalRepo.Create(tx, principal); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create principal: %+v", err)
		return nil, err
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventRegister,
		Stream:       entity.AuditStreamSecurity,
		Actor:        principal,
		SourceAddr:   sourceAddr,
		ResourceKind: "principal",
		ResourceID:   principal.ID.String(),
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PrincipalToResponse(principal), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest, sourceAddr string) (*dto.LoginResponse, error) {
	db := u.db.WithContext(ctx)

	principal, err := u.principalRepo.FindByEmail(db, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find principal by email: %+v", err)
		return nil, err
	}
	if principal == nil {
		u.recordLoginFailure(db, req.Email, sourceAddr)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.Password), []byte(req.Password)); err != nil {
		u.recordLoginFailure(db, req.Email, sourceAddr)
		return nil, ErrInvalidCredentials
	}

	if !principal.Active {
		u.recordLoginFailure(db, req.Email, sourceAddr)
		return nil, ErrAccountDeactivated
	}

	token, expiresAt, err := u.tokenService.Issue(principal.ID)
	if err != nil {
		u.log.Warnf("Failed to issue token: %+v", err)
		return nil, err
	}

	now := time.Now()
	principal.LastLoginAt = &now
	if _, err := u.principalRepo.UpdateFields(db, principal.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		u.log.Warnf("Failed to stamp last login: %+v", err)
	}

	u.auditService.Record(db, service.AuditRecord{
		Event:      entity.AuditEventLoginSuccess,
		Stream:     entity.AuditStreamSecurity,
		Actor:      principal,
		SourceAddr: sourceAddr,
	})

	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      converter.PrincipalToResponse(principal),
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, sourceAddr string) error {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return ErrNoActor
	}

	return u.auditService.Record(u.db.WithContext(ctx), service.AuditRecord{
		Event:      entity.AuditEventLogout,
		Stream:     entity.AuditStreamSecurity,
		Actor:      actor,
		SourceAddr: sourceAddr,
	})
}

// UpdateProfile applies the role-specific field whitelist. Email and role are
// never updatable through this path.
func (u *authUsecase) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest, sourceAddr string) (*dto.UserResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	var changed []string
	updates := map[string]interface{}{}
	setString := func(field string, dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			updates[field] = *src
			changed = append(changed, field)
		}
	}

	setString("first_name", &actor.FirstName, req.FirstName)
	setString("last_name", &actor.LastName, req.LastName)
	setString("phone", &actor.Phone, req.Phone)

	if actor.IsPatient() {
		setString("address", &actor.Address, req.Address)
		if req.EmergencyContact != nil {
			actor.EmergencyContact = req.EmergencyContact
			updates["emergency_contact"] = req.EmergencyContact
			changed = append(changed, "emergency_contact")
		}
		if req.MedicalHistory != nil {
			actor.MedicalHistory = req.MedicalHistory
			updates["medical_history"] = req.MedicalHistory
			changed = append(changed, "medical_history")
		}
		if req.Allergies != nil {
			actor.Allergies = req.Allergies
			updates["allergies"] = req.Allergies
			changed = append(changed, "allergies")
		}
		if req.Medications != nil {
			actor.Medications = req.Medications
			updates["medications"] = req.Medications
			changed = append(changed, "medications")
		}
		if req.InsuranceInfo != nil {
			actor.InsuranceInfo = req.InsuranceInfo
			updates["insurance_info"] = req.InsuranceInfo
			changed = append(changed, "insurance_info")
		}
	} else {
		setString("department", &actor.Department, req.Department)
	}

	if len(changed) == 0 {
		return converter.PrincipalToResponse(actor), nil
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.principalRepo.UpdateFields(tx, actor.ID, updates)
	if err != nil {
		u.log.Warnf("Failed to update profile: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:         entity.AuditEventProfileUpdate,
		Actor:         actor,
		SourceAddr:    sourceAddr,
		ResourceKind:  "principal",
		ResourceID:    actor.ID.String(),
		ChangedFields: changed,
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return converter.PrincipalToResponse(actor), nil
}

// ChangePassword verifies the current password, stamps passwordChangedAt and
// issues a fresh token. Tokens issued before the stamp fail authentication
// from the moment the transaction commits; requests already past the
// middleware when the stamp lands complete with the old principal snapshot.
func (u *authUsecase) ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest, sourceAddr string) (*dto.LoginResponse, error) {
	actor, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	if req.NewPassword != req.ConfirmPassword {
		return nil, ErrPasswordConfirmation
	}

	if err := bcrypt.CompareHashAndPassword([]byte(actor.Password), []byte(req.CurrentPassword)); err != nil {
		return nil, ErrWrongCurrentPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	now := time.Now()
	actor.Password = string(hashedPassword)
	actor.PasswordChangedAt = &now

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.principalRepo.UpdateFields(tx, actor.ID, map[string]interface{}{
		"password":            actor.Password,
		"password_changed_at": now,
	})
	if err != nil {
		u.log.Warnf("Failed to update password: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}

	u.auditService.Record(tx, service.AuditRecord{
		Event:        entity.AuditEventPasswordChange,
		Stream:       entity.AuditStreamSecurity,
		Actor:        actor,
		SourceAddr:   sourceAddr,
		ResourceKind: "principal",
		ResourceID:   actor.ID.String(),
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	token, expiresAt, err := u.tokenService.Issue(actor.ID)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      converter.PrincipalToResponse(actor),
	}, nil
}

func (u *authUsecase) recordLoginFailure(db *gorm.DB, email, sourceAddr string) {
	u.auditService.Record(db, service.AuditRecord{
		Event:      entity.AuditEventLoginFailure,
		Stream:     entity.AuditStreamSecurity,
		SourceAddr: sourceAddr,
		Detail:     map[string]interface{}{"email": strings.ToLower(email)},
	})
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint
// violation containing the specified constraint name.
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
