package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/usecase"
	"clinic-backend/pkg/response"
	"clinic-backend/pkg/validator"
)

// UserHandler is the super-admin user-management surface.
type UserHandler struct {
	userUsecase usecase.UserUsecase
	validator   *validator.CustomValidator
}

func NewUserHandler(userUsecase usecase.UserUsecase, validator *validator.CustomValidator) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		validator:   validator,
	}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	query := &dto.UserListQuery{
		Role:  r.URL.Query().Get("role"),
		Page:  page,
		Limit: limit,
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "active must be true or false")
			return
		}
		query.Active = &active
	}

	result, err := h.userUsecase.List(r.Context(), query)
	if err != nil {
		if handleCommonError(w, err) {
			return
		}
		response.InternalServerError(w, "Failed to list users")
		return
	}

	response.Success(w, http.StatusOK, "Users retrieved successfully", result)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.userUsecase.Create(r.Context(), &req, sourceAddr(r))
	if err != nil {
		if handleCommonError(w, err) {
			return
		}
		switch err {
		case usecase.ErrEmailAlreadyExists:
			response.BadRequest(w, "Email already registered")
		case usecase.ErrEmployeeIDExists:
			response.BadRequest(w, "Employee ID already in use")
		case usecase.ErrDateOfBirthRequired:
			response.BadRequest(w, "date_of_birth is required for patients")
		case usecase.ErrInvalidDateFormat:
			response.BadRequest(w, "date_of_birth must use YYYY-MM-DD format")
		default:
			response.InternalServerError(w, "Failed to create user")
		}
		return
	}

	response.Success(w, http.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req dto.SetUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.userUsecase.SetStatus(r.Context(), id, *req.Active, sourceAddr(r)); err != nil {
		if handleCommonError(w, err) {
			return
		}
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to update user status")
		}
		return
	}

	response.Success(w, http.StatusOK, "User status updated successfully", nil)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.userUsecase.Delete(r.Context(), id, sourceAddr(r)); err != nil {
		if handleCommonError(w, err) {
			return
		}
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to delete user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User deleted successfully", nil)
}
