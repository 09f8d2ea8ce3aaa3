package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"clinic-backend/internal/converter"
	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/delivery/http/middleware"
	"clinic-backend/internal/usecase"
	"clinic-backend/pkg/response"
	"clinic-backend/pkg/validator"
)

type AuthHandler struct {
	authUsecase  usecase.AuthUsecase
	validator    *validator.CustomValidator
	secureCookie bool
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authUsecase:  authUsecase,
		validator:    validator,
		secureCookie: secureCookie,
	}
}

// Register handles patient self-registration
// @Summary Register a new patient account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.authUsecase.Register(r.Context(), &req, sourceAddr(r))
	if err != nil {
		if handleCommonError(w, err) {
			return
		}
		switch err {
		case usecase.ErrEmailAlreadyExists:
			response.BadRequest(w, "Email already registered")
		case usecase.ErrInvalidDateFormat:
			response.BadRequest(w, "date_of_birth must use YYYY-MM-DD format")
		default:
			response.InternalServerError(w, "Failed to register user")
		}
		return
	}

	response.Success(w, http.StatusCreated, "User registered successfully", user)
}

// Login authenticates by email and password
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.authUsecase.Login(r.Context(), &req, sourceAddr(r))
	if err != nil {
		if handleCommonError(w, err) {
			return
		}
		switch err {
		case usecase.ErrInvalidCredentials:
			response.Unauthorized(w, "Invalid email or password")
		case usecase.ErrAccountDeactivated:
			response.Unauthorized(w, "Account is deactivated")
		default:
			response.InternalServerError(w, "Failed to login")
		}
		return
	}

	h.setAuthCookie(w, result.Token, result.ExpiresAt)
	response.Success(w, http.StatusOK, "Login successful", result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authUsecase.Logout(r.Context(), sourceAddr(r)); err != nil {
		if handleCommonError(w, err) {
			return
		}
		response.InternalServerError(w, "Failed to logout")
		return
	}

	h.clearAuthCookie(w)
	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}
	response.Success(w, http.StatusOK, "Profile retrieved successfully", converter.PrincipalToResponse(actor))
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.authUsecase.UpdateProfile(r.Context(), &req, sourceAddr(r))
	if err != nil {
		if handleCommonError(w, err) {
			return
		}
		response.InternalServerError(w, "Failed to update profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", user)
}

// ChangePassword rotates the password and re-issues the session token; every
// token issued before the change stops working.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.authUsecase.ChangePassword(r.Context(), &req, sourceAddr(r))
	if err != nil {
		if handleCommonError(w, err) {
			return
		}
		switch err {
		case usecase.ErrPasswordConfirmation:
			response.BadRequest(w, "New password and confirmation do not match")
		case usecase.ErrWrongCurrentPassword:
			response.Unauthorized(w, "Current password is incorrect")
		default:
			response.InternalServerError(w, "Failed to change password")
		}
		return
	}

	h.setAuthCookie(w, result.Token, result.ExpiresAt)
	response.Success(w, http.StatusOK, "Password changed successfully", result)
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}
