package converter

import (
	"clinic-backend/internal/delivery/dto"
	"clinic-backend/internal/domain/entity"
)

// PrincipalToResponse converts a Principal entity to UserResponse DTO. The
// password hash and reset-token fields never cross this boundary.
func PrincipalToResponse(principal *entity.Principal) *dto.UserResponse {
	if principal == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:            principal.ID,
		Role:          string(principal.Role),
		FirstName:     principal.FirstName,
		LastName:      principal.LastName,
		Email:         principal.Email,
		Phone:         principal.Phone,
		Active:        principal.Active,
		EmailVerified: principal.EmailVerified,
		LastLoginAt:   principal.LastLoginAt,

		DateOfBirth:      principal.DateOfBirth,
		Gender:           principal.Gender,
		Address:          principal.Address,
		EmergencyContact: principal.EmergencyContact,
		MedicalHistory:   principal.MedicalHistory,
		Allergies:        principal.Allergies,
		Medications:      principal.Medications,
		InsuranceInfo:    principal.InsuranceInfo,

		Department: principal.Department,
		EmployeeID: principal.EmployeeID,

		CreatedAt: principal.CreatedAt,
		UpdatedAt: principal.UpdatedAt,
	}
}

// PrincipalsToResponses converts a slice of Principal entities to UserResponse DTOs
func PrincipalsToResponses(principals []entity.Principal) []dto.UserResponse {
	responses := make([]dto.UserResponse, len(principals))
	for i, principal := range principals {
		resp := PrincipalToResponse(&principal)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
