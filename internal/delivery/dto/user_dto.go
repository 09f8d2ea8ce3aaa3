package dto

// Request DTOs

type CreateUserRequest struct {
	Role      string `json:"role" validate:"required,oneof=SUPERADMIN RECEPTIONIST PATIENT"`
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,strongpassword"`
	Phone     string `json:"phone" validate:"omitempty,phone"`

	// Patient fields.
	DateOfBirth string `json:"date_of_birth" validate:"omitempty"` // Format: YYYY-MM-DD
	Gender      string `json:"gender" validate:"omitempty,oneof=male female other"`
	Address     string `json:"address" validate:"omitempty,max=500"`

	// Staff fields.
	Department string `json:"department" validate:"omitempty,max=100"`
	EmployeeID string `json:"employee_id" validate:"omitempty,max=50"`
}

type SetUserStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// Query DTOs

type UserListQuery struct {
	Role   string
	Active *bool
	Page   int
	Limit  int
}

// Response DTOs

type UserListResponse struct {
	Users       []UserResponse `json:"users"`
	Total       int64          `json:"total"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
}
