// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/coinvoice/internal/billing"
)

type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"  validate:"omitempty,min=1,max=100"`
	Theme *string `json:"theme,omitempty" validate:"omitempty,oneof=dark light"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type UpdateUserPlanRequest struct {
	Plan string `json:"plan" validate:"required,oneof=free pro"`
}

type UserResponse struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	Role         string             `json:"role"`
	Plan         string             `json:"plan"`
	Features     billing.FeatureSet `json:"features"`
	InvoiceCount int                `json:"invoice_count"`
	Theme        string             `json:"theme"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
	Plan     string `json:"plan"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Plan:         string(u.Plan),
		Features:     u.Features,
		InvoiceCount: u.InvoiceCount,
		Theme:        u.Theme,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
