package dto

import (
	"github.com/manorfm/saas-admin/internal/domain"
)

// RegisterRequest is the payload of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"max=32"`
	Bio      string `json:"bio" validate:"max=1000"`
	OrgID    *int64 `json:"org_id" validate:"omitempty,gt=0"`
	TenantID *int64 `json:"tenant_id" validate:"omitempty,gt=0"`
}

func (r RegisterRequest) ToDomain() domain.RegisterRequest {
	return domain.RegisterRequest{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Phone:    r.Phone,
		Bio:      r.Bio,
		OrgID:    r.OrgID,
		TenantID: r.TenantID,
	}
}
