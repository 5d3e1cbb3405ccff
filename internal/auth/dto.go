package auth

import (
	"strings"

	"github.com/frahmantamala/backoffice/internal/core/common/validation"
)

type RegisterDTO struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"notblank,max=255"`
}

func (d *RegisterDTO) Normalize() {
	d.Email = NormalizeEmail(d.Email)
	d.Name = strings.TrimSpace(d.Name)
}

func (d RegisterDTO) Validate() error {
	return validation.Struct(d)
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (d LoginDTO) Validate() error {
	return validation.Struct(d)
}

type UserResponse struct {
	User *Principal `json:"user"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
