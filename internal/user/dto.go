package user

import (
	"strings"

	"github.com/frahmantamala/backoffice/internal/auth"
	"github.com/frahmantamala/backoffice/internal/core/common/validation"
)

type ListFilter struct {
	Search  string
	GroupID *int64
	Limit   int
	Offset  int
}

type CreateUserDTO struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"notblank,max=255"`
	GroupID  *int64 `json:"groupId" validate:"omitempty,gt=0"`
	IsActive *bool  `json:"isActive"`
}

func (d *CreateUserDTO) Normalize() {
	d.Email = auth.NormalizeEmail(d.Email)
	d.Name = strings.TrimSpace(d.Name)
}

func (d CreateUserDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateUserDTO is a partial update; nil fields are left untouched.
type UpdateUserDTO struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Name     *string `json:"name" validate:"omitempty,notblank,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	GroupID  *int64  `json:"groupId" validate:"omitempty,gt=0"`
	IsActive *bool   `json:"isActive"`
}

func (d *UpdateUserDTO) Normalize() {
	if d.Email != nil {
		e := auth.NormalizeEmail(*d.Email)
		d.Email = &e
	}
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		d.Name = &n
	}
}

func (d UpdateUserDTO) Validate() error {
	return validation.Struct(d)
}

type GroupDTO struct {
	Name        string `json:"name" validate:"notblank,max=100"`
	DisplayName string `json:"displayName" validate:"notblank,max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"hexcolor_or_empty"`
}

func (d *GroupDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.DisplayName = strings.TrimSpace(d.DisplayName)
}

func (d GroupDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateGroupDTO is a partial update; nil fields are left unchanged.
type UpdateGroupDTO struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=100"`
	DisplayName *string `json:"displayName" validate:"omitempty,notblank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       *string `json:"color" validate:"omitempty,hexcolor_or_empty"`
}

func (d *UpdateGroupDTO) Normalize() {
	for _, f := range []*string{d.Name, d.DisplayName} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (d UpdateGroupDTO) Validate() error {
	return validation.Struct(d)
}

type SetPermissionsDTO struct {
	Keys []string `json:"keys" validate:"dive,notblank"`
}

func (d SetPermissionsDTO) Validate() error {
	return validation.Struct(d)
}

type UsersResponse struct {
	Users  []*User `json:"users"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

type GroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type PermissionsResponse struct {
	Modules []PermissionModule `json:"modules"`
}
