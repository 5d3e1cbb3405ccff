package supplier

import (
	"strings"

	"github.com/frahmantamala/backoffice/internal/core/common/validation"
)

type ListFilter struct {
	UserID int64
	Search string
	Limit  int
	Offset int
}

type SupplierDTO struct {
	Name        string `json:"name" validate:"notblank,max=255"`
	ContactName string `json:"contactName" validate:"max=255"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	Phone       string `json:"phone" validate:"max=50"`
	Website     string `json:"website" validate:"omitempty,url,max=500"`
	Notes       string `json:"notes" validate:"max=5000"`
}

func (d *SupplierDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.ContactName = strings.TrimSpace(d.ContactName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
	d.Website = strings.TrimSpace(d.Website)
}

func (d SupplierDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateSupplierDTO is a partial update; nil fields are left unchanged and
// an empty string clears an optional field.
type UpdateSupplierDTO struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	ContactName *string `json:"contactName" validate:"omitempty,max=255"`
	Email       *string `json:"email" validate:"omitempty,email|eq=,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Website     *string `json:"website" validate:"omitempty,url|eq=,max=500"`
	Notes       *string `json:"notes" validate:"omitempty,max=5000"`
}

func (d *UpdateSupplierDTO) Normalize() {
	for _, f := range []*string{d.Name, d.ContactName, d.Phone, d.Website} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if d.Email != nil {
		*d.Email = strings.ToLower(strings.TrimSpace(*d.Email))
	}
}

func (d UpdateSupplierDTO) Validate() error {
	return validation.Struct(d)
}

type SuppliersResponse struct {
	Suppliers []*Supplier `json:"suppliers"`
	Total     int64       `json:"total"`
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
}
