package product

import (
	"strings"

	"github.com/frahmantamala/backoffice/internal/core/common/validation"
)

type ListFilter struct {
	UserID     int64
	SupplierID *int64
	Search     string
	Limit      int
	Offset     int
}

type ProductDTO struct {
	Name       string `json:"name" validate:"notblank,max=255"`
	SKU        string `json:"sku" validate:"max=100"`
	CostCents  int64  `json:"costCents" validate:"min=0"`
	PriceCents int64  `json:"priceCents" validate:"min=0"`
	SupplierID *int64 `json:"supplierId" validate:"omitempty,gt=0"`
	Notes      string `json:"notes" validate:"max=5000"`
}

func (d *ProductDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.SKU = strings.TrimSpace(d.SKU)
}

func (d ProductDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateProductDTO is a partial update; nil fields are left unchanged.
// A supplierId of 0 detaches the product from its supplier.
type UpdateProductDTO struct {
	Name       *string `json:"name" validate:"omitempty,notblank,max=255"`
	SKU        *string `json:"sku" validate:"omitempty,max=100"`
	CostCents  *int64  `json:"costCents" validate:"omitempty,min=0"`
	PriceCents *int64  `json:"priceCents" validate:"omitempty,min=0"`
	SupplierID *int64  `json:"supplierId" validate:"omitempty,min=0"`
	Notes      *string `json:"notes" validate:"omitempty,max=5000"`
}

func (d *UpdateProductDTO) Normalize() {
	for _, f := range []*string{d.Name, d.SKU} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (d UpdateProductDTO) Validate() error {
	return validation.Struct(d)
}

type ProductsResponse struct {
	Products []*Product `json:"products"`
	Total    int64      `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}
