package product

import (
	"math"
	"time"

	catalogDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/catalog"
)

type Product struct {
	ID            int64     `json:"id"`
	SupplierID    *int64    `json:"supplierId"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	CostCents     int64     `json:"costCents"`
	PriceCents    int64     `json:"priceCents"`
	MarginCents   int64     `json:"marginCents"`
	MarginPercent float64   `json:"marginPercent"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Margin returns price minus cost and that margin as a percentage of the
// price, rounded to two decimals. A zero price has a zero percentage.
func Margin(costCents, priceCents int64) (int64, float64) {
	margin := priceCents - costCents
	if priceCents == 0 {
		return margin, 0
	}
	pct := float64(margin) * 100 / float64(priceCents)
	return margin, math.Round(pct*100) / 100
}

func FromDataModel(p *catalogDatamodel.Product) *Product {
	margin, pct := Margin(p.CostCents, p.PriceCents)
	return &Product{
		ID:            p.ID,
		SupplierID:    p.SupplierID,
		Name:          p.Name,
		SKU:           p.SKU,
		CostCents:     p.CostCents,
		PriceCents:    p.PriceCents,
		MarginCents:   margin,
		MarginPercent: pct,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
