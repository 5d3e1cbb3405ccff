package content

import (
	"time"

	contentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/content"
)

// Kind names a taxonomy table.
type Kind string

const (
	KindMaterialType Kind = "material_type"
	KindSoftwareType Kind = "software_type"
)

type Template struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Material struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	Content        string    `json:"content"`
	URL            string    `json:"url"`
	MaterialTypeID *int64    `json:"materialTypeId"`
	SoftwareTypeID *int64    `json:"softwareTypeId"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AIPrompt is a prompt template students can run for CreditCost credits.
type AIPrompt struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	CreditCost  int64     `json:"creditCost"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Taxonomy is a material type or a software type.
type Taxonomy struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func TemplateFromDataModel(t *contentDatamodel.Template) *Template {
	return &Template{
		ID:          t.ID,
		Title:       t.Title,
		Category:    t.Category,
		Description: t.Description,
		Content:     t.Content,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func MaterialFromDataModel(m *contentDatamodel.Material) *Material {
	return &Material{
		ID:             m.ID,
		Title:          m.Title,
		Category:       m.Category,
		Description:    m.Description,
		Content:        m.Content,
		URL:            m.URL,
		MaterialTypeID: m.MaterialTypeID,
		SoftwareTypeID: m.SoftwareTypeID,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func PromptFromDataModel(p *contentDatamodel.AIPrompt) *AIPrompt {
	return &AIPrompt{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		Description: p.Description,
		Content:     p.Content,
		CreditCost:  p.CreditCost,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func TaxonomyFromMaterialType(t *contentDatamodel.MaterialType) *Taxonomy {
	return &Taxonomy{ID: t.ID, Name: t.Name, Icon: t.Icon, IsActive: t.IsActive, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func TaxonomyFromSoftwareType(t *contentDatamodel.SoftwareType) *Taxonomy {
	return &Taxonomy{ID: t.ID, Name: t.Name, Icon: t.Icon, IsActive: t.IsActive, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}
