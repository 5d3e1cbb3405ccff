package content

import (
	"strings"

	"github.com/frahmantamala/backoffice/internal/core/common/validation"
)

type TemplateFilter struct {
	Category   string
	ActiveOnly bool
}

type MaterialFilter struct {
	Category       string
	MaterialTypeID *int64
	SoftwareTypeID *int64
	ActiveOnly     bool
}

type PromptFilter struct {
	Category   string
	ActiveOnly bool
}

type TemplateDTO struct {
	Title       string `json:"title" validate:"notblank,max=255"`
	Category    string `json:"category" validate:"max=100"`
	Description string `json:"description" validate:"max=2000"`
	Content     string `json:"content" validate:"notblank"`
	IsActive    *bool  `json:"isActive"`
}

func (d *TemplateDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Category = strings.TrimSpace(d.Category)
}

func (d TemplateDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateTemplateDTO is a partial update; nil fields are left unchanged.
type UpdateTemplateDTO struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=255"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Content     *string `json:"content" validate:"omitempty,notblank"`
	IsActive    *bool   `json:"isActive"`
}

func (d *UpdateTemplateDTO) Normalize() {
	trim(d.Title, d.Category)
}

func (d UpdateTemplateDTO) Validate() error {
	return validation.Struct(d)
}

type MaterialDTO struct {
	Title          string `json:"title" validate:"notblank,max=255"`
	Category       string `json:"category" validate:"max=100"`
	Description    string `json:"description" validate:"max=2000"`
	Content        string `json:"content"`
	URL            string `json:"url" validate:"omitempty,url,max=1000"`
	MaterialTypeID *int64 `json:"materialTypeId" validate:"omitempty,gt=0"`
	SoftwareTypeID *int64 `json:"softwareTypeId" validate:"omitempty,gt=0"`
	IsActive       *bool  `json:"isActive"`
}

func (d *MaterialDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Category = strings.TrimSpace(d.Category)
	d.URL = strings.TrimSpace(d.URL)
}

func (d MaterialDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateMaterialDTO is a partial update; nil fields are left unchanged.
// A type id of 0 clears the type and an empty url clears the link.
type UpdateMaterialDTO struct {
	Title          *string `json:"title" validate:"omitempty,notblank,max=255"`
	Category       *string `json:"category" validate:"omitempty,max=100"`
	Description    *string `json:"description" validate:"omitempty,max=2000"`
	Content        *string `json:"content"`
	URL            *string `json:"url" validate:"omitempty,url|eq=,max=1000"`
	MaterialTypeID *int64  `json:"materialTypeId" validate:"omitempty,min=0"`
	SoftwareTypeID *int64  `json:"softwareTypeId" validate:"omitempty,min=0"`
	IsActive       *bool   `json:"isActive"`
}

func (d *UpdateMaterialDTO) Normalize() {
	trim(d.Title, d.Category, d.URL)
}

func (d UpdateMaterialDTO) Validate() error {
	return validation.Struct(d)
}

type AIPromptDTO struct {
	Title       string `json:"title" validate:"notblank,max=255"`
	Category    string `json:"category" validate:"max=100"`
	Description string `json:"description" validate:"max=2000"`
	Content     string `json:"content" validate:"notblank,max=20000"`
	CreditCost  int64  `json:"creditCost" validate:"min=1,max=1000"`
	IsActive    *bool  `json:"isActive"`
}

func (d *AIPromptDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Category = strings.TrimSpace(d.Category)
}

func (d AIPromptDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateAIPromptDTO is a partial update; nil fields are left unchanged.
type UpdateAIPromptDTO struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=255"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Content     *string `json:"content" validate:"omitempty,notblank,max=20000"`
	CreditCost  *int64  `json:"creditCost" validate:"omitempty,min=1,max=1000"`
	IsActive    *bool   `json:"isActive"`
}

func (d *UpdateAIPromptDTO) Normalize() {
	trim(d.Title, d.Category)
}

func (d UpdateAIPromptDTO) Validate() error {
	return validation.Struct(d)
}

type TaxonomyDTO struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Icon     string `json:"icon" validate:"max=100"`
	IsActive *bool  `json:"isActive"`
}

func (d *TaxonomyDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
}

func (d TaxonomyDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateTaxonomyDTO is a partial update; nil fields are left unchanged.
type UpdateTaxonomyDTO struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=100"`
	Icon     *string `json:"icon" validate:"omitempty,max=100"`
	IsActive *bool   `json:"isActive"`
}

func (d *UpdateTaxonomyDTO) Normalize() {
	trim(d.Name)
}

func (d UpdateTaxonomyDTO) Validate() error {
	return validation.Struct(d)
}

type TemplatesResponse struct {
	Templates []*Template `json:"templates"`
}

type MaterialsResponse struct {
	Materials []*Material `json:"materials"`
}

type PromptsResponse struct {
	Prompts []*AIPrompt `json:"prompts"`
}

type TaxonomiesResponse struct {
	Items []*Taxonomy `json:"items"`
}

func active(flag *bool) bool {
	return flag == nil || *flag
}

func trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// setIf copies *src into *dst when src is set.
func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// optionalID maps a sent id of 0 to nil.
func optionalID(dst **int64, src *int64) {
	if src == nil {
		return
	}
	if *src == 0 {
		*dst = nil
		return
	}
	id := *src
	*dst = &id
}
