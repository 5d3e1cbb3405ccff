package partner

import (
	"strings"

	"github.com/frahmantamala/backoffice/internal/core/common/validation"
)

// StatusFilterActive is the list filter applied for callers who cannot
// manage partners.
const StatusFilterActive = "active"

type ListFilter struct {
	CategoryID *int64
	Search     string
	Verified   *bool
	// Status is empty for every status.
	Status string
	Limit  int
	Offset int
}

type CategoryDTO struct {
	Name        string `json:"name" validate:"notblank,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Icon        string `json:"icon" validate:"max=100"`
	IsActive    *bool  `json:"isActive"`
}

func (d *CategoryDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
}

func (d CategoryDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateCategoryDTO is a partial update; nil fields are left unchanged.
type UpdateCategoryDTO struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Icon        *string `json:"icon" validate:"omitempty,max=100"`
	IsActive    *bool   `json:"isActive"`
}

func (d *UpdateCategoryDTO) Normalize() {
	if d.Name != nil {
		*d.Name = strings.TrimSpace(*d.Name)
	}
}

func (d UpdateCategoryDTO) Validate() error {
	return validation.Struct(d)
}

type PartnerDTO struct {
	Name        string `json:"name" validate:"notblank,max=255"`
	CategoryID  *int64 `json:"categoryId" validate:"omitempty,gt=0"`
	Description string `json:"description" validate:"max=5000"`
	Website     string `json:"website" validate:"omitempty,url,max=500"`
	LogoURL     string `json:"logoUrl" validate:"omitempty,url,max=500"`
	IsVerified  bool   `json:"isVerified"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive pending"`
}

func (d *PartnerDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Website = strings.TrimSpace(d.Website)
	d.LogoURL = strings.TrimSpace(d.LogoURL)
}

func (d PartnerDTO) Validate() error {
	return validation.Struct(d)
}

// UpdatePartnerDTO is a partial update; nil fields are left unchanged.
// A categoryId of 0 removes the category and an empty website or logoUrl
// clears it.
type UpdatePartnerDTO struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	CategoryID  *int64  `json:"categoryId" validate:"omitempty,min=0"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Website     *string `json:"website" validate:"omitempty,url|eq=,max=500"`
	LogoURL     *string `json:"logoUrl" validate:"omitempty,url|eq=,max=500"`
	IsVerified  *bool   `json:"isVerified"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive pending"`
}

func (d *UpdatePartnerDTO) Normalize() {
	for _, f := range []*string{d.Name, d.Website, d.LogoURL} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (d UpdatePartnerDTO) Validate() error {
	return validation.Struct(d)
}

type ContactDTO struct {
	Name  string `json:"name" validate:"notblank,max=255"`
	Role  string `json:"role" validate:"max=100"`
	Email string `json:"email" validate:"omitempty,email,max=255"`
	Phone string `json:"phone" validate:"max=50"`
}

func (d ContactDTO) Validate() error {
	return validation.Struct(d)
}

type ReviewDTO struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (d ReviewDTO) Validate() error {
	return validation.Struct(d)
}

type CommentDTO struct {
	Content  string `json:"content" validate:"notblank,max=5000"`
	ParentID *int64 `json:"parentId" validate:"omitempty,gt=0"`
}

func (d *CommentDTO) Normalize() {
	d.Content = strings.TrimSpace(d.Content)
}

func (d CommentDTO) Validate() error {
	return validation.Struct(d)
}

type CategoriesResponse struct {
	Categories []*Category `json:"categories"`
}

type PartnersResponse struct {
	Partners []*Partner `json:"partners"`
	Total    int64      `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type CommentsResponse struct {
	Comments []*Comment `json:"comments"`
}

type ReviewResponse struct {
	Review        *Review `json:"review"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int64   `json:"reviewCount"`
}

type LikeResponse struct {
	ID    int64 `json:"id"`
	Likes int64 `json:"likes"`
}
