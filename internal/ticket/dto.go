package ticket

import (
	"strings"

	"github.com/frahmantamala/backoffice/internal/core/common/validation"
)

type ListFilter struct {
	// UserID restricts the list to one requester when set.
	UserID   *int64
	Status   string
	Priority string
	Limit    int
	Offset   int
}

type CreateTicketDTO struct {
	Subject     string `json:"subject" validate:"notblank,max=255"`
	Description string `json:"description" validate:"notblank,max=10000"`
	Category    string `json:"category" validate:"max=100"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
}

func (d *CreateTicketDTO) Normalize() {
	d.Subject = strings.TrimSpace(d.Subject)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	if d.Priority == "" {
		d.Priority = PriorityNormal
	}
}

func (d CreateTicketDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateTicketDTO is a partial update; nil fields are left unchanged.
type UpdateTicketDTO struct {
	Subject     *string `json:"subject" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,notblank,max=10000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Status      *string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	AssigneeID  *int64  `json:"assigneeId" validate:"omitempty,gt=0"`
}

func (d *UpdateTicketDTO) Normalize() {
	for _, f := range []*string{d.Subject, d.Description, d.Category} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (d UpdateTicketDTO) Validate() error {
	return validation.Struct(d)
}

func (d UpdateTicketDTO) touchesContent() bool {
	return d.Subject != nil || d.Description != nil || d.Category != nil
}

func (d UpdateTicketDTO) touchesTriage() bool {
	return d.Priority != nil || d.AssigneeID != nil
}

type TicketsResponse struct {
	Tickets []*Ticket `json:"tickets"`
	Total   int64     `json:"total"`
	Limit   int       `json:"limit"`
	Offset  int       `json:"offset"`
}
