package ticket

import (
	"time"

	ticketDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/ticket"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// forward lists the single step each status may advance to. Any status
// other than closed may also jump straight to closed.
var forward = map[string]string{
	StatusOpen:       StatusInProgress,
	StatusInProgress: StatusResolved,
	StatusResolved:   StatusClosed,
}

// CanTransition reports whether a ticket may move from one status to
// another. Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	if from == StatusClosed {
		return false
	}
	return to == StatusClosed || forward[from] == to
}

type Ticket struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	AssigneeID  *int64     `json:"assigneeId"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	ResolvedAt  *time.Time `json:"resolvedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func FromDataModel(t *ticketDatamodel.Ticket) *Ticket {
	return &Ticket{
		ID:          t.ID,
		UserID:      t.UserID,
		AssigneeID:  t.AssigneeID,
		Subject:     t.Subject,
		Description: t.Description,
		Category:    t.Category,
		Priority:    t.Priority,
		Status:      t.Status,
		ResolvedAt:  t.ResolvedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
