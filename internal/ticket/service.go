package ticket

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	ticketDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/ticket"
	"github.com/frahmantamala/backoffice/internal/core/events"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*ticketDatamodel.Ticket, int64, error)
	Get(ctx context.Context, id int64) (*ticketDatamodel.Ticket, error)
	Create(ctx context.Context, t *ticketDatamodel.Ticket) error
	Update(ctx context.Context, t *ticketDatamodel.Ticket) error
	Delete(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)
}

// Actor is the caller. CanManage marks support staff, who see and triage
// every ticket.
type Actor struct {
	ID        int64
	CanManage bool
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context, actor Actor, filter ListFilter) ([]*Ticket, int64, error) {
	if !actor.CanManage {
		filter.UserID = &actor.ID
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, internal.NewInternalError("failed to list tickets", err)
	}
	out := make([]*Ticket, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, actor Actor, id int64) (*Ticket, error) {
	row, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor Actor, dto CreateTicketDTO) (*Ticket, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &ticketDatamodel.Ticket{
		UserID:      actor.ID,
		Subject:     dto.Subject,
		Description: dto.Description,
		Category:    dto.Category,
		Priority:    dto.Priority,
		Status:      StatusOpen,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create ticket", err)
	}

	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeTicketCreated, actor.ID, "ticket", strconv.FormatInt(row.ID, 10), map[string]interface{}{
		"subject":  row.Subject,
		"priority": row.Priority,
	}))
	return FromDataModel(row), nil
}

// Update applies a partial update. Requesters may edit the text of their
// own open tickets and may close them; everything else needs support.
func (s *Service) Update(ctx context.Context, actor Actor, id int64, dto UpdateTicketDTO) (*Ticket, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanManage {
		if dto.touchesTriage() {
			return nil, internal.NewForbiddenError("Only support can change priority or assignee", internal.ErrCodeInsufficientRole)
		}
		if dto.Status != nil && *dto.Status != row.Status && *dto.Status != StatusClosed {
			return nil, internal.NewForbiddenError("Only support can change the status", internal.ErrCodeInsufficientRole)
		}
		if dto.touchesContent() && row.Status != StatusOpen {
			return nil, internal.NewConflictError("Only open tickets can be edited", internal.ErrCodeTicketClosed)
		}
	}
	if dto.touchesContent() && row.Status == StatusClosed {
		return nil, internal.NewConflictError("Closed tickets cannot be edited", internal.ErrCodeTicketClosed)
	}

	from := row.Status
	if dto.Status != nil {
		if !CanTransition(from, *dto.Status) {
			return nil, internal.NewValidationError("Invalid status transition", internal.ErrCodeInvalidTransition).
				WithDetails(map[string]interface{}{"from": from, "to": *dto.Status})
		}
		row.Status = *dto.Status
		if row.Status == StatusResolved && row.ResolvedAt == nil {
			now := s.now()
			row.ResolvedAt = &now
		}
	}
	if dto.AssigneeID != nil {
		ok, err := s.repo.UserExists(ctx, *dto.AssigneeID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check assignee", err)
		}
		if !ok {
			return nil, internal.NewValidationFieldError("assigneeId", "user not found", internal.ErrCodeUserNotFound)
		}
		row.AssigneeID = dto.AssigneeID
	}
	if dto.Subject != nil {
		row.Subject = *dto.Subject
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.Category != nil {
		row.Category = *dto.Category
	}
	if dto.Priority != nil {
		row.Priority = *dto.Priority
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update ticket", err)
	}

	data := map[string]interface{}{}
	if from != row.Status {
		data["from"] = from
		data["to"] = row.Status
	}
	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeTicketUpdated, actor.ID, "ticket", strconv.FormatInt(row.ID, 10), data))
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.visible(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete ticket", err)
	}
	return nil
}

// visible loads a ticket the actor may see. Other users' tickets read as
// missing to requesters.
func (s *Service) visible(ctx context.Context, actor Actor, id int64) (*ticketDatamodel.Ticket, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get ticket", err)
	}
	if row == nil || (!actor.CanManage && row.UserID != actor.ID) {
		return nil, internal.NewNotFoundError("Ticket not found", internal.ErrCodeTicketNotFound)
	}
	return row, nil
}
