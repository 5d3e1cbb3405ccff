package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/backoffice/internal"
	activityDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/activity"
	"github.com/frahmantamala/backoffice/internal/core/events"
)

type RepositoryAPI interface {
	Create(ctx context.Context, row *activityDatamodel.ActivityLog) error
	List(ctx context.Context, filter ListFilter) ([]*activityDatamodel.ActivityLogRow, int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Entry, int64, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, internal.NewInternalError("failed to list activity", err)
	}
	out := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

// Record persists one domain event. Events without an actor are stored
// with a NULL user.
func (s *Service) Record(ctx context.Context, event events.Event) error {
	activityEvent, ok := event.(*events.ActivityEvent)
	if !ok {
		s.logger.Debug("skipping event without activity shape", "event_type", event.EventType())
		return nil
	}

	metadata, err := json.Marshal(activityEvent.Data)
	if err != nil {
		return fmt.Errorf("encode activity metadata: %w", err)
	}

	row := &activityDatamodel.ActivityLog{
		Action:    activityEvent.EventType(),
		Entity:    activityEvent.Entity,
		EntityID:  activityEvent.EntityID,
		Metadata:  string(metadata),
		CreatedAt: activityEvent.OccurredAt(),
	}
	if activityEvent.ActorID > 0 {
		actor := activityEvent.ActorID
		row.UserID = &actor
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return fmt.Errorf("record activity %s: %w", activityEvent.EventType(), err)
	}
	return nil
}

// RegisterEventHandlers subscribes Record to every event on the bus.
func (s *Service) RegisterEventHandlers(bus *events.EventBus) {
	bus.SubscribeAll(s.Record)
	s.logger.Info("activity log subscribed to domain events")
}
