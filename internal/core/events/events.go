package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeUserRegistered   = "user.registered"
	TypeUserLoggedIn     = "user.logged_in"
	TypeUserLoggedOut    = "user.logged_out"
	TypeUserUpdated      = "user.updated"
	TypeUserDeleted      = "user.deleted"
	TypeGroupPermissions = "group.permissions_updated"

	TypePartnerCreated  = "partner.created"
	TypePartnerDeleted  = "partner.deleted"
	TypePartnerReviewed = "partner.reviewed"
	TypeCommentCreated  = "partner.comment_created"
	TypeCommentDeleted  = "partner.comment_deleted"

	TypeContentCreated = "content.created"
	TypeContentUpdated = "content.updated"
	TypeContentDeleted = "content.deleted"

	TypeTicketCreated = "ticket.created"
	TypeTicketUpdated = "ticket.updated"

	TypeCreditsSpent     = "credits.spent"
	TypeCreditsGranted   = "credits.granted"
	TypeCreditsPurchased = "credits.purchased"
	TypePaymentCreated   = "payment.intent_created"
)

type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) EventID() string {
	return e.ID
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

func (e BaseEvent) Payload() interface{} {
	return e.Data
}

// ActivityEvent describes something a user did to an entity. Every domain
// event in this service has this shape so the activity log can persist any
// of them.
type ActivityEvent struct {
	BaseEvent
	ActorID  int64  `json:"actor_id"`
	Entity   string `json:"entity"`
	EntityID string `json:"entity_id"`
}

func NewActivityEvent(eventType string, actorID int64, entity, entityID string, data map[string]interface{}) *ActivityEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &ActivityEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		ActorID:  actorID,
		Entity:   entity,
		EntityID: entityID,
	}
}
