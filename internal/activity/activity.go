package activity

import (
	"encoding/json"
	"time"

	activityDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/activity"
)

type Entry struct {
	ID        int64                  `json:"id"`
	UserID    *int64                 `json:"userId"`
	UserName  string                 `json:"userName,omitempty"`
	Action    string                 `json:"action"`
	Entity    string                 `json:"entity"`
	EntityID  string                 `json:"entityId"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"createdAt"`
}

func FromDataModel(row *activityDatamodel.ActivityLogRow) *Entry {
	e := &Entry{
		ID:        row.ID,
		UserID:    row.UserID,
		UserName:  row.UserName,
		Action:    row.Action,
		Entity:    row.Entity,
		EntityID:  row.EntityID,
		Metadata:  map[string]interface{}{},
		CreatedAt: row.CreatedAt,
	}
	if row.Metadata != "" {
		// Metadata is written by Recorder; a row that fails to decode keeps an
		// empty map.
		_ = json.Unmarshal([]byte(row.Metadata), &e.Metadata)
	}
	return e
}
