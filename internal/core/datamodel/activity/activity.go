package activity

import "time"

type ActivityLog struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    *int64    `gorm:"column:user_id;index"`
	Action    string    `gorm:"column:action;not null;index"`
	Entity    string    `gorm:"column:entity"`
	EntityID  string    `gorm:"column:entity_id"`
	Metadata  string    `gorm:"column:metadata"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ActivityLogRow is an activity log row joined with its user's name.
type ActivityLogRow struct {
	ActivityLog
	UserName string `gorm:"column:user_name"`
}
