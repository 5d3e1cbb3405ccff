package ticket

import "time"

type Ticket struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      int64      `gorm:"column:user_id;not null;index"`
	AssigneeID  *int64     `gorm:"column:assignee_id"`
	Subject     string     `gorm:"column:subject;not null"`
	Description string     `gorm:"column:description;not null"`
	Category    string     `gorm:"column:category"`
	Priority    string     `gorm:"column:priority;not null;default:normal"`
	Status      string     `gorm:"column:status;not null;default:open;index"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
