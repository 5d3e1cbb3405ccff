package user

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	Name         string     `gorm:"column:name;not null"`
	PasswordHash string     `gorm:"column:password_hash"`
	GoogleID     *string    `gorm:"column:google_id;uniqueIndex"`
	AvatarURL    string     `gorm:"column:avatar_url"`
	GroupID      *int64     `gorm:"column:group_id;index"`
	AICredits    int64      `gorm:"column:ai_credits;not null;default:0"`
	IsActive     bool       `gorm:"column:is_active;not null"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

type UserGroup struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	DisplayName string    `gorm:"column:display_name;not null"`
	Description string    `gorm:"column:description"`
	Color       string    `gorm:"column:color"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Key         string    `gorm:"column:permission_key;uniqueIndex;not null"`
	Module      string    `gorm:"column:module;not null"`
	Category    string    `gorm:"column:category"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

type GroupPermission struct {
	GroupID      int64     `gorm:"column:group_id;primaryKey"`
	PermissionID int64     `gorm:"column:permission_id;primaryKey"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserGroup) TableName() string { return "user_groups" }

func (GroupPermission) TableName() string { return "group_permissions" }
