package content

import "time"

type Template struct {
	ID          int64     `gorm:"primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Category    string    `gorm:"column:category;index"`
	Description string    `gorm:"column:description"`
	Content     string    `gorm:"column:content;not null"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type Material struct {
	ID             int64     `gorm:"primaryKey"`
	Title          string    `gorm:"column:title;not null"`
	Category       string    `gorm:"column:category;index"`
	Description    string    `gorm:"column:description"`
	Content        string    `gorm:"column:content"`
	URL            string    `gorm:"column:url"`
	MaterialTypeID *int64    `gorm:"column:material_type_id;index"`
	SoftwareTypeID *int64    `gorm:"column:software_type_id;index"`
	IsActive       bool      `gorm:"column:is_active;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type AIPrompt struct {
	ID          int64     `gorm:"primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Category    string    `gorm:"column:category;index"`
	Description string    `gorm:"column:description"`
	Content     string    `gorm:"column:content;not null"`
	CreditCost  int64     `gorm:"column:credit_cost;not null;default:1"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AIPrompt) TableName() string { return "ai_prompts" }

type MaterialType struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	Icon      string    `gorm:"column:icon"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type SoftwareType struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	Icon      string    `gorm:"column:icon"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
