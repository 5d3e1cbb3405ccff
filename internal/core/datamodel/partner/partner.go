package partner

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

type PartnerCategory struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	Icon        string    `gorm:"column:icon"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type Partner struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	CategoryID    *int64    `gorm:"column:category_id;index"`
	Description   string    `gorm:"column:description"`
	Website       string    `gorm:"column:website"`
	LogoURL       string    `gorm:"column:logo_url"`
	IsVerified    bool      `gorm:"column:is_verified;not null;default:false"`
	AverageRating float64   `gorm:"column:average_rating;not null;default:0"`
	ReviewCount   int64     `gorm:"column:review_count;not null;default:0"`
	Status        string    `gorm:"column:status;not null;default:active"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type PartnerContact struct {
	ID        int64     `gorm:"primaryKey"`
	PartnerID int64     `gorm:"column:partner_id;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Role      string    `gorm:"column:role"`
	Email     string    `gorm:"column:email"`
	Phone     string    `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

type PartnerReview struct {
	ID        int64     `gorm:"primaryKey"`
	PartnerID int64     `gorm:"column:partner_id;not null;uniqueIndex:idx_partner_reviews_partner_user"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_partner_reviews_partner_user"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   string    `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type PartnerComment struct {
	ID        int64     `gorm:"primaryKey" db:"id"`
	PartnerID int64     `gorm:"column:partner_id;not null;index" db:"partner_id"`
	UserID    int64     `gorm:"column:user_id;not null" db:"user_id"`
	ParentID  *int64    `gorm:"column:parent_id;index" db:"parent_id"`
	Content   string    `gorm:"column:content;not null" db:"content"`
	Likes     int64     `gorm:"column:likes;not null;default:0" db:"likes"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" db:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" db:"updated_at"`
}

// CommentRow is one row of the recursive thread query.
type CommentRow struct {
	PartnerComment
	Depth      int    `db:"depth"`
	AuthorName string `db:"author_name"`
}

// ReviewRow is a review joined with its author's name.
type ReviewRow struct {
	PartnerReview
	AuthorName string `gorm:"column:author_name"`
}
