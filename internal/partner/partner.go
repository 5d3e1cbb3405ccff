package partner

import (
	"sort"
	"time"

	partnerDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/partner"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Partner struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	CategoryID    *int64     `json:"categoryId"`
	Description   string     `json:"description"`
	Website       string     `json:"website"`
	LogoURL       string     `json:"logoUrl"`
	IsVerified    bool       `json:"isVerified"`
	AverageRating float64    `json:"averageRating"`
	ReviewCount   int64      `json:"reviewCount"`
	Status        string     `json:"status"`
	Contacts      []*Contact `json:"contacts,omitempty"`
	Reviews       []*Review  `json:"reviews,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type Contact struct {
	ID        int64     `json:"id"`
	PartnerID int64     `json:"partnerId"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

type Review struct {
	ID         int64     `json:"id"`
	PartnerID  int64     `json:"partnerId"`
	UserID     int64     `json:"userId"`
	AuthorName string    `json:"authorName"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Comment is one node of a partner's discussion thread.
type Comment struct {
	ID         int64      `json:"id"`
	PartnerID  int64      `json:"partnerId"`
	UserID     int64      `json:"userId"`
	ParentID   *int64     `json:"parentId"`
	AuthorName string     `json:"authorName"`
	Content    string     `json:"content"`
	Likes      int64      `json:"likes"`
	Depth      int        `json:"depth"`
	Replies    []*Comment `json:"replies"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// BuildTree assembles flat thread rows into nested comments. Every level is
// ordered newest first (id breaks ties). A row whose parent is not among the
// rows is dropped together with its own replies.
func BuildTree(rows []partnerDatamodel.CommentRow) []*Comment {
	sorted := make([]partnerDatamodel.CommentRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	nodes := make(map[int64]*Comment, len(sorted))
	roots := make([]*Comment, 0)
	for _, row := range sorted {
		c := commentFromRow(row)
		if row.ParentID == nil {
			roots = append(roots, c)
			nodes[c.ID] = c
			continue
		}
		parent, ok := nodes[*row.ParentID]
		if !ok {
			continue
		}
		c.Depth = parent.Depth + 1
		parent.Replies = append(parent.Replies, c)
		nodes[c.ID] = c
	}
	return roots
}

func commentFromRow(row partnerDatamodel.CommentRow) *Comment {
	return &Comment{
		ID:         row.ID,
		PartnerID:  row.PartnerID,
		UserID:     row.UserID,
		ParentID:   row.ParentID,
		AuthorName: row.AuthorName,
		Content:    row.Content,
		Likes:      row.Likes,
		Depth:      row.Depth,
		Replies:    []*Comment{},
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func CommentFromDataModel(c *partnerDatamodel.PartnerComment) *Comment {
	return commentFromRow(partnerDatamodel.CommentRow{PartnerComment: *c})
}

func CategoryFromDataModel(c *partnerDatamodel.PartnerCategory) *Category {
	return &Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromDataModel(p *partnerDatamodel.Partner) *Partner {
	return &Partner{
		ID:            p.ID,
		Name:          p.Name,
		CategoryID:    p.CategoryID,
		Description:   p.Description,
		Website:       p.Website,
		LogoURL:       p.LogoURL,
		IsVerified:    p.IsVerified,
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func ContactFromDataModel(c *partnerDatamodel.PartnerContact) *Contact {
	return &Contact{
		ID:        c.ID,
		PartnerID: c.PartnerID,
		Name:      c.Name,
		Role:      c.Role,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}
