package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
)

type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	GroupID     *int64     `json:"groupId"`
	GroupName   string     `json:"groupName,omitempty"`
	AICredits   int64      `json:"aiCredits"`
	IsActive    bool       `json:"isActive"`
	HasGoogle   bool       `json:"hasGoogle"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	UserCount   int64     `json:"userCount"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Permission struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	Module      string `json:"module"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// PermissionModule is one section of the permission catalogue.
type PermissionModule struct {
	Module      string       `json:"module"`
	Permissions []Permission `json:"permissions"`
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		AvatarURL:   u.AvatarURL,
		GroupID:     u.GroupID,
		AICredits:   u.AICredits,
		IsActive:    u.IsActive,
		HasGoogle:   u.GoogleID != nil,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func GroupFromDataModel(g *userDatamodel.UserGroup) *Group {
	return &Group{
		ID:          g.ID,
		Name:        g.Name,
		DisplayName: g.DisplayName,
		Description: g.Description,
		Color:       g.Color,
		Permissions: []string{},
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func PermissionFromDataModel(p *userDatamodel.Permission) Permission {
	return Permission{
		ID:          p.ID,
		Key:         p.Key,
		Module:      p.Module,
		Category:    p.Category,
		Description: p.Description,
	}
}
