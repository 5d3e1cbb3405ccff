package auth

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/frahmantamala/backoffice/internal"
)

// Group names double as role strings.
const (
	RoleAdmin   = "Administradores"
	RoleSupport = "Suporte"
	RoleStudent = "Alunos"
)

// IsReservedRole reports whether name is one of the role groups the access
// checks and registration look up by name.
func IsReservedRole(name string) bool {
	switch name {
	case RoleAdmin, RoleSupport, RoleStudent:
		return true
	}
	return false
}

const (
	PermUsersManage       = "users.manage"
	PermPermissionsManage = "permissions.manage"
	PermPartnersView      = "partners.view"
	PermPartnersManage    = "partners.manage"
	PermContentManage     = "content.manage"
	PermTicketsManage     = "tickets.manage"
	PermActivityView      = "activity.view"
	PermCreditsManage     = "credits.manage"
	PermAIUse             = "ai.use"
)

// PermissionSet is the capability set of a principal, keyed by permission key.
type PermissionSet map[string]struct{}

func NewPermissionSet(keys ...string) PermissionSet {
	s := make(PermissionSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s PermissionSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s PermissionSet) HasAny(keys ...string) bool {
	for _, k := range keys {
		if s.Has(k) {
			return true
		}
	}
	return false
}

func (s PermissionSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

// Principal is the authenticated caller, resolved once per request.
type Principal struct {
	ID          int64         `json:"id"`
	Email       string        `json:"email"`
	Name        string        `json:"name"`
	AvatarURL   string        `json:"avatarUrl,omitempty"`
	GroupID     *int64        `json:"groupId"`
	Role        string        `json:"role"`
	Permissions PermissionSet `json:"permissions"`
	AICredits   int64         `json:"aiCredits"`
	IsActive    bool          `json:"isActive"`
}

func (p *Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

func (p *Principal) Can(key string) bool {
	return p.Permissions.Has(key)
}

type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	// Renewed is set when the expiry was pushed forward on this request.
	Renewed bool
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore keeps server-side session state. Get returns nil, nil for
// unknown ids.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID int64) error
	Purge(ctx context.Context, now time.Time) (int64, error)
}

type ctxKey string

const principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = internal.ContextWithUserID(ctx, p.ID)
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
