package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/auth"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *Repository) FindByGoogleID(ctx context.Context, googleID string) (*userDatamodel.User, error) {
	return r.findOne(ctx, "google_id = ?", googleID)
}

func (r *Repository) findOne(ctx context.Context, where string, arg interface{}) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where(where, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) CreateUser(ctx context.Context, u *userDatamodel.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrEmailTaken
	}
	if err != nil {
		return internal.NewInternalError("failed to create user", err)
	}
	return nil
}

func (r *Repository) LinkGoogleAccount(ctx context.Context, userID int64, googleID, avatarURL string) error {
	updates := map[string]interface{}{"google_id": googleID}
	if avatarURL != "" {
		updates["avatar_url"] = avatarURL
	}
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (r *Repository) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Update("last_login_at", at).Error
}

func (r *Repository) GroupByName(ctx context.Context, name string) (*userDatamodel.UserGroup, error) {
	var g userDatamodel.UserGroup
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// LoadPrincipal reads the user, its group name and the group's permission
// keys. Returns nil, nil for an unknown user.
func (r *Repository) LoadPrincipal(ctx context.Context, userID int64) (*auth.Principal, error) {
	db := r.db.WithContext(ctx)

	var u userDatamodel.User
	if err := db.Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	p := &auth.Principal{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		AvatarURL:   u.AvatarURL,
		GroupID:     u.GroupID,
		AICredits:   u.AICredits,
		IsActive:    u.IsActive,
		Permissions: auth.NewPermissionSet(),
	}
	if u.GroupID == nil {
		return p, nil
	}

	var g userDatamodel.UserGroup
	if err := db.Where("id = ?", *u.GroupID).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, nil
		}
		return nil, err
	}
	p.Role = g.Name

	var keys []string
	err := db.Table("permissions p").
		Select("p.permission_key").
		Joins("JOIN group_permissions gp ON gp.permission_id = p.id").
		Where("gp.group_id = ?", g.ID).
		Order("p.permission_key").
		Pluck("p.permission_key", &keys).Error
	if err != nil {
		return nil, err
	}
	p.Permissions = auth.NewPermissionSet(keys...)

	return p, nil
}
