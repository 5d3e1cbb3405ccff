package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ user.RepositoryAPI = (*UserRepository)(nil)

func (r *UserRepository) ListUsers(ctx context.Context, filter user.ListFilter) ([]*userDatamodel.User, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&userDatamodel.User{})
		if filter.Search != "" {
			like := "%" + strings.ToLower(filter.Search) + "%"
			q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
		}
		if filter.GroupID != nil {
			q = q.Where("group_id = ?", *filter.GroupID)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*userDatamodel.User
	err := scoped().Order("created_at DESC, id DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) GetUser(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, u *userDatamodel.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrEmailTaken
	}
	if err != nil {
		return internal.NewInternalError("failed to create user", err)
	}
	return nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id int64, updates map[string]interface{}) error {
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", id).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrEmailTaken
	}
	if err != nil {
		return internal.NewInternalError("failed to update user", err)
	}
	return nil
}

// DeleteUser removes the user with every row they own in one transaction.
// The schema cascades the same way; deleting explicitly keeps partner
// ratings correct and works on databases without enforced foreign keys.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reviewed []int64
		if err := tx.Table("partner_reviews").Where("user_id = ?", id).Distinct().Pluck("partner_id", &reviewed).Error; err != nil {
			return err
		}

		stmts := []string{
			"DELETE FROM sessions WHERE user_id = ?",
			"DELETE FROM credit_transactions WHERE user_id = ?",
			"DELETE FROM credit_purchases WHERE user_id = ?",
			"DELETE FROM partner_reviews WHERE user_id = ?",
			`DELETE FROM partner_comments WHERE id IN (
				WITH RECURSIVE subtree AS (
					SELECT id FROM partner_comments WHERE user_id = ?
					UNION
					SELECT c.id FROM partner_comments c JOIN subtree s ON c.parent_id = s.id
				)
				SELECT id FROM subtree
			)`,
			"DELETE FROM products WHERE user_id = ?",
			"DELETE FROM my_suppliers WHERE user_id = ?",
			"DELETE FROM tickets WHERE user_id = ?",
			"UPDATE tickets SET assignee_id = NULL WHERE assignee_id = ?",
			"UPDATE activity_logs SET user_id = NULL WHERE user_id = ?",
		}
		for _, stmt := range stmts {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}

		if len(reviewed) > 0 {
			err := tx.Exec(`UPDATE partners SET
				average_rating = COALESCE((SELECT AVG(rating) FROM partner_reviews WHERE partner_reviews.partner_id = partners.id), 0),
				review_count = (SELECT COUNT(*) FROM partner_reviews WHERE partner_reviews.partner_id = partners.id)
				WHERE id IN ?`, reviewed).Error
			if err != nil {
				return err
			}
		}

		return tx.Where("id = ?", id).Delete(&userDatamodel.User{}).Error
	})
}

func (r *UserRepository) ListGroups(ctx context.Context) ([]*userDatamodel.UserGroup, error) {
	var groups []*userDatamodel.UserGroup
	err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error
	return groups, err
}

func (r *UserRepository) GetGroup(ctx context.Context, id int64) (*userDatamodel.UserGroup, error) {
	var g userDatamodel.UserGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *UserRepository) CreateGroup(ctx context.Context, g *userDatamodel.UserGroup) error {
	return groupWriteError(r.db.WithContext(ctx).Create(g).Error)
}

func (r *UserRepository) UpdateGroup(ctx context.Context, g *userDatamodel.UserGroup) error {
	return groupWriteError(r.db.WithContext(ctx).Save(g).Error)
}

func groupWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("A group with this name already exists", internal.ErrCodeGroupExists)
	}
	if err != nil {
		return internal.NewInternalError("failed to save group", err)
	}
	return nil
}

func (r *UserRepository) DeleteGroup(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&userDatamodel.GroupPermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&userDatamodel.UserGroup{}).Error
	})
}

func (r *UserRepository) CountGroupMembers(ctx context.Context) (map[int64]int64, error) {
	var rows []struct {
		GroupID int64
		Total   int64
	}
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Select("group_id, COUNT(*) AS total").
		Where("group_id IS NOT NULL").
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupID] = row.Total
	}
	return counts, nil
}

func (r *UserRepository) ListPermissions(ctx context.Context) ([]*userDatamodel.Permission, error) {
	var perms []*userDatamodel.Permission
	err := r.db.WithContext(ctx).Order("module ASC, permission_key ASC").Find(&perms).Error
	return perms, err
}

func (r *UserRepository) GroupPermissionKeys(ctx context.Context) (map[int64][]string, error) {
	var rows []struct {
		GroupID       int64
		PermissionKey string
	}
	err := r.db.WithContext(ctx).Table("group_permissions gp").
		Select("gp.group_id, p.permission_key").
		Joins("JOIN permissions p ON p.id = gp.permission_id").
		Order("p.permission_key ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	keys := map[int64][]string{}
	for _, row := range rows {
		keys[row.GroupID] = append(keys[row.GroupID], row.PermissionKey)
	}
	return keys, nil
}

func (r *UserRepository) ReplaceGroupPermissions(ctx context.Context, groupID int64, permissionIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&userDatamodel.GroupPermission{}).Error; err != nil {
			return err
		}
		if len(permissionIDs) == 0 {
			return nil
		}

		rows := make([]userDatamodel.GroupPermission, 0, len(permissionIDs))
		for _, pid := range permissionIDs {
			rows = append(rows, userDatamodel.GroupPermission{GroupID: groupID, PermissionID: pid})
		}
		return tx.Create(&rows).Error
	})
}
