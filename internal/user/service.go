package user

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/auth"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/core/events"
)

// RepositoryAPI is the storage behind the admin console. Single-row getters
// return nil, nil when the row does not exist.
type RepositoryAPI interface {
	ListUsers(ctx context.Context, filter ListFilter) ([]*userDatamodel.User, int64, error)
	GetUser(ctx context.Context, id int64) (*userDatamodel.User, error)
	CreateUser(ctx context.Context, u *userDatamodel.User) error
	UpdateUser(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteUser(ctx context.Context, id int64) error

	ListGroups(ctx context.Context) ([]*userDatamodel.UserGroup, error)
	GetGroup(ctx context.Context, id int64) (*userDatamodel.UserGroup, error)
	CreateGroup(ctx context.Context, g *userDatamodel.UserGroup) error
	UpdateGroup(ctx context.Context, g *userDatamodel.UserGroup) error
	DeleteGroup(ctx context.Context, id int64) error
	CountGroupMembers(ctx context.Context) (map[int64]int64, error)

	ListPermissions(ctx context.Context) ([]*userDatamodel.Permission, error)
	GroupPermissionKeys(ctx context.Context) (map[int64][]string, error)
	ReplaceGroupPermissions(ctx context.Context, groupID int64, permissionIDs []int64) error
}

// SessionRevoker ends a user's sessions; auth.Service implements it.
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID int64) error
}

type Service struct {
	repo       RepositoryAPI
	sessions   SessionRevoker
	publisher  events.Publisher
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo RepositoryAPI, sessions SessionRevoker, publisher events.Publisher, logger *slog.Logger, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		sessions:   sessions,
		publisher:  publisher,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) ListUsers(ctx context.Context, filter ListFilter) ([]*User, int64, error) {
	rows, total, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		return nil, 0, internal.NewInternalError("failed to list users", err)
	}

	names, err := s.groupNames(ctx)
	if err != nil {
		return nil, 0, err
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		u := FromDataModel(row)
		if u.GroupID != nil {
			u.GroupName = names[*u.GroupID]
		}
		users = append(users, u)
	}
	return users, total, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
	}

	u := FromDataModel(row)
	if u.GroupID != nil {
		g, err := s.repo.GetGroup(ctx, *u.GroupID)
		if err != nil {
			return nil, internal.NewInternalError("failed to get group", err)
		}
		if g != nil {
			u.GroupName = g.Name
		}
	}
	return u, nil
}

func (s *Service) CreateUser(ctx context.Context, actorID int64, dto CreateUserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.GroupID != nil {
		if err := s.ensureGroup(ctx, *dto.GroupID); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		GroupID:      dto.GroupID,
		IsActive:     dto.IsActive == nil || *dto.IsActive,
	}
	if err := s.repo.CreateUser(ctx, row); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user created by admin", "user_id", row.ID, "actor_id", actorID)
	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeUserRegistered, actorID, "user", strconv.FormatInt(row.ID, 10), map[string]interface{}{
		"method": "admin",
	}))
	return s.GetUser(ctx, row.ID)
}

func (s *Service) UpdateUser(ctx context.Context, actorID, id int64, dto UpdateUserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if existing == nil {
		return nil, internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
	}

	updates := map[string]interface{}{}
	if dto.Email != nil {
		updates["email"] = *dto.Email
	}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.GroupID != nil {
		if err := s.ensureGroup(ctx, *dto.GroupID); err != nil {
			return nil, err
		}
		updates["group_id"] = *dto.GroupID
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}
	if dto.Password != nil {
		hash, err := auth.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateUser(ctx, id, updates); err != nil {
			return nil, err
		}
	}

	deactivated := dto.IsActive != nil && !*dto.IsActive && existing.IsActive
	if deactivated || dto.Password != nil {
		if err := s.sessions.RevokeUserSessions(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to revoke sessions", "user_id", id, "error", err)
		}
	}

	fields := make([]string, 0, len(updates))
	for k := range updates {
		if k != "password_hash" {
			fields = append(fields, k)
		}
	}
	sort.Strings(fields)
	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeUserUpdated, actorID, "user", strconv.FormatInt(id, 10), map[string]interface{}{
		"fields":          fields,
		"passwordChanged": dto.Password != nil,
	}))

	return s.GetUser(ctx, id)
}

// DeleteUser removes a user and everything they own. Admins cannot delete
// their own account.
func (s *Service) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return internal.NewValidationError("You cannot delete your own account", internal.ErrCodeCannotDeleteSelf)
	}

	existing, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to get user", err)
	}
	if existing == nil {
		return internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
	}

	if err := s.sessions.RevokeUserSessions(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to revoke sessions", "user_id", id, "error", err)
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete user", err)
	}

	s.logger.InfoContext(ctx, "user deleted", "user_id", id, "actor_id", actorID)
	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeUserDeleted, actorID, "user", strconv.FormatInt(id, 10), map[string]interface{}{
		"email": existing.Email,
	}))
	return nil
}

func (s *Service) ListGroups(ctx context.Context) ([]*Group, error) {
	rows, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list groups", err)
	}
	counts, err := s.repo.CountGroupMembers(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count group members", err)
	}
	keys, err := s.repo.GroupPermissionKeys(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to load group permissions", err)
	}

	groups := make([]*Group, 0, len(rows))
	for _, row := range rows {
		g := GroupFromDataModel(row)
		g.UserCount = counts[g.ID]
		if k, ok := keys[g.ID]; ok {
			g.Permissions = k
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (s *Service) CreateGroup(ctx context.Context, dto GroupDTO) (*Group, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &userDatamodel.UserGroup{
		Name:        dto.Name,
		DisplayName: dto.DisplayName,
		Description: dto.Description,
		Color:       dto.Color,
	}
	if err := s.repo.CreateGroup(ctx, row); err != nil {
		return nil, err
	}
	return GroupFromDataModel(row), nil
}

// UpdateGroup applies a partial update. The role groups that gate access
// and registration keep their names.
func (s *Service) UpdateGroup(ctx context.Context, id int64, dto UpdateGroupDTO) (*Group, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get group", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("Group not found", internal.ErrCodeGroupNotFound)
	}

	if dto.Name != nil && *dto.Name != row.Name {
		if auth.IsReservedRole(row.Name) {
			return nil, internal.NewValidationFieldError("name", "this group's name cannot be changed", internal.ErrCodeGroupReserved)
		}
		row.Name = *dto.Name
	}
	if dto.DisplayName != nil {
		row.DisplayName = *dto.DisplayName
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.Color != nil {
		row.Color = *dto.Color
	}
	if err := s.repo.UpdateGroup(ctx, row); err != nil {
		return nil, err
	}
	return GroupFromDataModel(row), nil
}

// DeleteGroup refuses while any user still belongs to the group.
func (s *Service) DeleteGroup(ctx context.Context, id int64) error {
	if err := s.ensureGroup(ctx, id); err != nil {
		return err
	}

	counts, err := s.repo.CountGroupMembers(ctx)
	if err != nil {
		return internal.NewInternalError("failed to count group members", err)
	}
	if n := counts[id]; n > 0 {
		return internal.NewConflictError("Group still has members", internal.ErrCodeGroupInUse).
			WithDetails(map[string]int64{"userCount": n})
	}

	if err := s.repo.DeleteGroup(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete group", err)
	}
	return nil
}

// ListPermissions returns the catalogue grouped by module, both levels
// sorted by name.
func (s *Service) ListPermissions(ctx context.Context) ([]PermissionModule, error) {
	rows, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}

	byModule := map[string][]Permission{}
	for _, row := range rows {
		byModule[row.Module] = append(byModule[row.Module], PermissionFromDataModel(row))
	}

	modules := make([]PermissionModule, 0, len(byModule))
	for name, perms := range byModule {
		sort.Slice(perms, func(i, j int) bool { return perms[i].Key < perms[j].Key })
		modules = append(modules, PermissionModule{Module: name, Permissions: perms})
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Module < modules[j].Module })
	return modules, nil
}

// SetGroupPermissions replaces the group's permission set. Unknown keys
// reject the whole request.
func (s *Service) SetGroupPermissions(ctx context.Context, actorID, groupID int64, dto SetPermissionsDTO) ([]string, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureGroup(ctx, groupID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}
	idByKey := make(map[string]int64, len(rows))
	for _, row := range rows {
		idByKey[row.Key] = row.ID
	}

	seen := map[string]bool{}
	ids := make([]int64, 0, len(dto.Keys))
	keys := make([]string, 0, len(dto.Keys))
	var unknown []internal.ValidationError
	for _, key := range dto.Keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		id, ok := idByKey[key]
		if !ok {
			unknown = append(unknown, internal.ValidationError{Field: "keys", Message: "unknown permission " + key, Code: string(internal.ErrCodeUnknownPermission)})
			continue
		}
		ids = append(ids, id)
		keys = append(keys, key)
	}
	if len(unknown) > 0 {
		return nil, internal.NewValidationError("Unknown permission keys", internal.ErrCodeUnknownPermission).
			WithDetails(internal.ValidationErrors{Errors: unknown})
	}

	if err := s.repo.ReplaceGroupPermissions(ctx, groupID, ids); err != nil {
		return nil, internal.NewInternalError("failed to update group permissions", err)
	}

	sort.Strings(keys)
	s.logger.InfoContext(ctx, "group permissions replaced", "group_id", groupID, "count", len(keys))
	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeGroupPermissions, actorID, "group", strconv.FormatInt(groupID, 10), map[string]interface{}{
		"keys": keys,
	}))
	return keys, nil
}

func (s *Service) ensureGroup(ctx context.Context, id int64) error {
	g, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to get group", err)
	}
	if g == nil {
		return internal.NewNotFoundError("Group not found", internal.ErrCodeGroupNotFound)
	}
	return nil
}

func (s *Service) groupNames(ctx context.Context) (map[int64]string, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list groups", err)
	}
	names := make(map[int64]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	return names, nil
}
