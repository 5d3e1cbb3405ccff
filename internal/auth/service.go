package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/backoffice/internal"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/core/events"
	"github.com/frahmantamala/backoffice/internal/metrics"
)

// RepositoryAPI is the user storage the auth flows need. Lookups return
// nil, nil when nothing matches.
type RepositoryAPI interface {
	FindByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*userDatamodel.User, error)
	CreateUser(ctx context.Context, u *userDatamodel.User) error
	LinkGoogleAccount(ctx context.Context, userID int64, googleID, avatarURL string) error
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error
	GroupByName(ctx context.Context, name string) (*userDatamodel.UserGroup, error)
	LoadPrincipal(ctx context.Context, userID int64) (*Principal, error)
}

type Options struct {
	BCryptCost   int
	SessionTTL   time.Duration
	DefaultGroup string
}

// Service is the main auth service with dependencies
type Service struct {
	repo      RepositoryAPI
	sessions  SessionStore
	publisher events.Publisher
	logger    *slog.Logger
	opts      Options
	now       func() time.Time
	// dummyHash is compared on unknown emails so every failed login pays
	// the same bcrypt cost.
	dummyHash string
}

func NewService(repo RepositoryAPI, sessions SessionStore, publisher events.Publisher, logger *slog.Logger, opts Options) *Service {
	if opts.BCryptCost == 0 {
		opts.BCryptCost = bcrypt.DefaultCost
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.DefaultGroup == "" {
		opts.DefaultGroup = RoleStudent
	}
	dummy, _ := HashPassword("no account has this password", opts.BCryptCost)
	return &Service{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// Register creates a local account in the default group and opens a session.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*Principal, *Session, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, dto.Email)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to look up user", err)
	}
	if existing != nil {
		return nil, nil, internal.ErrEmailTaken
	}

	hash, err := HashPassword(dto.Password, s.opts.BCryptCost)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &userDatamodel.User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.assignDefaultGroup(ctx, u); err != nil {
		return nil, nil, err
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeUserRegistered, u.ID, "user", strconv.FormatInt(u.ID, 10), map[string]interface{}{
		"method": "local",
	}))

	return s.openSession(ctx, u.ID)
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller; an inactive account with the right
// password gets its own error.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*Principal, *Session, error) {
	dto.Email = NormalizeEmail(dto.Email)
	if err := dto.Validate(); err != nil {
		return nil, nil, err
	}

	u, err := s.repo.FindByEmail(ctx, dto.Email)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to look up user", err)
	}
	if u == nil || u.PasswordHash == "" {
		_ = VerifyPassword(s.dummyHash, dto.Password)
		metrics.LoginAttempts.WithLabelValues("local", "invalid").Inc()
		return nil, nil, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		metrics.LoginAttempts.WithLabelValues("local", "invalid").Inc()
		return nil, nil, internal.ErrInvalidCredentials
	}

	if !u.IsActive {
		metrics.LoginAttempts.WithLabelValues("local", "inactive").Inc()
		return nil, nil, internal.ErrUserInactive
	}

	metrics.LoginAttempts.WithLabelValues("local", "success").Inc()
	return s.completeLogin(ctx, u.ID, "local")
}

// LoginWithGoogle finds the account by Google id, then by verified email,
// and creates one when neither exists.
func (s *Service) LoginWithGoogle(ctx context.Context, profile *GoogleProfile) (*Principal, *Session, error) {
	if profile == nil || !profile.VerifiedEmail {
		metrics.LoginAttempts.WithLabelValues("google", "invalid").Inc()
		return nil, nil, internal.NewUnauthorizedError("Google account email is not verified", internal.ErrCodeInvalidCredentials)
	}
	email := NormalizeEmail(profile.Email)

	u, err := s.repo.FindByGoogleID(ctx, profile.ID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to look up user", err)
	}

	if u == nil {
		u, err = s.repo.FindByEmail(ctx, email)
		if err != nil {
			return nil, nil, internal.NewInternalError("failed to look up user", err)
		}
		if u != nil {
			if err := s.repo.LinkGoogleAccount(ctx, u.ID, profile.ID, profile.Picture); err != nil {
				return nil, nil, internal.NewInternalError("failed to link google account", err)
			}
		}
	}

	if u == nil {
		googleID := profile.ID
		name := profile.Name
		if name == "" {
			name = email
		}
		u = &userDatamodel.User{
			Email:     email,
			Name:      name,
			GoogleID:  &googleID,
			AvatarURL: profile.Picture,
			IsActive:  true,
		}
		if err := s.assignDefaultGroup(ctx, u); err != nil {
			return nil, nil, err
		}
		if err := s.repo.CreateUser(ctx, u); err != nil {
			return nil, nil, err
		}
		events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeUserRegistered, u.ID, "user", strconv.FormatInt(u.ID, 10), map[string]interface{}{
			"method": "google",
		}))
	}

	if !u.IsActive {
		metrics.LoginAttempts.WithLabelValues("google", "inactive").Inc()
		return nil, nil, internal.ErrUserInactive
	}

	metrics.LoginAttempts.WithLabelValues("google", "success").Inc()
	return s.completeLogin(ctx, u.ID, "google")
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return internal.NewInternalError("failed to load session", err)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return internal.NewInternalError("failed to delete session", err)
	}

	if sess != nil {
		events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeUserLoggedOut, sess.UserID, "user", strconv.FormatInt(sess.UserID, 10), nil))
	}
	return nil
}

// Authenticate resolves a session id to its principal. Sessions past half
// their lifetime are pushed forward and flagged as renewed.
func (s *Service) Authenticate(ctx context.Context, sessionID string) (*Principal, *Session, error) {
	if sessionID == "" {
		return nil, nil, internal.ErrUnauthenticated
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to load session", err)
	}
	if sess == nil {
		return nil, nil, internal.ErrUnauthenticated
	}

	now := s.now()
	if sess.Expired(now) {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, nil, internal.ErrUnauthenticated
	}

	p, err := s.repo.LoadPrincipal(ctx, sess.UserID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to load user", err)
	}
	if p == nil {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, nil, internal.ErrUnauthenticated
	}
	if !p.IsActive {
		_ = s.sessions.DeleteByUser(ctx, p.ID)
		return nil, nil, internal.ErrUserInactive
	}

	if sess.ExpiresAt.Sub(now) < s.opts.SessionTTL/2 {
		sess.ExpiresAt = now.Add(s.opts.SessionTTL)
		if err := s.sessions.Save(ctx, sess); err != nil {
			s.logger.WarnContext(ctx, "failed to renew session", "user_id", sess.UserID, "error", err)
		} else {
			sess.Renewed = true
		}
	}

	return p, sess, nil
}

// RevokeUserSessions ends every session of a user.
func (s *Service) RevokeUserSessions(ctx context.Context, userID int64) error {
	return s.sessions.DeleteByUser(ctx, userID)
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.Purge(ctx, s.now())
}

func (s *Service) SessionTTL() time.Duration {
	return s.opts.SessionTTL
}

func (s *Service) completeLogin(ctx context.Context, userID int64, method string) (*Principal, *Session, error) {
	if err := s.repo.TouchLastLogin(ctx, userID, s.now()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "user_id", userID, "error", err)
	}

	p, sess, err := s.openSession(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeUserLoggedIn, userID, "user", strconv.FormatInt(userID, 10), map[string]interface{}{
		"method": method,
	}))
	return p, sess, nil
}

func (s *Service) openSession(ctx context.Context, userID int64) (*Principal, *Session, error) {
	id, err := GenerateRandomToken()
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to create session", err)
	}

	sess := &Session{ID: id, UserID: userID, ExpiresAt: s.now().Add(s.opts.SessionTTL)}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, nil, internal.NewInternalError("failed to save session", err)
	}

	p, err := s.repo.LoadPrincipal(ctx, userID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to load user", err)
	}
	if p == nil {
		return nil, nil, internal.NewInternalError("user vanished during login", errors.New("principal not found"))
	}
	return p, sess, nil
}

func (s *Service) assignDefaultGroup(ctx context.Context, u *userDatamodel.User) error {
	group, err := s.repo.GroupByName(ctx, s.opts.DefaultGroup)
	if err != nil {
		return internal.NewInternalError("failed to load default group", err)
	}
	if group == nil {
		s.logger.WarnContext(ctx, "default group missing; user created without group", "group", s.opts.DefaultGroup)
		return nil
	}
	u.GroupID = &group.ID
	return nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
