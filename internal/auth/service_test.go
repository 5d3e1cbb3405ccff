package auth_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/auth"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/core/events"
)

type mockUserRepository struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]*userDatamodel.User
	groups  map[string]*userDatamodel.UserGroup
	perms   map[int64][]string
	touched map[int64]time.Time
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		nextID: 1,
		users:  map[int64]*userDatamodel.User{},
		groups: map[string]*userDatamodel.UserGroup{
			auth.RoleStudent: {ID: 3, Name: auth.RoleStudent},
			auth.RoleAdmin:   {ID: 1, Name: auth.RoleAdmin},
		},
		perms: map[int64][]string{
			1: {auth.PermUsersManage, auth.PermActivityView},
			3: {auth.PermAIUse},
		},
		touched: map[int64]time.Time{},
	}
}

func (m *mockUserRepository) addUser(email, password string, active bool) *userDatamodel.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	m.mu.Lock()
	defer m.mu.Unlock()
	gid := int64(3)
	u := &userDatamodel.User{ID: m.nextID, Email: email, Name: "Test", PasswordHash: string(hash), IsActive: active, GroupID: &gid}
	m.users[u.ID] = u
	m.nextID++
	return u
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*userDatamodel.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) FindByGoogleID(_ context.Context, googleID string) (*userDatamodel.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) CreateUser(_ context.Context, u *userDatamodel.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return internal.ErrEmailTaken
		}
	}
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepository) LinkGoogleAccount(_ context.Context, userID int64, googleID, avatarURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[userID]
	u.GoogleID = &googleID
	u.AvatarURL = avatarURL
	return nil
}

func (m *mockUserRepository) TouchLastLogin(_ context.Context, userID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched[userID] = at
	return nil
}

func (m *mockUserRepository) GroupByName(_ context.Context, name string) (*userDatamodel.UserGroup, error) {
	return m.groups[name], nil
}

func (m *mockUserRepository) LoadPrincipal(_ context.Context, userID int64) (*auth.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	p := &auth.Principal{ID: u.ID, Email: u.Email, Name: u.Name, IsActive: u.IsActive, GroupID: u.GroupID, Permissions: auth.NewPermissionSet()}
	if u.GroupID != nil {
		for _, g := range m.groups {
			if g.ID == *u.GroupID {
				p.Role = g.Name
			}
		}
		p.Permissions = auth.NewPermissionSet(m.perms[*u.GroupID]...)
	}
	return p, nil
}

func (m *mockUserRepository) setActive(userID int64, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID].IsActive = active
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, e.EventType())
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		repo      *mockUserRepository
		sessions  *auth.MemoryStore
		publisher *recordingPublisher
		service   *auth.Service
		ttl       time.Duration
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockUserRepository()
		sessions = auth.NewMemoryStore()
		publisher = &recordingPublisher{}
		ttl = time.Hour
		service = auth.NewService(repo, sessions, publisher, quietLogger(), auth.Options{
			BCryptCost:   bcrypt.MinCost,
			SessionTTL:   ttl,
			DefaultGroup: auth.RoleStudent,
		})
	})

	Describe("Register", func() {
		It("creates the user in the default group and opens a session", func() {
			p, sess, err := service.Register(ctx, auth.RegisterDTO{
				Email:    "  New@Example.com ",
				Password: "password123",
				Name:     "New User",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(p.Email).To(Equal("new@example.com"))
			Expect(p.Role).To(Equal(auth.RoleStudent))
			Expect(p.Can(auth.PermAIUse)).To(BeTrue())
			Expect(sess.ID).To(HaveLen(64))
			Expect(publisher.Types()).To(ContainElement(events.TypeUserRegistered))

			stored, _ := sessions.Get(ctx, sess.ID)
			Expect(stored).NotTo(BeNil())
			Expect(stored.UserID).To(Equal(p.ID))
		})

		It("rejects a duplicate email with a conflict", func() {
			repo.addUser("taken@example.com", "password123", true)

			_, _, err := service.Register(ctx, auth.RegisterDTO{
				Email:    "TAKEN@example.com",
				Password: "password123",
				Name:     "Someone",
			})

			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("rejects a short password", func() {
			_, _, err := service.Register(ctx, auth.RegisterDTO{
				Email:    "a@example.com",
				Password: "short",
				Name:     "A",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("Login", func() {
		It("returns a principal and session for valid credentials", func() {
			u := repo.addUser("user@example.com", "correct_password", true)

			p, sess, err := service.Login(ctx, auth.LoginDTO{Email: "user@example.com", Password: "correct_password"})

			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal(u.ID))
			Expect(sess.ExpiresAt).To(BeTemporally("~", time.Now().Add(ttl), 5*time.Second))
			Expect(repo.touched).To(HaveKey(u.ID))
			Expect(publisher.Types()).To(ContainElement(events.TypeUserLoggedIn))
		})

		It("treats an unknown email and a wrong password the same way", func() {
			repo.addUser("user@example.com", "correct_password", true)

			_, _, err := service.Login(ctx, auth.LoginDTO{Email: "nobody@example.com", Password: "correct_password"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))

			_, _, err = service.Login(ctx, auth.LoginDTO{Email: "user@example.com", Password: "wrong_password"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("spends bcrypt time on an unknown email", func() {
			const cost = 10
			slow := auth.NewService(repo, sessions, publisher, quietLogger(), auth.Options{BCryptCost: cost})
			hash, err := auth.HashPassword("correct_password", cost)
			Expect(err).NotTo(HaveOccurred())

			start := time.Now()
			_ = auth.VerifyPassword(hash, "wrong_password")
			compare := time.Since(start)

			start = time.Now()
			_, _, err = slow.Login(ctx, auth.LoginDTO{Email: "nobody@example.com", Password: "wrong_password"})
			unknown := time.Since(start)

			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
			Expect(unknown).To(BeNumerically(">=", compare/2))
		})

		It("rejects an inactive account only after the password matches", func() {
			repo.addUser("inactive@example.com", "correct_password", false)

			_, _, err := service.Login(ctx, auth.LoginDTO{Email: "inactive@example.com", Password: "wrong_password"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))

			_, _, err = service.Login(ctx, auth.LoginDTO{Email: "inactive@example.com", Password: "correct_password"})
			Expect(err).To(MatchError(internal.ErrUserInactive))
		})
	})

	Describe("Authenticate", func() {
		var (
			user *userDatamodel.User
			sess *auth.Session
		)

		BeforeEach(func() {
			user = repo.addUser("user@example.com", "correct_password", true)
			var err error
			_, sess, err = service.Login(ctx, auth.LoginDTO{Email: "user@example.com", Password: "correct_password"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("resolves a live session without renewing it", func() {
			p, got, err := service.Authenticate(ctx, sess.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal(user.ID))
			Expect(got.Renewed).To(BeFalse())
		})

		It("renews a session past half of its lifetime", func() {
			Expect(sessions.Save(ctx, &auth.Session{ID: sess.ID, UserID: user.ID, ExpiresAt: time.Now().Add(ttl / 4)})).To(Succeed())

			_, got, err := service.Authenticate(ctx, sess.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(got.Renewed).To(BeTrue())
			Expect(got.ExpiresAt).To(BeTemporally("~", time.Now().Add(ttl), 5*time.Second))
		})

		It("rejects and removes an expired session", func() {
			Expect(sessions.Save(ctx, &auth.Session{ID: sess.ID, UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)})).To(Succeed())

			_, _, err := service.Authenticate(ctx, sess.ID)
			Expect(err).To(MatchError(internal.ErrUnauthenticated))

			stored, _ := sessions.Get(ctx, sess.ID)
			Expect(stored).To(BeNil())
		})

		It("rejects an unknown session id", func() {
			_, _, err := service.Authenticate(ctx, "does-not-exist")
			Expect(err).To(MatchError(internal.ErrUnauthenticated))
		})

		It("rejects a deactivated user and revokes their sessions", func() {
			repo.setActive(user.ID, false)

			_, _, err := service.Authenticate(ctx, sess.ID)
			Expect(err).To(MatchError(internal.ErrUserInactive))

			stored, _ := sessions.Get(ctx, sess.ID)
			Expect(stored).To(BeNil())
		})

		It("ends the session on logout", func() {
			Expect(service.Logout(ctx, sess.ID)).To(Succeed())

			_, _, err := service.Authenticate(ctx, sess.ID)
			Expect(err).To(MatchError(internal.ErrUnauthenticated))
			Expect(publisher.Types()).To(ContainElement(events.TypeUserLoggedOut))
		})
	})

	Describe("LoginWithGoogle", func() {
		It("creates a new account for an unseen verified profile", func() {
			p, sess, err := service.LoginWithGoogle(ctx, &auth.GoogleProfile{
				ID: "g-1", Email: "Google@Example.com", VerifiedEmail: true, Name: "G User",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(p.Email).To(Equal("google@example.com"))
			Expect(p.Role).To(Equal(auth.RoleStudent))
			Expect(sess).NotTo(BeNil())
		})

		It("links an existing local account by email", func() {
			u := repo.addUser("local@example.com", "correct_password", true)

			p, _, err := service.LoginWithGoogle(ctx, &auth.GoogleProfile{
				ID: "g-2", Email: "local@example.com", VerifiedEmail: true, Picture: "https://img/a.png",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal(u.ID))

			linked, _ := repo.FindByGoogleID(ctx, "g-2")
			Expect(linked).NotTo(BeNil())
			Expect(linked.ID).To(Equal(u.ID))
		})

		It("rejects an unverified email", func() {
			_, _, err := service.LoginWithGoogle(ctx, &auth.GoogleProfile{ID: "g-3", Email: "x@example.com"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(401))
		})

		It("rejects an inactive linked account", func() {
			u := repo.addUser("off@example.com", "correct_password", false)
			gid := "g-4"
			u.GoogleID = &gid

			_, _, err := service.LoginWithGoogle(ctx, &auth.GoogleProfile{ID: "g-4", Email: "off@example.com", VerifiedEmail: true})
			Expect(err).To(MatchError(internal.ErrUserInactive))
		})
	})

	It("purges expired sessions", func() {
		Expect(sessions.Save(ctx, &auth.Session{ID: "old", UserID: 1, ExpiresAt: time.Now().Add(-time.Hour)})).To(Succeed())
		Expect(sessions.Save(ctx, &auth.Session{ID: "new", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)})).To(Succeed())

		n, err := service.PurgeExpiredSessions(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))
	})
})
