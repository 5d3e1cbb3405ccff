package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal/auth"
	authPostgres "github.com/frahmantamala/backoffice/internal/auth/postgres"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/core/testdb"
	"github.com/frahmantamala/backoffice/internal/transport"
)

type fakeProvider struct {
	profile *auth.GoogleProfile
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*auth.GoogleProfile, error) {
	return f.profile, nil
}

func seedGroups(db *gorm.DB) {
	admin := userDatamodel.UserGroup{Name: auth.RoleAdmin, DisplayName: "Admin"}
	student := userDatamodel.UserGroup{Name: auth.RoleStudent, DisplayName: "Students"}
	Expect(db.Create(&admin).Error).To(Succeed())
	Expect(db.Create(&student).Error).To(Succeed())

	perm := userDatamodel.Permission{Key: auth.PermUsersManage, Module: "users"}
	Expect(db.Create(&perm).Error).To(Succeed())
	Expect(db.Create(&userDatamodel.GroupPermission{GroupID: admin.ID, PermissionID: perm.ID}).Error).To(Succeed())
}

var _ = Describe("Auth HTTP flow", func() {
	var (
		db       *gorm.DB
		router   chi.Router
		handler  *auth.Handler
		provider *fakeProvider
	)

	BeforeEach(func() {
		db, _ = testdb.MustOpen()
		seedGroups(db)

		repo := authPostgres.NewRepository(db)
		store := authPostgres.NewSessionStore(db)
		service := auth.NewService(repo, store, nil, quietLogger(), auth.Options{
			BCryptCost:   bcrypt.MinCost,
			SessionTTL:   time.Hour,
			DefaultGroup: auth.RoleStudent,
		})

		base := transport.NewBaseHandler(quietLogger())
		provider = &fakeProvider{}
		handler = auth.NewHandler(base, service, auth.CookieConfig{}, &auth.GoogleConfig{
			Provider:        provider,
			State:           auth.NewStateSigner("0123456789abcdef0123456789abcdef", time.Minute),
			SuccessRedirect: "http://app.local/dashboard",
			FailureRedirect: "http://app.local/login",
		})
		authz := auth.NewAuthorizer(base)

		router = chi.NewRouter()
		router.Use(handler.Authenticate)
		router.Post("/api/auth/register", handler.Register)
		router.Post("/api/auth/login", handler.Login)
		router.Post("/api/auth/logout", handler.Logout)
		router.Get("/api/auth/google", handler.GoogleLogin)
		router.Get("/api/auth/google/callback", handler.GoogleCallback)
		router.With(authz.RequireAuth).Get("/api/auth/me", handler.Me)
		router.With(authz.RequireRole(auth.RoleAdmin)).Get("/api/admin/ping", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		router.With(authz.RequirePermission(auth.PermUsersManage)).Get("/api/admin/users-only", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	do := func(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	sessionCookie := func(w *httptest.ResponseRecorder) *http.Cookie {
		for _, c := range w.Result().Cookies() {
			if c.Name == auth.DefaultSessionCookie && c.Value != "" {
				return c
			}
		}
		return nil
	}

	register := func(email string) *httptest.ResponseRecorder {
		return do(http.MethodPost, "/api/auth/register",
			`{"email":"`+email+`","password":"password123","name":"Test User"}`)
	}

	It("registers, reads the session back and logs out", func() {
		w := register("ana@example.com")
		Expect(w.Code).To(Equal(http.StatusCreated))

		cookie := sessionCookie(w)
		Expect(cookie).NotTo(BeNil())
		Expect(cookie.HttpOnly).To(BeTrue())

		var body struct {
			User struct {
				Email       string   `json:"email"`
				Role        string   `json:"role"`
				Permissions []string `json:"permissions"`
			} `json:"user"`
		}
		w = do(http.MethodGet, "/api/auth/me", "", cookie)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body.User.Email).To(Equal("ana@example.com"))
		Expect(body.User.Role).To(Equal(auth.RoleStudent))

		w = do(http.MethodPost, "/api/auth/logout", "", cookie)
		Expect(w.Code).To(Equal(http.StatusNoContent))

		w = do(http.MethodGet, "/api/auth/me", "", cookie)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns 409 for a duplicate registration", func() {
		Expect(register("dup@example.com").Code).To(Equal(http.StatusCreated))

		w := register("DUP@example.com")
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("EMAIL_TAKEN"))
	})

	It("distinguishes bad credentials from an inactive account", func() {
		Expect(register("bob@example.com").Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPost, "/api/auth/login", `{"email":"bob@example.com","password":"nope-nope"}`)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))

		w = do(http.MethodPost, "/api/auth/login", `{"email":"ghost@example.com","password":"password123"}`)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))

		Expect(db.Model(&userDatamodel.User{}).Where("email = ?", "bob@example.com").Update("is_active", false).Error).To(Succeed())

		w = do(http.MethodPost, "/api/auth/login", `{"email":"bob@example.com","password":"password123"}`)
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(w.Body.String()).To(ContainSubstring("USER_INACTIVE"))
	})

	It("rejects an empty body", func() {
		w := do(http.MethodPost, "/api/auth/login", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	Describe("authorization gates", func() {
		It("returns 401 without a session", func() {
			Expect(do(http.MethodGet, "/api/admin/ping", "").Code).To(Equal(http.StatusUnauthorized))
			Expect(do(http.MethodGet, "/api/admin/users-only", "").Code).To(Equal(http.StatusUnauthorized))
		})

		It("returns 403 with the required roles for the wrong group", func() {
			cookie := sessionCookie(register("student@example.com"))

			w := do(http.MethodGet, "/api/admin/ping", "", cookie)
			Expect(w.Code).To(Equal(http.StatusForbidden))

			var body auth.ForbiddenResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Message).To(Equal("Insufficient permissions"))
			Expect(body.RequiredRoles).To(ConsistOf(auth.RoleAdmin))

			w = do(http.MethodGet, "/api/admin/users-only", "", cookie)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(w.Body.String()).To(ContainSubstring("requiredPermissions"))
		})

		It("admits an admin", func() {
			cookie := sessionCookie(register("root@example.com"))
			var admin userDatamodel.UserGroup
			Expect(db.Where("name = ?", auth.RoleAdmin).First(&admin).Error).To(Succeed())
			Expect(db.Model(&userDatamodel.User{}).Where("email = ?", "root@example.com").Update("group_id", admin.ID).Error).To(Succeed())

			Expect(do(http.MethodGet, "/api/admin/ping", "", cookie).Code).To(Equal(http.StatusOK))
			Expect(do(http.MethodGet, "/api/admin/users-only", "", cookie).Code).To(Equal(http.StatusOK))
		})

		It("rejects a deactivated user's live session with 403", func() {
			cookie := sessionCookie(register("later@example.com"))
			Expect(db.Model(&userDatamodel.User{}).Where("email = ?", "later@example.com").Update("is_active", false).Error).To(Succeed())

			w := do(http.MethodGet, "/api/auth/me", "", cookie)
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("Google login", func() {
		It("redirects to the provider and completes the callback", func() {
			w := do(http.MethodGet, "/api/auth/google", "")
			Expect(w.Code).To(Equal(http.StatusFound))

			loc, err := url.Parse(w.Header().Get("Location"))
			Expect(err).NotTo(HaveOccurred())
			state := loc.Query().Get("state")
			Expect(state).NotTo(BeEmpty())

			var nonce *http.Cookie
			for _, c := range w.Result().Cookies() {
				if c.Name == "backoffice.oauth_nonce" {
					nonce = c
				}
			}
			Expect(nonce).NotTo(BeNil())

			provider.profile = &auth.GoogleProfile{ID: "gid-1", Email: "g@example.com", VerifiedEmail: true, Name: "G"}
			w = do(http.MethodGet, "/api/auth/google/callback?code=abc&state="+url.QueryEscape(state), "", nonce)

			Expect(w.Code).To(Equal(http.StatusFound))
			Expect(w.Header().Get("Location")).To(Equal("http://app.local/dashboard"))
			Expect(sessionCookie(w)).NotTo(BeNil())
		})

		It("redirects to the failure page on a forged state", func() {
			w := do(http.MethodGet, "/api/auth/google/callback?code=abc&state=forged", "",
				&http.Cookie{Name: "backoffice.oauth_nonce", Value: "n"})

			Expect(w.Code).To(Equal(http.StatusFound))
			Expect(w.Header().Get("Location")).To(Equal("http://app.local/login?error=invalid_state"))
		})
	})
})
