package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/transport"
	"github.com/frahmantamala/backoffice/pkg/logger"
)

const (
	DefaultSessionCookie = "backoffice.sid"
	oauthNonceCookie     = "backoffice.oauth_nonce"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*Principal, *Session, error)
	Login(ctx context.Context, dto LoginDTO) (*Principal, *Session, error)
	LoginWithGoogle(ctx context.Context, profile *GoogleProfile) (*Principal, *Session, error)
	Logout(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, sessionID string) (*Principal, *Session, error)
}

type CookieConfig struct {
	Name   string
	Secure bool
}

// GoogleConfig is nil on the handler when Google login is not configured.
type GoogleConfig struct {
	Provider        OAuthProvider
	State           *StateSigner
	SuccessRedirect string
	FailureRedirect string
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Cookie  CookieConfig
	Google  *GoogleConfig
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, cookie CookieConfig, google *GoogleConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = DefaultSessionCookie
	}
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Cookie:      cookie,
		Google:      google,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	p, sess, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.setSessionCookie(w, sess)
	h.WriteJSON(w, http.StatusCreated, UserResponse{User: p})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	p, sess, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		logger.From(r.Context()).InfoContext(r.Context(), "login rejected", "error", err)
		h.HandleError(w, r, err)
		return
	}

	h.setSessionCookie(w, sess)
	h.WriteJSON(w, http.StatusOK, UserResponse{User: p})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.Cookie.Name); err == nil {
		if err := h.Service.Logout(r.Context(), c.Value); err != nil {
			h.HandleError(w, r, err)
			return
		}
	}

	h.clearCookie(w, h.Cookie.Name)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the principal resolved by the Authenticate middleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.HandleError(w, r, internal.ErrUnauthenticated)
		return
	}
	h.WriteJSON(w, http.StatusOK, UserResponse{User: p})
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		h.HandleError(w, r, internal.NewNotFoundError("Google login is not configured", internal.ErrCodeNotFound))
		return
	}

	state, nonce, err := h.Google.State.Issue()
	if err != nil {
		h.HandleError(w, r, internal.NewInternalError("failed to start google login", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthNonceCookie,
		Value:    nonce,
		Path:     "/",
		MaxAge:   int(h.Google.State.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.Google.Provider.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback finishes the OAuth flow and redirects to the frontend.
// Failures redirect too, with an error query parameter.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		h.HandleError(w, r, internal.NewNotFoundError("Google login is not configured", internal.ErrCodeNotFound))
		return
	}
	lg := logger.From(r.Context())

	var nonce string
	if c, err := r.Cookie(oauthNonceCookie); err == nil {
		nonce = c.Value
	}
	h.clearCookie(w, oauthNonceCookie)

	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		lg.InfoContext(r.Context(), "google login cancelled", "error", errParam)
		h.redirectFailure(w, r, "access_denied")
		return
	}

	if err := h.Google.State.Verify(q.Get("state"), nonce); err != nil {
		lg.WarnContext(r.Context(), "google login state mismatch")
		h.redirectFailure(w, r, "invalid_state")
		return
	}

	profile, err := h.Google.Provider.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		lg.ErrorContext(r.Context(), "google code exchange failed", "error", err)
		h.redirectFailure(w, r, "exchange_failed")
		return
	}

	_, sess, err := h.Service.LoginWithGoogle(r.Context(), profile)
	if err != nil {
		reason := "login_failed"
		if errors.Is(err, internal.ErrUserInactive) {
			reason = "inactive"
		}
		lg.InfoContext(r.Context(), "google login rejected", "error", err)
		h.redirectFailure(w, r, reason)
		return
	}

	h.setSessionCookie(w, sess)
	http.Redirect(w, r, h.Google.SuccessRedirect, http.StatusFound)
}

// Authenticate resolves the session cookie once per request. Requests
// without a valid session pass through anonymously; the Authorizer gates
// decide what needs a principal.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(h.Cookie.Name)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		p, sess, err := h.Service.Authenticate(r.Context(), c.Value)
		if err != nil {
			if errors.Is(err, internal.ErrUserInactive) {
				h.clearCookie(w, h.Cookie.Name)
				h.HandleError(w, r, err)
				return
			}
			if errors.Is(err, internal.ErrUnauthenticated) {
				h.clearCookie(w, h.Cookie.Name)
				next.ServeHTTP(w, r)
				return
			}
			h.HandleError(w, r, err)
			return
		}

		if sess.Renewed {
			h.setSessionCookie(w, sess)
		}

		ctx := WithPrincipal(r.Context(), p)
		ctx = logger.With(ctx, "user_id", p.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) redirectFailure(w http.ResponseWriter, r *http.Request, reason string) {
	target := h.Google.FailureRedirect
	if target == "" {
		h.HandleError(w, r, internal.NewUnauthorizedError("Google login failed", internal.ErrCodeInvalidState))
		return
	}
	http.Redirect(w, r, appendQuery(target, "error", reason), http.StatusFound)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func appendQuery(target, key, value string) string {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}
