package auth

import (
	"net/http"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/transport"
	"github.com/frahmantamala/backoffice/pkg/logger"
)

// ForbiddenResponse is the 403 body of the role and permission gates.
type ForbiddenResponse struct {
	Message             string   `json:"message"`
	RequiredRoles       []string `json:"requiredRoles,omitempty"`
	RequiredPermissions []string `json:"requiredPermissions,omitempty"`
}

// Authorizer gates routes on the principal placed in the request context
// by Handler.Authenticate.
type Authorizer struct {
	*transport.BaseHandler
}

func NewAuthorizer(baseHandler *transport.BaseHandler) *Authorizer {
	return &Authorizer{BaseHandler: baseHandler}
}

func (a *Authorizer) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			a.HandleError(w, r, internal.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits principals whose group is one of roles.
func (a *Authorizer) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				a.HandleError(w, r, internal.ErrUnauthenticated)
				return
			}
			if !p.HasRole(roles...) {
				logger.From(r.Context()).InfoContext(r.Context(), "role check failed",
					"user_id", p.ID, "role", p.Role, "required", roles)
				a.WriteJSON(w, http.StatusForbidden, ForbiddenResponse{
					Message:       "Insufficient permissions",
					RequiredRoles: roles,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission admits principals holding at least one of keys.
func (a *Authorizer) RequirePermission(keys ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				a.HandleError(w, r, internal.ErrUnauthenticated)
				return
			}
			if !p.Permissions.HasAny(keys...) {
				logger.From(r.Context()).InfoContext(r.Context(), "permission check failed",
					"user_id", p.ID, "required", keys)
				a.WriteJSON(w, http.StatusForbidden, ForbiddenResponse{
					Message:             "Insufficient permissions",
					RequiredPermissions: keys,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
