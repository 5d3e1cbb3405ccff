package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/activity"
	"github.com/frahmantamala/backoffice/internal/auth"
	"github.com/frahmantamala/backoffice/internal/content"
	"github.com/frahmantamala/backoffice/internal/credit"
	"github.com/frahmantamala/backoffice/internal/metrics"
	"github.com/frahmantamala/backoffice/internal/partner"
	"github.com/frahmantamala/backoffice/internal/payment"
	"github.com/frahmantamala/backoffice/internal/product"
	"github.com/frahmantamala/backoffice/internal/supplier"
	"github.com/frahmantamala/backoffice/internal/ticket"
	"github.com/frahmantamala/backoffice/internal/transport/middleware"
	"github.com/frahmantamala/backoffice/internal/transport/swagger"
	"github.com/frahmantamala/backoffice/internal/user"
)

// Handlers bundles everything the router mounts. Payment is nil when
// Stripe is not configured.
type Handlers struct {
	Health   *HealthHandler
	Auth     *auth.Handler
	Authz    *auth.Authorizer
	User     *user.Handler
	Partner  *partner.Handler
	Supplier *supplier.Handler
	Product  *product.Handler
	Ticket   *ticket.Handler
	Content  *content.Handler
	Credit   *credit.Handler
	Payment  *payment.Handler
	Activity *activity.Handler
}

type Options struct {
	AllowedOrigins []string
	MetricsEnabled bool
	MetricsPath    string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	authz := h.Authz

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.TraceID)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.Metrics)

	if opts.MetricsEnabled {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, metrics.Handler())
	}
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.Health.HandleError(w, r, internal.NewNotFoundError("Route not found", internal.ErrCodeNotFound))
	})
	router.Get("/openapi.yml", swagger.SpecHandler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		// The webhook authenticates by signature, not by session.
		if h.Payment != nil {
			r.Post("/payments/webhook", h.Payment.Webhook)
		}

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Authenticate)

			r.Route("/auth", func(ar chi.Router) {
				ar.Post("/register", h.Auth.Register)
				ar.Post("/login", h.Auth.Login)
				ar.Post("/logout", h.Auth.Logout)
				ar.Get("/google", h.Auth.GoogleLogin)
				ar.Get("/google/callback", h.Auth.GoogleCallback)
				ar.With(authz.RequireAuth).Get("/me", h.Auth.Me)
			})

			r.Group(func(pr chi.Router) {
				pr.Use(authz.RequireAuth)

				registerPartnerRoutes(pr, h.Partner, authz)
				registerCatalogRoutes(pr, h.Supplier, h.Product)
				registerTicketRoutes(pr, h.Ticket)
				registerContentRoutes(pr, h.Content)

				pr.Get("/credits", h.Credit.Balance)
				pr.With(authz.RequirePermission(auth.PermAIUse)).Post("/ai/prompts/{id}/run", h.Credit.RunPrompt)

				if h.Payment != nil {
					pr.Post("/create-payment-intent", h.Payment.CreateIntent)
					pr.Post("/confirm-payment", h.Payment.Confirm)
					pr.Get("/payments", h.Payment.ListPurchases)
				}

				pr.Route("/admin", func(adm chi.Router) {
					adm.Use(authz.RequireRole(auth.RoleAdmin, auth.RoleSupport))
					registerAdminRoutes(adm, h, authz)
				})
			})
		})
	})

	logger.Info("routes registered", "payments_enabled", h.Payment != nil, "metrics_enabled", opts.MetricsEnabled)
}

func registerPartnerRoutes(r chi.Router, h *partner.Handler, authz *auth.Authorizer) {
	manage := authz.RequirePermission(auth.PermPartnersManage)

	r.Group(func(vr chi.Router) {
		vr.Use(authz.RequirePermission(auth.PermPartnersView, auth.PermPartnersManage))

		vr.Get("/partners/categories", h.ListCategories)
		vr.Get("/partners", h.ListPartners)
		vr.Get("/partners/{id}", h.GetPartner)
		vr.Post("/partners/{id}/reviews", h.Review)
		vr.Get("/partners/{id}/comments", h.Comments)
		vr.Post("/partners/{id}/comments", h.AddComment)
		vr.Post("/partner-comments/{id}/like", h.LikeComment)
		vr.Delete("/partner-comments/{id}", h.DeleteComment)

		vr.With(manage).Post("/partners/categories", h.CreateCategory)
		vr.With(manage).Put("/partners/categories/{id}", h.UpdateCategory)
		vr.With(manage).Delete("/partners/categories/{id}", h.DeleteCategory)
		vr.With(manage).Post("/partners", h.CreatePartner)
		vr.With(manage).Put("/partners/{id}", h.UpdatePartner)
		vr.With(manage).Delete("/partners/{id}", h.DeletePartner)
		vr.With(manage).Post("/partners/{id}/contacts", h.AddContact)
		vr.With(manage).Delete("/partners/{id}/contacts/{contactId}", h.RemoveContact)
	})
}

func registerCatalogRoutes(r chi.Router, suppliers *supplier.Handler, products *product.Handler) {
	r.Route("/suppliers", func(sr chi.Router) {
		sr.Get("/", suppliers.List)
		sr.Post("/", suppliers.Create)
		sr.Get("/{id}", suppliers.Get)
		sr.Put("/{id}", suppliers.Update)
		sr.Delete("/{id}", suppliers.Delete)
	})
	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", products.List)
		pr.Post("/", products.Create)
		pr.Get("/{id}", products.Get)
		pr.Put("/{id}", products.Update)
		pr.Delete("/{id}", products.Delete)
	})
}

func registerTicketRoutes(r chi.Router, h *ticket.Handler) {
	r.Route("/tickets", func(tr chi.Router) {
		tr.Get("/", h.List)
		tr.Post("/", h.Create)
		tr.Get("/{id}", h.Get)
		tr.Put("/{id}", h.Update)
		tr.Delete("/{id}", h.Delete)
	})
}

func registerContentRoutes(r chi.Router, h *content.Handler) {
	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/{id}", h.GetTemplate)
	r.Get("/materials", h.ListMaterials)
	r.Get("/materials/{id}", h.GetMaterial)
	r.Get("/ai-prompts", h.ListPrompts)
	r.Get("/ai-prompts/{id}", h.GetPrompt)
	r.Get("/material-types", h.ListTaxonomy(content.KindMaterialType))
	r.Get("/software-types", h.ListTaxonomy(content.KindSoftwareType))
}

func registerAdminRoutes(r chi.Router, h Handlers, authz *auth.Authorizer) {
	r.Group(func(ur chi.Router) {
		ur.Use(authz.RequirePermission(auth.PermUsersManage))
		ur.Get("/users", h.User.ListUsers)
		ur.Post("/users", h.User.CreateUser)
		ur.Get("/users/{id}", h.User.GetUser)
		ur.Put("/users/{id}", h.User.UpdateUser)
		ur.Delete("/users/{id}", h.User.DeleteUser)
	})

	r.With(authz.RequirePermission(auth.PermCreditsManage)).Put("/users/{id}/credits", h.Credit.Adjust)

	r.Group(func(gr chi.Router) {
		gr.Use(authz.RequirePermission(auth.PermPermissionsManage))
		gr.Get("/groups", h.User.ListGroups)
		gr.Post("/groups", h.User.CreateGroup)
		gr.Put("/groups/{id}", h.User.UpdateGroup)
		gr.Delete("/groups/{id}", h.User.DeleteGroup)
		gr.Get("/permissions", h.User.ListPermissions)
		gr.Put("/groups/{id}/permissions", h.User.SetGroupPermissions)
	})

	r.With(authz.RequirePermission(auth.PermActivityView)).Get("/activity", h.Activity.List)

	r.Group(func(cr chi.Router) {
		cr.Use(authz.RequirePermission(auth.PermContentManage))

		cr.Get("/templates", h.Content.AdminListTemplates)
		cr.Post("/templates", h.Content.CreateTemplate)
		cr.Put("/templates/{id}", h.Content.UpdateTemplate)
		cr.Delete("/templates/{id}", h.Content.DeleteTemplate)

		cr.Get("/materials", h.Content.AdminListMaterials)
		cr.Post("/materials", h.Content.CreateMaterial)
		cr.Put("/materials/{id}", h.Content.UpdateMaterial)
		cr.Delete("/materials/{id}", h.Content.DeleteMaterial)

		cr.Get("/ai-prompts", h.Content.AdminListPrompts)
		cr.Post("/ai-prompts", h.Content.CreatePrompt)
		cr.Put("/ai-prompts/{id}", h.Content.UpdatePrompt)
		cr.Delete("/ai-prompts/{id}", h.Content.DeletePrompt)

		for path, kind := range map[string]content.Kind{
			"/material-types": content.KindMaterialType,
			"/software-types": content.KindSoftwareType,
		} {
			cr.Get(path, h.Content.AdminListTaxonomy(kind))
			cr.Post(path, h.Content.CreateTaxonomy(kind))
			cr.Put(path+"/{id}", h.Content.UpdateTaxonomy(kind))
			cr.Delete(path+"/{id}", h.Content.DeleteTaxonomy(kind))
		}
	})
}
