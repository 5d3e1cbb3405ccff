package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/activity"
	activityPostgres "github.com/frahmantamala/backoffice/internal/activity/postgres"
	"github.com/frahmantamala/backoffice/internal/auth"
	authPostgres "github.com/frahmantamala/backoffice/internal/auth/postgres"
	"github.com/frahmantamala/backoffice/internal/content"
	contentPostgres "github.com/frahmantamala/backoffice/internal/content/postgres"
	"github.com/frahmantamala/backoffice/internal/core/events"
	"github.com/frahmantamala/backoffice/internal/credit"
	creditPostgres "github.com/frahmantamala/backoffice/internal/credit/postgres"
	"github.com/frahmantamala/backoffice/internal/partner"
	partnerPostgres "github.com/frahmantamala/backoffice/internal/partner/postgres"
	"github.com/frahmantamala/backoffice/internal/payment"
	paymentPostgres "github.com/frahmantamala/backoffice/internal/payment/postgres"
	"github.com/frahmantamala/backoffice/internal/paymentgateway"
	"github.com/frahmantamala/backoffice/internal/product"
	productPostgres "github.com/frahmantamala/backoffice/internal/product/postgres"
	"github.com/frahmantamala/backoffice/internal/supplier"
	supplierPostgres "github.com/frahmantamala/backoffice/internal/supplier/postgres"
	"github.com/frahmantamala/backoffice/internal/ticket"
	ticketPostgres "github.com/frahmantamala/backoffice/internal/ticket/postgres"
	"github.com/frahmantamala/backoffice/internal/transport"
	"github.com/frahmantamala/backoffice/internal/transport/rest"
	"github.com/frahmantamala/backoffice/internal/transport/swagger"
	"github.com/frahmantamala/backoffice/internal/user"
	userPostgres "github.com/frahmantamala/backoffice/internal/user/postgres"
)

const sessionPurgeInterval = 15 * time.Minute

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *gorm.DB
	SQLX     *sqlx.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Auth     *auth.Service
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	log := deps.Logger

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	purgeCtx, stopPurge := context.WithCancel(context.Background())
	defer stopPurge()
	go runSessionPurge(purgeCtx, deps.Auth, sessionPurgeInterval, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", addr, "env", deps.Config.Env)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
		stopPurge()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}
		if err := deps.EventBus.Wait(ctx); err != nil {
			log.Warn("event handlers still running at shutdown", "error", err)
		}
		if err := deps.SQLX.Close(); err != nil {
			log.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := initLogger(config)

	db, sx, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if _, err := swagger.Load(context.Background()); err != nil {
		log.Warn("openapi document failed validation", "error", err)
	}

	bus := events.NewEventBus(log)
	activityService := activity.NewService(activityPostgres.NewActivityRepository(db), log)
	activityService.RegisterEventHandlers(bus)

	var sessions auth.SessionStore
	switch config.Security.SessionStore {
	case internal.SessionStoreDatabase:
		sessions = authPostgres.NewSessionStore(db)
	default:
		sessions = auth.NewMemoryStore()
	}

	authService := auth.NewService(authPostgres.NewRepository(db), sessions, bus, log, auth.Options{
		BCryptCost:   config.Security.BCryptCost,
		SessionTTL:   config.Security.SessionTTL,
		DefaultGroup: config.Security.DefaultGroup,
	})

	var google *auth.GoogleConfig
	if config.OAuth.Enabled() {
		google = &auth.GoogleConfig{
			Provider:        auth.NewGoogleProvider(config.OAuth.GoogleClientID, config.OAuth.GoogleClientSecret, config.OAuth.GoogleRedirectURL),
			State:           auth.NewStateSigner(config.Security.SessionSecret, 10*time.Minute),
			SuccessRedirect: config.OAuth.SuccessRedirect,
			FailureRedirect: config.OAuth.FailureRedirect,
		}
	}

	base := transport.NewBaseHandler(log)
	contentService := content.NewService(contentPostgres.NewContentRepository(db), bus, log)
	creditService := credit.NewService(creditPostgres.NewCreditRepository(db), contentService, bus, log)

	handlers := rest.Handlers{
		Health:   rest.NewHealthHandler(base, sx),
		Auth:     auth.NewHandler(base, authService, auth.CookieConfig{Name: config.Security.SessionCookieName, Secure: config.Security.CookieSecure}, google),
		Authz:    auth.NewAuthorizer(base),
		User:     user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(db), authService, bus, log, config.Security.BCryptCost)),
		Partner:  partner.NewHandler(base, partner.NewService(partnerPostgres.NewPartnerRepository(db, sx), bus, log)),
		Supplier: supplier.NewHandler(base, supplier.NewService(supplierPostgres.NewSupplierRepository(db), log)),
		Product:  product.NewHandler(base, product.NewService(productPostgres.NewProductRepository(db), log)),
		Ticket:   ticket.NewHandler(base, ticket.NewService(ticketPostgres.NewTicketRepository(db), bus, log)),
		Content:  content.NewHandler(base, contentService),
		Credit:   credit.NewHandler(base, creditService),
		Activity: activity.NewHandler(base, activityService),
	}

	if config.Payment.Enabled() {
		gateway := paymentgateway.NewStripeGateway(paymentgateway.Config{
			SecretKey:     config.Payment.StripeSecretKey,
			WebhookSecret: config.Payment.StripeWebhookSecret,
			Timeout:       30 * time.Second,
		}, log)
		paymentService := payment.NewService(paymentPostgres.NewPaymentRepository(db), gateway, creditService, bus, payment.Config{
			Currency:         config.Payment.Currency,
			CreditPriceCents: config.Payment.CreditPriceCents,
			MinCredits:       config.Payment.MinCredits,
			MaxCredits:       config.Payment.MaxCredits,
		}, log)
		handlers.Payment = payment.NewHandler(base, paymentService)
	} else {
		log.Warn("stripe secret key not set; payment routes disabled")
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, rest.Options{
		AllowedOrigins: config.Server.Origins(),
		MetricsEnabled: config.Observability.Metrics.Enabled,
		MetricsPath:    config.Observability.Metrics.Path,
	}, log)

	return &Dependencies{
		Config:   config,
		DB:       db,
		SQLX:     sx,
		Router:   router,
		EventBus: bus,
		Auth:     authService,
		Logger:   log,
	}, nil
}

type sessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// runSessionPurge drops expired sessions until ctx is cancelled.
func runSessionPurge(ctx context.Context, purger sessionPurger, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purger.PurgeExpiredSessions(ctx)
			if err != nil {
				log.Error("session purge failed", "error", err)
				continue
			}
			if n > 0 {
				log.Info("expired sessions purged", "count", n)
			}
		}
	}
}
