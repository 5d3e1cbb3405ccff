package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/auth"
	authPostgres "github.com/frahmantamala/backoffice/internal/auth/postgres"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
}

var purgeInterval time.Duration

// Servers using the database session store can leave purging to this
// worker; the in-memory store is only reachable from its own process.
var sessionWorkerCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Purge expired sessions from the database store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		log := initLogger(cfg)

		if cfg.Security.SessionStore != internal.SessionStoreDatabase {
			log.Warn("session_store is not database; nothing to purge", "session_store", cfg.Security.SessionStore)
			return nil
		}

		db, sx, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer sx.Close()

		svc := auth.NewService(authPostgres.NewRepository(db), authPostgres.NewSessionStore(db), nil, log, auth.Options{
			BCryptCost: cfg.Security.BCryptCost,
			SessionTTL: cfg.Security.SessionTTL,
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Info("session worker started", "interval", purgeInterval)
		runSessionPurge(ctx, svc, purgeInterval, log)
		log.Info("session worker stopped")
		return nil
	},
}

func init() {
	sessionWorkerCmd.Flags().DurationVar(&purgeInterval, "interval", sessionPurgeInterval, "time between purges")
	workerCmd.AddCommand(sessionWorkerCmd)
}
