package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Backoffice",
	Long:  `Back-office API for partners, catalog, tickets, content and AI credits.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// Containers are configured through the environment only.
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return &cfg, nil
}

func initLogger(cfg *internal.Config) *slog.Logger {
	return logger.Init(cfg.Env, cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
}

// initDB opens the pgx pool once and shares it between gorm and sqlx.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	const driver = "pgx"

	sx, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sx.SetMaxIdleConns(cfg.MaxIdleConns)
	sx.SetMaxOpenConns(cfg.MaxOpenConns)
	sx.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sx.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sx.DB}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		_ = sx.Close()
		return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return db, sx, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory holding config.yml")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(creditsCmd)
	rootCmd.AddCommand(workerCmd)
}
