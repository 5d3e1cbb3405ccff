package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal/activity"
	activityPostgres "github.com/frahmantamala/backoffice/internal/activity/postgres"
	creditDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/credit"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/core/events"
	"github.com/frahmantamala/backoffice/internal/credit"
	creditPostgres "github.com/frahmantamala/backoffice/internal/credit/postgres"
)

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Operate on user AI credit balances",
}

var (
	grantEmail     string
	grantAmount    int64
	grantReason    string
	grantReference string
)

var grantCreditsCmd = &cobra.Command{
	Use:   "grant",
	Short: "Grant AI credits to a user by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		log := initLogger(cfg)

		db, sx, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer sx.Close()

		bus := events.NewEventBus(log)
		activity.NewService(activityPostgres.NewActivityRepository(db), log).RegisterEventHandlers(bus)
		svc := credit.NewService(creditPostgres.NewCreditRepository(db), nil, bus, log)

		balance, applied, err := grantCredits(cmd.Context(), db, svc, grantEmail, grantAmount, grantReason, grantReference)
		if err != nil {
			return err
		}
		if err := bus.Wait(cmd.Context()); err != nil {
			log.Warn("activity not recorded", "error", err)
		}

		if !applied {
			fmt.Printf("grant %q was already applied; balance is %d\n", grantReference, balance)
			return nil
		}
		fmt.Printf("granted %d credits to %s; balance is %d\n", grantAmount, grantEmail, balance)
		return nil
	},
}

type creditGranter interface {
	Grant(ctx context.Context, actorID, userID, amount int64, kind, reason, reference string) (int64, bool, error)
}

func grantCredits(ctx context.Context, db *gorm.DB, svc creditGranter, email string, amount int64, reason, reference string) (int64, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return 0, false, fmt.Errorf("--email is required")
	}

	var u userDatamodel.User
	if err := db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&u).Error; err != nil {
		return 0, false, err
	}
	if u.ID == 0 {
		return 0, false, fmt.Errorf("no user with email %s", email)
	}

	if reason == "" {
		reason = "cli grant"
	}
	return svc.Grant(ctx, 0, u.ID, amount, creditDatamodel.KindGrant, reason, reference)
}

func init() {
	grantCreditsCmd.Flags().StringVar(&grantEmail, "email", "", "email of the user to credit")
	grantCreditsCmd.Flags().Int64Var(&grantAmount, "amount", 0, "number of credits to add")
	grantCreditsCmd.Flags().StringVar(&grantReason, "reason", "", "reason recorded in the ledger")
	grantCreditsCmd.Flags().StringVar(&grantReference, "reference", "", "idempotency reference; repeating it grants once")
	_ = grantCreditsCmd.MarkFlagRequired("email")
	_ = grantCreditsCmd.MarkFlagRequired("amount")

	creditsCmd.AddCommand(grantCreditsCmd)
}
