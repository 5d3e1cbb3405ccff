// Package testdb opens an in-memory SQLite database carrying the full schema
// for repository and handler tests.
package testdb

import (
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	activityDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/activity"
	catalogDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/catalog"
	contentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/content"
	creditDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/credit"
	partnerDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/partner"
	paymentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/payment"
	sessionDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/session"
	ticketDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/ticket"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
)

// Open returns a gorm handle and an sqlx handle over the same single
// connection. A private :memory: database lives as long as its connection,
// so the pool is pinned to one.
func Open() (*gorm.DB, *sqlx.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&userDatamodel.UserGroup{},
		&userDatamodel.User{},
		&userDatamodel.Permission{},
		&userDatamodel.GroupPermission{},
		&sessionDatamodel.Session{},
		&partnerDatamodel.PartnerCategory{},
		&partnerDatamodel.Partner{},
		&partnerDatamodel.PartnerContact{},
		&partnerDatamodel.PartnerReview{},
		&partnerDatamodel.PartnerComment{},
		&catalogDatamodel.Supplier{},
		&catalogDatamodel.Product{},
		&ticketDatamodel.Ticket{},
		&contentDatamodel.Template{},
		&contentDatamodel.Material{},
		&contentDatamodel.AIPrompt{},
		&contentDatamodel.MaterialType{},
		&contentDatamodel.SoftwareType{},
		&creditDatamodel.CreditTransaction{},
		&paymentDatamodel.CreditPurchase{},
		&activityDatamodel.ActivityLog{},
	)
	if err != nil {
		return nil, nil, err
	}

	return db, sqlx.NewDb(sqlDB, "sqlite3"), nil
}

// MustOpen is Open for test setup blocks.
func MustOpen() (*gorm.DB, *sqlx.DB) {
	db, sx, err := Open()
	if err != nil {
		panic(err)
	}
	return db, sx
}
