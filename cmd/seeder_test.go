package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal/auth"
	authPostgres "github.com/frahmantamala/backoffice/internal/auth/postgres"
	contentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/content"
	creditDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/credit"
	partnerDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/partner"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/core/testdb"
	"github.com/frahmantamala/backoffice/internal/credit"
	creditPostgres "github.com/frahmantamala/backoffice/internal/credit/postgres"
)

var _ = Describe("seedDatabase", func() {
	var (
		db     *gorm.DB
		ctx    context.Context
		logger *slog.Logger
		opts   seedOptions
	)

	BeforeEach(func() {
		db, _ = testdb.MustOpen()
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		opts = seedOptions{
			AdminEmail:    " Root@Example.com ",
			AdminName:     "Root",
			AdminPassword: "super-secret",
			BCryptCost:    bcrypt.MinCost,
		}
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	count := func(model interface{}) int64 {
		var n int64
		Expect(db.Model(model).Count(&n).Error).To(Succeed())
		return n
	}

	It("creates the permission catalogue, groups and taxonomies", func() {
		Expect(seedDatabase(ctx, db, opts, logger)).To(Succeed())

		Expect(count(&userDatamodel.Permission{})).To(Equal(int64(len(permissionSeeds))))
		Expect(count(&userDatamodel.UserGroup{})).To(Equal(int64(3)))
		Expect(count(&partnerDatamodel.PartnerCategory{})).To(Equal(int64(len(partnerCategorySeeds))))
		Expect(count(&contentDatamodel.MaterialType{})).To(Equal(int64(len(materialTypeSeeds))))
		Expect(count(&contentDatamodel.SoftwareType{})).To(Equal(int64(len(softwareTypeSeeds))))
	})

	It("creates an administrator who can log in with every permission", func() {
		Expect(seedDatabase(ctx, db, opts, logger)).To(Succeed())

		svc := auth.NewService(authPostgres.NewRepository(db), auth.NewMemoryStore(), nil, logger, auth.Options{
			BCryptCost: bcrypt.MinCost,
			SessionTTL: time.Hour,
		})
		principal, _, err := svc.Login(ctx, auth.LoginDTO{Email: "root@example.com", Password: "super-secret"})
		Expect(err).NotTo(HaveOccurred())
		Expect(principal.Role).To(Equal(auth.RoleAdmin))
		for _, p := range permissionSeeds {
			Expect(principal.Can(p.Key)).To(BeTrue(), p.Key)
		}
	})

	It("can run again without duplicating anything", func() {
		Expect(seedDatabase(ctx, db, opts, logger)).To(Succeed())
		Expect(seedDatabase(ctx, db, opts, logger)).To(Succeed())

		Expect(count(&userDatamodel.Permission{})).To(Equal(int64(len(permissionSeeds))))
		Expect(count(&userDatamodel.UserGroup{})).To(Equal(int64(3)))
		Expect(count(&userDatamodel.User{})).To(Equal(int64(1)))

		total := 0
		for _, g := range groupSeeds {
			total += len(g.Permissions)
		}
		Expect(count(&userDatamodel.GroupPermission{})).To(Equal(int64(total)))
	})

	It("restores default grants when resetting permissions", func() {
		Expect(seedDatabase(ctx, db, opts, logger)).To(Succeed())

		var students userDatamodel.UserGroup
		Expect(db.Where("name = ?", auth.RoleStudent).First(&students).Error).To(Succeed())
		var extra userDatamodel.Permission
		Expect(db.Where("permission_key = ?", auth.PermUsersManage).First(&extra).Error).To(Succeed())
		Expect(db.Create(&userDatamodel.GroupPermission{GroupID: students.ID, PermissionID: extra.ID}).Error).To(Succeed())

		opts.ResetPermissions = true
		Expect(seedDatabase(ctx, db, opts, logger)).To(Succeed())

		var n int64
		Expect(db.Model(&userDatamodel.GroupPermission{}).Where("group_id = ?", students.ID).Count(&n).Error).To(Succeed())
		Expect(n).To(Equal(int64(2)))
	})

	It("skips the administrator when no email is given", func() {
		opts.AdminEmail = ""
		Expect(seedDatabase(ctx, db, opts, logger)).To(Succeed())
		Expect(count(&userDatamodel.User{})).To(BeZero())
	})

	It("rejects a short administrator password and leaves nothing behind", func() {
		opts.AdminPassword = "short"
		Expect(seedDatabase(ctx, db, opts, logger)).To(MatchError(ContainSubstring("at least 8")))
		Expect(count(&userDatamodel.Permission{})).To(BeZero())
	})
})

var _ = Describe("grantCredits", func() {
	var (
		db  *gorm.DB
		svc *credit.Service
		ctx context.Context
	)

	BeforeEach(func() {
		db, _ = testdb.MustOpen()
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc = credit.NewService(creditPostgres.NewCreditRepository(db), nil, nil, logger)
		Expect(db.Create(&userDatamodel.User{Email: "ana@example.com", Name: "Ana", IsActive: true, AICredits: 3}).Error).To(Succeed())
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	It("credits the user found by email", func() {
		balance, applied, err := grantCredits(ctx, db, svc, "ANA@example.com", 7, "", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(applied).To(BeTrue())
		Expect(balance).To(Equal(int64(10)))

		var tx creditDatamodel.CreditTransaction
		Expect(db.Order("id DESC").First(&tx).Error).To(Succeed())
		Expect(tx.Kind).To(Equal(creditDatamodel.KindGrant))
		Expect(tx.Reason).To(Equal("cli grant"))
	})

	It("applies a referenced grant once", func() {
		_, _, err := grantCredits(ctx, db, svc, "ana@example.com", 5, "promo", "promo-2026")
		Expect(err).NotTo(HaveOccurred())
		balance, applied, err := grantCredits(ctx, db, svc, "ana@example.com", 5, "promo", "promo-2026")
		Expect(err).NotTo(HaveOccurred())
		Expect(applied).To(BeFalse())
		Expect(balance).To(Equal(int64(8)))
	})

	It("fails for unknown emails and non-positive amounts", func() {
		_, _, err := grantCredits(ctx, db, svc, "ghost@example.com", 5, "", "")
		Expect(err).To(MatchError(ContainSubstring("no user")))

		_, _, err = grantCredits(ctx, db, svc, "ana@example.com", 0, "", "")
		Expect(err).To(HaveOccurred())
	})
})

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpiredSessions(context.Context) (int64, error) {
	p.calls.Add(1)
	return 1, p.err
}

var _ = Describe("runSessionPurge", func() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	It("purges on every tick until cancelled", func() {
		purger := &countingPurger{}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			runSessionPurge(ctx, purger, 5*time.Millisecond, logger)
			close(done)
		}()

		Eventually(purger.calls.Load).Should(BeNumerically(">=", 2))
		cancel()
		Eventually(done).Should(BeClosed())
	})

	It("keeps running after a failed purge", func() {
		purger := &countingPurger{err: errors.New("db down")}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go runSessionPurge(ctx, purger, 5*time.Millisecond, logger)

		Eventually(purger.calls.Load).Should(BeNumerically(">=", 3))
	})
})
