package activity_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal/activity"
	activityPostgres "github.com/frahmantamala/backoffice/internal/activity/postgres"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/core/events"
	"github.com/frahmantamala/backoffice/internal/core/testdb"
	"github.com/frahmantamala/backoffice/internal/transport"
)

var _ = Describe("Activity log", func() {
	var (
		ctx    context.Context
		db     *gorm.DB
		svc    *activity.Service
		router chi.Router
		user   userDatamodel.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, _ = testdb.MustOpen()
		user = userDatamodel.User{Email: "ana@example.com", Name: "Ana", IsActive: true}
		Expect(db.Create(&user).Error).To(Succeed())

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc = activity.NewService(activityPostgres.NewActivityRepository(db), logger)

		router = chi.NewRouter()
		router.Get("/admin/activity", activity.NewHandler(transport.NewBaseHandler(logger), svc).List)
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	list := func(query string) activity.ListResponse {
		req := httptest.NewRequest(http.MethodGet, "/admin/activity"+query, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
		var resp activity.ListResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return resp
	}

	id := strconv.FormatInt

	It("persists activity events with their metadata", func() {
		event := events.NewActivityEvent(events.TypeCreditsSpent, user.ID, "user", id(user.ID, 10), map[string]interface{}{"amount": 2})
		Expect(svc.Record(ctx, event)).To(Succeed())

		resp := list("")
		Expect(resp.Total).To(Equal(int64(1)))
		entry := resp.Entries[0]
		Expect(entry.Action).To(Equal(events.TypeCreditsSpent))
		Expect(*entry.UserID).To(Equal(user.ID))
		Expect(entry.UserName).To(Equal("Ana"))
		Expect(entry.Metadata).To(HaveKeyWithValue("amount", BeNumerically("==", 2)))
	})

	It("stores events without an actor against no user", func() {
		Expect(svc.Record(ctx, events.NewActivityEvent(events.TypePartnerCreated, 0, "partner", "9", nil))).To(Succeed())
		entry := list("").Entries[0]
		Expect(entry.UserID).To(BeNil())
		Expect(entry.UserName).To(BeEmpty())
	})

	It("filters by user and action, newest first", func() {
		other := userDatamodel.User{Email: "bo@example.com", Name: "Bo", IsActive: true}
		Expect(db.Create(&other).Error).To(Succeed())

		Expect(svc.Record(ctx, events.NewActivityEvent(events.TypeUserLoggedIn, user.ID, "user", id(user.ID, 10), nil))).To(Succeed())
		Expect(svc.Record(ctx, events.NewActivityEvent(events.TypeTicketCreated, user.ID, "ticket", "1", nil))).To(Succeed())
		Expect(svc.Record(ctx, events.NewActivityEvent(events.TypeUserLoggedIn, other.ID, "user", id(other.ID, 10), nil))).To(Succeed())

		Expect(list("").Total).To(Equal(int64(3)))
		Expect(list("?user_id=" + id(user.ID, 10)).Total).To(Equal(int64(2)))
		Expect(list("?action=user.logged_in").Total).To(Equal(int64(2)))

		both := list("?user_id=" + id(user.ID, 10) + "&action=user.logged_in")
		Expect(both.Entries).To(HaveLen(1))

		paged := list("?limit=1")
		Expect(paged.Entries).To(HaveLen(1))
		Expect(paged.Entries[0].Action).To(Equal(events.TypeUserLoggedIn))
		Expect(*paged.Entries[0].UserID).To(Equal(other.ID))
	})

	It("rejects a malformed user filter", func() {
		req := httptest.NewRequest(http.MethodGet, "/admin/activity?user_id=abc", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("records everything published on the bus", func() {
		bus := events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
		svc.RegisterEventHandlers(bus)

		Expect(bus.Publish(ctx, events.NewActivityEvent(events.TypeUserRegistered, user.ID, "user", id(user.ID, 10), nil))).To(Succeed())
		Expect(bus.Publish(ctx, events.NewActivityEvent(events.TypeTicketCreated, user.ID, "ticket", "4", nil))).To(Succeed())

		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		Expect(bus.Wait(waitCtx)).To(Succeed())

		Expect(list("").Total).To(Equal(int64(2)))
	})
})
