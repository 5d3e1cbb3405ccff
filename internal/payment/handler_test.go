package payment_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal"
	paymentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/payment"
	gatewaytypes "github.com/frahmantamala/backoffice/internal/core/datamodel/paymentgateway"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/core/testdb"
	"github.com/frahmantamala/backoffice/internal/credit"
	creditPostgres "github.com/frahmantamala/backoffice/internal/credit/postgres"
	"github.com/frahmantamala/backoffice/internal/payment"
	paymentPostgres "github.com/frahmantamala/backoffice/internal/payment/postgres"
	"github.com/frahmantamala/backoffice/internal/transport"
)

// fakeGateway keeps intents in memory. Webhook payloads are JSON-encoded
// WebhookEvents and the signature must equal "valid".
type fakeGateway struct {
	mu      sync.Mutex
	seq     int
	intents map[string]*gatewaytypes.Intent
	down    bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: map[string]*gatewaytypes.Intent{}}
}

func (g *fakeGateway) CreateIntent(_ context.Context, req *gatewaytypes.IntentRequest) (*gatewaytypes.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.down {
		return nil, errors.New("gateway unavailable")
	}
	g.seq++
	id := fmt.Sprintf("pi_%d", g.seq)
	intent := &gatewaytypes.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
		Amount:       req.Amount,
		Currency:     req.Currency,
		Metadata:     req.Metadata,
	}
	g.intents[id] = intent
	return intent, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, id string) (*gatewaytypes.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return nil, nil
	}
	cp := *intent
	return &cp, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*gatewaytypes.WebhookEvent, error) {
	if signature != "valid" {
		return nil, errors.New("bad signature")
	}
	var event gatewaytypes.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (g *fakeGateway) succeed(id string) *gatewaytypes.Intent {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[id].Status = gatewaytypes.IntentSucceeded
	cp := *g.intents[id]
	return &cp
}

var _ = Describe("Credit purchases", func() {
	var (
		db      *gorm.DB
		router  chi.Router
		gateway *fakeGateway
		caller  int64
		buyer   userDatamodel.User
		other   userDatamodel.User
	)

	BeforeEach(func() {
		db, _ = testdb.MustOpen()
		buyer = userDatamodel.User{Email: "buyer@example.com", Name: "Buyer", IsActive: true, AICredits: 3}
		other = userDatamodel.User{Email: "other@example.com", Name: "Other", IsActive: true}
		Expect(db.Create(&buyer).Error).To(Succeed())
		Expect(db.Create(&other).Error).To(Succeed())

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		gateway = newFakeGateway()
		credits := credit.NewService(creditPostgres.NewCreditRepository(db), nil, nil, logger)
		svc := payment.NewService(paymentPostgres.NewPaymentRepository(db), gateway, credits, nil, payment.Config{
			Currency:         "brl",
			CreditPriceCents: 10,
			MinCredits:       10,
			MaxCredits:       1000,
		}, logger)
		handler := payment.NewHandler(transport.NewBaseHandler(logger), svc)

		router = chi.NewRouter()
		router.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(internal.ContextWithUserID(req.Context(), caller)))
				})
			})
			r.Post("/create-payment-intent", handler.CreateIntent)
			r.Post("/confirm-payment", handler.Confirm)
			r.Get("/payments", handler.ListPurchases)
		})
		router.Post("/payments/webhook", handler.Webhook)
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	do := func(as int64, method, path, body string) *httptest.ResponseRecorder {
		caller = as
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	balanceOf := func(id int64) int64 {
		var u userDatamodel.User
		Expect(db.First(&u, id).Error).To(Succeed())
		return u.AICredits
	}

	createIntent := func(credits int) payment.IntentResponse {
		w := do(buyer.ID, http.MethodPost, "/create-payment-intent", fmt.Sprintf(`{"credits":%d}`, credits))
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
		var resp payment.IntentResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return resp
	}

	confirm := func(as int64, intentID string) *httptest.ResponseRecorder {
		return do(as, http.MethodPost, "/confirm-payment", `{"paymentIntentId":"`+intentID+`"}`)
	}

	Describe("creating an intent", func() {
		It("prices the package and tags the intent with the buyer", func() {
			resp := createIntent(50)
			Expect(resp.Amount).To(Equal(int64(500)))
			Expect(resp.Credits).To(Equal(int64(50)))
			Expect(resp.ClientSecret).To(Equal(resp.PaymentIntentID + "_secret"))

			intent, _ := gateway.GetIntent(context.Background(), resp.PaymentIntentID)
			Expect(intent.Metadata).To(HaveKeyWithValue("userId", itoa(buyer.ID)))
			Expect(intent.Metadata).To(HaveKeyWithValue("credits", "50"))

			var row paymentDatamodel.CreditPurchase
			Expect(db.Where("payment_intent_id = ?", resp.PaymentIntentID).First(&row).Error).To(Succeed())
			Expect(row.Status).To(Equal(paymentDatamodel.StatusPending))
		})

		DescribeTable("rejects packages outside the limits",
			func(body string) {
				Expect(do(buyer.ID, http.MethodPost, "/create-payment-intent", body).Code).To(Equal(http.StatusBadRequest))
			},
			Entry("below minimum", `{"credits":5}`),
			Entry("above maximum", `{"credits":5000}`),
			Entry("missing", `{}`),
		)

		It("answers 502 when the gateway is down", func() {
			gateway.down = true
			Expect(do(buyer.ID, http.MethodPost, "/create-payment-intent", `{"credits":20}`).Code).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("confirming", func() {
		It("refuses an intent that has not succeeded", func() {
			resp := createIntent(20)
			w := confirm(buyer.ID, resp.PaymentIntentID)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodePaymentNotCompleted)))
			Expect(balanceOf(buyer.ID)).To(Equal(int64(3)))
		})

		It("refuses another account's intent", func() {
			resp := createIntent(20)
			gateway.succeed(resp.PaymentIntentID)
			Expect(confirm(other.ID, resp.PaymentIntentID).Code).To(Equal(http.StatusForbidden))
			Expect(balanceOf(other.ID)).To(BeZero())
		})

		It("answers 404 for an unknown intent", func() {
			Expect(confirm(buyer.ID, "pi_missing").Code).To(Equal(http.StatusNotFound))
		})

		It("grants the credits exactly once", func() {
			resp := createIntent(20)
			gateway.succeed(resp.PaymentIntentID)

			w := confirm(buyer.ID, resp.PaymentIntentID)
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
			var first payment.ConfirmResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &first)).To(Succeed())
			Expect(first.Granted).To(BeTrue())
			Expect(first.Balance).To(Equal(int64(23)))

			w = confirm(buyer.ID, resp.PaymentIntentID)
			Expect(w.Code).To(Equal(http.StatusOK))
			var second payment.ConfirmResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &second)).To(Succeed())
			Expect(second.Granted).To(BeFalse())
			Expect(second.Balance).To(Equal(int64(23)))
			Expect(balanceOf(buyer.ID)).To(Equal(int64(23)))

			w = do(buyer.ID, http.MethodGet, "/payments", "")
			var list payment.PurchasesResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &list)).To(Succeed())
			Expect(list.Purchases).To(HaveLen(1))
			Expect(list.Purchases[0].Status).To(Equal(paymentDatamodel.StatusSucceeded))
			Expect(list.Purchases[0].CompletedAt).NotTo(BeNil())
		})
	})

	Describe("webhook", func() {
		send := func(signature string, event gatewaytypes.WebhookEvent) *httptest.ResponseRecorder {
			body, err := json.Marshal(event)
			Expect(err).NotTo(HaveOccurred())
			req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(string(body)))
			req.Header.Set("Stripe-Signature", signature)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		It("rejects an unsigned call", func() {
			Expect(send("forged", gatewaytypes.WebhookEvent{ID: "evt_0"}).Code).To(Equal(http.StatusBadRequest))
		})

		It("grants once even when the client also confirms", func() {
			resp := createIntent(30)
			intent := gateway.succeed(resp.PaymentIntentID)

			event := gatewaytypes.WebhookEvent{ID: "evt_1", Type: gatewaytypes.EventIntentSucceeded, Intent: intent}
			Expect(send("valid", event).Code).To(Equal(http.StatusOK))
			Expect(send("valid", event).Code).To(Equal(http.StatusOK))
			Expect(confirm(buyer.ID, resp.PaymentIntentID).Code).To(Equal(http.StatusOK))

			Expect(balanceOf(buyer.ID)).To(Equal(int64(33)))
		})

		It("marks failed intents", func() {
			resp := createIntent(30)
			intent, _ := gateway.GetIntent(context.Background(), resp.PaymentIntentID)
			intent.Status = "requires_payment_method"

			event := gatewaytypes.WebhookEvent{ID: "evt_2", Type: gatewaytypes.EventIntentFailed, Intent: intent}
			Expect(send("valid", event).Code).To(Equal(http.StatusOK))

			var row paymentDatamodel.CreditPurchase
			Expect(db.Where("payment_intent_id = ?", resp.PaymentIntentID).First(&row).Error).To(Succeed())
			Expect(row.Status).To(Equal(paymentDatamodel.StatusFailed))
			Expect(balanceOf(buyer.ID)).To(Equal(int64(3)))
		})

		It("acknowledges unrelated events", func() {
			Expect(send("valid", gatewaytypes.WebhookEvent{ID: "evt_3", Type: "customer.created"}).Code).To(Equal(http.StatusOK))
		})
	})
})

func itoa(id int64) string {
	return fmt.Sprint(id)
}
