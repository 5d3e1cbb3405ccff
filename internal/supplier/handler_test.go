package supplier_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal"
	catalogDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/catalog"
	"github.com/frahmantamala/backoffice/internal/core/testdb"
	"github.com/frahmantamala/backoffice/internal/supplier"
	supplierPostgres "github.com/frahmantamala/backoffice/internal/supplier/postgres"
	"github.com/frahmantamala/backoffice/internal/transport"
)

var _ = Describe("My suppliers", func() {
	var (
		db     *gorm.DB
		router chi.Router
		caller int64
	)

	BeforeEach(func() {
		db, _ = testdb.MustOpen()
		caller = 1

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		handler := supplier.NewHandler(transport.NewBaseHandler(logger),
			supplier.NewService(supplierPostgres.NewSupplierRepository(db), logger))

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithUserID(r.Context(), caller)))
			})
		})
		router.Get("/suppliers", handler.List)
		router.Post("/suppliers", handler.Create)
		router.Get("/suppliers/{id}", handler.Get)
		router.Put("/suppliers/{id}", handler.Update)
		router.Delete("/suppliers/{id}", handler.Delete)
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

	create := func(as int64, body string) supplier.Supplier {
		w := do(as, http.MethodPost, "/suppliers", body)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		var s supplier.Supplier
		Expect(json.Unmarshal(w.Body.Bytes(), &s)).To(Succeed())
		return s
	}

	It("creates and lists only the caller's suppliers", func() {
		create(1, `{"name":"Beta Supply","email":"SALES@Beta.test"}`)
		create(1, `{"name":"Alpha Supply"}`)
		create(2, `{"name":"Someone Else"}`)

		w := do(1, http.MethodGet, "/suppliers", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp supplier.SuppliersResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Total).To(Equal(int64(2)))
		Expect(resp.Suppliers[0].Name).To(Equal("Alpha Supply"))
		Expect(resp.Suppliers[1].Email).To(Equal("sales@beta.test"))
	})

	It("treats another user's supplier as missing", func() {
		s := create(1, `{"name":"Mine"}`)
		path := "/suppliers/" + itoa(s.ID)

		Expect(do(2, http.MethodGet, path, "").Code).To(Equal(http.StatusNotFound))
		Expect(do(2, http.MethodPut, path, `{"name":"Stolen"}`).Code).To(Equal(http.StatusNotFound))
		Expect(do(2, http.MethodDelete, path, "").Code).To(Equal(http.StatusNotFound))

		w := do(1, http.MethodGet, path, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"name":"Mine"`))
	})

	It("updates a supplier", func() {
		s := create(1, `{"name":"Old","phone":"1","email":"sales@old.example"}`)
		w := do(1, http.MethodPut, "/suppliers/"+itoa(s.ID), `{"name":"New","notes":"ships weekly","email":""}`)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

		var got supplier.Supplier
		Expect(json.Unmarshal(w.Body.Bytes(), &got)).To(Succeed())
		Expect(got.Name).To(Equal("New"))
		Expect(got.Phone).To(Equal("1"))
		Expect(got.Email).To(BeEmpty())
		Expect(got.Notes).To(Equal("ships weekly"))
	})

	It("leaves fields missing from an update untouched", func() {
		s := create(1, `{"name":"Acme","contactName":"Rita","email":"rita@acme.example","phone":"555","website":"https://acme.example","notes":"net 30"}`)
		w := do(1, http.MethodPut, "/suppliers/"+itoa(s.ID), `{"phone":"556"}`)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

		var row catalogDatamodel.Supplier
		Expect(db.First(&row, s.ID).Error).To(Succeed())
		Expect(row.Name).To(Equal("Acme"))
		Expect(row.ContactName).To(Equal("Rita"))
		Expect(row.Email).To(Equal("rita@acme.example"))
		Expect(row.Phone).To(Equal("556"))
		Expect(row.Website).To(Equal("https://acme.example"))
		Expect(row.Notes).To(Equal("net 30"))

		Expect(do(1, http.MethodPut, "/suppliers/"+itoa(s.ID), `{"email":"nope"}`).Code).To(Equal(http.StatusBadRequest))
		Expect(do(1, http.MethodPut, "/suppliers/"+itoa(s.ID), `{"name":""}`).Code).To(Equal(http.StatusBadRequest))
	})

	It("validates the payload", func() {
		Expect(do(1, http.MethodPost, "/suppliers", `{"name":""}`).Code).To(Equal(http.StatusBadRequest))
		Expect(do(1, http.MethodPost, "/suppliers", `{"name":"X","email":"nope"}`).Code).To(Equal(http.StatusBadRequest))
		Expect(do(1, http.MethodPost, "/suppliers", `{"name":"X","website":"not a url"}`).Code).To(Equal(http.StatusBadRequest))
	})

	It("detaches products when a supplier is deleted", func() {
		s := create(1, `{"name":"Going away"}`)
		p := catalogDatamodel.Product{UserID: 1, SupplierID: &s.ID, Name: "Widget"}
		Expect(db.Create(&p).Error).To(Succeed())

		Expect(do(1, http.MethodDelete, "/suppliers/"+itoa(s.ID), "").Code).To(Equal(http.StatusNoContent))

		var reloaded catalogDatamodel.Product
		Expect(db.First(&reloaded, p.ID).Error).To(Succeed())
		Expect(reloaded.SupplierID).To(BeNil())
	})
})
