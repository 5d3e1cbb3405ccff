package product_test

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
	"github.com/frahmantamala/backoffice/internal/product"
	productPostgres "github.com/frahmantamala/backoffice/internal/product/postgres"
	"github.com/frahmantamala/backoffice/internal/transport"
)

var _ = Describe("Products", func() {
	var (
		db     *gorm.DB
		router chi.Router
		caller int64
		mine   catalogDatamodel.Supplier
		theirs catalogDatamodel.Supplier
	)

	BeforeEach(func() {
		db, _ = testdb.MustOpen()
		caller = 1

		mine = catalogDatamodel.Supplier{UserID: 1, Name: "Mine"}
		theirs = catalogDatamodel.Supplier{UserID: 2, Name: "Theirs"}
		Expect(db.Create(&mine).Error).To(Succeed())
		Expect(db.Create(&theirs).Error).To(Succeed())

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		handler := product.NewHandler(transport.NewBaseHandler(logger),
			product.NewService(productPostgres.NewProductRepository(db), logger))

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithUserID(r.Context(), caller)))
			})
		})
		router.Get("/products", handler.List)
		router.Post("/products", handler.Create)
		router.Get("/products/{id}", handler.Get)
		router.Put("/products/{id}", handler.Update)
		router.Delete("/products/{id}", handler.Delete)
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

	decode := func(w *httptest.ResponseRecorder) product.Product {
		var p product.Product
		Expect(json.Unmarshal(w.Body.Bytes(), &p)).To(Succeed())
		return p
	}

	It("returns the computed margin", func() {
		w := do(1, http.MethodPost, "/products", `{"name":"Mug","sku":"MUG-1","costCents":450,"priceCents":1200,"supplierId":`+itoa(mine.ID)+`}`)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())

		p := decode(w)
		Expect(p.MarginCents).To(Equal(int64(750)))
		Expect(p.MarginPercent).To(BeNumerically("~", 62.5, 0.001))
		Expect(*p.SupplierID).To(Equal(mine.ID))
	})

	It("refuses a supplier owned by someone else", func() {
		w := do(1, http.MethodPost, "/products", `{"name":"Mug","supplierId":`+itoa(theirs.ID)+`}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("supplierId"))
	})

	It("rejects negative amounts", func() {
		w := do(1, http.MethodPost, "/products", `{"name":"Mug","costCents":-1}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("scopes reads and writes to the owner", func() {
		p := decode(do(1, http.MethodPost, "/products", `{"name":"Mug","priceCents":100}`))
		path := "/products/" + itoa(p.ID)

		Expect(do(2, http.MethodGet, path, "").Code).To(Equal(http.StatusNotFound))
		Expect(do(2, http.MethodPut, path, `{"name":"Hijacked"}`).Code).To(Equal(http.StatusNotFound))
		Expect(do(2, http.MethodDelete, path, "").Code).To(Equal(http.StatusNotFound))

		var resp product.ProductsResponse
		Expect(json.Unmarshal(do(2, http.MethodGet, "/products", "").Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Total).To(BeZero())

		Expect(do(1, http.MethodDelete, path, "").Code).To(Equal(http.StatusNoContent))
		Expect(do(1, http.MethodGet, path, "").Code).To(Equal(http.StatusNotFound))
	})

	It("updates prices and clears the supplier", func() {
		p := decode(do(1, http.MethodPost, "/products", `{"name":"Mug","costCents":100,"priceCents":200,"supplierId":`+itoa(mine.ID)+`}`))

		w := do(1, http.MethodPut, "/products/"+itoa(p.ID), `{"priceCents":400,"supplierId":0}`)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
		updated := decode(w)
		Expect(updated.SupplierID).To(BeNil())
		Expect(updated.MarginCents).To(Equal(int64(300)))

		var row catalogDatamodel.Product
		Expect(db.First(&row, p.ID).Error).To(Succeed())
		Expect(row.SupplierID).To(BeNil())
		Expect(row.PriceCents).To(Equal(int64(400)))
	})

	It("changes only the fields sent", func() {
		p := decode(do(1, http.MethodPost, "/products", `{"name":"Mug","sku":"MUG-1","costCents":100,"priceCents":200,"supplierId":`+itoa(mine.ID)+`,"notes":"fragile"}`))

		w := do(1, http.MethodPut, "/products/"+itoa(p.ID), `{"priceCents":250}`)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

		var row catalogDatamodel.Product
		Expect(db.First(&row, p.ID).Error).To(Succeed())
		Expect(row.Name).To(Equal("Mug"))
		Expect(row.SKU).To(Equal("MUG-1"))
		Expect(row.CostCents).To(Equal(int64(100)))
		Expect(row.PriceCents).To(Equal(int64(250)))
		Expect(row.SupplierID).NotTo(BeNil())
		Expect(*row.SupplierID).To(Equal(mine.ID))
		Expect(row.Notes).To(Equal("fragile"))

		Expect(do(1, http.MethodPut, "/products/"+itoa(p.ID), `{"name":"  "}`).Code).To(Equal(http.StatusBadRequest))
		Expect(do(1, http.MethodPut, "/products/"+itoa(p.ID), `{"costCents":-5}`).Code).To(Equal(http.StatusBadRequest))
	})

	It("filters by supplier and search", func() {
		do(1, http.MethodPost, "/products", `{"name":"Red Mug","supplierId":`+itoa(mine.ID)+`}`)
		do(1, http.MethodPost, "/products", `{"name":"Blue Mug"}`)
		do(1, http.MethodPost, "/products", `{"name":"Plate","sku":"MUG-PLATE"}`)

		var resp product.ProductsResponse
		Expect(json.Unmarshal(do(1, http.MethodGet, "/products?supplier_id="+itoa(mine.ID), "").Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Total).To(Equal(int64(1)))

		Expect(json.Unmarshal(do(1, http.MethodGet, "/products?search=mug", "").Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Total).To(Equal(int64(3)))
	})
})
