package content_test

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

	"github.com/frahmantamala/backoffice/internal/content"
	contentPostgres "github.com/frahmantamala/backoffice/internal/content/postgres"
	contentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/content"
	"github.com/frahmantamala/backoffice/internal/core/testdb"
	"github.com/frahmantamala/backoffice/internal/transport"
)

var _ = Describe("Content catalog", func() {
	var (
		db     *gorm.DB
		router chi.Router
	)

	BeforeEach(func() {
		db, _ = testdb.MustOpen()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		h := content.NewHandler(transport.NewBaseHandler(logger),
			content.NewService(contentPostgres.NewContentRepository(db), nil, logger))

		router = chi.NewRouter()
		router.Get("/templates", h.ListTemplates)
		router.Get("/templates/{id}", h.GetTemplate)
		router.Get("/materials", h.ListMaterials)
		router.Get("/ai-prompts", h.ListPrompts)
		router.Get("/ai-prompts/{id}", h.GetPrompt)
		router.Get("/material-types", h.ListTaxonomy(content.KindMaterialType))
		router.Get("/software-types", h.ListTaxonomy(content.KindSoftwareType))

		router.Route("/admin", func(r chi.Router) {
			r.Get("/templates", h.AdminListTemplates)
			r.Post("/templates", h.CreateTemplate)
			r.Put("/templates/{id}", h.UpdateTemplate)
			r.Delete("/templates/{id}", h.DeleteTemplate)
			r.Post("/materials", h.CreateMaterial)
			r.Put("/materials/{id}", h.UpdateMaterial)
			r.Get("/ai-prompts", h.AdminListPrompts)
			r.Post("/ai-prompts", h.CreatePrompt)
			r.Put("/ai-prompts/{id}", h.UpdatePrompt)
			r.Delete("/ai-prompts/{id}", h.DeletePrompt)
			r.Get("/material-types", h.AdminListTaxonomy(content.KindMaterialType))
			r.Post("/material-types", h.CreateTaxonomy(content.KindMaterialType))
			r.Put("/material-types/{id}", h.UpdateTaxonomy(content.KindMaterialType))
			r.Delete("/material-types/{id}", h.DeleteTaxonomy(content.KindMaterialType))
			r.Post("/software-types", h.CreateTaxonomy(content.KindSoftwareType))
		})
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	createdID := func(w *httptest.ResponseRecorder) int64 {
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		var body struct {
			ID int64 `json:"id"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		return body.ID
	}

	Describe("templates", func() {
		It("lists only active templates publicly", func() {
			createdID(do(http.MethodPost, "/admin/templates", `{"title":"Welcome","category":"email","content":"Hi {{.Name}}"}`))
			hidden := createdID(do(http.MethodPost, "/admin/templates", `{"title":"Draft","category":"email","content":"wip","isActive":false}`))

			var resp content.TemplatesResponse
			Expect(json.Unmarshal(do(http.MethodGet, "/templates?category=email", "").Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Templates).To(HaveLen(1))
			Expect(resp.Templates[0].Title).To(Equal("Welcome"))

			Expect(json.Unmarshal(do(http.MethodGet, "/admin/templates", "").Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Templates).To(HaveLen(2))

			Expect(do(http.MethodGet, "/templates/"+itoa(hidden), "").Code).To(Equal(http.StatusNotFound))
		})

		It("updates and deletes", func() {
			id := createdID(do(http.MethodPost, "/admin/templates", `{"title":"Old","content":"x"}`))

			w := do(http.MethodPut, "/admin/templates/"+itoa(id), `{"title":"New","content":"y"}`)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"title":"New"`))

			Expect(do(http.MethodDelete, "/admin/templates/"+itoa(id), "").Code).To(Equal(http.StatusNoContent))
			Expect(do(http.MethodDelete, "/admin/templates/"+itoa(id), "").Code).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodPut, "/admin/templates/"+itoa(id), `{"title":"Gone","content":"z"}`).Code).To(Equal(http.StatusNotFound))
		})

		It("keeps fields missing from an update", func() {
			id := createdID(do(http.MethodPost, "/admin/templates", `{"title":"Draft","category":"email","description":"welcome mail","content":"Hi","isActive":false}`))

			w := do(http.MethodPut, "/admin/templates/"+itoa(id), `{"title":"Welcome"}`)
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

			var row contentDatamodel.Template
			Expect(db.First(&row, id).Error).To(Succeed())
			Expect(row.Title).To(Equal("Welcome"))
			Expect(row.Category).To(Equal("email"))
			Expect(row.Description).To(Equal("welcome mail"))
			Expect(row.Content).To(Equal("Hi"))
			Expect(row.IsActive).To(BeFalse())

			Expect(do(http.MethodPut, "/admin/templates/"+itoa(id), `{"content":" "}`).Code).To(Equal(http.StatusBadRequest))
		})

		It("requires a title and content", func() {
			Expect(do(http.MethodPost, "/admin/templates", `{"title":"","content":"x"}`).Code).To(Equal(http.StatusBadRequest))
			Expect(do(http.MethodPost, "/admin/templates", `{"title":"x"}`).Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("AI prompts", func() {
		It("requires a credit cost of at least one", func() {
			w := do(http.MethodPost, "/admin/ai-prompts", `{"title":"Summarise","content":"Summarise {{.text}}","creditCost":0}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("creditCost"))
		})

		It("hides inactive prompts from the public list", func() {
			id := createdID(do(http.MethodPost, "/admin/ai-prompts", `{"title":"Summarise","category":"writing","content":"Summarise {{.text}}","creditCost":3}`))
			createdID(do(http.MethodPost, "/admin/ai-prompts", `{"title":"Retired","content":"x","creditCost":1,"isActive":false}`))

			var resp content.PromptsResponse
			Expect(json.Unmarshal(do(http.MethodGet, "/ai-prompts", "").Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Prompts).To(HaveLen(1))
			Expect(resp.Prompts[0].CreditCost).To(Equal(int64(3)))

			Expect(json.Unmarshal(do(http.MethodGet, "/admin/ai-prompts", "").Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Prompts).To(HaveLen(2))

			w := do(http.MethodPut, "/admin/ai-prompts/"+itoa(id), `{"isActive":false}`)
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
			Expect(do(http.MethodGet, "/ai-prompts/"+itoa(id), "").Code).To(Equal(http.StatusNotFound))

			var row contentDatamodel.AIPrompt
			Expect(db.First(&row, id).Error).To(Succeed())
			Expect(row.Title).To(Equal("Summarise"))
			Expect(row.Category).To(Equal("writing"))
			Expect(row.Content).To(Equal("Summarise {{.text}}"))
			Expect(row.CreditCost).To(Equal(int64(3)))

			Expect(do(http.MethodPut, "/admin/ai-prompts/"+itoa(id), `{"creditCost":0}`).Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("materials and taxonomies", func() {
		It("filters materials by type and refuses unknown types", func() {
			video := createdID(do(http.MethodPost, "/admin/material-types", `{"name":"Video"}`))
			pdf := createdID(do(http.MethodPost, "/admin/material-types", `{"name":"PDF"}`))
			excel := createdID(do(http.MethodPost, "/admin/software-types", `{"name":"Excel"}`))

			createdID(do(http.MethodPost, "/admin/materials", `{"title":"Intro","materialTypeId":`+itoa(video)+`,"softwareTypeId":`+itoa(excel)+`}`))
			createdID(do(http.MethodPost, "/admin/materials", `{"title":"Guide","materialTypeId":`+itoa(pdf)+`}`))

			var resp content.MaterialsResponse
			Expect(json.Unmarshal(do(http.MethodGet, "/materials?material_type_id="+itoa(video), "").Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Materials).To(HaveLen(1))
			Expect(resp.Materials[0].Title).To(Equal("Intro"))

			w := do(http.MethodPost, "/admin/materials", `{"title":"Broken","materialTypeId":9999}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("materialTypeId"))
		})

		It("updates a material partially and clears a type with 0", func() {
			video := createdID(do(http.MethodPost, "/admin/material-types", `{"name":"Video"}`))
			excel := createdID(do(http.MethodPost, "/admin/software-types", `{"name":"Excel"}`))
			id := createdID(do(http.MethodPost, "/admin/materials", `{"title":"Intro","category":"basics","url":"https://cdn.example/intro.mp4","materialTypeId":`+itoa(video)+`,"softwareTypeId":`+itoa(excel)+`}`))

			w := do(http.MethodPut, "/admin/materials/"+itoa(id), `{"softwareTypeId":0}`)
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

			var row contentDatamodel.Material
			Expect(db.First(&row, id).Error).To(Succeed())
			Expect(row.Title).To(Equal("Intro"))
			Expect(row.Category).To(Equal("basics"))
			Expect(row.URL).To(Equal("https://cdn.example/intro.mp4"))
			Expect(row.MaterialTypeID).NotTo(BeNil())
			Expect(*row.MaterialTypeID).To(Equal(video))
			Expect(row.SoftwareTypeID).To(BeNil())
			Expect(row.IsActive).To(BeTrue())

			w = do(http.MethodPut, "/admin/materials/"+itoa(id), `{"materialTypeId":9999}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("materialTypeId"))
		})

		It("renames a taxonomy entry without touching its other fields", func() {
			id := createdID(do(http.MethodPost, "/admin/material-types", `{"name":"Video","icon":"film","isActive":false}`))

			w := do(http.MethodPut, "/admin/material-types/"+itoa(id), `{"name":"Videos"}`)
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

			var got content.Taxonomy
			Expect(json.Unmarshal(w.Body.Bytes(), &got)).To(Succeed())
			Expect(got.Name).To(Equal("Videos"))
			Expect(got.Icon).To(Equal("film"))
			Expect(got.IsActive).To(BeFalse())
		})

		It("rejects duplicate names", func() {
			createdID(do(http.MethodPost, "/admin/material-types", `{"name":"Video"}`))
			w := do(http.MethodPost, "/admin/material-types", `{"name":"Video"}`)
			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(w.Body.String()).To(ContainSubstring("CONTENT_EXISTS"))
		})

		It("lists active taxonomy entries publicly", func() {
			createdID(do(http.MethodPost, "/admin/material-types", `{"name":"Video"}`))
			createdID(do(http.MethodPost, "/admin/material-types", `{"name":"Legacy","isActive":false}`))

			var resp content.TaxonomiesResponse
			Expect(json.Unmarshal(do(http.MethodGet, "/material-types", "").Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Items).To(HaveLen(1))
			Expect(json.Unmarshal(do(http.MethodGet, "/admin/material-types", "").Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Items).To(HaveLen(2))

			Expect(json.Unmarshal(do(http.MethodGet, "/software-types", "").Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Items).To(BeEmpty())
		})

		It("clears the type from materials when it is deleted", func() {
			video := createdID(do(http.MethodPost, "/admin/material-types", `{"name":"Video"}`))
			material := createdID(do(http.MethodPost, "/admin/materials", `{"title":"Intro","materialTypeId":`+itoa(video)+`}`))

			Expect(do(http.MethodDelete, "/admin/material-types/"+itoa(video), "").Code).To(Equal(http.StatusNoContent))
			Expect(do(http.MethodDelete, "/admin/material-types/"+itoa(video), "").Code).To(Equal(http.StatusNotFound))

			var row contentDatamodel.Material
			Expect(db.First(&row, material).Error).To(Succeed())
			Expect(row.MaterialTypeID).To(BeNil())
		})
	})
})
