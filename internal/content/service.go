package content

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/backoffice/internal"
	contentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/content"
	"github.com/frahmantamala/backoffice/internal/core/events"
)

// RepositoryAPI stores the learning content catalog. Getters return nil,
// nil for missing rows; Save inserts rows with a zero id and updates the
// rest.
type RepositoryAPI interface {
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]*contentDatamodel.Template, error)
	GetTemplate(ctx context.Context, id int64) (*contentDatamodel.Template, error)
	SaveTemplate(ctx context.Context, t *contentDatamodel.Template) error
	DeleteTemplate(ctx context.Context, id int64) error

	ListMaterials(ctx context.Context, filter MaterialFilter) ([]*contentDatamodel.Material, error)
	GetMaterial(ctx context.Context, id int64) (*contentDatamodel.Material, error)
	SaveMaterial(ctx context.Context, m *contentDatamodel.Material) error
	DeleteMaterial(ctx context.Context, id int64) error

	ListPrompts(ctx context.Context, filter PromptFilter) ([]*contentDatamodel.AIPrompt, error)
	GetPrompt(ctx context.Context, id int64) (*contentDatamodel.AIPrompt, error)
	SavePrompt(ctx context.Context, p *contentDatamodel.AIPrompt) error
	DeletePrompt(ctx context.Context, id int64) error

	ListMaterialTypes(ctx context.Context, activeOnly bool) ([]*contentDatamodel.MaterialType, error)
	GetMaterialType(ctx context.Context, id int64) (*contentDatamodel.MaterialType, error)
	SaveMaterialType(ctx context.Context, t *contentDatamodel.MaterialType) error
	// DeleteMaterialType also clears the type from materials.
	DeleteMaterialType(ctx context.Context, id int64) error

	ListSoftwareTypes(ctx context.Context, activeOnly bool) ([]*contentDatamodel.SoftwareType, error)
	GetSoftwareType(ctx context.Context, id int64) (*contentDatamodel.SoftwareType, error)
	SaveSoftwareType(ctx context.Context, t *contentDatamodel.SoftwareType) error
	DeleteSoftwareType(ctx context.Context, id int64) error
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) ListTemplates(ctx context.Context, filter TemplateFilter) ([]*Template, error) {
	rows, err := s.repo.ListTemplates(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list templates", err)
	}
	out := make([]*Template, 0, len(rows))
	for _, row := range rows {
		out = append(out, TemplateFromDataModel(row))
	}
	return out, nil
}

func (s *Service) GetTemplate(ctx context.Context, id int64, activeOnly bool) (*Template, error) {
	row, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get template", err)
	}
	if row == nil || (activeOnly && !row.IsActive) {
		return nil, notFound("Template")
	}
	return TemplateFromDataModel(row), nil
}

func (s *Service) CreateTemplate(ctx context.Context, actorID int64, dto TemplateDTO) (*Template, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &contentDatamodel.Template{
		Title:       dto.Title,
		Category:    dto.Category,
		Description: dto.Description,
		Content:     dto.Content,
		IsActive:    active(dto.IsActive),
	}
	if err := s.repo.SaveTemplate(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to save template", err)
	}
	s.emitSaved(ctx, actorID, "template", true, row.ID)
	return TemplateFromDataModel(row), nil
}

func (s *Service) UpdateTemplate(ctx context.Context, actorID, id int64, dto UpdateTemplateDTO) (*Template, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get template", err)
	}
	if row == nil {
		return nil, notFound("Template")
	}
	setIf(&row.Title, dto.Title)
	setIf(&row.Category, dto.Category)
	setIf(&row.Description, dto.Description)
	setIf(&row.Content, dto.Content)
	setIf(&row.IsActive, dto.IsActive)

	if err := s.repo.SaveTemplate(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to save template", err)
	}
	s.emitSaved(ctx, actorID, "template", false, row.ID)
	return TemplateFromDataModel(row), nil
}

func (s *Service) DeleteTemplate(ctx context.Context, actorID, id int64) error {
	if _, err := s.GetTemplate(ctx, id, false); err != nil {
		return err
	}
	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete template", err)
	}
	s.emitDeleted(ctx, actorID, "template", id)
	return nil
}

func (s *Service) ListMaterials(ctx context.Context, filter MaterialFilter) ([]*Material, error) {
	rows, err := s.repo.ListMaterials(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list materials", err)
	}
	out := make([]*Material, 0, len(rows))
	for _, row := range rows {
		out = append(out, MaterialFromDataModel(row))
	}
	return out, nil
}

func (s *Service) GetMaterial(ctx context.Context, id int64, activeOnly bool) (*Material, error) {
	row, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get material", err)
	}
	if row == nil || (activeOnly && !row.IsActive) {
		return nil, notFound("Material")
	}
	return MaterialFromDataModel(row), nil
}

func (s *Service) CreateMaterial(ctx context.Context, actorID int64, dto MaterialDTO) (*Material, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkMaterialTypes(ctx, dto.MaterialTypeID, dto.SoftwareTypeID); err != nil {
		return nil, err
	}

	row := &contentDatamodel.Material{
		Title:          dto.Title,
		Category:       dto.Category,
		Description:    dto.Description,
		Content:        dto.Content,
		URL:            dto.URL,
		MaterialTypeID: dto.MaterialTypeID,
		SoftwareTypeID: dto.SoftwareTypeID,
		IsActive:       active(dto.IsActive),
	}
	if err := s.repo.SaveMaterial(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to save material", err)
	}
	s.emitSaved(ctx, actorID, "material", true, row.ID)
	return MaterialFromDataModel(row), nil
}

func (s *Service) UpdateMaterial(ctx context.Context, actorID, id int64, dto UpdateMaterialDTO) (*Material, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkMaterialTypes(ctx, nonZero(dto.MaterialTypeID), nonZero(dto.SoftwareTypeID)); err != nil {
		return nil, err
	}

	row, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get material", err)
	}
	if row == nil {
		return nil, notFound("Material")
	}
	setIf(&row.Title, dto.Title)
	setIf(&row.Category, dto.Category)
	setIf(&row.Description, dto.Description)
	setIf(&row.Content, dto.Content)
	setIf(&row.URL, dto.URL)
	optionalID(&row.MaterialTypeID, dto.MaterialTypeID)
	optionalID(&row.SoftwareTypeID, dto.SoftwareTypeID)
	setIf(&row.IsActive, dto.IsActive)

	if err := s.repo.SaveMaterial(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to save material", err)
	}
	s.emitSaved(ctx, actorID, "material", false, row.ID)
	return MaterialFromDataModel(row), nil
}

func (s *Service) DeleteMaterial(ctx context.Context, actorID, id int64) error {
	if _, err := s.GetMaterial(ctx, id, false); err != nil {
		return err
	}
	if err := s.repo.DeleteMaterial(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete material", err)
	}
	s.emitDeleted(ctx, actorID, "material", id)
	return nil
}

func (s *Service) ListPrompts(ctx context.Context, filter PromptFilter) ([]*AIPrompt, error) {
	rows, err := s.repo.ListPrompts(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list prompts", err)
	}
	out := make([]*AIPrompt, 0, len(rows))
	for _, row := range rows {
		out = append(out, PromptFromDataModel(row))
	}
	return out, nil
}

// GetPrompt returns a prompt. With activeOnly, inactive prompts read as
// missing.
func (s *Service) GetPrompt(ctx context.Context, id int64, activeOnly bool) (*AIPrompt, error) {
	row, err := s.repo.GetPrompt(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get prompt", err)
	}
	if row == nil || (activeOnly && !row.IsActive) {
		return nil, notFound("Prompt")
	}
	return PromptFromDataModel(row), nil
}

func (s *Service) CreatePrompt(ctx context.Context, actorID int64, dto AIPromptDTO) (*AIPrompt, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &contentDatamodel.AIPrompt{
		Title:       dto.Title,
		Category:    dto.Category,
		Description: dto.Description,
		Content:     dto.Content,
		CreditCost:  dto.CreditCost,
		IsActive:    active(dto.IsActive),
	}
	if err := s.repo.SavePrompt(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to save prompt", err)
	}
	s.emitSaved(ctx, actorID, "ai_prompt", true, row.ID)
	return PromptFromDataModel(row), nil
}

func (s *Service) UpdatePrompt(ctx context.Context, actorID, id int64, dto UpdateAIPromptDTO) (*AIPrompt, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetPrompt(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get prompt", err)
	}
	if row == nil {
		return nil, notFound("Prompt")
	}
	setIf(&row.Title, dto.Title)
	setIf(&row.Category, dto.Category)
	setIf(&row.Description, dto.Description)
	setIf(&row.Content, dto.Content)
	setIf(&row.CreditCost, dto.CreditCost)
	setIf(&row.IsActive, dto.IsActive)

	if err := s.repo.SavePrompt(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to save prompt", err)
	}
	s.emitSaved(ctx, actorID, "ai_prompt", false, row.ID)
	return PromptFromDataModel(row), nil
}

func (s *Service) DeletePrompt(ctx context.Context, actorID, id int64) error {
	if _, err := s.GetPrompt(ctx, id, false); err != nil {
		return err
	}
	if err := s.repo.DeletePrompt(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete prompt", err)
	}
	s.emitDeleted(ctx, actorID, "ai_prompt", id)
	return nil
}

func (s *Service) ListTaxonomy(ctx context.Context, kind Kind, activeOnly bool) ([]*Taxonomy, error) {
	var out []*Taxonomy
	switch kind {
	case KindMaterialType:
		rows, err := s.repo.ListMaterialTypes(ctx, activeOnly)
		if err != nil {
			return nil, internal.NewInternalError("failed to list material types", err)
		}
		out = make([]*Taxonomy, 0, len(rows))
		for _, row := range rows {
			out = append(out, TaxonomyFromMaterialType(row))
		}
	case KindSoftwareType:
		rows, err := s.repo.ListSoftwareTypes(ctx, activeOnly)
		if err != nil {
			return nil, internal.NewInternalError("failed to list software types", err)
		}
		out = make([]*Taxonomy, 0, len(rows))
		for _, row := range rows {
			out = append(out, TaxonomyFromSoftwareType(row))
		}
	default:
		return nil, unknownKind(kind)
	}
	return out, nil
}

func (s *Service) CreateTaxonomy(ctx context.Context, actorID int64, kind Kind, dto TaxonomyDTO) (*Taxonomy, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var (
		out *Taxonomy
		err error
	)
	switch kind {
	case KindMaterialType:
		row := &contentDatamodel.MaterialType{Name: dto.Name, Icon: dto.Icon, IsActive: active(dto.IsActive)}
		if err = s.repo.SaveMaterialType(ctx, row); err == nil {
			out = TaxonomyFromMaterialType(row)
		}
	case KindSoftwareType:
		row := &contentDatamodel.SoftwareType{Name: dto.Name, Icon: dto.Icon, IsActive: active(dto.IsActive)}
		if err = s.repo.SaveSoftwareType(ctx, row); err == nil {
			out = TaxonomyFromSoftwareType(row)
		}
	default:
		return nil, unknownKind(kind)
	}
	if err != nil {
		return nil, taxonomyWriteError(err)
	}

	s.emitSaved(ctx, actorID, string(kind), true, out.ID)
	return out, nil
}

func (s *Service) UpdateTaxonomy(ctx context.Context, actorID int64, kind Kind, id int64, dto UpdateTaxonomyDTO) (*Taxonomy, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var (
		out *Taxonomy
		err error
	)
	switch kind {
	case KindMaterialType:
		var row *contentDatamodel.MaterialType
		if row, err = s.repo.GetMaterialType(ctx, id); err != nil {
			return nil, internal.NewInternalError("failed to get material type", err)
		}
		if row == nil {
			return nil, notFound("Material type")
		}
		setIf(&row.Name, dto.Name)
		setIf(&row.Icon, dto.Icon)
		setIf(&row.IsActive, dto.IsActive)
		if err = s.repo.SaveMaterialType(ctx, row); err == nil {
			out = TaxonomyFromMaterialType(row)
		}
	case KindSoftwareType:
		var row *contentDatamodel.SoftwareType
		if row, err = s.repo.GetSoftwareType(ctx, id); err != nil {
			return nil, internal.NewInternalError("failed to get software type", err)
		}
		if row == nil {
			return nil, notFound("Software type")
		}
		setIf(&row.Name, dto.Name)
		setIf(&row.Icon, dto.Icon)
		setIf(&row.IsActive, dto.IsActive)
		if err = s.repo.SaveSoftwareType(ctx, row); err == nil {
			out = TaxonomyFromSoftwareType(row)
		}
	default:
		return nil, unknownKind(kind)
	}
	if err != nil {
		return nil, taxonomyWriteError(err)
	}

	s.emitSaved(ctx, actorID, string(kind), false, out.ID)
	return out, nil
}

func (s *Service) DeleteTaxonomy(ctx context.Context, actorID int64, kind Kind, id int64) error {
	found, err := s.taxonomyExists(ctx, kind, id)
	if err != nil {
		return err
	}
	if !found {
		return notFound("Taxonomy")
	}

	switch kind {
	case KindMaterialType:
		err = s.repo.DeleteMaterialType(ctx, id)
	case KindSoftwareType:
		err = s.repo.DeleteSoftwareType(ctx, id)
	}
	if err != nil {
		return internal.NewInternalError("failed to delete taxonomy", err)
	}
	s.emitDeleted(ctx, actorID, string(kind), id)
	return nil
}

func (s *Service) checkMaterialTypes(ctx context.Context, materialTypeID, softwareTypeID *int64) error {
	if err := s.checkTaxonomy(ctx, KindMaterialType, "materialTypeId", materialTypeID); err != nil {
		return err
	}
	return s.checkTaxonomy(ctx, KindSoftwareType, "softwareTypeId", softwareTypeID)
}

// checkTaxonomy reports a field error when id names no row of kind.
func (s *Service) checkTaxonomy(ctx context.Context, kind Kind, field string, id *int64) error {
	if id == nil {
		return nil
	}
	found, err := s.taxonomyExists(ctx, kind, *id)
	if err != nil {
		return err
	}
	if !found {
		return internal.NewValidationFieldError(field, fmt.Sprintf("unknown %s", kind), internal.ErrCodeContentNotFound)
	}
	return nil
}

func (s *Service) taxonomyExists(ctx context.Context, kind Kind, id int64) (bool, error) {
	var (
		found bool
		err   error
	)
	switch kind {
	case KindMaterialType:
		var row *contentDatamodel.MaterialType
		row, err = s.repo.GetMaterialType(ctx, id)
		found = row != nil
	case KindSoftwareType:
		var row *contentDatamodel.SoftwareType
		row, err = s.repo.GetSoftwareType(ctx, id)
		found = row != nil
	default:
		return false, unknownKind(kind)
	}
	if err != nil {
		return false, internal.NewInternalError("failed to get taxonomy", err)
	}
	return found, nil
}

func (s *Service) emitSaved(ctx context.Context, actorID int64, entity string, created bool, id int64) {
	eventType := events.TypeContentUpdated
	if created {
		eventType = events.TypeContentCreated
	}
	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(eventType, actorID, entity, strconv.FormatInt(id, 10), nil))
}

func (s *Service) emitDeleted(ctx context.Context, actorID int64, entity string, id int64) {
	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeContentDeleted, actorID, entity, strconv.FormatInt(id, 10), nil))
}

func taxonomyWriteError(err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	return internal.NewInternalError("failed to save taxonomy", err)
}

func nonZero(id *int64) *int64 {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

func notFound(what string) error {
	return internal.NewNotFoundError(what+" not found", internal.ErrCodeContentNotFound)
}

func unknownKind(kind Kind) error {
	return internal.NewValidationError(fmt.Sprintf("unknown taxonomy %q", kind), internal.ErrCodeInvalidRequest)
}
