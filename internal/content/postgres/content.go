package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/content"
	contentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/content"
)

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

var _ content.RepositoryAPI = (*ContentRepository)(nil)

func byID[T any](ctx context.Context, db *gorm.DB, id int64) (*T, error) {
	var row T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id int64) error {
	var row T
	return db.WithContext(ctx).Where("id = ?", id).Delete(&row).Error
}

func taxonomyWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("An entry with this name already exists", internal.ErrCodeContentExists)
	}
	return err
}

func (r *ContentRepository) ListTemplates(ctx context.Context, filter content.TemplateFilter) ([]*contentDatamodel.Template, error) {
	q := r.db.WithContext(ctx).Order("title ASC, id ASC")
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	var rows []*contentDatamodel.Template
	err := q.Find(&rows).Error
	return rows, err
}

func (r *ContentRepository) GetTemplate(ctx context.Context, id int64) (*contentDatamodel.Template, error) {
	return byID[contentDatamodel.Template](ctx, r.db, id)
}

func (r *ContentRepository) SaveTemplate(ctx context.Context, t *contentDatamodel.Template) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *ContentRepository) DeleteTemplate(ctx context.Context, id int64) error {
	return deleteByID[contentDatamodel.Template](ctx, r.db, id)
}

func (r *ContentRepository) ListMaterials(ctx context.Context, filter content.MaterialFilter) ([]*contentDatamodel.Material, error) {
	q := r.db.WithContext(ctx).Order("title ASC, id ASC")
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.MaterialTypeID != nil {
		q = q.Where("material_type_id = ?", *filter.MaterialTypeID)
	}
	if filter.SoftwareTypeID != nil {
		q = q.Where("software_type_id = ?", *filter.SoftwareTypeID)
	}
	var rows []*contentDatamodel.Material
	err := q.Find(&rows).Error
	return rows, err
}

func (r *ContentRepository) GetMaterial(ctx context.Context, id int64) (*contentDatamodel.Material, error) {
	return byID[contentDatamodel.Material](ctx, r.db, id)
}

func (r *ContentRepository) SaveMaterial(ctx context.Context, m *contentDatamodel.Material) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *ContentRepository) DeleteMaterial(ctx context.Context, id int64) error {
	return deleteByID[contentDatamodel.Material](ctx, r.db, id)
}

func (r *ContentRepository) ListPrompts(ctx context.Context, filter content.PromptFilter) ([]*contentDatamodel.AIPrompt, error) {
	q := r.db.WithContext(ctx).Order("title ASC, id ASC")
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	var rows []*contentDatamodel.AIPrompt
	err := q.Find(&rows).Error
	return rows, err
}

func (r *ContentRepository) GetPrompt(ctx context.Context, id int64) (*contentDatamodel.AIPrompt, error) {
	return byID[contentDatamodel.AIPrompt](ctx, r.db, id)
}

func (r *ContentRepository) SavePrompt(ctx context.Context, p *contentDatamodel.AIPrompt) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ContentRepository) DeletePrompt(ctx context.Context, id int64) error {
	return deleteByID[contentDatamodel.AIPrompt](ctx, r.db, id)
}

func (r *ContentRepository) ListMaterialTypes(ctx context.Context, activeOnly bool) ([]*contentDatamodel.MaterialType, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []*contentDatamodel.MaterialType
	err := q.Find(&rows).Error
	return rows, err
}

func (r *ContentRepository) GetMaterialType(ctx context.Context, id int64) (*contentDatamodel.MaterialType, error) {
	return byID[contentDatamodel.MaterialType](ctx, r.db, id)
}

func (r *ContentRepository) SaveMaterialType(ctx context.Context, t *contentDatamodel.MaterialType) error {
	return taxonomyWriteError(r.db.WithContext(ctx).Save(t).Error)
}

func (r *ContentRepository) DeleteMaterialType(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&contentDatamodel.Material{}).Where("material_type_id = ?", id).Update("material_type_id", nil).Error; err != nil {
			return err
		}
		return deleteByID[contentDatamodel.MaterialType](ctx, tx, id)
	})
}

func (r *ContentRepository) ListSoftwareTypes(ctx context.Context, activeOnly bool) ([]*contentDatamodel.SoftwareType, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []*contentDatamodel.SoftwareType
	err := q.Find(&rows).Error
	return rows, err
}

func (r *ContentRepository) GetSoftwareType(ctx context.Context, id int64) (*contentDatamodel.SoftwareType, error) {
	return byID[contentDatamodel.SoftwareType](ctx, r.db, id)
}

func (r *ContentRepository) SaveSoftwareType(ctx context.Context, t *contentDatamodel.SoftwareType) error {
	return taxonomyWriteError(r.db.WithContext(ctx).Save(t).Error)
}

func (r *ContentRepository) DeleteSoftwareType(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&contentDatamodel.Material{}).Where("software_type_id = ?", id).Update("software_type_id", nil).Error; err != nil {
			return err
		}
		return deleteByID[contentDatamodel.SoftwareType](ctx, tx, id)
	})
}
