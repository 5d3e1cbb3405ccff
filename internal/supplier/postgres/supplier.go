package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	catalogDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/catalog"
	"github.com/frahmantamala/backoffice/internal/supplier"
)

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

var _ supplier.RepositoryAPI = (*SupplierRepository)(nil)

func (r *SupplierRepository) List(ctx context.Context, filter supplier.ListFilter) ([]*catalogDatamodel.Supplier, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&catalogDatamodel.Supplier{}).Where("user_id = ?", filter.UserID)
		if filter.Search != "" {
			like := "%" + strings.ToLower(filter.Search) + "%"
			q = q.Where("(LOWER(name) LIKE ? OR LOWER(contact_name) LIKE ?)", like, like)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*catalogDatamodel.Supplier
	err := scoped().Order("name ASC, id ASC").Limit(filter.Limit).Offset(filter.Offset).Find(&rows).Error
	return rows, total, err
}

func (r *SupplierRepository) Get(ctx context.Context, userID, id int64) (*catalogDatamodel.Supplier, error) {
	var s catalogDatamodel.Supplier
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepository) Create(ctx context.Context, s *catalogDatamodel.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SupplierRepository) Update(ctx context.Context, s *catalogDatamodel.Supplier) error {
	return r.db.WithContext(ctx).Model(s).
		Where("user_id = ?", s.UserID).
		Select("name", "contact_name", "email", "phone", "website", "notes", "updated_at").
		Updates(s).Error
}

func (r *SupplierRepository) Delete(ctx context.Context, userID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&catalogDatamodel.Product{}).
			Where("supplier_id = ? AND user_id = ?", id, userID).
			Update("supplier_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&catalogDatamodel.Supplier{}).Error
	})
}
