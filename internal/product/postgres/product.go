package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	catalogDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/catalog"
	"github.com/frahmantamala/backoffice/internal/product"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

var _ product.RepositoryAPI = (*ProductRepository)(nil)

func (r *ProductRepository) List(ctx context.Context, filter product.ListFilter) ([]*catalogDatamodel.Product, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&catalogDatamodel.Product{}).Where("user_id = ?", filter.UserID)
		if filter.SupplierID != nil {
			q = q.Where("supplier_id = ?", *filter.SupplierID)
		}
		if filter.Search != "" {
			like := "%" + strings.ToLower(filter.Search) + "%"
			q = q.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", like, like)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*catalogDatamodel.Product
	err := scoped().Order("created_at DESC, id DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&rows).Error
	return rows, total, err
}

func (r *ProductRepository) Get(ctx context.Context, userID, id int64) (*catalogDatamodel.Product, error) {
	var p catalogDatamodel.Product
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *catalogDatamodel.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) Update(ctx context.Context, p *catalogDatamodel.Product) error {
	return r.db.WithContext(ctx).Model(p).
		Where("user_id = ?", p.UserID).
		Select("name", "sku", "cost_cents", "price_cents", "supplier_id", "notes", "updated_at").
		Updates(p).Error
}

func (r *ProductRepository) Delete(ctx context.Context, userID, id int64) error {
	return r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&catalogDatamodel.Product{}).Error
}

func (r *ProductRepository) OwnsSupplier(ctx context.Context, userID, supplierID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&catalogDatamodel.Supplier{}).
		Where("id = ? AND user_id = ?", supplierID, userID).
		Count(&n).Error
	return n > 0, err
}
