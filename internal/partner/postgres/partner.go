package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal"
	partnerDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/partner"
	"github.com/frahmantamala/backoffice/internal/partner"
)

// PartnerRepository uses gorm for row access and sqlx for the recursive
// comment queries.
type PartnerRepository struct {
	db *gorm.DB
	sx *sqlx.DB
}

func NewPartnerRepository(db *gorm.DB, sx *sqlx.DB) *PartnerRepository {
	return &PartnerRepository{db: db, sx: sx}
}

var _ partner.RepositoryAPI = (*PartnerRepository)(nil)

func (r *PartnerRepository) ListCategories(ctx context.Context, activeOnly bool) ([]*partnerDatamodel.PartnerCategory, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []*partnerDatamodel.PartnerCategory
	err := q.Find(&rows).Error
	return rows, err
}

func (r *PartnerRepository) GetCategory(ctx context.Context, id int64) (*partnerDatamodel.PartnerCategory, error) {
	var c partnerDatamodel.PartnerCategory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &c, nil
}

func (r *PartnerRepository) CreateCategory(ctx context.Context, c *partnerDatamodel.PartnerCategory) error {
	return categoryWriteError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *PartnerRepository) UpdateCategory(ctx context.Context, c *partnerDatamodel.PartnerCategory) error {
	return categoryWriteError(r.db.WithContext(ctx).Save(c).Error)
}

func categoryWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("A category with this name already exists", internal.ErrCodeCategoryExists)
	}
	if err != nil {
		return internal.NewInternalError("failed to save category", err)
	}
	return nil
}

// DeleteCategory detaches the category's partners before removing it.
func (r *PartnerRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&partnerDatamodel.Partner{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&partnerDatamodel.PartnerCategory{}).Error
	})
}

func (r *PartnerRepository) ListPartners(ctx context.Context, filter partner.ListFilter) ([]*partnerDatamodel.Partner, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&partnerDatamodel.Partner{})
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.CategoryID != nil {
			q = q.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.Verified != nil {
			q = q.Where("is_verified = ?", *filter.Verified)
		}
		if filter.Search != "" {
			like := "%" + strings.ToLower(filter.Search) + "%"
			q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*partnerDatamodel.Partner
	err := scoped().
		Order("is_verified DESC, average_rating DESC, name ASC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *PartnerRepository) GetPartner(ctx context.Context, id int64) (*partnerDatamodel.Partner, error) {
	var p partnerDatamodel.Partner
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &p, nil
}

func (r *PartnerRepository) CreatePartner(ctx context.Context, p *partnerDatamodel.Partner) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PartnerRepository) UpdatePartner(ctx context.Context, p *partnerDatamodel.Partner) error {
	return r.db.WithContext(ctx).Model(p).Select(
		"name", "category_id", "description", "website", "logo_url", "is_verified", "status", "updated_at",
	).Updates(p).Error
}

// DeletePartner removes the partner and everything hanging off it.
func (r *PartnerRepository) DeletePartner(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&partnerDatamodel.PartnerComment{},
			&partnerDatamodel.PartnerReview{},
			&partnerDatamodel.PartnerContact{},
		} {
			if err := tx.Where("partner_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&partnerDatamodel.Partner{}).Error
	})
}

func (r *PartnerRepository) ListContacts(ctx context.Context, partnerID int64) ([]*partnerDatamodel.PartnerContact, error) {
	var rows []*partnerDatamodel.PartnerContact
	err := r.db.WithContext(ctx).Where("partner_id = ?", partnerID).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *PartnerRepository) GetContact(ctx context.Context, id int64) (*partnerDatamodel.PartnerContact, error) {
	var c partnerDatamodel.PartnerContact
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &c, nil
}

func (r *PartnerRepository) CreateContact(ctx context.Context, c *partnerDatamodel.PartnerContact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *PartnerRepository) DeleteContact(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&partnerDatamodel.PartnerContact{}).Error
}

func (r *PartnerRepository) ListReviews(ctx context.Context, partnerID int64) ([]*partnerDatamodel.ReviewRow, error) {
	var rows []*partnerDatamodel.ReviewRow
	err := r.db.WithContext(ctx).Table("partner_reviews r").
		Select("r.*, COALESCE(u.name, '') AS author_name").
		Joins("LEFT JOIN users u ON u.id = r.user_id").
		Where("r.partner_id = ?", partnerID).
		Order("r.created_at DESC, r.id DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *PartnerRepository) UpsertReview(ctx context.Context, review *partnerDatamodel.PartnerReview) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing partnerDatamodel.PartnerReview
		err := tx.Where("partner_id = ? AND user_id = ?", review.PartnerID, review.UserID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			if err := tx.Create(review).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			existing.Rating = review.Rating
			existing.Comment = review.Comment
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			*review = existing
		}

		return tx.Exec(`UPDATE partners SET
			average_rating = COALESCE((SELECT AVG(rating) FROM partner_reviews WHERE partner_id = ?), 0),
			review_count = (SELECT COUNT(*) FROM partner_reviews WHERE partner_id = ?)
			WHERE id = ?`, review.PartnerID, review.PartnerID, review.PartnerID).Error
	})
	return created, err
}

func notFoundAsNil(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
