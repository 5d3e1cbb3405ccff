package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal/activity"
	activityDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/activity"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

var _ activity.RepositoryAPI = (*ActivityRepository)(nil)

func (r *ActivityRepository) Create(ctx context.Context, row *activityDatamodel.ActivityLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *ActivityRepository) List(ctx context.Context, filter activity.ListFilter) ([]*activityDatamodel.ActivityLogRow, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Table("activity_logs a")
		if filter.UserID != nil {
			q = q.Where("a.user_id = ?", *filter.UserID)
		}
		if filter.Action != "" {
			q = q.Where("a.action = ?", filter.Action)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*activityDatamodel.ActivityLogRow
	err := scoped().
		Select("a.*, COALESCE(u.name, '') AS user_name").
		Joins("LEFT JOIN users u ON u.id = a.user_id").
		Order("a.created_at DESC, a.id DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Scan(&rows).Error
	return rows, total, err
}
