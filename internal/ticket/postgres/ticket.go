package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	ticketDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/ticket"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/ticket"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

var _ ticket.RepositoryAPI = (*TicketRepository)(nil)

func (r *TicketRepository) List(ctx context.Context, filter ticket.ListFilter) ([]*ticketDatamodel.Ticket, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&ticketDatamodel.Ticket{})
		if filter.UserID != nil {
			q = q.Where("user_id = ?", *filter.UserID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Priority != "" {
			q = q.Where("priority = ?", filter.Priority)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*ticketDatamodel.Ticket
	err := scoped().Order("created_at DESC, id DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&rows).Error
	return rows, total, err
}

func (r *TicketRepository) Get(ctx context.Context, id int64) (*ticketDatamodel.Ticket, error) {
	var t ticketDatamodel.Ticket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepository) Create(ctx context.Context, t *ticketDatamodel.Ticket) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TicketRepository) Update(ctx context.Context, t *ticketDatamodel.Ticket) error {
	return r.db.WithContext(ctx).Model(t).Select(
		"assignee_id", "subject", "description", "category", "priority", "status", "resolved_at", "updated_at",
	).Updates(t).Error
}

func (r *TicketRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&ticketDatamodel.Ticket{}).Error
}

func (r *TicketRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}
