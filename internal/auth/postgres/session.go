package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/backoffice/internal/auth"
	sessionDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/session"
)

// SessionStore keeps sessions in the sessions table so every replica sees
// the same logins.
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*auth.Session, error) {
	var row sessionDatamodel.Session
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &auth.Session{ID: row.ID, UserID: row.UserID, ExpiresAt: row.ExpiresAt}, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *auth.Session) error {
	row := sessionDatamodel.Session{
		ID:        sess.ID,
		UserID:    sess.UserID,
		ExpiresAt: sess.ExpiresAt,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at", "updated_at"}),
	}).Create(&row).Error
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&sessionDatamodel.Session{}).Error
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&sessionDatamodel.Session{}).Error
}

func (s *SessionStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&sessionDatamodel.Session{})
	return res.RowsAffected, res.Error
}
