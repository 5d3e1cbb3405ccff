package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	partnerDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/partner"
)

// threadQuery collects every comment reachable from the partner's top-level
// comments, tagged with its depth. Every row has exactly one parent and the
// walk starts at parent_id IS NULL, so it terminates without a depth bound.
// The CTE only carries ids so the final select reads typed columns straight
// from partner_comments.
const threadQuery = `
WITH RECURSIVE thread AS (
	SELECT id, 0 AS depth
	FROM partner_comments
	WHERE partner_id = ? AND parent_id IS NULL
	UNION ALL
	SELECT c.id, t.depth + 1
	FROM partner_comments c
	JOIN thread t ON c.parent_id = t.id
)
SELECT c.id, c.partner_id, c.user_id, c.parent_id, c.content, c.likes,
       c.created_at, c.updated_at, t.depth, COALESCE(u.name, '') AS author_name
FROM thread t
JOIN partner_comments c ON c.id = t.id
LEFT JOIN users u ON u.id = c.user_id
ORDER BY t.depth, c.created_at DESC, c.id DESC`

const subtreeDelete = `
DELETE FROM partner_comments WHERE id IN (
	WITH RECURSIVE subtree AS (
		SELECT id FROM partner_comments WHERE id = ?
		UNION
		SELECT c.id FROM partner_comments c JOIN subtree s ON c.parent_id = s.id
	)
	SELECT id FROM subtree
)`

func (r *PartnerRepository) ListCommentRows(ctx context.Context, partnerID int64) ([]partnerDatamodel.CommentRow, error) {
	var rows []partnerDatamodel.CommentRow
	if err := r.sx.SelectContext(ctx, &rows, r.sx.Rebind(threadQuery), partnerID); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PartnerRepository) GetComment(ctx context.Context, id int64) (*partnerDatamodel.PartnerComment, error) {
	var c partnerDatamodel.PartnerComment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &c, nil
}

func (r *PartnerRepository) CreateComment(ctx context.Context, c *partnerDatamodel.PartnerComment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// IncrementLikes bumps the counter in place so concurrent likes never lose
// an update.
func (r *PartnerRepository) IncrementLikes(ctx context.Context, id int64) (int64, bool, error) {
	var likes []int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&partnerDatamodel.PartnerComment{}).Where("id = ?", id).
			UpdateColumn("likes", gorm.Expr("likes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&partnerDatamodel.PartnerComment{}).Where("id = ?", id).Pluck("likes", &likes).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil || len(likes) == 0 {
		return 0, false, err
	}
	return likes[0], true, nil
}

// DeleteCommentSubtree removes the comment and all replies below it.
func (r *PartnerRepository) DeleteCommentSubtree(ctx context.Context, id int64) (int64, error) {
	res, err := r.sx.ExecContext(ctx, r.sx.Rebind(subtreeDelete), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
