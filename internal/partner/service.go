package partner

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/backoffice/internal"
	partnerDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/partner"
	"github.com/frahmantamala/backoffice/internal/core/events"
)

// RepositoryAPI is the partner directory storage. Single-row getters return
// nil, nil when the row does not exist.
type RepositoryAPI interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]*partnerDatamodel.PartnerCategory, error)
	GetCategory(ctx context.Context, id int64) (*partnerDatamodel.PartnerCategory, error)
	CreateCategory(ctx context.Context, c *partnerDatamodel.PartnerCategory) error
	UpdateCategory(ctx context.Context, c *partnerDatamodel.PartnerCategory) error
	DeleteCategory(ctx context.Context, id int64) error

	ListPartners(ctx context.Context, filter ListFilter) ([]*partnerDatamodel.Partner, int64, error)
	GetPartner(ctx context.Context, id int64) (*partnerDatamodel.Partner, error)
	CreatePartner(ctx context.Context, p *partnerDatamodel.Partner) error
	UpdatePartner(ctx context.Context, p *partnerDatamodel.Partner) error
	DeletePartner(ctx context.Context, id int64) error

	ListContacts(ctx context.Context, partnerID int64) ([]*partnerDatamodel.PartnerContact, error)
	GetContact(ctx context.Context, id int64) (*partnerDatamodel.PartnerContact, error)
	CreateContact(ctx context.Context, c *partnerDatamodel.PartnerContact) error
	DeleteContact(ctx context.Context, id int64) error

	ListReviews(ctx context.Context, partnerID int64) ([]*partnerDatamodel.ReviewRow, error)
	// UpsertReview writes the caller's review and recomputes the partner's
	// rating in the same transaction.
	UpsertReview(ctx context.Context, r *partnerDatamodel.PartnerReview) (created bool, err error)

	ListCommentRows(ctx context.Context, partnerID int64) ([]partnerDatamodel.CommentRow, error)
	GetComment(ctx context.Context, id int64) (*partnerDatamodel.PartnerComment, error)
	CreateComment(ctx context.Context, c *partnerDatamodel.PartnerComment) error
	IncrementLikes(ctx context.Context, id int64) (likes int64, found bool, err error)
	DeleteCommentSubtree(ctx context.Context, id int64) (int64, error)
}

// Actor is the caller of a mutating operation.
type Actor struct {
	ID        int64
	CanManage bool
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

func (s *Service) ListCategories(ctx context.Context, activeOnly bool) ([]*Category, error) {
	rows, err := s.repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, internal.NewInternalError("failed to list categories", err)
	}
	out := make([]*Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategoryFromDataModel(row))
	}
	return out, nil
}

func (s *Service) CreateCategory(ctx context.Context, dto CategoryDTO) (*Category, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &partnerDatamodel.PartnerCategory{
		Name:        dto.Name,
		Description: dto.Description,
		Icon:        dto.Icon,
		IsActive:    dto.IsActive == nil || *dto.IsActive,
	}
	if err := s.repo.CreateCategory(ctx, row); err != nil {
		return nil, err
	}
	return CategoryFromDataModel(row), nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, dto UpdateCategoryDTO) (*Category, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.category(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.Icon != nil {
		row.Icon = *dto.Icon
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}
	if err := s.repo.UpdateCategory(ctx, row); err != nil {
		return nil, err
	}
	return CategoryFromDataModel(row), nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.category(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete category", err)
	}
	return nil
}

func (s *Service) ListPartners(ctx context.Context, filter ListFilter) ([]*Partner, int64, error) {
	rows, total, err := s.repo.ListPartners(ctx, filter)
	if err != nil {
		return nil, 0, internal.NewInternalError("failed to list partners", err)
	}
	out := make([]*Partner, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

// GetPartner returns the partner with its contacts and reviews. Partners
// that are not active are hidden unless includeInactive is set.
func (s *Service) GetPartner(ctx context.Context, id int64, includeInactive bool) (*Partner, error) {
	row, err := s.partner(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includeInactive && row.Status != partnerDatamodel.StatusActive {
		return nil, internal.NewNotFoundError("Partner not found", internal.ErrCodePartnerNotFound)
	}

	p := FromDataModel(row)

	contacts, err := s.repo.ListContacts(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to list contacts", err)
	}
	p.Contacts = make([]*Contact, 0, len(contacts))
	for _, c := range contacts {
		p.Contacts = append(p.Contacts, ContactFromDataModel(c))
	}

	reviews, err := s.repo.ListReviews(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to list reviews", err)
	}
	p.Reviews = make([]*Review, 0, len(reviews))
	for _, r := range reviews {
		p.Reviews = append(p.Reviews, reviewFromRow(r))
	}
	return p, nil
}

func (s *Service) CreatePartner(ctx context.Context, actor Actor, dto PartnerDTO) (*Partner, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, dto.CategoryID); err != nil {
		return nil, err
	}

	row := &partnerDatamodel.Partner{}
	applyPartnerDTO(row, dto)
	if row.Status == "" {
		row.Status = partnerDatamodel.StatusActive
	}
	if err := s.repo.CreatePartner(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create partner", err)
	}

	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypePartnerCreated, actor.ID, "partner", strconv.FormatInt(row.ID, 10), map[string]interface{}{
		"name": row.Name,
	}))
	return FromDataModel(row), nil
}

func (s *Service) UpdatePartner(ctx context.Context, id int64, dto UpdatePartnerDTO) (*Partner, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.CategoryID != nil && *dto.CategoryID != 0 {
		if err := s.checkCategory(ctx, dto.CategoryID); err != nil {
			return nil, err
		}
	}

	row, err := s.partner(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPartnerUpdate(row, dto)
	if err := s.repo.UpdatePartner(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update partner", err)
	}
	return FromDataModel(row), nil
}

// DeletePartner removes the partner with its contacts, reviews and comments.
func (s *Service) DeletePartner(ctx context.Context, actor Actor, id int64) error {
	row, err := s.partner(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePartner(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete partner", err)
	}

	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypePartnerDeleted, actor.ID, "partner", strconv.FormatInt(id, 10), map[string]interface{}{
		"name": row.Name,
	}))
	return nil
}

func (s *Service) AddContact(ctx context.Context, partnerID int64, dto ContactDTO) (*Contact, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.partner(ctx, partnerID); err != nil {
		return nil, err
	}

	row := &partnerDatamodel.PartnerContact{
		PartnerID: partnerID,
		Name:      dto.Name,
		Role:      dto.Role,
		Email:     dto.Email,
		Phone:     dto.Phone,
	}
	if err := s.repo.CreateContact(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create contact", err)
	}
	return ContactFromDataModel(row), nil
}

func (s *Service) RemoveContact(ctx context.Context, partnerID, contactID int64) error {
	c, err := s.repo.GetContact(ctx, contactID)
	if err != nil {
		return internal.NewInternalError("failed to get contact", err)
	}
	if c == nil || c.PartnerID != partnerID {
		return internal.NewNotFoundError("Contact not found", internal.ErrCodeContactNotFound)
	}
	if err := s.repo.DeleteContact(ctx, contactID); err != nil {
		return internal.NewInternalError("failed to delete contact", err)
	}
	return nil
}

// Review records the caller's rating. A second review by the same user
// replaces the first.
func (s *Service) Review(ctx context.Context, actor Actor, partnerID int64, dto ReviewDTO) (*ReviewResponse, bool, error) {
	if err := dto.Validate(); err != nil {
		return nil, false, err
	}
	p, err := s.partner(ctx, partnerID)
	if err != nil {
		return nil, false, err
	}
	if p.Status != partnerDatamodel.StatusActive {
		return nil, false, internal.NewNotFoundError("Partner not found", internal.ErrCodePartnerNotFound)
	}

	row := &partnerDatamodel.PartnerReview{
		PartnerID: partnerID,
		UserID:    actor.ID,
		Rating:    dto.Rating,
		Comment:   dto.Comment,
	}
	created, err := s.repo.UpsertReview(ctx, row)
	if err != nil {
		return nil, false, internal.NewInternalError("failed to save review", err)
	}

	updated, err := s.partner(ctx, partnerID)
	if err != nil {
		return nil, false, err
	}

	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypePartnerReviewed, actor.ID, "partner", strconv.FormatInt(partnerID, 10), map[string]interface{}{
		"rating":  dto.Rating,
		"created": created,
	}))

	return &ReviewResponse{
		Review:        reviewFromRow(&partnerDatamodel.ReviewRow{PartnerReview: *row}),
		AverageRating: updated.AverageRating,
		ReviewCount:   updated.ReviewCount,
	}, created, nil
}

// Comments returns the partner's discussion as a tree.
func (s *Service) Comments(ctx context.Context, partnerID int64) ([]*Comment, error) {
	if _, err := s.partner(ctx, partnerID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListCommentRows(ctx, partnerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load comments", err)
	}
	return BuildTree(rows), nil
}

// AddComment posts a top-level comment or a reply. A reply's parent must
// belong to the same partner.
func (s *Service) AddComment(ctx context.Context, actor Actor, partnerID int64, dto CommentDTO) (*Comment, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.partner(ctx, partnerID); err != nil {
		return nil, err
	}

	var (
		depth int
		err   error
	)
	if dto.ParentID != nil {
		var parent *partnerDatamodel.PartnerComment
		parent, err = s.repo.GetComment(ctx, *dto.ParentID)
		if err != nil {
			return nil, internal.NewInternalError("failed to get comment", err)
		}
		if parent == nil || parent.PartnerID != partnerID {
			return nil, internal.NewValidationFieldError("parentId", "parent comment does not belong to this partner", internal.ErrCodeCommentNotFound)
		}
		if depth, err = s.depthOf(ctx, parent); err != nil {
			return nil, err
		}
		depth++
	}

	row := &partnerDatamodel.PartnerComment{
		PartnerID: partnerID,
		UserID:    actor.ID,
		ParentID:  dto.ParentID,
		Content:   dto.Content,
	}
	if err := s.repo.CreateComment(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create comment", err)
	}

	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeCommentCreated, actor.ID, "partner_comment", strconv.FormatInt(row.ID, 10), map[string]interface{}{
		"partnerId": partnerID,
		"reply":     dto.ParentID != nil,
	}))

	c := CommentFromDataModel(row)
	c.Depth = depth
	return c, nil
}

func (s *Service) LikeComment(ctx context.Context, id int64) (*LikeResponse, error) {
	likes, found, err := s.repo.IncrementLikes(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to like comment", err)
	}
	if !found {
		return nil, internal.NewNotFoundError("Comment not found", internal.ErrCodeCommentNotFound)
	}
	return &LikeResponse{ID: id, Likes: likes}, nil
}

// DeleteComment removes a comment and all of its replies. Only the author
// or a partner manager may do it.
func (s *Service) DeleteComment(ctx context.Context, actor Actor, id int64) error {
	c, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to get comment", err)
	}
	if c == nil {
		return internal.NewNotFoundError("Comment not found", internal.ErrCodeCommentNotFound)
	}
	if c.UserID != actor.ID && !actor.CanManage {
		return internal.NewForbiddenError("Only the author can delete this comment", internal.ErrCodeInsufficientRole)
	}

	n, err := s.repo.DeleteCommentSubtree(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete comment", err)
	}

	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeCommentDeleted, actor.ID, "partner_comment", strconv.FormatInt(id, 10), map[string]interface{}{
		"partnerId": c.PartnerID,
		"removed":   n,
	}))
	return nil
}

func (s *Service) depthOf(ctx context.Context, c *partnerDatamodel.PartnerComment) (int, error) {
	depth := 0
	for c.ParentID != nil {
		parent, err := s.repo.GetComment(ctx, *c.ParentID)
		if err != nil {
			return 0, internal.NewInternalError("failed to get comment", err)
		}
		if parent == nil {
			break
		}
		c = parent
		depth++
	}
	return depth, nil
}

func (s *Service) partner(ctx context.Context, id int64) (*partnerDatamodel.Partner, error) {
	row, err := s.repo.GetPartner(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get partner", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("Partner not found", internal.ErrCodePartnerNotFound)
	}
	return row, nil
}

func (s *Service) category(ctx context.Context, id int64) (*partnerDatamodel.PartnerCategory, error) {
	row, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get category", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("Category not found", internal.ErrCodeCategoryNotFound)
	}
	return row, nil
}

func (s *Service) checkCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.category(ctx, *id)
	return err
}

func applyPartnerDTO(row *partnerDatamodel.Partner, dto PartnerDTO) {
	row.Name = dto.Name
	row.CategoryID = dto.CategoryID
	row.Description = dto.Description
	row.Website = dto.Website
	row.LogoURL = dto.LogoURL
	row.IsVerified = dto.IsVerified
	row.Status = dto.Status
}

func applyPartnerUpdate(row *partnerDatamodel.Partner, dto UpdatePartnerDTO) {
	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.CategoryID != nil {
		row.CategoryID = dto.CategoryID
		if *dto.CategoryID == 0 {
			row.CategoryID = nil
		}
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.Website != nil {
		row.Website = *dto.Website
	}
	if dto.LogoURL != nil {
		row.LogoURL = *dto.LogoURL
	}
	if dto.IsVerified != nil {
		row.IsVerified = *dto.IsVerified
	}
	if dto.Status != nil {
		row.Status = *dto.Status
	}
}

func reviewFromRow(r *partnerDatamodel.ReviewRow) *Review {
	return &Review{
		ID:         r.ID,
		PartnerID:  r.PartnerID,
		UserID:     r.UserID,
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
