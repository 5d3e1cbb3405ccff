package supplier

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/backoffice/internal"
	catalogDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/catalog"
)

// RepositoryAPI stores suppliers. Every read and write is scoped to the
// owning user; Get returns nil, nil when the row is missing or belongs to
// someone else.
type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*catalogDatamodel.Supplier, int64, error)
	Get(ctx context.Context, userID, id int64) (*catalogDatamodel.Supplier, error)
	Create(ctx context.Context, s *catalogDatamodel.Supplier) error
	Update(ctx context.Context, s *catalogDatamodel.Supplier) error
	Delete(ctx context.Context, userID, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Supplier, int64, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, internal.NewInternalError("failed to list suppliers", err)
	}
	out := make([]*Supplier, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*Supplier, error) {
	row, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, userID int64, dto SupplierDTO) (*Supplier, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &catalogDatamodel.Supplier{UserID: userID}
	apply(row, dto)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create supplier", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, dto UpdateSupplierDTO) (*Supplier, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(row, dto)
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update supplier", err)
	}
	return FromDataModel(row), nil
}

// Delete removes the supplier. Products that referenced it keep existing
// without a supplier.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return internal.NewInternalError("failed to delete supplier", err)
	}
	return nil
}

func (s *Service) get(ctx context.Context, userID, id int64) (*catalogDatamodel.Supplier, error) {
	row, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get supplier", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("Supplier not found", internal.ErrCodeSupplierNotFound)
	}
	return row, nil
}

func apply(row *catalogDatamodel.Supplier, dto SupplierDTO) {
	row.Name = dto.Name
	row.ContactName = dto.ContactName
	row.Email = dto.Email
	row.Phone = dto.Phone
	row.Website = dto.Website
	row.Notes = dto.Notes
}

func applyUpdate(row *catalogDatamodel.Supplier, dto UpdateSupplierDTO) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&row.Name, dto.Name)
	set(&row.ContactName, dto.ContactName)
	set(&row.Email, dto.Email)
	set(&row.Phone, dto.Phone)
	set(&row.Website, dto.Website)
	set(&row.Notes, dto.Notes)
}
