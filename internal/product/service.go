package product

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/backoffice/internal"
	catalogDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/catalog"
)

// RepositoryAPI stores products scoped to their owner. Get returns nil, nil
// for rows that are missing or owned by another user.
type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*catalogDatamodel.Product, int64, error)
	Get(ctx context.Context, userID, id int64) (*catalogDatamodel.Product, error)
	Create(ctx context.Context, p *catalogDatamodel.Product) error
	Update(ctx context.Context, p *catalogDatamodel.Product) error
	Delete(ctx context.Context, userID, id int64) error
	OwnsSupplier(ctx context.Context, userID, supplierID int64) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, int64, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, internal.NewInternalError("failed to list products", err)
	}
	out := make([]*Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*Product, error) {
	row, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, userID int64, dto ProductDTO) (*Product, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, userID, dto.SupplierID); err != nil {
		return nil, err
	}

	row := &catalogDatamodel.Product{UserID: userID}
	apply(row, dto)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create product", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, dto UpdateProductDTO) (*Product, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, userID, dto.SupplierID); err != nil {
		return nil, err
	}

	row, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(row, dto)
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update product", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return internal.NewInternalError("failed to delete product", err)
	}
	return nil
}

// checkSupplier reports whether a referenced supplier belongs to the caller.
func (s *Service) checkSupplier(ctx context.Context, userID int64, supplierID *int64) error {
	if supplierID == nil || *supplierID == 0 {
		return nil
	}

	ok, err := s.repo.OwnsSupplier(ctx, userID, *supplierID)
	if err != nil {
		return internal.NewInternalError("failed to check supplier", err)
	}
	if !ok {
		return internal.NewValidationFieldError("supplierId", "supplier not found", internal.ErrCodeSupplierNotFound)
	}
	return nil
}

func (s *Service) get(ctx context.Context, userID, id int64) (*catalogDatamodel.Product, error) {
	row, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get product", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("Product not found", internal.ErrCodeProductNotFound)
	}
	return row, nil
}

func apply(row *catalogDatamodel.Product, dto ProductDTO) {
	row.Name = dto.Name
	row.SKU = dto.SKU
	row.CostCents = dto.CostCents
	row.PriceCents = dto.PriceCents
	row.SupplierID = dto.SupplierID
	row.Notes = dto.Notes
}

func applyUpdate(row *catalogDatamodel.Product, dto UpdateProductDTO) {
	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.SKU != nil {
		row.SKU = *dto.SKU
	}
	if dto.CostCents != nil {
		row.CostCents = *dto.CostCents
	}
	if dto.PriceCents != nil {
		row.PriceCents = *dto.PriceCents
	}
	if dto.SupplierID != nil {
		row.SupplierID = dto.SupplierID
		if *dto.SupplierID == 0 {
			row.SupplierID = nil
		}
	}
	if dto.Notes != nil {
		row.Notes = *dto.Notes
	}
}
