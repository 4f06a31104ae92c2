package product

import (
	"context"
	"fmt"
	"time"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/tx"
	"stitchstock/internal/domain/events"
	"stitchstock/pkg/logger"
)

// MaterialChecker verifies that referenced materials exist.
type MaterialChecker interface {
	Exists(ctx context.Context, materialID id.ID) (bool, error)
}

// Service provides business operations for products and their BOMs.
type Service struct {
	repo      Repository
	materials MaterialChecker
	publisher events.WastagePublisher
	txManager tx.Manager
}

// NewService creates a new product service.
func NewService(repo Repository, materials MaterialChecker, publisher events.WastagePublisher, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		materials: materials,
		publisher: publisher,
		txManager: txManager,
	}
}

func (s *Service) validateMaterialRefs(ctx context.Context, p *Product) error {
	for i, req := range p.MaterialsRequired {
		ok, err := s.materials.Exists(ctx, req.MaterialID)
		if err != nil {
			return fmt.Errorf("check material %s: %w", req.MaterialID, err)
		}
		if !ok {
			return apperror.NewValidation("referenced material does not exist").
				WithDetail("lineNo", i+1).
				WithDetail("materialId", req.MaterialID.String())
		}
	}
	return nil
}

// Create creates a new product with its BOM. Style numbers are unique.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByCode(ctx, p.Code); err == nil && existing != nil {
		return apperror.NewDuplicate("product", "style number", p.Code)
	}

	if err := s.validateMaterialRefs(ctx, p); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if err := s.repo.SaveRequirements(ctx, p.ID, p.MaterialsRequired); err != nil {
			return fmt.Errorf("save requirements: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "product created", "id", p.ID, "style_number", p.Code)
	return nil
}

// GetByID retrieves a product with its BOM.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	reqs, err := s.repo.GetRequirements(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get requirements: %w", err)
	}
	p.MaterialsRequired = reqs

	return p, nil
}

// Update replaces product master data and BOM lines.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.validateMaterialRefs(ctx, p); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if err := s.repo.SaveRequirements(ctx, p.ID, p.MaterialsRequired); err != nil {
			return fmt.Errorf("save requirements: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a product.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, productID, true)
	})
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	return s.repo.List(ctx, filter)
}

// UpdateWastage edits the BOM wastage percentages and remarks, then
// publishes ProductWastageChanged so open orders get their standard
// wastage recomputed by the projector.
func (s *Service) UpdateWastage(ctx context.Context, productID id.ID, updates []WastageUpdate, overallRemarks string) (*Product, error) {
	if len(updates) == 0 {
		return nil, apperror.NewValidation("at least one material wastage entry is required")
	}

	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	changed, err := p.ApplyWastageUpdates(updates)
	if err != nil {
		return nil, err
	}
	if overallRemarks != "" && overallRemarks != p.WastageRemarks {
		p.WastageRemarks = overallRemarks
		changed = true
	}

	if !changed {
		return p, nil
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if err := s.repo.SaveRequirements(ctx, p.ID, p.MaterialsRequired); err != nil {
			return fmt.Errorf("save requirements: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Published after commit: the projector reads the stored BOM.
	s.publisher.PublishProductWastageChanged(ctx, events.ProductWastageChanged{
		ProductID:  productID,
		OccurredAt: time.Now().UTC(),
	})

	logger.Info(ctx, "product wastage updated",
		"product_id", productID,
		"lines", len(updates),
	)

	return p, nil
}
