package material

import (
	"context"
	"fmt"
	"time"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/tx"
	"stitchstock/internal/core/types"
	"stitchstock/pkg/logger"
)

// Service provides business operations for the material ledger.
type Service struct {
	repo       Repository
	references ReferenceChecker
	txManager  tx.Manager
}

// NewService creates a new material service.
func NewService(repo Repository, references ReferenceChecker, txManager tx.Manager) *Service {
	return &Service{
		repo:       repo,
		references: references,
		txManager:  txManager,
	}
}

// Create creates a new raw material. Item codes are globally unique.
func (s *Service) Create(ctx context.Context, m *RawMaterial) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByCode(ctx, m.Code); err == nil && existing != nil {
		return apperror.NewDuplicate("material", "item code", m.Code)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, m); err != nil {
			return fmt.Errorf("create material: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "material created", "id", m.ID, "item_code", m.Code)
	return nil
}

// GetByID retrieves a material with its batch history.
func (s *Service) GetByID(ctx context.Context, materialID id.ID) (*RawMaterial, error) {
	m, err := s.repo.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}

	batches, err := s.repo.GetBatches(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("get batches: %w", err)
	}
	m.Batches = batches

	return m, nil
}

// Update updates material master data (name, unit). Stock fields are not
// writable here; only batch receipts and the consumption pipeline move stock.
func (s *Service) Update(ctx context.Context, m *RawMaterial) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, m); err != nil {
			return fmt.Errorf("update material: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a material. Rejected while any product BOM references it.
func (s *Service) Delete(ctx context.Context, materialID id.ID) error {
	if _, err := s.repo.GetByID(ctx, materialID); err != nil {
		return err
	}

	styles, err := s.references.StylesUsingMaterial(ctx, materialID)
	if err != nil {
		return fmt.Errorf("check references: %w", err)
	}
	if len(styles) > 0 {
		return apperror.NewMaterialInUse(materialID.String(), styles)
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, materialID, true)
	})
}

// ReceiveBatch records a stock receipt: appends a batch row and increments
// current stock in the same transaction.
func (s *Service) ReceiveBatch(ctx context.Context, materialID id.ID, qty types.Quantity, remarks string) (*RawMaterial, error) {
	m, err := s.repo.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}

	batch, err := m.NewBatch(qty, remarks)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.AddBatch(ctx, batch); err != nil {
			return fmt.Errorf("add batch: %w", err)
		}
		if err := s.repo.AdjustStock(ctx, materialID, qty, time.Now().UTC()); err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "batch received",
		"material_id", materialID,
		"quantity", qty.String(),
	)

	return s.GetByID(ctx, materialID)
}

// List retrieves materials with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	return s.repo.List(ctx, filter)
}
