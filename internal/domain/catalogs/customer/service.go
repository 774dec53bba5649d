package customer

import (
	"context"
	"fmt"
	"time"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
	"quotero/internal/core/numerator"
	"quotero/internal/core/tx"
	"quotero/internal/domain"
)

// CodePrefix for generated customer codes.
const CodePrefix = "CUS"

// Service provides business logic for the Customer catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Customer] // Embedded for delegation
	repo                              Repository
	numerator                         numerator.Generator
}

// NewService creates a new Customer service.
func NewService(
	repo Repository,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	// Create base service
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numerator,
		EntityName: "customer",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	// Register hooks for entity-specific logic
	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, c *Customer) error {
	// Generate code if not provided
	if c.Code == "" {
		cfg := numerator.DefaultConfig(CodePrefix)
		cfg.ResetPeriod = "never"
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = code
	} else {
		exists, err := s.repo.ExistsByCode(ctx, c.Code)
		if err != nil {
			return fmt.Errorf("check code: %w", err)
		}
		if exists {
			return apperror.NewConflict("customer with this code already exists").
				WithDetail("code", c.Code)
		}
	}

	if err := s.checkParentGroup(ctx, c); err != nil {
		return err
	}

	return s.checkTaxIDUnique(ctx, c)
}

// prepareForUpdate handles uniqueness checks before update.
func (s *Service) prepareForUpdate(ctx context.Context, c *Customer) error {
	if err := s.checkParentGroup(ctx, c); err != nil {
		return err
	}

	return s.checkTaxIDUnique(ctx, c)
}

// --- Entity-specific methods (not in base CatalogService) ---

// FindByTaxID retrieves customer by tax ID.
func (s *Service) FindByTaxID(ctx context.Context, taxID string) (*Customer, error) {
	return s.repo.FindByTaxID(ctx, taxID)
}

// checkParentGroup ensures the parent reference points at an existing group.
func (s *Service) checkParentGroup(ctx context.Context, c *Customer) error {
	if c.IsRoot() {
		return nil
	}

	parentID, err := id.Parse(*c.ParentID)
	if err != nil {
		return apperror.NewValidation("invalid parent id").
			WithDetail("parentId", *c.ParentID)
	}
	if parentID == c.ID {
		return apperror.NewValidation("customer cannot be its own parent").
			WithDetail("parentId", *c.ParentID)
	}

	parent, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("parent group not found").
				WithDetail("parentId", *c.ParentID)
		}
		return err
	}
	if !parent.IsFolder {
		return apperror.NewValidation("parent must be a group").
			WithDetail("parentId", *c.ParentID)
	}

	return nil
}

func (s *Service) checkTaxIDUnique(ctx context.Context, c *Customer) error {
	if c.TaxID == nil || *c.TaxID == "" {
		return nil
	}

	exists, err := s.checkTaxIDExists(ctx, *c.TaxID, c.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflict("customer with this tax ID already exists").
			WithDetail("taxId", *c.TaxID)
	}
	return nil
}

// checkTaxIDExists checks if the tax ID is already used by another customer.
func (s *Service) checkTaxIDExists(ctx context.Context, taxID string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByTaxID(ctx, taxID)
	if err != nil {
		// Not found is OK; other errors must be propagated (DB errors, timeouts, etc.).
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	// If found and it's a different record
	return existing.ID != excludeID, nil
}
