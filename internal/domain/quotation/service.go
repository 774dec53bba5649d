// Package quotation provides the Quotation document service.
package quotation

import (
	"context"
	"fmt"
	"time"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
	"quotero/internal/core/numerator"
	"quotero/internal/core/security"
	"quotero/internal/core/tx"
	"quotero/internal/domain"
	"quotero/pkg/logger"
)

// Service provides business operations for quotations.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Quotation]
}

// NewService creates a new quotation service.
func NewService(repo Repository, numerator numerator.Generator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		numerator: numerator,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Quotation](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Quotation] {
	return s.hooks
}

// Create creates a new quotation. New quotations always start in draft.
func (s *Service) Create(ctx context.Context, doc *Quotation) error {
	// Run before-create hooks (for enrichment, validation, etc.)
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	doc.Status = StatusDraft
	doc.Invoiced = false

	// Validate
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	// Generate number if empty
	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, doc.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	// Create in transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}

		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	// Run after-create hooks
	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "quotation created",
		"id", doc.ID,
		"number", doc.Number,
		"total", doc.TotalAmount)

	return nil
}

// GetByID retrieves a quotation with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Quotation, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// GetByNumber retrieves a quotation by its document number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	doc, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update updates a quotation. The persisted state decides whether edits
// are allowed, not the state the caller sends.
func (s *Service) Update(ctx context.Context, doc *Quotation) error {
	// Run before-update hooks
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, doc.ID)
	if err != nil {
		return err
	}
	if err := current.CanModify(); err != nil {
		return err
	}

	// Status and invoice lock never change through Update
	doc.Status = current.Status
	doc.Invoiced = current.Invoiced

	// Validate
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	// Update in transaction
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}

	return nil
}

// ChangeStatus moves a quotation through its lifecycle.
// Regular users follow the lifecycle graph, admins may force any
// transition. Invoiced quotations are locked for everyone.
func (s *Service) ChangeStatus(ctx context.Context, docID id.ID, to Status, actor security.Actor) (*Quotation, error) {
	var doc *Quotation

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if doc.Invoiced {
			return apperror.NewBusinessRule(apperror.CodeQuotationInvoiced,
				"quotation is locked because an invoice has been issued for it").
				WithDetail("quotationId", docID.String())
		}

		from := doc.Status
		if err := CheckTransition(from, to, actor); err != nil {
			return err
		}

		doc.Status = to
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		overridden := !CanTransition(from, to)
		logger.Info(ctx, "quotation status changed",
			"id", docID,
			"number", doc.Number,
			"from", string(from),
			"to", string(to),
			"actor", actor.UserID,
			"override", overridden)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// MarkExpired sweeps sent quotations whose validity window ended before
// now and moves them to expired. Returns the number of documents updated.
func (s *Service) MarkExpired(ctx context.Context, now time.Time) (int, error) {
	var count int

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		docs, err := s.repo.ListExpirable(ctx, ExpiryCutoff(now))
		if err != nil {
			return fmt.Errorf("list expirable: %w", err)
		}

		for _, doc := range docs {
			doc.Status = StatusExpired
			if err := s.repo.Update(ctx, doc); err != nil {
				return fmt.Errorf("expire quotation %s: %w", doc.Number, err)
			}
			count++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.Info(ctx, "quotations expired", "count", count)
	}

	return count, nil
}

// Copy creates a new draft quotation from an existing one.
// The copy gets a fresh number and a fresh validity window.
func (s *Service) Copy(ctx context.Context, docID id.ID) (*Quotation, error) {
	source, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	clone := source.Copy()
	if err := s.Create(ctx, clone); err != nil {
		return nil, err
	}

	return clone, nil
}

// Delete soft-deletes a quotation. Invoiced quotations cannot be deleted.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if doc.Invoiced {
		return apperror.NewBusinessRule(apperror.CodeQuotationInvoiced,
			"quotation is locked because an invoice has been issued for it").
			WithDetail("quotationId", docID.String())
	}

	return s.repo.Delete(ctx, docID)
}

// List retrieves quotations with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quotation], error) {
	return s.repo.List(ctx, filter)
}
