// Package invoice provides the Invoice derivation and payment service.
package invoice

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
	"quotero/internal/domain/quotation"
	"quotero/pkg/logger"
)

// Service provides business operations for invoices.
// Derivation needs write access to the source quotation, so the service
// holds both repositories and runs the whole flow in one transaction.
type Service struct {
	repo          Repository
	quotationRepo quotation.Repository
	numerator     numerator.Generator
	txManager     tx.Manager
	hooks         *domain.HookRegistry[*Invoice]
}

// NewService creates a new invoice service.
func NewService(
	repo Repository,
	quotationRepo quotation.Repository,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:          repo,
		quotationRepo: quotationRepo,
		numerator:     numerator,
		txManager:     txManager,
		hooks:         domain.NewHookRegistry[*Invoice](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

// DeriveOptions controls invoice derivation.
type DeriveOptions struct {
	// Date is the invoice date. Zero means today.
	Date time.Time

	// DueDate is the payment deadline. Zero means Date plus DefaultDueDays.
	DueDate time.Time

	// ApplyDiscount keeps the quotation discounts on the invoice.
	// When false the customer is billed at gross prices while the tax
	// amounts stay exactly as quoted.
	ApplyDiscount bool

	// Notes for the new invoice.
	Notes string
}

// Derive creates the invoice for an accepted quotation.
//
// The source quotation is locked for the duration of the transaction, so
// two concurrent calls for the same quotation cannot both succeed: the
// second one sees the invoice lock and fails with a state error. The
// quotation itself becomes read-only once the invoice exists.
func (s *Service) Derive(ctx context.Context, quotationID id.ID, opts DeriveOptions, actor security.Actor) (*Invoice, error) {
	if !actor.HasRole(security.RoleManager) {
		return nil, apperror.NewForbidden("deriving invoices requires the manager role")
	}

	var inv *Invoice

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.quotationRepo.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}

		if q.Invoiced {
			return apperror.NewBusinessRule(apperror.CodeQuotationInvoiced,
				"an invoice has already been issued for this quotation").
				WithDetail("quotationId", quotationID.String())
		}

		if q.Status != quotation.StatusAccepted {
			return apperror.NewBusinessRule(apperror.CodeQuotationNotAccepted,
				"only accepted quotations can be invoiced").
				WithDetail("quotationId", quotationID.String()).
				WithDetail("status", string(q.Status))
		}

		lines, err := s.quotationRepo.GetLines(ctx, quotationID)
		if err != nil {
			return fmt.Errorf("get quotation lines: %w", err)
		}
		q.Lines = lines

		inv = FromQuotation(q, opts.ApplyDiscount)
		if !opts.Date.IsZero() {
			inv.Date = opts.Date
			inv.DueDate = opts.Date.AddDate(0, 0, DefaultDueDays)
		}
		if !opts.DueDate.IsZero() {
			inv.DueDate = opts.DueDate
		}
		inv.Notes = opts.Notes
		inv.SetCreatedBy(actor.UserID)

		if err := inv.Validate(ctx); err != nil {
			return err
		}

		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, inv.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		inv.Number = number

		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := s.repo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		// Lock the source quotation
		q.Invoiced = true
		if err := s.quotationRepo.Update(ctx, q); err != nil {
			return fmt.Errorf("lock quotation: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterCreate(ctx, inv); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "invoice derived",
		"id", inv.ID,
		"number", inv.Number,
		"quotationId", quotationID,
		"applyDiscount", opts.ApplyDiscount,
		"total", inv.TotalAmount)

	return inv, nil
}

// GetByID retrieves an invoice with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
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

// GetByQuotation returns the invoice derived from the given quotation.
func (s *Service) GetByQuotation(ctx context.Context, quotationID id.ID) (*Invoice, error) {
	doc, err := s.repo.GetByQuotationID(ctx, quotationID)
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

// ChangeStatus moves an invoice through its payment lifecycle.
func (s *Service) ChangeStatus(ctx context.Context, docID id.ID, to Status, actor security.Actor) (*Invoice, error) {
	var doc *Invoice

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		from := doc.Status
		if err := CheckTransition(from, to, actor); err != nil {
			return err
		}

		doc.Status = to
		doc.SetUpdatedBy(actor.UserID)
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		logger.Info(ctx, "invoice status changed",
			"id", docID,
			"number", doc.Number,
			"from", string(from),
			"to", string(to),
			"actor", actor.UserID)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}
