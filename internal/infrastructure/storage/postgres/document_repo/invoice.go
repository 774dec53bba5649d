package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
	"quotero/internal/domain"
	"quotero/internal/domain/invoice"
	"quotero/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable     = "doc_invoices"
	invoiceLinesTable = "doc_invoice_lines"
)

// InvoiceRepo implements invoice.Repository.
//
// doc_invoices carries a UNIQUE constraint on quotation_id, so the
// one-invoice-per-quotation rule holds even under concurrent derivation.
// Ensure interface compliance.
var _ invoice.Repository = (*InvoiceRepo)(nil)

type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*invoice.Invoice](
			txm,
			invoicesTable,
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
	}
}

// GetByQuotationID retrieves the invoice derived from the given quotation.
func (r *InvoiceRepo) GetByQuotationID(ctx context.Context, quotationID id.ID) (*invoice.Invoice, error) {
	doc := &invoice.Invoice{}
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"quotation_id": quotationID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice for quotation", quotationID.String())
		}
		return nil, fmt.Errorf("get by quotation id: %w", err)
	}

	return doc, nil
}

func (r *InvoiceRepo) GetLines(ctx context.Context, docID id.ID) ([]invoice.InvoiceLine, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "item_type", "item_ref", "description",
			"quantity", "unit_price", "discount_percent", "tax_rate",
			"gross_amount", "discount_amount", "subtotal", "tax_amount", "total_amount",
		).
		From(invoiceLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []invoice.InvoiceLine
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *InvoiceRepo) SaveLines(ctx context.Context, docID id.ID, lines []invoice.InvoiceLine) error {
	querier := r.txm.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + invoiceLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(invoiceLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "item_type", "item_ref", "description",
			"quantity", "unit_price", "discount_percent", "tax_rate",
			"gross_amount", "discount_amount", "subtotal", "tax_amount", "total_amount",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ItemType, line.ItemRef, line.Description,
			line.Quantity, line.UnitPrice, line.DiscountPercent, line.TaxRate,
			line.GrossAmount, line.DiscountAmount, line.Subtotal, line.TaxAmount, line.TotalAmount,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	result := domain.ListResult[*invoice.Invoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	if filter.QuotationID != nil {
		q = q.Where(squirrel.Eq{"quotation_id": *filter.QuotationID})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.Overdue != nil {
		overdueCond := squirrel.And{
			squirrel.Expr("due_date < NOW()"),
			squirrel.Eq{"status": []invoice.Status{invoice.StatusUnpaid, invoice.StatusPartiallyPaid}},
		}
		if *filter.Overdue {
			q = q.Where(overdueCond)
		} else {
			q = q.Where(squirrel.Expr("NOT (due_date < NOW() AND status = ANY(?))",
				[]invoice.Status{invoice.StatusUnpaid, invoice.StatusPartiallyPaid}))
		}
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"notes": searchPattern},
		})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}
