// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"quotero/internal/core/id"
	"quotero/internal/core/types"
	"quotero/internal/domain/reports"
	"quotero/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
// Rollups happen in SQL, only the success rates are computed in Go.
// Ensure interface compliance.
var _ reports.Repository = (*ReportRepo)(nil)

type ReportRepo struct {
	txm *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txm: txm}
}

// salesSummaryScanRow mirrors one grouped row of the summary query.
type salesSummaryScanRow struct {
	Month          *string     `db:"month"`
	CustomerID     *id.ID      `db:"customer_id"`
	CustomerName   *string     `db:"customer_name"`
	OwnerUserID    *string     `db:"owner_user_id"`
	QuotationCount int         `db:"quotation_count"`
	AcceptedCount  int         `db:"accepted_count"`
	InvoicedCount  int         `db:"invoiced_count"`
	TotalAmount    types.Money `db:"total_amount"`
	AcceptedAmount types.Money `db:"accepted_amount"`
}

// GetSalesSummary generates the quotation rollup report.
func (r *ReportRepo) GetSalesSummary(ctx context.Context, filter reports.SalesSummaryFilter) (*reports.SalesSummaryReport, error) {
	where, args := buildSalesWhere(filter)

	// Group keys
	var groupCols, selectCols []string
	if filter.GroupByMonth {
		selectCols = append(selectCols, "to_char(q.date, 'YYYY-MM') as month")
		groupCols = append(groupCols, "to_char(q.date, 'YYYY-MM')")
	} else {
		selectCols = append(selectCols, "NULL as month")
	}
	if filter.GroupByCustomer {
		selectCols = append(selectCols, "q.customer_id", "c.name as customer_name")
		groupCols = append(groupCols, "q.customer_id", "c.name")
	} else {
		selectCols = append(selectCols, "NULL::uuid as customer_id", "NULL as customer_name")
	}
	if filter.GroupByOwner {
		selectCols = append(selectCols, "q.owner_user_id")
		groupCols = append(groupCols, "q.owner_user_id")
	} else {
		selectCols = append(selectCols, "NULL as owner_user_id")
	}

	selectCols = append(selectCols,
		"COUNT(*) as quotation_count",
		"COUNT(*) FILTER (WHERE q.status = 'accepted') as accepted_count",
		"COUNT(*) FILTER (WHERE q.invoiced) as invoiced_count",
		"COALESCE(SUM(q.total_amount), 0) as total_amount",
		"COALESCE(SUM(q.total_amount) FILTER (WHERE q.status = 'accepted'), 0) as accepted_amount",
	)

	query := fmt.Sprintf(`
		SELECT %s
		FROM doc_quotations q
		LEFT JOIN cat_customers c ON q.customer_id = c.id
		WHERE %s
		GROUP BY %s
		ORDER BY %s
	`, strings.Join(selectCols, ", "), where,
		strings.Join(groupCols, ", "), strings.Join(groupCols, ", "))

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	querier := r.txm.GetQuerier(ctx)

	var scanRows []salesSummaryScanRow
	if err := pgxscan.Select(ctx, querier, &scanRows, query, args...); err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}

	rows := make([]reports.SalesSummaryRow, 0, len(scanRows))
	for _, sr := range scanRows {
		row := reports.SalesSummaryRow{
			CustomerID:     sr.CustomerID,
			OwnerUserID:    deref(sr.OwnerUserID),
			Month:          deref(sr.Month),
			CustomerName:   deref(sr.CustomerName),
			QuotationCount: sr.QuotationCount,
			AcceptedCount:  sr.AcceptedCount,
			InvoicedCount:  sr.InvoicedCount,
			TotalAmount:    sr.TotalAmount,
			AcceptedAmount: sr.AcceptedAmount,
			SuccessRate:    reports.SuccessRate(sr.AcceptedCount, sr.QuotationCount),
		}
		rows = append(rows, row)
	}

	// Per-status breakdown over the same filter
	statusQuery := fmt.Sprintf(`
		SELECT q.status, COUNT(*) as count
		FROM doc_quotations q
		WHERE %s
		GROUP BY q.status
		ORDER BY q.status
	`, where)

	var byStatus []reports.StatusCount
	if err := pgxscan.Select(ctx, querier, &byStatus, statusQuery, args...); err != nil {
		return nil, fmt.Errorf("sales summary by status: %w", err)
	}

	// Overall rollups (unaffected by grouping and pagination)
	totalsQuery := fmt.Sprintf(`
		SELECT
			COUNT(*) as quotation_count,
			COUNT(*) FILTER (WHERE q.status = 'accepted') as accepted_count,
			COUNT(*) FILTER (WHERE q.invoiced) as invoiced_count,
			COALESCE(SUM(q.total_amount), 0) as total_amount,
			COALESCE(SUM(q.total_amount) FILTER (WHERE q.status = 'accepted'), 0) as accepted_amount
		FROM doc_quotations q
		WHERE %s
	`, where)

	var totals salesSummaryScanRow
	if err := pgxscan.Get(ctx, querier, &totals, totalsQuery, args...); err != nil {
		return nil, fmt.Errorf("sales summary totals: %w", err)
	}

	return &reports.SalesSummaryReport{
		FromDate:       filter.FromDate,
		ToDate:         filter.ToDate,
		Rows:           rows,
		TotalRows:      len(rows),
		ByStatus:       byStatus,
		QuotationCount: totals.QuotationCount,
		AcceptedCount:  totals.AcceptedCount,
		TotalAmount:    totals.TotalAmount,
		SuccessRate:    reports.SuccessRate(totals.AcceptedCount, totals.QuotationCount),
	}, nil
}

// buildSalesWhere renders the shared WHERE clause for summary queries.
func buildSalesWhere(filter reports.SalesSummaryFilter) (string, []any) {
	conds := []string{"q.deletion_mark = false"}
	args := []any{filter.FromDate, filter.ToDate}
	conds = append(conds, "q.date >= $1", "q.date < $2")
	argIndex := 3

	if len(filter.CustomerIDs) > 0 {
		conds = append(conds, fmt.Sprintf("q.customer_id = ANY($%d)", argIndex))
		args = append(args, filter.CustomerIDs)
		argIndex++
	}
	if len(filter.OwnerUserIDs) > 0 {
		conds = append(conds, fmt.Sprintf("q.owner_user_id = ANY($%d)", argIndex))
		args = append(args, filter.OwnerUserIDs)
		argIndex++
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, fmt.Sprintf("q.status = ANY($%d)", argIndex))
		args = append(args, statuses)
		argIndex++
	}
	if filter.MinTotal != nil {
		conds = append(conds, fmt.Sprintf("q.total_amount >= $%d", argIndex))
		args = append(args, *filter.MinTotal)
		argIndex++
	}
	if filter.MaxTotal != nil {
		conds = append(conds, fmt.Sprintf("q.total_amount <= $%d", argIndex))
		args = append(args, *filter.MaxTotal)
		argIndex++
	}

	return strings.Join(conds, " AND "), args
}

// agingScanRow mirrors one open invoice row.
type agingScanRow struct {
	InvoiceID    id.ID       `db:"invoice_id"`
	Number       string      `db:"number"`
	CustomerID   id.ID       `db:"customer_id"`
	CustomerName string      `db:"customer_name"`
	DueDate      time.Time   `db:"due_date"`
	DaysOverdue  int         `db:"days_overdue"`
	TotalAmount  types.Money `db:"total_amount"`
}

// GetInvoiceAging lists open invoices with their age relative to AsOfDate.
func (r *ReportRepo) GetInvoiceAging(ctx context.Context, filter reports.InvoiceAgingFilter) (*reports.InvoiceAgingReport, error) {
	asOfDate := time.Now().UTC()
	if filter.AsOfDate != nil {
		asOfDate = *filter.AsOfDate
	}

	conds := []string{
		"i.deletion_mark = false",
		"i.status IN ('unpaid', 'partially_paid')",
	}
	args := []any{asOfDate}
	argIndex := 2

	if len(filter.CustomerIDs) > 0 {
		conds = append(conds, fmt.Sprintf("i.customer_id = ANY($%d)", argIndex))
		args = append(args, filter.CustomerIDs)
		argIndex++
	}

	where := strings.Join(conds, " AND ")

	query := fmt.Sprintf(`
		SELECT
			i.id as invoice_id,
			i.number,
			i.customer_id,
			COALESCE(c.name, '') as customer_name,
			i.due_date,
			GREATEST(0, ($1::date - i.due_date::date)) as days_overdue,
			i.total_amount
		FROM doc_invoices i
		LEFT JOIN cat_customers c ON i.customer_id = c.id
		WHERE %s
		ORDER BY i.due_date, i.number
	`, where)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	querier := r.txm.GetQuerier(ctx)

	var scanRows []agingScanRow
	if err := pgxscan.Select(ctx, querier, &scanRows, query, args...); err != nil {
		return nil, fmt.Errorf("invoice aging: %w", err)
	}

	items := make([]reports.InvoiceAgingItem, 0, len(scanRows))
	openAmount := types.Zero()
	overdueAmount := types.Zero()
	for _, sr := range scanRows {
		items = append(items, reports.InvoiceAgingItem{
			InvoiceID:    sr.InvoiceID,
			Number:       sr.Number,
			CustomerID:   sr.CustomerID,
			CustomerName: sr.CustomerName,
			DueDate:      sr.DueDate,
			DaysOverdue:  sr.DaysOverdue,
			TotalAmount:  sr.TotalAmount,
		})
		openAmount = openAmount.Add(sr.TotalAmount)
		if sr.DaysOverdue > 0 {
			overdueAmount = overdueAmount.Add(sr.TotalAmount)
		}
	}

	return &reports.InvoiceAgingReport{
		AsOfDate:      asOfDate,
		Items:         items,
		TotalItems:    len(items),
		OpenAmount:    openAmount,
		OverdueAmount: overdueAmount,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
