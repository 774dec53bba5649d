// Package reports provides read-only sales rollups.
package reports

import (
	"time"

	"quotero/internal/core/id"
	"quotero/internal/core/types"
	"quotero/internal/domain/quotation"
)

// --- Sales Summary Report ---

// SalesSummaryFilter defines filter for the sales summary report.
type SalesSummaryFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	// Filters
	CustomerIDs  []id.ID
	OwnerUserIDs []string
	Statuses     []quotation.Status

	// Amount bounds on the quotation total
	MinTotal *types.Money
	MaxTotal *types.Money

	// Grouping options
	GroupByMonth    bool
	GroupByCustomer bool
	GroupByOwner    bool

	// Pagination
	Limit  int
	Offset int
}

// StatusCount holds the per-status document count.
type StatusCount struct {
	Status quotation.Status `json:"status"`
	Count  int              `json:"count"`
}

// SalesSummaryRow is one rollup group.
type SalesSummaryRow struct {
	// Group keys (set depending on the grouping options)
	Month        string `json:"month,omitempty"` // "2025-03"
	CustomerID   *id.ID `json:"customerId,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
	OwnerUserID  string `json:"ownerUserId,omitempty"`

	// Rollups
	QuotationCount int         `json:"quotationCount"`
	AcceptedCount  int         `json:"acceptedCount"`
	InvoicedCount  int         `json:"invoicedCount"`
	TotalAmount    types.Money `json:"totalAmount"`
	AcceptedAmount types.Money `json:"acceptedAmount"`

	// SuccessRate is accepted / total for the group, 0 when the group
	// is empty.
	SuccessRate float64 `json:"successRate"`
}

// SalesSummaryReport is the full report.
type SalesSummaryReport struct {
	FromDate time.Time `json:"fromDate"`
	ToDate   time.Time `json:"toDate"`

	Rows      []SalesSummaryRow `json:"rows"`
	TotalRows int               `json:"totalRows"`
	ByStatus  []StatusCount     `json:"byStatus"`

	// Overall rollups
	QuotationCount int         `json:"quotationCount"`
	AcceptedCount  int         `json:"acceptedCount"`
	TotalAmount    types.Money `json:"totalAmount"`
	SuccessRate    float64     `json:"successRate"`
}

// --- Invoice Aging Report ---

// InvoiceAgingFilter defines filter for the open invoice report.
type InvoiceAgingFilter struct {
	// AsOfDate - report date (defaults to now)
	AsOfDate *time.Time

	CustomerIDs []id.ID

	// Pagination
	Limit  int
	Offset int
}

// InvoiceAgingItem is one open invoice with its age.
type InvoiceAgingItem struct {
	InvoiceID    id.ID       `json:"invoiceId"`
	Number       string      `json:"number"`
	CustomerID   id.ID       `json:"customerId"`
	CustomerName string      `json:"customerName"`
	DueDate      time.Time   `json:"dueDate"`
	DaysOverdue  int         `json:"daysOverdue"`
	TotalAmount  types.Money `json:"totalAmount"`
}

// InvoiceAgingReport lists open invoices with overdue totals.
type InvoiceAgingReport struct {
	AsOfDate   time.Time          `json:"asOfDate"`
	Items      []InvoiceAgingItem `json:"items"`
	TotalItems int                `json:"totalItems"`

	// Summary
	OpenAmount    types.Money `json:"openAmount"`
	OverdueAmount types.Money `json:"overdueAmount"`
}

// SuccessRate computes accepted / total, 0 for an empty period.
func SuccessRate(accepted, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(accepted) / float64(total)
}
