package dto

import (
	"time"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
	"quotero/internal/core/types"
	"quotero/internal/domain/quotation"
	"quotero/internal/domain/reports"
)

// --- Sales Summary Report ---

// SalesSummaryRequest represents query params for the sales summary report.
type SalesSummaryRequest struct {
	FromDate        string   `form:"fromDate" binding:"required"`
	ToDate          string   `form:"toDate" binding:"required"`
	CustomerIDs     []string `form:"customerId"`
	OwnerUserIDs    []string `form:"ownerUserId"`
	Statuses        []string `form:"status"`
	MinTotal        *string  `form:"minTotal"`
	MaxTotal        *string  `form:"maxTotal"`
	GroupByMonth    bool     `form:"groupByMonth"`
	GroupByCustomer bool     `form:"groupByCustomer"`
	GroupByOwner    bool     `form:"groupByOwner"`
	Limit           int      `form:"limit"`
	Offset          int      `form:"offset"`
}

// ToFilter converts query params to a domain filter.
func (r *SalesSummaryRequest) ToFilter() (reports.SalesSummaryFilter, error) {
	filter := reports.SalesSummaryFilter{
		GroupByMonth:    r.GroupByMonth,
		GroupByCustomer: r.GroupByCustomer,
		GroupByOwner:    r.GroupByOwner,
		OwnerUserIDs:    r.OwnerUserIDs,
		Limit:           r.Limit,
		Offset:          r.Offset,
	}

	fromDate, err := time.Parse("2006-01-02", r.FromDate)
	if err != nil {
		return filter, err
	}
	toDate, err := time.Parse("2006-01-02", r.ToDate)
	if err != nil {
		return filter, err
	}
	filter.FromDate = fromDate
	filter.ToDate = toDate

	for _, raw := range r.CustomerIDs {
		customerID, err := id.Parse(raw)
		if err != nil {
			return filter, apperror.NewValidation("invalid customer id")
		}
		filter.CustomerIDs = append(filter.CustomerIDs, customerID)
	}

	for _, raw := range r.Statuses {
		filter.Statuses = append(filter.Statuses, quotation.Status(raw))
	}

	if r.MinTotal != nil && *r.MinTotal != "" {
		minTotal, err := types.NewMoneyFromString(*r.MinTotal)
		if err != nil {
			return filter, err
		}
		filter.MinTotal = &minTotal
	}
	if r.MaxTotal != nil && *r.MaxTotal != "" {
		maxTotal, err := types.NewMoneyFromString(*r.MaxTotal)
		if err != nil {
			return filter, err
		}
		filter.MaxTotal = &maxTotal
	}

	return filter, nil
}

// SalesSummaryRowResponse represents one rollup group.
type SalesSummaryRowResponse struct {
	Month          string      `json:"month,omitempty"`
	CustomerID     string      `json:"customerId,omitempty"`
	CustomerName   string      `json:"customerName,omitempty"`
	OwnerUserID    string      `json:"ownerUserId,omitempty"`
	QuotationCount int         `json:"quotationCount"`
	AcceptedCount  int         `json:"acceptedCount"`
	InvoicedCount  int         `json:"invoicedCount"`
	TotalAmount    types.Money `json:"totalAmount"`
	AcceptedAmount types.Money `json:"acceptedAmount"`
	SuccessRate    float64     `json:"successRate"`
}

// StatusCountResponse represents the per-status document count.
type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// SalesSummaryResponse represents the sales summary report response.
type SalesSummaryResponse struct {
	FromDate       string                    `json:"fromDate"`
	ToDate         string                    `json:"toDate"`
	Rows           []SalesSummaryRowResponse `json:"rows"`
	TotalRows      int                       `json:"totalRows"`
	ByStatus       []StatusCountResponse     `json:"byStatus"`
	QuotationCount int                       `json:"quotationCount"`
	AcceptedCount  int                       `json:"acceptedCount"`
	TotalAmount    types.Money               `json:"totalAmount"`
	SuccessRate    float64                   `json:"successRate"`
}

// FromSalesSummary converts domain report to response DTO.
func FromSalesSummary(r *reports.SalesSummaryReport) *SalesSummaryResponse {
	resp := &SalesSummaryResponse{
		FromDate:       r.FromDate.Format("2006-01-02"),
		ToDate:         r.ToDate.Format("2006-01-02"),
		Rows:           make([]SalesSummaryRowResponse, len(r.Rows)),
		TotalRows:      r.TotalRows,
		ByStatus:       make([]StatusCountResponse, len(r.ByStatus)),
		QuotationCount: r.QuotationCount,
		AcceptedCount:  r.AcceptedCount,
		TotalAmount:    r.TotalAmount,
		SuccessRate:    r.SuccessRate,
	}

	for i, row := range r.Rows {
		rr := SalesSummaryRowResponse{
			Month:          row.Month,
			CustomerName:   row.CustomerName,
			OwnerUserID:    row.OwnerUserID,
			QuotationCount: row.QuotationCount,
			AcceptedCount:  row.AcceptedCount,
			InvoicedCount:  row.InvoicedCount,
			TotalAmount:    row.TotalAmount,
			AcceptedAmount: row.AcceptedAmount,
			SuccessRate:    row.SuccessRate,
		}
		if row.CustomerID != nil {
			rr.CustomerID = row.CustomerID.String()
		}
		resp.Rows[i] = rr
	}

	for i, sc := range r.ByStatus {
		resp.ByStatus[i] = StatusCountResponse{
			Status: string(sc.Status),
			Count:  sc.Count,
		}
	}

	return resp
}

// --- Invoice Aging Report ---

// InvoiceAgingRequest represents query params for the invoice aging report.
type InvoiceAgingRequest struct {
	AsOfDate    *time.Time `form:"asOfDate"`
	CustomerIDs []string   `form:"customerId"`
	Limit       int        `form:"limit"`
	Offset      int        `form:"offset"`
}

// ToFilter converts query params to a domain filter.
func (r *InvoiceAgingRequest) ToFilter() (reports.InvoiceAgingFilter, error) {
	filter := reports.InvoiceAgingFilter{
		AsOfDate: r.AsOfDate,
		Limit:    r.Limit,
		Offset:   r.Offset,
	}

	for _, raw := range r.CustomerIDs {
		customerID, err := id.Parse(raw)
		if err != nil {
			return filter, apperror.NewValidation("invalid customer id")
		}
		filter.CustomerIDs = append(filter.CustomerIDs, customerID)
	}

	return filter, nil
}

// InvoiceAgingItemResponse represents one open invoice.
type InvoiceAgingItemResponse struct {
	InvoiceID    string      `json:"invoiceId"`
	Number       string      `json:"number"`
	CustomerID   string      `json:"customerId"`
	CustomerName string      `json:"customerName"`
	DueDate      string      `json:"dueDate"`
	DaysOverdue  int         `json:"daysOverdue"`
	TotalAmount  types.Money `json:"totalAmount"`
}

// InvoiceAgingResponse represents the invoice aging report response.
type InvoiceAgingResponse struct {
	AsOfDate      string                     `json:"asOfDate"`
	Items         []InvoiceAgingItemResponse `json:"items"`
	TotalItems    int                        `json:"totalItems"`
	OpenAmount    types.Money                `json:"openAmount"`
	OverdueAmount types.Money                `json:"overdueAmount"`
}

// FromInvoiceAging converts domain report to response DTO.
func FromInvoiceAging(r *reports.InvoiceAgingReport) *InvoiceAgingResponse {
	resp := &InvoiceAgingResponse{
		AsOfDate:      r.AsOfDate.Format("2006-01-02"),
		Items:         make([]InvoiceAgingItemResponse, len(r.Items)),
		TotalItems:    r.TotalItems,
		OpenAmount:    r.OpenAmount,
		OverdueAmount: r.OverdueAmount,
	}

	for i, item := range r.Items {
		resp.Items[i] = InvoiceAgingItemResponse{
			InvoiceID:    item.InvoiceID.String(),
			Number:       item.Number,
			CustomerID:   item.CustomerID.String(),
			CustomerName: item.CustomerName,
			DueDate:      item.DueDate.Format("2006-01-02"),
			DaysOverdue:  item.DaysOverdue,
			TotalAmount:  item.TotalAmount,
		}
	}

	return resp
}
