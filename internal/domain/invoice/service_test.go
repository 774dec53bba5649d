package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
	"quotero/internal/core/numerator"
	"quotero/internal/core/security"
	"quotero/internal/domain"
	"quotero/internal/domain/quotation"
)

var (
	staff   = security.Actor{UserID: "u-staff", Roles: []security.Role{security.RoleStaff}}
	manager = security.Actor{UserID: "u-manager", Roles: []security.Role{security.RoleManager}}
	admin   = security.Actor{UserID: "u-admin", Roles: []security.Role{security.RoleAdmin}}
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memQuotationRepo holds quotations for derivation tests.
type memQuotationRepo struct {
	docs  map[id.ID]*quotation.Quotation
	lines map[id.ID][]quotation.QuotationLine
}

func newMemQuotationRepo() *memQuotationRepo {
	return &memQuotationRepo{
		docs:  make(map[id.ID]*quotation.Quotation),
		lines: make(map[id.ID][]quotation.QuotationLine),
	}
}

func (r *memQuotationRepo) Create(ctx context.Context, doc *quotation.Quotation) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memQuotationRepo) GetByID(ctx context.Context, docID id.ID) (*quotation.Quotation, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("quotation", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *memQuotationRepo) GetByNumber(ctx context.Context, number string) (*quotation.Quotation, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("quotation", number)
}

func (r *memQuotationRepo) Update(ctx context.Context, doc *quotation.Quotation) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memQuotationRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.docs, docID)
	return nil
}

func (r *memQuotationRepo) GetLines(ctx context.Context, docID id.ID) ([]quotation.QuotationLine, error) {
	return r.lines[docID], nil
}

func (r *memQuotationRepo) SaveLines(ctx context.Context, docID id.ID, lines []quotation.QuotationLine) error {
	r.lines[docID] = append([]quotation.QuotationLine(nil), lines...)
	return nil
}

func (r *memQuotationRepo) List(ctx context.Context, filter quotation.ListFilter) (domain.ListResult[*quotation.Quotation], error) {
	return domain.ListResult[*quotation.Quotation]{}, nil
}

func (r *memQuotationRepo) ListExpirable(ctx context.Context, cutoff time.Time) ([]*quotation.Quotation, error) {
	return nil, nil
}

func (r *memQuotationRepo) GetForUpdate(ctx context.Context, docID id.ID) (*quotation.Quotation, error) {
	return r.GetByID(ctx, docID)
}

// memInvoiceRepo is the in-memory invoice repository.
type memInvoiceRepo struct {
	docs  map[id.ID]*Invoice
	lines map[id.ID][]InvoiceLine
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{
		docs:  make(map[id.ID]*Invoice),
		lines: make(map[id.ID][]InvoiceLine),
	}
}

func (r *memInvoiceRepo) Create(ctx context.Context, doc *Invoice) error {
	for _, existing := range r.docs {
		if existing.QuotationID == doc.QuotationID {
			return apperror.NewDuplicate("invoice", "quotation_id", doc.QuotationID.String())
		}
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memInvoiceRepo) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *memInvoiceRepo) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("invoice", number)
}

func (r *memInvoiceRepo) Update(ctx context.Context, doc *Invoice) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memInvoiceRepo) GetByQuotationID(ctx context.Context, quotationID id.ID) (*Invoice, error) {
	for _, doc := range r.docs {
		if doc.QuotationID == quotationID {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("invoice", quotationID.String())
}

func (r *memInvoiceRepo) GetLines(ctx context.Context, docID id.ID) ([]InvoiceLine, error) {
	return r.lines[docID], nil
}

func (r *memInvoiceRepo) SaveLines(ctx context.Context, docID id.ID, lines []InvoiceLine) error {
	r.lines[docID] = append([]InvoiceLine(nil), lines...)
	return nil
}

func (r *memInvoiceRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	var items []*Invoice
	for _, doc := range r.docs {
		cp := *doc
		items = append(items, &cp)
	}
	return domain.ListResult[*Invoice]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *memInvoiceRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error) {
	return r.GetByID(ctx, docID)
}

func newTestService() (*Service, *memQuotationRepo, *memInvoiceRepo) {
	qRepo := newMemQuotationRepo()
	iRepo := newMemInvoiceRepo()
	svc := NewService(iRepo, qRepo, &numerator.MockGenerator{}, nopTxManager{})
	return svc, qRepo, iRepo
}

// acceptedQuotation stores an accepted quotation with one 2x500 line,
// 10% discount and 18% tax: subtotal 1000, discount 100, tax 162,
// total 1062.
func acceptedQuotation(t *testing.T, repo *memQuotationRepo) *quotation.Quotation {
	t.Helper()

	q := quotation.NewQuotation(id.New())
	require.NoError(t, q.SetLines([]quotation.LineSpec{{
		Description:     "Implementation package",
		Quantity:        dec("2"),
		UnitPrice:       dec("500"),
		DiscountPercent: dec("10"),
		TaxRate:         dec("18"),
	}}))
	q.Number = "TEK-2025-03-001"
	q.Status = quotation.StatusAccepted

	require.NoError(t, repo.Create(context.Background(), q))
	require.NoError(t, repo.SaveLines(context.Background(), q.ID, q.Lines))
	return q
}

func TestDerive_WithDiscount(t *testing.T) {
	svc, qRepo, _ := newTestService()
	q := acceptedQuotation(t, qRepo)

	inv, err := svc.Derive(context.Background(), q.ID, DeriveOptions{ApplyDiscount: true}, manager)
	require.NoError(t, err)

	assert.Equal(t, q.ID, inv.QuotationID)
	assert.Equal(t, q.CustomerID, inv.CustomerID)
	assert.Equal(t, StatusUnpaid, inv.Status)
	assert.True(t, inv.DiscountApplied)
	assert.Regexp(t, `^FTR-\d{4}-\d{2}-001$`, inv.Number)

	assert.True(t, inv.Subtotal.Equal(dec("1000")), "subtotal: %s", inv.Subtotal)
	assert.True(t, inv.DiscountAmount.Equal(dec("100")), "discount: %s", inv.DiscountAmount)
	assert.True(t, inv.TaxAmount.Equal(dec("162")), "tax: %s", inv.TaxAmount)
	assert.True(t, inv.TotalAmount.Equal(dec("1062")), "total: %s", inv.TotalAmount)
}

func TestDerive_WithoutDiscount_TaxCarriedOver(t *testing.T) {
	svc, qRepo, _ := newTestService()
	q := acceptedQuotation(t, qRepo)

	inv, err := svc.Derive(context.Background(), q.ID, DeriveOptions{ApplyDiscount: false}, manager)
	require.NoError(t, err)

	assert.False(t, inv.DiscountApplied)

	// Discount dropped, tax stays as quoted (18% of the discounted 900)
	assert.True(t, inv.Subtotal.Equal(dec("1000")), "subtotal: %s", inv.Subtotal)
	assert.True(t, inv.DiscountAmount.IsZero(), "discount: %s", inv.DiscountAmount)
	assert.True(t, inv.TaxAmount.Equal(dec("162")), "tax: %s", inv.TaxAmount)
	assert.True(t, inv.TotalAmount.Equal(dec("1162")), "total: %s", inv.TotalAmount)

	require.Len(t, inv.Lines, 1)
	line := inv.Lines[0]
	assert.True(t, line.DiscountPercent.IsZero())
	assert.True(t, line.Subtotal.Equal(dec("1000")))
	assert.True(t, line.TaxAmount.Equal(dec("162")))
	assert.True(t, line.TotalAmount.Equal(dec("1162")))
}

func TestDerive_LocksQuotation(t *testing.T) {
	svc, qRepo, _ := newTestService()
	q := acceptedQuotation(t, qRepo)

	_, err := svc.Derive(context.Background(), q.ID, DeriveOptions{ApplyDiscount: true}, manager)
	require.NoError(t, err)

	assert.True(t, qRepo.docs[q.ID].Invoiced)
}

func TestDerive_Twice(t *testing.T) {
	svc, qRepo, _ := newTestService()
	q := acceptedQuotation(t, qRepo)

	_, err := svc.Derive(context.Background(), q.ID, DeriveOptions{ApplyDiscount: true}, manager)
	require.NoError(t, err)

	_, err = svc.Derive(context.Background(), q.ID, DeriveOptions{ApplyDiscount: true}, manager)
	require.Error(t, err)
	assert.True(t, apperror.IsStateError(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeQuotationInvoiced, appErr.Code)
}

func TestDerive_NotAccepted(t *testing.T) {
	svc, qRepo, _ := newTestService()
	ctx := context.Background()

	for _, status := range []quotation.Status{
		quotation.StatusDraft,
		quotation.StatusSent,
		quotation.StatusRejected,
		quotation.StatusExpired,
	} {
		t.Run(string(status), func(t *testing.T) {
			q := acceptedQuotation(t, qRepo)
			qRepo.docs[q.ID].Status = status

			_, err := svc.Derive(ctx, q.ID, DeriveOptions{ApplyDiscount: true}, manager)
			require.Error(t, err)
			assert.True(t, apperror.IsStateError(err))

			appErr, _ := apperror.AsAppError(err)
			assert.Equal(t, apperror.CodeQuotationNotAccepted, appErr.Code)
		})
	}
}

func TestDerive_QuotationNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Derive(context.Background(), id.New(), DeriveOptions{ApplyDiscount: true}, manager)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDerive_RequiresManagerRole(t *testing.T) {
	svc, qRepo, _ := newTestService()
	q := acceptedQuotation(t, qRepo)

	_, err := svc.Derive(context.Background(), q.ID, DeriveOptions{ApplyDiscount: true}, staff)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	// Admins imply the manager role
	_, err = svc.Derive(context.Background(), q.ID, DeriveOptions{ApplyDiscount: true}, admin)
	require.NoError(t, err)
}

func TestChangeStatus(t *testing.T) {
	svc, qRepo, _ := newTestService()
	ctx := context.Background()
	q := acceptedQuotation(t, qRepo)

	inv, err := svc.Derive(ctx, q.ID, DeriveOptions{ApplyDiscount: true}, manager)
	require.NoError(t, err)

	updated, err := svc.ChangeStatus(ctx, inv.ID, StatusPartiallyPaid, staff)
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyPaid, updated.Status)

	updated, err = svc.ChangeStatus(ctx, inv.ID, StatusPaid, staff)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, updated.Status)

	// Paid is terminal for staff
	_, err = svc.ChangeStatus(ctx, inv.ID, StatusUnpaid, staff)
	require.Error(t, err)
	assert.True(t, apperror.IsStateError(err))

	// Admin can reopen
	updated, err = svc.ChangeStatus(ctx, inv.ID, StatusUnpaid, admin)
	require.NoError(t, err)
	assert.Equal(t, StatusUnpaid, updated.Status)
}

func TestGetByQuotation(t *testing.T) {
	svc, qRepo, _ := newTestService()
	ctx := context.Background()
	q := acceptedQuotation(t, qRepo)

	created, err := svc.Derive(ctx, q.ID, DeriveOptions{ApplyDiscount: true}, manager)
	require.NoError(t, err)

	found, err := svc.GetByQuotation(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Len(t, found.Lines, 1)
}
