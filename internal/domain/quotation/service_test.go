package quotation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
	"quotero/internal/core/numerator"
	"quotero/internal/domain"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memRepo is an in-memory Repository for service tests.
type memRepo struct {
	docs  map[id.ID]*Quotation
	lines map[id.ID][]QuotationLine
}

func newMemRepo() *memRepo {
	return &memRepo{
		docs:  make(map[id.ID]*Quotation),
		lines: make(map[id.ID][]QuotationLine),
	}
}

func (r *memRepo) Create(ctx context.Context, doc *Quotation) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, docID id.ID) (*Quotation, error) {
	doc, ok := r.docs[docID]
	if !ok || doc.DeletionMark {
		return nil, apperror.NewNotFound("quotation", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *memRepo) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	for _, doc := range r.docs {
		if doc.Number == number && !doc.DeletionMark {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("quotation", number)
}

func (r *memRepo) Update(ctx context.Context, doc *Quotation) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("quotation", doc.ID.String())
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memRepo) Delete(ctx context.Context, docID id.ID) error {
	doc, ok := r.docs[docID]
	if !ok {
		return apperror.NewNotFound("quotation", docID.String())
	}
	doc.DeletionMark = true
	return nil
}

func (r *memRepo) GetLines(ctx context.Context, docID id.ID) ([]QuotationLine, error) {
	return r.lines[docID], nil
}

func (r *memRepo) SaveLines(ctx context.Context, docID id.ID, lines []QuotationLine) error {
	r.lines[docID] = append([]QuotationLine(nil), lines...)
	return nil
}

func (r *memRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quotation], error) {
	var items []*Quotation
	for _, doc := range r.docs {
		if doc.DeletionMark {
			continue
		}
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		cp := *doc
		items = append(items, &cp)
	}
	return domain.ListResult[*Quotation]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *memRepo) ListExpirable(ctx context.Context, cutoff time.Time) ([]*Quotation, error) {
	var items []*Quotation
	for _, doc := range r.docs {
		if !doc.DeletionMark && doc.Status == StatusSent && doc.ValidUntil.Before(cutoff) {
			cp := *doc
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Quotation, error) {
	return r.GetByID(ctx, docID)
}

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	svc := NewService(repo, &numerator.MockGenerator{}, nopTxManager{})
	return svc, repo
}

func newDraft(t *testing.T, svc *Service) *Quotation {
	t.Helper()
	doc := NewQuotation(id.New())
	require.NoError(t, doc.SetLines([]LineSpec{sampleLine()}))
	require.NoError(t, svc.Create(context.Background(), doc))
	return doc
}

func TestServiceCreate(t *testing.T) {
	svc, _ := newTestService()
	doc := newDraft(t, svc)

	assert.Equal(t, StatusDraft, doc.Status)
	assert.NotEmpty(t, doc.Number)
	assert.Contains(t, doc.Number, "TEK-")
	assert.Contains(t, doc.Number, doc.Date.Format("2006-01"))
}

func TestServiceCreate_SequentialNumbers(t *testing.T) {
	svc, _ := newTestService()

	first := newDraft(t, svc)
	second := newDraft(t, svc)

	assert.NotEqual(t, first.Number, second.Number)
	assert.Regexp(t, `^TEK-\d{4}-\d{2}-001$`, first.Number)
	assert.Regexp(t, `^TEK-\d{4}-\d{2}-002$`, second.Number)
}

func TestServiceChangeStatus_HappyPath(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	doc := newDraft(t, svc)

	updated, err := svc.ChangeStatus(ctx, doc.ID, StatusSent, staff)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, updated.Status)

	updated, err = svc.ChangeStatus(ctx, doc.ID, StatusAccepted, staff)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, updated.Status)
}

func TestServiceChangeStatus_InvalidForStaff(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	doc := newDraft(t, svc)

	_, err := svc.ChangeStatus(ctx, doc.ID, StatusAccepted, staff)
	require.Error(t, err)
	assert.True(t, apperror.IsStateError(err))
}

func TestServiceChangeStatus_AdminOverride(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	doc := newDraft(t, svc)

	_, err := svc.ChangeStatus(ctx, doc.ID, StatusSent, staff)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, doc.ID, StatusRejected, staff)
	require.NoError(t, err)

	// Staff cannot reopen a rejected quotation, admin can
	_, err = svc.ChangeStatus(ctx, doc.ID, StatusSent, staff)
	require.Error(t, err)

	updated, err := svc.ChangeStatus(ctx, doc.ID, StatusSent, admin)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, updated.Status)
}

func TestServiceChangeStatus_InvoicedLocked(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	doc := newDraft(t, svc)

	stored := repo.docs[doc.ID]
	stored.Status = StatusAccepted
	stored.Invoiced = true

	_, err := svc.ChangeStatus(ctx, doc.ID, StatusRejected, admin)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeQuotationInvoiced, appErr.Code)
}

func TestServiceChangeStatus_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ChangeStatus(context.Background(), id.New(), StatusSent, staff)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestServiceUpdate_OnlyDraft(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	doc := newDraft(t, svc)

	_, err := svc.ChangeStatus(ctx, doc.ID, StatusSent, staff)
	require.NoError(t, err)

	doc.Notes = "changed"
	err = svc.Update(ctx, doc)
	require.Error(t, err)
}

func TestServiceUpdate_KeepsStatus(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	doc := newDraft(t, svc)

	// Caller tries to smuggle a status change through Update
	doc.Status = StatusAccepted
	doc.Notes = "changed"
	require.NoError(t, svc.Update(ctx, doc))

	assert.Equal(t, StatusDraft, repo.docs[doc.ID].Status)
	assert.Equal(t, "changed", repo.docs[doc.ID].Notes)
}

func TestServiceMarkExpired(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	now := time.Now().UTC()

	stale := newDraft(t, svc)
	fresh := newDraft(t, svc)
	draft := newDraft(t, svc)

	repo.docs[stale.ID].Status = StatusSent
	repo.docs[stale.ID].ValidUntil = now.AddDate(0, 0, -2)
	repo.docs[fresh.ID].Status = StatusSent
	repo.docs[fresh.ID].ValidUntil = now.AddDate(0, 0, 10)
	repo.docs[draft.ID].ValidUntil = now.AddDate(0, 0, -2)

	count, err := svc.MarkExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Equal(t, StatusExpired, repo.docs[stale.ID].Status)
	assert.Equal(t, StatusSent, repo.docs[fresh.ID].Status)
	assert.Equal(t, StatusDraft, repo.docs[draft.ID].Status)
}

func TestServiceMarkExpiredSameDayBoundary(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	now := time.Date(2025, 4, 15, 19, 30, 0, 0, time.UTC)

	doc := newDraft(t, svc)
	repo.docs[doc.ID].Status = StatusSent
	repo.docs[doc.ID].ValidUntil = time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)

	// Expiring today means valid through the whole day; the sweep must
	// agree with IsExpired on that boundary.
	count, err := svc.MarkExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, StatusSent, repo.docs[doc.ID].Status)
	assert.False(t, repo.docs[doc.ID].IsExpired(now))
}

func TestServiceCopy(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	doc := newDraft(t, svc)

	clone, err := svc.Copy(ctx, doc.ID)
	require.NoError(t, err)

	assert.NotEqual(t, doc.ID, clone.ID)
	assert.NotEqual(t, doc.Number, clone.Number)
	assert.Equal(t, StatusDraft, clone.Status)
	assert.True(t, clone.TotalAmount.Equal(doc.TotalAmount))
}

func TestServiceDelete_InvoicedGuard(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	doc := newDraft(t, svc)

	repo.docs[doc.ID].Invoiced = true

	err := svc.Delete(ctx, doc.ID)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeQuotationInvoiced, appErr.Code)
}
