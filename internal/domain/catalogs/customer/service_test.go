package customer

import (
	"context"
	"strings"
	"testing"

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
	items map[id.ID]*Customer
	order []id.ID
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[id.ID]*Customer)}
}

func (r *memRepo) Create(ctx context.Context, c *Customer) error {
	cp := *c
	r.items[c.ID] = &cp
	r.order = append(r.order, c.ID)
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, entityID id.ID) (*Customer, error) {
	c, ok := r.items[entityID]
	if !ok || c.DeletionMark {
		return nil, apperror.NewNotFound("customer", entityID.String())
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) GetByCode(ctx context.Context, code string) (*Customer, error) {
	for _, c := range r.items {
		if c.Code == code && !c.DeletionMark {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("customer", code)
}

func (r *memRepo) Update(ctx context.Context, c *Customer) error {
	if _, ok := r.items[c.ID]; !ok {
		return apperror.NewNotFound("customer", c.ID.String())
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *memRepo) Delete(ctx context.Context, entityID id.ID) error {
	return r.SetDeletionMark(ctx, entityID, true)
}

func (r *memRepo) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	c, ok := r.items[entityID]
	if !ok {
		return apperror.NewNotFound("customer", entityID.String())
	}
	c.DeletionMark = marked
	return nil
}

func (r *memRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	var items []*Customer
	for _, cid := range r.order {
		c := r.items[cid]
		if c.DeletionMark {
			continue
		}
		cp := *c
		items = append(items, &cp)
	}
	return domain.ListResult[*Customer]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *memRepo) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	c, ok := r.items[entityID]
	return ok && !c.DeletionMark, nil
}

func (r *memRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	for _, c := range r.items {
		if c.Code == code && !c.DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) GetTree(ctx context.Context, rootID *id.ID) ([]*Customer, error) {
	var out []*Customer
	var walk func(parent *id.ID)
	walk = func(parent *id.ID) {
		for _, cid := range r.order {
			c := r.items[cid]
			if c.DeletionMark {
				continue
			}
			switch {
			case parent == nil && c.IsRoot():
			case parent != nil && !c.IsRoot() && *c.ParentID == parent.String():
			default:
				continue
			}
			cp := *c
			out = append(out, &cp)
			childID := c.ID
			walk(&childID)
		}
	}
	walk(rootID)
	return out, nil
}

func (r *memRepo) GetPath(ctx context.Context, entityID id.ID) ([]*Customer, error) {
	var out []*Customer
	cur, ok := r.items[entityID]
	if !ok {
		return nil, apperror.NewNotFound("customer", entityID.String())
	}
	for {
		cp := *cur
		out = append([]*Customer{&cp}, out...)
		if cur.IsRoot() {
			return out, nil
		}
		parentID, err := id.Parse(*cur.ParentID)
		if err != nil {
			return nil, err
		}
		cur, ok = r.items[parentID]
		if !ok {
			return nil, apperror.NewNotFound("customer", parentID.String())
		}
	}
}

func (r *memRepo) FindByTaxID(ctx context.Context, taxID string) (*Customer, error) {
	for _, c := range r.items {
		if c.TaxID != nil && *c.TaxID == taxID && !c.DeletionMark {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("customer", taxID)
}

func (r *memRepo) GetForUpdate(ctx context.Context, entityID id.ID) (*Customer, error) {
	return r.GetByID(ctx, entityID)
}

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	svc := NewService(repo, &numerator.MockGenerator{}, nopTxManager{})
	return svc, repo
}

func mustCreate(t *testing.T, svc *Service, c *Customer) *Customer {
	t.Helper()
	require.NoError(t, svc.Create(context.Background(), c))
	return c
}

func TestServiceCreateGeneratesCode(t *testing.T) {
	svc, _ := newTestService()

	c := mustCreate(t, svc, NewCustomer("", "Acme Corp", KindCompany))
	assert.True(t, strings.HasPrefix(c.Code, CodePrefix+"-"), "got code %q", c.Code)

	second := mustCreate(t, svc, NewCustomer("", "Globex", KindCompany))
	assert.NotEqual(t, c.Code, second.Code)
}

func TestServiceCreateRejectsDuplicateCode(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	mustCreate(t, svc, NewCustomer("CUS-100", "Acme Corp", KindCompany))

	err := svc.Create(ctx, NewCustomer("CUS-100", "Acme Clone", KindCompany))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestServiceCreateRejectsDuplicateTaxID(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first := NewCustomer("", "Acme Corp", KindCompany)
	first.TaxID = str("RO12345678")
	mustCreate(t, svc, first)

	dup := NewCustomer("", "Acme Clone", KindCompany)
	dup.TaxID = str("RO12345678")
	err := svc.Create(ctx, dup)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestServiceCreateWithParentGroup(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	group := mustCreate(t, svc, NewCustomerGroup("GRP-001", "Wholesale"))

	c := NewCustomer("", "Acme Corp", KindCompany)
	c.SetParent(group.ID.String())
	require.NoError(t, svc.Create(ctx, c))

	t.Run("parent must exist", func(t *testing.T) {
		orphan := NewCustomer("", "Nowhere Ltd", KindCompany)
		orphan.SetParent(id.New().String())
		err := svc.Create(ctx, orphan)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("parent must be a group", func(t *testing.T) {
		bad := NewCustomer("", "Nested Ltd", KindCompany)
		bad.SetParent(c.ID.String())
		err := svc.Create(ctx, bad)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})
}

func TestServiceUpdateRejectsSelfParent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c := mustCreate(t, svc, NewCustomerGroup("GRP-001", "Wholesale"))
	c.SetParent(c.ID.String())

	err := svc.Update(ctx, c)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestServiceGetTree(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	root := mustCreate(t, svc, NewCustomerGroup("GRP-001", "Wholesale"))

	child := NewCustomerGroup("GRP-002", "Retail chains")
	child.SetParent(root.ID.String())
	mustCreate(t, svc, child)

	leaf := NewCustomer("", "Acme Corp", KindCompany)
	leaf.SetParent(child.ID.String())
	mustCreate(t, svc, leaf)

	tree, err := svc.GetTree(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tree, 3)
	assert.Equal(t, root.ID, tree[0].ID)

	subtree, err := svc.GetTree(ctx, &child.ID)
	require.NoError(t, err)
	require.Len(t, subtree, 1)
	assert.Equal(t, leaf.ID, subtree[0].ID)
}

func TestServiceGetPath(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	root := mustCreate(t, svc, NewCustomerGroup("GRP-001", "Wholesale"))

	child := NewCustomerGroup("GRP-002", "Retail chains")
	child.SetParent(root.ID.String())
	mustCreate(t, svc, child)

	leaf := NewCustomer("", "Acme Corp", KindCompany)
	leaf.SetParent(child.ID.String())
	mustCreate(t, svc, leaf)

	path, err := svc.GetPath(ctx, leaf.ID)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, root.ID, path[0].ID)
	assert.Equal(t, child.ID, path[1].ID)
	assert.Equal(t, leaf.ID, path[2].ID)
}
