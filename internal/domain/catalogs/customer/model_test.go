package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestValidateGroup(t *testing.T) {
	g := NewCustomerGroup("GRP-001", "Wholesale")
	assert.True(t, g.IsFolder)
	// Groups carry no kind, only a name
	assert.NoError(t, g.Validate(context.Background()))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	c := NewCustomer("CUS-001", "Acme Corp", KindCompany)
	require.NoError(t, c.Validate(ctx))

	t.Run("missing name", func(t *testing.T) {
		bad := NewCustomer("CUS-002", "", KindCompany)
		assert.Error(t, bad.Validate(ctx))
	})

	t.Run("bad kind", func(t *testing.T) {
		bad := NewCustomer("CUS-003", "Acme", CustomerKind("partnership"))
		assert.Error(t, bad.Validate(ctx))
	})

	t.Run("bad tax id", func(t *testing.T) {
		bad := NewCustomer("CUS-004", "Acme", KindCompany)
		bad.TaxID = str("!!")
		assert.Error(t, bad.Validate(ctx))
	})

	t.Run("tax id with spaces accepted", func(t *testing.T) {
		ok := NewCustomer("CUS-005", "Acme", KindCompany)
		ok.TaxID = str("RO 1234 5678")
		assert.NoError(t, ok.Validate(ctx))
	})

	t.Run("bad email", func(t *testing.T) {
		bad := NewCustomer("CUS-006", "Acme", KindCompany)
		bad.Email = str("not-an-email")
		assert.Error(t, bad.Validate(ctx))
	})

	t.Run("good email", func(t *testing.T) {
		ok := NewCustomer("CUS-007", "Acme", KindCompany)
		ok.Email = str("billing@acme.example")
		assert.NoError(t, ok.Validate(ctx))
	})
}
