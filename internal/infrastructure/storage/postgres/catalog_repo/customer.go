package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"quotero/internal/core/apperror"
	"quotero/internal/domain/catalogs/customer"
	"quotero/internal/infrastructure/storage/postgres"
)

const customerTable = "cat_customers"

// CustomerRepo implements customer.Repository.
// Ensure interface compliance.
var _ customer.Repository = (*CustomerRepo)(nil)

type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*customer.Customer](
			txm,
			customerTable,
			postgres.ExtractDBColumns[customer.Customer](),
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// FindByTaxID retrieves customer by tax ID.
func (r *CustomerRepo) FindByTaxID(ctx context.Context, taxID string) (*customer.Customer, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"tax_id": taxID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("customer", taxID)
		}
		return nil, err
	}
	return c, nil
}
