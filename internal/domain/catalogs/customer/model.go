// Package customer provides the Customer catalog.
// Customers are the parties quotations and invoices are issued to.
package customer

import (
	"context"
	"regexp"

	"quotero/internal/core/apperror"
	"quotero/internal/core/entity"
)

// Pre-compiled regex patterns for validation (performance optimization)
var (
	whitespaceRE = regexp.MustCompile(`\s`)
	taxIDRE      = regexp.MustCompile(`^[A-Za-z0-9-]{4,20}$`)
	emailRE      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// CustomerKind distinguishes companies from private persons.
type CustomerKind string

const (
	KindCompany    CustomerKind = "company"
	KindIndividual CustomerKind = "individual"
)

// Customer represents a party that receives quotations and invoices.
type Customer struct {
	entity.Catalog

	// Kind defines whether this is a company or a private person
	Kind CustomerKind `db:"kind" json:"kind"`

	// FullName is the official registered name
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// TaxID is the customer's tax identification number (unique)
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// BillingAddress is where invoices are sent
	BillingAddress *string `db:"billing_address" json:"billingAddress,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewCustomer creates a new Customer with required fields.
func NewCustomer(code, name string, kind CustomerKind) *Customer {
	return &Customer{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
	}
}

// NewCustomerGroup creates a folder used to group customers in the tree.
// Groups carry no kind or contact details of their own.
func NewCustomerGroup(code, name string) *Customer {
	c := &Customer{Catalog: entity.NewCatalog(code, name)}
	c.IsFolder = true
	return c
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	// Groups only need a name; kind and contact fields apply to items
	if c.IsFolder {
		return nil
	}

	if !isValidKind(c.Kind) {
		return apperror.NewValidation("invalid customer kind").
			WithDetail("field", "kind").
			WithDetail("value", string(c.Kind))
	}

	// Tax ID validation (if provided)
	if c.TaxID != nil && *c.TaxID != "" {
		cleaned := whitespaceRE.ReplaceAllString(*c.TaxID, "")
		if !taxIDRE.MatchString(cleaned) {
			return apperror.NewValidation("invalid tax ID format").
				WithDetail("field", "taxId")
		}
	}

	// Email validation (if provided)
	if c.Email != nil && *c.Email != "" && !isValidEmail(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

func isValidKind(k CustomerKind) bool {
	switch k {
	case KindCompany, KindIndividual:
		return true
	}
	return false
}

func isValidEmail(email string) bool {
	return emailRE.MatchString(email)
}
