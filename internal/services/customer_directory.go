package services

import (
	"context"
	"fmt"
	"strings"

	"finitefield.org/pen-checkout/internal/platform/textutil"
)

// CustomerDirectoryDeps seeds the in-memory directory.
type CustomerDirectoryDeps struct {
	Customers []Customer
	Logger    func(context.Context, string, map[string]any)
}

// CustomerDirectory keeps the known customers in registration order. Identity is positional;
// duplicate emails are allowed.
type CustomerDirectory struct {
	customers []Customer
	logger    func(context.Context, string, map[string]any)
}

// NewCustomerDirectory copies the seed customers into a new directory.
func NewCustomerDirectory(deps CustomerDirectoryDeps) *CustomerDirectory {
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	customers := make([]Customer, len(deps.Customers))
	copy(customers, deps.Customers)
	return &CustomerDirectory{customers: customers, logger: logger}
}

// FindByPrefix returns customers whose name starts with text, ignoring case, in directory order.
func (d *CustomerDirectory) FindByPrefix(text string) []Customer {
	var matches []Customer
	for _, c := range d.customers {
		if textutil.HasPrefixFold(c.Name, text) {
			matches = append(matches, c)
		}
	}
	return matches
}

// Register appends a new customer and returns it. Registration never fails; input is only trimmed.
func (d *CustomerDirectory) Register(ctx context.Context, name, email string) Customer {
	customer := Customer{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	d.customers = append(d.customers, customer)
	d.logger(ctx, "customer_registered", map[string]any{"position": len(d.customers)})
	return customer
}

// All returns a copy of every known customer.
func (d *CustomerDirectory) All() []Customer {
	out := make([]Customer, len(d.customers))
	copy(out, d.customers)
	return out
}

// SelectCandidate resolves a 1-based selection among the customers returned by FindByPrefix.
func SelectCandidate(candidates []Customer, index int) (Customer, error) {
	if index < 1 || index > len(candidates) {
		return Customer{}, fmt.Errorf("%w: %d not in 1..%d", ErrSelectionOutOfRange, index, len(candidates))
	}
	return candidates[index-1], nil
}
