package services

import (
	"errors"

	domain "finitefield.org/pen-checkout/internal/domain"
)

var (
	// ErrUnknownVariant indicates the variant is not part of the fixed catalog.
	ErrUnknownVariant = domain.ErrUnknownVariant
	// ErrInvalidConfiguration indicates an activation attribute the variant does not allow.
	ErrInvalidConfiguration = domain.ErrInvalidConfiguration
	// ErrInsufficientStock indicates the requested quantity exceeds the boxes on hand.
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
	// ErrInvalidQuantity indicates a non-positive box count.
	ErrInvalidQuantity = errors.New("cart: invalid quantity")
	// ErrCartClosed indicates the cart no longer accepts changes.
	ErrCartClosed = errors.New("cart: closed for changes")
	// ErrUnknownRegion indicates the region is not in the shipping table.
	ErrUnknownRegion = errors.New("shipping: unknown region")
	// ErrSelectionOutOfRange indicates a 1-based menu index outside the listed options.
	ErrSelectionOutOfRange = errors.New("selection: index out of range")
	// ErrNoCustomerFound indicates a prefix search matched nobody. It ends the session.
	ErrNoCustomerFound = errors.New("customer directory: no customer found")
	// ErrInvalidInstallments indicates a card installment count outside 1..6.
	ErrInvalidInstallments = errors.New("pricing: invalid installment count")
	// ErrUnknownPaymentMethod indicates a payment method the shop does not accept.
	ErrUnknownPaymentMethod = errors.New("pricing: unknown payment method")
	// ErrInvalidAmount indicates a negative monetary input to pricing.
	ErrInvalidAmount = errors.New("pricing: invalid amount")
	// ErrNoActiveCustomer indicates checkout was attempted before a customer was resolved.
	ErrNoActiveCustomer = errors.New("checkout: no active customer")
	// ErrEmptyCart indicates checkout was attempted without any cart line.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrSessionClosed indicates the session already produced an order or was abandoned.
	ErrSessionClosed = errors.New("checkout: session closed")
)

// IsRecoverable reports whether the prompt boundary should re-prompt after err instead of
// ending the session.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrNoCustomerFound), errors.Is(err, ErrSessionClosed):
		return false
	}
	return true
}
