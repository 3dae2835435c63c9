package domain

import (
	"time"
)

// DefaultCurrency is the ISO currency code every amount is expressed in unless configured otherwise.
const DefaultCurrency = "BRL"

// Customer identifies the shopper for a checkout session. Customers are immutable once created.
type Customer struct {
	Name  string
	Email string
}

// CartLine records a single purchase action. Lines are never mutated after creation.
type CartLine struct {
	ID        string
	Pen       Pen
	Quantity  int
	UnitPrice int64
	Subtotal  int64
	AddedAt   time.Time
}

// ShippingTier describes the fee formula for one delivery region.
type ShippingTier struct {
	Region      string
	BaseFee     int64
	ExtraPerBox int64
}

// PaymentMethod enumerates the accepted ways to pay for an order.
type PaymentMethod string

const (
	// PaymentPix grants an instant-transfer discount and is always paid in one installment.
	PaymentPix PaymentMethod = "pix"
	// PaymentCreditCard may be split in installments; long plans carry interest.
	PaymentCreditCard PaymentMethod = "credit_card"
	// PaymentBankSlip carries no adjustment and is always paid in one installment.
	PaymentBankSlip PaymentMethod = "bank_slip"
)

// PaymentMethods lists the accepted methods in menu order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentPix, PaymentCreditCard, PaymentBankSlip}
}

// Valid reports whether the method is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentCreditCard, PaymentBankSlip:
		return true
	}
	return false
}

// Label returns the customer-facing payment method name.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentPix:
		return "PIX"
	case PaymentCreditCard:
		return "Cartão de crédito"
	case PaymentBankSlip:
		return "Boleto bancário"
	default:
		return string(m)
	}
}

// OrderTotals captures the itemised monetary figures printed on a receipt.
type OrderTotals struct {
	Subtotal           int64
	DiscountRateBps    int64
	Discount           int64
	DiscountedSubtotal int64
	Shipping           int64
	AdjustmentBase     int64
	PixDiscount        int64
	CardSurcharge      int64
	Total              int64
	InstallmentAmount  int64
}

// Order aggregates the result of a checkout session. It is built once and never mutated.
type Order struct {
	ID            string
	Customer      Customer
	Lines         []CartLine
	Shipping      *ShippingTier
	Coupon        string
	CouponApplied bool
	PaymentMethod PaymentMethod
	Installments  int
	Currency      string
	Totals        OrderTotals
	PlacedAt      time.Time
}

// TotalBoxes sums the quantity of every line in the order.
func (o Order) TotalBoxes() int {
	total := 0
	for _, line := range o.Lines {
		total += line.Quantity
	}
	return total
}

// IsPickup reports whether the customer collects the order at the store.
func (o Order) IsPickup() bool {
	return o.Shipping == nil
}
