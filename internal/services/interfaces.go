package services

import (
	"context"

	domain "finitefield.org/pen-checkout/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Variant       = domain.Variant
	Pen           = domain.Pen
	Customer      = domain.Customer
	CartLine      = domain.CartLine
	ShippingTier  = domain.ShippingTier
	PaymentMethod = domain.PaymentMethod
	Order         = domain.Order
	OrderTotals   = domain.OrderTotals
)

// StockKeeper is the catalog surface the cart ledger needs to price and reserve boxes.
// Only the ledger is handed this interface; other components see CatalogReader.
type StockKeeper interface {
	PriceOf(variant Variant) (int64, error)
	Reserve(ctx context.Context, variant Variant, quantity int) error
	Release(ctx context.Context, variant Variant, quantity int) error
}

// CatalogReader exposes read-only catalog lookups for menus and validation.
type CatalogReader interface {
	PriceOf(variant Variant) (int64, error)
	StockOf(variant Variant) (int, error)
	Listings() []VariantListing
}

// VariantListing is a catalog menu entry.
type VariantListing struct {
	Variant        Variant
	UnitPrice      int64
	Stock          int
	RequiresButton bool
}

// ShippingQuoter computes freight for a delivery region.
type ShippingQuoter interface {
	Quote(ctx context.Context, region string, totalBoxes int) (int64, error)
	Tiers() []ShippingTier
	TierAt(index int) (ShippingTier, error)
}

// OrderPricer applies discounts and payment adjustments to a cart total.
type OrderPricer interface {
	Price(ctx context.Context, cmd PriceCommand) (PricingResult, error)
}

// AddItemCommand carries a purchase action from the prompt boundary.
type AddItemCommand struct {
	Variant         Variant
	ButtonActivated bool
	Quantity        int
}

// PaymentCommand carries the checkout choices made after the cart is complete.
type PaymentCommand struct {
	Coupon       string
	Method       PaymentMethod
	Installments int
}

// PriceCommand is the input to the pricing engine.
type PriceCommand struct {
	CartTotal    int64
	Shipping     int64
	Coupon       string
	Method       PaymentMethod
	Installments int
}

// PricingResult itemises every figure the pricing engine derived.
type PricingResult struct {
	VolumeRateBps      int64
	CouponRateBps      int64
	DiscountRateBps    int64
	CouponApplied      bool
	Subtotal           int64
	Discount           int64
	DiscountedSubtotal int64
	Shipping           int64
	AdjustmentBase     int64
	PixDiscount        int64
	CardSurcharge      int64
	Total              int64
	Method             PaymentMethod
	Installments       int
	InstallmentAmount  int64
}

// Totals converts the pricing result into the order totals printed on receipts.
func (r PricingResult) Totals() OrderTotals {
	return OrderTotals{
		Subtotal:           r.Subtotal,
		DiscountRateBps:    r.DiscountRateBps,
		Discount:           r.Discount,
		DiscountedSubtotal: r.DiscountedSubtotal,
		Shipping:           r.Shipping,
		AdjustmentBase:     r.AdjustmentBase,
		PixDiscount:        r.PixDiscount,
		CardSurcharge:      r.CardSurcharge,
		Total:              r.Total,
		InstallmentAmount:  r.InstallmentAmount,
	}
}

// LoginResult reports the outcome of a prefix search. Customer is set when exactly one
// customer matched; otherwise Candidates lists the matches awaiting a 1-based selection.
type LoginResult struct {
	Customer   *Customer
	Candidates []Customer
}

// NeedsSelection reports whether the caller must pick one of the candidates.
func (r LoginResult) NeedsSelection() bool {
	return r.Customer == nil && len(r.Candidates) > 1
}
