package services

import (
	"context"
	"fmt"

	domain "finitefield.org/pen-checkout/internal/domain"
	"finitefield.org/pen-checkout/internal/platform/money"
	"finitefield.org/pen-checkout/internal/platform/textutil"
)

const (
	// VolumeDiscountThreshold is the cart total, in centavos, that must be exceeded to earn the volume discount.
	VolumeDiscountThreshold int64 = 20000
	// VolumeDiscountBps is the volume discount rate, in basis points, over the cart total.
	VolumeDiscountBps int64 = 1000
	// CouponDiscountBps is the coupon discount rate, in basis points, over the cart total.
	CouponDiscountBps int64 = 1000
	// CouponCode is the single recognised coupon. Comparison ignores case and padding.
	CouponCode = "DESCONTO10"

	// PixDiscountBps is the PIX discount rate, in basis points, over subtotal plus shipping.
	PixDiscountBps int64 = 500
	// CardInterestBps is the card surcharge rate applied above InterestFreeInstallments.
	CardInterestBps int64 = 500
	// InterestFreeInstallments is the largest card plan without surcharge.
	InterestFreeInstallments = 3
	// MaxInstallments is the largest card plan accepted.
	MaxInstallments = 6
)

// PricingEngineDeps configures a PricingEngine. Logger defaults to a no-op.
type PricingEngineDeps struct {
	Logger func(context.Context, string, map[string]any)
}

// PricingEngine stacks the volume and coupon discounts over the cart total, then applies the
// payment adjustment over the discounted subtotal plus shipping.
type PricingEngine struct {
	logger func(context.Context, string, map[string]any)
}

// NewPricingEngine builds the pricing engine with the fixed store rates.
func NewPricingEngine(deps PricingEngineDeps) *PricingEngine {
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &PricingEngine{logger: logger}
}

// Price computes every receipt figure for a cart. Discounts never touch shipping; at most one
// payment adjustment applies.
func (e *PricingEngine) Price(ctx context.Context, cmd PriceCommand) (PricingResult, error) {
	if cmd.CartTotal < 0 || cmd.Shipping < 0 {
		return PricingResult{}, fmt.Errorf("%w: cart total and shipping must be non-negative", ErrInvalidAmount)
	}
	if !cmd.Method.Valid() {
		return PricingResult{}, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, string(cmd.Method))
	}

	installments := 1
	if cmd.Method == domain.PaymentCreditCard {
		if cmd.Installments < 1 || cmd.Installments > MaxInstallments {
			return PricingResult{}, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidInstallments, cmd.Installments, MaxInstallments)
		}
		installments = cmd.Installments
	}

	result := PricingResult{
		Subtotal:     cmd.CartTotal,
		Shipping:     cmd.Shipping,
		Method:       cmd.Method,
		Installments: installments,
	}

	if cmd.CartTotal > VolumeDiscountThreshold {
		result.VolumeRateBps = VolumeDiscountBps
	}
	if textutil.NormalizeCode(cmd.Coupon) == CouponCode {
		result.CouponRateBps = CouponDiscountBps
		result.CouponApplied = true
	}
	result.DiscountRateBps = result.VolumeRateBps + result.CouponRateBps
	result.Discount = money.ApplyRate(cmd.CartTotal, result.DiscountRateBps)
	result.DiscountedSubtotal = cmd.CartTotal - result.Discount
	result.AdjustmentBase = result.DiscountedSubtotal + cmd.Shipping

	switch cmd.Method {
	case domain.PaymentPix:
		result.PixDiscount = money.ApplyRate(result.AdjustmentBase, PixDiscountBps)
	case domain.PaymentCreditCard:
		if installments > InterestFreeInstallments {
			result.CardSurcharge = money.ApplyRate(result.AdjustmentBase, CardInterestBps)
		}
	}
	result.Total = result.AdjustmentBase - result.PixDiscount + result.CardSurcharge
	if installments > 1 {
		result.InstallmentAmount = money.Split(result.Total, installments)
	}

	e.logger(ctx, "pricing_computed", map[string]any{
		"subtotal":      result.Subtotal,
		"discountBps":   result.DiscountRateBps,
		"shipping":      result.Shipping,
		"method":        string(result.Method),
		"installments":  result.Installments,
		"total":         result.Total,
		"couponApplied": result.CouponApplied,
	})
	return result, nil
}
