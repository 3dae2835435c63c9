package services

import (
	"context"
	"fmt"
	"strings"
)

// DefaultShippingTiers lists the delivery regions in menu order. Fees are in centavos.
func DefaultShippingTiers() []ShippingTier {
	return []ShippingTier{
		{Region: "Recife (capital)", BaseFee: 1500, ExtraPerBox: 0},
		{Region: "Interior de PE", BaseFee: 2500, ExtraPerBox: 200},
		{Region: "Nordeste (outros estados)", BaseFee: 3500, ExtraPerBox: 300},
		{Region: "Sudeste", BaseFee: 5000, ExtraPerBox: 400},
		{Region: "Sul", BaseFee: 6000, ExtraPerBox: 500},
		{Region: "Centro-Oeste", BaseFee: 5500, ExtraPerBox: 400},
		{Region: "Norte", BaseFee: 7000, ExtraPerBox: 600},
	}
}

// ShippingCalculatorDeps configures a ShippingCalculator. Empty Tiers use DefaultShippingTiers.
type ShippingCalculatorDeps struct {
	Tiers  []ShippingTier
	Logger func(context.Context, string, map[string]any)
}

// ShippingCalculator quotes freight from a static region table. Store pickup never reaches it.
type ShippingCalculator struct {
	tiers  []ShippingTier
	logger func(context.Context, string, map[string]any)
}

// NewShippingCalculator builds a calculator over deps.Tiers, or DefaultShippingTiers when empty.
func NewShippingCalculator(deps ShippingCalculatorDeps) *ShippingCalculator {
	tiers := deps.Tiers
	if len(tiers) == 0 {
		tiers = DefaultShippingTiers()
	}
	owned := make([]ShippingTier, len(tiers))
	copy(owned, tiers)

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &ShippingCalculator{tiers: owned, logger: logger}
}

// Quote returns base + extra × boxes for the region.
func (s *ShippingCalculator) Quote(ctx context.Context, region string, totalBoxes int) (int64, error) {
	if totalBoxes < 0 {
		return 0, fmt.Errorf("%w: box count cannot be negative", ErrInvalidQuantity)
	}
	tier, ok := s.lookup(region)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	fee := tier.BaseFee + tier.ExtraPerBox*int64(totalBoxes)
	s.logger(ctx, "shipping_quoted", map[string]any{"region": tier.Region, "boxes": totalBoxes, "fee": fee})
	return fee, nil
}

// Tiers returns a copy of the region table.
func (s *ShippingCalculator) Tiers() []ShippingTier {
	out := make([]ShippingTier, len(s.tiers))
	copy(out, s.tiers)
	return out
}

// TierAt resolves a 1-based menu index.
func (s *ShippingCalculator) TierAt(index int) (ShippingTier, error) {
	if index < 1 || index > len(s.tiers) {
		return ShippingTier{}, fmt.Errorf("%w: %d not in 1..%d", ErrSelectionOutOfRange, index, len(s.tiers))
	}
	return s.tiers[index-1], nil
}

func (s *ShippingCalculator) lookup(region string) (ShippingTier, bool) {
	region = strings.TrimSpace(region)
	for _, tier := range s.tiers {
		if strings.EqualFold(tier.Region, region) {
			return tier, true
		}
	}
	return ShippingTier{}, false
}
