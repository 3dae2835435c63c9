package services

import (
	"context"
	"errors"
	"testing"

	domain "finitefield.org/pen-checkout/internal/domain"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := NewCatalog(CatalogDeps{})
	if err != nil {
		t.Fatalf("NewCatalog error: %v", err)
	}
	return catalog
}

func TestCatalogPriceOf(t *testing.T) {
	catalog := newTestCatalog(t)

	want := map[Variant]int64{domain.VariantBlue: 1500, domain.VariantRed: 1800, domain.VariantGold: 2500}
	for variant, price := range want {
		got, err := catalog.PriceOf(variant)
		if err != nil {
			t.Fatalf("PriceOf(%s) error: %v", variant, err)
		}
		if got != price {
			t.Fatalf("PriceOf(%s) = %d, want %d", variant, got, price)
		}
	}

	if _, err := catalog.PriceOf(Variant("green")); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected unknown variant, got %v", err)
	}
}

func TestCatalogReserveDecrementsStock(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t)

	for _, variant := range domain.Variants() {
		before, _ := catalog.StockOf(variant)
		if err := catalog.Reserve(ctx, variant, 3); err != nil {
			t.Fatalf("Reserve(%s) error: %v", variant, err)
		}
		after, _ := catalog.StockOf(variant)
		if after != before-3 {
			t.Fatalf("expected %s stock %d, got %d", variant, before-3, after)
		}
	}
}

func TestCatalogReserveInsufficientStockLeavesStock(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t)

	err := catalog.Reserve(ctx, domain.VariantBlue, 999)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	stock, _ := catalog.StockOf(domain.VariantBlue)
	if stock != 50 {
		t.Fatalf("expected blue stock to remain 50, got %d", stock)
	}

	// Draining exactly to zero is allowed; one more box is not.
	if err := catalog.Reserve(ctx, domain.VariantGold, 20); err != nil {
		t.Fatalf("expected full reserve to succeed, got %v", err)
	}
	if err := catalog.Reserve(ctx, domain.VariantGold, 1); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock on empty variant, got %v", err)
	}
	if stock, _ := catalog.StockOf(domain.VariantGold); stock != 0 {
		t.Fatalf("expected gold stock 0, got %d", stock)
	}
}

func TestCatalogReserveRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t)

	if err := catalog.Reserve(ctx, Variant("purple"), 1); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected unknown variant, got %v", err)
	}
	if err := catalog.Reserve(ctx, domain.VariantRed, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if _, err := catalog.StockOf(Variant("purple")); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected unknown variant from StockOf, got %v", err)
	}
}

func TestCatalogReleaseRestoresStock(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t)

	if err := catalog.Reserve(ctx, domain.VariantRed, 10); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if err := catalog.Release(ctx, domain.VariantRed, 10); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	if stock, _ := catalog.StockOf(domain.VariantRed); stock != 30 {
		t.Fatalf("expected red stock 30 after release, got %d", stock)
	}
	if err := catalog.Release(ctx, domain.VariantRed, -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
}

func TestNewCatalogStockOverrides(t *testing.T) {
	catalog, err := NewCatalog(CatalogDeps{Stock: map[Variant]int{domain.VariantGold: 2}})
	if err != nil {
		t.Fatalf("NewCatalog error: %v", err)
	}
	if stock, _ := catalog.StockOf(domain.VariantGold); stock != 2 {
		t.Fatalf("expected overridden gold stock 2, got %d", stock)
	}
	if stock, _ := catalog.StockOf(domain.VariantBlue); stock != 50 {
		t.Fatalf("expected default blue stock 50, got %d", stock)
	}

	if _, err := NewCatalog(CatalogDeps{Stock: map[Variant]int{domain.VariantBlue: -5}}); err == nil {
		t.Fatalf("expected negative stock to be rejected")
	}
	if _, err := NewCatalog(CatalogDeps{Stock: map[Variant]int{Variant("green"): 5}}); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected unknown variant, got %v", err)
	}
}

func TestCatalogListings(t *testing.T) {
	catalog := newTestCatalog(t)
	listings := catalog.Listings()
	if len(listings) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(listings))
	}
	if listings[0].Variant != domain.VariantBlue || listings[1].Variant != domain.VariantRed || listings[2].Variant != domain.VariantGold {
		t.Fatalf("unexpected listing order %+v", listings)
	}
	if !listings[1].RequiresButton || listings[0].RequiresButton {
		t.Fatalf("expected only red to require button, got %+v", listings)
	}

	entry, err := catalog.ListingAt(3)
	if err != nil || entry.Variant != domain.VariantGold {
		t.Fatalf("expected gold at index 3, got %+v (%v)", entry, err)
	}
	for _, idx := range []int{0, 4, -1} {
		if _, err := catalog.ListingAt(idx); !errors.Is(err, ErrSelectionOutOfRange) {
			t.Fatalf("expected out of range for %d, got %v", idx, err)
		}
	}
}
