package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domain "finitefield.org/pen-checkout/internal/domain"
)

// Unit prices per box, in centavos. Prices never change during a process lifetime.
var catalogPrices = map[Variant]int64{
	domain.VariantBlue: 1500,
	domain.VariantRed:  1800,
	domain.VariantGold: 2500,
}

// DefaultStock returns the opening stock level for every variant.
func DefaultStock() map[Variant]int {
	return map[Variant]int{
		domain.VariantBlue: 50,
		domain.VariantRed:  30,
		domain.VariantGold: 20,
	}
}

// CatalogDeps configures a Catalog. Stock entries override DefaultStock per variant.
type CatalogDeps struct {
	Stock  map[Variant]int
	Logger func(context.Context, string, map[string]any)
}

// Catalog owns the price table and the mutable stock counters for one process.
type Catalog struct {
	mu     sync.Mutex
	stock  map[Variant]int
	logger func(context.Context, string, map[string]any)
}

// NewCatalog builds a catalog seeded with the default stock and any overrides.
func NewCatalog(deps CatalogDeps) (*Catalog, error) {
	stock := DefaultStock()
	for variant, qty := range deps.Stock {
		if !variant.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, string(variant))
		}
		if qty < 0 {
			return nil, errors.New("catalog: initial stock cannot be negative")
		}
		stock[variant] = qty
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &Catalog{stock: stock, logger: logger}, nil
}

// PriceOf returns the unit price per box of the variant.
func (c *Catalog) PriceOf(variant Variant) (int64, error) {
	price, ok := catalogPrices[variant]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, string(variant))
	}
	return price, nil
}

// StockOf returns the boxes currently available for the variant.
func (c *Catalog) StockOf(variant Variant) (int, error) {
	if !variant.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, string(variant))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stock[variant], nil
}

// Reserve decrements stock by quantity. Stock is left untouched when the request cannot be met.
func (c *Catalog) Reserve(ctx context.Context, variant Variant, quantity int) error {
	if !variant.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, string(variant))
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidQuantity)
	}

	c.mu.Lock()
	available := c.stock[variant]
	if quantity > available {
		c.mu.Unlock()
		return fmt.Errorf("%w: requested %d %s boxes, %d available", ErrInsufficientStock, quantity, variant, available)
	}
	c.stock[variant] = available - quantity
	remaining := c.stock[variant]
	c.mu.Unlock()

	c.logger(ctx, "catalog_stock_reserved", map[string]any{"variant": string(variant), "quantity": quantity, "remaining": remaining})
	return nil
}

// Release returns previously reserved boxes to stock.
func (c *Catalog) Release(ctx context.Context, variant Variant, quantity int) error {
	if !variant.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, string(variant))
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidQuantity)
	}

	c.mu.Lock()
	c.stock[variant] += quantity
	remaining := c.stock[variant]
	c.mu.Unlock()

	c.logger(ctx, "catalog_stock_released", map[string]any{"variant": string(variant), "quantity": quantity, "remaining": remaining})
	return nil
}

// Listings returns the catalog menu in fixed variant order.
func (c *Catalog) Listings() []VariantListing {
	c.mu.Lock()
	defer c.mu.Unlock()

	variants := domain.Variants()
	out := make([]VariantListing, 0, len(variants))
	for _, v := range variants {
		out = append(out, VariantListing{
			Variant:        v,
			UnitPrice:      catalogPrices[v],
			Stock:          c.stock[v],
			RequiresButton: v.RequiresButton(),
		})
	}
	return out
}

// ListingAt resolves a 1-based menu index to the catalog entry shown at that position.
func (c *Catalog) ListingAt(index int) (VariantListing, error) {
	listings := c.Listings()
	if index < 1 || index > len(listings) {
		return VariantListing{}, fmt.Errorf("%w: %d not in 1..%d", ErrSelectionOutOfRange, index, len(listings))
	}
	return listings[index-1], nil
}
