package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	domain "finitefield.org/pen-checkout/internal/domain"
)

var errCartStockRequired = errors.New("cart ledger: stock keeper is required")

// CartLedgerDeps wires the ledger to the catalog it reserves stock from.
type CartLedgerDeps struct {
	Stock       StockKeeper
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

// CartLedger accumulates cart lines for one session. It is the only component that mutates
// catalog stock.
type CartLedger struct {
	stock  StockKeeper
	now    func() time.Time
	newID  func() string
	logger func(context.Context, string, map[string]any)

	lines  []CartLine
	total  int64
	frozen bool
}

// NewCartLedger returns an empty ledger.
func NewCartLedger(deps CartLedgerDeps) (*CartLedger, error) {
	if deps.Stock == nil {
		return nil, errCartStockRequired
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &CartLedger{
		stock:  deps.Stock,
		now:    func() time.Time { return clock().UTC() },
		newID:  idGen,
		logger: logger,
	}, nil
}

// AddItem validates the purchase, reserves stock and appends a new line. Nothing changes when
// any step fails.
func (l *CartLedger) AddItem(ctx context.Context, variant Variant, buttonActivated bool, quantity int) (CartLine, error) {
	if l.frozen {
		return CartLine{}, ErrCartClosed
	}
	if quantity <= 0 {
		return CartLine{}, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidQuantity, quantity)
	}
	pen, err := domain.NewPen(variant, buttonActivated)
	if err != nil {
		return CartLine{}, err
	}
	price, err := l.stock.PriceOf(variant)
	if err != nil {
		return CartLine{}, err
	}
	if err := l.stock.Reserve(ctx, variant, quantity); err != nil {
		return CartLine{}, err
	}

	line := CartLine{
		ID:        l.newID(),
		Pen:       pen,
		Quantity:  quantity,
		UnitPrice: price,
		Subtotal:  price * int64(quantity),
		AddedAt:   l.now(),
	}
	l.lines = append(l.lines, line)
	l.total += line.Subtotal

	l.logger(ctx, "cart_item_added", map[string]any{
		"lineId":   line.ID,
		"variant":  string(variant),
		"quantity": quantity,
		"subtotal": line.Subtotal,
		"total":    l.total,
	})
	return line, nil
}

// Lines returns a copy of the cart lines in insertion order.
func (l *CartLedger) Lines() []CartLine {
	out := make([]CartLine, len(l.lines))
	copy(out, l.lines)
	return out
}

// Total returns the running sum of line subtotals.
func (l *CartLedger) Total() int64 { return l.total }

// TotalBoxes sums the quantity of every line.
func (l *CartLedger) TotalBoxes() int {
	boxes := 0
	for _, line := range l.lines {
		boxes += line.Quantity
	}
	return boxes
}

// Len returns the number of lines.
func (l *CartLedger) Len() int { return len(l.lines) }

// Freeze makes the cart read-only for the checkout phase.
func (l *CartLedger) Freeze() { l.frozen = true }

// Frozen reports whether the cart stopped accepting changes.
func (l *CartLedger) Frozen() bool { return l.frozen }

// Abandon returns every reserved box to the catalog and empties the ledger. A frozen cart
// belongs to a placed order and cannot be abandoned.
func (l *CartLedger) Abandon(ctx context.Context) error {
	if l.frozen {
		return ErrCartClosed
	}
	var errs []error
	released := 0
	for _, line := range l.lines {
		if err := l.stock.Release(ctx, line.Pen.Variant(), line.Quantity); err != nil {
			errs = append(errs, fmt.Errorf("release line %s: %w", line.ID, err))
			continue
		}
		released += line.Quantity
	}
	l.logger(ctx, "cart_abandoned", map[string]any{"lines": len(l.lines), "boxesReleased": released})
	l.lines = nil
	l.total = 0
	return errors.Join(errs...)
}
