package services

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	domain "finitefield.org/pen-checkout/internal/domain"
	"finitefield.org/pen-checkout/internal/platform/requestctx"
)

const checkoutInstrumentationName = "finitefield.org/pen-checkout/internal/services"

var (
	errCheckoutCatalogRequired   = errors.New("checkout service: catalog is required")
	errCheckoutDirectoryRequired = errors.New("checkout service: customer directory is required")
)

// CheckoutServiceDeps wires the collaborators of a checkout session. Shipping and Pricing default
// to the standard calculator and engine.
type CheckoutServiceDeps struct {
	Catalog     *Catalog
	Directory   *CustomerDirectory
	Shipping    ShippingQuoter
	Pricing     OrderPricer
	Currency    string
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
	Tracer      trace.Tracer
	Meter       metric.Meter
}

// CheckoutService hands out sessions that drive one customer from login to a placed order.
type CheckoutService struct {
	catalog   *Catalog
	directory *CustomerDirectory
	shipping  ShippingQuoter
	pricing   OrderPricer
	currency  string
	now       func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
	tracer    trace.Tracer

	itemsAdded        metric.Int64Counter
	ordersPlaced      metric.Int64Counter
	sessionsAbandoned metric.Int64Counter
}

// NewCheckoutService validates the collaborators and fills defaults for the optional ones.
func NewCheckoutService(deps CheckoutServiceDeps) (*CheckoutService, error) {
	if deps.Catalog == nil {
		return nil, errCheckoutCatalogRequired
	}
	if deps.Directory == nil {
		return nil, errCheckoutDirectoryRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	shipping := deps.Shipping
	if shipping == nil {
		shipping = NewShippingCalculator(ShippingCalculatorDeps{Logger: logger})
	}
	pricing := deps.Pricing
	if pricing == nil {
		pricing = NewPricingEngine(PricingEngineDeps{Logger: logger})
	}
	currency := deps.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer(checkoutInstrumentationName)
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(checkoutInstrumentationName)
	}

	svc := &CheckoutService{
		catalog:   deps.Catalog,
		directory: deps.Directory,
		shipping:  shipping,
		pricing:   pricing,
		currency:  currency,
		now:       func() time.Time { return clock().UTC() },
		newID:     idGen,
		logger:    logger,
		tracer:    tracer,
	}
	svc.itemsAdded = svc.counter(meter, "checkout.items_added", "Count of boxes added to carts")
	svc.ordersPlaced = svc.counter(meter, "checkout.orders_placed", "Count of orders placed")
	svc.sessionsAbandoned = svc.counter(meter, "checkout.sessions_abandoned", "Count of sessions abandoned before checkout")
	return svc, nil
}

func (s *CheckoutService) counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		s.logger(context.Background(), "checkout_metric_unavailable", map[string]any{"metric": name, "error": err.Error()})
		return metricnoop.Int64Counter{}
	}
	return c
}

// Listings returns the catalog menu with current stock.
func (s *CheckoutService) Listings() []VariantListing { return s.catalog.Listings() }

// ListingAt resolves a 1-based catalog menu index.
func (s *CheckoutService) ListingAt(index int) (VariantListing, error) {
	return s.catalog.ListingAt(index)
}

// ShippingTiers returns the region menu.
func (s *CheckoutService) ShippingTiers() []ShippingTier { return s.shipping.Tiers() }

// NewSession opens an empty session with its own cart.
func (s *CheckoutService) NewSession(ctx context.Context) (*Session, error) {
	id := s.newID()
	ledger, err := NewCartLedger(CartLedgerDeps{
		Stock:       s.catalog,
		Clock:       s.now,
		IDGenerator: s.newID,
		Logger:      s.logger,
	})
	if err != nil {
		return nil, err
	}
	session := &Session{id: id, svc: s, ledger: ledger}
	s.logger(session.Context(ctx), "checkout_session_started", nil)
	return session, nil
}

// Session is the state of one customer's checkout. It is not safe for concurrent use.
type Session struct {
	id         string
	svc        *CheckoutService
	ledger     *CartLedger
	customer   *Customer
	candidates []Customer
	shipping   *ShippingTier
	order      *Order
	closed     bool
	abandoned  bool
}

// ID returns the session identifier attached to log events.
func (s *Session) ID() string { return s.id }

// Context tags ctx with the session identifier for logging.
func (s *Session) Context(ctx context.Context) context.Context {
	return requestctx.WithSessionID(ctx, s.id)
}

// Customer returns the active customer, if any.
func (s *Session) Customer() (Customer, bool) {
	if s.customer == nil {
		return Customer{}, false
	}
	return *s.customer, true
}

// Login searches the directory by name prefix. A single match becomes the active customer;
// several matches must be resolved with SelectCandidate. No match closes the session.
func (s *Session) Login(ctx context.Context, prefix string) (LoginResult, error) {
	if s.closed {
		return LoginResult{}, ErrSessionClosed
	}
	ctx = s.Context(ctx)
	matches := s.svc.directory.FindByPrefix(prefix)
	switch len(matches) {
	case 0:
		s.closed = true
		s.svc.logger(ctx, "checkout_login_failed", map[string]any{"prefix": prefix})
		return LoginResult{}, ErrNoCustomerFound
	case 1:
		s.setCustomer(ctx, matches[0])
		return LoginResult{Customer: s.customer}, nil
	default:
		s.candidates = matches
		return LoginResult{Candidates: matches}, nil
	}
}

// SelectCandidate picks the active customer from the last Login result by 1-based index.
func (s *Session) SelectCandidate(ctx context.Context, index int) (Customer, error) {
	if s.closed {
		return Customer{}, ErrSessionClosed
	}
	customer, err := SelectCandidate(s.candidates, index)
	if err != nil {
		return Customer{}, err
	}
	s.setCustomer(s.Context(ctx), customer)
	return customer, nil
}

// Register adds a new customer to the directory and makes it active.
func (s *Session) Register(ctx context.Context, name, email string) (Customer, error) {
	if s.closed {
		return Customer{}, ErrSessionClosed
	}
	ctx = s.Context(ctx)
	customer := s.svc.directory.Register(ctx, name, email)
	s.setCustomer(ctx, customer)
	return customer, nil
}

func (s *Session) setCustomer(ctx context.Context, customer Customer) {
	s.customer = &customer
	s.candidates = nil
	s.svc.logger(ctx, "checkout_customer_resolved", map[string]any{"customer": customer.Name})
}

// AddItem reserves stock and appends a line to the session cart.
func (s *Session) AddItem(ctx context.Context, cmd AddItemCommand) (line CartLine, err error) {
	if s.closed {
		return CartLine{}, ErrSessionClosed
	}
	ctx, span := s.svc.tracer.Start(s.Context(ctx), "checkout.AddItem", trace.WithAttributes(
		attribute.String("variant", string(cmd.Variant)),
		attribute.Int("quantity", cmd.Quantity),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	line, err = s.ledger.AddItem(ctx, cmd.Variant, cmd.ButtonActivated, cmd.Quantity)
	if err != nil {
		return CartLine{}, err
	}
	s.svc.itemsAdded.Add(ctx, int64(line.Quantity), metric.WithAttributes(attribute.String("variant", string(cmd.Variant))))
	return line, nil
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Session) Lines() []CartLine { return s.ledger.Lines() }

// Total returns the cart total in centavos.
func (s *Session) Total() int64 { return s.ledger.Total() }

// ChoosePickup selects store pickup, which carries no shipping fee.
func (s *Session) ChoosePickup() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.shipping = nil
	return nil
}

// ChooseRegion selects the delivery region by 1-based menu index.
func (s *Session) ChooseRegion(index int) (ShippingTier, error) {
	if s.closed {
		return ShippingTier{}, ErrSessionClosed
	}
	tier, err := s.svc.shipping.TierAt(index)
	if err != nil {
		return ShippingTier{}, err
	}
	s.shipping = &tier
	return tier, nil
}

// QuoteShipping returns the fee for the current shipping choice and cart.
func (s *Session) QuoteShipping(ctx context.Context) (int64, error) {
	if s.shipping == nil {
		return 0, nil
	}
	return s.svc.shipping.Quote(s.Context(ctx), s.shipping.Region, s.ledger.TotalBoxes())
}

// PlaceOrder prices the cart, freezes it and returns the resulting order. A pricing failure
// leaves the session open so the caller can retry with corrected payment details.
func (s *Session) PlaceOrder(ctx context.Context, cmd PaymentCommand) (order Order, err error) {
	if s.closed {
		return Order{}, ErrSessionClosed
	}
	ctx, span := s.svc.tracer.Start(s.Context(ctx), "checkout.PlaceOrder", trace.WithAttributes(
		attribute.String("paymentMethod", string(cmd.Method)),
		attribute.Int("installments", cmd.Installments),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if s.customer == nil {
		return Order{}, ErrNoActiveCustomer
	}
	if s.ledger.Len() == 0 {
		return Order{}, ErrEmptyCart
	}

	fee, err := s.QuoteShipping(ctx)
	if err != nil {
		return Order{}, err
	}
	result, err := s.svc.pricing.Price(ctx, PriceCommand{
		CartTotal:    s.ledger.Total(),
		Shipping:     fee,
		Coupon:       cmd.Coupon,
		Method:       cmd.Method,
		Installments: cmd.Installments,
	})
	if err != nil {
		return Order{}, err
	}

	s.ledger.Freeze()
	var shipping *ShippingTier
	if s.shipping != nil {
		tier := *s.shipping
		shipping = &tier
	}
	order = Order{
		ID:            s.svc.newID(),
		Customer:      *s.customer,
		Lines:         s.ledger.Lines(),
		Shipping:      shipping,
		Coupon:        cmd.Coupon,
		CouponApplied: result.CouponApplied,
		PaymentMethod: result.Method,
		Installments:  result.Installments,
		Currency:      s.svc.currency,
		Totals:        result.Totals(),
		PlacedAt:      s.svc.now(),
	}
	s.order = &order
	s.closed = true

	s.svc.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("paymentMethod", string(order.PaymentMethod))))
	s.svc.logger(ctx, "checkout_order_placed", map[string]any{
		"orderId":      order.ID,
		"total":        order.Totals.Total,
		"method":       string(order.PaymentMethod),
		"installments": order.Installments,
		"pickup":       order.IsPickup(),
	})
	return order, nil
}

// Order returns the placed order, if any.
func (s *Session) Order() (Order, bool) {
	if s.order == nil {
		return Order{}, false
	}
	return *s.order, true
}

// Abandon ends the session without an order and returns reserved stock to the catalog.
// It succeeds once; later calls and calls after an order was placed fail with ErrSessionClosed.
func (s *Session) Abandon(ctx context.Context) error {
	if s.order != nil || s.abandoned {
		return ErrSessionClosed
	}
	ctx = s.Context(ctx)
	s.closed = true
	lines := s.ledger.Len()
	if err := s.ledger.Abandon(ctx); err != nil {
		return err
	}
	s.abandoned = true
	s.svc.sessionsAbandoned.Add(ctx, 1)
	s.svc.logger(ctx, "checkout_session_abandoned", map[string]any{"lines": lines})
	return nil
}
