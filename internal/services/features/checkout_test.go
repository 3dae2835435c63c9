package features

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	domain "finitefield.org/pen-checkout/internal/domain"
	"finitefield.org/pen-checkout/internal/platform/money"
	"finitefield.org/pen-checkout/internal/services"
)

type checkoutTestContext struct {
	catalog *services.Catalog
	svc     *services.CheckoutService
	session *services.Session
	order   *services.Order
	err     error
}

func (c *checkoutTestContext) reset() {
	c.catalog = nil
	c.svc = nil
	c.session = nil
	c.order = nil
	c.err = nil
}

func (c *checkoutTestContext) theDefaultCatalogAndDirectory() error {
	catalog, err := services.NewCatalog(services.CatalogDeps{})
	if err != nil {
		return err
	}
	directory := services.NewCustomerDirectory(services.CustomerDirectoryDeps{Customers: []services.Customer{
		{Name: "Ana Silva", Email: "ana@email.com"},
		{Name: "Carlos Souza", Email: "carlos@email.com"},
		{Name: "Carla Dias", Email: "carla@email.com"},
		{Name: "Mariana Lima", Email: "mariana@email.com"},
	}})
	svc, err := services.NewCheckoutService(services.CheckoutServiceDeps{Catalog: catalog, Directory: directory})
	if err != nil {
		return err
	}
	session, err := svc.NewSession(context.Background())
	if err != nil {
		return err
	}
	c.catalog, c.svc, c.session = catalog, svc, session
	return nil
}

func (c *checkoutTestContext) iLogInAs(prefix string) error {
	_, c.err = c.session.Login(context.Background(), prefix)
	return nil
}

func (c *checkoutTestContext) iLogInAsAndPickCandidate(prefix string, index int) error {
	result, err := c.session.Login(context.Background(), prefix)
	if err != nil {
		return err
	}
	if !result.NeedsSelection() {
		return fmt.Errorf("expected several candidates for %q", prefix)
	}
	_, c.err = c.session.SelectCandidate(context.Background(), index)
	return nil
}

func (c *checkoutTestContext) iAddBoxes(quantity int, variant, activation string) error {
	_, c.err = c.session.AddItem(context.Background(), services.AddItemCommand{
		Variant:         domain.Variant(variant),
		ButtonActivated: activation == "with",
		Quantity:        quantity,
	})
	return nil
}

func (c *checkoutTestContext) iChooseDeliveryToRegion(index int) error {
	_, err := c.session.ChooseRegion(index)
	return err
}

func (c *checkoutTestContext) iPickUpAtTheStore() error {
	return c.session.ChoosePickup()
}

func (c *checkoutTestContext) iPayWithUsingCoupon(method, coupon string) error {
	return c.placeOrder(services.PaymentCommand{Coupon: coupon, Method: domain.PaymentMethod(method)})
}

func (c *checkoutTestContext) iPayWithInInstallments(method string, installments int) error {
	return c.placeOrder(services.PaymentCommand{Method: domain.PaymentMethod(method), Installments: installments})
}

func (c *checkoutTestContext) placeOrder(cmd services.PaymentCommand) error {
	order, err := c.session.PlaceOrder(context.Background(), cmd)
	if err != nil {
		return fmt.Errorf("place order: %w", err)
	}
	c.order = &order
	return nil
}

func (c *checkoutTestContext) iAbandonTheSession() error {
	return c.session.Abandon(context.Background())
}

func expectAmount(label string, got int64, want string) error {
	expected, err := money.FromMajor(want)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected %s %s, got %d centavos", label, want, got)
	}
	return nil
}

func (c *checkoutTestContext) theCartTotalIs(want string) error {
	return expectAmount("cart total", c.session.Total(), want)
}

func (c *checkoutTestContext) theOrderTotalIs(want string) error {
	if c.order == nil {
		return errors.New("no order placed")
	}
	return expectAmount("order total", c.order.Totals.Total, want)
}

func (c *checkoutTestContext) theOrderDiscountIs(want string) error {
	if c.order == nil {
		return errors.New("no order placed")
	}
	return expectAmount("discount", c.order.Totals.Discount, want)
}

func (c *checkoutTestContext) theOrderShippingIs(want string) error {
	if c.order == nil {
		return errors.New("no order placed")
	}
	return expectAmount("shipping", c.order.Totals.Shipping, want)
}

func (c *checkoutTestContext) eachInstallmentIs(want string) error {
	if c.order == nil {
		return errors.New("no order placed")
	}
	return expectAmount("installment", c.order.Totals.InstallmentAmount, want)
}

func (c *checkoutTestContext) theStepFailsWith(fragment string) error {
	if c.err == nil {
		return errors.New("expected the step to fail but it succeeded")
	}
	if !strings.Contains(c.err.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got %q", fragment, c.err.Error())
	}
	return nil
}

func (c *checkoutTestContext) theStockOfIs(variant string, want int) error {
	got, err := c.catalog.StockOf(domain.Variant(variant))
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %s stock %d, got %d", variant, want, got)
	}
	return nil
}

func (c *checkoutTestContext) theActiveCustomerIs(name string) error {
	if c.err != nil {
		return c.err
	}
	customer, ok := c.session.Customer()
	if !ok {
		return errors.New("no active customer")
	}
	if customer.Name != name {
		return fmt.Errorf("expected active customer %q, got %q", name, customer.Name)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the default pen catalog and customer directory$`, tc.theDefaultCatalogAndDirectory)
	ctx.Step(`^I log in as "([^"]*)"$`, tc.iLogInAs)
	ctx.Step(`^I log in as "([^"]*)" and pick candidate (\d+)$`, tc.iLogInAsAndPickCandidate)

	// When steps
	ctx.Step(`^I add (\d+) boxes of "([^"]*)" pens (with|without) button$`, tc.iAddBoxes)
	ctx.Step(`^I choose delivery to region (\d+)$`, tc.iChooseDeliveryToRegion)
	ctx.Step(`^I pick up at the store$`, tc.iPickUpAtTheStore)
	ctx.Step(`^I pay with "([^"]*)" using coupon "([^"]*)"$`, tc.iPayWithUsingCoupon)
	ctx.Step(`^I pay with "([^"]*)" in (\d+) installments$`, tc.iPayWithInInstallments)
	ctx.Step(`^I abandon the session$`, tc.iAbandonTheSession)

	// Then steps
	ctx.Step(`^the cart total is "([^"]*)"$`, tc.theCartTotalIs)
	ctx.Step(`^the order total is "([^"]*)"$`, tc.theOrderTotalIs)
	ctx.Step(`^the order discount is "([^"]*)"$`, tc.theOrderDiscountIs)
	ctx.Step(`^the order shipping is "([^"]*)"$`, tc.theOrderShippingIs)
	ctx.Step(`^each installment is "([^"]*)"$`, tc.eachInstallmentIs)
	ctx.Step(`^the step fails with "([^"]*)"$`, tc.theStepFailsWith)
	ctx.Step(`^the stock of "([^"]*)" is (\d+)$`, tc.theStockOfIs)
	ctx.Step(`^the active customer is "([^"]*)"$`, tc.theActiveCustomerIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
