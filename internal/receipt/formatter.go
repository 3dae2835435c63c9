package receipt

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	domain "finitefield.org/pen-checkout/internal/domain"
	"finitefield.org/pen-checkout/internal/platform/money"
)

const dateLayout = "02/01/2006 15:04:05"

var currencySymbols = map[string]string{
	"BRL": "R$",
	"USD": "US$",
	"EUR": "€",
}

// FormatterOptions controls locale-dependent rendering.
type FormatterOptions struct {
	Locale   language.Tag
	Location *time.Location
	Currency string
}

// Formatter renders placed orders as plain-text receipts.
type Formatter struct {
	printer  *message.Printer
	location *time.Location
	currency string
}

// NewFormatter defaults to pt-BR, UTC and BRL.
func NewFormatter(opts FormatterOptions) *Formatter {
	locale := opts.Locale
	if locale == language.Und {
		locale = language.BrazilianPortuguese
	}
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	currency := strings.ToUpper(strings.TrimSpace(opts.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return &Formatter{
		printer:  message.NewPrinter(locale),
		location: location,
		currency: currency,
	}
}

// Amount renders minor units with the currency symbol, e.g. "R$ 1.234,56".
func (f *Formatter) Amount(minor int64) string {
	symbol, ok := currencySymbols[f.currency]
	if !ok {
		symbol = f.currency
	}
	major := money.ToMajor(minor).InexactFloat64()
	return symbol + " " + f.printer.Sprint(number.Decimal(major, number.Scale(2)))
}

// Render produces the receipt text for order.
func (f *Formatter) Render(order domain.Order) string {
	var b strings.Builder
	b.WriteString("=== RECIBO DE COMPRA ===\n")
	fmt.Fprintf(&b, "Cliente: %s (%s)\n", order.Customer.Name, order.Customer.Email)
	fmt.Fprintf(&b, "Data: %s\n\n", order.PlacedAt.In(f.location).Format(dateLayout))

	for _, line := range order.Lines {
		fmt.Fprintf(&b, "- %d caixa(s) de %s → %s/caixa → %s\n",
			line.Quantity, line.Pen.Describe(), f.Amount(line.UnitPrice), f.Amount(line.Subtotal))
	}

	totals := order.Totals
	if totals.Discount > 0 {
		fmt.Fprintf(&b, "\n🎉 Descontos aplicados: -%s\n", f.Amount(totals.Discount))
	}
	if totals.Shipping > 0 {
		fmt.Fprintf(&b, "📦 Frete: %s\n", f.Amount(totals.Shipping))
	}
	fmt.Fprintf(&b, "\n💰 Total a pagar: %s\n", f.Amount(totals.Total))
	if order.PaymentMethod == domain.PaymentCreditCard && order.Installments > 1 {
		fmt.Fprintf(&b, "💳 Parcelado em %dx de %s\n", order.Installments, f.Amount(totals.InstallmentAmount))
	}
	b.WriteString("\nObrigado pela sua compra!\n")
	return b.String()
}
