package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	domain "finitefield.org/pen-checkout/internal/domain"
	"finitefield.org/pen-checkout/internal/receipt"
	"finitefield.org/pen-checkout/internal/services"
)

var errInputClosed = errors.New("prompt: input closed before checkout finished")

// shop drives one checkout session over a line-based terminal.
type shop struct {
	in           *bufio.Scanner
	out          io.Writer
	checkout     *services.CheckoutService
	receipts     *receipt.Issuer
	restoreStock bool
	logger       *zap.Logger
}

func newShop(in io.Reader, out io.Writer, checkout *services.CheckoutService, receipts *receipt.Issuer, restoreStock bool, logger *zap.Logger) *shop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &shop{
		in:           bufio.NewScanner(in),
		out:          out,
		checkout:     checkout,
		receipts:     receipts,
		restoreStock: restoreStock,
		logger:       logger,
	}
}

func (s *shop) run(ctx context.Context) (err error) {
	session, err := s.checkout.NewSession(ctx)
	if err != nil {
		return err
	}
	ctx = session.Context(ctx)
	defer func() {
		if err == nil || !s.restoreStock {
			return
		}
		if _, placed := session.Order(); placed {
			return
		}
		if abandonErr := session.Abandon(ctx); abandonErr != nil && !errors.Is(abandonErr, services.ErrSessionClosed) {
			s.logger.Warn("failed to restore stock for abandoned session", zap.String("sessionId", session.ID()), zap.Error(abandonErr))
		}
	}()

	if err := s.identify(ctx, session); err != nil {
		return err
	}
	if err := s.fillCart(ctx, session); err != nil {
		return err
	}
	if err := s.chooseDelivery(ctx, session); err != nil {
		return err
	}
	order, err := s.pay(ctx, session)
	if err != nil {
		return err
	}
	s.printSummary(order)

	location, err := s.receipts.Issue(ctx, order)
	if err != nil {
		return err
	}
	s.printf("\n🧾 Recibo gerado: %s\n", location)
	return nil
}

func (s *shop) identify(ctx context.Context, session *services.Session) error {
	s.printf("=== Sistema de Clientes ===\n1 - Logar com cliente existente\n2 - Cadastrar novo cliente\n")
	option, err := s.choose("Escolha uma opção: ", 1, 2)
	if err != nil {
		return err
	}

	if option == 2 {
		for {
			name, err := s.readLine("Digite o nome completo do cliente: ")
			if err != nil {
				return err
			}
			if name == "" {
				s.printf("❌ Informe o nome do cliente.\n\n")
				continue
			}
			email, err := s.readLine("Digite o e-mail do cliente: ")
			if err != nil {
				return err
			}
			customer, err := session.Register(ctx, name, email)
			if err != nil {
				return err
			}
			s.printf("\n✅ Cliente %s cadastrado e logado com sucesso!\n\n", customer.Name)
			return nil
		}
	}

	prefix, err := s.readLine("\nDigite o primeiro nome do cliente: ")
	if err != nil {
		return err
	}
	result, err := session.Login(ctx, prefix)
	if err != nil {
		s.printf("❌ %s\n", describe(err))
		return err
	}
	if !result.NeedsSelection() {
		s.printf("\n✅ Login realizado automaticamente: %s\n\n", result.Customer.Name)
		return nil
	}

	s.printf("\nForam encontrados vários clientes:\n")
	for i, c := range result.Candidates {
		s.printf("%d - %s (%s)\n", i+1, c.Name, c.Email)
	}
	for {
		index, err := s.readInt("\nDigite o número do cliente para fazer login: ")
		if err != nil {
			return err
		}
		customer, err := session.SelectCandidate(ctx, index)
		if err != nil {
			s.printf("❌ %s\n", describe(err))
			continue
		}
		s.printf("\n✅ Bem-vindo, %s!\n\n", customer.Name)
		return nil
	}
}

func (s *shop) fillCart(ctx context.Context, session *services.Session) error {
	s.printf("=== 🖊️ Loja de Canetas ===\n\n")
	formatter := s.receipts.Formatter()
	for {
		listing, err := s.chooseListing(formatter)
		if err != nil {
			return err
		}

		var pen domain.Pen
		for {
			s.printf("\nDeseja com acionamento por botão?\n1 - Sim\n2 - Não\n")
			option, err := s.choose("Digite a opção: ", 1, 2)
			if err != nil {
				return err
			}
			pen, err = domain.NewPen(listing.Variant, option == 1)
			if err != nil {
				s.printf("❌ %s\n", describe(err))
				continue
			}
			break
		}

		for {
			qty, err := s.readInt("Digite a quantidade de caixas: ")
			if err != nil {
				return err
			}
			line, err := session.AddItem(ctx, services.AddItemCommand{
				Variant:         pen.Variant(),
				ButtonActivated: pen.ButtonActivated(),
				Quantity:        qty,
			})
			if err != nil {
				if !services.IsRecoverable(err) {
					return err
				}
				if errors.Is(err, services.ErrInsufficientStock) {
					s.printf("❌ Estoque insuficiente! Só restam %d caixas.\n\n", s.remainingStock(pen.Variant()))
					continue
				}
				s.printf("❌ %s\n\n", describe(err))
				continue
			}
			s.printf("\n✅ %d caixa(s) de %s adicionada(s) ao carrinho!\n\n", line.Quantity, line.Pen.Describe())
			break
		}

		next, err := s.choose("Deseja comprar outra caneta? (1 - Sim, 2 - Finalizar): ", 1, 2)
		if err != nil {
			return err
		}
		if next == 2 {
			return nil
		}
		s.printf("\n")
	}
}

func (s *shop) remainingStock(variant domain.Variant) int {
	for _, l := range s.checkout.Listings() {
		if l.Variant == variant {
			return l.Stock
		}
	}
	return 0
}

func (s *shop) chooseListing(formatter *receipt.Formatter) (services.VariantListing, error) {
	for {
		s.printf("Opções disponíveis (preço por caixa / estoque):\n")
		for i, l := range s.checkout.Listings() {
			rule := "com ou sem botão"
			if l.RequiresButton {
				rule = "⚠️ somente COM botão"
			}
			s.printf("%d - %s (%s, %s, estoque: %d caixas)\n", i+1, l.Variant.Label(), formatter.Amount(l.UnitPrice), rule, l.Stock)
		}
		index, err := s.readInt("Digite o número da cor desejada: ")
		if err != nil {
			return services.VariantListing{}, err
		}
		listing, err := s.checkout.ListingAt(index)
		if err != nil {
			s.printf("❌ %s\n\n", describe(err))
			continue
		}
		return listing, nil
	}
}

func (s *shop) chooseDelivery(ctx context.Context, session *services.Session) error {
	s.printf("\nOpções de entrega:\n1 - Retirada na loja (sem custo)\n2 - Entrega com frete\n")
	option, err := s.choose("Digite a opção: ", 1, 2)
	if err != nil {
		return err
	}
	if option == 1 {
		return session.ChoosePickup()
	}

	formatter := s.receipts.Formatter()
	s.printf("\nEscolha a região de entrega:\n")
	for i, tier := range s.checkout.ShippingTiers() {
		s.printf("%d - %s (%s + %s/caixa)\n", i+1, tier.Region, formatter.Amount(tier.BaseFee), formatter.Amount(tier.ExtraPerBox))
	}
	for {
		index, err := s.readInt("Digite a opção: ")
		if err != nil {
			return err
		}
		tier, err := session.ChooseRegion(index)
		if errors.Is(err, services.ErrSessionClosed) {
			return err
		}
		if err != nil {
			s.printf("❌ %s\n", describe(err))
			continue
		}
		fee, err := session.QuoteShipping(ctx)
		if err != nil {
			return err
		}
		s.printf("📦 Entrega para %s: %s\n", tier.Region, formatter.Amount(fee))
		return nil
	}
}

func (s *shop) pay(ctx context.Context, session *services.Session) (domain.Order, error) {
	coupon, err := s.readLine("\nDigite um cupom de desconto (ou Enter): ")
	if err != nil {
		return domain.Order{}, err
	}

	s.printf("\nFormas de pagamento:\n1 - PIX (5%% de desconto extra)\n2 - Cartão de crédito\n3 - Boleto bancário\n")
	methods := domain.PaymentMethods()
	option, err := s.choose("Escolha a forma de pagamento: ", 1, len(methods))
	if err != nil {
		return domain.Order{}, err
	}
	method := methods[option-1]

	formatter := s.receipts.Formatter()
	for {
		installments := 1
		if method == domain.PaymentCreditCard {
			installments, err = s.readInt("Digite o número de parcelas (1 a 6): ")
			if err != nil {
				return domain.Order{}, err
			}
		}
		order, err := session.PlaceOrder(ctx, services.PaymentCommand{Coupon: coupon, Method: method, Installments: installments})
		if errors.Is(err, services.ErrInvalidInstallments) {
			s.printf("❌ %s\n", describe(err))
			continue
		}
		if err != nil {
			return domain.Order{}, err
		}

		switch {
		case order.Totals.PixDiscount > 0:
			s.printf("💳 Pagamento via PIX: desconto de %s\n", formatter.Amount(order.Totals.PixDiscount))
		case order.Totals.CardSurcharge > 0:
			s.printf("⚠️ Parcelamento em %dx terá juros de 5%% (+%s)\n", order.Installments, formatter.Amount(order.Totals.CardSurcharge))
		case method == domain.PaymentBankSlip:
			s.printf("📄 Pagamento no boleto escolhido.\n")
		}
		return order, nil
	}
}

func (s *shop) printSummary(order domain.Order) {
	formatter := s.receipts.Formatter()
	s.printf("\n=== 🛒 Resumo da Compra ===\n")
	s.printf("Cliente: %s (%s)\n\n", order.Customer.Name, order.Customer.Email)
	for _, line := range order.Lines {
		s.printf("- %d caixa(s) de %s → %s\n", line.Quantity, line.Pen.Describe(), formatter.Amount(line.Subtotal))
	}
	if order.Totals.Discount > 0 {
		s.printf("\n🎉 Descontos aplicados: -%s\n", formatter.Amount(order.Totals.Discount))
	}
	if order.Totals.Shipping > 0 {
		s.printf("📦 Frete: %s\n", formatter.Amount(order.Totals.Shipping))
	}
	s.printf("\n💰 Total a pagar: %s\n", formatter.Amount(order.Totals.Total))
	if order.PaymentMethod == domain.PaymentCreditCard && order.Installments > 1 {
		s.printf("💳 Parcelado em %dx de %s\n", order.Installments, formatter.Amount(order.Totals.InstallmentAmount))
	}
}

func (s *shop) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *shop) readLine(label string) (string, error) {
	s.printf("%s", label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *shop) readInt(label string) (int, error) {
	for {
		raw, err := s.readLine(label)
		if err != nil {
			return 0, err
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			s.printf("❌ Digite um número válido.\n\n")
			continue
		}
		return value, nil
	}
}

func (s *shop) choose(label string, lo, hi int) (int, error) {
	for {
		value, err := s.readInt(label)
		if err != nil {
			return 0, err
		}
		if value < lo || value > hi {
			s.printf("❌ Opção inválida.\n\n")
			continue
		}
		return value, nil
	}
}

// describe renders a core error as the message shown before re-prompting.
func describe(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidConfiguration):
		return "Caneta vermelha exige acionamento por botão."
	case errors.Is(err, services.ErrInsufficientStock):
		return "Estoque insuficiente!"
	case errors.Is(err, services.ErrInvalidQuantity):
		return "Quantidade deve ser maior que zero."
	case errors.Is(err, services.ErrSelectionOutOfRange):
		return "Opção inválida."
	case errors.Is(err, services.ErrNoCustomerFound):
		return "Nenhum cliente encontrado."
	case errors.Is(err, services.ErrInvalidInstallments):
		return "Número de parcelas deve estar entre 1 e 6."
	default:
		return err.Error()
	}
}
