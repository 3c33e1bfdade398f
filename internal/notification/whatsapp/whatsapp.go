// Package whatsapp sends the template messages BodegaApp uses to keep store
// customers informed: purchase receipts, payment receipts and reminders.
package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bodegaapp/bodega-api/internal/pkg/money"
)

const (
	TemplatePurchaseReceipt      = "purchase_receipt"
	TemplateCreditPaymentReceipt = "credit_payment_receipt"
	TemplatePaymentReminder      = "payment_reminder"

	PaymentMethodCash   = "efectivo"
	PaymentMethodCredit = "crédito"
)

type Message struct {
	To           string            `json:"to"`
	TemplateName string            `json:"templateName"`
	TemplateData map[string]string `json:"templateData"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Item struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Service struct {
	sender Sender
}

func NewService(sender Sender) *Service {
	return &Service{
		sender: sender,
	}
}

// SendPurchaseReceipt sends a purchase receipt. paymentMethod is printed as
// is and defaults to "crédito" when empty. date is expected as dd/mm/yyyy.
func (s *Service) SendPurchaseReceipt(ctx context.Context, phone, customerName string, items []Item, total decimal.Decimal, date, paymentMethod string) error {
	if paymentMethod == "" {
		paymentMethod = PaymentMethodCredit
	}

	zap.L().Info("sending purchase receipt",
		zap.String("customer", customerName),
		zap.String("phone", phone),
		zap.String("payment_method", paymentMethod))

	return s.send(ctx, Message{
		To:           phone,
		TemplateName: TemplatePurchaseReceipt,
		TemplateData: map[string]string{
			"customerName":  customerName,
			"itemsList":     ItemsList(items),
			"total":         money.Fixed(total),
			"date":          date,
			"paymentMethod": paymentMethod,
		},
	})
}

func (s *Service) SendCreditPurchaseReceipt(ctx context.Context, phone, customerName string, items []Item, total decimal.Decimal, date string) error {
	return s.SendPurchaseReceipt(ctx, phone, customerName, items, total, date, PaymentMethodCredit)
}

func (s *Service) SendCreditPaymentReceipt(ctx context.Context, phone, customerName string, amount, remainingBalance decimal.Decimal, date string) error {
	zap.L().Info("sending credit payment receipt",
		zap.String("customer", customerName),
		zap.String("phone", phone))

	return s.send(ctx, Message{
		To:           phone,
		TemplateName: TemplateCreditPaymentReceipt,
		TemplateData: map[string]string{
			"customerName":     customerName,
			"amount":           money.Fixed(amount),
			"remainingBalance": money.Fixed(remainingBalance),
			"date":             date,
		},
	})
}

func (s *Service) SendPaymentReminder(ctx context.Context, phone, customerName string, amount decimal.Decimal, dueDate string) error {
	zap.L().Info("sending payment reminder",
		zap.String("customer", customerName),
		zap.String("phone", phone))

	return s.send(ctx, Message{
		To:           phone,
		TemplateName: TemplatePaymentReminder,
		TemplateData: map[string]string{
			"customerName": customerName,
			"amount":       money.Fixed(amount),
			"dueDate":      dueDate,
		},
	})
}

func (s *Service) send(ctx context.Context, msg Message) error {
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("s.sender.Send -> %w", err)
	}

	return nil
}

// ItemsList renders one "name xQ - S/. price" line per item.
func ItemsList(items []Item) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s x%d - %s", item.Name, item.Quantity, money.Soles(item.Price))
	}

	return strings.Join(lines, "\n")
}

// LogSender only logs the message. It is the default sender.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	zap.L().Info("whatsapp message",
		zap.String("to", msg.To),
		zap.String("template", msg.TemplateName),
		zap.Any("data", msg.TemplateData))

	return nil
}
