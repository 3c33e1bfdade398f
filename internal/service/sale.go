package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/notification/whatsapp"
	"github.com/bodegaapp/bodega-api/internal/pkg/dateutil"
	"github.com/bodegaapp/bodega-api/internal/repository"
)

// Validation errors of a sale. Their messages are shown to the cashier.
var (
	ErrEmptySale            = errors.New("No hay productos en la venta")
	ErrCreditNeedsCustomer  = errors.New("Se requiere un cliente para ventas a crédito")
	ErrInvalidPaymentMethod = errors.New("Método de pago no válido")
	ErrInvalidSaleItem      = errors.New("Producto con cantidad o precio no válido")
)

var (
	ErrSaleNotFound         = repository.ErrSaleNotFound
	ErrSaleAlreadyCancelled = repository.ErrSaleAlreadyCancelled
	ErrCreditHasPayments    = repository.ErrCreditHasPayments
	ErrInsufficientStock    = repository.ErrInsufficientStock
	ErrSaleNotCredit        = errors.New("sale is not a credit sale")
	ErrSaleWithoutCustomer  = errors.New("sale has no customer to notify")
)

type SaleRepository interface {
	Create(ctx context.Context, sale domain.Sale, credit *domain.Credit) (domain.Sale, error)
	FindByID(ctx context.Context, storeID uint, id int64) (domain.Sale, error)
	FindAll(ctx context.Context, storeID uint, filter domain.SaleFilter) ([]domain.Sale, error)
	Cancel(ctx context.Context, storeID uint, id int64) (domain.Sale, error)
}

type SaleCustomerRepository interface {
	FindByID(ctx context.Context, storeID, id uint) (domain.Customer, error)
}

type SaleCreditRepository interface {
	FindBySaleID(ctx context.Context, storeID uint, saleID int64) (domain.Credit, error)
}

// CreditSettler pays off a credit in full.
type CreditSettler interface {
	MarkAsPaid(ctx context.Context, storeID, creditID uint) (domain.Credit, error)
}

type ReceiptNotifier interface {
	SendPurchaseReceipt(ctx context.Context, phone, customerName string, items []whatsapp.Item, total decimal.Decimal, date, paymentMethod string) error
	SendCreditPurchaseReceipt(ctx context.Context, phone, customerName string, items []whatsapp.Item, total decimal.Decimal, date string) error
}

type IDGenerator interface {
	Next() int64
}

type SaleOptions struct {
	CreditTerm time.Duration
	Location   *time.Location
}

type SaleService struct {
	sales     SaleRepository
	customers SaleCustomerRepository
	credits   SaleCreditRepository
	settler   CreditSettler
	notifier  ReceiptNotifier
	ids       IDGenerator
	opts      SaleOptions
	now       func() time.Time
}

func NewSaleService(
	sales SaleRepository,
	customers SaleCustomerRepository,
	credits SaleCreditRepository,
	settler CreditSettler,
	notifier ReceiptNotifier,
	ids IDGenerator,
	opts SaleOptions,
) *SaleService {
	if opts.Location == nil {
		opts.Location = time.Local
	}

	return &SaleService{
		sales:     sales,
		customers: customers,
		credits:   credits,
		settler:   settler,
		notifier:  notifier,
		ids:       ids,
		opts:      opts,
		now:       time.Now,
	}
}

type SaleInput struct {
	StoreID       uint
	CustomerID    *uint
	Items         []domain.SaleItem
	PaymentMethod domain.PaymentMethod
	// Date defaults to now when zero.
	Date time.Time
}

type SaleResult struct {
	Sale  domain.Sale
	Total decimal.Decimal
}

// SaleID is the sale id as shown to clients.
func (r SaleResult) SaleID() string {
	return fmt.Sprint(r.Sale.ID)
}

// ProcessSale validates and stores a sale. Credit sales open a credit for the
// customer and send the customer a WhatsApp receipt; a failed notification
// does not fail the sale.
func (s *SaleService) ProcessSale(ctx context.Context, in SaleInput) (SaleResult, error) {
	if len(in.Items) == 0 {
		return SaleResult{}, ErrEmptySale
	}
	if in.PaymentMethod == domain.PaymentCredit && in.CustomerID == nil {
		return SaleResult{}, ErrCreditNeedsCustomer
	}
	if !in.PaymentMethod.IsValid() {
		return SaleResult{}, ErrInvalidPaymentMethod
	}
	items := make([]domain.SaleItem, len(in.Items))
	for i, item := range in.Items {
		if item.Quantity <= 0 || item.Price.IsNegative() {
			return SaleResult{}, ErrInvalidSaleItem
		}
		item.Price = domain.RoundMoney(item.Price)
		items[i] = item
	}
	in.Items = items

	total := domain.SumItems(in.Items)

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	var customer *domain.Customer
	if in.CustomerID != nil {
		c, err := s.customers.FindByID(ctx, in.StoreID, *in.CustomerID)
		if err != nil {
			if errors.Is(err, repository.ErrCustomerNotFound) {
				return SaleResult{}, ErrCustomerNotFound
			}

			return SaleResult{}, fmt.Errorf("s.customers.FindByID -> %w", err)
		}
		customer = &c
	}

	sale := domain.Sale{
		ID:            s.ids.Next(),
		StoreID:       in.StoreID,
		CustomerID:    in.CustomerID,
		Items:         in.Items,
		PaymentMethod: in.PaymentMethod,
		Total:         total,
		Date:          date,
		Status:        domain.SaleCompleted,
	}

	var credit *domain.Credit
	if in.PaymentMethod == domain.PaymentCredit {
		sale.Status = domain.SalePendingPayment
		c := domain.NewCredit(in.StoreID, customer.ID, &sale.ID, total, in.Items, date, s.opts.CreditTerm)
		credit = &c
	}

	created, err := s.sales.Create(ctx, sale, credit)
	if err != nil {
		return SaleResult{}, fmt.Errorf("s.sales.Create -> %w", err)
	}
	created.Customer = customer

	if credit != nil {
		err := s.notifier.SendCreditPurchaseReceipt(ctx, customer.Phone, customer.Name,
			receiptItems(in.Items), total, dateutil.Format(date.In(s.opts.Location)))
		if err != nil {
			zap.L().Warn("credit purchase receipt not sent",
				zap.Int64("sale_id", created.ID),
				zap.Uint("customer_id", customer.ID),
				zap.Error(err))
		}
	}

	return SaleResult{Sale: created, Total: total}, nil
}

func receiptItems(items []domain.SaleItem) []whatsapp.Item {
	out := make([]whatsapp.Item, len(items))
	for i, item := range items {
		out[i] = whatsapp.Item{Name: item.Name, Quantity: item.Quantity, Price: item.Price}
	}

	return out
}

func (s *SaleService) GetSale(ctx context.Context, storeID uint, id int64) (domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, storeID, id)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("s.sales.FindByID -> %w", err)
	}

	return sale, nil
}

func (s *SaleService) ListSales(ctx context.Context, storeID uint, filter domain.SaleFilter) ([]domain.Sale, error) {
	sales, err := s.sales.FindAll(ctx, storeID, filter)
	if err != nil {
		return nil, fmt.Errorf("s.sales.FindAll -> %w", err)
	}

	return sales, nil
}

// MarkAsPaid settles the credit opened by a credit sale.
func (s *SaleService) MarkAsPaid(ctx context.Context, storeID uint, id int64) (domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, storeID, id)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("s.sales.FindByID -> %w", err)
	}
	if sale.PaymentMethod != domain.PaymentCredit {
		return domain.Sale{}, ErrSaleNotCredit
	}

	credit, err := s.credits.FindBySaleID(ctx, storeID, id)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("s.credits.FindBySaleID -> %w", err)
	}

	if _, err := s.settler.MarkAsPaid(ctx, storeID, credit.ID); err != nil {
		return domain.Sale{}, fmt.Errorf("s.settler.MarkAsPaid -> %w", err)
	}

	return s.GetSale(ctx, storeID, id)
}

func (s *SaleService) CancelSale(ctx context.Context, storeID uint, id int64) (domain.Sale, error) {
	sale, err := s.sales.Cancel(ctx, storeID, id)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("s.sales.Cancel -> %w", err)
	}

	return sale, nil
}

// ResendReceipt sends the purchase receipt of a sale again.
func (s *SaleService) ResendReceipt(ctx context.Context, storeID uint, id int64) error {
	sale, err := s.sales.FindByID(ctx, storeID, id)
	if err != nil {
		return fmt.Errorf("s.sales.FindByID -> %w", err)
	}
	if sale.Customer == nil || sale.Customer.Phone == "" {
		return ErrSaleWithoutCustomer
	}

	err = s.notifier.SendPurchaseReceipt(ctx, sale.Customer.Phone, sale.Customer.Name,
		receiptItems(sale.Items), sale.Total, dateutil.Format(sale.Date.In(s.opts.Location)), sale.PaymentMethod.Label())
	if err != nil {
		return fmt.Errorf("s.notifier.SendPurchaseReceipt -> %w", err)
	}

	return nil
}
