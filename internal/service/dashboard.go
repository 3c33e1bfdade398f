package service

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/pkg/dateutil"
)

const recentSalesLimit = 5

type DashboardSaleRepository interface {
	FindAll(ctx context.Context, storeID uint, filter domain.SaleFilter) ([]domain.Sale, error)
}

type DashboardCreditRepository interface {
	SumPending(ctx context.Context, storeID uint) (decimal.Decimal, error)
}

type DashboardProductRepository interface {
	FindLowStock(ctx context.Context, storeID uint, limit int) ([]domain.Product, error)
}

type DashboardService struct {
	sales         DashboardSaleRepository
	credits       DashboardCreditRepository
	products      DashboardProductRepository
	lowStockLimit int
	loc           *time.Location
	now           func() time.Time
}

func NewDashboardService(
	sales DashboardSaleRepository,
	credits DashboardCreditRepository,
	products DashboardProductRepository,
	lowStockLimit int,
	loc *time.Location,
) *DashboardService {
	if loc == nil {
		loc = time.Local
	}

	return &DashboardService{
		sales:         sales,
		credits:       credits,
		products:      products,
		lowStockLimit: lowStockLimit,
		loc:           loc,
		now:           time.Now,
	}
}

type DashboardSummary struct {
	Date           string           `json:"date"`
	SalesTotal     decimal.Decimal  `json:"sales_total"`
	SalesCount     int              `json:"sales_count"`
	CashTotal      decimal.Decimal  `json:"cash_total"`
	CreditTotal    decimal.Decimal  `json:"credit_total"`
	PendingCredits decimal.Decimal  `json:"pending_credits"`
	AverageTicket  decimal.Decimal  `json:"average_ticket"`
	MedianTicket   decimal.Decimal  `json:"median_ticket"`
	LowStock       []domain.Product `json:"low_stock"`
	RecentSales    []domain.Sale    `json:"recent_sales"`
}

// Summary aggregates today's activity of a store. Cancelled sales are left
// out of every figure.
func (s *DashboardService) Summary(ctx context.Context, storeID uint) (DashboardSummary, error) {
	from := dateutil.StartOfDay(s.now().In(s.loc))
	to := from.AddDate(0, 0, 1)

	today, err := s.sales.FindAll(ctx, storeID, domain.SaleFilter{From: &from, To: &to})
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("s.sales.FindAll -> %w", err)
	}

	summary := DashboardSummary{
		Date:        dateutil.Format(from),
		SalesTotal:  decimal.Zero,
		CashTotal:   decimal.Zero,
		CreditTotal: decimal.Zero,
	}

	var tickets stats.Float64Data
	for _, sale := range today {
		if sale.Status == domain.SaleCancelled {
			continue
		}

		summary.SalesCount++
		summary.SalesTotal = summary.SalesTotal.Add(sale.Total)
		if sale.PaymentMethod == domain.PaymentCash {
			summary.CashTotal = summary.CashTotal.Add(sale.Total)
		} else {
			summary.CreditTotal = summary.CreditTotal.Add(sale.Total)
		}
		tickets = append(tickets, sale.Total.InexactFloat64())
	}

	summary.AverageTicket, summary.MedianTicket = ticketStats(tickets)

	summary.PendingCredits, err = s.credits.SumPending(ctx, storeID)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("s.credits.SumPending -> %w", err)
	}

	summary.LowStock, err = s.products.FindLowStock(ctx, storeID, s.lowStockLimit)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("s.products.FindLowStock -> %w", err)
	}

	summary.RecentSales, err = s.sales.FindAll(ctx, storeID, domain.SaleFilter{Limit: recentSalesLimit})
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("s.sales.FindAll -> %w", err)
	}

	return summary, nil
}

func ticketStats(tickets stats.Float64Data) (mean, median decimal.Decimal) {
	if len(tickets) == 0 {
		return decimal.Zero, decimal.Zero
	}

	m, err := tickets.Mean()
	if err != nil {
		return decimal.Zero, decimal.Zero
	}
	md, err := tickets.Median()
	if err != nil {
		return decimal.Zero, decimal.Zero
	}

	return decimal.NewFromFloat(m).Round(2), decimal.NewFromFloat(md).Round(2)
}
