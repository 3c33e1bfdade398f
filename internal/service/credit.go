package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/pkg/dateutil"
	"github.com/bodegaapp/bodega-api/internal/repository"
)

var (
	ErrCreditNotFound       = repository.ErrCreditNotFound
	ErrCreditAlreadyPaid    = domain.ErrCreditAlreadyPaid
	ErrInvalidPaymentAmount = domain.ErrInvalidPaymentAmount
	ErrPaymentExceedsDebt   = domain.ErrPaymentExceedsDebt
	ErrCustomerWithoutPhone = errors.New("customer has no phone number")
)

type CreditRepository interface {
	FindByID(ctx context.Context, storeID, id uint) (domain.Credit, error)
	FindAll(ctx context.Context, storeID uint, filter domain.CreditFilter, now time.Time) ([]domain.Credit, error)
	FindOverdue(ctx context.Context, now time.Time) ([]domain.Credit, error)
	ApplyPayment(ctx context.Context, storeID, creditID uint, apply func(*domain.Credit) (domain.CreditPayment, error)) (domain.Credit, domain.CreditPayment, error)
}

type CreditNotifier interface {
	SendCreditPaymentReceipt(ctx context.Context, phone, customerName string, amount, remainingBalance decimal.Decimal, date string) error
	SendPaymentReminder(ctx context.Context, phone, customerName string, amount decimal.Decimal, dueDate string) error
}

type CreditService struct {
	repo     CreditRepository
	notifier CreditNotifier
	pool     *ants.Pool
	loc      *time.Location
	now      func() time.Time
}

// NewCreditService builds the service. Reminders are sent concurrently on
// pool, which the caller owns and releases.
func NewCreditService(repo CreditRepository, notifier CreditNotifier, pool *ants.Pool, loc *time.Location) *CreditService {
	if loc == nil {
		loc = time.Local
	}

	return &CreditService{
		repo:     repo,
		notifier: notifier,
		pool:     pool,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *CreditService) ListCredits(ctx context.Context, storeID uint, filter domain.CreditFilter) ([]domain.Credit, error) {
	credits, err := s.repo.FindAll(ctx, storeID, filter, s.now())
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return credits, nil
}

func (s *CreditService) GetCredit(ctx context.Context, storeID, id uint) (domain.Credit, error) {
	credit, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return domain.Credit{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return credit, nil
}

// RegisterPayment applies a payment to a credit and sends the customer a
// receipt with the remaining balance. A failed receipt is only logged.
func (s *CreditService) RegisterPayment(ctx context.Context, storeID, creditID uint, amount decimal.Decimal) (domain.Credit, domain.CreditPayment, error) {
	now := s.now()

	credit, payment, err := s.repo.ApplyPayment(ctx, storeID, creditID, func(c *domain.Credit) (domain.CreditPayment, error) {
		return c.ApplyPayment(amount, now)
	})
	if err != nil {
		return domain.Credit{}, domain.CreditPayment{}, fmt.Errorf("s.repo.ApplyPayment -> %w", err)
	}

	s.sendPaymentReceipt(ctx, credit, payment)

	return credit, payment, nil
}

// MarkAsPaid pays whatever is left of the credit.
func (s *CreditService) MarkAsPaid(ctx context.Context, storeID, creditID uint) (domain.Credit, error) {
	now := s.now()

	credit, payment, err := s.repo.ApplyPayment(ctx, storeID, creditID, func(c *domain.Credit) (domain.CreditPayment, error) {
		return c.ApplyPayment(c.Balance, now)
	})
	if err != nil {
		return domain.Credit{}, fmt.Errorf("s.repo.ApplyPayment -> %w", err)
	}

	s.sendPaymentReceipt(ctx, credit, payment)

	return credit, nil
}

func (s *CreditService) sendPaymentReceipt(ctx context.Context, credit domain.Credit, payment domain.CreditPayment) {
	if credit.Customer == nil || credit.Customer.Phone == "" {
		return
	}

	err := s.notifier.SendCreditPaymentReceipt(ctx, credit.Customer.Phone, credit.Customer.Name,
		payment.Amount, payment.RemainingBalance, dateutil.Format(payment.Date.In(s.loc)))
	if err != nil {
		zap.L().Warn("credit payment receipt not sent",
			zap.Uint("credit_id", credit.ID),
			zap.Error(err))
	}
}

// SendReminders sends every reminder concurrently. Results keep the order of
// reminders.
func (s *CreditService) SendReminders(ctx context.Context, reminders []domain.Reminder) []domain.ReminderResult {
	results := make([]domain.ReminderResult, len(reminders))

	var wg sync.WaitGroup
	for i, r := range reminders {
		i, r := i, r
		results[i].CustomerID = r.CustomerID

		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()

			err := s.notifier.SendPaymentReminder(ctx, r.Phone, r.CustomerName, r.Amount, r.DueDate)
			if err != nil {
				zap.L().Warn("payment reminder not sent",
					zap.Uint("customer_id", r.CustomerID),
					zap.Error(err))

				return
			}
			results[i].Success = true
		})
		if err != nil {
			wg.Done()
			zap.L().Error("payment reminder not scheduled",
				zap.Uint("customer_id", r.CustomerID),
				zap.Error(err))
		}
	}
	wg.Wait()

	return results
}

// SendReminder sends a payment reminder for one stored credit.
func (s *CreditService) SendReminder(ctx context.Context, storeID, creditID uint) error {
	credit, err := s.repo.FindByID(ctx, storeID, creditID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !credit.Balance.IsPositive() {
		return ErrCreditAlreadyPaid
	}

	reminder, ok := s.reminderFor(credit)
	if !ok {
		return ErrCustomerWithoutPhone
	}

	err = s.notifier.SendPaymentReminder(ctx, reminder.Phone, reminder.CustomerName, reminder.Amount, reminder.DueDate)
	if err != nil {
		return fmt.Errorf("s.notifier.SendPaymentReminder -> %w", err)
	}

	return nil
}

// SendOverdueReminders reminds every customer with an overdue credit, in
// every active store.
func (s *CreditService) SendOverdueReminders(ctx context.Context) (sent, failed int, err error) {
	credits, err := s.repo.FindOverdue(ctx, s.now())
	if err != nil {
		return 0, 0, fmt.Errorf("s.repo.FindOverdue -> %w", err)
	}

	reminders := make([]domain.Reminder, 0, len(credits))
	for _, credit := range credits {
		reminder, ok := s.reminderFor(credit)
		if !ok {
			failed++
			continue
		}
		reminders = append(reminders, reminder)
	}

	for _, result := range s.SendReminders(ctx, reminders) {
		if result.Success {
			sent++
		} else {
			failed++
		}
	}

	return sent, failed, nil
}

func (s *CreditService) reminderFor(credit domain.Credit) (domain.Reminder, bool) {
	if credit.Customer == nil || credit.Customer.Phone == "" {
		return domain.Reminder{}, false
	}

	return domain.Reminder{
		CustomerID:   credit.CustomerID,
		CustomerName: credit.Customer.Name,
		Phone:        credit.Customer.Phone,
		Amount:       credit.Balance,
		DueDate:      dateutil.Format(credit.DueDate.In(s.loc)),
	}, true
}
