package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/notification/email"
	"github.com/bodegaapp/bodega-api/internal/notification/whatsapp"
	"github.com/bodegaapp/bodega-api/internal/repository"
)

type fixedIDs struct{ next int64 }

func (g *fixedIDs) Next() int64 {
	g.next++
	return g.next
}

type fakeSaleRepo struct {
	sales      map[int64]domain.Sale
	lastCredit *domain.Credit
	createErr  error
	filter     domain.SaleFilter
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: map[int64]domain.Sale{}}
}

func (r *fakeSaleRepo) Create(_ context.Context, sale domain.Sale, credit *domain.Credit) (domain.Sale, error) {
	if r.createErr != nil {
		return domain.Sale{}, r.createErr
	}
	r.sales[sale.ID] = sale
	r.lastCredit = credit

	return sale, nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, storeID uint, id int64) (domain.Sale, error) {
	sale, ok := r.sales[id]
	if !ok || sale.StoreID != storeID {
		return domain.Sale{}, repository.ErrSaleNotFound
	}

	return sale, nil
}

func (r *fakeSaleRepo) FindAll(_ context.Context, storeID uint, filter domain.SaleFilter) ([]domain.Sale, error) {
	r.filter = filter

	var out []domain.Sale
	for _, s := range r.sales {
		if s.StoreID == storeID {
			out = append(out, s)
		}
	}

	return out, nil
}

func (r *fakeSaleRepo) Cancel(_ context.Context, storeID uint, id int64) (domain.Sale, error) {
	sale, ok := r.sales[id]
	if !ok || sale.StoreID != storeID {
		return domain.Sale{}, repository.ErrSaleNotFound
	}
	sale.Status = domain.SaleCancelled
	r.sales[id] = sale

	return sale, nil
}

type fakeCustomerRepo struct {
	customers map[uint]domain.Customer
	deleted   []uint
}

func (r *fakeCustomerRepo) Create(_ context.Context, c domain.Customer) (domain.Customer, error) {
	c.ID = uint(len(r.customers) + 1)
	r.customers[c.ID] = c

	return c, nil
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, storeID, id uint) (domain.Customer, error) {
	c, ok := r.customers[id]
	if !ok || c.StoreID != storeID {
		return domain.Customer{}, repository.ErrCustomerNotFound
	}

	return c, nil
}

func (r *fakeCustomerRepo) FindAll(_ context.Context, storeID uint, _ string, _ bool) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, c := range r.customers {
		if c.StoreID == storeID {
			out = append(out, c)
		}
	}

	return out, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, c domain.Customer) (domain.Customer, error) {
	r.customers[c.ID] = c
	return c, nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, storeID, id uint) error {
	c, ok := r.customers[id]
	if !ok || c.StoreID != storeID {
		return repository.ErrCustomerNotFound
	}
	if c.HasDebt() {
		return repository.ErrCustomerHasDebt
	}
	r.deleted = append(r.deleted, id)

	return nil
}

type receiptCall struct {
	Method        string
	Phone         string
	Name          string
	Items         []whatsapp.Item
	Total         decimal.Decimal
	Amount        decimal.Decimal
	Remaining     decimal.Decimal
	Date          string
	PaymentMethod string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []receiptCall
	// failFor makes sends to these phones fail.
	failFor map[string]bool
	err     error
}

func (n *fakeNotifier) record(c receiptCall) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.calls = append(n.calls, c)
	if n.failFor[c.Phone] {
		return n.err
	}

	return nil
}

func (n *fakeNotifier) SendPurchaseReceipt(_ context.Context, phone, name string, items []whatsapp.Item, total decimal.Decimal, date, paymentMethod string) error {
	return n.record(receiptCall{Method: "purchase", Phone: phone, Name: name, Items: items, Total: total, Date: date, PaymentMethod: paymentMethod})
}

func (n *fakeNotifier) SendCreditPurchaseReceipt(_ context.Context, phone, name string, items []whatsapp.Item, total decimal.Decimal, date string) error {
	return n.record(receiptCall{Method: "credit_purchase", Phone: phone, Name: name, Items: items, Total: total, Date: date, PaymentMethod: whatsapp.PaymentMethodCredit})
}

func (n *fakeNotifier) SendCreditPaymentReceipt(_ context.Context, phone, name string, amount, remaining decimal.Decimal, date string) error {
	return n.record(receiptCall{Method: "payment", Phone: phone, Name: name, Amount: amount, Remaining: remaining, Date: date})
}

func (n *fakeNotifier) SendPaymentReminder(_ context.Context, phone, name string, amount decimal.Decimal, dueDate string) error {
	return n.record(receiptCall{Method: "reminder", Phone: phone, Name: name, Amount: amount, Date: dueDate})
}

type fakeCreditRepo struct {
	mu       sync.Mutex
	credits  map[uint]domain.Credit
	payments []domain.CreditPayment
	overdue  []domain.Credit
}

func (r *fakeCreditRepo) FindByID(_ context.Context, storeID, id uint) (domain.Credit, error) {
	c, ok := r.credits[id]
	if !ok || c.StoreID != storeID {
		return domain.Credit{}, repository.ErrCreditNotFound
	}

	return c, nil
}

func (r *fakeCreditRepo) FindBySaleID(_ context.Context, storeID uint, saleID int64) (domain.Credit, error) {
	for _, c := range r.credits {
		if c.StoreID == storeID && c.SaleID != nil && *c.SaleID == saleID {
			return c, nil
		}
	}

	return domain.Credit{}, repository.ErrCreditNotFound
}

func (r *fakeCreditRepo) FindAll(_ context.Context, storeID uint, filter domain.CreditFilter, _ time.Time) ([]domain.Credit, error) {
	var out []domain.Credit
	for _, c := range r.credits {
		if c.StoreID != storeID {
			continue
		}
		if filter.CustomerID != 0 && c.CustomerID != filter.CustomerID {
			continue
		}
		out = append(out, c)
	}

	return out, nil
}

func (r *fakeCreditRepo) FindOverdue(_ context.Context, _ time.Time) ([]domain.Credit, error) {
	return r.overdue, nil
}

func (r *fakeCreditRepo) ApplyPayment(_ context.Context, storeID, creditID uint, apply func(*domain.Credit) (domain.CreditPayment, error)) (domain.Credit, domain.CreditPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.credits[creditID]
	if !ok || c.StoreID != storeID {
		return domain.Credit{}, domain.CreditPayment{}, repository.ErrCreditNotFound
	}

	p, err := apply(&c)
	if err != nil {
		return domain.Credit{}, domain.CreditPayment{}, err
	}
	r.credits[creditID] = c
	r.payments = append(r.payments, p)

	return c, p, nil
}

type fakeUserRepo struct {
	users   map[uint]domain.User
	resets  map[string]domain.PasswordReset
	created []domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uint]domain.User{}, resets: map[string]domain.PasswordReset{}}
	for _, u := range users {
		r.users[u.ID] = u
	}

	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}
	u.ID = uint(len(r.users) + 1)
	r.users[u.ID] = u
	r.created = append(r.created, u)

	return u, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return domain.User{}, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByLogin(_ context.Context, login string) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == login || u.Username == login {
			return u, nil
		}
	}

	return domain.User{}, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByRoles(_ context.Context, roles ...domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
			}
		}
	}

	return out, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uint, hash string, mustChange bool) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Password = hash
	u.MustChangePassword = mustChange
	r.users[id] = u

	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id uint, status domain.UserStatus) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	u.Status = status
	r.users[id] = u

	return u, nil
}

func (r *fakeUserRepo) CreatePasswordReset(_ context.Context, reset domain.PasswordReset) error {
	r.resets[reset.Token] = reset
	return nil
}

func (r *fakeUserRepo) FindPasswordReset(_ context.Context, token string) (domain.PasswordReset, error) {
	reset, ok := r.resets[token]
	if !ok {
		return domain.PasswordReset{}, repository.ErrResetTokenNotFound
	}

	return reset, nil
}

func (r *fakeUserRepo) ResetPassword(ctx context.Context, token string, userID uint, hash string, usedAt time.Time) error {
	reset, ok := r.resets[token]
	if !ok || reset.UsedAt != nil {
		return repository.ErrResetTokenNotFound
	}
	reset.UsedAt = &usedAt
	r.resets[token] = reset

	return r.UpdatePassword(ctx, userID, hash, false)
}

type fakeStoreRepo struct {
	stores map[uint]domain.Store
	owners []domain.User
	err    error
}

func (r *fakeStoreRepo) CreateWithOwner(_ context.Context, store domain.Store, owner domain.User) (domain.Store, domain.User, error) {
	if r.err != nil {
		return domain.Store{}, domain.User{}, r.err
	}
	store.ID = uint(len(r.stores) + 1)
	r.stores[store.ID] = store
	owner.ID = uint(len(r.owners) + 1)
	owner.StoreID = &store.ID
	r.owners = append(r.owners, owner)

	return store, owner, nil
}

func (r *fakeStoreRepo) FindByID(_ context.Context, id uint) (domain.Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return domain.Store{}, repository.ErrStoreNotFound
	}

	return s, nil
}

func (r *fakeStoreRepo) FindAll(_ context.Context, _ domain.StoreStatus, _ string) ([]domain.Store, error) {
	var out []domain.Store
	for _, s := range r.stores {
		out = append(out, s)
	}

	return out, nil
}

func (r *fakeStoreRepo) Update(_ context.Context, store domain.Store) (domain.Store, error) {
	if _, ok := r.stores[store.ID]; !ok {
		return domain.Store{}, repository.ErrStoreNotFound
	}
	r.stores[store.ID] = store

	return store, nil
}

func (r *fakeStoreRepo) UpdateStatus(_ context.Context, id uint, status domain.StoreStatus) (domain.Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return domain.Store{}, repository.ErrStoreNotFound
	}
	s.Status = status
	r.stores[id] = s

	return s, nil
}

type fakePlanRepo struct {
	plans map[uint]domain.Plan
}

func (r *fakePlanRepo) Create(_ context.Context, p domain.Plan) (domain.Plan, error) {
	p.ID = uint(len(r.plans) + 1)
	r.plans[p.ID] = p

	return p, nil
}

func (r *fakePlanRepo) FindByID(_ context.Context, id uint) (domain.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return domain.Plan{}, repository.ErrPlanNotFound
	}

	return p, nil
}

func (r *fakePlanRepo) FindAll(_ context.Context) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0, len(r.plans))
	for id := uint(1); id <= uint(len(r.plans)); id++ {
		if p, ok := r.plans[id]; ok {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *fakePlanRepo) Update(_ context.Context, p domain.Plan) (domain.Plan, error) {
	if _, ok := r.plans[p.ID]; !ok {
		return domain.Plan{}, repository.ErrPlanNotFound
	}
	r.plans[p.ID] = p

	return p, nil
}

func (r *fakePlanRepo) SetActive(_ context.Context, id uint, active bool) (domain.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return domain.Plan{}, repository.ErrPlanNotFound
	}
	p.Active = active
	r.plans[id] = p

	return p, nil
}

func (r *fakePlanRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.plans[id]; !ok {
		return repository.ErrPlanNotFound
	}
	delete(r.plans, id)

	return nil
}

type fakeMailer struct {
	welcome []email.WelcomeEmailData
	resets  map[string]string
	err     error
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, data email.WelcomeEmailData) error {
	m.welcome = append(m.welcome, data)
	return m.err
}

func (m *fakeMailer) SendPasswordResetEmail(_ context.Context, to, link string) error {
	if m.resets == nil {
		m.resets = map[string]string{}
	}
	m.resets[to] = link

	return m.err
}
