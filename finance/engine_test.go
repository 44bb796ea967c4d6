package finance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ledgerbook-backend/models"
)

var testNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	mu            sync.Mutex
	centers       []models.CostCenter
	budgets       []models.Budget
	transactions  []models.Transaction
	invoices      []models.Invoice
	payments      []models.Payment
	nextPaymentID uint
	statusWrites  int
}

func newMemStore() *memStore {
	return &memStore{nextPaymentID: 1}
}

func (m *memStore) FindTransactions(_ context.Context, costCenterID uint, from, to models.Date) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.transactions {
		if t.CostCenterID == costCenterID && !t.Date.Before(from.Time) && !t.Date.After(to.Time) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) AllTransactions(context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transaction(nil), m.transactions...), nil
}

func (m *memStore) FindPayments(_ context.Context, invoiceID uint) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Payment
	for _, p := range m.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) AllPayments(context.Context) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Payment(nil), m.payments...), nil
}

func (m *memStore) FindPaymentByExternalID(_ context.Context, invoiceID uint, externalTxnID string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.InvoiceID == invoiceID && p.ExternalTxnID == externalTxnID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreatePayment(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Id = m.nextPaymentID
	m.nextPaymentID++
	m.payments = append(m.payments, *p)
	return nil
}

func (m *memStore) FindBudgets(context.Context) ([]models.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Budget(nil), m.budgets...), nil
}

func (m *memStore) FindCostCenter(_ context.Context, id uint) (*models.CostCenter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cc := range m.centers {
		if cc.Id == id {
			cp := cc
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindCostCenters(context.Context) ([]models.CostCenter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CostCenter(nil), m.centers...), nil
}

func (m *memStore) FindInvoices(context.Context) ([]models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Invoice(nil), m.invoices...), nil
}

func (m *memStore) UnpaidInvoicesByDueDate(_ context.Context, limit int) ([]models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Invoice
	for _, inv := range m.invoices {
		if inv.Status == models.InvoiceUnpaid || inv.Status == models.InvoicePartial {
			out = append(out, inv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(b.Time)
		}
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UpdateInvoiceStatus(_ context.Context, invoiceID uint, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.invoices {
		if m.invoices[i].Id == invoiceID {
			m.invoices[i].Status = status
			m.statusWrites++
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) Transact(_ context.Context, fn func(Store) error) error {
	return fn(m)
}

func (m *memStore) LockInvoice(_ context.Context, invoiceID uint) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invoices {
		if inv.Id == invoiceID {
			cp := inv
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) invoice(t *testing.T, id uint) models.Invoice {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invoices {
		if inv.Id == id {
			return inv
		}
	}
	t.Fatalf("invoice %d not found", id)
	return models.Invoice{}
}

func newTestEngine(store Store) *Engine {
	e := NewEngine(store, zerolog.Nop())
	e.now = func() time.Time { return testNow }
	return e
}

func TestRecordPaymentPersistsDerivedStatus(t *testing.T) {
	store := newMemStore()
	store.invoices = []models.Invoice{{Id: 1, TotalAmount: d("1000"), Status: models.InvoiceUnpaid}}
	engine := newTestEngine(store)
	ctx := context.Background()

	res, err := engine.RecordPayment(ctx, PaymentInput{InvoiceID: 1, Amount: d("400"), Method: "cash"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Duplicate {
		t.Fatal("first payment reported as duplicate")
	}
	if res.Invoice.Status != models.InvoicePartial {
		t.Fatalf("status = %q, want partial", res.Invoice.Status)
	}
	if got := store.invoice(t, 1).Status; got != models.InvoicePartial {
		t.Fatalf("persisted status = %q, want partial", got)
	}

	res, err = engine.RecordPayment(ctx, PaymentInput{InvoiceID: 1, Amount: d("600"), Method: "bank_transfer"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Invoice.Status != models.InvoicePaid {
		t.Fatalf("status = %q, want paid", res.Invoice.Status)
	}
	if !res.Invoice.PaidAmount.Equal(d("1000")) {
		t.Fatalf("paid_amount = %s, want 1000", res.Invoice.PaidAmount)
	}
	if got := store.invoice(t, 1).Status; got != models.InvoicePaid {
		t.Fatalf("persisted status = %q, want paid", got)
	}
	if store.statusWrites != 2 {
		t.Fatalf("status writes = %d, want one per recorded payment", store.statusWrites)
	}
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	store := newMemStore()
	store.invoices = []models.Invoice{{Id: 1, TotalAmount: d("100"), Status: models.InvoiceUnpaid}}
	engine := newTestEngine(store)

	for _, amount := range []string{"0", "-5"} {
		if _, err := engine.RecordPayment(context.Background(), PaymentInput{InvoiceID: 1, Amount: d(amount)}); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %s: err = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if len(store.payments) != 0 {
		t.Fatalf("payments created = %d, want 0", len(store.payments))
	}
}

func TestRecordPaymentUnknownInvoice(t *testing.T) {
	engine := newTestEngine(newMemStore())
	_, err := engine.RecordPayment(context.Background(), PaymentInput{InvoiceID: 99, Amount: d("10")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestApplyConfirmationConvertsCents(t *testing.T) {
	store := newMemStore()
	store.invoices = []models.Invoice{{Id: 1, TotalAmount: d("500"), Status: models.InvoiceUnpaid}}
	engine := newTestEngine(store)

	res, err := engine.ApplyConfirmation(context.Background(), ConfirmationEvent{
		EventID:       "evt_1",
		Type:          "payment_intent.succeeded",
		InvoiceID:     1,
		AmountCents:   50000,
		ExternalTxnID: "pi_123",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Payment.Amount.Equal(d("500")) {
		t.Fatalf("amount = %s, want 500", res.Payment.Amount)
	}
	if res.Invoice.Status != models.InvoicePaid {
		t.Fatalf("status = %q, want paid", res.Invoice.Status)
	}
}

func TestApplyConfirmationDeduplicatesRedelivery(t *testing.T) {
	store := newMemStore()
	store.invoices = []models.Invoice{{Id: 1, TotalAmount: d("1000"), Status: models.InvoiceUnpaid}}
	engine := newTestEngine(store)
	ctx := context.Background()

	event := ConfirmationEvent{
		EventID:       "evt_1",
		Type:          "payment_intent.succeeded",
		InvoiceID:     1,
		AmountCents:   40000,
		ExternalTxnID: "pi_dup",
	}

	first, err := engine.ApplyConfirmation(ctx, event)
	if err != nil {
		t.Fatal(err)
	}
	if first.Duplicate {
		t.Fatal("first delivery reported as duplicate")
	}

	second, err := engine.ApplyConfirmation(ctx, event)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Duplicate {
		t.Fatal("redelivery not reported as duplicate")
	}
	if len(store.payments) != 1 {
		t.Fatalf("payments = %d, want 1 (no double count)", len(store.payments))
	}
	if !second.Invoice.PaidAmount.Equal(d("400")) {
		t.Fatalf("paid_amount = %s, want 400", second.Invoice.PaidAmount)
	}
	if got := store.invoice(t, 1).Status; got != models.InvoicePartial {
		t.Fatalf("persisted status = %q, want partial", got)
	}
}

func TestManualAndWebhookPathsAgree(t *testing.T) {
	ctx := context.Background()

	manual := newMemStore()
	manual.invoices = []models.Invoice{{Id: 1, TotalAmount: d("800"), Status: models.InvoiceUnpaid}}
	manualRes, err := newTestEngine(manual).RecordPayment(ctx, PaymentInput{
		InvoiceID: 1, Amount: d("300"), Method: "cash", ExternalTxnID: "txn_9",
	})
	if err != nil {
		t.Fatal(err)
	}

	hook := newMemStore()
	hook.invoices = []models.Invoice{{Id: 1, TotalAmount: d("800"), Status: models.InvoiceUnpaid}}
	hookRes, err := newTestEngine(hook).ApplyConfirmation(ctx, ConfirmationEvent{
		EventID: "evt_9", Type: "payment_intent.succeeded",
		InvoiceID: 1, AmountCents: 30000, ExternalTxnID: "txn_9",
	})
	if err != nil {
		t.Fatal(err)
	}

	if manualRes.Invoice.Status != hookRes.Invoice.Status ||
		!manualRes.Invoice.PaidAmount.Equal(hookRes.Invoice.PaidAmount) ||
		!manualRes.Invoice.Balance.Equal(hookRes.Invoice.Balance) {
		t.Fatalf("paths disagree: manual %+v, webhook %+v", manualRes.Invoice, hookRes.Invoice)
	}
}
