package finance

import (
	"context"
	"errors"

	"ledgerbook-backend/models"
)

// ErrNotFound is returned when a referenced invoice does not exist.
// Missing cost centers and products are not errors; report builders
// degrade those rows instead.
var ErrNotFound = errors.New("not found")

// ErrInvalidAmount rejects non-positive payment amounts.
var ErrInvalidAmount = errors.New("payment amount must be positive")

// Store is the persistence capability the engine is handed. It is always
// passed in explicitly; the engine holds no package-level handle.
type Store interface {
	// FindTransactions returns transactions for one cost center with
	// dates inside [from, to], inclusive on both ends.
	FindTransactions(ctx context.Context, costCenterID uint, from, to models.Date) ([]models.Transaction, error)
	AllTransactions(ctx context.Context) ([]models.Transaction, error)

	FindPayments(ctx context.Context, invoiceID uint) ([]models.Payment, error)
	AllPayments(ctx context.Context) ([]models.Payment, error)
	// FindPaymentByExternalID returns nil, nil when no payment on the
	// invoice carries the external transaction id.
	FindPaymentByExternalID(ctx context.Context, invoiceID uint, externalTxnID string) (*models.Payment, error)
	CreatePayment(ctx context.Context, p *models.Payment) error

	FindBudgets(ctx context.Context) ([]models.Budget, error)
	// FindCostCenter returns nil, nil when the cost center is missing.
	FindCostCenter(ctx context.Context, id uint) (*models.CostCenter, error)
	FindCostCenters(ctx context.Context) ([]models.CostCenter, error)

	FindInvoices(ctx context.Context) ([]models.Invoice, error)
	// UnpaidInvoicesByDueDate returns unpaid/partial invoices ordered by
	// soonest due date first, invoices without a due date last.
	UnpaidInvoicesByDueDate(ctx context.Context, limit int) ([]models.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, invoiceID uint, status string) error

	// Transact runs fn with a Store bound to a single database
	// transaction; the payment write path depends on it.
	Transact(ctx context.Context, fn func(Store) error) error
	// LockInvoice loads the invoice with a row lock held until the
	// surrounding transaction ends. Returns ErrNotFound when absent.
	LockInvoice(ctx context.Context, invoiceID uint) (*models.Invoice, error)
}
