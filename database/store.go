package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledgerbook-backend/finance"
	"ledgerbook-backend/models"
)

// Store is the gorm-backed ledger query adapter handed to the finance
// engine. A Store built inside Transact shares that transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindTransactions(ctx context.Context, costCenterID uint, from, to models.Date) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.db.WithContext(ctx).
		Where("cost_center_id = ? AND date >= ? AND date <= ?", costCenterID, from.Time, to.Time).
		Order("date").
		Find(&transactions).Error
	return transactions, err
}

func (s *Store) AllTransactions(ctx context.Context) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.db.WithContext(ctx).Order("date").Find(&transactions).Error
	return transactions, err
}

func (s *Store) FindPayments(ctx context.Context, invoiceID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at").
		Find(&payments).Error
	return payments, err
}

func (s *Store) AllPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).Order("paid_at").Find(&payments).Error
	return payments, err
}

func (s *Store) FindPaymentByExternalID(ctx context.Context, invoiceID uint, externalTxnID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).
		Where("invoice_id = ? AND external_txn_id = ?", invoiceID, externalTxnID).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) FindBudgets(ctx context.Context) ([]models.Budget, error) {
	var budgets []models.Budget
	err := s.db.WithContext(ctx).Order("id").Find(&budgets).Error
	return budgets, err
}

func (s *Store) FindCostCenter(ctx context.Context, id uint) (*models.CostCenter, error) {
	var cc models.CostCenter
	err := s.db.WithContext(ctx).First(&cc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cc, nil
}

func (s *Store) FindCostCenters(ctx context.Context) ([]models.CostCenter, error) {
	var centers []models.CostCenter
	err := s.db.WithContext(ctx).Order("code").Find(&centers).Error
	return centers, err
}

func (s *Store) FindInvoices(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).Order("id").Find(&invoices).Error
	return invoices, err
}

func (s *Store) UnpaidInvoicesByDueDate(ctx context.Context, limit int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Where("status IN ?", []string{models.InvoiceUnpaid, models.InvoicePartial}).
		Order("due_date ASC NULLS LAST").
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, invoiceID uint, status string) error {
	return s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Update("status", status).Error
}

func (s *Store) Transact(ctx context.Context, fn func(finance.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) LockInvoice(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&invoice, invoiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, finance.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}
