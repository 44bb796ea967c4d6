package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ledgerbook-backend/models"
	"ledgerbook-backend/utils"
)

// ReconciledInvoice is an invoice's payment state recomputed from its
// full payment set. Status is the one derived field that gets persisted
// back; everything else is ephemeral.
type ReconciledInvoice struct {
	InvoiceID     uint            `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Balance       decimal.Decimal `json:"balance"`
	Overpayment   decimal.Decimal `json:"overpayment"`
	Status        string          `json:"status"`
}

// Reconcile derives paid amount, balance and status from the payments
// linked to an invoice. Every payment counts regardless of method or
// origin. Overpayment is accepted: the displayed balance clamps at zero
// and the raw overage stays inspectable.
func Reconcile(invoice models.Invoice, payments []models.Payment) ReconciledInvoice {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	balance := invoice.TotalAmount.Sub(paid)
	overpayment := decimal.Zero
	if balance.Sign() < 0 {
		overpayment = balance.Neg()
		balance = decimal.Zero
	}

	status := models.InvoiceUnpaid
	switch {
	case paid.GreaterThanOrEqual(invoice.TotalAmount):
		status = models.InvoicePaid
	case paid.Sign() > 0:
		status = models.InvoicePartial
	}

	return ReconciledInvoice{
		InvoiceID:     invoice.Id,
		InvoiceNumber: invoice.InvoiceNumber,
		TotalAmount:   invoice.TotalAmount,
		PaidAmount:    paid,
		Balance:       balance,
		Overpayment:   overpayment,
		Status:        status,
	}
}

// Engine is the derived financial state engine: utilization, invoice
// reconciliation and the report builders, all over one injected Store.
type Engine struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewEngine(store Store, log zerolog.Logger) *Engine {
	return &Engine{store: store, log: log, now: time.Now}
}

// PaymentInput describes one payment to record against an invoice,
// whether entered manually or received from a confirmation event.
type PaymentInput struct {
	InvoiceID     uint
	Amount        decimal.Decimal
	Method        string
	ExternalTxnID string
}

// PaymentResult reports what a payment write actually did.
type PaymentResult struct {
	Duplicate bool              `json:"duplicate"`
	Payment   *models.Payment   `json:"payment,omitempty"`
	Invoice   ReconciledInvoice `json:"invoice"`
}

// ConfirmationEvent is an inbound asynchronous payment confirmation,
// already parsed off the wire by the API layer.
type ConfirmationEvent struct {
	EventID       string
	Type          string
	InvoiceID     uint
	AmountCents   int64
	ExternalTxnID string
	Method        string
}

// RecordPayment inserts a payment and re-reconciles the invoice inside a
// single transaction holding the invoice row lock, so two payments
// recorded in close succession cannot leave the persisted status one
// step behind the true sum.
func (e *Engine) RecordPayment(ctx context.Context, in PaymentInput) (PaymentResult, error) {
	if in.Amount.Sign() <= 0 {
		return PaymentResult{}, ErrInvalidAmount
	}
	return e.applyPayment(ctx, in)
}

// ApplyConfirmation records the payment carried by an inbound
// confirmation event. Redelivery of an event whose external transaction
// id is already on file for the invoice is a no-op, not an error.
func (e *Engine) ApplyConfirmation(ctx context.Context, ev ConfirmationEvent) (PaymentResult, error) {
	amount := utils.FromCents(ev.AmountCents)
	if amount.Sign() <= 0 {
		return PaymentResult{}, ErrInvalidAmount
	}
	method := ev.Method
	if method == "" {
		method = "gateway"
	}
	res, err := e.applyPayment(ctx, PaymentInput{
		InvoiceID:     ev.InvoiceID,
		Amount:        amount,
		Method:        method,
		ExternalTxnID: ev.ExternalTxnID,
	})
	if err == nil && res.Duplicate {
		e.log.Info().
			Str("event_id", ev.EventID).
			Str("external_txn_id", ev.ExternalTxnID).
			Uint("invoice_id", ev.InvoiceID).
			Msg("duplicate confirmation delivery ignored")
	}
	return res, err
}

func (e *Engine) applyPayment(ctx context.Context, in PaymentInput) (PaymentResult, error) {
	var result PaymentResult
	err := e.store.Transact(ctx, func(tx Store) error {
		invoice, err := tx.LockInvoice(ctx, in.InvoiceID)
		if err != nil {
			return err
		}

		if in.ExternalTxnID != "" {
			existing, err := tx.FindPaymentByExternalID(ctx, invoice.Id, in.ExternalTxnID)
			if err != nil {
				return fmt.Errorf("duplicate lookup: %w", err)
			}
			if existing != nil {
				payments, err := tx.FindPayments(ctx, invoice.Id)
				if err != nil {
					return err
				}
				result = PaymentResult{
					Duplicate: true,
					Payment:   existing,
					Invoice:   Reconcile(*invoice, payments),
				}
				return nil
			}
		}

		payment := models.Payment{
			InvoiceID:     invoice.Id,
			Amount:        in.Amount,
			Method:        in.Method,
			ExternalTxnID: in.ExternalTxnID,
			PaidAt:        e.now(),
		}
		if err := tx.CreatePayment(ctx, &payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		payments, err := tx.FindPayments(ctx, invoice.Id)
		if err != nil {
			return err
		}
		reconciled := Reconcile(*invoice, payments)
		if err := tx.UpdateInvoiceStatus(ctx, invoice.Id, reconciled.Status); err != nil {
			return fmt.Errorf("persist invoice status: %w", err)
		}

		result = PaymentResult{Payment: &payment, Invoice: reconciled}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}
	return result, nil
}
