package models

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Invoice payment states. Status is derived from the payment set and
// persisted; it must always match what reconciliation would compute.
const (
	InvoiceUnpaid  = "unpaid"
	InvoicePartial = "partial"
	InvoicePaid    = "paid"
)

func ValidInvoiceStatus(status string) bool {
	return status == InvoiceUnpaid || status == InvoicePartial || status == InvoicePaid
}

type Invoice struct {
	Id            uint            `json:"id" gorm:"primaryKey"`
	InvoiceNumber string          `json:"invoice_number" gorm:"size:50;unique;not null"`
	CustomerID    string          `json:"customer_id" gorm:"size:128;index"`
	Customer      *User           `json:"-" gorm:"foreignKey:CustomerID;references:Id"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:numeric(14,2)"`
	Status        string          `json:"status" gorm:"size:20;not null;default:unpaid;index"`
	DueDate       *Date           `json:"due_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewInvoiceNumber builds an INV-YYYYMMDD-XXXX reference. Uniqueness is
// enforced by the column constraint; callers retry on conflict.
func NewInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%04d", now.Format("20060102"), rand.Intn(10000))
}

// Payment survives invoice status changes; linked to one invoice.
type Payment struct {
	Id            uint            `json:"id" gorm:"primaryKey"`
	InvoiceID     uint            `json:"invoice_id" gorm:"index:idx_payments_invoice_paid_at,priority:1"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(14,2)"`
	Method        string          `json:"payment_method" gorm:"size:50"`
	ExternalTxnID string          `json:"transaction_id" gorm:"size:100;index:idx_payments_invoice_external"`
	PaidAt        time.Time       `json:"payment_date" gorm:"index:idx_payments_invoice_paid_at,priority:2"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PaymentEvent is the audit record of one inbound payment-confirmation
// delivery, duplicates included.
type PaymentEvent struct {
	Id        uint           `json:"id" gorm:"primaryKey"`
	EventID   string         `json:"event_id" gorm:"size:100;index"`
	InvoiceID uint           `json:"invoice_id" gorm:"index"`
	Outcome   string         `json:"outcome" gorm:"size:20"` // "applied" | "duplicate" | "ignored"
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at"`
}
