package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindPurchase = "purchase"
	KindSale     = "sale"
)

// Transaction payment states. Informational only: a transaction counts
// toward budget spend regardless of its own payment state.
const (
	TxnPaid          = "paid"
	TxnNotPaid       = "not_paid"
	TxnPartiallyPaid = "partially_paid"
)

func ValidKind(kind string) bool {
	return kind == KindPurchase || kind == KindSale
}

func ValidTxnStatus(status string) bool {
	return status == TxnPaid || status == TxnNotPaid || status == TxnPartiallyPaid
}

type Transaction struct {
	Id           uint            `json:"id" gorm:"primaryKey"`
	Kind         string          `json:"type" gorm:"size:20;not null;index:idx_transactions_cc_date,priority:3"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(14,2)"`
	Status       string          `json:"status" gorm:"size:20;not null;default:paid"`
	CostCenterID uint            `json:"cost_center_id" gorm:"index:idx_transactions_cc_date,priority:1"`
	ProductID    *uint           `json:"product_id"`
	Quantity     int             `json:"quantity" gorm:"default:1"`
	Description  string          `json:"description"`
	Date         Date            `json:"transaction_date" gorm:"index:idx_transactions_cc_date,priority:2"`
	CreatedAt    time.Time       `json:"created_at"`
}
