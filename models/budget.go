package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps spend for one cost center over an inclusive period.
// Utilization is never stored; it is recomputed from transactions on read.
type Budget struct {
	Id           uint            `json:"id" gorm:"primaryKey"`
	CostCenterID uint            `json:"cost_center_id" gorm:"index"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(14,2)"`
	PeriodStart  Date            `json:"period_start"`
	PeriodEnd    Date            `json:"period_end"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// HasPeriod reports whether both period bounds are set.
func (b Budget) HasPeriod() bool {
	return !b.PeriodStart.IsZero() && !b.PeriodEnd.IsZero()
}

// MasterBudget is the single global budget figure; one row at most.
type MasterBudget struct {
	Id        uint            `json:"-" gorm:"primaryKey"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(14,2)"`
	UpdatedAt time.Time       `json:"updated_at"`
}
