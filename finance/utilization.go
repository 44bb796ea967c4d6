package finance

import (
	"github.com/shopspring/decimal"

	"ledgerbook-backend/models"
	"ledgerbook-backend/utils"
)

// UtilizationReport is the derived spending state of one budget. It is
// never persisted; every read recomputes it from the transaction set.
type UtilizationReport struct {
	BudgetAmount          decimal.Decimal `json:"budget_amount"`
	ActualSpent           decimal.Decimal `json:"actual_spent"`
	UtilizationPercentage decimal.Decimal `json:"utilization_percentage"`
	RemainingBalance      decimal.Decimal `json:"remaining_balance"`
	IsOverBudget          bool            `json:"is_over_budget"`
}

// Evaluate computes a budget's utilization from the transactions of its
// cost center. Purchases and sales both count toward spend; a
// transaction's own payment status never gates inclusion. Transactions
// outside the inclusive period or on another cost center are skipped, so
// callers may pass a broader snapshot than the exact window.
//
// A budget with no cost center, no period, or a non-positive amount is
// not an error: it yields a zero-spend report.
func Evaluate(budget models.Budget, transactions []models.Transaction) UtilizationReport {
	if budget.CostCenterID == 0 || !budget.HasPeriod() || budget.Amount.Sign() <= 0 {
		return UtilizationReport{
			BudgetAmount:          budget.Amount,
			ActualSpent:           decimal.Zero,
			UtilizationPercentage: decimal.Zero,
			RemainingBalance:      budget.Amount,
			IsOverBudget:          false,
		}
	}

	spent := decimal.Zero
	for _, t := range transactions {
		if t.CostCenterID != budget.CostCenterID {
			continue
		}
		if !inPeriod(t.Date, budget.PeriodStart, budget.PeriodEnd) {
			continue
		}
		spent = spent.Add(t.Amount)
	}

	return UtilizationReport{
		BudgetAmount:          budget.Amount,
		ActualSpent:           spent,
		UtilizationPercentage: utils.Percent(spent, budget.Amount),
		RemainingBalance:      budget.Amount.Sub(spent),
		IsOverBudget:          spent.GreaterThan(budget.Amount),
	}
}

// inPeriod reports whether d lies in [from, to], both ends inclusive.
func inPeriod(d, from, to models.Date) bool {
	return !d.Before(from.Time) && !d.After(to.Time)
}
