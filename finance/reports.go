package finance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"ledgerbook-backend/models"
	"ledgerbook-backend/utils"
)

// Trailing window length of the financial summary.
const summaryWindowDays = 30

// Budget alert threshold, in percent.
var alertThreshold = decimal.NewFromInt(90)

type BudgetVsActualRow struct {
	BudgetID              uint            `json:"budget_id"`
	CostCenterID          uint            `json:"cost_center_id"`
	CostCenterName        *string         `json:"cost_center_name"`
	BudgetAmount          decimal.Decimal `json:"budget_amount"`
	ActualSpent           decimal.Decimal `json:"actual_spent"`
	Variance              decimal.Decimal `json:"variance"`
	UtilizationPercentage decimal.Decimal `json:"utilization_percentage"`
	PeriodStart           models.Date     `json:"period_start"`
	PeriodEnd             models.Date     `json:"period_end"`
}

type BudgetVsActualSummary struct {
	TotalBudget        decimal.Decimal `json:"total_budget"`
	TotalActual        decimal.Decimal `json:"total_actual"`
	TotalVariance      decimal.Decimal `json:"total_variance"`
	OverallUtilization decimal.Decimal `json:"overall_utilization"`
}

type BudgetVsActualReport struct {
	Summary   BudgetVsActualSummary `json:"summary"`
	Details   []BudgetVsActualRow   `json:"details"`
	Timestamp time.Time             `json:"timestamp"`
}

// BudgetVsActual evaluates every budget against its transaction window
// and rolls the results into a grand total. A budget whose cost center
// has been deleted degrades to a nil name, never an error.
func (e *Engine) BudgetVsActual(ctx context.Context) (BudgetVsActualReport, error) {
	budgets, err := e.store.FindBudgets(ctx)
	if err != nil {
		return BudgetVsActualReport{}, err
	}

	report := BudgetVsActualReport{
		Details:   make([]BudgetVsActualRow, 0, len(budgets)),
		Timestamp: e.now().UTC(),
	}
	totalBudget, totalActual := decimal.Zero, decimal.Zero

	for _, b := range budgets {
		u, err := e.evaluateBudget(ctx, e.store, b)
		if err != nil {
			return BudgetVsActualReport{}, err
		}

		report.Details = append(report.Details, BudgetVsActualRow{
			BudgetID:              b.Id,
			CostCenterID:          b.CostCenterID,
			CostCenterName:        e.costCenterName(ctx, e.store, b.CostCenterID),
			BudgetAmount:          u.BudgetAmount,
			ActualSpent:           u.ActualSpent,
			Variance:              b.Amount.Sub(u.ActualSpent),
			UtilizationPercentage: u.UtilizationPercentage,
			PeriodStart:           b.PeriodStart,
			PeriodEnd:             b.PeriodEnd,
		})
		totalBudget = totalBudget.Add(b.Amount)
		totalActual = totalActual.Add(u.ActualSpent)
	}

	report.Summary = BudgetVsActualSummary{
		TotalBudget:        totalBudget,
		TotalActual:        totalActual,
		TotalVariance:      totalBudget.Sub(totalActual),
		OverallUtilization: utils.Percent(totalActual, totalBudget),
	}
	return report, nil
}

type ReportPeriod struct {
	StartDate models.Date `json:"start_date"`
	EndDate   models.Date `json:"end_date"`
}

type FinancialTotals struct {
	TotalSales         decimal.Decimal `json:"total_sales"`
	TotalPurchases     decimal.Decimal `json:"total_purchases"`
	GrossProfit        decimal.Decimal `json:"gross_profit"`
	TotalInvoices      decimal.Decimal `json:"total_invoices"`
	TotalPayments      decimal.Decimal `json:"total_payments"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

type FinancialCounts struct {
	InvoicesIssued   int             `json:"invoices_issued"`
	InvoicesPaid     int             `json:"invoices_paid"`
	PaymentsReceived int             `json:"payments_received"`
	PaymentRate      decimal.Decimal `json:"payment_rate"`
}

type FinancialSummaryReport struct {
	Period    ReportPeriod    `json:"period"`
	Summary   FinancialTotals `json:"summary"`
	Counts    FinancialCounts `json:"counts"`
	Timestamp time.Time       `json:"timestamp"`
}

// FinancialSummary sums activity over the trailing 30-day window ending
// now: transaction totals by kind, invoice and payment volume, gross
// profit and the share of windowed invoices fully paid.
func (e *Engine) FinancialSummary(ctx context.Context) (FinancialSummaryReport, error) {
	now := e.now()
	end := models.DateOf(now)
	start := models.DateOf(now.AddDate(0, 0, -summaryWindowDays))

	var (
		transactions []models.Transaction
		invoices     []models.Invoice
		payments     []models.Payment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		transactions, err = e.store.AllTransactions(gctx)
		return
	})
	g.Go(func() (err error) {
		invoices, err = e.store.FindInvoices(gctx)
		return
	})
	g.Go(func() (err error) {
		payments, err = e.store.AllPayments(gctx)
		return
	})
	if err := g.Wait(); err != nil {
		return FinancialSummaryReport{}, err
	}

	sales, purchases := decimal.Zero, decimal.Zero
	for _, t := range transactions {
		if !inPeriod(t.Date, start, end) {
			continue
		}
		if t.Kind == models.KindSale {
			sales = sales.Add(t.Amount)
		} else {
			purchases = purchases.Add(t.Amount)
		}
	}

	invoiced := decimal.Zero
	issued, paidCount := 0, 0
	for _, inv := range invoices {
		if !inPeriod(models.DateOf(inv.CreatedAt), start, end) {
			continue
		}
		invoiced = invoiced.Add(inv.TotalAmount)
		issued++
		if inv.Status == models.InvoicePaid {
			paidCount++
		}
	}

	received := decimal.Zero
	paymentCount := 0
	for _, p := range payments {
		if !inPeriod(models.DateOf(p.PaidAt), start, end) {
			continue
		}
		received = received.Add(p.Amount)
		paymentCount++
	}

	return FinancialSummaryReport{
		Period: ReportPeriod{StartDate: start, EndDate: end},
		Summary: FinancialTotals{
			TotalSales:         sales,
			TotalPurchases:     purchases,
			GrossProfit:        sales.Sub(purchases),
			TotalInvoices:      invoiced,
			TotalPayments:      received,
			OutstandingBalance: invoiced.Sub(received),
		},
		Counts: FinancialCounts{
			InvoicesIssued:   issued,
			InvoicesPaid:     paidCount,
			PaymentsReceived: paymentCount,
			PaymentRate:      utils.Percent(decimal.NewFromInt(int64(paidCount)), decimal.NewFromInt(int64(issued))),
		},
		Timestamp: now.UTC(),
	}, nil
}

type CostCenterPerformanceRow struct {
	CostCenterID      uint   `json:"cost_center_id"`
	CostCenterName    string `json:"cost_center_name"`
	CostCenterCode    string `json:"cost_center_code"`
	TotalTransactions int    `json:"total_transactions"`
	PurchaseCount     int    `json:"purchase_count"`
	SaleCount         int    `json:"sale_count"`
	UtilizationReport
}

type CostCenterPerformanceReport struct {
	CostCenters []CostCenterPerformanceRow `json:"cost_centers"`
	Timestamp   time.Time                  `json:"timestamp"`
}

// CostCenterPerformance evaluates each cost center against its first
// budget (a zero-amount budget when none exists) and counts its
// transactions by kind.
func (e *Engine) CostCenterPerformance(ctx context.Context) (CostCenterPerformanceReport, error) {
	var (
		centers      []models.CostCenter
		budgets      []models.Budget
		transactions []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		centers, err = e.store.FindCostCenters(gctx)
		return
	})
	g.Go(func() (err error) {
		budgets, err = e.store.FindBudgets(gctx)
		return
	})
	g.Go(func() (err error) {
		transactions, err = e.store.AllTransactions(gctx)
		return
	})
	if err := g.Wait(); err != nil {
		return CostCenterPerformanceReport{}, err
	}

	byCenter := make(map[uint][]models.Transaction)
	for _, t := range transactions {
		byCenter[t.CostCenterID] = append(byCenter[t.CostCenterID], t)
	}

	report := CostCenterPerformanceReport{
		CostCenters: make([]CostCenterPerformanceRow, 0, len(centers)),
		Timestamp:   e.now().UTC(),
	}
	for _, cc := range centers {
		budget := models.Budget{CostCenterID: cc.Id}
		for _, b := range budgets {
			if b.CostCenterID == cc.Id {
				budget = b
				break
			}
		}

		ccTxns := byCenter[cc.Id]
		purchases, sales := 0, 0
		for _, t := range ccTxns {
			if t.Kind == models.KindPurchase {
				purchases++
			} else {
				sales++
			}
		}

		report.CostCenters = append(report.CostCenters, CostCenterPerformanceRow{
			CostCenterID:      cc.Id,
			CostCenterName:    cc.Name,
			CostCenterCode:    cc.Code,
			TotalTransactions: len(ccTxns),
			PurchaseCount:     purchases,
			SaleCount:         sales,
			UtilizationReport: Evaluate(budget, ccTxns),
		})
	}
	return report, nil
}

type BudgetAlert struct {
	BudgetID     uint            `json:"budget_id"`
	CostCenter   *string         `json:"cost_center"`
	BudgetAmount decimal.Decimal `json:"budget_amount"`
	ActualSpent  decimal.Decimal `json:"actual_spent"`
	Utilization  decimal.Decimal `json:"utilization"`
	Remaining    decimal.Decimal `json:"remaining"`
}

type DashboardSummary struct {
	TotalBudgets      int             `json:"total_budgets"`
	TotalTransactions int             `json:"total_transactions"`
	TotalInvoices     int             `json:"total_invoices"`
	TotalPayments     int             `json:"total_payments"`
	TodayTransactions int             `json:"today_transactions"`
	TodaySales        decimal.Decimal `json:"today_sales"`
}

type DashboardAlerts struct {
	BudgetAlerts []BudgetAlert `json:"budget_alerts"`
	AlertCount   int           `json:"alert_count"`
}

// InvoiceSummary is an invoice decorated with its reconciled totals.
type InvoiceSummary struct {
	models.Invoice
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Balance    decimal.Decimal `json:"balance"`
}

type DashboardReport struct {
	Summary              DashboardSummary `json:"summary"`
	Alerts               DashboardAlerts  `json:"alerts"`
	RecentUnpaidInvoices []InvoiceSummary `json:"recent_unpaid_invoices"`
	Timestamp            time.Time        `json:"timestamp"`
}

// Dashboard assembles the rollup: entity counts, today's activity, the 5
// unpaid/partial invoices due soonest, and every budget at or above 90%
// utilization. Independent sections load concurrently.
func (e *Engine) Dashboard(ctx context.Context) (DashboardReport, error) {
	today := models.DateOf(e.now())

	var (
		summary DashboardSummary
		alerts  = DashboardAlerts{BudgetAlerts: []BudgetAlert{}}
		recent  = []InvoiceSummary{}

		budgetCount, invoiceCount, paymentCount int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		budgets, err := e.store.FindBudgets(gctx)
		if err != nil {
			return err
		}
		budgetCount = len(budgets)
		for _, b := range budgets {
			u, err := e.evaluateBudget(gctx, e.store, b)
			if err != nil {
				return err
			}
			if u.UtilizationPercentage.LessThan(alertThreshold) {
				continue
			}
			alerts.BudgetAlerts = append(alerts.BudgetAlerts, BudgetAlert{
				BudgetID:     b.Id,
				CostCenter:   e.costCenterName(gctx, e.store, b.CostCenterID),
				BudgetAmount: u.BudgetAmount,
				ActualSpent:  u.ActualSpent,
				Utilization:  u.UtilizationPercentage,
				Remaining:    u.RemainingBalance,
			})
		}
		return nil
	})

	g.Go(func() error {
		transactions, err := e.store.AllTransactions(gctx)
		if err != nil {
			return err
		}
		summary.TotalTransactions = len(transactions)
		summary.TodaySales = decimal.Zero
		for _, t := range transactions {
			if !t.Date.Equal(today.Time) {
				continue
			}
			summary.TodayTransactions++
			if t.Kind == models.KindSale {
				summary.TodaySales = summary.TodaySales.Add(t.Amount)
			}
		}
		return nil
	})

	g.Go(func() error {
		invoices, err := e.store.FindInvoices(gctx)
		if err != nil {
			return err
		}
		invoiceCount = len(invoices)

		unpaid, err := e.store.UnpaidInvoicesByDueDate(gctx, 5)
		if err != nil {
			return err
		}
		for _, inv := range unpaid {
			payments, err := e.store.FindPayments(gctx, inv.Id)
			if err != nil {
				return err
			}
			rec := Reconcile(inv, payments)
			recent = append(recent, InvoiceSummary{
				Invoice:    inv,
				PaidAmount: rec.PaidAmount,
				Balance:    rec.Balance,
			})
		}
		return nil
	})

	g.Go(func() error {
		payments, err := e.store.AllPayments(gctx)
		if err != nil {
			return err
		}
		paymentCount = len(payments)
		return nil
	})

	if err := g.Wait(); err != nil {
		return DashboardReport{}, err
	}

	summary.TotalBudgets = budgetCount
	summary.TotalInvoices = invoiceCount
	summary.TotalPayments = paymentCount
	alerts.AlertCount = len(alerts.BudgetAlerts)

	return DashboardReport{
		Summary:              summary,
		Alerts:               alerts,
		RecentUnpaidInvoices: recent,
		Timestamp:            e.now().UTC(),
	}, nil
}

// evaluateBudget fetches the budget's transaction window and runs the
// utilization calculator; degenerate budgets skip the fetch.
func (e *Engine) evaluateBudget(ctx context.Context, store Store, b models.Budget) (UtilizationReport, error) {
	if b.CostCenterID == 0 || !b.HasPeriod() || b.Amount.Sign() <= 0 {
		return Evaluate(b, nil), nil
	}
	transactions, err := store.FindTransactions(ctx, b.CostCenterID, b.PeriodStart, b.PeriodEnd)
	if err != nil {
		return UtilizationReport{}, err
	}
	return Evaluate(b, transactions), nil
}

func (e *Engine) costCenterName(ctx context.Context, store Store, id uint) *string {
	if id == 0 {
		return nil
	}
	cc, err := store.FindCostCenter(ctx, id)
	if err != nil || cc == nil {
		return nil
	}
	return &cc.Name
}

// EvaluateBudget exposes live utilization for single-budget reads.
func (e *Engine) EvaluateBudget(ctx context.Context, b models.Budget) (UtilizationReport, error) {
	return e.evaluateBudget(ctx, e.store, b)
}
