package finance

import (
	"context"
	"testing"
	"time"

	"ledgerbook-backend/models"
)

func TestDashboardAlertThreshold(t *testing.T) {
	period := func() (models.Date, models.Date) {
		return models.NewDate(2024, time.June, 1), models.NewDate(2024, time.June, 30)
	}
	start, end := period()

	store := newMemStore()
	store.centers = []models.CostCenter{
		{Id: 1, Code: "OPS", Name: "Operations"},
		{Id: 2, Code: "MKT", Name: "Marketing"},
	}
	store.budgets = []models.Budget{
		{Id: 1, CostCenterID: 1, Amount: d("1000"), PeriodStart: start, PeriodEnd: end},
		{Id: 2, CostCenterID: 2, Amount: d("1000"), PeriodStart: start, PeriodEnd: end},
	}
	store.transactions = []models.Transaction{
		txn(1, models.NewDate(2024, time.June, 10), "900", models.KindPurchase),   // exactly 90%
		txn(2, models.NewDate(2024, time.June, 10), "899.90", models.KindPurchase), // 89.99%
	}
	engine := newTestEngine(store)

	report, err := engine.Dashboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Alerts.AlertCount != 1 {
		t.Fatalf("alert_count = %d, want 1", report.Alerts.AlertCount)
	}
	alert := report.Alerts.BudgetAlerts[0]
	if alert.BudgetID != 1 {
		t.Fatalf("alerted budget = %d, want 1", alert.BudgetID)
	}
	if !alert.Utilization.Equal(d("90")) {
		t.Fatalf("utilization = %s, want 90", alert.Utilization)
	}
	if alert.CostCenter == nil || *alert.CostCenter != "Operations" {
		t.Fatalf("cost_center = %v, want Operations", alert.CostCenter)
	}
}

func TestDashboardTodayActivityAndInvoices(t *testing.T) {
	store := newMemStore()
	due := func(y int, m time.Month, day int) *models.Date {
		dt := models.NewDate(y, m, day)
		return &dt
	}
	store.invoices = []models.Invoice{
		{Id: 1, InvoiceNumber: "INV-20240601-0001", TotalAmount: d("500"), Status: models.InvoiceUnpaid, DueDate: due(2024, time.June, 20)},
		{Id: 2, InvoiceNumber: "INV-20240602-0002", TotalAmount: d("300"), Status: models.InvoicePartial, DueDate: due(2024, time.June, 18)},
		{Id: 3, InvoiceNumber: "INV-20240603-0003", TotalAmount: d("200"), Status: models.InvoicePaid, DueDate: due(2024, time.June, 16)},
	}
	store.payments = []models.Payment{
		{Id: 1, InvoiceID: 2, Amount: d("100"), PaidAt: testNow},
		{Id: 2, InvoiceID: 3, Amount: d("200"), PaidAt: testNow},
	}
	store.transactions = []models.Transaction{
		txn(1, models.DateOf(testNow), "150", models.KindSale),
		txn(1, models.DateOf(testNow), "40", models.KindPurchase),
		txn(1, models.NewDate(2024, time.June, 14), "999", models.KindSale), // yesterday
	}
	engine := newTestEngine(store)

	report, err := engine.Dashboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Summary.TodayTransactions != 2 {
		t.Fatalf("today_transactions = %d, want 2", report.Summary.TodayTransactions)
	}
	if !report.Summary.TodaySales.Equal(d("150")) {
		t.Fatalf("today_sales = %s, want 150", report.Summary.TodaySales)
	}
	if report.Summary.TotalInvoices != 3 || report.Summary.TotalPayments != 2 {
		t.Fatalf("totals = %d invoices / %d payments, want 3 / 2",
			report.Summary.TotalInvoices, report.Summary.TotalPayments)
	}

	if len(report.RecentUnpaidInvoices) != 2 {
		t.Fatalf("recent unpaid = %d, want 2", len(report.RecentUnpaidInvoices))
	}
	first := report.RecentUnpaidInvoices[0]
	if first.Id != 2 {
		t.Fatalf("first unpaid invoice = %d, want 2 (due soonest)", first.Id)
	}
	if !first.PaidAmount.Equal(d("100")) || !first.Balance.Equal(d("200")) {
		t.Fatalf("reconciled totals = paid %s / balance %s, want 100 / 200",
			first.PaidAmount, first.Balance)
	}
}

func TestMonthlyChartNoData(t *testing.T) {
	engine := newTestEngine(newMemStore())

	chart, err := engine.MonthlyChart(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if chart.HasData {
		t.Fatal("has_data = true with no transactions")
	}
	if chart.Labels == nil || len(chart.Labels) != 0 {
		t.Fatalf("labels = %v, want empty slice", chart.Labels)
	}
	if chart.Datasets == nil || len(chart.Datasets) != 0 {
		t.Fatalf("datasets = %v, want empty slice", chart.Datasets)
	}
}

func TestMonthlyChartBucketsAndOrder(t *testing.T) {
	store := newMemStore()
	store.transactions = []models.Transaction{
		txn(1, models.NewDate(2024, time.March, 5), "100", models.KindPurchase),
		txn(1, models.NewDate(2024, time.January, 20), "50", models.KindSale),
		txn(1, models.NewDate(2024, time.March, 28), "30", models.KindSale),
		txn(2, models.NewDate(2024, time.January, 2), "20", models.KindPurchase),
	}
	engine := newTestEngine(store)

	chart, err := engine.MonthlyChart(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !chart.HasData {
		t.Fatal("has_data = false")
	}

	wantLabels := []string{"2024-01", "2024-03"}
	if len(chart.Labels) != len(wantLabels) {
		t.Fatalf("labels = %v, want %v", chart.Labels, wantLabels)
	}
	for i := range wantLabels {
		if chart.Labels[i] != wantLabels[i] {
			t.Fatalf("labels = %v, want %v", chart.Labels, wantLabels)
		}
	}

	if len(chart.Datasets) != 3 {
		t.Fatalf("datasets = %d, want 3", len(chart.Datasets))
	}
	check := func(label string, want ...string) {
		t.Helper()
		for _, ds := range chart.Datasets {
			if ds.Label != label {
				continue
			}
			for i, w := range want {
				if !ds.Data[i].Equal(d(w)) {
					t.Fatalf("%s[%d] = %s, want %s", label, i, ds.Data[i], w)
				}
			}
			return
		}
		t.Fatalf("dataset %q missing", label)
	}
	check("Purchases", "20", "100")
	check("Sales", "50", "30")
	check("Total", "70", "130")
}

func TestFinancialSummaryWindow(t *testing.T) {
	store := newMemStore()
	inWindow := models.NewDate(2024, time.June, 1)
	outside := models.NewDate(2024, time.April, 1)
	store.transactions = []models.Transaction{
		txn(1, inWindow, "1000", models.KindSale),
		txn(1, inWindow, "400", models.KindPurchase),
		txn(1, outside, "5000", models.KindSale), // before the window
	}
	store.invoices = []models.Invoice{
		{Id: 1, TotalAmount: d("700"), Status: models.InvoicePaid, CreatedAt: testNow.AddDate(0, 0, -3)},
		{Id: 2, TotalAmount: d("300"), Status: models.InvoiceUnpaid, CreatedAt: testNow.AddDate(0, 0, -5)},
		{Id: 3, TotalAmount: d("999"), Status: models.InvoicePaid, CreatedAt: testNow.AddDate(0, 0, -60)},
	}
	store.payments = []models.Payment{
		{Id: 1, InvoiceID: 1, Amount: d("700"), PaidAt: testNow.AddDate(0, 0, -2)},
		{Id: 2, InvoiceID: 3, Amount: d("999"), PaidAt: testNow.AddDate(0, 0, -45)},
	}
	engine := newTestEngine(store)

	report, err := engine.FinancialSummary(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !report.Period.EndDate.Equal(models.DateOf(testNow).Time) {
		t.Fatalf("end_date = %s, want today", report.Period.EndDate)
	}
	if !report.Summary.TotalSales.Equal(d("1000")) {
		t.Fatalf("total_sales = %s, want 1000", report.Summary.TotalSales)
	}
	if !report.Summary.TotalPurchases.Equal(d("400")) {
		t.Fatalf("total_purchases = %s, want 400", report.Summary.TotalPurchases)
	}
	if !report.Summary.GrossProfit.Equal(d("600")) {
		t.Fatalf("gross_profit = %s, want 600", report.Summary.GrossProfit)
	}
	if !report.Summary.TotalInvoices.Equal(d("1000")) {
		t.Fatalf("total_invoices = %s, want 1000", report.Summary.TotalInvoices)
	}
	if !report.Summary.TotalPayments.Equal(d("700")) {
		t.Fatalf("total_payments = %s, want 700", report.Summary.TotalPayments)
	}
	if !report.Summary.OutstandingBalance.Equal(d("300")) {
		t.Fatalf("outstanding_balance = %s, want 300", report.Summary.OutstandingBalance)
	}
	if report.Counts.InvoicesIssued != 2 || report.Counts.InvoicesPaid != 1 || report.Counts.PaymentsReceived != 1 {
		t.Fatalf("counts = %+v, want 2 issued / 1 paid / 1 received", report.Counts)
	}
	if !report.Counts.PaymentRate.Equal(d("50")) {
		t.Fatalf("payment_rate = %s, want 50", report.Counts.PaymentRate)
	}
}

func TestBudgetVsActualTotals(t *testing.T) {
	store := newMemStore()
	store.centers = []models.CostCenter{{Id: 1, Code: "OPS", Name: "Operations"}}
	store.budgets = []models.Budget{
		{
			Id: 1, CostCenterID: 1, Amount: d("1000"),
			PeriodStart: models.NewDate(2024, time.June, 1),
			PeriodEnd:   models.NewDate(2024, time.June, 30),
		},
		{
			Id: 2, CostCenterID: 7, Amount: d("500"), // cost center gone
			PeriodStart: models.NewDate(2024, time.June, 1),
			PeriodEnd:   models.NewDate(2024, time.June, 30),
		},
	}
	store.transactions = []models.Transaction{
		txn(1, models.NewDate(2024, time.June, 10), "250", models.KindPurchase),
	}
	engine := newTestEngine(store)

	report, err := engine.BudgetVsActual(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Details) != 2 {
		t.Fatalf("details = %d, want 2", len(report.Details))
	}
	row := report.Details[0]
	if !row.Variance.Equal(d("750")) {
		t.Fatalf("variance = %s, want 750", row.Variance)
	}
	if row.CostCenterName == nil || *row.CostCenterName != "Operations" {
		t.Fatalf("cost_center_name = %v, want Operations", row.CostCenterName)
	}
	if report.Details[1].CostCenterName != nil {
		t.Fatalf("missing cost center should yield nil name, got %q", *report.Details[1].CostCenterName)
	}

	if !report.Summary.TotalBudget.Equal(d("1500")) {
		t.Fatalf("total_budget = %s, want 1500", report.Summary.TotalBudget)
	}
	if !report.Summary.TotalActual.Equal(d("250")) {
		t.Fatalf("total_actual = %s, want 250", report.Summary.TotalActual)
	}
	if !report.Summary.TotalVariance.Equal(d("1250")) {
		t.Fatalf("total_variance = %s, want 1250", report.Summary.TotalVariance)
	}
	if !report.Summary.OverallUtilization.Equal(d("16.67")) {
		t.Fatalf("overall_utilization = %s, want 16.67", report.Summary.OverallUtilization)
	}
}

func TestCostCenterPerformanceWithoutBudget(t *testing.T) {
	store := newMemStore()
	store.centers = []models.CostCenter{
		{Id: 1, Code: "OPS", Name: "Operations"},
		{Id: 2, Code: "MKT", Name: "Marketing"},
	}
	store.budgets = []models.Budget{
		{
			Id: 1, CostCenterID: 1, Amount: d("1000"),
			PeriodStart: models.NewDate(2024, time.June, 1),
			PeriodEnd:   models.NewDate(2024, time.June, 30),
		},
	}
	store.transactions = []models.Transaction{
		txn(1, models.NewDate(2024, time.June, 5), "200", models.KindPurchase),
		txn(1, models.NewDate(2024, time.June, 6), "300", models.KindSale),
		txn(2, models.NewDate(2024, time.June, 7), "900", models.KindPurchase),
	}
	engine := newTestEngine(store)

	report, err := engine.CostCenterPerformance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.CostCenters) != 2 {
		t.Fatalf("rows = %d, want 2", len(report.CostCenters))
	}

	ops := report.CostCenters[0]
	if ops.TotalTransactions != 2 || ops.PurchaseCount != 1 || ops.SaleCount != 1 {
		t.Fatalf("ops counts = %+v", ops)
	}
	if !ops.UtilizationPercentage.Equal(d("50")) {
		t.Fatalf("ops utilization = %s, want 50", ops.UtilizationPercentage)
	}

	mkt := report.CostCenters[1]
	if mkt.TotalTransactions != 1 {
		t.Fatalf("mkt transactions = %d, want 1", mkt.TotalTransactions)
	}
	if !mkt.BudgetAmount.Equal(d("0")) || !mkt.ActualSpent.Equal(d("0")) || mkt.IsOverBudget {
		t.Fatalf("budget-less center should degrade to zeros, got %+v", mkt.UtilizationReport)
	}
}
