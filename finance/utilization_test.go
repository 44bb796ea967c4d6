package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbook-backend/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func txn(cc uint, date models.Date, amount string, kind string) models.Transaction {
	return models.Transaction{
		Kind:         kind,
		Amount:       d(amount),
		CostCenterID: cc,
		Date:         date,
	}
}

func TestEvaluateWindow(t *testing.T) {
	budget := models.Budget{
		Id:           1,
		CostCenterID: 1,
		Amount:       d("100000"),
		PeriodStart:  models.NewDate(2024, time.January, 1),
		PeriodEnd:    models.NewDate(2024, time.January, 31),
	}
	transactions := []models.Transaction{
		txn(1, models.NewDate(2024, time.January, 5), "30000", models.KindPurchase),
		txn(1, models.NewDate(2024, time.January, 31), "20000", models.KindSale),
		txn(1, models.NewDate(2024, time.February, 1), "99999", models.KindPurchase), // outside window
		txn(2, models.NewDate(2024, time.January, 10), "77777", models.KindPurchase), // other cost center
	}

	got := Evaluate(budget, transactions)

	if !got.ActualSpent.Equal(d("50000")) {
		t.Fatalf("actual_spent = %s, want 50000", got.ActualSpent)
	}
	if !got.UtilizationPercentage.Equal(d("50")) {
		t.Fatalf("utilization = %s, want 50", got.UtilizationPercentage)
	}
	if !got.RemainingBalance.Equal(d("50000")) {
		t.Fatalf("remaining = %s, want 50000", got.RemainingBalance)
	}
	if got.IsOverBudget {
		t.Fatal("is_over_budget = true, want false")
	}
}

func TestEvaluateBoundaryDates(t *testing.T) {
	budget := models.Budget{
		Id:           1,
		CostCenterID: 1,
		Amount:       d("1000"),
		PeriodStart:  models.NewDate(2024, time.March, 1),
		PeriodEnd:    models.NewDate(2024, time.March, 31),
	}
	cases := []struct {
		name     string
		date     models.Date
		included bool
	}{
		{"on period_start", models.NewDate(2024, time.March, 1), true},
		{"on period_end", models.NewDate(2024, time.March, 31), true},
		{"day before start", models.NewDate(2024, time.February, 29), false},
		{"day after end", models.NewDate(2024, time.April, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(budget, []models.Transaction{txn(1, tc.date, "100", models.KindPurchase)})
			want := decimal.Zero
			if tc.included {
				want = d("100")
			}
			if !got.ActualSpent.Equal(want) {
				t.Fatalf("actual_spent = %s, want %s", got.ActualSpent, want)
			}
		})
	}
}

func TestEvaluateDegenerateBudgets(t *testing.T) {
	window := []models.Transaction{
		txn(1, models.NewDate(2024, time.January, 10), "500", models.KindPurchase),
	}
	start := models.NewDate(2024, time.January, 1)
	end := models.NewDate(2024, time.January, 31)

	cases := []struct {
		name   string
		budget models.Budget
	}{
		{"no cost center", models.Budget{Amount: d("1000"), PeriodStart: start, PeriodEnd: end}},
		{"no period", models.Budget{CostCenterID: 1, Amount: d("1000")}},
		{"zero amount", models.Budget{CostCenterID: 1, Amount: decimal.Zero, PeriodStart: start, PeriodEnd: end}},
		{"negative amount", models.Budget{CostCenterID: 1, Amount: d("-50"), PeriodStart: start, PeriodEnd: end}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.budget, window)
			if !got.ActualSpent.Equal(decimal.Zero) {
				t.Fatalf("actual_spent = %s, want 0", got.ActualSpent)
			}
			if !got.UtilizationPercentage.Equal(decimal.Zero) {
				t.Fatalf("utilization = %s, want 0", got.UtilizationPercentage)
			}
			if !got.RemainingBalance.Equal(tc.budget.Amount) {
				t.Fatalf("remaining = %s, want %s", got.RemainingBalance, tc.budget.Amount)
			}
			if got.IsOverBudget {
				t.Fatal("is_over_budget = true, want false")
			}
		})
	}
}

func TestEvaluateOverBudget(t *testing.T) {
	budget := models.Budget{
		CostCenterID: 1,
		Amount:       d("100"),
		PeriodStart:  models.NewDate(2024, time.January, 1),
		PeriodEnd:    models.NewDate(2024, time.January, 31),
	}
	got := Evaluate(budget, []models.Transaction{
		txn(1, models.NewDate(2024, time.January, 2), "150", models.KindPurchase),
	})
	if !got.IsOverBudget {
		t.Fatal("is_over_budget = false, want true")
	}
	if !got.RemainingBalance.Equal(d("-50")) {
		t.Fatalf("remaining = %s, want -50", got.RemainingBalance)
	}
	if !got.UtilizationPercentage.Equal(d("150")) {
		t.Fatalf("utilization = %s, want 150", got.UtilizationPercentage)
	}
}

func TestEvaluatePercentageRounding(t *testing.T) {
	budget := models.Budget{
		CostCenterID: 1,
		Amount:       d("3"),
		PeriodStart:  models.NewDate(2024, time.January, 1),
		PeriodEnd:    models.NewDate(2024, time.January, 31),
	}
	got := Evaluate(budget, []models.Transaction{
		txn(1, models.NewDate(2024, time.January, 2), "1", models.KindPurchase),
	})
	if !got.UtilizationPercentage.Equal(d("33.33")) {
		t.Fatalf("utilization = %s, want 33.33", got.UtilizationPercentage)
	}
	// Remaining balance is exact even though the percentage is rounded.
	if !got.RemainingBalance.Equal(d("2")) {
		t.Fatalf("remaining = %s, want 2", got.RemainingBalance)
	}
}

func TestEvaluateIsReferentiallyTransparent(t *testing.T) {
	budget := models.Budget{
		CostCenterID: 1,
		Amount:       d("100000"),
		PeriodStart:  models.NewDate(2024, time.January, 1),
		PeriodEnd:    models.NewDate(2024, time.January, 31),
	}
	transactions := []models.Transaction{
		txn(1, models.NewDate(2024, time.January, 5), "30000", models.KindPurchase),
	}
	first := Evaluate(budget, transactions)
	second := Evaluate(budget, transactions)
	if !first.ActualSpent.Equal(second.ActualSpent) ||
		!first.UtilizationPercentage.Equal(second.UtilizationPercentage) ||
		!first.RemainingBalance.Equal(second.RemainingBalance) ||
		first.IsOverBudget != second.IsOverBudget {
		t.Fatalf("repeated evaluation differs: %+v vs %+v", first, second)
	}
}
