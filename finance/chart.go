package finance

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"ledgerbook-backend/models"
)

type ChartDataset struct {
	Label string            `json:"label"`
	Data  []decimal.Decimal `json:"data"`
}

// ChartData is the monthly purchase/sale series for the report chart.
// HasData lets clients tell "nothing recorded yet" apart from a month of
// zero activity.
type ChartData struct {
	HasData  bool           `json:"has_data"`
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

const monthLayout = "2006-01"

// MonthlyChart buckets all transactions by calendar month and emits
// purchase, sale and combined totals per month, months ascending.
func (e *Engine) MonthlyChart(ctx context.Context) (ChartData, error) {
	transactions, err := e.store.AllTransactions(ctx)
	if err != nil {
		return ChartData{}, err
	}
	if len(transactions) == 0 {
		return ChartData{HasData: false, Labels: []string{}, Datasets: []ChartDataset{}}, nil
	}

	type bucket struct {
		purchases decimal.Decimal
		sales     decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	for _, t := range transactions {
		month := t.Date.Format(monthLayout)
		b, ok := buckets[month]
		if !ok {
			b = &bucket{purchases: decimal.Zero, sales: decimal.Zero}
			buckets[month] = b
		}
		if t.Kind == models.KindSale {
			b.sales = b.sales.Add(t.Amount)
		} else {
			b.purchases = b.purchases.Add(t.Amount)
		}
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	purchases := make([]decimal.Decimal, len(months))
	sales := make([]decimal.Decimal, len(months))
	totals := make([]decimal.Decimal, len(months))
	for i, m := range months {
		b := buckets[m]
		purchases[i] = b.purchases
		sales[i] = b.sales
		totals[i] = b.purchases.Add(b.sales)
	}

	return ChartData{
		HasData: true,
		Labels:  months,
		Datasets: []ChartDataset{
			{Label: "Purchases", Data: purchases},
			{Label: "Sales", Data: sales},
			{Label: "Total", Data: totals},
		},
	}, nil
}
