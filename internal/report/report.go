// Package report turns flat transaction rows into the summaries and chart
// series shown on the dashboard, history, budget and monthly pages.
//
// Every function here is pure: it reads its arguments, allocates fresh output
// and never touches the store, so callers may invoke them concurrently.
// Amounts are exact decimals; nothing is rounded before display.
package report

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"spendsnap/internal/models"
)

// Summary holds the headline totals over a set of transactions.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// CategoryAmount is one ranked entry of a category breakdown.
type CategoryAmount struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// MonthBucket is the derived summary for one calendar month.
type MonthBucket struct {
	Year              int                  `json:"year"`
	Month             int                  `json:"month"` // 1-12
	Income            decimal.Decimal      `json:"income"`
	Expense           decimal.Decimal      `json:"expense"`
	Savings           decimal.Decimal      `json:"savings"`
	CategoryBreakdown []CategoryAmount     `json:"category_breakdown"`
	Transactions      []models.Transaction `json:"transactions"`
}

// DatePoint is one day of the history chart.
type DatePoint struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// MonthPoint is one month of the dashboard income/expense series.
type MonthPoint struct {
	Name    string          `json:"name"` // YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryTotal is the expense total of a single category.
type CategoryTotal struct {
	Category     string          `json:"category"`
	TotalExpense decimal.Decimal `json:"total_expense"`
}

// Summarize sums income and expense amounts. Rows of any other type count
// toward neither total.
func Summarize(txs []models.Transaction) Summary {
	income, expense := decimal.Zero, decimal.Zero
	for i := range txs {
		switch txs[i].Type {
		case models.TransactionTypeIncome:
			income = income.Add(txs[i].Amount)
		case models.TransactionTypeExpense:
			expense = expense.Add(txs[i].Amount)
		}
	}
	return Summary{Income: income, Expense: expense, Balance: income.Sub(expense)}
}

// BucketByMonth partitions txs into twelve buckets by the month of their
// date. Restricting txs to year is the caller's job; year only labels the
// buckets.
func BucketByMonth(txs []models.Transaction, year int) [12]MonthBucket {
	var buckets [12]MonthBucket
	spend := make([]*categoryAccumulator, 12)
	for m := range buckets {
		buckets[m] = MonthBucket{
			Year:         year,
			Month:        m + 1,
			Income:       decimal.Zero,
			Expense:      decimal.Zero,
			Transactions: []models.Transaction{},
		}
		spend[m] = newCategoryAccumulator()
	}

	for _, tx := range txs {
		m := int(tx.Date.UTC().Month()) - 1
		b := &buckets[m]
		switch tx.Type {
		case models.TransactionTypeIncome:
			b.Income = b.Income.Add(tx.Amount)
		case models.TransactionTypeExpense:
			b.Expense = b.Expense.Add(tx.Amount)
			spend[m].add(tx.Category, tx.Amount)
		}
		b.Transactions = append(b.Transactions, tx)
	}

	for m := range buckets {
		buckets[m].Savings = buckets[m].Income.Sub(buckets[m].Expense)
		buckets[m].CategoryBreakdown = spend[m].ranked()
	}
	return buckets
}

// BucketByDate groups txs by calendar date, ignoring time of day, and returns
// one point per date present in ascending order.
func BucketByDate(txs []models.Transaction) []DatePoint {
	index := make(map[string]int)
	points := []DatePoint{}
	for i := range txs {
		key := txs[i].DateKey()
		pos, ok := index[key]
		if !ok {
			pos = len(points)
			index[key] = pos
			points = append(points, DatePoint{Date: key, Income: decimal.Zero, Expense: decimal.Zero})
		}
		switch txs[i].Type {
		case models.TransactionTypeIncome:
			points[pos].Income = points[pos].Income.Add(txs[i].Amount)
		case models.TransactionTypeExpense:
			points[pos].Expense = points[pos].Expense.Add(txs[i].Amount)
		}
	}
	// YYYY-MM-DD sorts lexically in date order
	slices.SortFunc(points, func(a, b DatePoint) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
	return points
}

// MonthlySeries groups txs by year and month into an ascending series.
func MonthlySeries(txs []models.Transaction) []MonthPoint {
	index := make(map[string]int)
	points := []MonthPoint{}
	for i := range txs {
		key := txs[i].Date.UTC().Format("2006-01")
		pos, ok := index[key]
		if !ok {
			pos = len(points)
			index[key] = pos
			points = append(points, MonthPoint{Name: key, Income: decimal.Zero, Expense: decimal.Zero})
		}
		switch txs[i].Type {
		case models.TransactionTypeIncome:
			points[pos].Income = points[pos].Income.Add(txs[i].Amount)
		case models.TransactionTypeExpense:
			points[pos].Expense = points[pos].Expense.Add(txs[i].Amount)
		}
	}
	slices.SortFunc(points, func(a, b MonthPoint) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return points
}

// CategoryTotals returns the expense total per category in order of first
// appearance. Categories whose expenses sum to zero are left out.
func CategoryTotals(txs []models.Transaction) []CategoryTotal {
	acc := newCategoryAccumulator()
	for i := range txs {
		if txs[i].Type == models.TransactionTypeExpense {
			acc.add(txs[i].Category, txs[i].Amount)
		}
	}
	out := []CategoryTotal{}
	for _, name := range acc.order {
		if total := acc.totals[name]; !total.IsZero() {
			out = append(out, CategoryTotal{Category: name, TotalExpense: total})
		}
	}
	return out
}

// SpendByCategory is CategoryTotals keyed by category name.
func SpendByCategory(txs []models.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, ct := range CategoryTotals(txs) {
		out[ct.Category] = ct.TotalExpense
	}
	return out
}

// CountByCategory counts transactions of any type per category.
func CountByCategory(txs []models.Transaction) map[string]int {
	out := make(map[string]int)
	for i := range txs {
		out[txs[i].Category]++
	}
	return out
}

// Top returns at most n leading entries of a ranked breakdown.
func Top(breakdown []CategoryAmount, n int) []CategoryAmount {
	if n < 0 {
		n = 0
	}
	if len(breakdown) <= n {
		return breakdown
	}
	return breakdown[:n]
}

// FilterByMonth keeps transactions dated in the given month (1-12) of any
// year. A month outside 1-12 keeps everything.
func FilterByMonth(txs []models.Transaction, month int) []models.Transaction {
	if month < 1 || month > 12 {
		return txs
	}
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if int(tx.Date.UTC().Month()) == month {
			out = append(out, tx)
		}
	}
	return out
}

// InYear keeps transactions dated within year.
func InYear(txs []models.Transaction, year int) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.UTC().Year() == year {
			out = append(out, tx)
		}
	}
	return out
}

// Recent returns the n most recent transactions, newest first. Ties keep
// their input order.
func Recent(txs []models.Transaction, n int) []models.Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b models.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []models.Transaction{}
	}
	return sorted
}

// YearBounds returns the first instant of year and the first instant of the
// following year, both UTC.
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// categoryAccumulator sums amounts per category and remembers the order in
// which categories first appeared.
type categoryAccumulator struct {
	order  []string
	totals map[string]decimal.Decimal
}

func newCategoryAccumulator() *categoryAccumulator {
	return &categoryAccumulator{totals: make(map[string]decimal.Decimal)}
}

func (a *categoryAccumulator) add(category string, amount decimal.Decimal) {
	cur, ok := a.totals[category]
	if !ok {
		a.order = append(a.order, category)
		cur = decimal.Zero
	}
	a.totals[category] = cur.Add(amount)
}

// ranked returns the totals sorted descending by amount; equal amounts keep
// first-appearance order.
func (a *categoryAccumulator) ranked() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, CategoryAmount{Name: name, Value: a.totals[name]})
	}
	slices.SortStableFunc(out, func(x, y CategoryAmount) int {
		return y.Value.Cmp(x.Value)
	})
	return out
}
