package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"spendsnap/internal/cache"
	"spendsnap/internal/models"
	"spendsnap/internal/pagination"
	"spendsnap/internal/report"
)

const (
	recentTransactionCount = 3
	chartCategoryCount     = 5
)

// reportService fetches a user's rows and shapes them into page view-models.
type reportService struct {
	transactionService TransactionServicer
	categoryService    CategoryServicer
	budgetService      BudgetServicer
	cache              *cache.Cache
	policy             report.BudgetPolicy
}

// NewReportService creates a new ReportServicer. reportCache may be nil.
func NewReportService(
	transactionService TransactionServicer,
	categoryService CategoryServicer,
	budgetService BudgetServicer,
	reportCache *cache.Cache,
	policy report.BudgetPolicy,
) ReportServicer {
	return &reportService{
		transactionService: transactionService,
		categoryService:    categoryService,
		budgetService:      budgetService,
		cache:              reportCache,
		policy:             policy,
	}
}

func (s *reportService) cached(userID, key string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(userID, key)
}

func (s *reportService) generation(userID string) uint64 {
	if s.cache == nil {
		return 0
	}
	return s.cache.Generation(userID)
}

// store caches value unless the user's rows changed since gen was read.
func (s *reportService) store(userID, key string, gen uint64, value any) {
	if s.cache != nil {
		s.cache.Set(userID, key, gen, value)
	}
}

// Invalidate drops the user's cached reports.
func (s *reportService) Invalidate(userID string) {
	if s.cache != nil {
		s.cache.Invalidate(userID)
	}
}

// Dashboard builds the dashboard from all of the user's transactions.
func (s *reportService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	if v, ok := s.cached(userID, "dashboard"); ok {
		if d, ok := v.(*Dashboard); ok {
			return d, nil
		}
	}

	gen := s.generation(userID)
	txs, err := s.transactionService.ListTransactions(ctx, userID, TransactionFilter{})
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Summary:            report.Summarize(txs),
		MonthlySeries:      report.MonthlySeries(txs),
		CategoryTotals:     report.CategoryTotals(txs),
		RecentTransactions: report.Recent(txs, recentTransactionCount),
	}
	s.store(userID, "dashboard", gen, d)
	return d, nil
}

// MonthlySummary buckets the user's transactions of year by month.
func (s *reportService) MonthlySummary(ctx context.Context, userID string, year int) (*MonthlySummary, error) {
	key := fmt.Sprintf("monthly:%d", year)
	if v, ok := s.cached(userID, key); ok {
		if m, ok := v.(*MonthlySummary); ok {
			return m, nil
		}
	}

	gen := s.generation(userID)
	from, to := report.YearBounds(year)
	last := to.AddDate(0, 0, -1)
	txs, err := s.transactionService.ListTransactions(ctx, userID, TransactionFilter{FromDate: &from, ToDate: &last})
	if err != nil {
		return nil, err
	}

	m := &MonthlySummary{Year: year, Months: report.BucketByMonth(report.InYear(txs, year), year)}
	for i := range m.Months {
		m.Chart[i] = report.Top(m.Months[i].CategoryBreakdown, chartCategoryCount)
	}
	s.store(userID, key, gen, m)
	return m, nil
}

// History pages the filtered transactions and charts the whole filtered set
// by date.
func (s *reportService) History(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*History, error) {
	txs, err := s.transactionService.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	// newest first for the table, date ascending for the chart
	rows := report.Recent(txs, -1)
	return &History{
		PageResponse: pagination.Slice(rows, page),
		Chart:        report.BucketByDate(txs),
	}, nil
}

// BudgetOverview compares every category's budget with its spending.
func (s *reportService) BudgetOverview(ctx context.Context, userID string) (*BudgetOverview, error) {
	var (
		categories []string
		budgets    []models.Budget
		txs        []models.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.categoryService.CategoryNames(userID)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgetService.GetUserBudgets(userID)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.transactionService.ListTransactions(gctx, userID, TransactionFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lines := report.BudgetComparison(categories, budgets, report.SpendByCategory(txs), s.policy)
	counts := report.CountByCategory(txs)

	overview := &BudgetOverview{
		Categories: categories,
		Budgets:    make([]CategoryBudget, 0, len(lines)),
		Policy:     string(s.policy),
	}
	for _, line := range lines {
		overview.Budgets = append(overview.Budgets, CategoryBudget{
			BudgetLine:       line,
			TransactionCount: counts[line.Category],
		})
	}
	return overview, nil
}

// Summary totals the transactions matching filter.
func (s *reportService) Summary(ctx context.Context, userID string, filter TransactionFilter) (*report.Summary, error) {
	txs, err := s.transactionService.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	summary := report.Summarize(txs)
	return &summary, nil
}

// CategoryTotals sums expenses per category for the transactions matching
// filter.
func (s *reportService) CategoryTotals(ctx context.Context, userID string, filter TransactionFilter) ([]report.CategoryTotal, error) {
	txs, err := s.transactionService.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return report.CategoryTotals(txs), nil
}

// DailySeries totals income and expense per day for the transactions
// matching filter.
func (s *reportService) DailySeries(ctx context.Context, userID string, filter TransactionFilter) ([]report.DatePoint, error) {
	txs, err := s.transactionService.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return report.BucketByDate(txs), nil
}
