package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spendsnap/internal/cache"
	apperrors "spendsnap/internal/errors"
	"spendsnap/internal/events"
	"spendsnap/internal/models"
	"spendsnap/internal/pagination"
	"spendsnap/internal/report"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db              *gorm.DB
	categoryService CategoryServicer
	budgetService   BudgetServicer
	cache           *cache.Cache
	publisher       events.Publisher
	policy          report.BudgetPolicy
}

// NewTransactionService creates a new TransactionServicer. reportCache may be
// nil; when set, the user's cached reports are dropped after every write.
func NewTransactionService(
	db *gorm.DB,
	categoryService CategoryServicer,
	budgetService BudgetServicer,
	reportCache *cache.Cache,
	publisher events.Publisher,
	policy report.BudgetPolicy,
) TransactionServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &transactionService{
		db:              db,
		categoryService: categoryService,
		budgetService:   budgetService,
		cache:           reportCache,
		publisher:       publisher,
		policy:          policy,
	}
}

// CreateTransaction records an income or expense for the user.
func (s *transactionService) CreateTransaction(userID string, in CreateTransactionInput) (*models.Transaction, error) {
	if !in.Type.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if in.Amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if !models.FitsAmountScale(in.Amount) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must have at most 4 decimal places")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if in.Date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}

	known, err := s.categoryService.IsKnownCategory(userID, category)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, apperrors.ErrCategoryNotFound
	}

	var spentBefore decimal.Decimal
	if in.Type == models.TransactionTypeExpense {
		if spentBefore, err = s.categorySpend(userID, category); err != nil {
			return nil, err
		}
	}

	d := in.Date.UTC()
	transaction := &models.Transaction{
		UserID:   userID,
		Amount:   in.Amount,
		Type:     in.Type,
		Category: category,
		Date:     time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		Notes:    strings.TrimSpace(in.Notes),
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(userID)
	}

	publish(s.publisher, events.TransactionCreated, userID, events.TransactionCreatedPayload{
		TransactionID: transaction.ID,
		Type:          string(transaction.Type),
		Category:      transaction.Category,
		Amount:        transaction.Amount.String(),
		Date:          transaction.DateKey(),
	})

	if transaction.Type == models.TransactionTypeExpense {
		s.checkBudget(userID, category, spentBefore, spentBefore.Add(transaction.Amount))
	}

	return transaction, nil
}

// checkBudget publishes budget.exceeded when this expense moved the category
// from under its budget to at or over it.
func (s *transactionService) checkBudget(userID, category string, before, after decimal.Decimal) {
	if s.budgetService == nil {
		return
	}
	budgets, err := s.budgetService.GetUserBudgets(userID)
	if err != nil {
		return
	}

	wasOver := report.BudgetComparison([]string{category}, budgets, map[string]decimal.Decimal{category: before}, s.policy)[0]
	line := report.BudgetComparison([]string{category}, budgets, map[string]decimal.Decimal{category: after}, s.policy)[0]
	if !line.BudgetAmount.IsPositive() || wasOver.Status == report.StatusExceeded || line.Status != report.StatusExceeded {
		return
	}

	publish(s.publisher, events.BudgetExceeded, userID, events.BudgetExceededPayload{
		Category:     category,
		BudgetAmount: line.BudgetAmount.String(),
		SpentAmount:  line.SpentAmount.String(),
		PercentUsed:  line.PercentUsed.StringFixed(2),
	})
}

func (s *transactionService) categorySpend(userID, category string) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND category = ? AND type = ?", userID, category, models.TransactionTypeExpense).
		Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	// the month predicate is applied in memory, so page after filtering
	if filter.Month != 0 {
		var all []models.Transaction
		if err := base.Order("date DESC, created_at DESC").Find(&all).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result := pagination.Slice(report.FilterByMonth(all, filter.Month), page)
		return &result, nil
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListTransactions returns every transaction matching filter in date order.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error) {
	q := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	q = applyTransactionFilters(q, filter)

	var transactions []models.Transaction
	if err := q.Order("date ASC, created_at ASC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if filter.Month != 0 {
		transactions = report.FilterByMonth(transactions, filter.Month)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// likeEscaper makes LIKE wildcards in a search match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where(`LOWER(notes) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}
