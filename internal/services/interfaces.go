package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"spendsnap/internal/models"
	"spendsnap/internal/pagination"
	"spendsnap/internal/report"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	LookupUser(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	SignOut(userID string) error
	RequestPasswordReset(email string) error
	ResetPassword(token, password, confirmPassword string) (string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string) (*models.Category, error)
	GetUserCategories(userID string) ([]models.Category, error)
	// CategoryNames returns the predefined categories followed by the
	// user's custom ones.
	CategoryNames(userID string) ([]string, error)
	IsKnownCategory(userID, name string) (bool, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Category *string
	Type     *models.TransactionType
	FromDate *time.Time
	ToDate   *time.Time
	// Search matches notes case-insensitively.
	Search string
	// Month keeps rows dated in this month (1-12) of any year.
	Month int
}

// CreateTransactionInput carries the fields of a new transaction.
type CreateTransactionInput struct {
	Type     models.TransactionType
	Amount   decimal.Decimal
	Category string
	Date     time.Time
	Notes    string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in CreateTransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	SetBudget(userID, category string, amount decimal.Decimal) (*models.Budget, error)
	GetUserBudgets(userID string) ([]models.Budget, error)
}

// CategoryBudget is one budget card: the comparison line plus how many
// transactions were recorded in the category.
type CategoryBudget struct {
	report.BudgetLine
	TransactionCount int `json:"transaction_count"`
}

// BudgetOverview is the view-model of the budget page.
type BudgetOverview struct {
	Categories []string         `json:"categories"`
	Budgets    []CategoryBudget `json:"budgets"`
	Policy     string           `json:"policy"`
}

// Dashboard is the view-model of the dashboard page.
type Dashboard struct {
	Summary            report.Summary         `json:"summary"`
	MonthlySeries      []report.MonthPoint    `json:"monthly_series"`
	CategoryTotals     []report.CategoryTotal `json:"category_totals"`
	RecentTransactions []models.Transaction   `json:"recent_transactions"`
}

// MonthlySummary is the view-model of the monthly summary page.
type MonthlySummary struct {
	Year   int                    `json:"year"`
	Months [12]report.MonthBucket `json:"months"`
	// Chart holds the five largest categories of each month.
	Chart [12][]report.CategoryAmount `json:"chart"`
}

// History is the view-model of the transaction history page.
type History struct {
	pagination.PageResponse[models.Transaction]
	Chart []report.DatePoint `json:"chart"`
}

// ReportServicer defines the contract for report view-models.
type ReportServicer interface {
	Dashboard(ctx context.Context, userID string) (*Dashboard, error)
	MonthlySummary(ctx context.Context, userID string, year int) (*MonthlySummary, error)
	History(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*History, error)
	BudgetOverview(ctx context.Context, userID string) (*BudgetOverview, error)
	Summary(ctx context.Context, userID string, filter TransactionFilter) (*report.Summary, error)
	CategoryTotals(ctx context.Context, userID string, filter TransactionFilter) ([]report.CategoryTotal, error)
	DailySeries(ctx context.Context, userID string, filter TransactionFilter) ([]report.DatePoint, error)
	Invalidate(userID string)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
