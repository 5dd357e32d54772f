package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"spendsnap/internal/models"
)

// BudgetPolicy decides which budget rows make up a category's target when
// more than one exists.
type BudgetPolicy string

const (
	// BudgetPolicySum adds every budget row of the category.
	BudgetPolicySum BudgetPolicy = "sum"
	// BudgetPolicyLatest takes the most recently created row.
	BudgetPolicyLatest BudgetPolicy = "latest"
)

// ParseBudgetPolicy maps a configured value to a policy, defaulting to sum.
func ParseBudgetPolicy(s string) BudgetPolicy {
	if BudgetPolicy(strings.ToLower(strings.TrimSpace(s))) == BudgetPolicyLatest {
		return BudgetPolicyLatest
	}
	return BudgetPolicySum
}

// Budget statuses.
const (
	StatusUnder    = "under"
	StatusExceeded = "exceeded"
)

// BudgetLine compares one category's target with what was spent.
type BudgetLine struct {
	Category     string          `json:"category"`
	BudgetAmount decimal.Decimal `json:"budget_amount"`
	SpentAmount  decimal.Decimal `json:"spent_amount"`
	PercentUsed  decimal.Decimal `json:"percent_used"`
	Status       string          `json:"status"`
}

var hundred = decimal.NewFromInt(100)

// BudgetComparison produces one line per category, in the order given.
// Spending at or above the target is reported as exceeded; a category with
// no budget rows has a zero target and therefore reports exceeded too.
func BudgetComparison(categories []string, budgets []models.Budget, spent map[string]decimal.Decimal, policy BudgetPolicy) []BudgetLine {
	targets := budgetTargets(budgets, policy)

	lines := make([]BudgetLine, 0, len(categories))
	for _, category := range categories {
		budget, ok := targets[category]
		if !ok {
			budget = decimal.Zero
		}
		spentAmount, ok := spent[category]
		if !ok {
			spentAmount = decimal.Zero
		}

		percent := decimal.Zero
		if budget.IsPositive() {
			percent = spentAmount.Mul(hundred).Div(budget)
		}

		status := StatusExceeded
		if budget.GreaterThan(spentAmount) {
			status = StatusUnder
		}

		lines = append(lines, BudgetLine{
			Category:     category,
			BudgetAmount: budget,
			SpentAmount:  spentAmount,
			PercentUsed:  percent,
			Status:       status,
		})
	}
	return lines
}

// newerBudget orders rows by creation time, falling back to the time-ordered
// id when two rows share a timestamp. Input order is never consulted.
func newerBudget(a, b models.Budget) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func budgetTargets(budgets []models.Budget, policy BudgetPolicy) map[string]decimal.Decimal {
	targets := make(map[string]decimal.Decimal)
	if policy == BudgetPolicyLatest {
		latest := make(map[string]models.Budget)
		for _, b := range budgets {
			if cur, ok := latest[b.Category]; !ok || newerBudget(b, cur) {
				latest[b.Category] = b
			}
		}
		for category, b := range latest {
			targets[category] = b.Amount
		}
		return targets
	}

	for _, b := range budgets {
		cur, ok := targets[b.Category]
		if !ok {
			cur = decimal.Zero
		}
		targets[b.Category] = cur.Add(b.Amount)
	}
	return targets
}
