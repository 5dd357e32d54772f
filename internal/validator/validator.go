// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"spendsnap/internal/models"
	"spendsnap/internal/report"
)

// categoryNameRegex allows letters, digits, spaces and a little punctuation.
var categoryNameRegex = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} &'._-]{0,49}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_name", validateCategoryName)
		_ = v.RegisterValidation("budget_policy", validateBudgetPolicy)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).Valid()
}

func validateCategoryName(fl validator.FieldLevel) bool {
	return categoryNameRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateBudgetPolicy(fl validator.FieldLevel) bool {
	switch report.BudgetPolicy(fl.Field().String()) {
	case report.BudgetPolicySum, report.BudgetPolicyLatest:
		return true
	}
	return false
}
