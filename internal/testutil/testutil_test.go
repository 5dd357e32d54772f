package testutil_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"spendsnap/internal/errors"
	"spendsnap/internal/models"
	"spendsnap/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "categories", "transactions", "budgets", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected an empty second database, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	category := testutil.CreateTestCategory(t, db, user.ID)
	if category.UserID != user.ID {
		t.Errorf("expected category owned by %s, got %s", user.ID, category.UserID)
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "12.50", "Food", "2024-01-10")
	testutil.AssertDecimalEqual(t, "amount", tx.Amount, "12.50")
	if tx.DateKey() != "2024-01-10" {
		t.Errorf("expected date 2024-01-10, got %s", tx.DateKey())
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, "Food", "300")
	if budget.Amount.String() != "300" {
		t.Errorf("expected budget amount 300, got %s", budget.Amount)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrNotFound, "NOT_FOUND")
	testutil.AssertAppError(t, errors.Wrap(errors.ErrInternalServer, nil), "INTERNAL_ERROR")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}

func TestAssertDecimalEqual(t *testing.T) {
	testutil.AssertDecimalEqual(t, "amount", decimal.RequireFromString("400.0000"), "400")
}
