package services

import (
	"testing"

	"spendsnap/internal/models"
	"spendsnap/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, "  Groceries ")
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected category ID")
		}
		if cat.Name != "Groceries" {
			t.Errorf("expected trimmed name Groceries, got %q", cat.Name)
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Pets")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "pets")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(alice.ID, "Pets")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(bob.ID, "Pets")
		testutil.AssertNoError(t, err)
	})

	t.Run("predefined_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "food")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestCategoryNames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	custom := testutil.CreateTestCategory(t, db, user.ID)
	testutil.CreateTestCategory(t, db, other.ID)

	names, err := svc.CategoryNames(user.ID)
	testutil.AssertNoError(t, err)

	if len(names) != len(models.PredefinedCategories)+1 {
		t.Fatalf("expected predefined plus one custom category, got %v", names)
	}
	if names[0] != "Food" || names[len(names)-1] != custom.Name {
		t.Errorf("unexpected order %v", names)
	}
}

func TestIsKnownCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	custom := testutil.CreateTestCategory(t, db, user.ID)

	for name, want := range map[string]bool{"Travel": true, custom.Name: true, "Nope": false} {
		got, err := svc.IsKnownCategory(user.ID, name)
		testutil.AssertNoError(t, err)
		if got != want {
			t.Errorf("IsKnownCategory(%q) = %v, want %v", name, got, want)
		}
	}
}
