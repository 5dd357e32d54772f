package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "spendsnap/internal/errors"
	"spendsnap/internal/models"
	"spendsnap/internal/services"
)

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn    func(userID, name string) (*models.Category, error)
	getUserCategoriesFn func(userID string) ([]models.Category, error)
	categoryNamesFn     func(userID string) ([]string, error)
	isKnownCategoryFn   func(userID, name string) (bool, error)
}

func (m *mockCategoryService) CreateCategory(userID, name string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, name)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetUserCategories(userID string) ([]models.Category, error) {
	if m.getUserCategoriesFn != nil {
		return m.getUserCategoriesFn(userID)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) CategoryNames(userID string) ([]string, error) {
	if m.categoryNamesFn != nil {
		return m.categoryNamesFn(userID)
	}
	return append([]string(nil), models.PredefinedCategories...), nil
}

func (m *mockCategoryService) IsKnownCategory(userID, name string) (bool, error) {
	if m.isKnownCategoryFn != nil {
		return m.isKnownCategoryFn(userID, name)
	}
	return true, nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories", handler.GetUserCategories)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		catSvc := &mockCategoryService{
			createCategoryFn: func(userID, name string) (*models.Category, error) {
				return &models.Category{Base: models.Base{ID: "c1"}, UserID: userID, Name: name}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, audit))

		rec := doRequest(r, "POST", "/categories", `{"name":"Pets"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		category := parseJSON(t, rec)["category"].(map[string]interface{})
		if category["name"] != "Pets" {
			t.Errorf("expected Pets, got %v", category["name"])
		}
		if !audit.logged(services.AuditCreateCategory) {
			t.Error("expected CREATE_CATEGORY audit entry")
		}
	})

	t.Run("returns 400 on empty name", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":""}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid characters", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"<script>"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createCategoryFn: func(_, _ string) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}

func TestCategoryHandler_GetUserCategories(t *testing.T) {
	t.Run("returns predefined and custom names", func(t *testing.T) {
		catSvc := &mockCategoryService{
			categoryNamesFn: func(string) ([]string, error) {
				return append(append([]string(nil), models.PredefinedCategories...), "Pets"), nil
			},
			getUserCategoriesFn: func(userID string) ([]models.Category, error) {
				return []models.Category{{UserID: userID, Name: "Pets"}}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		names := result["categories"].([]interface{})
		if len(names) != len(models.PredefinedCategories)+1 || names[len(names)-1] != "Pets" {
			t.Errorf("unexpected names %v", names)
		}
		if len(result["custom"].([]interface{})) != 1 {
			t.Errorf("expected 1 custom category, got %v", result["custom"])
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := gin.New()
		r.GET("/categories", handler.GetUserCategories)

		rec := doRequest(r, "GET", "/categories", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
