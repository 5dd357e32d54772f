package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spendsnap/internal/errors"
	"spendsnap/internal/models"
	"spendsnap/internal/pagination"
	"spendsnap/internal/services"
)

const testTransactionID = "0190a1b2-c3d4-7e5f-8a6b-000000000001"

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn   func(userID string, in services.CreateTransactionInput) (*models.Transaction, error)
	getUserTransactionsFn func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	listTransactionsFn    func(ctx context.Context, userID string, filter services.TransactionFilter) ([]models.Transaction, error)
	getTransactionByIDFn  func(userID, transactionID string) (*models.Transaction, error)
}

func (m *mockTransactionService) CreateTransaction(userID string, in services.CreateTransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) ListTransactions(ctx context.Context, userID string, filter services.TransactionFilter) ([]models.Transaction, error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(ctx, userID, filter)
	}
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetUserTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.CreateTransactionInput
		audit := &mockAuditService{}
		txSvc := &mockTransactionService{
			createTransactionFn: func(userID string, in services.CreateTransactionInput) (*models.Transaction, error) {
				got = in
				return &models.Transaction{
					Base:     models.Base{ID: testTransactionID},
					UserID:   userID,
					Type:     in.Type,
					Amount:   in.Amount,
					Category: in.Category,
					Date:     in.Date,
				}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit))

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","amount":"12.50","category":"Food","date":"2024-01-31","notes":"lunch"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Amount.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("expected amount 12.5, got %s", got.Amount)
		}
		if !got.Date.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected 2024-01-31, got %s", got.Date)
		}
		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["amount"] != "12.5" {
			t.Errorf("expected amount \"12.5\", got %v", tx["amount"])
		}
		if !audit.logged(services.AuditCreateTransaction) {
			t.Error("expected CREATE_TRANSACTION audit entry")
		}
	})

	t.Run("accepts numeric amounts and zero", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ string, in services.CreateTransactionInput) (*models.Transaction, error) {
				if !in.Amount.IsZero() {
					t.Errorf("expected zero amount, got %s", in.Amount)
				}
				return &models.Transaction{Amount: in.Amount}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"income","amount":0,"category":"Food","date":"2024-01-31"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"missing amount", `{"type":"income","category":"Food","date":"2024-01-31"}`},
		{"missing category", `{"type":"income","amount":"5","date":"2024-01-31"}`},
		{"missing date", `{"type":"income","amount":"5","category":"Food"}`},
		{"bad date", `{"type":"income","amount":"5","category":"Food","date":"31/01/2024"}`},
		{"invalid type", `{"type":"transfer","amount":"5","category":"Food","date":"2024-01-31"}`},
		{"non numeric amount", `{"type":"income","amount":"abc","category":"Food","date":"2024-01-31"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			txSvc := &mockTransactionService{
				createTransactionFn: func(string, services.CreateTransactionInput) (*models.Transaction, error) {
					t.Error("service should not be called")
					return nil, nil
				},
			}
			r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

			rec := doRequest(r, "POST", "/transactions", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 404 on unknown category", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(string, services.CreateTransactionInput) (*models.Transaction, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","amount":"5","category":"Yachts","date":"2024-01-31"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := gin.New()
		r.POST("/transactions", handler.CreateTransaction)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"income","amount":"5","category":"Food","date":"2024-01-31"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetUserTransactions(t *testing.T) {
	t.Run("passes filters and paging", func(t *testing.T) {
		var gotPage pagination.PageRequest
		var gotFilter services.TransactionFilter
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(_ string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				gotPage, gotFilter = page, filter
				resp := pagination.NewPageResponse([]models.Transaction{{Category: "Food"}}, page.Page, page.PageSize, 1)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?category=Food&type=expense&from_date=2024-01-01&search=Lunch&month=3&page=2&page_size=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("unexpected page %+v", gotPage)
		}
		if gotFilter.Category == nil || *gotFilter.Category != "Food" {
			t.Errorf("expected category filter, got %v", gotFilter.Category)
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.TransactionTypeExpense {
			t.Errorf("expected type filter, got %v", gotFilter.Type)
		}
		if gotFilter.FromDate == nil || gotFilter.FromDate.Format(models.DateLayout) != "2024-01-01" {
			t.Errorf("expected from date, got %v", gotFilter.FromDate)
		}
		if gotFilter.Search != "Lunch" || gotFilter.Month != 3 {
			t.Errorf("unexpected filter %+v", gotFilter)
		}
		result := parseJSON(t, rec)
		if result["total_items"].(float64) != 1 {
			t.Errorf("expected 1 item, got %v", result["total_items"])
		}
	})

	t.Run("returns 400 on bad month", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?month=13", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad type", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?type=refund", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TRANSACTION_TYPE")
	})

	t.Run("returns 400 on oversized page", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?page_size=1000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionByIDFn: func(userID, id string) (*models.Transaction, error) {
				return &models.Transaction{Base: models.Base{ID: id}, UserID: userID}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/"+testTransactionID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["id"] != testTransactionID {
			t.Errorf("expected %s, got %v", testTransactionID, tx["id"])
		}
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionByIDFn: func(_, _ string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/"+testTransactionID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}
