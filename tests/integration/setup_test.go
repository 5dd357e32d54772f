package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spendsnap/internal/cache"
	"spendsnap/internal/config"
	"spendsnap/internal/events"
	"spendsnap/internal/logger"
	"spendsnap/internal/middleware"
	"spendsnap/internal/report"
	"spendsnap/internal/server"
	"spendsnap/internal/services"
	"spendsnap/internal/session"
	"spendsnap/internal/testutil"
	"spendsnap/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	Events *eventLog
}

// eventLog is an in-memory events.Publisher.
type eventLog struct {
	mu     sync.Mutex
	events []*events.Event
}

func (l *eventLog) Publish(_ context.Context, _ string, e *events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) Close() error { return nil }

func (l *eventLog) ofType(eventType string) []*events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*events.Event
	for _, e := range l.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	reportCache, err := cache.New(time.Minute)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(reportCache.Close)

	pub := &eventLog{}
	policy := report.BudgetPolicySum

	// Services
	userService := services.NewUserService(db, pub, time.Hour)
	categoryService := services.NewCategoryService(db)
	budgetService := services.NewBudgetService(db, categoryService)
	transactionService := services.NewTransactionService(db, categoryService, budgetService, reportCache, pub, policy)
	reportService := services.NewReportService(transactionService, categoryService, budgetService, reportCache, policy)
	auditService := services.NewAuditService(db)

	tokens := session.NewTokens("integration-secret", time.Hour)

	router := server.NewRouter(server.Deps{
		Users:        userService,
		Categories:   categoryService,
		Transactions: transactionService,
		Budgets:      budgetService,
		Reports:      reportService,
		Audit:        auditService,
		Tokens:       tokens,
		Sessions:     session.NewJWTProvider(tokens, userService),
		Guard:        session.NewGuard(config.DefaultProtectedRoutes, "/auth/login"),
		GuardOptions: middleware.SessionGuardOptions{Timeout: time.Second},
	})

	return &testApp{DB: db, Router: router, Events: pub}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// page requests a page route carrying the session cookie instead of a
// bearer header.
func (app *testApp) page(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the session token and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// loginUser signs in on the page route and returns the session cookie.
func (app *testApp) loginUser(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("expected session cookie on login")
	return nil
}

// addTransaction records a transaction through the dashboard page route.
func (app *testApp) addTransaction(t *testing.T, cookie *http.Cookie, txType, amount, category, date string) {
	t.Helper()
	body := fmt.Sprintf(`{"type":%q,"amount":%q,"category":%q,"date":%q}`, txType, amount, category, date)
	rec := app.page("POST", "/dashboard/add-transaction", body, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add transaction failed: %d %s", rec.Code, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// addCategory creates a custom category through the budget settings page.
func (app *testApp) addCategory(t *testing.T, cookie *http.Cookie, name string) {
	t.Helper()
	rec := app.page("POST", "/dashboard/budget-setting/category", fmt.Sprintf(`{"name":%q}`, name), cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add category failed: %d %s", rec.Code, rec.Body.String())
	}
}
