package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func amount(t *testing.T, v interface{}) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	if !ok {
		t.Fatalf("expected decimal string, got %T %v", v, v)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

func TestDashboardFlow(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "dash@test.com", "password123")
	cookie := app.loginUser(t, "dash@test.com", "password123")
	app.addCategory(t, cookie, "Salary")

	app.addTransaction(t, cookie, "income", "1000", "Salary", "2024-01-05")
	app.addTransaction(t, cookie, "expense", "400", "Food", "2024-01-10")
	app.addTransaction(t, cookie, "expense", "100", "Food", "2024-02-02")

	// Step 1: dashboard totals
	rec := app.page("GET", "/dashboard", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	dash := parseJSON(t, rec)
	summary := dash["summary"].(map[string]interface{})
	if !amount(t, summary["income"]).Equal(decimal.NewFromInt(1000)) ||
		!amount(t, summary["expense"]).Equal(decimal.NewFromInt(500)) ||
		!amount(t, summary["balance"]).Equal(decimal.NewFromInt(500)) {
		t.Errorf("unexpected summary %v", summary)
	}
	if recent := dash["recent_transactions"].([]interface{}); len(recent) != 3 {
		t.Errorf("expected 3 recent transactions, got %d", len(recent))
	}

	// Step 2: the dashboard reflects a new transaction immediately
	app.addTransaction(t, cookie, "expense", "50", "Travel", "2024-02-03")
	dash = parseJSON(t, app.page("GET", "/dashboard", "", cookie))
	summary = dash["summary"].(map[string]interface{})
	if !amount(t, summary["expense"]).Equal(decimal.NewFromInt(550)) {
		t.Errorf("expected expense 550 after new transaction, got %v", summary["expense"])
	}

	// Step 3: history filtered by month
	rec = app.page("GET", "/dashboard/transHistory?month=1", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	history := parseJSON(t, rec)
	if history["total_items"].(float64) != 2 {
		t.Errorf("expected 2 January rows, got %v", history["total_items"])
	}
	if chart := history["chart"].([]interface{}); len(chart) != 2 {
		t.Errorf("expected 2 chart points, got %d", len(chart))
	}

	// Step 4: an invalid type filter is rejected
	rec = app.page("GET", "/dashboard/transHistory?type=transfer", "", cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad type, got %d", rec.Code)
	}
}

func TestMonthlySummaryFlow(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "monthly@test.com", "password123")
	cookie := app.loginUser(t, "monthly@test.com", "password123")
	app.addCategory(t, cookie, "Salary")

	app.addTransaction(t, cookie, "income", "1000", "Salary", "2024-01-05")
	app.addTransaction(t, cookie, "expense", "400", "Food", "2024-01-10")
	app.addTransaction(t, cookie, "expense", "75", "Travel", "2024-01-12")

	// Step 1: single month view
	rec := app.page("GET", "/dashboard/monthly-summary?year=2024&month=1", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	bucket := parseJSON(t, rec)["summary"].(map[string]interface{})
	if !amount(t, bucket["savings"]).Equal(decimal.NewFromInt(525)) {
		t.Errorf("expected savings 525, got %v", bucket["savings"])
	}
	breakdown := bucket["category_breakdown"].([]interface{})
	if len(breakdown) != 2 || breakdown[0].(map[string]interface{})["name"] != "Food" {
		t.Errorf("expected Food first in breakdown, got %v", breakdown)
	}

	// Step 2: CSV export
	rec = app.page("GET", "/dashboard/monthly-summary/export.csv?year=2024&month=1", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Body.String(), "Category,Amount\n") || !strings.Contains(rec.Body.String(), "\nFood,") {
		t.Errorf("unexpected CSV %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "monthly_summary_1.csv") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}

	// Step 3: PDF export
	rec = app.page("GET", "/dashboard/monthly-summary/export.pdf?year=2024&month=1", "", cookie)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Errorf("expected PDF document, got %d", rec.Code)
	}

	// Step 4: exports need a month
	rec = app.page("GET", "/dashboard/monthly-summary/export.csv?year=2024", "", cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without month, got %d", rec.Code)
	}
}

func TestTransactionAPIFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "api@test.com", "password123")

	// Step 1: validation
	rec := app.request("POST", "/api/v1/transactions", `{"type":"transfer","amount":"5","category":"Food","date":"2024-01-01"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad type, got %d", rec.Code)
	}
	rec = app.request("POST", "/api/v1/transactions", `{"type":"expense","amount":"5","category":"Yachts","date":"2024-01-01"}`, token)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "CATEGORY_NOT_FOUND" {
		t.Fatalf("expected CATEGORY_NOT_FOUND, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 2: a custom category becomes usable
	rec = app.request("POST", "/api/v1/categories", `{"name":"Pets"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating category, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", "/api/v1/transactions", `{"type":"expense","amount":"12.50","category":"Pets","date":"2024-03-01","notes":"Vet"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	txID := parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(string)

	// Step 3: fetch by ID and list with search
	rec = app.request("GET", "/api/v1/transactions/"+txID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/transactions?search=vet", "", token)
	if rec.Code != http.StatusOK || parseJSON(t, rec)["total_items"].(float64) != 1 {
		t.Errorf("expected 1 search hit, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 4: another user cannot see it
	other, _ := app.registerUser(t, "other@test.com", "password123")
	rec = app.request("GET", "/api/v1/transactions/"+txID, "", other)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's transaction, got %d", rec.Code)
	}
}
