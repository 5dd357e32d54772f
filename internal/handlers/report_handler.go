package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendsnap/internal/errors"
	"spendsnap/internal/report"
	"spendsnap/internal/services"
)

// ReportHandler serves the dashboard, history and monthly summary views and
// their JSON API counterparts.
type ReportHandler struct {
	reportService services.ReportServicer
	now           func() time.Time
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService, now: time.Now}
}

// Dashboard returns the dashboard view-model.
// @Summary     Dashboard
// @Description Totals, monthly income and expense, expense per category and the three most recent transactions
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Dashboard
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.reportService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// History returns filtered transactions, newest first, with a daily chart.
// @Summary     Transaction history
// @Description Paged, filtered transactions plus income and expense per day over the whole filtered set
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       category   query string false "Category name"
// @Param       type       query string false "income or expense"
// @Param       start_date query string false "Lower date bound (YYYY-MM-DD)"
// @Param       search     query string false "Case-insensitive match on notes"
// @Param       month      query int    false "Month of any year (1-12)"
// @Param       page       query int    false "Page number"
// @Param       page_size  query int    false "Page size (max 100)"
// @Success     200 {object} services.History
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/transHistory [get]
func (h *ReportHandler) History(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := pageFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter, err := transactionFilterFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	history, err := h.reportService.History(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// yearAndMonth reads the year (default: current) and the optional month.
func (h *ReportHandler) yearAndMonth(c *gin.Context) (int, int, error) {
	year, err := parseIntQuery(c, "year", h.now().UTC().Year())
	if err != nil {
		return 0, 0, err
	}
	if year < 1 || year > 9999 {
		return 0, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid year")
	}
	month, err := parseIntQuery(c, "month", 0)
	if err != nil {
		return 0, 0, err
	}
	if month < 0 || month > 12 {
		return 0, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	return year, month, nil
}

// MonthlySummary returns the twelve month buckets of a year, or a single
// month when month is given.
// @Summary     Monthly summary
// @Description Income, expense, savings and expense breakdown per month of a year
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int false "Year (default: current year)"
// @Param       month query int false "Single month (1-12)"
// @Success     200 {object} services.MonthlySummary
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/monthly [get]
func (h *ReportHandler) MonthlySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, month, err := h.yearAndMonth(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.reportService.MonthlySummary(c.Request.Context(), userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if month != 0 {
		c.JSON(http.StatusOK, gin.H{
			"year":    year,
			"month":   month,
			"summary": summary.Months[month-1],
			"chart":   summary.Chart[month-1],
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// monthBucket loads the bucket an export asks for. month is required.
func (h *ReportHandler) monthBucket(c *gin.Context) (report.MonthBucket, bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return report.MonthBucket{}, false
	}

	year, month, err := h.yearAndMonth(c)
	if err != nil {
		respondWithError(c, err)
		return report.MonthBucket{}, false
	}
	if month == 0 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "month is required"))
		return report.MonthBucket{}, false
	}

	summary, err := h.reportService.MonthlySummary(c.Request.Context(), userID, year)
	if err != nil {
		respondWithError(c, err)
		return report.MonthBucket{}, false
	}
	return summary.Months[month-1], true
}

// ExportCSV downloads a month's expense breakdown as CSV.
// @Summary     Export monthly breakdown (CSV)
// @Tags        reports
// @Produce     text/csv
// @Security    BearerAuth
// @Param       year  query int false "Year (default: current year)"
// @Param       month query int true  "Month (1-12)"
// @Success     200 {file} file
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /dashboard/monthly-summary/export.csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	bucket, ok := h.monthBucket(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteBreakdownCSV(&buf, bucket.CategoryBreakdown); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.BreakdownCSVName(bucket.Month)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportPDF downloads a month's statement as PDF.
// @Summary     Export monthly statement (PDF)
// @Tags        reports
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       year  query int false "Year (default: current year)"
// @Param       month query int true  "Month (1-12)"
// @Success     200 {file} file
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /dashboard/monthly-summary/export.pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	bucket, ok := h.monthBucket(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.RenderMonthPDF(&buf, bucket); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="monthly_summary_%d.pdf"`, bucket.Month))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Summary totals income, expense and balance over the filtered transactions.
// @Summary     Summary totals
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       category  query string false "Category name"
// @Param       from_date query string false "Lower date bound (YYYY-MM-DD)"
// @Param       to_date   query string false "Upper date bound (YYYY-MM-DD)"
// @Param       month     query int    false "Month of any year (1-12)"
// @Success     200 {object} report.Summary
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter, err := transactionFilterFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Daily returns income and expense per day.
// @Summary     Daily series
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Lower date bound (YYYY-MM-DD)"
// @Param       to_date   query string false "Upper date bound (YYYY-MM-DD)"
// @Success     200 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reports/daily [get]
func (h *ReportHandler) Daily(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter, err := transactionFilterFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	points, err := h.reportService.DailySeries(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"daily": points})
}

// Categories returns the expense total per category.
// @Summary     Expense per category
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Lower date bound (YYYY-MM-DD)"
// @Param       to_date   query string false "Upper date bound (YYYY-MM-DD)"
// @Param       month     query int    false "Month of any year (1-12)"
// @Success     200 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reports/categories [get]
func (h *ReportHandler) Categories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter, err := transactionFilterFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.reportService.CategoryTotals(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": totals})
}
