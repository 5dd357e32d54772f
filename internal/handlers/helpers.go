package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "spendsnap/internal/errors"
	"spendsnap/internal/logger"
	"spendsnap/internal/middleware"
	"spendsnap/internal/models"
	"spendsnap/internal/pagination"
	"spendsnap/internal/services"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}

// parseUUIDParam validates a UUID path parameter.
func parseUUIDParam(c *gin.Context, param string) (string, error) {
	raw := c.Param(param)
	if _, err := uuid.Parse(raw); err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return raw, nil
}

// parseDate parses a YYYY-MM-DD value as a UTC calendar date.
func parseDate(field, raw string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+field+", expected YYYY-MM-DD")
	}
	return d, nil
}

// parseIntQuery returns the integer query parameter or def when absent.
func parseIntQuery(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+key)
	}
	return n, nil
}

// transactionFilterFromQuery reads the shared history filters. Both
// start_date and from_date are accepted for the lower bound.
func transactionFilterFromQuery(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filter.Category = &category
	}
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		t := models.TransactionType(raw)
		if !t.Valid() {
			return filter, apperrors.ErrInvalidTransactionType
		}
		filter.Type = &t
	}

	from := c.Query("start_date")
	if from == "" {
		from = c.Query("from_date")
	}
	if from != "" {
		d, err := parseDate("start_date", from)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &d
	}
	if to := c.Query("to_date"); to != "" {
		d, err := parseDate("to_date", to)
		if err != nil {
			return filter, err
		}
		filter.ToDate = &d
	}

	filter.Search = c.Query("search")

	month, err := parseIntQuery(c, "month", 0)
	if err != nil {
		return filter, err
	}
	if month < 0 || month > 12 {
		return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	filter.Month = month

	return filter, nil
}

// pageFromQuery binds page and page_size.
func pageFromQuery(c *gin.Context) (pagination.PageRequest, error) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		return page, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	page.Defaults()
	return page, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}
