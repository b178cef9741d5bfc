package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Calendar months

	"expense_tracker/internal/domain"  // Importing domain models
	"expense_tracker/internal/expense" // Expense store and queries

	"github.com/gin-gonic/gin" // Gin web framework
)

// CategoryTotalResponse is one row of the by-category summary
type CategoryTotalResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

// MonthSummaryHandler returns the caller's total for ?year=&month=
func MonthSummaryHandler(store *expense.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var errs []string                          // Problems with the query string
		year, err := strconv.Atoi(c.Query("year")) // Year is required
		if err != nil {
			errs = append(errs, "year is required and must be an integer")
		}
		month, err := strconv.Atoi(c.Query("month")) // Month is required
		if err != nil {
			errs = append(errs, "month is required and must be an integer")
		}
		if len(errs) > 0 {
			// If either is missing, return bad request
			validationFailed(c, errs)
			return
		}

		total, err := store.MonthTotal(c.Request.Context(), callerScope(c), year, time.Month(month))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"year":  year,                                   // Requested year
			"month": month,                                  // Requested month
			"total": total.StringFixed(domain.AmountPlaces), // Exact total, 2 places
		})
	}
}

// CategorySummaryHandler returns the caller's totals per category, optionally within ?from=&to=
func CategorySummaryHandler(store *expense.Store, order expense.CategoryOrder) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, errs := parseFilter(c) // Optional from/to
		if len(errs) > 0 {
			validationFailed(c, errs)
			return
		}
		totals, err := store.CategoryTotals(c.Request.Context(), callerScope(c), filter, order)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := make([]CategoryTotalResponse, len(totals))
		for i, t := range totals {
			resp[i] = CategoryTotalResponse{Category: t.Category, Total: t.Total.StringFixed(domain.AmountPlaces)}
		}
		c.JSON(http.StatusOK, resp)
	}
}
