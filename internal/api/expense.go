package api

import (
	"encoding/json" // Payload decoding with exact numbers
	"errors"        // Error matching
	"io"            // EOF on empty bodies
	"net/http"      // HTTP status codes
	"strconv"       // String conversion

	"expense_tracker/internal/domain"     // Importing domain models
	"expense_tracker/internal/expense"    // Expense store and queries
	"expense_tracker/internal/middleware" // Caller identity

	"github.com/gin-gonic/gin" // Gin web framework
)

// callerScope narrows every expense operation to what the caller may see
func callerScope(c *gin.Context) expense.Scope {
	return expense.ScopeFor(middleware.CurrentUser(c))
}

// decodeFields reads a JSON object body. Numbers stay exact and an empty
// body counts as an empty object.
func decodeFields(c *gin.Context) (map[string]any, bool) {
	fields := map[string]any{}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber() // Keep amounts as their literal digits
	if err := dec.Decode(&fields); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return nil, false
	}
	if fields == nil {
		fields = map[string]any{} // Body was the literal null
	}
	return fields, true
}

// expenseID parses the :id path parameter; anything non-numeric cannot exist
func expenseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

// queryInt reads an integer query parameter, falling back to def when absent or malformed
func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}

// parseFilter reads q/from/to, collecting errors for malformed dates
func parseFilter(c *gin.Context) (expense.Filter, []string) {
	f := expense.Filter{Query: c.Query("q")}
	var errs []string
	for _, bound := range []struct {
		key  string
		dest **domain.Date
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := c.Query(bound.key)
		if raw == "" {
			continue
		}
		d, err := domain.ParseDate(raw)
		if err != nil {
			errs = append(errs, bound.key+" must be in YYYY-MM-DD format")
			continue
		}
		*bound.dest = &d
	}
	return f, errs
}

// ListExpensesHandler returns one page of the caller's expenses, newest first
func ListExpensesHandler(store *expense.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, errs := parseFilter(c)
		if len(errs) > 0 {
			validationFailed(c, errs)
			return
		}
		page := expense.NewPage(
			queryInt(c, "page", 1),                            // Default page number
			queryInt(c, "page_size", expense.DefaultPageSize), // Default page size
		)
		rows, total, err := store.List(c.Request.Context(), callerScope(c), filter, page)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := make([]ExpenseResponse, len(rows))
		for i, e := range rows {
			resp[i] = toExpenseResponse(e)
		}
		c.Header("X-Total-Count", strconv.FormatInt(total, 10)) // Total matches across all pages
		c.JSON(http.StatusOK, resp)
	}
}

// CreateExpenseHandler validates and stores a new expense owned by the caller
func CreateExpenseHandler(store *expense.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, ok := decodeFields(c)
		if !ok {
			return
		}
		e, err := store.Create(c.Request.Context(), callerScope(c), fields)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toExpenseResponse(*e))
	}
}

// GetExpenseHandler returns one of the caller's expenses
func GetExpenseHandler(store *expense.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := expenseID(c)
		if !ok {
			return
		}
		e, err := store.Get(c.Request.Context(), callerScope(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toExpenseResponse(*e))
	}
}

// UpdateExpenseHandler applies a partial update to one of the caller's expenses
func UpdateExpenseHandler(store *expense.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := expenseID(c)
		if !ok {
			return
		}
		patch, ok := decodeFields(c)
		if !ok {
			return
		}
		e, err := store.Update(c.Request.Context(), callerScope(c), id, patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toExpenseResponse(*e))
	}
}

// DeleteExpenseHandler removes one of the caller's expenses
func DeleteExpenseHandler(store *expense.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := expenseID(c)
		if !ok {
			return
		}
		if err := store.Delete(c.Request.Context(), callerScope(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
