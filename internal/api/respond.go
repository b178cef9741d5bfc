package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes
	"time"     // Response timestamps

	"expense_tracker/internal/domain"  // Importing domain models
	"expense_tracker/internal/expense" // Expense store and queries

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ExpenseResponse is the wire shape of an expense
type ExpenseResponse struct {
	ID        uint        `json:"id"`
	Title     string      `json:"title"`
	Amount    string      `json:"amount"` // Exact decimal, 2 places
	Date      domain.Date `json:"date"`
	Category  string      `json:"category"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func toExpenseResponse(e domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID,
		Title:     e.Title,
		Amount:    e.Amount.StringFixed(domain.AmountPlaces),
		Date:      e.Date,
		Category:  e.Category,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// validationFailed answers 400 with the full error list
func validationFailed(c *gin.Context, messages []string) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": messages})
}

// respondError maps core errors onto the HTTP error taxonomy
func respondError(c *gin.Context, err error) {
	var verrs expense.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		validationFailed(c, verrs.Messages())
	case errors.Is(err, expense.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, expense.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	default:
		_ = c.Error(err)
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Unexpected failure")
		// Details are surfaced for debugging
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "details": err.Error()})
	}
}
