package api

import (
	"net/http" // HTTP status codes

	"expense_tracker/internal/expense" // Expense store and queries

	"github.com/gin-gonic/gin" // Gin web framework
)

// HealthHandler reports whether the store answers
func HealthHandler(store *expense.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "db": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "connected"})
	}
}
