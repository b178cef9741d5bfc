package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the currency precision amounts are stored and rendered with
const AmountPlaces = 2

// MaxAmount is the largest amount a decimal(10,2) column holds
var MaxAmount = decimal.RequireFromString("99999999.99")

// Expense Model
type Expense struct {
	ID        uint            `gorm:"primaryKey"`                                  // Primary key
	Title     string          `gorm:"size:120;not null"`                           // What was bought
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null"`                 // Fixed-point amount, always > 0
	Date      Date            `gorm:"type:date;not null;index:ix_expenses_date"`   // Calendar day of the expense
	Category  string          `gorm:"size:50;not null;index:ix_expenses_category"` // Free-form category
	OwnerID   *uint           `gorm:"index:ix_expenses_owner"`                     // Nil for the unassigned pool
	CreatedAt time.Time       // Set on insert
	UpdatedAt time.Time       // Refreshed on every save
}
