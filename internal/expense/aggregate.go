package expense

import (
	"context" // Context for store calls
	"fmt"     // Error wrapping
	"sort"    // Stable ordering of groups
	"time"    // Calendar months

	"expense_tracker/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Exact decimal amounts
)

// CategoryOrder decides how category totals are sorted
type CategoryOrder int

const (
	// ByTotal sorts by total descending, ties by category name
	ByTotal CategoryOrder = iota
	// ByCategory sorts by category name
	ByCategory
)

// CategoryTotal is the summed amount of one category
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// amountRow is the slice of an expense the aggregations need
type amountRow struct {
	Category string
	Amount   decimal.Decimal
}

// Sum adds amounts exactly
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// groupByCategory sums amounts per category and sorts the groups
func groupByCategory(rows []amountRow, order CategoryOrder) []CategoryTotal {
	index := make(map[string]int)
	out := make([]CategoryTotal, 0)
	for _, r := range rows {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategoryTotal{Category: r.Category, Total: decimal.Zero}) // First sighting of the category
		}
		out[i].Total = out[i].Total.Add(r.Amount)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if order == ByTotal {
			if c := out[i].Total.Cmp(out[j].Total); c != 0 {
				return c > 0
			}
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthTotal sums the caller's expenses dated within the given month.
// A month without expenses totals zero.
func (s *Store) MonthTotal(ctx context.Context, scope Scope, year int, month time.Month) (decimal.Decimal, error) {
	if _, ok := scope.Subject(); !ok {
		return decimal.Zero, ErrUnauthorized // Summaries are per user
	}
	start, err := domain.FirstOfMonth(year, month)
	if err != nil {
		return decimal.Zero, ValidationErrors{{Field: "month", Code: CodeInvalidDate, Message: "year and month must name a valid month"}}
	}
	end := start.AddMonths(1) // Exclusive upper bound

	var amounts []decimal.Decimal
	q := scope.Apply(s.db.WithContext(ctx).Model(&domain.Expense{})).
		Where("date >= ? AND date < ?", start, end)
	if err := q.Pluck("amount", &amounts).Error; err != nil { // Summed in Go so every driver is exact
		return decimal.Zero, fmt.Errorf("month total: %w", err)
	}
	return Sum(amounts), nil
}

// CategoryTotals groups the caller's expenses matching f's date range by
// category. The text query of f is ignored.
func (s *Store) CategoryTotals(ctx context.Context, scope Scope, f Filter, order CategoryOrder) ([]CategoryTotal, error) {
	if _, ok := scope.Subject(); !ok {
		return nil, ErrUnauthorized // Summaries are per user
	}
	f.Query = "" // Only the date range applies

	var rows []amountRow
	q := buildQuery(s.db.WithContext(ctx), scope, f).Select("category", "amount")
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	return groupByCategory(rows, order), nil
}
