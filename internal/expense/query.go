package expense

import (
	"math"    // Page number bound
	"strings" // String manipulation

	"expense_tracker/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Pagination bounds
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPageNumber   = math.MaxInt / MaxPageSize // Keeps the offset from overflowing
)

// Filter holds the optional listing predicates. From and To are inclusive.
type Filter struct {
	Query string
	From  *domain.Date
	To    *domain.Date
}

// Apply adds the text and date predicates to q
func (f Filter) Apply(q *gorm.DB) *gorm.DB {
	if text := strings.TrimSpace(f.Query); text != "" {
		pattern := "%" + escapeLike(strings.ToLower(text)) + "%" // Substring match
		q = q.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(category) LIKE ? ESCAPE '!')", pattern, pattern)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From) // Inclusive lower bound
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To) // Inclusive upper bound
	}
	return q
}

// escapeLike makes LIKE wildcards in user input match literally
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// Page is a clamped, 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number to [1, MaxPageNumber] and size to [1, MaxPageSize]
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber // Far past any real data, still a valid offset
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset of the first row of the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size // Calculate offset for pagination
}

// Apply limits q to the page
func (p Page) Apply(q *gorm.DB) *gorm.DB {
	return q.Offset(p.Offset()).Limit(p.Size)
}

// Newest first, ties broken by id so the order is stable
func orderNewestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("date DESC").Order("id DESC")
}

// buildQuery composes scope, filter and ordering over the expenses table
func buildQuery(base *gorm.DB, scope Scope, f Filter) *gorm.DB {
	q := scope.Apply(base.Model(&domain.Expense{})) // Ownership first
	return f.Apply(q)
}
