package expense

import (
	"encoding/json" // Decoded JSON numbers
	"fmt"           // Rendering raw values
	"strings"       // String manipulation

	"expense_tracker/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Exact decimal amounts
)

// Field names accepted in an expense payload
const (
	FieldTitle    = "title"
	FieldAmount   = "amount"
	FieldDate     = "date"
	FieldCategory = "category"
)

// requiredFields is also the order missing-field errors are reported in
var requiredFields = []string{FieldTitle, FieldAmount, FieldDate, FieldCategory}

// Error codes carried by a FieldError
const (
	CodeMissingField   = "missing_field"
	CodeEmpty          = "empty"
	CodeInvalidNumber  = "invalid_number"
	CodeMustBePositive = "must_be_positive"
	CodeTooLarge       = "too_large"
	CodeInvalidDate    = "invalid_date"
)

// FieldError is one problem with one field of a submission.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// ValidationErrors is the complete, ordered list of problems found in a
// submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(v.Messages(), "; ")
}

// Messages renders the errors as the human-readable strings returned to clients
func (v ValidationErrors) Messages() []string {
	out := make([]string, len(v))
	for i, e := range v {
		out[i] = e.Message
	}
	return out
}

// Codes lists the machine codes in order
func (v ValidationErrors) Codes() []string {
	out := make([]string, len(v))
	for i, e := range v {
		out[i] = e.Code
	}
	return out
}

// Record is a validated expense submission.
type Record struct {
	Title    string
	Amount   decimal.Decimal
	Date     domain.Date
	Category string
}

// Validate turns a raw field map into a Record. When fields are missing only
// the missing-field errors are returned; otherwise every remaining check runs
// and all failures are returned together.
func Validate(fields map[string]any) (Record, ValidationErrors) {
	var errs ValidationErrors
	for _, name := range requiredFields {
		if v, ok := fields[name]; !ok || v == nil {
			errs = append(errs, FieldError{
				Field:   name,
				Code:    CodeMissingField,
				Message: "Missing field: " + name,
			})
		}
	}
	if len(errs) > 0 {
		return Record{}, errs
	}

	title := strings.TrimSpace(rawString(fields[FieldTitle]))
	category := strings.TrimSpace(rawString(fields[FieldCategory]))
	if title == "" {
		errs = append(errs, FieldError{FieldTitle, CodeEmpty, "title cannot be empty"})
	}
	if category == "" {
		errs = append(errs, FieldError{FieldCategory, CodeEmpty, "category cannot be empty"})
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rawString(fields[FieldAmount]))) // Exact parse, no float detour
	stored := amount.Round(domain.AmountPlaces)                                             // What the column will hold
	switch {
	case err != nil:
		errs = append(errs, FieldError{FieldAmount, CodeInvalidNumber, "amount must be a valid number"})
	case !stored.IsPositive():
		// Sub-cent amounts round to zero
		errs = append(errs, FieldError{FieldAmount, CodeMustBePositive, "amount must be > 0"})
	case stored.GreaterThan(domain.MaxAmount):
		errs = append(errs, FieldError{FieldAmount, CodeTooLarge, "amount must be at most " + domain.MaxAmount.StringFixed(domain.AmountPlaces)})
	}

	date, err := domain.ParseDate(rawString(fields[FieldDate]))
	if err != nil {
		errs = append(errs, FieldError{FieldDate, CodeInvalidDate, "date must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return Record{}, errs
	}
	return Record{Title: title, Amount: amount, Date: date, Category: category}, nil
}

// MergeFields builds a full payload from an existing expense overlaid with a
// partial update, so the result can go through Validate unchanged.
func MergeFields(existing domain.Expense, patch map[string]any) map[string]any {
	merged := map[string]any{
		FieldTitle:    existing.Title,
		FieldAmount:   existing.Amount.String(),
		FieldDate:     existing.Date.String(),
		FieldCategory: existing.Category,
	}
	for _, name := range requiredFields {
		if v, ok := patch[name]; ok {
			merged[name] = v
		}
	}
	return merged
}

// rawString renders a decoded JSON value the way a client most likely meant it.
func rawString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case decimal.Decimal:
		return t.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
