package expense

import (
	"context" // Context for store calls
	"errors"  // Error matching
	"fmt"     // Error wrapping

	"expense_tracker/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

var (
	// ErrNotFound means the expense does not exist or is outside the caller's scope
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the operation needs an authenticated caller
	ErrUnauthorized = errors.New("unauthorized")
)

// Store persists expenses. It holds the connection pool and takes a
// context-bound session from it for every call.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// toRow copies a validated record onto a row at currency precision
func toRow(rec Record, row *domain.Expense) {
	row.Title = rec.Title
	row.Amount = rec.Amount.Round(domain.AmountPlaces)
	row.Date = rec.Date
	row.Category = rec.Category
}

// Create validates fields and inserts the expense, owned by the scope's caller.
func (s *Store) Create(ctx context.Context, scope Scope, fields map[string]any) (*domain.Expense, error) {
	rec, verrs := Validate(fields) // Collect every field problem at once
	if verrs != nil {
		return nil, verrs
	}
	row := domain.Expense{OwnerID: scope.Owner()} // Owner is fixed at creation
	toRow(rec, &row)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error // Returning an error rolls back
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"owner_id": row.OwnerID,
			"error":    err.Error(),
		}).Error("Failed to create expense")
		return nil, fmt.Errorf("create expense: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"expense_id": row.ID,
		"owner_id":   row.OwnerID,
		"amount":     row.Amount.StringFixed(domain.AmountPlaces),
	}).Info("Expense created")
	return &row, nil
}

// Get loads one expense visible to the scope
func (s *Store) Get(ctx context.Context, scope Scope, id uint) (*domain.Expense, error) {
	return first(scope.Apply(s.db.WithContext(ctx)), id)
}

func first(q *gorm.DB, id uint) (*domain.Expense, error) {
	var row domain.Expense
	if err := q.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load expense %d: %w", id, err)
	}
	return &row, nil
}

// Update merges patch over the stored expense, re-validates the result and
// saves it. The owner is never changed.
func (s *Store) Update(ctx context.Context, scope Scope, id uint, patch map[string]any) (*domain.Expense, error) {
	var row *domain.Expense
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := first(scope.Apply(tx), id) // Out-of-scope rows look missing
		if err != nil {
			return err
		}
		rec, verrs := Validate(MergeFields(*existing, patch)) // Validate the merged result, not the patch
		if verrs != nil {
			return verrs
		}
		toRow(rec, existing)
		if err := tx.Save(existing).Error; err != nil { // Refreshes updated_at
			return fmt.Errorf("save expense %d: %w", id, err)
		}
		row = existing
		return nil
	})
	if err != nil {
		if isInternal(err) {
			logrus.WithFields(logrus.Fields{"expense_id": id, "error": err.Error()}).Error("Failed to update expense")
		}
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"expense_id": row.ID, "owner_id": row.OwnerID}).Info("Expense updated")
	return row, nil
}

// Delete removes an expense visible to the scope
func (s *Store) Delete(ctx context.Context, scope Scope, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := scope.Apply(tx).Delete(&domain.Expense{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete expense %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound // Missing or not the caller's
		}
		return nil
	})
	if err != nil {
		if isInternal(err) {
			logrus.WithFields(logrus.Fields{"expense_id": id, "error": err.Error()}).Error("Failed to delete expense")
		}
		return err
	}
	logrus.WithField("expense_id", id).Info("Expense deleted")
	return nil
}

// List returns one page of the scope's expenses matching f, newest first,
// together with the total number of matches.
func (s *Store) List(ctx context.Context, scope Scope, f Filter, p Page) ([]domain.Expense, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64 // Matches across all pages
	if err := buildQuery(db, scope, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	rows := make([]domain.Expense, 0, p.Size)                // Paginated expenses
	q := p.Apply(orderNewestFirst(buildQuery(db, scope, f))) // Fresh chain, Count consumed the first one
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	return rows, total, nil
}

// Ping checks the store is reachable
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// isInternal separates store failures from expected outcomes
func isInternal(err error) bool {
	var verrs ValidationErrors
	return !errors.Is(err, ErrNotFound) && !errors.As(err, &verrs)
}
