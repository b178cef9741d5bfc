package expense

import "gorm.io/gorm" // GORM ORM library

// Scope restricts expenses to the ones a caller may see. An authenticated
// caller sees exactly its own records; an anonymous caller sees only the
// unassigned pool and never another user's records.
type Scope struct {
	subject *uint
}

// ScopeFor builds the scope of a caller. A nil subject means anonymous.
func ScopeFor(subject *uint) Scope {
	if subject == nil {
		return Scope{}
	}
	id := *subject
	return Scope{subject: &id}
}

// Subject returns the caller id, if any
func (s Scope) Subject() (uint, bool) {
	if s.subject == nil {
		return 0, false
	}
	return *s.subject, true
}

// Owner is the value new records created under this scope are attributed to
func (s Scope) Owner() *uint {
	if s.subject == nil {
		return nil
	}
	id := *s.subject
	return &id
}

// Apply narrows q to the scope's records
func (s Scope) Apply(q *gorm.DB) *gorm.DB {
	if s.subject == nil {
		return q.Where("owner_id IS NULL") // Anonymous callers only see the unassigned pool
	}
	return q.Where("owner_id = ?", *s.subject) // Only the caller's own records
}
