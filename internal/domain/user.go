package domain

import "time"

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey"`                    // Primary key
	Email        string    `gorm:"size:255;uniqueIndex;not null"` // Unique, stored lower-cased
	PasswordHash string    `gorm:"not null"`                      // bcrypt hash
	Name         *string   `gorm:"size:120"`                      // Optional display name
	Expenses     []Expense `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Owned expenses go with the user, never into the global pool
	CreatedAt    time.Time // Registration time
}
