package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in Password field and never leave
// the application layer.
type User struct {
	ID          string
	Name        string
	Email       string
	Password    string
	Phone       string
	DateOfBirth *time.Time
	Gender      string
	Ethnicity   string
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
