package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		FirstName    string
		LastName     string
		CreatedAt    time.Time
	}

	Transaction struct {
		ID          int64
		UserID      int64
		Type        TransactionType
		Amount      Money
		Category    string
		Description string
		Date        time.Time
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidCategory    = errors.New("invalid category for transaction type")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyUsername      = errors.New("empty username")
	ErrEmptyEmail         = errors.New("empty email")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyPassword      = errors.New("empty password")
	ErrDuplicateUser      = errors.New("username or email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotFound           = errors.New("transaction not found")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

// FullName returns the user's display name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) Validate() error {
	username := strings.TrimSpace(u.Username)
	if username == "" {
		return ErrEmptyUsername
	}
	if len(username) > 20 {
		return errors.New("username too long (max 20 characters)")
	}
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return ErrEmptyEmail
	}
	// Minimal shape check; uniqueness is enforced at the store layer.
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || len(email) > 120 {
		return errors.New("invalid email address")
	}
	if strings.TrimSpace(u.FirstName) == "" || strings.TrimSpace(u.LastName) == "" {
		return ErrEmptyName
	}
	if len(u.FirstName) > 50 || len(u.LastName) > 50 {
		return errors.New("name too long (max 50 characters)")
	}
	return nil
}

func (tx Transaction) Validate() error {
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if !ValidCategory(tx.Type, tx.Category) {
		return ErrInvalidCategory
	}
	if len(tx.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if tx.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ParseDate parses a transaction date from form input (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}
