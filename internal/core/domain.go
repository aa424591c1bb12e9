package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for storage, receipts and the audit log.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date without a time component.
	Date struct {
		time.Time
	}

	User struct {
		ID         int64
		FirstName  string
		LastName   string
		Age        int
		Gender     string
		Occupation string
		Email      string
		CreatedAt  time.Time
	}

	// Budget holds the financial targets of one user for one named period (e.g. "May").
	Budget struct {
		UserID       int64
		Period       string
		Salary       Money
		ExpenseLimit Money
		SavingsGoal  Money
	}

	Transaction struct {
		ID            int64 // assigned on insert
		UserID        int64
		Date          Date
		Amount        Money
		PaymentMethod string
		Description   string
	}
)

var (
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyPaymentMethod   = errors.New("empty payment method")
	ErrInvalidPaymentMethod = errors.New("payment method must be a single word")
)

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthsBefore returns the date n calendar months before d. The day is clamped to the
// last day of the target month, so March 31 minus one month is the last day of February.
func (d Date) MonthsBefore(n int) Date {
	y, m, day := d.Date()
	total := y*12 + int(m) - 1 - n
	ty, tm := total/12, time.Month(total%12+1)
	if last := daysIn(ty, tm); day > last {
		day = last
	}
	return NewDate(ty, tm, day)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FullName returns "<first> <last>".
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (t Transaction) Validate() error {
	if t.UserID < 0 {
		return ErrInvalidUserID
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(t.PaymentMethod) == "" {
		return ErrEmptyPaymentMethod
	}
	if strings.ContainsAny(t.PaymentMethod, " \t\n") {
		return ErrInvalidPaymentMethod
	}
	return nil
}
