package core

import (
	"errors"
	"fmt"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrConnection          = errors.New("connection error")
	ErrParse               = errors.New("parse error")
	ErrNotFound            = errors.New("not found")
	ErrNoData              = errors.New("no data")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrStorage             = errors.New("storage error")
)

// Failure is the value every operation returns when it cannot complete.
// Message is safe to show to an end user; Err carries the internal cause.
type Failure struct {
	Kind    error
	Message string
	Err     error

	// Also lists extra kinds the failure should match, e.g. a ledger connect
	// failure is both a connection and a storage failure.
	Also []error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%v: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%v: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() []error {
	errs := make([]error, 0, len(f.Also)+2)
	errs = append(errs, f.Kind)
	errs = append(errs, f.Also...)
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

// Fail builds a Failure of the given kind.
func Fail(kind error, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: cause}
}

const genericMessage = "Something went wrong. Please try again."

// UserMessage extracts the user-facing message from err.
func UserMessage(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	if err == nil {
		return ""
	}
	return genericMessage
}

// KindOf returns the primary failure kind of err, or nil for foreign errors.
func KindOf(err error) error {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return nil
}

// User-facing messages shared by several operations.
const (
	MsgConnectionFailed = "Database connection failed."
	MsgInvalidFormat    = "Invalid format. Use: 'User [ID] spent [Amount] ETB for [Purpose] via [Payment Method] today.'"
	MsgNoTransactions   = "No transactions found in the last %d months."
	MsgNoBudgetOrUser   = "No budget or user data found."
	MsgNotEnoughHistory = "Not enough transaction history."
	MsgUserNotFound     = "User not found."
)
