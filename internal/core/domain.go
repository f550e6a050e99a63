package core

import (
	"errors"
	"fmt"
)

const (
	FieldTitle    = "title"
	FieldCategory = "category"
	FieldAmount   = "amount"
)

type (
	// Transaction is a single recorded expense. It is never edited after creation.
	Transaction struct {
		Title    string
		Category string
		Amount   int64
	}

	// FieldError reports a required input that was left empty.
	FieldError struct {
		Field string
	}
)

var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNoData        = errors.New("no transactions recorded")

	// ErrTotalOverflow is an amount that would push the ledger total past the
	// largest representable amount. It is also an ErrInvalidAmount.
	ErrTotalOverflow = fmt.Errorf("%w: ledger total too large", ErrInvalidAmount)
)

func (e *FieldError) Error() string {
	return "missing field: " + e.Field
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

// NewTransaction validates the raw input strings and builds a Transaction.
//
// The checks run in a fixed order: title, category, amount presence, then the
// amount format. The first failure is returned. Only the empty string counts
// as missing; " " is a title like any other.
func NewTransaction(title, category, amountText string) (Transaction, error) {
	if title == "" {
		return Transaction{}, &FieldError{Field: FieldTitle}
	}
	if category == "" {
		return Transaction{}, &FieldError{Field: FieldCategory}
	}
	if amountText == "" {
		return Transaction{}, &FieldError{Field: FieldAmount}
	}
	amount, err := ParseAmount(amountText)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{Title: title, Category: category, Amount: amount}, nil
}

// Validate checks an already built transaction, e.g. one read back from storage.
func (t Transaction) Validate() error {
	if t.Title == "" {
		return &FieldError{Field: FieldTitle}
	}
	if t.Category == "" {
		return &FieldError{Field: FieldCategory}
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MissingField returns the name of the empty field carried by err, if any.
func MissingField(err error) (string, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field, true
	}
	return "", false
}
