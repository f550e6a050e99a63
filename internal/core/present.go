package core

import (
	"errors"
	"fmt"
)

// Level mirrors the severity of a user-facing notice.
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Notice is the message an input surface shows after an operation.
type Notice struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NoticeFor maps the outcome of an operation to what the user should see.
// A nil error means the transaction was added.
func NoticeFor(err error) Notice {
	if err == nil {
		return Notice{Level: LevelInfo, Title: "Success", Message: "Transaction Added!"}
	}
	if field, ok := MissingField(err); ok {
		return Notice{
			Level:   LevelWarning,
			Title:   "Field Missing",
			Message: fmt.Sprintf("Please enter %s for the transaction.", article(field)),
		}
	}
	switch {
	case errors.Is(err, ErrTotalOverflow):
		return Notice{Level: LevelWarning, Title: "Invalid Input", Message: "Amount is too large."}
	case errors.Is(err, ErrInvalidAmount):
		return Notice{Level: LevelWarning, Title: "Invalid Input", Message: "Amount must be a number."}
	case errors.Is(err, ErrNoData):
		return Notice{Level: LevelWarning, Title: "No Data", Message: "No transactions to show graph."}
	}
	return Notice{Level: LevelCritical, Title: "Error", Message: "An error occurred: " + err.Error()}
}

func article(field string) string {
	switch field {
	case FieldAmount:
		return "an amount"
	default:
		return "a " + field
	}
}

// FormatListItem renders the n-th (1-based) transaction as shown in the list.
// The amount is printed as the parsed integer, so "007" is listed as 7.
func FormatListItem(n int, t Transaction) string {
	return fmt.Sprintf("%d. %s\n   Category: %s\n   Amount: %s", n, t.Title, t.Category, FormatAmount(t.Amount))
}

// WindowTitle is the application title for a ledger holding n transactions.
func WindowTitle(n int) string {
	if n == 0 {
		return "Expense Tracker - No Transactions"
	}
	return fmt.Sprintf("Expense Tracker - %d Transactions", n)
}

// StatusMessage is the short status line shown after each add.
func StatusMessage(n int) string {
	return fmt.Sprintf("%d Transaction(s) Recorded", n)
}
