package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// TransactionRecordedMessage announces that a transaction was appended to a session ledger.
// It carries the full transaction; ledger entries never change after being recorded.
type TransactionRecordedMessage struct {
	Session   string    `json:"session"`
	Seq       int       `json:"seq"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionRecordedMessage creates a message stamped with the current time.
func NewTransactionRecordedMessage(session string, seq int, title, category string, amount int64) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		Session:   session,
		Seq:       seq,
		Title:     title,
		Category:  category,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON decodes and sanity-checks a message body.
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Session == "" || msg.Seq < 1 {
		return nil, errors.New("message missing session or seq")
	}
	return &msg, nil
}
