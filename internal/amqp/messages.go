package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"finassist/internal/core"
)

// EventTransactionRecorded is the message type and routing key of ledger insert events.
const EventTransactionRecorded = "transaction.recorded"

// TransactionRecordedMessage announces one inserted ledger row.
// It carries only identifiers; consumers read the row back from storage.
type TransactionRecordedMessage struct {
	MessageID     string    `json:"message_id"`
	TransactionID int64     `json:"transaction_id"`
	UserID        int64     `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionRecordedMessage creates a message with a fresh id.
func NewTransactionRecordedMessage(tx core.Transaction, now time.Time) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		MessageID:     uuid.NewString(),
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Timestamp:     now.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

var errMissingTransactionID = errors.New("message has no transaction id")

// TransactionRecordedMessageFromJSON decodes and checks a message body.
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.TransactionID <= 0 {
		return nil, errMissingTransactionID
	}
	return &msg, nil
}
