package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RoutingTransactionRecorded is the routing key of TransactionRecordedMessage.
const RoutingTransactionRecorded = "transaction.recorded"

// TransactionRecordedMessage is published after a transaction line has been
// appended to the sheet. The worker uses it to send a confirmation with a
// budget warning, unless Replied says the publisher already showed one.
type TransactionRecordedMessage struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	ChatID      int64     `json:"chat_id"`
	Date        string    `json:"date"` // dd-mm-yyyy
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Category    string    `json:"category"`
	Kind        string    `json:"kind"`
	Replied     bool      `json:"replied,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

var errMissingUser = errors.New("message has no user id")

// NewTransactionRecordedMessage creates a message with a fresh id.
func NewTransactionRecordedMessage(userID, chatID int64, date, desc string, amount int64, category, kind string) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		ID:          uuid.NewString(),
		UserID:      userID,
		ChatID:      chatID,
		Date:        date,
		Description: desc,
		Amount:      amount,
		Category:    category,
		Kind:        kind,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON decodes and checks a message.
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID == 0 {
		return nil, errMissingUser
	}
	if msg.ChatID == 0 {
		msg.ChatID = msg.UserID
	}
	return &msg, nil
}
