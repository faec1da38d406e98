package outbox

import (
	"encoding/json"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/shared"
)

// Message stores a voucher event until the relay has published it
type Message struct {
	ID            int64               `json:"id"`
	VoucherID     int64               `json:"voucher_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(event *shared.VoucherPostedEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		VoucherID: event.VoucherID,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	m.touch()
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	m.touch()
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	m.touch()
}

// Exhausted reports whether the message has used up its publishing attempts
func (m *Message) Exhausted(maxAttempts int) bool {
	return m.Attempts >= maxAttempts
}

// Event decodes the voucher event from the payload
func (m *Message) Event() (*shared.VoucherPostedEvent, error) {
	var event shared.VoucherPostedEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (m *Message) touch() {
	now := time.Now().UTC()
	m.LastAttemptAt = &now
}
