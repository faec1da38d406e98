package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherPostedEvent is the message published for every committed voucher.
// It is stored in the outbox inside the posting transaction and later relayed to Kafka.
type VoucherPostedEvent struct {
	EventID       uuid.UUID           `json:"event_id"`
	VoucherID     int64               `json:"voucher_id"`
	VoucherNumber string              `json:"voucher_number,omitempty"`
	Date          string              `json:"date"`
	Description   string              `json:"description"`
	CorrelationID string              `json:"correlation_id,omitempty"`
	PostedAt      time.Time           `json:"posted_at"`
	Entries       []PostedEntryRecord `json:"entries"`
}

// PostedEntryRecord is one entry line of a posted voucher
type PostedEntryRecord struct {
	EntryID     int64           `json:"entry_id"`
	AccountID   int64           `json:"account_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}
