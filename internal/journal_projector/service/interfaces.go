package service

import (
	"context"

	"github.com/office-suite/general-ledger/internal/domain/shared"
)

// ProjectionService writes a posted voucher into the journal read model.
type ProjectionService interface {
	ProjectVoucher(ctx context.Context, event *shared.VoucherPostedEvent) error
}

// FailureRecorder parks a message that will never succeed, tagged with why
type FailureRecorder interface {
	RecordFailure(ctx context.Context, key string, payload []byte, reason string, cause error) error
}

// ErrInvalidEvent marks an event that cannot be projected however often it is retried
type ErrInvalidEvent struct {
	Err error
}

func (e ErrInvalidEvent) Error() string {
	return "invalid voucher event: " + e.Err.Error()
}

func (e ErrInvalidEvent) Unwrap() error {
	return e.Err
}
