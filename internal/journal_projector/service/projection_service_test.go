package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/office-suite/general-ledger/internal/domain/journal"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/office-suite/general-ledger/internal/platform/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) ReplaceVoucher(ctx context.Context, voucherID int64, lines []journal.Line) error {
	args := m.Called(ctx, voucherID, lines)
	return args.Error(0)
}

func (m *MockJournalRepository) ListByAccount(ctx context.Context, q journal.Query) ([]journal.Line, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]journal.Line), args.Get(1).(int64), args.Error(2)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEvent() *shared.VoucherPostedEvent {
	return &shared.VoucherPostedEvent{
		EventID:       uuid.New(),
		VoucherID:     42,
		VoucherNumber: "V-42",
		Date:          "2024-03-01",
		Description:   "Cash sale",
		CorrelationID: "corr-1",
		PostedAt:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Entries: []shared.PostedEntryRecord{
			{EntryID: 1, AccountID: 1, Type: "debit", Amount: decimal.NewFromInt(500)},
			{EntryID: 2, AccountID: 5, Type: "credit", Amount: decimal.NewFromInt(500)},
		},
	}
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	return rr.Body.String()
}

func TestProjectionService_ProjectVoucher(t *testing.T) {
	projectedAt := time.Date(2024, 3, 1, 10, 0, 5, 0, time.UTC)

	t.Run("Writes one line per entry", func(t *testing.T) {
		repo := new(MockJournalRepository)
		m := metrics.New()
		svc := NewProjectionService(testLogger(), repo, m).(*ProjectionServiceImpl)
		svc.now = func() time.Time { return projectedAt }

		repo.On("ReplaceVoucher", mock.Anything, int64(42), mock.MatchedBy(func(lines []journal.Line) bool {
			return len(lines) == 2 &&
				lines[0].EntryID == 1 && lines[1].AccountID == 5 &&
				lines[0].VoucherNumber == "V-42" &&
				lines[0].CorrelationID == "corr-1" &&
				lines[1].ProjectedAt.Equal(projectedAt)
		})).Return(nil).Once()

		require.NoError(t, svc.ProjectVoucher(context.Background(), sampleEvent()))
		repo.AssertExpectations(t)
		assert.Contains(t, scrape(t, m), `gl_journal_projections_total{result="projected"} 1`)
	})

	t.Run("Storage error is retryable", func(t *testing.T) {
		repo := new(MockJournalRepository)
		m := metrics.New()
		svc := NewProjectionService(testLogger(), repo, m)

		storageErr := errors.New("mongo: no reachable servers")
		repo.On("ReplaceVoucher", mock.Anything, int64(42), mock.Anything).Return(storageErr).Once()

		err := svc.ProjectVoucher(context.Background(), sampleEvent())
		require.Error(t, err)
		assert.ErrorIs(t, err, storageErr)

		var invalid ErrInvalidEvent
		assert.False(t, errors.As(err, &invalid))
		assert.Contains(t, scrape(t, m), `gl_journal_projections_total{result="retried"} 1`)
	})

	t.Run("Bad date is permanent", func(t *testing.T) {
		repo := new(MockJournalRepository)
		svc := NewProjectionService(testLogger(), repo, nil)

		event := sampleEvent()
		event.Date = "01/03/2024"

		err := svc.ProjectVoucher(context.Background(), event)
		var invalid ErrInvalidEvent
		require.True(t, errors.As(err, &invalid))
		repo.AssertNotCalled(t, "ReplaceVoucher", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing voucher id is permanent", func(t *testing.T) {
		repo := new(MockJournalRepository)
		svc := NewProjectionService(testLogger(), repo, nil)

		event := sampleEvent()
		event.VoucherID = 0

		err := svc.ProjectVoucher(context.Background(), event)
		assert.ErrorAs(t, err, &ErrInvalidEvent{})
	})
}
