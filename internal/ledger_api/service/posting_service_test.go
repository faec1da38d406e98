package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/office-suite/general-ledger/internal/domain/outbox"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/office-suite/general-ledger/internal/domain/voucher"
	"github.com/office-suite/general-ledger/internal/platform/cache"
	"github.com/office-suite/general-ledger/internal/platform/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type postingFixture struct {
	db       *MockTxRunner
	accounts *MockAccountRepository
	vouchers *MockVoucherRepository
	outbox   *MockOutboxRepository
	redis    *miniredis.Miniredis
	metrics  *metrics.Metrics
	svc      PostingService
}

func newPostingFixture(t *testing.T) *postingFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &postingFixture{
		db:       new(MockTxRunner),
		accounts: new(MockAccountRepository),
		vouchers: new(MockVoucherRepository),
		outbox:   new(MockOutboxRepository),
		redis:    mr,
		metrics:  metrics.New(),
	}
	f.svc = NewPostingService(
		testLogger(),
		f.db,
		f.accounts,
		f.vouchers,
		f.outbox,
		cache.NewReportCache(testLogger(), client, time.Minute),
		f.metrics,
	)
	return f
}

func cashSaleRequest() voucher.PostingRequest {
	return voucher.PostingRequest{
		Date:          "2024-01-15",
		Description:   "Cash sale",
		VoucherNumber: "V-001",
		Entries: []voucher.EntryInput{
			{AccountID: 1, Type: voucher.EntryTypeDebit, Amount: decimal.NewFromInt(500)},
			{AccountID: 2, Type: voucher.EntryTypeCredit, Amount: decimal.NewFromInt(500)},
		},
	}
}

func scrapeMetrics(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestPostingService_PostVoucher(t *testing.T) {
	ctx := context.Background()

	t.Run("writes voucher and outbox event in one transaction", func(t *testing.T) {
		f := newPostingFixture(t)
		f.db.On("ExecuteTx", ctx).Return(nil).Once()
		f.accounts.On("WithTx", mock.Anything)
		f.accounts.On("MissingIDs", ctx, []int64{1, 2}).Return(nil, nil)
		f.vouchers.On("WithTx", mock.Anything)
		f.vouchers.On("Create", ctx, mock.AnythingOfType("*voucher.Voucher")).
			Run(func(args mock.Arguments) {
				v := args.Get(1).(*voucher.Voucher)
				v.ID = 42
				for i := range v.Entries {
					v.Entries[i].ID = int64(100 + i)
					v.Entries[i].VoucherID = v.ID
				}
			}).
			Return(nil)
		f.outbox.On("WithTx", mock.Anything)

		var stored *outbox.Message
		f.outbox.On("Create", ctx, mock.AnythingOfType("*outbox.Message")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*outbox.Message) }).
			Return(nil)

		v, err := f.svc.PostVoucher(ctx, cashSaleRequest(), "corr-1")
		require.NoError(t, err)
		assert.Equal(t, int64(42), v.ID)
		assert.Equal(t, "V-001", v.Number())

		require.NotNil(t, stored)
		assert.Equal(t, int64(42), stored.VoucherID)
		assert.Equal(t, shared.OutboxStatusPending, stored.Status)

		event, err := stored.Event()
		require.NoError(t, err)
		assert.Equal(t, int64(42), event.VoucherID)
		assert.Equal(t, "2024-01-15", event.Date)
		assert.Equal(t, "corr-1", event.CorrelationID)
		require.Len(t, event.Entries, 2)
		assert.Equal(t, int64(100), event.Entries[0].EntryID)
		assert.Equal(t, "debit", event.Entries[0].Type)
		assert.True(t, decimal.NewFromInt(500).Equal(event.Entries[1].Amount))

		ver, err := f.redis.Get("gl:report:version")
		require.NoError(t, err)
		assert.Equal(t, "1", ver)
		assert.Contains(t, scrapeMetrics(t, f.metrics), "gl_vouchers_posted_total 1")
	})

	t.Run("unbalanced voucher opens no transaction", func(t *testing.T) {
		f := newPostingFixture(t)
		req := cashSaleRequest()
		req.Entries[0].Amount = decimal.NewFromInt(300)
		req.Entries[1].Amount = decimal.NewFromInt(250)

		_, err := f.svc.PostVoucher(ctx, req, "")
		var unbalanced voucher.ErrUnbalancedVoucher
		require.True(t, errors.As(err, &unbalanced))
		assert.True(t, shared.IsValidation(err))
		f.db.AssertNotCalled(t, "ExecuteTx", mock.Anything)
		f.vouchers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.False(t, f.redis.Exists("gl:report:version"))
	})

	t.Run("difference within tolerance is accepted", func(t *testing.T) {
		f := newPostingFixture(t)
		req := cashSaleRequest()
		req.Entries[1].Amount = decimal.RequireFromString("499.99")

		f.db.On("ExecuteTx", ctx).Return(nil)
		f.accounts.On("WithTx", mock.Anything)
		f.accounts.On("MissingIDs", ctx, []int64{1, 2}).Return(nil, nil)
		f.vouchers.On("WithTx", mock.Anything)
		f.vouchers.On("Create", ctx, mock.Anything).Return(nil)
		f.outbox.On("WithTx", mock.Anything)
		f.outbox.On("Create", ctx, mock.Anything).Return(nil)

		_, err := f.svc.PostVoucher(ctx, req, "")
		require.NoError(t, err)
	})

	t.Run("unknown account aborts before any insert", func(t *testing.T) {
		f := newPostingFixture(t)
		f.db.On("ExecuteTx", ctx).Return(nil)
		f.accounts.On("WithTx", mock.Anything)
		f.accounts.On("MissingIDs", ctx, []int64{1, 2}).Return([]int64{2}, nil)

		_, err := f.svc.PostVoucher(ctx, cashSaleRequest(), "")
		assert.Equal(t, voucher.ErrUnknownAccount{AccountID: 2}, err)
		f.vouchers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.outbox.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.NotContains(t, scrapeMetrics(t, f.metrics), "gl_vouchers_posted_total 1")
	})

	t.Run("outbox failure is returned and cache untouched", func(t *testing.T) {
		f := newPostingFixture(t)
		f.db.On("ExecuteTx", ctx).Return(nil)
		f.accounts.On("WithTx", mock.Anything)
		f.accounts.On("MissingIDs", ctx, []int64{1, 2}).Return(nil, nil)
		f.vouchers.On("WithTx", mock.Anything)
		f.vouchers.On("Create", ctx, mock.Anything).Return(nil)
		f.outbox.On("WithTx", mock.Anything)
		f.outbox.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

		_, err := f.svc.PostVoucher(ctx, cashSaleRequest(), "")
		require.Error(t, err)
		assert.False(t, shared.IsValidation(err))
		assert.False(t, f.redis.Exists("gl:report:version"))
	})

	t.Run("missing description", func(t *testing.T) {
		f := newPostingFixture(t)
		req := cashSaleRequest()
		req.Description = "  "

		_, err := f.svc.PostVoucher(ctx, req, "")
		assert.Equal(t, voucher.ErrDescriptionRequired, err)
	})
}

func TestPostingService_Reads(t *testing.T) {
	ctx := context.Background()
	f := newPostingFixture(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := voucher.ListFilter{DateStart: &start, Limit: 10}
	f.vouchers.On("List", ctx, filter).Return([]*voucher.Voucher{{ID: 1}}, int64(11), nil)
	f.vouchers.On("GetByID", ctx, int64(9)).Return(nil, voucher.ErrVoucherNotFound{VoucherID: 9})

	list, total, err := f.svc.ListVouchers(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(11), total)

	_, err = f.svc.GetVoucher(ctx, 9)
	assert.ErrorIs(t, err, voucher.ErrVoucherNotFound{})
}
