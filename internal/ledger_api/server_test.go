package ledger_api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/office-suite/general-ledger/internal/config"
	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/balance"
	"github.com/office-suite/general-ledger/internal/domain/journal"
	"github.com/office-suite/general-ledger/internal/domain/report"
	"github.com/office-suite/general-ledger/internal/domain/voucher"
	"github.com/office-suite/general-ledger/internal/ledger_api/middleware"
	"github.com/office-suite/general-ledger/internal/platform/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLedger answers every service call with a fixed value
type stubLedger struct{}

func (stubLedger) ListAccounts(context.Context, account.ListFilter) ([]*account.Account, int64, error) {
	return []*account.Account{{ID: 1, Code: "1001"}}, 1, nil
}

func (stubLedger) GetAccount(_ context.Context, id int64) (*account.Account, error) {
	if id != 1 {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	return &account.Account{ID: 1, Code: "1001", Name: "Cash", Category: account.CategoryAsset}, nil
}

func (stubLedger) CreateAccount(_ context.Context, code string, attrs account.Attributes) (*account.Account, error) {
	return account.NewAccount(code, attrs)
}

func (stubLedger) UpdateAccount(_ context.Context, id int64, _ account.Attributes) (*account.Account, error) {
	return &account.Account{ID: id}, nil
}

func (stubLedger) DeleteAccount(context.Context, int64) error { return nil }

func (stubLedger) PostVoucher(_ context.Context, req voucher.PostingRequest, _ string) (*voucher.Voucher, error) {
	return voucher.NewVoucher(req)
}

func (stubLedger) GetVoucher(_ context.Context, id int64) (*voucher.Voucher, error) {
	return &voucher.Voucher{ID: id}, nil
}

func (stubLedger) ListVouchers(context.Context, voucher.ListFilter) ([]*voucher.Voucher, int64, error) {
	return []*voucher.Voucher{}, 0, nil
}

func (stubLedger) GetAccountBalance(_ context.Context, id int64, _ time.Time) (*balance.Line, error) {
	return &balance.Line{AccountID: id}, nil
}

func (stubLedger) GetAllBalances(context.Context, time.Time) ([]balance.Line, error) {
	return []balance.Line{}, nil
}

func (stubLedger) TrialBalance(_ context.Context, asOf time.Time) (*report.TrialBalance, error) {
	tb := report.BuildTrialBalance(asOf, nil)
	return &tb, nil
}

func (stubLedger) BalanceSheet(_ context.Context, asOf time.Time) (*report.BalanceSheet, error) {
	bs := report.BuildBalanceSheet(asOf, nil, nil)
	return &bs, nil
}

func (stubLedger) IncomeStatement(_ context.Context, start, end time.Time) (*report.IncomeStatement, error) {
	is := report.BuildIncomeStatement(start, end, nil, nil)
	return &is, nil
}

func (stubLedger) CashFlowStatement(_ context.Context, start, end time.Time) (*report.CashFlowStatement, error) {
	cf := report.BuildCashFlowStatement(start, end, nil)
	return &cf, nil
}

func (stubLedger) FinancialRatios(_ context.Context, asOf time.Time) (*report.FinancialRatios, error) {
	r := report.BuildFinancialRatios(asOf)
	return &r, nil
}

func (stubLedger) ListAccountJournal(context.Context, journal.Query) ([]journal.Line, int64, error) {
	return []journal.Line{}, 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Application: config.ApplicationConfig{Env: "development", Name: "general-ledger"},
		Server: config.ServerConfig{
			Port:            0,
			ShutdownTimeout: time.Second,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
		},
		Pagination: config.PaginationConfig{DefaultLimit: 10, MaxLimit: 100},
	}
}

func newTestServer(t *testing.T) (*Server, *metrics.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stub := stubLedger{}
	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(logger, testConfig(), Services{
		Accounts: stub,
		Posting:  stub,
		Balances: stub,
		Reports:  stub,
		Journal:  stub,
	}, m)
	return srv, m
}

func serve(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := serve(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	_, err := time.Parse(middleware.TimestampLayout, body["timestamp"])
	assert.NoError(t, err)

	assert.NotEmpty(t, rr.Header().Get(middleware.CorrelationIDHeader))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestServer_Routes(t *testing.T) {
	srv, _ := newTestServer(t)

	testCases := []struct {
		method string
		path   string
		body   string
		code   int
	}{
		{http.MethodGet, "/api/finance/general-ledger/accounts", "", http.StatusOK},
		{http.MethodPost, "/api/finance/general-ledger/accounts", `{"code":"1001","name":"Cash","type":"asset"}`, http.StatusCreated},
		{http.MethodGet, "/api/finance/general-ledger/accounts/1", "", http.StatusOK},
		{http.MethodGet, "/api/finance/general-ledger/accounts/2", "", http.StatusNotFound},
		{http.MethodPut, "/api/finance/general-ledger/accounts/1", `{"name":"Cash","type":"asset","level":1,"status":1}`, http.StatusOK},
		{http.MethodDelete, "/api/finance/general-ledger/accounts/1", "", http.StatusOK},
		{http.MethodGet, "/api/finance/general-ledger/accounts/1/balance", "", http.StatusOK},
		{http.MethodGet, "/api/finance/general-ledger/accounts/1/journal", "", http.StatusOK},
		{http.MethodGet, "/api/finance/general-ledger/vouchers", "", http.StatusOK},
		{http.MethodPost, "/api/finance/general-ledger/vouchers", `{"date":"2024-01-01","description":"Capital","entries":[{"account_id":1,"type":"debit","amount":100},{"account_id":3,"type":"credit","amount":100}]}`, http.StatusCreated},
		{http.MethodPost, "/api/finance/general-ledger/vouchers", `{"date":"2024-01-01","description":"Capital","entries":[{"account_id":1,"type":"debit","amount":100}]}`, http.StatusBadRequest},
		{http.MethodGet, "/api/finance/general-ledger/vouchers/3", "", http.StatusOK},
		{http.MethodGet, "/api/finance/general-ledger/balances", "", http.StatusOK},
		{http.MethodGet, "/api/finance/financial-reporting/trial-balance", "", http.StatusOK},
		{http.MethodGet, "/api/finance/financial-reporting/balance-sheet?date=2024-12-31", "", http.StatusOK},
		{http.MethodGet, "/api/finance/financial-reporting/income-statement", "", http.StatusOK},
		{http.MethodGet, "/api/finance/financial-reporting/cash-flow?date_start=2024-01-01&date_end=2024-03-31", "", http.StatusOK},
		{http.MethodGet, "/api/finance/financial-reporting/financial-ratios", "", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := serve(srv, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.code, rr.Code, rr.Body.String())
		})
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := serve(srv, http.MethodGet, "/api/finance/ledger", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Route not found", body["message"])
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)

	serve(srv, http.MethodGet, "/api/finance/general-ledger/accounts/1", "")
	serve(srv, http.MethodGet, "/nowhere", "")

	rr := serve(srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	out := rr.Body.String()
	assert.Contains(t, out, `gl_http_requests_total{code="200",method="GET",route="/api/finance/general-ledger/accounts/:id"} 1`)
	assert.Contains(t, out, `gl_http_requests_total{code="404",method="GET",route="unmatched"} 1`)
}

func TestServer_StopWithoutStart(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.NoError(t, srv.Stop(context.Background()))
}
