// Package report composes balance aggregates into financial statements.
// Builders are pure: services fetch the aggregates and pass them in.
package report

import (
	"time"

	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/balance"
	"github.com/office-suite/general-ledger/internal/domain/cashflow"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RatiosNotImplementedNote accompanies the financial ratios placeholder
const RatiosNotImplementedNote = "financial ratio calculation is not implemented"

// Period is an inclusive reporting window
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func NewPeriod(start, end time.Time) Period {
	return Period{Start: shared.FormatDate(start), End: shared.FormatDate(end)}
}

// TrialBalanceSection groups the balances of one category
type TrialBalanceSection struct {
	Category account.Category `json:"type"`
	Accounts []balance.Line   `json:"accounts"`
	Subtotal decimal.Decimal  `json:"subtotal"`
}

type TrialBalance struct {
	Date        string                `json:"date"`
	Sections    []TrialBalanceSection `json:"sections"`
	TotalDebit  decimal.Decimal       `json:"total_debit"`
	TotalCredit decimal.Decimal       `json:"total_credit"`
}

// BuildTrialBalance groups totals by category in chart order. Input is expected ordered by code
// and that order is kept inside each section. Every category appears, even when empty.
func BuildTrialBalance(asOf time.Time, totals []balance.AccountTotals) TrialBalance {
	byCategory := make(map[account.Category][]balance.AccountTotals, len(account.Categories))
	for _, t := range totals {
		byCategory[t.Category] = append(byCategory[t.Category], t)
	}

	tb := TrialBalance{
		Date:        shared.FormatDate(asOf),
		Sections:    make([]TrialBalanceSection, 0, len(account.Categories)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, c := range account.Categories {
		section := TrialBalanceSection{Category: c, Accounts: []balance.Line{}, Subtotal: decimal.Zero}
		for _, t := range byCategory[c] {
			line := t.Line()
			section.Accounts = append(section.Accounts, line)
			section.Subtotal = section.Subtotal.Add(line.Balance)
			tb.TotalDebit = tb.TotalDebit.Add(t.Debit)
			tb.TotalCredit = tb.TotalCredit.Add(t.Credit)
		}
		tb.Sections = append(tb.Sections, section)
	}
	return tb
}

type BalanceSheet struct {
	Date             string          `json:"date"`
	Assets           []balance.Line  `json:"assets"`
	Liabilities      []balance.Line  `json:"liabilities"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	Equity           decimal.Decimal `json:"equity"`
}

// BuildBalanceSheet lists asset and equity accounts together under assets, all debit-positive,
// and liability accounts credit-positive.
//
// Equity is a plug (total assets minus total liabilities) and ignores the equity-category
// balances actually posted, which are themselves summed into assets with a debit sign.
// This is accounting-inconsistent and kept for compatibility with existing consumers.
func BuildBalanceSheet(asOf time.Time, assetsAndEquity, liabilities []balance.AccountTotals) BalanceSheet {
	bs := BalanceSheet{
		Date:             shared.FormatDate(asOf),
		Assets:           make([]balance.Line, 0, len(assetsAndEquity)),
		Liabilities:      make([]balance.Line, 0, len(liabilities)),
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
	}
	for _, t := range assetsAndEquity {
		b := t.Debit.Sub(t.Credit)
		bs.Assets = append(bs.Assets, t.LineWithBalance(b))
		bs.TotalAssets = bs.TotalAssets.Add(b)
	}
	for _, t := range liabilities {
		b := t.Credit.Sub(t.Debit)
		bs.Liabilities = append(bs.Liabilities, t.LineWithBalance(b))
		bs.TotalLiabilities = bs.TotalLiabilities.Add(b)
	}
	bs.Equity = bs.TotalAssets.Sub(bs.TotalLiabilities)
	return bs
}

type IncomeStatement struct {
	Period       Period          `json:"period"`
	Revenues     []balance.Line  `json:"revenues"`
	Expenses     []balance.Line  `json:"expenses"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetProfit    decimal.Decimal `json:"net_profit"`
}

// BuildIncomeStatement sums revenue credit-positive and expense debit-positive
func BuildIncomeStatement(start, end time.Time, revenues, expenses []balance.AccountTotals) IncomeStatement {
	is := IncomeStatement{
		Period:       NewPeriod(start, end),
		Revenues:     make([]balance.Line, 0, len(revenues)),
		Expenses:     make([]balance.Line, 0, len(expenses)),
		TotalRevenue: decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, t := range revenues {
		b := t.Credit.Sub(t.Debit)
		is.Revenues = append(is.Revenues, t.LineWithBalance(b))
		is.TotalRevenue = is.TotalRevenue.Add(b)
	}
	for _, t := range expenses {
		b := t.Debit.Sub(t.Credit)
		is.Expenses = append(is.Expenses, t.LineWithBalance(b))
		is.TotalExpense = is.TotalExpense.Add(b)
	}
	is.NetProfit = is.TotalRevenue.Sub(is.TotalExpense)
	return is
}

type CashFlowStatement struct {
	Period       Period                   `json:"period"`
	Transactions []cashflow.CategoryTotal `json:"transactions"`
	CashInflow   decimal.Decimal          `json:"cash_inflow"`
	CashOutflow  decimal.Decimal          `json:"cash_outflow"`
	NetCashFlow  decimal.Decimal          `json:"net_cash_flow"`
}

// BuildCashFlowStatement totals income groups as inflow and expense groups as outflow.
// Groups of any other type are listed but not totalled.
func BuildCashFlowStatement(start, end time.Time, groups []cashflow.CategoryTotal) CashFlowStatement {
	cf := CashFlowStatement{
		Period:       NewPeriod(start, end),
		Transactions: groups,
		CashInflow:   decimal.Zero,
		CashOutflow:  decimal.Zero,
	}
	if cf.Transactions == nil {
		cf.Transactions = []cashflow.CategoryTotal{}
	}
	for _, g := range groups {
		switch g.Type {
		case cashflow.TypeIncome:
			cf.CashInflow = cf.CashInflow.Add(g.TotalAmount)
		case cashflow.TypeExpense:
			cf.CashOutflow = cf.CashOutflow.Add(g.TotalAmount)
		}
	}
	cf.NetCashFlow = cf.CashInflow.Sub(cf.CashOutflow)
	return cf
}

// FinancialRatios is a placeholder; every ratio is reported as zero
type FinancialRatios struct {
	Date               string          `json:"date"`
	LiquidityRatio     decimal.Decimal `json:"liquidity_ratio"`
	ProfitabilityRatio decimal.Decimal `json:"profitability_ratio"`
	DebtRatio          decimal.Decimal `json:"debt_ratio"`
	AssetTurnover      decimal.Decimal `json:"asset_turnover"`
	Note               string          `json:"note"`
}

func BuildFinancialRatios(asOf time.Time) FinancialRatios {
	return FinancialRatios{
		Date:               shared.FormatDate(asOf),
		LiquidityRatio:     decimal.Zero,
		ProfitabilityRatio: decimal.Zero,
		DebtRatio:          decimal.Zero,
		AssetTurnover:      decimal.Zero,
		Note:               RatiosNotImplementedNote,
	}
}
