package voucher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the largest debit/credit difference a voucher may carry
var BalanceTolerance = decimal.New(1, -2)

// AmountScale and MaxAmount mirror the NUMERIC(18,2) entry column; amounts must be below MaxAmount
const AmountScale = 2

var MaxAmount = decimal.New(1, 18-AmountScale)

// Field validation errors, reported for the first failing field
var (
	ErrDateRequired        = shared.Invalid("voucher date is required")
	ErrDescriptionRequired = shared.Invalid("voucher description is required")
	ErrNoEntries           = shared.Invalid("voucher must contain at least one entry")
	ErrNumberTooLong       = shared.Invalid("voucher number must be at most 50 characters")
)

// EntryType is the side of the ledger an entry is posted to
type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

func (t EntryType) Valid() bool {
	return t == EntryTypeDebit || t == EntryTypeCredit
}

// Entry is a single debit or credit line owned by a voucher
type Entry struct {
	ID          int64           `json:"id"`
	VoucherID   int64           `json:"voucher_id"`
	AccountID   int64           `json:"account_id"`
	Type        EntryType       `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Voucher is one posting event. It exists only in the posted state.
type Voucher struct {
	ID            int64     `json:"id"`
	VoucherNumber *string   `json:"voucher_number"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	Entries       []Entry   `json:"entries,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EntryInput is a requested entry line before posting
type EntryInput struct {
	AccountID   int64
	Type        EntryType
	Amount      decimal.Decimal
	Description string
}

// PostingRequest carries an unvalidated voucher
type PostingRequest struct {
	Date          string
	Description   string
	VoucherNumber string
	Entries       []EntryInput
}

// NewVoucher validates the request field by field, stopping at the first failure,
// then enforces the debit = credit rule. Nothing about accounts is checked here.
func NewVoucher(req PostingRequest) (*Voucher, error) {
	if strings.TrimSpace(req.Date) == "" {
		return nil, ErrDateRequired
	}
	date, err := shared.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	var number *string
	if n := strings.TrimSpace(req.VoucherNumber); n != "" {
		if len(n) > 50 {
			return nil, ErrNumberTooLong
		}
		number = &n
	}
	if len(req.Entries) == 0 {
		return nil, ErrNoEntries
	}

	entries := make([]Entry, 0, len(req.Entries))
	for i, in := range req.Entries {
		if in.AccountID <= 0 {
			return nil, ErrInvalidEntry{Index: i, Reason: "account_id is required"}
		}
		if !in.Type.Valid() {
			return nil, ErrInvalidEntry{Index: i, Reason: "type must be debit or credit"}
		}
		if !in.Amount.IsPositive() {
			return nil, ErrInvalidEntry{Index: i, Reason: "amount must be greater than 0"}
		}
		if !in.Amount.Equal(in.Amount.Truncate(AmountScale)) {
			return nil, ErrInvalidEntry{Index: i, Reason: "amount must have at most 2 decimal places"}
		}
		if in.Amount.GreaterThanOrEqual(MaxAmount) {
			return nil, ErrInvalidEntry{Index: i, Reason: "amount must be less than " + MaxAmount.String()}
		}
		entries = append(entries, Entry{
			AccountID:   in.AccountID,
			Type:        in.Type,
			Amount:      in.Amount,
			Description: strings.TrimSpace(in.Description),
		})
	}

	debit, credit := Totals(entries)
	if !Balanced(debit, credit) {
		return nil, ErrUnbalancedVoucher{Debit: debit, Credit: credit}
	}

	now := time.Now().UTC()
	return &Voucher{
		VoucherNumber: number,
		Date:          date,
		Description:   description,
		Entries:       entries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Totals sums debit and credit amounts separately
func Totals(entries []Entry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.Type {
		case EntryTypeDebit:
			debit = debit.Add(e.Amount)
		case EntryTypeCredit:
			credit = credit.Add(e.Amount)
		}
	}
	return debit, credit
}

// Balanced applies the 0.01 tolerance
func Balanced(debit, credit decimal.Decimal) bool {
	return debit.Sub(credit).Abs().LessThanOrEqual(BalanceTolerance)
}

// MarshalJSON writes the voucher date as YYYY-MM-DD
func (v Voucher) MarshalJSON() ([]byte, error) {
	type plain Voucher
	return json.Marshal(struct {
		plain
		Date string `json:"date"`
	}{plain: plain(v), Date: shared.FormatDate(v.Date)})
}

func (v *Voucher) UnmarshalJSON(data []byte) error {
	type plain Voucher
	aux := struct {
		*plain
		Date string `json:"date"`
	}{plain: (*plain)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == "" {
		v.Date = time.Time{}
		return nil
	}
	date, err := shared.ParseDate(aux.Date)
	if err != nil {
		return err
	}
	v.Date = date
	return nil
}

// AccountIDs returns the distinct accounts referenced by the voucher, in first-seen order
func (v *Voucher) AccountIDs() []int64 {
	seen := make(map[int64]struct{}, len(v.Entries))
	ids := make([]int64, 0, len(v.Entries))
	for _, e := range v.Entries {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		ids = append(ids, e.AccountID)
	}
	return ids
}

// Number returns the voucher number or an empty string
func (v *Voucher) Number() string {
	if v.VoucherNumber == nil {
		return ""
	}
	return *v.VoucherNumber
}

// ErrInvalidEntry reports the first malformed entry line
type ErrInvalidEntry struct {
	Index  int
	Reason string
}

func (e ErrInvalidEntry) Error() string {
	return fmt.Sprintf("entry %d: %s", e.Index+1, e.Reason)
}

func (e ErrInvalidEntry) IsValidation() bool { return true }

type ErrUnbalancedVoucher struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (e ErrUnbalancedVoucher) Error() string {
	return fmt.Sprintf("debit total %s does not equal credit total %s", e.Debit.StringFixed(2), e.Credit.StringFixed(2))
}

func (e ErrUnbalancedVoucher) IsValidation() bool { return true }
