package account

import (
	"strings"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/shared"
)

// Field validation errors
var (
	ErrEmptyCode     = shared.Invalid("account code is required")
	ErrEmptyName     = shared.Invalid("account name is required")
	ErrCodeTooLong   = shared.Invalid("account code must be at most 50 characters")
	ErrNameTooLong   = shared.Invalid("account name must be at most 200 characters")
	ErrInvalidLevel  = shared.Invalid("account level must be at least 1")
	ErrInvalidStatus = shared.Invalid("account status must be 0 (inactive) or 1 (active)")
	ErrInvalidParent = shared.Invalid("parent id must not be negative")
)

// Category classifies an account and decides which side of the ledger increases it
type Category string

const (
	CategoryAsset     Category = "asset"
	CategoryLiability Category = "liability"
	CategoryEquity    Category = "equity"
	CategoryRevenue   Category = "revenue"
	CategoryExpense   Category = "expense"
)

// Categories lists every category in chart-of-accounts order
var Categories = []Category{
	CategoryAsset,
	CategoryLiability,
	CategoryEquity,
	CategoryRevenue,
	CategoryExpense,
}

func (c Category) Valid() bool {
	switch c {
	case CategoryAsset, CategoryLiability, CategoryEquity, CategoryRevenue, CategoryExpense:
		return true
	}
	return false
}

// DebitNormal reports whether debits increase accounts of this category
func (c Category) DebitNormal() bool {
	return c == CategoryAsset || c == CategoryExpense
}

// ParseCategory validates a raw category value
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", ErrInvalidCategory{Category: raw}
	}
	return c, nil
}

// Status is stored as a small integer: 1 active, 0 inactive
type Status int

const (
	StatusInactive Status = 0
	StatusActive   Status = 1
)

func (s Status) Valid() bool {
	return s == StatusInactive || s == StatusActive
}

// Account is a node in the chart of accounts
type Account struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Category  Category  `json:"type"`
	ParentID  int64     `json:"parent_id"`
	Level     int       `json:"level"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attributes are the mutable fields of an account
type Attributes struct {
	Name     string
	Category Category
	ParentID int64
	Level    int
	Status   Status
}

// NewAccount validates the fields of a chart-of-accounts entry and returns it ready to insert
func NewAccount(code string, attrs Attributes) (*Account, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	if len(code) > 50 {
		return nil, ErrCodeTooLong
	}
	if err := attrs.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Account{
		Code:      code,
		Name:      strings.TrimSpace(attrs.Name),
		Category:  attrs.Category,
		ParentID:  attrs.ParentID,
		Level:     attrs.Level,
		Status:    attrs.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Apply replaces the mutable fields. The code never changes after creation.
func (a *Account) Apply(attrs Attributes) error {
	if err := attrs.validate(); err != nil {
		return err
	}
	a.Name = strings.TrimSpace(attrs.Name)
	a.Category = attrs.Category
	a.ParentID = attrs.ParentID
	a.Level = attrs.Level
	a.Status = attrs.Status
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

func (a Attributes) validate() error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 200 {
		return ErrNameTooLong
	}
	if !a.Category.Valid() {
		return ErrInvalidCategory{Category: string(a.Category)}
	}
	if a.ParentID < 0 {
		return ErrInvalidParent
	}
	if a.Level < 1 {
		return ErrInvalidLevel
	}
	if !a.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
