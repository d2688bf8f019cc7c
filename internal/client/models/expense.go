// Package models defines the expense record, its state enums and the value
// types exchanged between the store, the services and the sync transport.
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaidBy identifies which of the two parties paid.
type PaidBy string

const (
	PaidByMe  PaidBy = "me"
	PaidByHer PaidBy = "her"
)

func (p PaidBy) Valid() bool {
	return p == PaidByMe || p == PaidByHer
}

// Op is the operation to apply on the server at next sync.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

func (o Op) Valid() bool {
	return o == OpUpsert || o == OpDelete
}

// Status is the local sync state of a record.
type Status string

const (
	StatusPending Status = "pending"
	StatusSynced  Status = "synced"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusSynced
}

const (
	MinAmount         int64 = 1
	MaxAmount         int64 = 1_000_000_000
	MaxNoteLength           = 200
	MaxCategoryLength       = 32
)

// TimestampLayout formats UpdatedAt values: RFC 3339, UTC, milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp renders t in TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Expense is one expense line item keyed by its client-generated UUID.
type Expense struct {
	ClientUUID string `json:"client_uuid"`
	Date       string `json:"date"`
	Amount     int64  `json:"amount"`
	Category   string `json:"category"`
	Note       string `json:"note,omitempty"`
	PaidBy     PaidBy `json:"paid_by"`
	Op         Op     `json:"op"`
	Status     Status `json:"status"`
	UpdatedAt  string `json:"updated_at"`
}

// IsPending reports whether the record still has to be transmitted.
func (e Expense) IsPending() bool {
	return e.Status == StatusPending
}

// IsDeleted reports whether the record is logically deleted.
func (e Expense) IsDeleted() bool {
	return e.Op == OpDelete
}

// ValidateDate checks that s is a real calendar date in common.DateLayout.
func ValidateDate(field, s string) error {
	if _, err := time.Parse(common.DateLayout, s); err != nil {
		return common.NewValidationError(field, "must be a YYYY-MM-DD date")
	}
	return nil
}

// ValidateExpense checks the user-supplied fields of e. Op, Status and
// UpdatedAt are stamped by the lifecycle layer and are not inspected here.
func ValidateExpense(e Expense) error {
	if _, err := uuid.Parse(e.ClientUUID); err != nil {
		return common.NewValidationError("client_uuid", "must be a UUID")
	}
	return ValidateRecord(e)
}

// ValidateRecord is ValidateExpense without the UUID format check, for
// records that originate on the server.
func ValidateRecord(e Expense) error {
	if strings.TrimSpace(e.ClientUUID) == "" {
		return common.NewValidationError("client_uuid", "is required")
	}
	if err := ValidateDate("date", e.Date); err != nil {
		return err
	}
	if e.Amount < MinAmount {
		return common.NewValidationError("amount", "must be greater than 0")
	}
	if e.Amount > MaxAmount {
		return common.NewValidationError("amount", "must not exceed 1000000000")
	}
	category := strings.TrimSpace(e.Category)
	if category == "" {
		return common.NewValidationError("category", "is required")
	}
	if utf8.RuneCountInString(category) > MaxCategoryLength {
		return common.NewValidationError("category", "is too long")
	}
	if utf8.RuneCountInString(e.Note) > MaxNoteLength {
		return common.NewValidationError("note", "must be at most 200 characters")
	}
	if !e.PaidBy.Valid() {
		return common.NewValidationError("paid_by", "must be me or her")
	}
	return nil
}

// ExpenseInput is raw form input before validation.
type ExpenseInput struct {
	ClientUUID string
	Date       string
	Amount     string
	Category   string
	Note       string
	PaidBy     string
}

// ParseExpenseInput converts form input into a validated Expense. An empty
// ClientUUID gets a fresh UUID, an empty Date becomes today's date.
// Fractional amounts are rejected, never rounded.
func ParseExpenseInput(in ExpenseInput, today time.Time) (Expense, error) {
	id := strings.TrimSpace(in.ClientUUID)
	if id == "" {
		id = uuid.NewString()
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = today.Format(common.DateLayout)
	}

	amount, err := parseAmount(in.Amount)
	if err != nil {
		return Expense{}, err
	}

	e := Expense{
		ClientUUID: id,
		Date:       date,
		Amount:     amount,
		Category:   strings.TrimSpace(in.Category),
		Note:       strings.TrimSpace(in.Note),
		PaidBy:     PaidBy(strings.ToLower(strings.TrimSpace(in.PaidBy))),
	}

	if err := ValidateExpense(e); err != nil {
		return Expense{}, err
	}
	return e, nil
}

func parseAmount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, common.NewValidationError("amount", "is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, common.NewValidationError("amount", "must be a number")
	}
	if !d.IsInteger() {
		return 0, common.NewValidationError("amount", "must be a whole number of yen")
	}
	if d.LessThan(decimal.NewFromInt(MinAmount)) {
		return 0, common.NewValidationError("amount", "must be greater than 0")
	}
	if d.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return 0, common.NewValidationError("amount", "must not exceed 1000000000")
	}
	return d.IntPart(), nil
}
