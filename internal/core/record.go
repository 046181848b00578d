package core

import (
	"errors"
	"strings"
	"time"
)

// Canonical category keys as stored on records. Anything else is tolerated
// and bucketed as "other" at aggregation time, never rejected.
const (
	TypeBankLoan      = "bankLoan"
	TypeCash          = "cash"
	TypeEMI           = "emi"
	TypeMiscellaneous = "miscellaneous"
)

// KeyOther is the synthetic bucket key for unrecognized category values.
const KeyOther = "other"

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrMissingDate        = errors.New("missing date")
	ErrRecordNotFound     = errors.New("record not found")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// CategoryKind identifies one of the fixed aggregation buckets.
type CategoryKind int

const (
	KindBankLoan CategoryKind = iota
	KindCash
	KindEMI
	KindMiscellaneous
	KindOther
)

// Category is the result of classifying a raw type string. Unknown values
// keep their raw label so display and export can echo them back verbatim.
type Category struct {
	Kind CategoryKind
	Raw  string
}

// ParseCategory classifies a raw type string. The empty string defaults to
// miscellaneous; any unrecognized value maps to KindOther with the raw
// label preserved. This is the single fallback branch in the system.
func ParseCategory(raw string) Category {
	switch strings.TrimSpace(raw) {
	case TypeBankLoan:
		return Category{Kind: KindBankLoan, Raw: TypeBankLoan}
	case TypeCash:
		return Category{Kind: KindCash, Raw: TypeCash}
	case TypeEMI:
		return Category{Kind: KindEMI, Raw: TypeEMI}
	case TypeMiscellaneous, "":
		return Category{Kind: KindMiscellaneous, Raw: TypeMiscellaneous}
	default:
		return Category{Kind: KindOther, Raw: strings.TrimSpace(raw)}
	}
}

// Key returns the bucket key the category aggregates under: the canonical
// type string for known kinds, the preserved raw label otherwise.
func (c Category) Key() string {
	return c.Raw
}

// Label returns the display name for the category. Unknown categories fall
// back to their raw key string.
func (c Category) Label() string {
	switch c.Kind {
	case KindBankLoan:
		return "Bank Loan"
	case KindCash:
		return "Cash Payment"
	case KindEMI:
		return "EMI Payment"
	case KindMiscellaneous:
		return "Miscellaneous"
	default:
		return c.Raw
	}
}

// Color returns the badge color for the category; unknown categories get a
// neutral gray.
func (c Category) Color() string {
	switch c.Kind {
	case KindBankLoan:
		return "#0b69c7"
	case KindCash:
		return "#0f9d58"
	case KindEMI:
		return "#ff8c42"
	case KindMiscellaneous:
		return "#6f42c1"
	default:
		return "#6c757d"
	}
}

// Date is a calendar date without a time-of-day component.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the HTML date-input format (2006-01-02). An empty string
// yields the zero Date without error so optional dates round-trip cleanly.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrMissingDate
	}
	return Date{Time: t}, nil
}

// IsEmpty reports whether the date was never set.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// ISO renders the date as 2006-01-02, or "" for the zero date.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// ExpenseRecord is the canonical persisted entry. Amount stays a raw string
// end to end: entry validation guarantees new records carry a parseable
// positive number, but older or externally written rows may not, and every
// consumer coerces leniently via CoerceAmount instead of trusting the field.
type ExpenseRecord struct {
	ID          string
	Type        string
	Amount      string
	Description string
	Date        Date
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category classifies the record's raw type.
func (r ExpenseRecord) Category() Category {
	return ParseCategory(r.Type)
}

// AmountMoney returns the record's amount coerced to Money; malformed
// amounts yield zero.
func (r ExpenseRecord) AmountMoney() Money {
	return CoerceAmount(r.Amount)
}

// RecordInput carries the four user-editable fields exactly as submitted.
type RecordInput struct {
	Type        string
	Amount      string
	Description string
	Date        string
}

// Field error messages surfaced inline next to the form inputs.
const (
	msgInvalidAmount      = "Please enter a valid amount greater than 0"
	msgMissingDescription = "Please enter a description"
	msgMissingDate        = "Please select a date"
	msgDescriptionTooLong = "Description too long (max 200 characters)"
)

// Validate checks a candidate submission and returns a map of field name to
// human-readable message. An empty map means the input is acceptable. The
// check is pure and synchronous; submission stays blocked while any message
// is present.
func (in RecordInput) Validate() map[string]string {
	errs := make(map[string]string)
	if _, err := ParseAmount(in.Amount); err != nil {
		errs["amount"] = msgInvalidAmount
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		errs["description"] = msgMissingDescription
	} else if len(desc) > 200 {
		errs["description"] = msgDescriptionTooLong
	}
	if d, err := ParseDate(in.Date); err != nil || d.IsEmpty() {
		errs["date"] = msgMissingDate
	}
	return errs
}

// Fields normalizes a validated input into the persistable user fields.
// Call Validate first; Fields does not re-check.
func (in RecordInput) Fields() RecordFields {
	d, _ := ParseDate(in.Date)
	return RecordFields{
		Type:        ParseCategory(in.Type).Key(),
		Amount:      strings.TrimSpace(in.Amount),
		Description: strings.TrimSpace(in.Description),
		Date:        d,
	}
}

// RecordFields is the set of user fields written on create and fully
// replaced on update.
type RecordFields struct {
	Type        string
	Amount      string
	Description string
	Date        Date
}
