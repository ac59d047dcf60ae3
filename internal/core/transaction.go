package core

import (
	"errors"
	"sort"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DemoUserID is the sentinel owner of records created in demo mode.
const DemoUserID = "demo"

type (
	TransactionType string

	// Transaction is the sole domain entity. CreatedAt carries both the
	// record creation time and the user-editable transaction date; it is
	// the primary sort and filter key.
	Transaction struct {
		ID        string          `json:"id"`
		UserID    string          `json:"user_id"`
		Type      TransactionType `json:"type"`
		Amount    Money           `json:"amount"`
		Category  string          `json:"category"`
		Note      *string         `json:"note"`
		Emoji     *string         `json:"emoji"`
		CreatedAt string          `json:"created_at"`
		Method    *string         `json:"method"`
		Bank      *string         `json:"bank"`
		Party     *string         `json:"party"`
		Item      *string         `json:"item"`
		Location  *string         `json:"location"`
	}

	// Entry is the payload of the Add operation: everything the user types
	// into the form, before an id, owner and timestamp are assigned.
	Entry struct {
		Type     TransactionType
		Amount   Money
		Category string
		Note     string
		Emoji    string
		Method   string
		Bank     string
		Party    string
		Item     string
		Location string
	}

	// Patch is a field-level partial update. Nil fields are left untouched.
	Patch struct {
		Type      *TransactionType
		Amount    *Money
		Category  *string
		Note      *string
		Emoji     *string
		CreatedAt *string
		Method    *string
		Bank      *string
		Party     *string
		Item      *string
		Location  *string
	}
)

var (
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("invalid amount")
)

func (tt TransactionType) Valid() bool {
	return tt == Income || tt == Expense
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.Satang <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Record builds the full Transaction for the given identity, defaulting
// unset optional fields to null.
func (e Entry) Record(id, userID, createdAt string) Transaction {
	return Transaction{
		ID:        id,
		UserID:    userID,
		Type:      e.Type,
		Amount:    e.Amount,
		Category:  e.Category,
		Note:      optional(e.Note),
		Emoji:     optional(e.Emoji),
		CreatedAt: createdAt,
		Method:    optional(e.Method),
		Bank:      optional(e.Bank),
		Party:     optional(e.Party),
		Item:      optional(e.Item),
		Location:  optional(e.Location),
	}
}

func (e Entry) Validate() error {
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	if e.Amount.Satang <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Apply merges the patch into the transaction in place.
func (p Patch) Apply(t *Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Note != nil {
		t.Note = optional(*p.Note)
	}
	if p.Emoji != nil {
		t.Emoji = optional(*p.Emoji)
	}
	if p.CreatedAt != nil {
		t.CreatedAt = *p.CreatedAt
	}
	if p.Method != nil {
		t.Method = optional(*p.Method)
	}
	if p.Bank != nil {
		t.Bank = optional(*p.Bank)
	}
	if p.Party != nil {
		t.Party = optional(*p.Party)
	}
	if p.Item != nil {
		t.Item = optional(*p.Item)
	}
	if p.Location != nil {
		t.Location = optional(*p.Location)
	}
}

// TouchesCreatedAt reports whether applying the patch changes the sort key.
func (p Patch) TouchesCreatedAt() bool {
	return p.CreatedAt != nil
}

func (p Patch) IsZero() bool {
	return p.Type == nil && p.Amount == nil && p.Category == nil &&
		p.Note == nil && p.Emoji == nil && p.CreatedAt == nil &&
		p.Method == nil && p.Bank == nil && p.Party == nil &&
		p.Item == nil && p.Location == nil
}

var createdAtFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseCreatedAt parses a stored timestamp leniently. ok is false for
// empty or unparsable values; such records are deliberately kept visible
// by the filter engine rather than hidden.
func ParseCreatedAt(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NowCreatedAt stamps the current time in the wire format used by the
// backing store (UTC, millisecond precision).
func NowCreatedAt() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// SortByCreatedAtDesc orders the list newest first, in place. Records with
// unparsable timestamps sink to the end without disturbing their relative
// order.
func SortByCreatedAtDesc(list []Transaction) {
	sort.SliceStable(list, func(i, j int) bool {
		ti, _ := ParseCreatedAt(list[i].CreatedAt)
		tj, _ := ParseCreatedAt(list[j].CreatedAt)
		return ti.After(tj)
	})
}
