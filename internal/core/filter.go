package core

import "time"

const (
	FilterAll   FilterMode = "all"
	FilterMonth FilterMode = "month"
	FilterRange FilterMode = "range"
)

type (
	FilterMode string

	// Filter derives the visible subset of transactions. Month is a
	// year-month ("2006-01"); Start and End are dates ("2006-01-02").
	Filter struct {
		Mode  FilterMode
		Month string
		Start string
		End   string
	}
)

func (fm FilterMode) Valid() bool {
	switch fm {
	case FilterAll, FilterMonth, FilterRange:
		return true
	}
	return false
}

// Apply returns the visible subset for the filter. Records whose
// created_at cannot be parsed are always kept: data-entry problems stay
// visible instead of silently disappearing from every view. A filter
// whose own parameters are missing or unparsable passes the list through
// unchanged for the same reason.
func (f Filter) Apply(list []Transaction) []Transaction {
	switch f.Mode {
	case FilterMonth:
		return f.applyMonth(list)
	case FilterRange:
		return f.applyRange(list)
	default:
		return list
	}
}

func (f Filter) applyMonth(list []Transaction) []Transaction {
	want, err := time.Parse("2006-01", f.Month)
	if err != nil {
		return list
	}
	out := make([]Transaction, 0, len(list))
	for _, t := range list {
		d, ok := ParseCreatedAt(t.CreatedAt)
		if !ok {
			out = append(out, t)
			continue
		}
		if d.Year() == want.Year() && d.Month() == want.Month() {
			out = append(out, t)
		}
	}
	return out
}

func (f Filter) applyRange(list []Transaction) []Transaction {
	if f.Start == "" || f.End == "" {
		return list
	}
	start, err := time.Parse("2006-01-02", f.Start)
	if err != nil {
		return list
	}
	end, err := time.Parse("2006-01-02", f.End)
	if err != nil {
		return list
	}
	// Window is inclusive through the last millisecond of the end day.
	endOfDay := end.Add(24*time.Hour - time.Millisecond)

	out := make([]Transaction, 0, len(list))
	for _, t := range list {
		d, ok := ParseCreatedAt(t.CreatedAt)
		if !ok {
			out = append(out, t)
			continue
		}
		if !d.Before(start) && !d.After(endOfDay) {
			out = append(out, t)
		}
	}
	return out
}
