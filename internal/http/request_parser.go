package http

import (
	"net/url"
	"strings"

	"github.com/Cherval/me-my-cal/internal/core"
)

// parseFilter extracts the list filter from query parameters. Unknown
// modes fall back to showing everything.
func parseFilter(query url.Values) core.Filter {
	mode := core.FilterMode(strings.TrimSpace(query.Get("filter")))
	if !mode.Valid() {
		mode = core.FilterAll
	}
	return core.Filter{
		Mode:  mode,
		Month: strings.TrimSpace(query.Get("month")),
		Start: strings.TrimSpace(query.Get("start")),
		End:   strings.TrimSpace(query.Get("end")),
	}
}

// parseEntry builds an Entry from the add form. The category, method
// and bank selects may carry the other-sentinel, in which case the
// matching free-text field holds the real value.
func parseEntry(form url.Values) (core.Entry, error) {
	satang, err := core.ParseDecimalToSatang(strings.TrimSpace(form.Get("amount")))
	if err != nil {
		return core.Entry{}, err
	}

	e := core.Entry{
		Type:     core.TransactionType(strings.TrimSpace(form.Get("type"))),
		Amount:   core.Money{Satang: satang},
		Category: resolveChoice(sanitizeInput(form.Get("category")), sanitizeInput(form.Get("category_other"))),
		Note:     sanitizeInput(form.Get("note")),
		Emoji:    sanitizeInput(form.Get("emoji")),
		Method:   resolveChoice(sanitizeInput(form.Get("method")), sanitizeInput(form.Get("method_other"))),
		Bank:     resolveChoice(sanitizeInput(form.Get("bank")), sanitizeInput(form.Get("bank_other"))),
		Party:    sanitizeInput(form.Get("party")),
		Item:     sanitizeInput(form.Get("item")),
		Location: sanitizeInput(form.Get("location")),
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

// parsePatch builds a partial update from the edit form. Only keys
// present in the form become patch fields; an absent key leaves the
// stored value untouched.
func parsePatch(form url.Values) (core.Patch, error) {
	var p core.Patch

	if form.Has("type") {
		t := core.TransactionType(strings.TrimSpace(form.Get("type")))
		if !t.Valid() {
			return core.Patch{}, core.ErrInvalidType
		}
		p.Type = &t
	}
	if form.Has("amount") {
		satang, err := core.ParseDecimalToSatang(strings.TrimSpace(form.Get("amount")))
		if err != nil {
			return core.Patch{}, err
		}
		p.Amount = &core.Money{Satang: satang}
	}
	if form.Has("category") {
		v := resolveChoice(sanitizeInput(form.Get("category")), sanitizeInput(form.Get("category_other")))
		p.Category = &v
	}
	if form.Has("note") {
		v := sanitizeInput(form.Get("note"))
		p.Note = &v
	}
	if form.Has("emoji") {
		v := sanitizeInput(form.Get("emoji"))
		p.Emoji = &v
	}
	if form.Has("created_at") {
		v := strings.TrimSpace(form.Get("created_at"))
		p.CreatedAt = &v
	}
	if form.Has("method") {
		v := resolveChoice(sanitizeInput(form.Get("method")), sanitizeInput(form.Get("method_other")))
		p.Method = &v
	}
	if form.Has("bank") {
		v := resolveChoice(sanitizeInput(form.Get("bank")), sanitizeInput(form.Get("bank_other")))
		p.Bank = &v
	}
	if form.Has("party") {
		v := sanitizeInput(form.Get("party"))
		p.Party = &v
	}
	if form.Has("item") {
		v := sanitizeInput(form.Get("item"))
		p.Item = &v
	}
	if form.Has("location") {
		v := sanitizeInput(form.Get("location"))
		p.Location = &v
	}

	return p, nil
}
