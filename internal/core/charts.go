package core

// CategoryBreakdown is one bar pair of the per-category chart.
type CategoryBreakdown struct {
	Category string
	Income   Money
	Expense  Money
}

// UncategorizedLabel buckets records without a category on the charts.
const UncategorizedLabel = "—"

// BreakdownByCategory sums income and expense per category in first-seen
// order, truncated to limit categories (0 means no limit).
func BreakdownByCategory(list []Transaction, limit int) []CategoryBreakdown {
	index := make(map[string]int)
	var out []CategoryBreakdown
	for _, t := range list {
		cat := t.Category
		if cat == "" {
			cat = UncategorizedLabel
		}
		i, ok := index[cat]
		if !ok {
			index[cat] = len(out)
			out = append(out, CategoryBreakdown{Category: cat})
			i = len(out) - 1
		}
		switch t.Type {
		case Income:
			out[i].Income.Satang += t.Amount.Satang
		case Expense:
			out[i].Expense.Satang += t.Amount.Satang
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
