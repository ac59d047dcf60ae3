package core

// Summary holds the totals derived from a transaction list.
type Summary struct {
	Income  Money
	Expense Money
	Balance Money
}

// Aggregate computes income, expense and balance for the given list. It is
// a pure function recomputed on every change to the visible set; the lists
// are small by construction, so there is no caching.
func Aggregate(list []Transaction) Summary {
	var s Summary
	for _, t := range list {
		switch t.Type {
		case Income:
			s.Income.Satang += t.Amount.Satang
		case Expense:
			s.Expense.Satang += t.Amount.Satang
		}
	}
	s.Balance.Satang = s.Income.Satang - s.Expense.Satang
	return s
}
