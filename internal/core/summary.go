package core

// Summary holds the income/expense/balance totals for a transaction set.
type Summary struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Balance Money `json:"balance"`
}

// Summarize computes the totals over a transaction set. Balance is always
// income minus expense; an empty set yields all zeros.
func Summarize(ts []Transaction) Summary {
	var s Summary
	for _, t := range ts {
		switch t.Type {
		case Income:
			s.Income = s.Income.Add(t.Amount)
		case Expense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// CategoryBreakdown sums expense amounts per category. Income entries are
// ignored; the map is consumed as an unordered chart dataset.
func CategoryBreakdown(ts []Transaction) map[string]Money {
	totals := make(map[string]Money)
	for _, t := range ts {
		if t.Type != Expense {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}
	return totals
}
