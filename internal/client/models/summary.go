package models

// CategoryTotal is the sum of amounts for one category.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
	Count    int    `json:"count"`
}

// Summary aggregates the records of a date window.
type Summary struct {
	Start      string           `json:"start"`
	End        string           `json:"end"`
	Total      int64            `json:"total"`
	Count      int              `json:"count"`
	ByCategory []CategoryTotal  `json:"by_category"`
	ByPayer    map[PaidBy]int64 `json:"by_payer"`
}

// Summarize aggregates items over [start, end]. Logically deleted records are
// ignored.
func Summarize(start, end string, items []Expense) Summary {
	s := Summary{
		Start:   start,
		End:     end,
		ByPayer: map[PaidBy]int64{},
	}

	byCategory := map[string]*CategoryTotal{}
	var names []string

	for _, e := range items {
		if e.IsDeleted() {
			continue
		}
		s.Total += e.Amount
		s.Count++
		s.ByPayer[e.PaidBy] += e.Amount

		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			byCategory[e.Category] = ct
			names = append(names, e.Category)
		}
		ct.Total += e.Amount
		ct.Count++
	}

	SortCategories(names)
	s.ByCategory = make([]CategoryTotal, 0, len(names))
	for _, n := range names {
		s.ByCategory = append(s.ByCategory, *byCategory[n])
	}
	return s
}
