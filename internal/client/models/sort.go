package models

import "sort"

// SortForPresentation orders records by descending date, ties broken by
// descending client UUID. The slice is sorted in place.
func SortForPresentation(items []Expense) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date > items[j].Date
		}
		return items[i].ClientUUID > items[j].ClientUUID
	})
}
