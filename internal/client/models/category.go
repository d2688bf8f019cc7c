package models

import "sort"

// Categories is the fixed category list offered by the entry form, in
// display order.
var Categories = []string{"食費", "外食", "日用品", "住居・光熱費", "交通費", "その他"}

func categoryRank(name string) int {
	for i, c := range Categories {
		if c == name {
			return i
		}
	}
	return len(Categories)
}

// SortCategories orders names by the fixed category order. Unknown names go
// last, sorted by name.
func SortCategories(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := categoryRank(names[i]), categoryRank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}
