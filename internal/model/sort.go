package model

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortByName orders products by display name with Spanish collation, the
// ordering the storefront lists depend on. The sort is stable: equal names
// keep their input order.
func SortByName(products []Product) {
	c := collate.New(language.Spanish)
	sort.SliceStable(products, func(i, j int) bool {
		return c.CompareString(products[i].Name, products[j].Name) < 0
	})
}
