package catalog

import "catalogview/internal/model"

// View is the viewer state: the working set, the active selectors and the
// products they select. Commands return a new View.
type View struct {
	All      []model.Product
	Filtered []model.Product
	Category string
	Query    string
}

func NewView(all []model.Product) View {
	return View{Category: AllCategories}.Replace(all)
}

func (v View) SelectCategory(category string) View {
	if category == "" {
		category = AllCategories
	}
	v.Category = category
	v.Filtered = Filter(v.All, v.Category, v.Query)
	return v
}

func (v View) SetQuery(query string) View {
	v.Query = query
	v.Filtered = Filter(v.All, v.Category, v.Query)
	return v
}

// Replace swaps in a freshly loaded working set, keeping the selectors.
func (v View) Replace(all []model.Product) View {
	v.All = all
	v.Filtered = Filter(v.All, v.Category, v.Query)
	return v
}
