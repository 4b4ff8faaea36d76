package catalog

import (
	"math"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"catalogview/internal/model"
)

// AllCategories is the selector that disables the category step.
const AllCategories = "all"

// NewWindow is how recent a product must be to count as new.
const NewWindow = 7 * 24 * time.Hour

// ProductParamPrefix starts the URL parameter whose remaining name is a product code.
const ProductParamPrefix = "product"

// fold returns s in caseless form. A Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(s, substr string) bool {
	return strings.Contains(fold(s), substr)
}

// Filter applies the category selector, then the text query over what remains.
// The input slice is never modified.
func Filter(all []model.Product, category, query string) []model.Product {
	byCategory := make([]model.Product, 0, len(all))
	if category == AllCategories {
		byCategory = append(byCategory, all...)
	} else {
		c := fold(category)
		for _, p := range all {
			if containsFold(p.Category, c) {
				byCategory = append(byCategory, p)
			}
		}
	}

	q := fold(strings.TrimSpace(query))
	if q == "" {
		return byCategory
	}

	out := make([]model.Product, 0, len(byCategory))
	for _, p := range byCategory {
		if matchesQuery(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matchesQuery(p model.Product, folded string) bool {
	return containsFold(p.Name, folded) ||
		containsFold(p.Description, folded) ||
		containsFold(p.Category, folded) ||
		containsFold(p.ProductCode, folded)
}

// IsNew reports whether createdTime is within a week of now, counting whole
// days rounded up. Unparseable times are never new.
func IsNew(createdTime string, now time.Time) bool {
	created, ok := ParseTime(createdTime)
	if !ok {
		return false
	}
	diff := now.Sub(created)
	if diff < 0 {
		diff = -diff
	}
	days := math.Ceil(diff.Hours() / 24)
	return days <= NewWindow.Hours()/24
}

// Related returns up to limit other products from exactly the same category.
func Related(all []model.Product, p model.Product, limit int) []model.Product {
	var out []model.Product
	for _, other := range all {
		if len(out) >= limit {
			break
		}
		if other.Category == p.Category && other.ProductCode != p.ProductCode {
			out = append(out, other)
		}
	}
	return out
}

// Suggest returns up to limit products whose name or code contains query.
func Suggest(all []model.Product, query string, limit int) []model.Product {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []model.Product
	for _, p := range all {
		if len(out) >= limit {
			break
		}
		if containsFold(p.Name, q) || containsFold(p.ProductCode, q) {
			out = append(out, p)
		}
	}
	return out
}

// FindByCode returns the first product carrying code.
func FindByCode(all []model.Product, code string) (model.Product, bool) {
	for _, p := range all {
		if p.ProductCode == code {
			return p, true
		}
	}
	return model.Product{}, false
}

// Categories lists distinct categories in first-seen order.
func Categories(all []model.Product) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range all {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// CodeFromQuery finds the first "product<CODE>" parameter name in a raw
// query string, in URL order, and returns CODE.
func CodeFromQuery(rawQuery string) (string, bool) {
	for _, part := range strings.Split(rawQuery, "&") {
		key, _, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		if code, ok := strings.CutPrefix(key, ProductParamPrefix); ok {
			return code, code != ""
		}
	}
	return "", false
}

// ShareURL builds a link that opens the viewer searching for code.
func ShareURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/?" + url.QueryEscape(ProductParamPrefix+code)
}
