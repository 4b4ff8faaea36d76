package catalog

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogview/internal/model"
)

func sampleProducts() []model.Product {
	return []model.Product{
		{Name: "X1", Category: "Phones", ProductCode: "A1", Description: "Dual sim"},
		{Name: "X2", Category: "Laptops", ProductCode: "B2", Description: "Ultrabook"},
		{Name: "Pixel Case", Category: "Phone Accessories", ProductCode: "C3", Description: "Silicone"},
		{Name: "Charger", Category: "Phones", ProductCode: "D4", Description: "USB-C fast charging"},
	}
}

func codes(products []model.Product) []string {
	out := []string{}
	for _, p := range products {
		out = append(out, p.ProductCode)
	}
	return out
}

func TestFilterAllWithoutQueryReturnsEverything(t *testing.T) {
	all := sampleProducts()
	got := Filter(all, "all", "")
	assert.Equal(t, all, got)

	got[0].Name = "changed"
	assert.Equal(t, "X1", all[0].Name, "result must not alias the input")
}

func TestFilterIntersectsCategoryAndQuery(t *testing.T) {
	all := []model.Product{
		{Category: "Phones", Name: "X1", ProductCode: "A1"},
		{Category: "Laptops", Name: "X2", ProductCode: "B2"},
	}
	assert.Empty(t, Filter(all, "phones", "x2"))
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		category string
		query    string
		want     []string
	}{
		{"category substring, case-insensitive", "PHONE", "", []string{"A1", "C3", "D4"}},
		{"exact category word", "laptops", "", []string{"B2"}},
		{"unknown category", "Tablets", "", []string{}},
		{"empty category matches all", "", "", []string{"A1", "B2", "C3", "D4"}},
		{"query on name", "all", "x", []string{"A1", "B2", "C3"}},
		{"query on description", "all", "usb-c", []string{"D4"}},
		{"query on category", "all", "accessor", []string{"C3"}},
		{"query on code", "all", "b2", []string{"B2"}},
		{"query is trimmed", "all", "  charger  ", []string{"D4"}},
		{"blank query", "Phones", "   ", []string{"A1", "D4"}},
		{"category then query", "phone", "case", []string{"C3"}},
		{"query outside category", "Phones", "case", []string{}},
		{"no match", "all", "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(Filter(sampleProducts(), tt.category, tt.query)))
		})
	}
}

func TestFilterFoldsUnicode(t *testing.T) {
	all := []model.Product{{Name: "STRASSE Lamp", Category: "Décor", ProductCode: "L1"}}
	assert.Len(t, Filter(all, "DÉCOR", "lamp"), 1)
}

func TestIsNew(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	iso := func(t time.Time) string { return t.Format(time.RFC3339Nano) }

	assert.True(t, IsNew(iso(now), now))
	assert.True(t, IsNew(iso(now.Add(-7*24*time.Hour)), now))
	assert.False(t, IsNew(iso(now.Add(-7*24*time.Hour-time.Hour)), now))
	assert.False(t, IsNew(iso(now.Add(-8*24*time.Hour)), now))
	assert.True(t, IsNew(iso(now.Add(3*24*time.Hour)), now))
	assert.True(t, IsNew("2024-06-05", now))
	assert.False(t, IsNew("yesterday", now))
}

func TestRelated(t *testing.T) {
	all := []model.Product{
		{Category: "Phones", ProductCode: "A1"},
		{Category: "Phones", ProductCode: "A2"},
		{Category: "phones", ProductCode: "A3"},
		{Category: "Phones", ProductCode: "A1"},
		{Category: "Phones", ProductCode: "A4"},
		{Category: "Phones", ProductCode: "A5"},
		{Category: "Phones", ProductCode: "A6"},
		{Category: "Phones", ProductCode: "A7"},
	}
	got := Related(all, all[0], 4)
	assert.Equal(t, []string{"A2", "A4", "A5", "A6"}, codes(got))
}

func TestSuggest(t *testing.T) {
	all := sampleProducts()
	assert.Equal(t, []string{"A1", "B2", "C3"}, codes(Suggest(all, "X", 5)))
	assert.Equal(t, []string{"A1"}, codes(Suggest(all, "X", 1)))
	assert.Equal(t, []string{"C3"}, codes(Suggest(all, "c3", 5)))
	assert.Empty(t, Suggest(all, "ultrabook", 5), "descriptions are not suggested")
	assert.Empty(t, Suggest(all, " ", 5))
}

func TestFindByCode(t *testing.T) {
	p, ok := FindByCode(sampleProducts(), "C3")
	require.True(t, ok)
	assert.Equal(t, "Pixel Case", p.Name)

	_, ok = FindByCode(sampleProducts(), "c3")
	assert.False(t, ok)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Phones", "Laptops", "Phone Accessories"}, Categories(sampleProducts()))
}

func TestCodeFromQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   string
		wantOK bool
	}{
		{"after other params", "utm_source=wa&productAB-12", "AB-12", true},
		{"first in url order wins", "productZZ9&productAA1", "ZZ9", true},
		{"escaped key", "productAC%2F12=", "AC/12", true},
		{"bare prefix", "product=1", "", false},
		{"empty", "", "", false},
		{"no match", "q=phone&category=all", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := CodeFromQuery(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestShareURLRoundTrip(t *testing.T) {
	link := ShareURL("https://shop.example/", "AB 12")
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/", u.Path)

	code, ok := CodeFromQuery(u.RawQuery)
	require.True(t, ok)
	assert.Equal(t, "AB 12", code)
}
