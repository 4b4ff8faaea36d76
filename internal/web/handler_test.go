package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catalogview/internal/catalog"
	"catalogview/internal/clock"
	"catalogview/internal/export"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

var sheetHeader = []string{"Name", "PriceMin", "PriceMax", "Category", "BuyLink", "BuyOn", "ImageURL", "CreatedTime", "Description", "ProductCode"}

func sheetRow(name, category, created, code, description string) []string {
	return []string{name, "100", "150", category, "https://shop.example/" + code, "Amazon", "https://img.example/" + code + ".jpg", created, description, code}
}

type mutableSource struct {
	mu     sync.Mutex
	values [][]string
	err    error
}

func (s *mutableSource) Values(context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values, s.err
}

func (s *mutableSource) set(values [][]string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values, s.err = values, err
}

func defaultSheet() [][]string {
	return [][]string{
		sheetHeader,
		sheetRow("Phone X1", "Phones", "2024-06-08T00:00:00Z", "A1", "<p>Dual <b>sim</b> phone</p>"),
		sheetRow("Laptop X2", "Laptops", "2024-05-01T00:00:00Z", "B2", "Ultrabook"),
		sheetRow("Phone Case", "Phones", "2024-04-01T00:00:00Z", "C3", "Silicone case"),
		sheetRow("Charger", "Phones", "2024-03-01T00:00:00Z", "D4", "Fast charging"),
	}
}

type testEnv struct {
	source  *mutableSource
	ws      *catalog.WorkingSet
	handler http.Handler
}

func newTestEnv(t *testing.T, withSessions bool) *testEnv {
	t.Helper()
	src := &mutableSource{values: defaultSheet()}
	clk := clock.NewMockClock(testNow)
	ws := catalog.NewWorkingSet(catalog.NewLoader(src, clk, zap.NewNop()))
	_, err := ws.Reload(context.Background())
	require.NoError(t, err)

	var sessions *SessionStore
	if withSessions {
		sessions, _ = newTestSessionStore(t)
	}
	srv, err := NewServer(ws, sessions, clk, "https://catalog.example", zap.NewNop())
	require.NoError(t, err)
	return &testEnv{source: src, ws: ws, handler: srv.Routes()}
}

func (e *testEnv) get(t *testing.T, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func cardCodes(doc *goquery.Document) []string {
	out := []string{}
	doc.Find(".product-card").Each(func(_ int, s *goquery.Selection) {
		code, _ := s.Attr("data-code")
		out = append(out, code)
	})
	return out
}

func TestIndexListsNewestFirst(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	assert.Equal(t, []string{"A1", "B2", "C3", "D4"}, cardCodes(doc))

	first := doc.Find(".product-card").First()
	assert.Equal(t, 1, first.Find(".new-tag").Length(), "A1 is two days old")
	assert.Equal(t, "₹100 ~ ₹150", first.Find(".product-price").Text())
	assert.Equal(t, "Buy on Amazon", first.Find(".buy-button").Text())
	assert.Equal(t, 0, doc.Find(".product-card").Eq(1).Find(".new-tag").Length())

	chips := doc.Find(".category-chip").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, []string{"All", "Phones", "Laptops"}, chips)
}

func TestIndexFiltersByCategoryThenQuery(t *testing.T) {
	env := newTestEnv(t, false)

	doc := parseHTML(t, env.get(t, "/?category=phones&q=case"))
	assert.Equal(t, []string{"C3"}, cardCodes(doc))

	doc = parseHTML(t, env.get(t, "/?category=phones&q=x2"))
	assert.Empty(t, cardCodes(doc))
	assert.Equal(t, 1, doc.Find(".no-products").Length())
}

func TestIndexProductParamSeedsQuery(t *testing.T) {
	env := newTestEnv(t, false)
	doc := parseHTML(t, env.get(t, "/?productB2"))

	assert.Equal(t, []string{"B2"}, cardCodes(doc))
	val, _ := doc.Find("#searchInput").Attr("value")
	assert.Equal(t, "B2", val)
}

func TestIndexRemembersViewState(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/?category=Phones&q=charger")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)

	doc := parseHTML(t, env.get(t, "/", cookies[0]))
	assert.Equal(t, []string{"D4"}, cardCodes(doc))

	doc = parseHTML(t, env.get(t, "/?q=", cookies[0]))
	assert.Equal(t, []string{"A1", "C3", "D4"}, cardCodes(doc), "category survives, query cleared")
}

func TestIndexShowsLoadError(t *testing.T) {
	src := &mutableSource{err: errors.New("dial tcp: connection refused")}
	ws := catalog.NewWorkingSet(catalog.NewLoader(src, clock.NewMockClock(testNow), zap.NewNop()))
	_, err := ws.Reload(context.Background())
	require.Error(t, err)

	srv, err := NewServer(ws, nil, clock.NewMockClock(testNow), "https://catalog.example", zap.NewNop())
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	doc := parseHTML(t, rec)
	msg := doc.Find(".error-message")
	require.Equal(t, 1, msg.Length())
	assert.Contains(t, msg.Text(), "connection refused")
	action, _ := msg.Find("form").Attr("action")
	assert.Equal(t, "/reload", action)

	health := httptest.NewRecorder()
	srv.Routes().ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, health.Code)
}

func TestProductPage(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.get(t, "/products/A1")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	assert.Equal(t, "Phone X1", doc.Find(".modal-product-name").Contents().First().Text())
	desc, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	assert.Equal(t, "Dual sim phone", desc)
	share, _ := doc.Find(".share-link").Attr("value")
	assert.Equal(t, "https://catalog.example/?productA1", share)

	related := doc.Find(".related-product-name").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, []string{"Phone Case", "Charger"}, related)

	assert.Equal(t, http.StatusNotFound, env.get(t, "/products/ZZ").Code)
}

func TestProductLinksWithReservedCharacters(t *testing.T) {
	env := newTestEnv(t, false)
	env.source.set([][]string{
		sheetHeader,
		sheetRow("Split AC", "Cooling", "2024-06-09", "AC/12", "Inverter"),
		sheetRow("Window AC", "Cooling", "2024-06-08", "AC?7", "Compact"),
		sheetRow("Fan", "Cooling", "2024-06-07", "50%", "Pedestal"),
	}, nil)
	_, err := env.ws.Reload(context.Background())
	require.NoError(t, err)

	doc := parseHTML(t, env.get(t, "/"))
	hrefs := doc.Find(".product-card .product-image-container").Map(func(_ int, s *goquery.Selection) string {
		href, _ := s.Attr("href")
		return href
	})
	assert.Equal(t, []string{"/products/AC%2F12", "/products/AC%3F7", "/products/50%25"}, hrefs)

	for _, href := range hrefs {
		rec := env.get(t, href)
		require.Equal(t, http.StatusOK, rec.Code, href)

		page := parseHTML(t, rec)
		page.Find(".related-product-card").Each(func(_ int, s *goquery.Selection) {
			related, _ := s.Attr("href")
			assert.Equal(t, http.StatusOK, env.get(t, related).Code, related)
		})
	}

	page := parseHTML(t, env.get(t, "/products/AC%2F12"))
	assert.Equal(t, "Split AC", page.Find(".modal-product-name").Contents().First().Text())
	assert.Equal(t, 2, page.Find(".related-product-card").Length())
}

func TestIndexProductParamFirstInURLOrder(t *testing.T) {
	env := newTestEnv(t, false)
	doc := parseHTML(t, env.get(t, "/?productD4&productA1"))
	assert.Equal(t, []string{"D4"}, cardCodes(doc))
}

func TestAPIProducts(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.get(t, "/api/products?q=x")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp productsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "all", resp.Category)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "A1", resp.Products[0].ProductCode)
	assert.Equal(t, "B2", resp.Products[1].ProductCode)

	rec = env.get(t, "/api/products?category=Phones&q=phone")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Total, "the category field matches the query too")
}

func TestSuggestions(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.get(t, "/api/suggestions?q=x")

	var got []suggestion
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, []suggestion{{ProductCode: "A1", Name: "Phone X1"}, {ProductCode: "B2", Name: "Laptop X2"}}, got)
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.get(t, "/export.csv?category=Laptops")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))

	products, err := export.ReadCSV(rec.Body)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "B2", products[0].ProductCode)
}

func TestReloadReplacesWorkingSet(t *testing.T) {
	env := newTestEnv(t, false)
	env.source.set([][]string{sheetHeader, sheetRow("Tablet", "Tablets", "2024-06-09", "T1", "")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	doc := parseHTML(t, env.get(t, "/"))
	assert.Equal(t, []string{"T1"}, cardCodes(doc))

	assert.Equal(t, 1, doc.Find(".product-card").First().Find(".new-tag").Length())

	p, ok := catalog.FindByCode(env.ws.Products(), "T1")
	require.True(t, ok)
	assert.Equal(t, "No description available", p.Description)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":4`)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "plain text", summary("  plain\n text ", 50))
	assert.Equal(t, "Bold and list", summary("<b>Bold</b> and <ul><li>list</li></ul>", 50))
	assert.Equal(t, "abc…", summary("abcdef", 3))
}
