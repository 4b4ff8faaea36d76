package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"catalogview/internal/catalog"
	"catalogview/internal/clock"
	"catalogview/internal/export"
	"catalogview/internal/model"
	"catalogview/internal/observability"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionCookie   = "catalog_session"
	relatedLimit    = 4
	suggestionLimit = 5
	summaryLength   = 200
)

// Server renders the catalog. Sessions may be nil, in which case selections
// live only in the query string.
type Server struct {
	ws       *catalog.WorkingSet
	sessions *SessionStore
	clock    clock.Clock
	baseURL  string
	logger   *zap.Logger
	pages    map[string]*template.Template
}

func NewServer(ws *catalog.WorkingSet, sessions *SessionStore, clk clock.Clock, baseURL string, logger *zap.Logger) (*Server, error) {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	funcs := template.FuncMap{"price": price}
	pages := make(map[string]*template.Template)
	for _, page := range []string{"index.html", "product.html"} {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		pages[page] = t
	}
	return &Server{ws: ws, sessions: sessions, clock: clk, baseURL: baseURL, logger: logger, pages: pages}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/products/{code}", s.handleProduct)
	r.Get("/api/products", s.handleAPIProducts)
	r.Get("/api/suggestions", s.handleSuggestions)
	r.Get("/export.csv", s.handleExport)
	r.With(httprate.LimitByIP(6, time.Minute)).Post("/reload", s.handleReload)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type card struct {
	model.Product
	IsNew     bool
	DetailURL string
}

type indexPage struct {
	Title      string
	Category   string
	Query      string
	Categories []string
	Cards      []card
	Error      string
}

type productPage struct {
	Title    string
	Category string
	Query    string
	Product  model.Product
	IsNew    bool
	Summary  string
	ShareURL string
	Related  []card
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := s.sessionID(w, r)

	var st ViewState
	if s.sessions != nil {
		var err error
		if st, err = s.sessions.Get(ctx, sessionID); err != nil {
			s.logger.Warn("failed to read view state", zap.String("session", sessionID), zap.Error(err))
		}
	}
	st = applyParams(st, r.URL)

	all := s.ws.Products()
	view := catalog.View{Category: st.Category, Query: st.Query}.Replace(all)
	observability.FilterResults.Observe(float64(len(view.Filtered)))

	if s.sessions != nil {
		if err := s.sessions.Save(ctx, sessionID, ViewState{Category: view.Category, Query: view.Query}); err != nil {
			s.logger.Warn("failed to save view state", zap.String("session", sessionID), zap.Error(err))
		}
	}

	page := indexPage{
		Title:      "Catalog",
		Category:   view.Category,
		Query:      view.Query,
		Categories: catalog.Categories(all),
		Cards:      s.cards(view.Filtered),
	}
	if err := s.ws.LastError(); err != nil && len(all) == 0 {
		page.Error = err.Error()
	}
	s.render(w, "index.html", page)
}

// applyParams overlays the query string on the stored state. A product<CODE>
// parameter replaces the query with CODE.
func applyParams(st ViewState, u *url.URL) ViewState {
	params := u.Query()
	if params.Has("category") {
		st.Category = params.Get("category")
	}
	if params.Has("q") {
		st.Query = params.Get("q")
	}
	if code, ok := catalog.CodeFromQuery(u.RawQuery); ok {
		st.Query = code
	}
	if st.Category == "" {
		st.Category = catalog.AllCategories
	}
	return st
}

func (s *Server) cards(products []model.Product) []card {
	now := s.clock.Now()
	out := make([]card, len(products))
	for i, p := range products {
		out[i] = card{
			Product:   p,
			IsNew:     catalog.IsNew(p.CreatedTime, now),
			DetailURL: detailURL(p.ProductCode),
		}
	}
	return out
}

func detailURL(code string) string {
	return "/products/" + url.PathEscape(code)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	// chi routes on RawPath when the request carries one, so an encoded "/"
	// arrives as %2F.
	code := chi.URLParam(r, "code")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(code); err == nil {
			code = unescaped
		}
	}
	all := s.ws.Products()
	p, ok := catalog.FindByCode(all, code)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.render(w, "product.html", productPage{
		Title:    p.Name,
		Category: catalog.AllCategories,
		Product:  p,
		IsNew:    catalog.IsNew(p.CreatedTime, s.clock.Now()),
		Summary:  summary(p.Description, summaryLength),
		ShareURL: catalog.ShareURL(s.baseURL, p.ProductCode),
		Related:  s.cards(catalog.Related(all, p, relatedLimit)),
	})
}

type productsResponse struct {
	Category string          `json:"category"`
	Query    string          `json:"query"`
	Total    int             `json:"total"`
	Products []model.Product `json:"products"`
}

func (s *Server) handleAPIProducts(w http.ResponseWriter, r *http.Request) {
	st := applyParams(ViewState{}, r.URL)
	products := catalog.Filter(s.ws.Products(), st.Category, st.Query)
	observability.FilterResults.Observe(float64(len(products)))

	writeJSON(w, http.StatusOK, productsResponse{
		Category: st.Category,
		Query:    st.Query,
		Total:    len(products),
		Products: products,
	})
}

type suggestion struct {
	ProductCode string `json:"productCode"`
	Name        string `json:"name"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	matches := catalog.Suggest(s.ws.Products(), r.URL.Query().Get("q"), suggestionLimit)
	out := make([]suggestion, len(matches))
	for i, p := range matches {
		out[i] = suggestion{ProductCode: p.ProductCode, Name: p.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	st := applyParams(ViewState{}, r.URL)
	products := catalog.Filter(s.ws.Products(), st.Category, st.Query)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="catalog.csv"`)
	if err := export.WriteCSV(w, products); err != nil {
		s.logger.Error("csv export failed", zap.Error(err))
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ws.Reload(r.Context()); err != nil {
		s.logger.Warn("reload failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if len(s.ws.Products()) == 0 {
		status := "not loaded"
		if err := s.ws.LastError(); err != nil {
			status = err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": status})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"products":  len(s.ws.Products()),
		"loaded_at": s.ws.LoadedAt(),
	})
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages[page].ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("render failed", zap.String("page", page), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func price(p model.Product) string {
	return "₹" + p.PriceMin + " ~ ₹" + p.PriceMax
}

// summary flattens an HTML or plain description to at most n runes of text.
func summary(description string, n int) string {
	text := description
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(description)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
