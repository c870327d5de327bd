package web

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/plantora/storefront/internal/middleware"
	"github.com/plantora/storefront/internal/models"
	"github.com/plantora/storefront/internal/session"
	"github.com/plantora/storefront/pkg/money"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"vnd": money.FormatVND,
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
}

// pages maps a page name to its parsed template set (layout + page).
var pages = mustParsePages(
	"home", "products", "product", "cart", "checkout",
	"login", "register", "addresses",
	"orders", "order_detail", "order_success",
	"admin_dashboard", "admin_users", "admin_roles", "admin_categories",
	"admin_products", "admin_orders", "admin_inventory",
)

func mustParsePages(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t := template.Must(
			template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS,
				"templates/layout.html", "templates/"+name+".html"),
		)
		out[name] = t
	}
	return out
}

// page is the data every template receives. Per-page payloads hang off
// Data; the rest feeds the shared layout.
type page struct {
	Title     string
	User      *models.User
	CartCount int
	Error     string
	Notice    string
	Data      any
}

// render writes a page. The error banner and notice come from the query
// string so handlers can redirect after POST.
func (a *App) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	sess := middleware.SessionFrom(r.Context())

	p := page{
		Title:  title,
		Error:  r.URL.Query().Get("err"),
		Notice: r.URL.Query().Get("ok"),
		Data:   data,
	}
	// Handlers that fail before a redirect pass the failure in their data
	if m, ok := data.(map[string]any); ok {
		if msg, ok := m["Error"].(string); ok && msg != "" {
			p.Error = msg
		}
	}
	if sess != nil {
		p.User = sess.User
		p.CartCount = sess.Cart.ItemCount()
	}

	tmpl, ok := pages[name]
	if !ok {
		a.logger.Error("unknown template", zap.String("name", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", p); err != nil {
		a.logger.Error("template render failed", zap.String("name", name), zap.Error(err))
	}
}

// redirectErr redirects back to path with the failure message in the
// banner query param.
func (a *App) redirectErr(w http.ResponseWriter, r *http.Request, path string, err error) {
	a.logger.Warn("operation failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.RequestIDFrom(r.Context())),
		zap.Error(err),
	)
	http.Redirect(w, r, path+joiner(path)+"err="+url.QueryEscape(err.Error()), http.StatusSeeOther)
}

// redirectOK redirects to path with a notice.
func (a *App) redirectOK(w http.ResponseWriter, r *http.Request, path, notice string) {
	http.Redirect(w, r, path+joiner(path)+"ok="+url.QueryEscape(notice), http.StatusSeeOther)
}

func joiner(path string) string {
	for _, c := range path {
		if c == '?' {
			return "&"
		}
	}
	return "?"
}

// currentSession returns the request's session, or a detached anonymous one
// when the handler runs outside the session middleware.
func currentSession(r *http.Request) *session.Session {
	if sess := middleware.SessionFrom(r.Context()); sess != nil {
		return sess
	}
	return session.Anonymous()
}

// formInt64 parses a form field as int64; 0 when absent or malformed.
func formInt64(r *http.Request, field string) int64 {
	v, _ := strconv.ParseInt(r.FormValue(field), 10, 64)
	return v
}

// formInt parses a form field as int; 0 when absent or malformed.
func formInt(r *http.Request, field string) int {
	v, _ := strconv.Atoi(r.FormValue(field))
	return v
}

// queryInt parses a query param as int with a default.
func queryInt(r *http.Request, field string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(field))
	if err != nil || v < 1 {
		return def
	}
	return v
}
