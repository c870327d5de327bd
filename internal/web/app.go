// Package web is the view layer: it renders state held by the session
// containers and the backend collections, collects form input, and invokes
// container and service methods. Failures surface as inline banners.
package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/plantora/storefront/internal/metrics"
	"github.com/plantora/storefront/internal/middleware"
	"github.com/plantora/storefront/internal/services"
	"github.com/plantora/storefront/internal/session"
	"github.com/plantora/storefront/pkg/config"
	"go.uber.org/zap"
)

// App holds application dependencies
type App struct {
	config    *config.Config
	logger    *zap.Logger
	metrics   *metrics.AppMetrics
	sessions  *session.Manager
	cookies   *session.CookieCodec
	products  *services.ProductService
	orders    *services.OrderService
	payments  *services.PaymentService
	admin     *services.AdminService
	inventory *services.InventoryService
}

// NewApp creates a new application instance
func NewApp(
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.AppMetrics,
	sessions *session.Manager,
	cookies *session.CookieCodec,
	ps *services.ProductService,
	os *services.OrderService,
	pay *services.PaymentService,
	admin *services.AdminService,
	inv *services.InventoryService,
) *App {
	return &App{
		config:    cfg,
		logger:    log,
		metrics:   m,
		sessions:  sessions,
		cookies:   cookies,
		products:  ps,
		orders:    os,
		payments:  pay,
		admin:     admin,
		inventory: inv,
	}
}

// SetupRoutes configures the HTTP routes
func (a *App) SetupRoutes(r *mux.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(a.logger))
	r.Use(middleware.Metrics(a.metrics, a.logger))
	r.Use(middleware.Session(a.sessions, a.cookies))

	// Static assets
	r.PathPrefix("/static/").Handler(StaticHandler())

	// Storefront
	r.HandleFunc("/", a.HomeHandler).Methods("GET")
	r.HandleFunc("/products", a.ProductListHandler).Methods("GET")
	r.HandleFunc("/products/{id:[0-9]+}", a.ProductDetailHandler).Methods("GET")

	// Auth
	r.HandleFunc("/login", a.LoginFormHandler).Methods("GET")
	r.HandleFunc("/login", a.LoginHandler).Methods("POST")
	r.HandleFunc("/register", a.RegisterFormHandler).Methods("GET")
	r.HandleFunc("/register", a.RegisterHandler).Methods("POST")
	r.HandleFunc("/logout", a.LogoutHandler).Methods("POST")

	// Cart
	r.HandleFunc("/cart", a.CartHandler).Methods("GET")
	r.HandleFunc("/cart/add", a.CartAddHandler).Methods("POST")
	r.HandleFunc("/cart/update", a.CartUpdateHandler).Methods("POST")
	r.HandleFunc("/cart/remove", a.CartRemoveHandler).Methods("POST")
	r.HandleFunc("/cart/clear", a.CartClearHandler).Methods("POST")

	// Account: addresses, checkout and order history
	account := r.NewRoute().Subrouter()
	account.Use(middleware.RequireUser)
	account.HandleFunc("/addresses", a.AddressListHandler).Methods("GET")
	account.HandleFunc("/addresses", a.AddressCreateHandler).Methods("POST")
	account.HandleFunc("/addresses/{id:[0-9]+}/update", a.AddressUpdateHandler).Methods("POST")
	account.HandleFunc("/addresses/{id:[0-9]+}/delete", a.AddressDeleteHandler).Methods("POST")
	account.HandleFunc("/addresses/{id:[0-9]+}/default", a.AddressSetDefaultHandler).Methods("POST")
	account.HandleFunc("/checkout", a.CheckoutHandler).Methods("GET")
	account.HandleFunc("/checkout/address", a.CheckoutSelectAddressHandler).Methods("POST")
	account.HandleFunc("/checkout", a.PlaceOrderHandler).Methods("POST")
	account.HandleFunc("/orders", a.OrderHistoryHandler).Methods("GET")
	account.HandleFunc("/orders/{id:[0-9]+}", a.OrderDetailHandler).Methods("GET")
	account.HandleFunc("/orders/success", a.OrderSuccessHandler).Methods("GET")

	// Back office
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireStaff)
	admin.HandleFunc("", a.AdminDashboardHandler).Methods("GET")
	admin.HandleFunc("/users", a.AdminUsersHandler).Methods("GET")
	admin.HandleFunc("/users", a.AdminUserCreateHandler).Methods("POST")
	admin.HandleFunc("/users/{id:[0-9]+}/update", a.AdminUserUpdateHandler).Methods("POST")
	admin.HandleFunc("/users/{id:[0-9]+}/delete", a.AdminUserDeleteHandler).Methods("POST")
	admin.HandleFunc("/roles", a.AdminRolesHandler).Methods("GET")
	admin.HandleFunc("/roles", a.AdminRoleCreateHandler).Methods("POST")
	admin.HandleFunc("/roles/{id:[0-9]+}/update", a.AdminRoleUpdateHandler).Methods("POST")
	admin.HandleFunc("/roles/{id:[0-9]+}/delete", a.AdminRoleDeleteHandler).Methods("POST")
	admin.HandleFunc("/categories", a.AdminCategoriesHandler).Methods("GET")
	admin.HandleFunc("/categories", a.AdminCategoryCreateHandler).Methods("POST")
	admin.HandleFunc("/categories/{id:[0-9]+}/update", a.AdminCategoryUpdateHandler).Methods("POST")
	admin.HandleFunc("/categories/{id:[0-9]+}/delete", a.AdminCategoryDeleteHandler).Methods("POST")
	admin.HandleFunc("/products", a.AdminProductsHandler).Methods("GET")
	admin.HandleFunc("/products", a.AdminProductCreateHandler).Methods("POST")
	admin.HandleFunc("/products/{id:[0-9]+}/update", a.AdminProductUpdateHandler).Methods("POST")
	admin.HandleFunc("/products/{id:[0-9]+}/delete", a.AdminProductDeleteHandler).Methods("POST")
	admin.HandleFunc("/orders", a.AdminOrdersHandler).Methods("GET")
	admin.HandleFunc("/orders/{id:[0-9]+}/status", a.AdminOrderStatusHandler).Methods("POST")
	admin.HandleFunc("/inventory", a.AdminInventoryHandler).Methods("GET")
	admin.HandleFunc("/inventory", a.AdminInventoryCreateHandler).Methods("POST")
	admin.HandleFunc("/inventory/{id:[0-9]+}/update", a.AdminInventoryUpdateHandler).Methods("POST")
	admin.HandleFunc("/inventory/{id:[0-9]+}/delete", a.AdminInventoryDeleteHandler).Methods("POST")

	// Health
	r.HandleFunc("/health", a.HealthHandler).Methods("GET")
}

// HealthHandler reports liveness, including the session store connection.
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := a.sessions.Ping(r.Context()); err != nil {
		status = "degraded: session store unreachable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"status":"` + status + `"}`))
}
