package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/plantora/storefront/internal/apiclient"
	"github.com/plantora/storefront/internal/middleware"
	"github.com/plantora/storefront/internal/models"
	"github.com/plantora/storefront/internal/ports"
	"github.com/plantora/storefront/internal/services"
	"github.com/plantora/storefront/internal/session"
	"github.com/plantora/storefront/pkg/config"
	"go.uber.org/zap"
)

type testApp struct {
	app    *App
	router *mux.Router
	cookie *session.CookieCodec

	auth  *ports.MockAuthAPI
	cart  *ports.MockCartAPI
	addrs *ports.MockAddressAPI
	store *ports.MockSessionStore
}

// newTestApp wires the app against a fake backend and mocked session
// dependencies. The metrics middleware is left out; the handlers
// themselves tolerate nil metrics.
func newTestApp(t *testing.T, ctrl *gomock.Controller, backend http.HandlerFunc) *testApp {
	t.Helper()

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	client := apiclient.New(server.URL, 5*time.Second, nil, nil)

	ta := &testApp{
		auth:  ports.NewMockAuthAPI(ctrl),
		cart:  ports.NewMockCartAPI(ctrl),
		addrs: ports.NewMockAddressAPI(ctrl),
		store: ports.NewMockSessionStore(ctrl),
	}

	manager := session.NewManager(ta.auth, ta.cart, ta.addrs, ta.store, nil, zap.NewNop())
	ta.cookie = session.NewCookieCodec("sf_session", "test-secret", time.Hour, false)

	cfg := &config.Config{FreeShippingThreshold: 500000, ShippingFee: 30000}
	ta.app = &App{
		config:    cfg,
		logger:    zap.NewNop(),
		sessions:  manager,
		cookies:   ta.cookie,
		products:  services.NewProductService(client),
		orders:    services.NewOrderService(client),
		payments:  services.NewPaymentService(client),
		admin:     services.NewAdminService(client),
		inventory: services.NewInventoryService(client),
	}

	ta.router = mux.NewRouter()
	ta.router.Use(middleware.Session(manager, ta.cookie))
	return ta
}

// loginCookie arranges the mocks so the next resolve yields an
// authenticated session, and returns the matching cookie.
func (ta *testApp) loginCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	if err := ta.cookie.Write(w, "sid-test"); err != nil {
		t.Fatalf("cookie write: %v", err)
	}

	ta.store.EXPECT().Get(gomock.Any(), "storefront:token:sid-test").Return([]byte(`"tok-test"`), nil)
	ta.auth.EXPECT().Profile(gomock.Any(), "tok-test").Return(user, nil)
	ta.store.EXPECT().Set(gomock.Any(), "storefront:user:sid-test", user).Return(nil)

	return w.Result().Cookies()[0]
}

func TestProductDetailRendersPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ta := newTestApp(t, ctrl, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"name":"Cây kim tiền","price":250000,"stock":4}`))
	})
	ta.router.HandleFunc("/products/{id:[0-9]+}", ta.app.ProductDetailHandler).Methods("GET")

	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/7", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Cây kim tiền") {
		t.Error("body missing product name")
	}
	if !strings.Contains(body, "250.000đ") {
		t.Error("body missing formatted price")
	}
}

func TestCartAddAnonymousRedirectsToLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No cart API expectations: the mutation must fail before any call.
	ta := newTestApp(t, ctrl, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called")
	})
	ta.router.HandleFunc("/cart/add", ta.app.CartAddHandler).Methods("POST")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader("product_id=1&quantity=1"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ta.router.ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login?next=/cart") {
		t.Errorf("Location = %q, want login redirect", loc)
	}
}

func TestCartPageShowsShippingRule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ta := newTestApp(t, ctrl, func(w http.ResponseWriter, r *http.Request) {})
	ta.router.HandleFunc("/cart", ta.app.CartHandler).Methods("GET")

	user := &models.User{ID: 7, Name: "An", Role: models.RoleUser}
	cookie := ta.loginCookie(t, user)

	ta.cart.EXPECT().Items(gomock.Any(), "tok-test").Return([]models.CartItem{
		{ID: 1, Product: models.Product{ID: 10, Name: "Sen đá", Price: 150000}, Quantity: 3},
	}, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.AddCookie(cookie)
	ta.router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	// 450.000 subtotal is under the threshold: flat fee applies.
	for _, want := range []string{"450.000đ", "30.000đ", "480.000đ"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestCartPageFreeShippingAtThreshold(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ta := newTestApp(t, ctrl, func(w http.ResponseWriter, r *http.Request) {})
	ta.router.HandleFunc("/cart", ta.app.CartHandler).Methods("GET")

	user := &models.User{ID: 7, Role: models.RoleUser}
	cookie := ta.loginCookie(t, user)

	ta.cart.EXPECT().Items(gomock.Any(), "tok-test").Return([]models.CartItem{
		{ID: 1, Product: models.Product{ID: 10, Price: 500000}, Quantity: 1},
	}, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.AddCookie(cookie)
	ta.router.ServeHTTP(w, r)

	body := w.Body.String()
	if !strings.Contains(body, "Phí vận chuyển</dt><dd>0đ</dd>") {
		t.Error("shipping row is not free at the threshold")
	}
	if strings.Contains(body, "530.000đ") {
		t.Error("flat fee applied at the free-shipping threshold")
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ta := newTestApp(t, ctrl, func(w http.ResponseWriter, r *http.Request) {})
	ta.router.HandleFunc("/login", ta.app.LoginHandler).Methods("POST")

	result := &models.AuthResult{Token: "tok-9", User: models.User{ID: 9, Role: models.RoleUser}}
	ta.auth.EXPECT().Login(gomock.Any(), "an@example.com", "secret").Return(result, nil)
	ta.store.EXPECT().Set(gomock.Any(), gomock.Any(), "tok-9").Return(nil)
	ta.store.EXPECT().Set(gomock.Any(), gomock.Any(), result.User).Return(nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=an%40example.com&password=secret&next=/cart"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ta.router.ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/cart" {
		t.Errorf("Location = %q, want /cart", loc)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "" {
		t.Fatalf("expected one session cookie, got %v", cookies)
	}
	// The cookie round-trips to the session id the manager created.
	rr := httptest.NewRequest(http.MethodGet, "/", nil)
	rr.AddCookie(cookies[0])
	if sid := ta.cookie.Read(rr); sid == "" {
		t.Error("cookie does not decode to a session id")
	}
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ta := newTestApp(t, ctrl, func(w http.ResponseWriter, r *http.Request) {})
	ta.router.HandleFunc("/login", ta.app.LoginHandler).Methods("POST")

	result := &models.AuthResult{Token: "tok-9", User: models.User{ID: 9}}
	ta.auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(result, nil)
	ta.store.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a%40b.com&password=x&next=https://evil.example.com"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ta.router.ServeHTTP(w, r)

	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want / for offsite next", loc)
	}
}

func TestAdminOrderStatusFailureKeepsServerTruth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// The backend rejects the transition; the next listing still serves the
	// previous status.
	ta := newTestApp(t, ctrl, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"chuyển trạng thái không hợp lệ"}`))
			return
		}
		w.Write([]byte(`{"orders":[{"orderId":42,"orderCode":"PL-42","status":"PENDING"}],"page":1,"totalItems":1,"totalPages":1}`))
	})
	ta.router.HandleFunc("/admin/orders", ta.app.AdminOrdersHandler).Methods("GET")
	ta.router.HandleFunc("/admin/orders/{id:[0-9]+}/status", ta.app.AdminOrderStatusHandler).Methods("POST")

	staff := &models.User{ID: 2, Role: models.RoleAdmin}
	ta.store.EXPECT().Get(gomock.Any(), "storefront:token:sid-test").Return([]byte(`"tok-test"`), nil).AnyTimes()
	ta.auth.EXPECT().Profile(gomock.Any(), "tok-test").Return(staff, nil).AnyTimes()
	ta.store.EXPECT().Set(gomock.Any(), "storefront:user:sid-test", staff).Return(nil).AnyTimes()

	cw := httptest.NewRecorder()
	if err := ta.cookie.Write(cw, "sid-test"); err != nil {
		t.Fatalf("cookie write: %v", err)
	}
	cookie := cw.Result().Cookies()[0]

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/admin/orders/42/status", strings.NewReader("status=COMPLETED"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(cookie)
	ta.router.ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/admin/orders?err=") {
		t.Errorf("Location = %q, want error redirect to /admin/orders", loc)
	}

	// Follow the redirect: the listing renders the server-confirmed status.
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, loc, nil)
	r.AddCookie(cookie)
	ta.router.ServeHTTP(w, r)

	body := w.Body.String()
	if !strings.Contains(body, "chuyển trạng thái không hợp lệ") {
		t.Error("body missing failure banner")
	}
	if !strings.Contains(body, `value="PENDING" selected`) {
		t.Error("order does not show its previous status")
	}
}

func TestAdminOrdersPaginationKeepsStatusFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ta := newTestApp(t, ctrl, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orders":[{"orderId":1,"orderCode":"PL-1","status":"PENDING"}],"page":1,"totalItems":25,"totalPages":2}`))
	})
	ta.router.HandleFunc("/admin/orders", ta.app.AdminOrdersHandler).Methods("GET")

	staff := &models.User{ID: 2, Role: models.RoleAdmin}
	ta.store.EXPECT().Get(gomock.Any(), "storefront:token:sid-test").Return([]byte(`"tok-test"`), nil).AnyTimes()
	ta.auth.EXPECT().Profile(gomock.Any(), "tok-test").Return(staff, nil).AnyTimes()
	ta.store.EXPECT().Set(gomock.Any(), "storefront:user:sid-test", staff).Return(nil).AnyTimes()

	cw := httptest.NewRecorder()
	if err := ta.cookie.Write(cw, "sid-test"); err != nil {
		t.Fatalf("cookie write: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/admin/orders?status=PENDING", nil)
	r.AddCookie(cw.Result().Cookies()[0])
	ta.router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `?page=2&amp;status=PENDING`) {
		t.Error("pagination link drops the status filter")
	}
}

func TestCartPageOutsideSessionMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ta := newTestApp(t, ctrl, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called")
	})

	// No router, no middleware: the handler must fall back to a detached
	// anonymous session instead of panicking on a nil container.
	w := httptest.NewRecorder()
	ta.app.CartHandler(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Giỏ hàng trống") {
		t.Error("expected the empty cart page")
	}
}

func TestHealthDegradedWhenStoreDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ta := newTestApp(t, ctrl, func(w http.ResponseWriter, r *http.Request) {})

	ta.store.EXPECT().Ping(gomock.Any()).Return(nil)
	w := httptest.NewRecorder()
	ta.app.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	ta.store.EXPECT().Ping(gomock.Any()).Return(context.DeadlineExceeded)
	w = httptest.NewRecorder()
	ta.app.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
