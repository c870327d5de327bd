package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/plantora/storefront/internal/models"
	"github.com/plantora/storefront/internal/services"
	"github.com/plantora/storefront/internal/session"
	"github.com/plantora/storefront/pkg/money"
	"strconv"
)

// HomeHandler renders the landing page with featured products.
func (a *App) HomeHandler(w http.ResponseWriter, r *http.Request) {
	products, _, err := a.products.List(r.Context(), services.ProductFilter{Page: 1, Size: 8})
	if err != nil {
		a.render(w, r, "home", "Trang chủ", map[string]any{"Error": err.Error()})
		return
	}

	categories, err := a.products.Categories(r.Context())
	if err != nil {
		// Navigation degrades to no category links
		categories = nil
	}

	a.render(w, r, "home", "Trang chủ", map[string]any{
		"Products":   products,
		"Categories": categories,
	})
}

// ProductListHandler renders a catalog page filtered by search, category
// and page number.
func (a *App) ProductListHandler(w http.ResponseWriter, r *http.Request) {
	filter := services.ProductFilter{
		Page:     queryInt(r, "page", 1),
		Size:     12,
		Search:   r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}

	products, pageInfo, err := a.products.List(r.Context(), filter)
	if err != nil {
		a.render(w, r, "products", "Sản phẩm", map[string]any{"Error": err.Error(), "Filter": filter})
		return
	}

	categories, err := a.products.Categories(r.Context())
	if err != nil {
		categories = nil
	}

	a.render(w, r, "products", "Sản phẩm", map[string]any{
		"Products":   products,
		"Categories": categories,
		"Filter":     filter,
		"Page":       pageInfo,
	})
}

// ProductDetailHandler renders one product.
func (a *App) ProductDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := a.products.Get(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	a.metrics.RecordProductView(r.Context(), id)

	a.render(w, r, "product", product.Name, map[string]any{"Product": product})
}

// LoginFormHandler renders the login page.
func (a *App) LoginFormHandler(w http.ResponseWriter, r *http.Request) {
	if currentSession(r).LoggedIn() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.render(w, r, "login", "Đăng nhập", map[string]any{"Next": r.URL.Query().Get("next")})
}

// LoginHandler signs the user in and starts a session.
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")
	next := safeNext(r.FormValue("next"))

	sess, err := a.sessions.Login(r.Context(), email, password)
	if err != nil {
		a.redirectErr(w, r, "/login?next="+url.QueryEscape(next), err)
		return
	}
	if err := a.cookies.Write(w, sess.ID); err != nil {
		a.redirectErr(w, r, "/login", err)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// RegisterFormHandler renders the registration page.
func (a *App) RegisterFormHandler(w http.ResponseWriter, r *http.Request) {
	if currentSession(r).LoggedIn() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.render(w, r, "register", "Đăng ký", nil)
}

// RegisterHandler creates an account and signs the user in.
func (a *App) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")

	sess, err := a.sessions.Register(r.Context(), name, email, password)
	if err != nil {
		a.redirectErr(w, r, "/register", err)
		return
	}
	if err := a.cookies.Write(w, sess.ID); err != nil {
		a.redirectErr(w, r, "/register", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler destroys the session.
func (a *App) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := a.sessions.Logout(r.Context(), sess); err != nil {
		a.logger.Warn("logout cleanup failed")
	}
	a.cookies.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CartHandler renders the cart with subtotal, shipping fee and total.
func (a *App) CartHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := sess.Cart.Load(r.Context()); err != nil {
		a.render(w, r, "cart", "Giỏ hàng", map[string]any{"Error": err.Error()})
		return
	}

	subtotal := sess.Cart.Total()
	shipping := money.ShippingFee(subtotal, a.config.FreeShippingThreshold, a.config.ShippingFee)

	a.render(w, r, "cart", "Giỏ hàng", map[string]any{
		"Items":    sess.Cart.Items(),
		"Subtotal": subtotal,
		"Shipping": shipping,
		"Total":    subtotal + shipping,
	})
}

// cartRedirect routes a cart mutation failure: login-required failures go
// to the login page, the rest surface as a cart banner.
func (a *App) cartRedirect(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	if errors.Is(err, session.ErrLoginRequired) {
		a.redirectErr(w, r, "/login?next=/cart", err)
		return
	}
	a.redirectErr(w, r, "/cart", err)
}

// CartAddHandler adds a product to the cart.
func (a *App) CartAddHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	err := sess.Cart.Add(r.Context(), formInt64(r, "product_id"), formInt(r, "quantity"))
	a.cartRedirect(w, r, err)
}

// CartUpdateHandler changes an item quantity.
func (a *App) CartUpdateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	err := sess.Cart.UpdateQuantity(r.Context(), formInt64(r, "item_id"), formInt(r, "quantity"))
	a.cartRedirect(w, r, err)
}

// CartRemoveHandler removes an item.
func (a *App) CartRemoveHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	err := sess.Cart.Remove(r.Context(), formInt64(r, "item_id"))
	a.cartRedirect(w, r, err)
}

// CartClearHandler empties the cart.
func (a *App) CartClearHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	err := sess.Cart.Clear(r.Context())
	a.cartRedirect(w, r, err)
}

// AddressListHandler renders the address book.
func (a *App) AddressListHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := sess.Addresses.Load(r.Context()); err != nil {
		a.render(w, r, "addresses", "Sổ địa chỉ", map[string]any{"Error": err.Error()})
		return
	}
	a.render(w, r, "addresses", "Sổ địa chỉ", map[string]any{
		"Addresses": sess.Addresses.Addresses(),
	})
}

func addressRequestFromForm(r *http.Request) models.AddressRequest {
	return models.AddressRequest{
		Address:   r.FormValue("address"),
		WardCode:  r.FormValue("ward_code"),
		District:  r.FormValue("district"),
		Province:  r.FormValue("province"),
		Country:   r.FormValue("country"),
		IsDefault: r.FormValue("is_default") == "on",
	}
}

// AddressCreateHandler adds an address.
func (a *App) AddressCreateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := sess.Addresses.Load(r.Context()); err != nil {
		a.redirectErr(w, r, "/addresses", err)
		return
	}
	if err := sess.Addresses.Add(r.Context(), addressRequestFromForm(r)); err != nil {
		a.redirectErr(w, r, "/addresses", err)
		return
	}
	a.redirectOK(w, r, "/addresses", "Đã thêm địa chỉ")
}

// AddressUpdateHandler modifies an address.
func (a *App) AddressUpdateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := sess.Addresses.Load(r.Context()); err != nil {
		a.redirectErr(w, r, "/addresses", err)
		return
	}
	if err := sess.Addresses.Update(r.Context(), id, addressRequestFromForm(r)); err != nil {
		a.redirectErr(w, r, "/addresses", err)
		return
	}
	a.redirectOK(w, r, "/addresses", "Đã cập nhật địa chỉ")
}

// AddressDeleteHandler removes an address.
func (a *App) AddressDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := sess.Addresses.Load(r.Context()); err != nil {
		a.redirectErr(w, r, "/addresses", err)
		return
	}
	if err := sess.Addresses.Delete(r.Context(), id); err != nil {
		a.redirectErr(w, r, "/addresses", err)
		return
	}
	a.redirectOK(w, r, "/addresses", "Đã xóa địa chỉ")
}

// AddressSetDefaultHandler marks an address as the account default.
func (a *App) AddressSetDefaultHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := sess.Addresses.Load(r.Context()); err != nil {
		a.redirectErr(w, r, "/addresses", err)
		return
	}
	if err := sess.Addresses.SetDefault(r.Context(), id); err != nil {
		a.redirectErr(w, r, "/addresses", err)
		return
	}
	a.redirectOK(w, r, "/addresses", "Đã đặt địa chỉ mặc định")
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || next[0] != '/' {
		return "/"
	}
	return next
}
