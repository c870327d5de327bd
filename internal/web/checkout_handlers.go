package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/plantora/storefront/internal/models"
	"github.com/plantora/storefront/pkg/money"
)

var errNoAddress = errors.New("vui lòng chọn địa chỉ giao hàng")

// CheckoutHandler renders the checkout page: cart summary, address
// selection and payment method choice.
func (a *App) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	if err := sess.Cart.Load(r.Context()); err != nil {
		a.render(w, r, "checkout", "Thanh toán", map[string]any{"Error": err.Error()})
		return
	}
	if len(sess.Cart.Items()) == 0 {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	if err := sess.Addresses.Load(r.Context()); err != nil {
		a.render(w, r, "checkout", "Thanh toán", map[string]any{"Error": err.Error()})
		return
	}

	subtotal := sess.Cart.Total()
	shipping := money.ShippingFee(subtotal, a.config.FreeShippingThreshold, a.config.ShippingFee)

	a.render(w, r, "checkout", "Thanh toán", map[string]any{
		"Items":     sess.Cart.Items(),
		"Subtotal":  subtotal,
		"Shipping":  shipping,
		"Total":     subtotal + shipping,
		"Addresses": sess.Addresses.Addresses(),
		"Selected":  sess.Addresses.Selected(),
	})
}

// CheckoutSelectAddressHandler picks a shipping address for this order
// without changing the account default.
func (a *App) CheckoutSelectAddressHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := sess.Addresses.Load(r.Context()); err != nil {
		a.redirectErr(w, r, "/checkout", err)
		return
	}
	if err := sess.Addresses.Select(r.Context(), formInt64(r, "address_id")); err != nil {
		a.redirectErr(w, r, "/checkout", err)
		return
	}
	http.Redirect(w, r, "/checkout", http.StatusSeeOther)
}

// PlaceOrderHandler creates the order and starts the chosen payment path:
// the online gateway gets a checkout link and a redirect, cash on delivery
// goes straight to the success page.
func (a *App) PlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	if err := sess.Addresses.Load(r.Context()); err != nil {
		a.redirectErr(w, r, "/checkout", err)
		return
	}
	selected := sess.Addresses.Selected()
	if selected == nil {
		a.redirectErr(w, r, "/checkout", errNoAddress)
		return
	}

	method := r.FormValue("payment_method")
	if method != models.PaymentPayOS {
		method = models.PaymentCOD
	}

	order, err := a.orders.Create(r.Context(), sess.Token, models.CreateOrderRequest{
		AddressID:     selected.AddressID,
		PaymentMethod: method,
		Note:          r.FormValue("note"),
	})
	if err != nil {
		a.redirectErr(w, r, "/checkout", err)
		return
	}
	a.metrics.RecordOrderCreated(r.Context(), method)

	if method == models.PaymentPayOS {
		link, err := a.payments.CreatePayOSLink(r.Context(), sess.Token, order.OrderID)
		a.metrics.RecordPaymentLink(r.Context(), err == nil)
		if err != nil {
			a.redirectErr(w, r, "/checkout", err)
			return
		}
		http.Redirect(w, r, link.CheckoutURL, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/orders/success?code="+url.QueryEscape(order.OrderCode), http.StatusSeeOther)
}

// OrderSuccessHandler renders the post-checkout confirmation.
func (a *App) OrderSuccessHandler(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, "order_success", "Đặt hàng thành công", map[string]any{
		"OrderCode": r.URL.Query().Get("code"),
	})
}

// OrderHistoryHandler renders the user's orders.
func (a *App) OrderHistoryHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	orders, err := a.orders.ListMine(r.Context(), sess.Token)
	if err != nil {
		a.render(w, r, "orders", "Đơn hàng của tôi", map[string]any{"Error": err.Error()})
		return
	}
	a.render(w, r, "orders", "Đơn hàng của tôi", map[string]any{"Orders": orders})
}

// OrderDetailHandler renders one order.
func (a *App) OrderDetailHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	order, err := a.orders.Get(r.Context(), sess.Token, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	a.render(w, r, "order_detail", "Đơn hàng "+order.OrderCode, map[string]any{"Order": order})
}
