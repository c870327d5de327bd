package models

import "time"

// Role values as served by the backend.
const (
	RoleUser    = "USER"
	RoleAdmin   = "ADMIN"
	RoleStaff   = "STAFF"
	RoleShipper = "SHIPPER"
)

// Order status values as served by the backend.
const (
	OrderPending   = "PENDING"
	OrderPaid      = "PAID"
	OrderShipped   = "SHIPPED"
	OrderCompleted = "COMPLETED"
	OrderCanceled  = "CANCELED"
)

// Payment methods accepted at checkout.
const (
	PaymentPayOS = "PAYOS"
	PaymentCOD   = "COD"
)

// OrderStatuses lists the legal status values in display order.
var OrderStatuses = []string{OrderPending, OrderPaid, OrderShipped, OrderCompleted, OrderCanceled}

// User represents a user account as mirrored from the backend.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// IsStaff reports whether the user may enter the back office.
func (u *User) IsStaff() bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleAdmin, RoleStaff, RoleShipper:
		return true
	}
	return false
}

// AuthResult is the backend's login/register response.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Product represents a catalog product. Stock is display-only; the
// authoritative value lives server-side.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	CategoryID  int64   `json:"categoryId,omitempty"`
	Stock       int     `json:"stock"`
	Rating      float64 `json:"rating"`
}

// CartItem represents one line of the user's cart.
type CartItem struct {
	ID        int64     `json:"id"`
	Product   Product   `json:"product"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Subtotal is the line price, price times quantity.
func (ci CartItem) Subtotal() float64 {
	return ci.Product.Price * float64(ci.Quantity)
}

// Address represents a shipping address. At most one address per user
// carries IsDefault; the backend enforces that invariant.
type Address struct {
	AddressID int64  `json:"addressId"`
	Address   string `json:"address"`
	WardCode  string `json:"wardCode"`
	District  string `json:"district"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

// OrderItem represents one line of a placed order.
type OrderItem struct {
	ID       int64   `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order represents a placed order. The backend is inconsistent about the
// total field name across endpoints, so all three candidates are mirrored
// and resolved through Total.
type Order struct {
	OrderID       int64       `json:"orderId"`
	OrderCode     string      `json:"orderCode"`
	Status        string      `json:"status"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	GrandTotal    *float64    `json:"grandTotal,omitempty"`
	TotalAmount   *float64    `json:"totalAmount,omitempty"`
	TotalPrice    *float64    `json:"totalPrice,omitempty"`
	OrderItems    []OrderItem `json:"orderItems"`
	CreatedAt     time.Time   `json:"createdAt,omitzero"`
}

// Total resolves the order total from the first populated candidate field.
// Priority: grandTotal, totalAmount, totalPrice. Grand total is the value
// served by the newest endpoints, the others are legacy names.
func (o *Order) Total() float64 {
	for _, v := range []*float64{o.GrandTotal, o.TotalAmount, o.TotalPrice} {
		if v != nil {
			return *v
		}
	}
	return 0
}

// Category is a catalog category managed from the admin console.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Role is a role record managed from the admin console.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Inventory is a stock record for a product.
type Inventory struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// PaymentLink is the response of the payment-link endpoint.
type PaymentLink struct {
	CheckoutURL string `json:"checkoutUrl"`
	OrderCode   string `json:"orderCode,omitempty"`
}

// Page describes the pagination state of an admin collection view.
type Page struct {
	Number     int `json:"page"`
	Size       int `json:"size"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// CreateOrderRequest is the payload for placing an order from the cart.
type CreateOrderRequest struct {
	AddressID     int64  `json:"addressId"`
	PaymentMethod string `json:"paymentMethod"`
	Note          string `json:"note,omitempty"`
}

// AddressRequest is the payload for creating or updating an address.
type AddressRequest struct {
	Address   string `json:"address"`
	WardCode  string `json:"wardCode"`
	District  string `json:"district"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}
