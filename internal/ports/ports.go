// Package ports declares the interfaces the session containers depend on,
// decoupling them from the concrete HTTP services and the redis store.
package ports

import (
	"context"
	"errors"

	"github.com/plantora/storefront/internal/models"
)

//go:generate mockgen -source=ports.go -destination=mocks.go -package=ports

// ErrNotFound is returned by a SessionStore when a key has no value.
var ErrNotFound = errors.New("session store: key not found")

// AuthAPI is the slice of the backend used by the auth container.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*models.AuthResult, error)
	Profile(ctx context.Context, token string) (*models.User, error)
}

// CartAPI is the slice of the backend used by the cart container.
type CartAPI interface {
	Items(ctx context.Context, token string) ([]models.CartItem, error)
	Add(ctx context.Context, token string, productID int64, quantity int) error
	UpdateQuantity(ctx context.Context, token string, itemID int64, quantity int) error
	Remove(ctx context.Context, token string, itemID int64) error
	Clear(ctx context.Context, token string) error
}

// AddressAPI is the slice of the backend used by the address container.
type AddressAPI interface {
	List(ctx context.Context, token string) ([]models.Address, error)
	Create(ctx context.Context, token string, req models.AddressRequest) error
	Update(ctx context.Context, token string, addressID int64, req models.AddressRequest) error
	Delete(ctx context.Context, token string, addressID int64) error
	SetDefault(ctx context.Context, token string, addressID int64) error
}

// SessionStore persists session state (token and user snapshot) between
// requests under fixed keys with a TTL.
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
