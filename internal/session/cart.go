package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/plantora/storefront/internal/metrics"
	"github.com/plantora/storefront/internal/models"
	"github.com/plantora/storefront/internal/ports"
	"go.uber.org/zap"
)

// Cart mirrors the server-side cart for one session. Invariant: items
// always reflect the last successful full fetch; no speculative local
// update survives past the refetch that follows every mutation.
type Cart struct {
	mu      sync.Mutex
	api     ports.CartAPI
	token   string
	userID  int64
	items   []models.CartItem
	metrics *metrics.AppMetrics
	logger  *zap.Logger
}

func newCart(api ports.CartAPI, token string, userID int64, m *metrics.AppMetrics, log *zap.Logger) *Cart {
	return &Cart{api: api, token: token, userID: userID, metrics: m, logger: log}
}

// requireUser fails fast before any network call when the session has no
// authenticated user.
func (c *Cart) requireUser() error {
	if c.userID == 0 {
		return fmt.Errorf("cannot modify cart: %w", ErrLoginRequired)
	}
	return nil
}

// Load fetches the full cart and replaces local state. Anonymous sessions
// load an empty cart without touching the network.
func (c *Cart) Load(ctx context.Context) error {
	if c.userID == 0 {
		return nil
	}
	return c.refetch(ctx)
}

func (c *Cart) refetch(ctx context.Context) error {
	items, err := c.api.Items(ctx, c.token)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	c.metrics.RecordCartSize(ctx, len(items))
	return nil
}

// Items returns a copy of the current cart contents.
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Add adds a product to the cart, then resyncs.
func (c *Cart) Add(ctx context.Context, productID int64, quantity int) error {
	if err := c.requireUser(); err != nil {
		return err
	}
	if quantity <= 0 {
		quantity = 1
	}
	if err := c.api.Add(ctx, c.token, productID, quantity); err != nil {
		return err
	}
	return c.refetch(ctx)
}

// UpdateQuantity sets an item's quantity, then resyncs. Non-positive
// quantities delegate to Remove instead of sending a zero update.
func (c *Cart) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	if err := c.requireUser(); err != nil {
		return err
	}
	if quantity <= 0 {
		return c.Remove(ctx, itemID)
	}
	if err := c.api.UpdateQuantity(ctx, c.token, itemID, quantity); err != nil {
		return err
	}
	return c.refetch(ctx)
}

// Remove deletes an item, then resyncs.
func (c *Cart) Remove(ctx context.Context, itemID int64) error {
	if err := c.requireUser(); err != nil {
		return err
	}
	if err := c.api.Remove(ctx, c.token, itemID); err != nil {
		return err
	}
	return c.refetch(ctx)
}

// Clear empties the cart, then resyncs.
func (c *Cart) Clear(ctx context.Context) error {
	if err := c.requireUser(); err != nil {
		return err
	}
	if err := c.api.Clear(ctx, c.token); err != nil {
		return err
	}
	return c.refetch(ctx)
}

// Total is the sum of price times quantity over the current items,
// computed on demand rather than cached.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// ItemCount is the sum of quantities over the current items.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var count int
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}
