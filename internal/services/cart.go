package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/plantora/storefront/internal/apiclient"
	"github.com/plantora/storefront/internal/models"
)

// CartService wraps the backend cart endpoints. All calls are
// authenticated; the caller supplies the session token.
type CartService struct {
	api *apiclient.Client
}

// NewCartService creates a new cart service
func NewCartService(api *apiclient.Client) *CartService {
	return &CartService{api: api}
}

// Items fetches the full cart for the token's user
func (s *CartService) Items(ctx context.Context, token string) ([]models.CartItem, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/api/cart", token, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return apiclient.DecodeList[models.CartItem](raw, "cartItems")
}

// Add adds a product to the cart
func (s *CartService) Add(ctx context.Context, token string, productID int64, quantity int) error {
	body := map[string]any{"productId": productID, "quantity": quantity}
	return s.api.Post(ctx, "/api/cart", token, body, nil)
}

// UpdateQuantity sets the quantity of one cart item
func (s *CartService) UpdateQuantity(ctx context.Context, token string, itemID int64, quantity int) error {
	body := map[string]any{"quantity": quantity}
	return s.api.Put(ctx, fmt.Sprintf("/api/cart/%d", itemID), token, body, nil)
}

// Remove deletes one cart item
func (s *CartService) Remove(ctx context.Context, token string, itemID int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/api/cart/%d", itemID), token)
}

// Clear deletes every item in the cart
func (s *CartService) Clear(ctx context.Context, token string) error {
	return s.api.Delete(ctx, "/api/cart", token)
}
