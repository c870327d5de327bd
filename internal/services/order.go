package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/plantora/storefront/internal/apiclient"
	"github.com/plantora/storefront/internal/models"
)

// OrderService wraps the backend order endpoints
type OrderService struct {
	api *apiclient.Client
}

// NewOrderService creates a new order service
func NewOrderService(api *apiclient.Client) *OrderService {
	return &OrderService{api: api}
}

// ListMine fetches the token user's order history
func (s *OrderService) ListMine(ctx context.Context, token string) ([]models.Order, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/api/orders", token, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return apiclient.DecodeList[models.Order](raw, "orders")
}

// Get fetches one order
func (s *OrderService) Get(ctx context.Context, token string, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := s.api.Get(ctx, fmt.Sprintf("/api/orders/%d", orderID), token, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create places an order from the user's current cart
func (s *OrderService) Create(ctx context.Context, token string, req models.CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := s.api.Post(ctx, "/api/orders", token, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus changes an order's status (admin operation). Legal
// transitions are validated server-side.
func (s *OrderService) UpdateStatus(ctx context.Context, token string, orderID int64, status string) error {
	body := map[string]string{"status": status}
	return s.api.Post(ctx, fmt.Sprintf("/api/orders/%d/status", orderID), token, body, nil)
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Page   int
	Size   int
	Search string
	Status string
}

func (f OrderFilter) query() string {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Size > 0 {
		q.Set("size", strconv.Itoa(f.Size))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListAll fetches a page of every order (admin operation)
func (s *OrderService) ListAll(ctx context.Context, token string, filter OrderFilter) ([]models.Order, models.Page, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/api/admin/orders"+filter.query(), token, &raw); err != nil {
		return nil, models.Page{}, fmt.Errorf("failed to fetch admin orders: %w", err)
	}
	return apiclient.DecodePaged[models.Order](raw, "orders")
}
