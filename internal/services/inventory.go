package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/plantora/storefront/internal/apiclient"
	"github.com/plantora/storefront/internal/models"
)

// InventoryService wraps the inventory endpoints. Stock truth lives
// server-side; these records are for the admin screen only.
type InventoryService struct {
	api *apiclient.Client
}

// NewInventoryService creates a new inventory service
func NewInventoryService(api *apiclient.Client) *InventoryService {
	return &InventoryService{api: api}
}

// List fetches a page of inventory records
func (s *InventoryService) List(ctx context.Context, token string, filter ResourceFilter) ([]models.Inventory, models.Page, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/api/inventories"+filter.query(), token, &raw); err != nil {
		return nil, models.Page{}, fmt.Errorf("failed to fetch inventories: %w", err)
	}
	return apiclient.DecodePaged[models.Inventory](raw, "inventories")
}

// Create adds an inventory record
func (s *InventoryService) Create(ctx context.Context, token string, inv models.Inventory) error {
	return s.api.Post(ctx, "/api/inventories", token, inv, nil)
}

// Update modifies an inventory record
func (s *InventoryService) Update(ctx context.Context, token string, id int64, inv models.Inventory) error {
	return s.api.Put(ctx, fmt.Sprintf("/api/inventories/%d", id), token, inv, nil)
}

// Delete removes an inventory record
func (s *InventoryService) Delete(ctx context.Context, token string, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/api/inventories/%d", id), token)
}
