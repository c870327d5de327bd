package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/plantora/storefront/internal/apiclient"
	"github.com/plantora/storefront/internal/models"
)

// AddressService wraps the backend address-book endpoints
type AddressService struct {
	api *apiclient.Client
}

// NewAddressService creates a new address service
func NewAddressService(api *apiclient.Client) *AddressService {
	return &AddressService{api: api}
}

// List fetches the full address book for the token's user
func (s *AddressService) List(ctx context.Context, token string) ([]models.Address, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/api/addresses", token, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch addresses: %w", err)
	}
	return apiclient.DecodeList[models.Address](raw, "addresses")
}

// Create adds a new address
func (s *AddressService) Create(ctx context.Context, token string, req models.AddressRequest) error {
	return s.api.Post(ctx, "/api/addresses", token, req, nil)
}

// Update modifies an existing address
func (s *AddressService) Update(ctx context.Context, token string, addressID int64, req models.AddressRequest) error {
	return s.api.Patch(ctx, fmt.Sprintf("/api/addresses/%d", addressID), token, req, nil)
}

// Delete removes an address
func (s *AddressService) Delete(ctx context.Context, token string, addressID int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/api/addresses/%d", addressID), token)
}

// SetDefault marks one address as the account default
func (s *AddressService) SetDefault(ctx context.Context, token string, addressID int64) error {
	body := map[string]any{"addressId": addressID}
	return s.api.Post(ctx, "/api/addresses/default", token, body, nil)
}
