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

// ProductService wraps the public catalog endpoints
type ProductService struct {
	api *apiclient.Client
}

// NewProductService creates a new product service
func NewProductService(api *apiclient.Client) *ProductService {
	return &ProductService{api: api}
}

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	Page     int
	Size     int
	Search   string
	Category string
}

func (f ProductFilter) query() string {
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
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// List fetches a catalog page
func (s *ProductService) List(ctx context.Context, filter ProductFilter) ([]models.Product, models.Page, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/api/products"+filter.query(), "", &raw); err != nil {
		return nil, models.Page{}, fmt.Errorf("failed to list products: %w", err)
	}
	return apiclient.DecodePaged[models.Product](raw, "products")
}

// Get fetches one product by ID
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := s.api.Get(ctx, fmt.Sprintf("/api/products/%d", id), "", &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Categories fetches the catalog categories for storefront navigation
func (s *ProductService) Categories(ctx context.Context) ([]models.Category, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/api/categories", "", &raw); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return apiclient.DecodeList[models.Category](raw, "categories")
}
