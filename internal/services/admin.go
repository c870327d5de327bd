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

// AdminService wraps the back-office CRUD endpoints for users, roles,
// categories and products. Authorization is enforced server-side; the
// frontend only gates visibility.
type AdminService struct {
	api *apiclient.Client
}

// NewAdminService creates a new admin service
func NewAdminService(api *apiclient.Client) *AdminService {
	return &AdminService{api: api}
}

// ResourceFilter narrows an admin collection listing.
type ResourceFilter struct {
	Page   int
	Size   int
	Search string
}

func (f ResourceFilter) query() string {
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
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListUsers fetches a page of user accounts
func (s *AdminService) ListUsers(ctx context.Context, token string, filter ResourceFilter) ([]models.User, models.Page, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/api/admin/users"+filter.query(), token, &raw); err != nil {
		return nil, models.Page{}, fmt.Errorf("failed to fetch users: %w", err)
	}
	return apiclient.DecodePaged[models.User](raw, "users")
}

// CreateUser creates a user account
func (s *AdminService) CreateUser(ctx context.Context, token string, body map[string]any) error {
	return s.api.Post(ctx, "/api/admin/users", token, body, nil)
}

// UpdateUser modifies a user account
func (s *AdminService) UpdateUser(ctx context.Context, token string, id int64, body map[string]any) error {
	return s.api.Put(ctx, fmt.Sprintf("/api/admin/users/%d", id), token, body, nil)
}

// DeleteUser removes a user account
func (s *AdminService) DeleteUser(ctx context.Context, token string, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/api/admin/users/%d", id), token)
}

// ListRoles fetches every role
func (s *AdminService) ListRoles(ctx context.Context, token string) ([]models.Role, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/api/admin/roles", token, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}
	return apiclient.DecodeList[models.Role](raw, "roles")
}

// CreateRole creates a role
func (s *AdminService) CreateRole(ctx context.Context, token, name string) error {
	return s.api.Post(ctx, "/api/admin/roles", token, map[string]string{"name": name}, nil)
}

// UpdateRole renames a role
func (s *AdminService) UpdateRole(ctx context.Context, token string, id int64, name string) error {
	return s.api.Put(ctx, fmt.Sprintf("/api/admin/roles/%d", id), token, map[string]string{"name": name}, nil)
}

// DeleteRole removes a role
func (s *AdminService) DeleteRole(ctx context.Context, token string, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/api/admin/roles/%d", id), token)
}

// ListCategories fetches a page of categories
func (s *AdminService) ListCategories(ctx context.Context, token string, filter ResourceFilter) ([]models.Category, models.Page, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/api/admin/categories"+filter.query(), token, &raw); err != nil {
		return nil, models.Page{}, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return apiclient.DecodePaged[models.Category](raw, "categories")
}

// CreateCategory creates a category
func (s *AdminService) CreateCategory(ctx context.Context, token string, category models.Category) error {
	return s.api.Post(ctx, "/api/admin/categories", token, category, nil)
}

// UpdateCategory modifies a category
func (s *AdminService) UpdateCategory(ctx context.Context, token string, id int64, category models.Category) error {
	return s.api.Put(ctx, fmt.Sprintf("/api/admin/categories/%d", id), token, category, nil)
}

// DeleteCategory removes a category
func (s *AdminService) DeleteCategory(ctx context.Context, token string, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/api/admin/categories/%d", id), token)
}

// ListProducts fetches a page of products for the back office
func (s *AdminService) ListProducts(ctx context.Context, token string, filter ResourceFilter) ([]models.Product, models.Page, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/api/admin/products"+filter.query(), token, &raw); err != nil {
		return nil, models.Page{}, fmt.Errorf("failed to fetch products: %w", err)
	}
	return apiclient.DecodePaged[models.Product](raw, "products")
}

// CreateProduct creates a product
func (s *AdminService) CreateProduct(ctx context.Context, token string, product models.Product) error {
	return s.api.Post(ctx, "/api/admin/products", token, product, nil)
}

// UpdateProduct modifies a product
func (s *AdminService) UpdateProduct(ctx context.Context, token string, id int64, product models.Product) error {
	return s.api.Put(ctx, fmt.Sprintf("/api/admin/products/%d", id), token, product, nil)
}

// DeleteProduct removes a product
func (s *AdminService) DeleteProduct(ctx context.Context, token string, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/api/admin/products/%d", id), token)
}
