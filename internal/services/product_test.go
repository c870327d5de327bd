package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plantora/storefront/internal/apiclient"
)

func testClient(t *testing.T, handler http.HandlerFunc) *apiclient.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return apiclient.New(server.URL, 5*time.Second, nil, nil)
}

func TestProductListQueryAndEnvelope(t *testing.T) {
	var gotQuery string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{
			"products": [{"id":1,"name":"Sen đá","price":45000}],
			"page": 2, "totalItems": 13, "totalPages": 2
		}`))
	})
	svc := NewProductService(client)

	products, page, err := svc.List(context.Background(), ProductFilter{
		Page: 2, Size: 12, Search: "sen", Category: "Cây để bàn",
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(products) != 1 || products[0].Name != "Sen đá" {
		t.Errorf("products = %+v, want one product Sen đá", products)
	}
	if page.Number != 2 || page.TotalPages != 2 {
		t.Errorf("page = %+v, want page 2 of 2", page)
	}

	want := "category=C%C3%A2y+%C4%91%E1%BB%83+b%C3%A0n&page=2&search=sen&size=12"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestProductListBareArray(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	})
	svc := NewProductService(client)

	products, page, err := svc.List(context.Background(), ProductFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(products) != 2 {
		t.Errorf("len(products) = %d, want 2", len(products))
	}
	if page.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", page.TotalPages)
	}
}

func TestProductGetPath(t *testing.T) {
	var gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":7,"name":"Monstera","price":350000}`))
	})
	svc := NewProductService(client)

	product, err := svc.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotPath != "/api/products/7" {
		t.Errorf("path = %q, want /api/products/7", gotPath)
	}
	if product.Name != "Monstera" {
		t.Errorf("Name = %q, want Monstera", product.Name)
	}
}

func TestCategoriesEndpointKey(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"categories":[{"id":1,"name":"Cây trong nhà"}]}`))
	})
	svc := NewProductService(client)

	categories, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Cây trong nhà" {
		t.Errorf("categories = %+v", categories)
	}
}
