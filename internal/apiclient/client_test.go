package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, 5*time.Second, nil, nil)
}

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	if err := client.Get(context.Background(), "/api/profile", "tok-123", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestDoOmitsAuthorizationWhenTokenEmpty(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	if err := client.Get(context.Background(), "/api/products", "", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestDoDecodesResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 7, "name": "Cây kim tiền"}`))
	})

	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := client.Get(context.Background(), "/api/products/7", "", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.ID != 7 || out.Name != "Cây kim tiền" {
		t.Errorf("decoded %+v, want id 7 name %q", out, "Cây kim tiền")
	}
}

func TestDoServerErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"message key", http.StatusBadRequest, `{"message": "số lượng không hợp lệ"}`, "số lượng không hợp lệ"},
		{"error key", http.StatusUnauthorized, `{"error": "token expired"}`, "token expired"},
		{"detail key", http.StatusConflict, `{"detail": "duplicate email"}`, "duplicate email"},
		{"unparseable body", http.StatusInternalServerError, `<html>boom</html>`, "request failed with status 500"},
		{"empty body", http.StatusNotFound, ``, "request failed with status 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := client.Post(context.Background(), "/api/cart", "tok", map[string]any{"productId": 1}, nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error type = %T, want *Error", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(&Error{Status: 403, Message: "forbidden"}); got != 403 {
		t.Errorf("StatusOf(*Error) = %d, want 403", got)
	}
	if got := StatusOf(errors.New("plain")); got != 0 {
		t.Errorf("StatusOf(plain error) = %d, want 0", got)
	}
	if got := StatusOf(nil); got != 0 {
		t.Errorf("StatusOf(nil) = %d, want 0", got)
	}
}
