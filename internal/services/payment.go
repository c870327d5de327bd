package services

import (
	"context"
	"fmt"

	"github.com/plantora/storefront/internal/apiclient"
	"github.com/plantora/storefront/internal/models"
)

// PaymentService wraps the payment-gateway link endpoint. The gateway
// protocol itself is owned by the provider; this only fetches the
// checkout URL the browser is redirected to.
type PaymentService struct {
	api *apiclient.Client
}

// NewPaymentService creates a new payment service
func NewPaymentService(api *apiclient.Client) *PaymentService {
	return &PaymentService{api: api}
}

// CreatePayOSLink requests a checkout link for an order
func (s *PaymentService) CreatePayOSLink(ctx context.Context, token string, orderID int64) (*models.PaymentLink, error) {
	var link models.PaymentLink
	if err := s.api.Post(ctx, fmt.Sprintf("/api/payments/order/%d/payos-link", orderID), token, nil, &link); err != nil {
		return nil, err
	}
	if link.CheckoutURL == "" {
		return nil, fmt.Errorf("payment link response missing checkout URL")
	}
	return &link, nil
}
