package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// CreateOrder POST /orders
func (c *Client) CreateOrder(ctx context.Context, cred domain.Credential, req domain.OrderRequest) (domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   []string{"orders"},
		cred:   cred,
		body:   req,
	}, &order)
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// ListOrders GET /orders
func (c *Client) ListOrders(ctx context.Context, cred domain.Credential) ([]domain.Order, error) {
	var orders []domain.Order
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   []string{"orders"},
		cred:   cred,
	}, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}
