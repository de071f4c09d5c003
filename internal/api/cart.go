package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// GetCart GET /cart
func (c *Client) GetCart(ctx context.Context, cred domain.Credential) (domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   []string{"cart"},
		cred:   cred,
	}, &cart)
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// AddToCart POST /cart/add
func (c *Client) AddToCart(ctx context.Context, cred domain.Credential, item domain.CartItem) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   []string{"cart", "add"},
		cred:   cred,
		body:   item,
	}, nil)
}

// RemoveFromCart removes every line of productID. DELETE /cart/remove/{productID}
func (c *Client) RemoveFromCart(ctx context.Context, cred domain.Credential, productID string) error {
	if productID == "" {
		return errors.New("productID is empty")
	}

	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   []string{"cart", "remove", productID},
		cred:   cred,
	}, nil)
}
