package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// ListProducts GET /products?category=&featured=
func (c *Client) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := url.Values{}
	if filter.Category != nil {
		query.Set("category", string(*filter.Category))
	}
	if filter.Featured != nil {
		query.Set("featured", strconv.FormatBool(*filter.Featured))
	}

	var products []domain.Product
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   []string{"products"},
		query:  query,
	}, &products)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct GET /products/{id}
func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, errors.New("product id is empty")
	}

	var product domain.Product
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   []string{"products", id},
	}, &product)
	if err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

// InitData asks the server to seed its sample catalogue. POST /init-data
func (c *Client) InitData(ctx context.Context) (string, error) {
	var res messageResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   []string{"init-data"},
	}, &res)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}
