package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Me validates cred and returns the user it belongs to. GET /auth/me
func (c *Client) Me(ctx context.Context, cred domain.Credential) (domain.User, error) {
	var user domain.User
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   []string{"auth", "me"},
		cred:   cred,
	}, &user)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login POST /auth/login
func (c *Client) Login(ctx context.Context, email, password string) (domain.AuthResult, error) {
	var res domain.AuthResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   []string{"auth", "login"},
		body:   loginRequest{Email: email, Password: password},
	}, &res)
	if err != nil {
		return domain.AuthResult{}, err
	}
	return res, nil
}

// Register POST /auth/register
func (c *Client) Register(ctx context.Context, email, password, fullName string) (domain.AuthResult, error) {
	var res domain.AuthResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   []string{"auth", "register"},
		body:   registerRequest{Email: email, Password: password, FullName: fullName},
	}, &res)
	if err != nil {
		return domain.AuthResult{}, err
	}
	return res, nil
}
