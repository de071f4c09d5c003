// Package view holds the screen controllers of the storefront. Each view does
// one-shot fetches when it is mounted, keeps its last good data on failure and
// reports where to navigate next.
package view

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/session"
)

type Catalog interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
}

type Cart interface {
	Items() []domain.CartItem
	ItemCount() int
	Add(ctx context.Context, productID string, quantity int, size, color string) error
	Remove(ctx context.Context, productID string) error
}

type Session interface {
	State() session.State
	CurrentUser() *domain.User
	Credential() domain.Credential
	Logout(ctx context.Context)
}

type OrderAPI interface {
	CreateOrder(ctx context.Context, cred domain.Credential, req domain.OrderRequest) (domain.Order, error)
	ListOrders(ctx context.Context, cred domain.Credential) ([]domain.Order, error)
}

// Action is what a view asks of its host after a user action. Both fields
// may be empty.
type Action struct {
	// Navigate is the path to go to next.
	Navigate string
	// Notice is a short message for the user.
	Notice string
	// Failed is set when the action did not happen.
	Failed bool
}
