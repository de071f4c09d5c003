package devserver

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrCartNotFound   = errors.New("cart not found")
	ErrInvalidProduct = errors.New("invalid product")
)

// UserRecord is a user together with its password hash.
type UserRecord struct {
	User         domain.User
	PasswordHash string
}

// Store is everything the handlers need from persistence. MemoryStore and
// mongostore.Store implement it.
type Store interface {
	CreateUser(ctx context.Context, rec UserRecord) error
	UserByEmail(ctx context.Context, email string) (UserRecord, error)
	UserByID(ctx context.Context, id string) (domain.User, error)

	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	InsertProducts(ctx context.Context, products []domain.Product) error
	CountProducts(ctx context.Context) (int64, error)

	// GetOrCreateCart returns the cart of userID, creating an empty one.
	GetOrCreateCart(ctx context.Context, userID string) (domain.Cart, error)
	// AddCartItem merges item into an existing line of the same variant or
	// appends it.
	AddCartItem(ctx context.Context, userID string, item domain.CartItem) (domain.Cart, error)
	// RemoveCartProduct drops every line of productID. ErrCartNotFound when
	// the user has no cart.
	RemoveCartProduct(ctx context.Context, userID, productID string) (domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error

	CreateOrder(ctx context.Context, order domain.Order) error
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
}
