package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

// fakeBackend plays the remote API for the session, cart, catalog and orders.
type fakeBackend struct {
	m sync.RWMutex

	password string
	user     domain.User
	token    domain.Credential

	products map[string]domain.Product
	items    []domain.CartItem
	orders   []domain.Order

	getCartCalls int
	productCalls int
	orderErr     error
	productErr   error
	listErr      error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		password: "x",
		user:     domain.User{ID: "u1", Email: "a@b.com", FullName: "A B"},
		token:    "token-u1",
		products: map[string]domain.Product{
			"p1": {ID: "p1", Name: "Air Max 90", Price: decimal.RequireFromString("129.99"), Category: domain.CategoryShoes, Sizes: []string{"M", "L"}, Colors: []string{"red", "black"}, Featured: true},
			"p2": {ID: "p2", Name: "Tech Fleece Hoodie", Price: decimal.RequireFromString("110"), Category: domain.CategoryClothing, Sizes: []string{"M"}, Colors: []string{"grey"}},
		},
	}
}

func (f *fakeBackend) authorized(cred domain.Credential) error {
	if cred != f.token {
		return &api.Error{Status: 401, Detail: "Not authenticated"}
	}
	return nil
}

func (f *fakeBackend) Me(_ context.Context, cred domain.Credential) (domain.User, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	if err := f.authorized(cred); err != nil {
		return domain.User{}, err
	}
	return f.user, nil
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (domain.AuthResult, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	if email != f.user.Email || password != f.password {
		return domain.AuthResult{}, &api.Error{Status: 401, Detail: "Invalid credentials"}
	}
	return domain.AuthResult{User: f.user, Token: f.token}, nil
}

func (f *fakeBackend) Register(context.Context, string, string, string) (domain.AuthResult, error) {
	return domain.AuthResult{}, &api.Error{Status: 400, Detail: "Email already registered"}
}

func (f *fakeBackend) GetCart(_ context.Context, cred domain.Credential) (domain.Cart, error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.getCartCalls++
	if err := f.authorized(cred); err != nil {
		return domain.Cart{}, err
	}
	items := make([]domain.CartItem, len(f.items))
	copy(items, f.items)
	return domain.Cart{UserID: f.user.ID, Items: items}, nil
}

func (f *fakeBackend) AddToCart(_ context.Context, cred domain.Credential, item domain.CartItem) error {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.authorized(cred); err != nil {
		return err
	}
	for i := range f.items {
		if f.items[i].SameVariant(item) {
			f.items[i].Quantity += item.Quantity
			return nil
		}
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeBackend) RemoveFromCart(_ context.Context, cred domain.Credential, productID string) error {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.authorized(cred); err != nil {
		return err
	}
	kept := f.items[:0]
	for _, item := range f.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeBackend) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Product
	for _, id := range []string{"p1", "p2"} {
		if p, ok := f.products[id]; ok && filter.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) Product(_ context.Context, id string) (domain.Product, error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.productCalls++
	if f.productErr != nil {
		return domain.Product{}, f.productErr
	}
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, &api.Error{Status: 404, Detail: "Product not found"}
	}
	return p, nil
}

func (f *fakeBackend) CreateOrder(_ context.Context, cred domain.Credential, req domain.OrderRequest) (domain.Order, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.authorized(cred); err != nil {
		return domain.Order{}, err
	}
	if f.orderErr != nil {
		return domain.Order{}, f.orderErr
	}
	order := domain.Order{
		ID:              "o" + string(rune('1'+len(f.orders))),
		UserID:          f.user.ID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		Status:          domain.OrderStatusPending,
		CreatedAt:       time.Now(),
	}
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeBackend) ListOrders(_ context.Context, cred domain.Credential) ([]domain.Order, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	if err := f.authorized(cred); err != nil {
		return nil, err
	}
	return append([]domain.Order(nil), f.orders...), nil
}

func (f *fakeBackend) cartCalls() int {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.getCartCalls
}

var errBoom = errors.New("boom")
