package devserver

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MemoryStore implements Store with in-memory maps.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]UserRecord     // userID -> record
	emails   map[string]string         // lower-cased email -> userID
	products map[string]domain.Product // productID -> product
	order    []string                  // product ids in insertion order
	carts    map[string]*domain.Cart   // userID -> cart
	orders   map[string][]domain.Order // userID -> orders
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]UserRecord),
		emails:   make(map[string]string),
		products: make(map[string]domain.Product),
		carts:    make(map[string]*domain.Cart),
		orders:   make(map[string][]domain.Order),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, rec UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(rec.User.Email)
	if _, exists := s.emails[key]; exists {
		return ErrEmailTaken
	}
	s.users[rec.User.ID] = rec
	s.emails[key] = rec.User.ID
	return nil
}

func (s *MemoryStore) UserByEmail(_ context.Context, email string) (UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.emails[strings.ToLower(email)]
	if !exists {
		return UserRecord{}, ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryStore) UserByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.users[id]
	if !exists {
		return domain.User{}, ErrNotFound
	}
	return rec.User, nil
}

func (s *MemoryStore) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		if p := s.products[id]; filter.Match(p) {
			result = append(result, cloneProduct(p))
		}
	}
	return result, nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.products[id]
	if !exists {
		return domain.Product{}, ErrNotFound
	}
	return cloneProduct(p), nil
}

func (s *MemoryStore) InsertProducts(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if _, exists := s.products[p.ID]; !exists {
			s.order = append(s.order, p.ID)
		}
		s.products[p.ID] = cloneProduct(p)
	}
	return nil
}

func (s *MemoryStore) CountProducts(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func (s *MemoryStore) GetOrCreateCart(_ context.Context, userID string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCart(s.cartLocked(userID)), nil
}

// cartLocked returns the cart of userID, creating it. Callers hold s.mu.
func (s *MemoryStore) cartLocked(userID string) *domain.Cart {
	cart, exists := s.carts[userID]
	if !exists {
		now := time.Now().UTC()
		cart = &domain.Cart{
			ID:        uuid.New().String(),
			UserID:    userID,
			Items:     []domain.CartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.carts[userID] = cart
	}
	return cart
}

func (s *MemoryStore) AddCartItem(_ context.Context, userID string, item domain.CartItem) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(userID)
	cart.Merge(item)
	cart.UpdatedAt = time.Now().UTC()
	return cloneCart(cart), nil
}

func (s *MemoryStore) RemoveCartProduct(_ context.Context, userID, productID string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, exists := s.carts[userID]
	if !exists {
		return domain.Cart{}, ErrCartNotFound
	}
	cart.RemoveProduct(productID)
	cart.UpdatedAt = time.Now().UTC()
	return cloneCart(cart), nil
}

func (s *MemoryStore) ClearCart(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cart, exists := s.carts[userID]; exists {
		cart.Items = []domain.CartItem{}
		cart.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *MemoryStore) CreateOrder(_ context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.Items = slices.Clone(order.Items)
	s.orders[order.UserID] = append(s.orders[order.UserID], order)
	return nil
}

func (s *MemoryStore) ListOrders(_ context.Context, userID string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := s.orders[userID]
	result := make([]domain.Order, len(orders))
	for i, o := range orders {
		o.Items = slices.Clone(o.Items)
		result[i] = o
	}
	return result, nil
}

func cloneCart(c *domain.Cart) domain.Cart {
	out := *c
	out.Items = slices.Clone(c.Items)
	if out.Items == nil {
		out.Items = []domain.CartItem{}
	}
	return out
}

func cloneProduct(p domain.Product) domain.Product {
	p.Images = slices.Clone(p.Images)
	p.Sizes = slices.Clone(p.Sizes)
	p.Colors = slices.Clone(p.Colors)
	return p
}
