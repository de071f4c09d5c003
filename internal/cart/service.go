// Package cart mirrors the remote cart of the signed-in user.
//
// The mirror is never edited locally: every successful mutation is followed
// by a full refetch and the server's answer replaces the items wholesale.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

var (
	ErrSelectionRequired = errors.New("please select size and color")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrProductRequired   = errors.New("product id is empty")
	ErrNotAuthenticated  = errors.New("not authenticated")
)

// CartAPI is the part of the remote API the cart needs.
type CartAPI interface {
	GetCart(ctx context.Context, cred domain.Credential) (domain.Cart, error)
	AddToCart(ctx context.Context, cred domain.Credential, item domain.CartItem) error
	RemoveFromCart(ctx context.Context, cred domain.Credential, productID string) error
}

// Session provides the credential and current user.
type Session interface {
	Credential() domain.Credential
	CurrentUser() *domain.User
}

// Subscriber lets the cart follow user changes.
type Subscriber interface {
	Subscribe(l func(ctx context.Context, prev, next *domain.User))
}

type Service struct {
	api     CartAPI
	session Session
	log     *zap.Logger

	mu    sync.RWMutex
	items []domain.CartItem
	// gen is bumped on every reset; refreshes started under an older
	// generation drop their result.
	gen uint64
}

func NewService(a CartAPI, s Session, log *zap.Logger) *Service {
	return &Service{
		api:     a,
		session: s,
		log:     logger.OrNop(log),
	}
}

// Bind subscribes the cart to user changes: a user appearing triggers exactly
// one Refresh, a user disappearing empties the cart.
func (s *Service) Bind(sub Subscriber) {
	sub.Subscribe(func(ctx context.Context, prev, next *domain.User) {
		if prev != nil {
			s.Reset()
		}
		if next != nil {
			s.Refresh(ctx)
		}
	})
}

// Reset empties the mirror and invalidates in-flight refreshes.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.gen++
}

// Refresh replaces the items with the remote cart. Failures are logged and
// leave the previous items in place. Without a user it does nothing.
func (s *Service) Refresh(ctx context.Context) {
	// Taken before the session is read, so a Reset racing with the reads
	// below still invalidates this refresh.
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	if s.session.CurrentUser() == nil {
		return
	}
	cred := s.session.Credential()

	remote, err := s.api.GetCart(ctx, cred)
	if err != nil {
		s.log.Error("failed to refresh cart", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.log.Debug("dropping stale cart refresh")
		return
	}
	s.items = remote.Items
}

// Add puts quantity units of one product variant in the cart and refetches
// the cart. Size and color must both be selected.
func (s *Service) Add(ctx context.Context, productID string, quantity int, size, color string) error {
	if productID == "" {
		return ErrProductRequired
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if size == "" || color == "" {
		return ErrSelectionRequired
	}
	if s.session.CurrentUser() == nil {
		return ErrNotAuthenticated
	}

	item := domain.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
	}
	if err := s.api.AddToCart(ctx, s.session.Credential(), item); err != nil {
		s.log.Error("failed to add to cart", zap.String("product_id", productID), zap.Error(err))
		s.Refresh(ctx)
		return fmt.Errorf("failed to add to cart: %w", err)
	}

	s.Refresh(ctx)
	return nil
}

// Remove deletes every line of productID, whatever its size or color, and
// refetches the cart.
func (s *Service) Remove(ctx context.Context, productID string) error {
	if productID == "" {
		return ErrProductRequired
	}
	if s.session.CurrentUser() == nil {
		return ErrNotAuthenticated
	}

	if err := s.api.RemoveFromCart(ctx, s.session.Credential(), productID); err != nil {
		s.log.Error("failed to remove from cart", zap.String("product_id", productID), zap.Error(err))
		s.Refresh(ctx)
		return fmt.Errorf("failed to remove from cart: %w", err)
	}

	s.Refresh(ctx)
	return nil
}

// Items returns a copy of the mirrored lines.
func (s *Service) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return nil
	}
	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// ItemCount is the sum of quantities across lines.
func (s *Service) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CountItems(s.items)
}

func (s *Service) Snapshot() domain.Cart {
	return domain.Cart{Items: s.Items()}
}

func (s *Service) Empty() bool {
	return s.ItemCount() == 0
}
