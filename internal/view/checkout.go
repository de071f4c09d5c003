package view

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

const (
	noticeOrderFailed     = "Failed to place order. Please try again."
	noticeAddressRequired = "Shipping address is required"
	noticeOrderPlaced     = "Order placed successfully!"
)

// Checkout collects a shipping address and places the order.
type Checkout struct {
	cart    Cart
	catalog Catalog
	orders  OrderAPI
	session Session
	log     *zap.Logger
	loader  Loader

	mu       sync.RWMutex
	products map[string]domain.Product
	placing  bool
	placed   *domain.Order
}

func NewCheckout(c Cart, cat Catalog, orders OrderAPI, s Session, log *zap.Logger) *Checkout {
	return &Checkout{
		cart:     c,
		catalog:  cat,
		orders:   orders,
		session:  s,
		log:      logger.OrNop(log),
		products: make(map[string]domain.Product),
	}
}

// Mount redirects to the cart when it is empty; otherwise it fetches one
// product per distinct cart line in parallel.
func (v *Checkout) Mount(ctx context.Context) Action {
	items := v.cart.Items()
	if len(items) == 0 {
		return Action{Navigate: "/cart"}
	}

	token := v.loader.Begin()
	products := fetchProducts(ctx, v.catalog, domain.Cart{Items: items}.ProductIDs(), v.log)
	v.loader.Finish(token, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		for id, p := range products {
			v.products[id] = p
		}
	})
	return Action{}
}

func (v *Checkout) Lines() []Line {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return buildLines(v.cart.Items(), v.products)
}

func (v *Checkout) Total() string {
	return Total(v.Lines()).StringFixed(2)
}

func (v *Checkout) Pending() bool {
	return v.loader.Pending()
}

// Placing reports whether an order submission is in flight.
func (v *Checkout) Placing() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.placing
}

// Placed returns the last order placed from this view, or nil.
func (v *Checkout) Placed() *domain.Order {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.placed
}

// PlaceOrder submits the current cart. On success the host should navigate to
// the order history; on failure the user may retry. The cart is left as is.
func (v *Checkout) PlaceOrder(ctx context.Context, shippingAddress string) Action {
	shippingAddress = strings.TrimSpace(shippingAddress)
	if shippingAddress == "" {
		return Action{Notice: noticeAddressRequired, Failed: true}
	}

	items := v.cart.Items()
	if len(items) == 0 {
		return Action{Navigate: "/cart"}
	}

	v.mu.Lock()
	v.placing = true
	v.mu.Unlock()
	defer func() {
		v.mu.Lock()
		v.placing = false
		v.mu.Unlock()
	}()

	order, err := v.orders.CreateOrder(ctx, v.session.Credential(), domain.OrderRequest{
		Items:           items,
		ShippingAddress: shippingAddress,
	})
	if err != nil {
		v.log.Error("failed to place order", zap.Error(err))
		return Action{Notice: noticeOrderFailed, Failed: true}
	}

	v.mu.Lock()
	v.placed = &order
	v.mu.Unlock()

	v.log.Info("order placed", zap.String("order_id", order.ID))
	return Action{Navigate: "/orders", Notice: noticeOrderPlaced}
}
