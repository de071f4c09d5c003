package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

// CartView shows the cart with product details and totals.
type CartView struct {
	cart    Cart
	catalog Catalog
	log     *zap.Logger
	loader  Loader

	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewCartView(c Cart, cat Catalog, log *zap.Logger) *CartView {
	return &CartView{
		cart:     c,
		catalog:  cat,
		log:      logger.OrNop(log),
		products: make(map[string]domain.Product),
	}
}

// Load fetches the products referenced by the cart.
func (v *CartView) Load(ctx context.Context) {
	token := v.loader.Begin()
	ids := domain.Cart{Items: v.cart.Items()}.ProductIDs()

	products := fetchProducts(ctx, v.catalog, ids, v.log)

	v.loader.Finish(token, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		for id, p := range products {
			v.products[id] = p
		}
	})
}

// Lines joins the current cart with the products loaded so far.
func (v *CartView) Lines() []Line {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return buildLines(v.cart.Items(), v.products)
}

func (v *CartView) Total() string {
	return Total(v.Lines()).StringFixed(2)
}

func (v *CartView) ItemCount() int {
	return v.cart.ItemCount()
}

func (v *CartView) Empty() bool {
	return v.cart.ItemCount() == 0
}

func (v *CartView) Pending() bool {
	return v.loader.Pending()
}

// Remove drops every line of productID.
func (v *CartView) Remove(ctx context.Context, productID string) Action {
	if err := v.cart.Remove(ctx, productID); err != nil {
		return Action{Notice: "Failed to remove item", Failed: true}
	}
	return Action{Notice: "Item removed from cart"}
}

// Checkout leads to the checkout page when there is something to buy.
func (v *CartView) Checkout() Action {
	if v.Empty() {
		return Action{Notice: "Your cart is empty", Failed: true}
	}
	return Action{Navigate: "/checkout"}
}
