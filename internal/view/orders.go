package view

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

// OrderHistory lists the orders of the signed-in user.
type OrderHistory struct {
	orders  OrderAPI
	session Session
	log     *zap.Logger
	loader  Loader

	mu   sync.RWMutex
	list []domain.Order
}

func NewOrderHistory(orders OrderAPI, s Session, log *zap.Logger) *OrderHistory {
	return &OrderHistory{orders: orders, session: s, log: logger.OrNop(log)}
}

func (v *OrderHistory) Load(ctx context.Context) error {
	token := v.loader.Begin()

	list, err := v.orders.ListOrders(ctx, v.session.Credential())
	if err != nil {
		v.log.Error("failed to load orders", zap.Error(err))
		v.loader.Finish(token, nil)
		return err
	}

	v.loader.Finish(token, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.list = list
	})
	return nil
}

func (v *OrderHistory) Orders() []domain.Order {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.list)
}

func (v *OrderHistory) Pending() bool {
	return v.loader.Pending()
}
