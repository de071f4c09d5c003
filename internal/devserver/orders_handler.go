package devserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

type OrdersHandler struct {
	store   Store
	timeout time.Duration
}

func NewOrdersHandler(store Store, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		store:   store,
		timeout: timeout,
	}
}

type CreateOrderRequestDTO struct {
	Items           []domain.CartItem `json:"items"`
	ShippingAddress string            `json:"shipping_address"`
}

type OrderResponseDTO struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	Items           []domain.CartItem `json:"items"`
	TotalAmount     float64           `json:"total_amount"`
	Status          string            `json:"status"`
	ShippingAddress string            `json:"shipping_address"`
	PaymentIntentID string            `json:"payment_intent_id"`
	CreatedAt       string            `json:"created_at"`
}

func toOrderResponse(o domain.Order) OrderResponseDTO {
	total, _ := o.TotalAmount.Float64()
	items := o.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return OrderResponseDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		TotalAmount:     total,
		Status:          o.Status.String(),
		ShippingAddress: o.ShippingAddress,
		PaymentIntentID: o.PaymentIntentID,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateOrder prices the items at current product prices, records a pending
// order with a mock payment intent and empties the user's cart.
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := currentUser(ctx, w, h.store)
	if !ok {
		return
	}

	var req CreateOrderRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		respondError(ctx, w, http.StatusBadRequest, "Order has no items")
		return
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		respondError(ctx, w, http.StatusUnprocessableEntity, "shipping_address is required")
		return
	}

	total, err := h.priceItems(ctx, req.Items)
	if err != nil {
		handleStoreError(ctx, w, err, "")
		return
	}

	order := domain.Order{
		ID:              uuid.New().String(),
		UserID:          user.ID,
		Items:           req.Items,
		TotalAmount:     total,
		Status:          domain.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		PaymentIntentID: "pi_" + uuid.New().String(),
		CreatedAt:       time.Now().UTC(),
	}
	if err := h.store.CreateOrder(ctx, order); err != nil {
		handleStoreError(ctx, w, err, "")
		return
	}

	if err := h.store.ClearCart(ctx, user.ID); err != nil {
		logger.FromContext(ctx).Warn("failed to clear cart after order",
			zap.String("order_id", order.ID), zap.Error(err))
	}

	logger.FromContext(ctx).Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", user.ID),
		zap.String("total", total.StringFixed(2)),
	)
	respondJSON(ctx, w, http.StatusOK, toOrderResponse(order))
}

// priceItems sums price*quantity; items whose product is gone are free.
func (h *OrdersHandler) priceItems(ctx context.Context, items []domain.CartItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		p, err := h.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return decimal.Zero, err
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := currentUser(ctx, w, h.store)
	if !ok {
		return
	}

	orders, err := h.store.ListOrders(ctx, user.ID)
	if err != nil {
		handleStoreError(ctx, w, err, "")
		return
	}

	res := make([]OrderResponseDTO, len(orders))
	for i, o := range orders {
		res[i] = toOrderResponse(o)
	}
	respondJSON(ctx, w, http.StatusOK, res)
}
