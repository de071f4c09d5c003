package devserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CartHandler struct {
	store   Store
	timeout time.Duration
}

func NewCartHandler(store Store, timeout time.Duration) *CartHandler {
	return &CartHandler{
		store:   store,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type CartMutationResponseDTO struct {
	Message string      `json:"message"`
	Cart    domain.Cart `json:"cart"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := currentUser(ctx, w, h.store)
	if !ok {
		return
	}

	cart, err := h.store.GetOrCreateCart(ctx, user.ID)
	if err != nil {
		handleStoreError(ctx, w, err, "Cart not found")
		return
	}
	respondJSON(ctx, w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := currentUser(ctx, w, h.store)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(ctx, w, http.StatusUnprocessableEntity, "product_id is required")
		return
	}
	if req.Quantity < 1 {
		respondError(ctx, w, http.StatusUnprocessableEntity, "quantity must be at least 1")
		return
	}

	cart, err := h.store.AddCartItem(ctx, user.ID, domain.CartItem{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		handleStoreError(ctx, w, err, "Cart not found")
		return
	}
	respondJSON(ctx, w, http.StatusOK, CartMutationResponseDTO{Message: "Item added to cart", Cart: cart})
}

// RemoveItem drops every line of the product, whatever its size or color.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := currentUser(ctx, w, h.store)
	if !ok {
		return
	}

	cart, err := h.store.RemoveCartProduct(ctx, user.ID, chi.URLParam(r, "product_id"))
	if err != nil {
		handleStoreError(ctx, w, err, "Cart not found")
		return
	}
	respondJSON(ctx, w, http.StatusOK, CartMutationResponseDTO{Message: "Item removed from cart", Cart: cart})
}
