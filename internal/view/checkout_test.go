package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_LinesAndTotal(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)
	require.NoError(t, h.cart.Add(ctx, "p1", 2, "M", "red"))
	require.NoError(t, h.cart.Add(ctx, "p1", 1, "L", "black"))
	require.NoError(t, h.cart.Add(ctx, "p2", 1, "M", "grey"))

	sut := NewCheckout(h.cart, h.backend, h.backend, h.session, nil)
	act := sut.Mount(ctx)
	assert.Empty(t, act.Navigate)
	assert.False(t, sut.Pending())

	// One fetch per distinct product, not per line.
	assert.Equal(t, 2, h.backend.productCalls)

	lines := sut.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "259.98", lines[0].Subtotal.StringFixed(2))
	assert.Equal(t, "129.99", lines[1].Subtotal.StringFixed(2))
	assert.Equal(t, "110.00", lines[2].Subtotal.StringFixed(2))
	assert.Equal(t, "499.97", sut.Total())
}

func TestCheckout_ProductFetchFailureLeavesLineUnpriced(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)
	require.NoError(t, h.cart.Add(ctx, "p1", 1, "M", "red"))
	h.backend.productErr = errBoom

	sut := NewCheckout(h.cart, h.backend, h.backend, h.session, nil)
	assert.Equal(t, Action{}, sut.Mount(ctx))

	lines := sut.Lines()
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].Product)
	assert.Equal(t, "0.00", sut.Total())
}

func TestCheckout_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)
	require.NoError(t, h.cart.Add(ctx, "p1", 2, "M", "red"))

	sut := NewCheckout(h.cart, h.backend, h.backend, h.session, nil)
	sut.Mount(ctx)

	act := sut.PlaceOrder(ctx, "  1 Main St  ")
	assert.Equal(t, Action{Navigate: "/orders", Notice: noticeOrderPlaced}, act)
	require.NotNil(t, sut.Placed())
	assert.Equal(t, "1 Main St", sut.Placed().ShippingAddress)
	assert.False(t, sut.Placing())

	// The mirror is not touched by order placement.
	assert.Equal(t, 2, h.cart.ItemCount())
}

func TestCheckout_PlaceOrderFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)
	require.NoError(t, h.cart.Add(ctx, "p1", 1, "M", "red"))
	h.backend.orderErr = errBoom

	sut := NewCheckout(h.cart, h.backend, h.backend, h.session, nil)
	sut.Mount(ctx)

	act := sut.PlaceOrder(ctx, "1 Main St")
	assert.Equal(t, Action{Notice: "Failed to place order. Please try again.", Failed: true}, act)
	assert.Nil(t, sut.Placed())
	assert.Equal(t, 1, h.cart.ItemCount())

	h.backend.orderErr = nil
	act = sut.PlaceOrder(ctx, "1 Main St")
	assert.Equal(t, "/orders", act.Navigate)
}

func TestCheckout_AddressRequired(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)
	require.NoError(t, h.cart.Add(ctx, "p1", 1, "M", "red"))

	sut := NewCheckout(h.cart, h.backend, h.backend, h.session, nil)
	sut.Mount(ctx)

	assert.Equal(t, Action{Notice: noticeAddressRequired, Failed: true}, sut.PlaceOrder(ctx, "   "))
	assert.Empty(t, h.backend.orders)
}

func TestCheckout_MountEmptyCart(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	sut := NewCheckout(h.cart, h.backend, h.backend, h.session, nil)
	assert.Equal(t, Action{Navigate: "/cart"}, sut.Mount(context.Background()))
	assert.Equal(t, Action{Navigate: "/cart"}, sut.PlaceOrder(context.Background(), "1 Main St"))
}
