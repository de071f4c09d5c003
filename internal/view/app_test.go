package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/credstore"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	backend *fakeBackend
	session *session.Service
	cart    *cart.Service
	app     *App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := newFakeBackend()
	sess := session.NewService(backend, credstore.NewMemoryStore(), nil)
	cartStore := cart.NewService(backend, sess, nil)
	cartStore.Bind(sess)

	return &harness{
		backend: backend,
		session: sess,
		cart:    cartStore,
		app:     NewApp(sess, cartStore, backend, backend, nil),
	}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	h.session.Initialize(context.Background())
	res := h.session.Login(context.Background(), "a@b.com", "x")
	require.True(t, res.Success, res.Error)
}

func TestScenario_GuardedCartAfterLogin(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	h.session.Initialize(ctx)
	st := h.session.State()
	require.False(t, st.Resolving)
	require.Nil(t, st.User)

	page, err := h.app.Visit(ctx, "/cart")
	require.NoError(t, err)
	assert.Equal(t, "/login", page.Path)
	assert.Equal(t, "/cart", page.From)
	assert.Nil(t, page.View)

	res := h.session.Login(ctx, "a@b.com", "x")
	require.True(t, res.Success)
	require.NotNil(t, h.session.CurrentUser())
	assert.Equal(t, 1, h.backend.cartCalls(), "login refreshes the cart exactly once")

	page, err = h.app.Visit(ctx, "/cart")
	require.NoError(t, err)
	assert.Equal(t, "/cart", page.Path)
	assert.Empty(t, page.From)
	assert.IsType(t, &CartView{}, page.View)
}

func TestScenario_AddTwoVariants(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)

	page, err := h.app.Visit(ctx, "/products/p1")
	require.NoError(t, err)
	detail, ok := page.View.(*ProductDetail)
	require.True(t, ok)

	require.NoError(t, detail.SelectSize("M"))
	require.NoError(t, detail.SelectColor("red"))
	require.NoError(t, detail.SetQuantity(2))
	assert.Equal(t, Action{Notice: noticeAdded}, detail.AddToCart(ctx))

	assert.Equal(t, []domain.CartItem{{ProductID: "p1", Quantity: 2, Size: "M", Color: "red"}}, h.cart.Items())
	assert.Equal(t, 2, h.cart.ItemCount())

	require.NoError(t, detail.SelectSize("L"))
	require.NoError(t, detail.SetQuantity(1))
	assert.Equal(t, Action{Notice: noticeAdded}, detail.AddToCart(ctx))

	assert.Len(t, h.cart.Items(), 2)
	assert.Equal(t, 3, h.cart.ItemCount())
}

func TestScenario_CheckoutEmptyCartRedirects(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)

	page, err := h.app.Visit(ctx, "/checkout")
	require.NoError(t, err)
	assert.Equal(t, "/cart", page.Path)
	assert.Equal(t, "/checkout", page.From)
	assert.IsType(t, &CartView{}, page.View)
	assert.Zero(t, h.backend.productCalls)
}

func TestScenario_LogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)
	require.NoError(t, h.cart.Add(ctx, "p1", 1, "M", "red"))

	page, err := h.app.Visit(ctx, "/profile")
	require.NoError(t, err)
	profile, ok := page.View.(*Profile)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", profile.User().Email)

	act := profile.Logout(ctx)
	assert.Equal(t, "/", act.Navigate)

	assert.Nil(t, h.session.CurrentUser())
	assert.True(t, h.session.Credential().IsZero())
	assert.Zero(t, h.cart.ItemCount())

	page, err = h.app.Visit(ctx, "/orders")
	require.NoError(t, err)
	assert.Equal(t, "/login", page.Path)
}

func TestVisit_PendingWhileResolving(t *testing.T) {
	h := newHarness(t)

	page, err := h.app.Visit(context.Background(), "/orders")
	require.NoError(t, err)
	assert.True(t, page.Pending)
	assert.Equal(t, "/orders", page.Path)
	assert.Nil(t, page.View)

	// Public pages do not wait for resolution.
	page, err = h.app.Visit(context.Background(), "/")
	require.NoError(t, err)
	assert.False(t, page.Pending)
	assert.IsType(t, &ProductList{}, page.View)
}

func TestVisit_ProductFilters(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	page, err := h.app.Visit(ctx, "/products?category=clothing")
	require.NoError(t, err)
	list := page.View.(*ProductList)
	require.Len(t, list.Products(), 1)
	assert.Equal(t, "p2", list.Products()[0].ID)

	page, err = h.app.Visit(ctx, "/products?featured=true")
	require.NoError(t, err)
	list = page.View.(*ProductList)
	require.Len(t, list.Products(), 1)
	assert.Equal(t, "p1", list.Products()[0].ID)

	_, err = h.app.Visit(ctx, "/products?category=hats")
	require.ErrorIs(t, err, ErrInvalidFilter)

	_, err = h.app.Visit(ctx, "/products?featured=maybe")
	require.ErrorIs(t, err, ErrInvalidFilter)
}

func TestVisit_UnknownPath(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, err := h.app.Visit(context.Background(), "/admin")
	require.ErrorIs(t, err, ErrUnknownPath)
}

func TestVisit_LoadErrorIsReported(t *testing.T) {
	h := newHarness(t)
	h.backend.listErr = errBoom

	page, err := h.app.Visit(context.Background(), "/")
	require.NoError(t, err)
	assert.ErrorIs(t, page.Err, errBoom)
	assert.Empty(t, page.View.(*ProductList).Products())
}

func TestVisit_OrdersAfterCheckout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)
	require.NoError(t, h.cart.Add(ctx, "p1", 2, "M", "red"))

	page, err := h.app.Visit(ctx, "/checkout")
	require.NoError(t, err)
	checkout := page.View.(*Checkout)

	act := checkout.PlaceOrder(ctx, "1 Main St")
	require.Equal(t, "/orders", act.Navigate)

	page, err = h.app.Visit(ctx, act.Navigate)
	require.NoError(t, err)
	history := page.View.(*OrderHistory)
	require.Len(t, history.Orders(), 1)
	assert.Equal(t, "1 Main St", history.Orders()[0].ShippingAddress)
	assert.Equal(t, domain.OrderStatusPending, history.Orders()[0].Status)
}
