package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fjod/go_cart/storefront/internal/credstore"
	"github.com/fjod/go_cart/storefront/internal/devserver"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/view"
)

type harness struct {
	t       *testing.T
	apiURL  string
	backend *devserver.MemoryStore
	creds   *credstore.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := devserver.NewMemoryStore()
	_, err := devserver.Seed(context.Background(), backend)
	require.NoError(t, err)

	srv := httptest.NewServer(devserver.NewRouter(backend, devserver.Config{
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		RequestTimeout: 5 * time.Second,
		BcryptCost:     bcrypt.MinCost,
	}, nil))
	t.Cleanup(srv.Close)

	return &harness{
		t:       t,
		apiURL:  srv.URL + "/api",
		backend: backend,
		creds:   credstore.NewMemoryStore(),
	}
}

// run executes one CLI invocation. The credential store is shared between
// invocations, like the sqlite file would be.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := NewRootCommand(WithCredentialStore(h.creds), WithLogger(zap.NewNop()))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api-url", h.apiURL}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) product(name string) domain.Product {
	h.t.Helper()
	products, err := h.backend.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(h.t, err)
	for _, p := range products {
		if p.Name == name {
			return p
		}
	}
	h.t.Fatalf("product %q not seeded", name)
	return domain.Product{}
}

func TestProducts_Anonymous(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("products")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Nike Air Force 1 '07")
	assert.Contains(t, out, "$90.00")
	assert.Equal(t, 7, strings.Count(out, "\n"), out)

	out = h.mustRun("products", "--category", "clothing")
	assert.Contains(t, out, "Nike Dri-FIT Shirt")
	assert.Contains(t, out, "Nike Sportswear Hoodie")
	assert.NotContains(t, out, "Nike Air Jordan 1")

	out = h.mustRun("products", "--featured")
	assert.Equal(t, 4, strings.Count(out, "\n"), out)

	_, err := h.run("products", "--category", "hats")
	require.ErrorIs(t, err, view.ErrInvalidFilter)
}

func TestProduct_Detail(t *testing.T) {
	h := newHarness(t)
	p := h.product("Nike Air Jordan 1")

	out := h.mustRun("product", p.ID)
	assert.Contains(t, out, "Nike Air Jordan 1  $170.00")
	assert.Contains(t, out, "Category: shoes")

	_, err := h.run("product", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load product")
}

func TestSeed_AlreadySeeded(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "Sample data already exists\n", h.mustRun("seed"))
}

func TestGuardedCommands_RequireLogin(t *testing.T) {
	h := newHarness(t)
	p := h.product("Nike Air Force 1 '07")

	for _, args := range [][]string{
		{"cart"},
		{"cart", "remove", p.ID},
		{"checkout", "--address", "1 Main St"},
		{"orders"},
		{"whoami"},
		{"logout"},
	} {
		_, err := h.run(args...)
		assert.ErrorIs(t, err, errNotLoggedIn, args)
	}

	_, err := h.run("cart", "add", p.ID, "--size", "9", "--color", "White")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.mustRun("register", "--email", "jane@example.com", "--password", "pa55word", "--name", "Jane Doe")
	h.mustRun("logout")

	_, err := h.run("login", "--email", "jane@example.com", "--password", "wrong")
	require.EqualError(t, err, "Invalid credentials")

	out := h.mustRun("login", "--email", "jane@example.com", "--password", "pa55word")
	assert.Equal(t, "Logged in as jane@example.com\n", out)
}

func TestShoppingFlow(t *testing.T) {
	h := newHarness(t)
	shoe := h.product("Nike Air Force 1 '07")
	shirt := h.product("Nike Dri-FIT Shirt")

	out := h.mustRun("register", "--email", "jane@example.com", "--password", "pa55word", "--name", "Jane Doe")
	assert.Equal(t, "Welcome, Jane Doe\n", out)

	out = h.mustRun("whoami")
	assert.Contains(t, out, "Jane Doe <jane@example.com>")

	assert.Equal(t, "Your cart is empty\n", h.mustRun("cart"))

	out = h.mustRun("cart", "add", shoe.ID, "--size", "9", "--color", "White", "--qty", "2")
	assert.Equal(t, "Added to cart!\nCart: 2 item(s)\n", out)

	out = h.mustRun("cart", "add", shirt.ID, "--size", "M", "--color", shirt.Colors[0])
	assert.Contains(t, out, "Cart: 3 item(s)")

	_, err := h.run("cart", "add", shoe.ID, "--color", "White")
	require.EqualError(t, err, "Please select size and color")

	_, err = h.run("cart", "add", shoe.ID, "--size", "99", "--color", "White")
	require.ErrorIs(t, err, view.ErrUnknownSize)

	out = h.mustRun("cart")
	assert.Contains(t, out, "Nike Air Force 1 '07")
	assert.Contains(t, out, "$180.00")
	assert.Contains(t, out, "$"+shoe.Price.Mul(decimal.NewFromInt(2)).Add(shirt.Price).StringFixed(2))

	out = h.mustRun("cart", "remove", shirt.ID)
	assert.Equal(t, "Item removed from cart\n", out)

	_, err = h.run("checkout")
	require.EqualError(t, err, "Shipping address is required")

	out = h.mustRun("checkout", "--address", "1 Main St")
	assert.Contains(t, out, "Order placed successfully!")
	assert.Contains(t, out, "$180.00, pending")

	out = h.mustRun("orders")
	assert.Contains(t, out, "$180.00")
	assert.Contains(t, out, "pending")

	// The server empties the cart once the order is placed.
	assert.Equal(t, "Your cart is empty\n", h.mustRun("cart"))
	_, err = h.run("checkout", "--address", "1 Main St")
	require.EqualError(t, err, "Your cart is empty")

	assert.Equal(t, "Logged out\n", h.mustRun("logout"))
	_, err = h.run("whoami")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestConfig_InvalidAPIURL(t *testing.T) {
	cmd := NewRootCommand(WithCredentialStore(credstore.NewMemoryStore()), WithLogger(zap.NewNop()))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--api-url", "ftp://example.com", "products"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_url must be http or https")
}
