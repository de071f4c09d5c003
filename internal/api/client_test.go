package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fjod/go_cart/storefront/internal/devserver"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()
	router := devserver.NewRouter(devserver.NewMemoryStore(), devserver.Config{
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		RequestTimeout: 5 * time.Second,
		BcryptCost:     bcrypt.MinCost,
	}, nil)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/api", WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client
}

func newStubServer(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithHTTPClient(srv.Client())}, opts...)
	client, err := NewClient(srv.URL+"/api", opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient("localhost:8001")
	require.Error(t, err)

	_, err = NewClient("/api")
	require.Error(t, err)
}

func TestClient_AuthFlow(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)

	email := gofakeit.Email()
	registered, err := client.Register(ctx, email, "pa55word", "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, email, registered.User.Email)
	assert.False(t, registered.Token.IsZero())

	me, err := client.Me(ctx, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, me.ID)
	assert.Equal(t, "Jane Doe", me.FullName)

	loggedIn, err := client.Login(ctx, email, "pa55word")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = client.Login(ctx, email, "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", Message(err, "Login failed"))

	_, err = client.Register(ctx, email, "pa55word", "Jane Doe")
	require.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, "Email already registered", Message(err, "Registration failed"))

	_, err = client.Me(ctx, "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, Transient(err))
}

func TestClient_Products(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)

	msg, err := client.InitData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sample data initialized successfully", msg)

	msg, err = client.InitData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sample data already exists", msg)

	all, err := client.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 6)

	clothing := domain.CategoryClothing
	got, err := client.ListProducts(ctx, domain.ProductFilter{Category: &clothing})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	featured := true
	got, err = client.ListProducts(ctx, domain.ProductFilter{Featured: &featured})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	product, err := client.GetProduct(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, all[0].Name, product.Name)
	assert.True(t, product.Price.Equal(all[0].Price))

	_, err = client.GetProduct(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Product not found", Message(err, ""))

	_, err = client.GetProduct(ctx, "")
	require.Error(t, err)
}

func TestClient_CartAndOrders(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)

	_, err := client.InitData(ctx)
	require.NoError(t, err)
	products, err := client.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)

	auth, err := client.Register(ctx, gofakeit.Email(), "pa55word", "Jane Doe")
	require.NoError(t, err)
	cred := auth.Token

	cart, err := client.GetCart(ctx, cred)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	first, second := products[0], products[2]
	require.NoError(t, client.AddToCart(ctx, cred, domain.CartItem{ProductID: first.ID, Quantity: 1, Size: first.Sizes[0], Color: first.Colors[0]}))
	require.NoError(t, client.AddToCart(ctx, cred, domain.CartItem{ProductID: first.ID, Quantity: 2, Size: first.Sizes[0], Color: first.Colors[0]}))
	require.NoError(t, client.AddToCart(ctx, cred, domain.CartItem{ProductID: second.ID, Quantity: 1, Size: second.Sizes[0], Color: second.Colors[0]}))

	cart, err = client.GetCart(ctx, cred)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 4, cart.ItemCount())

	require.NoError(t, client.RemoveFromCart(ctx, cred, second.ID))
	cart, err = client.GetCart(ctx, cred)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	order, err := client.CreateOrder(ctx, cred, domain.OrderRequest{Items: cart.Items, ShippingAddress: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(first.Price.Mul(decimal.NewFromInt(3))), order.TotalAmount.String())

	orders, err := client.ListOrders(ctx, cred)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	_, err = client.GetCart(ctx, "")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Not authenticated", Message(err, ""))
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantIs     error
	}{
		{name: "string detail", status: http.StatusUnauthorized, body: `{"detail":"Invalid credentials"}`, wantDetail: "Invalid credentials", wantIs: ErrUnauthorized},
		{name: "validation detail", status: http.StatusUnprocessableEntity, body: `{"detail":[{"loc":["body","email"],"msg":"field required"}]}`, wantDetail: "field required", wantIs: ErrBadRequest},
		{name: "error field", status: http.StatusConflict, body: `{"error":"already exists"}`, wantDetail: "already exists", wantIs: ErrConflict},
		{name: "not json", status: http.StatusNotFound, body: `<html>nope</html>`, wantIs: ErrNotFound},
		{name: "empty body", status: http.StatusForbidden, wantIs: ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Me(context.Background(), "token")
			require.ErrorIs(t, err, tt.wantIs)
			assert.Equal(t, tt.wantDetail, Message(err, ""))
			assert.False(t, Transient(err))
		})
	}
}

func TestClient_SendsBearerCredential(t *testing.T) {
	var gotAuth, gotAccept atomic.Value
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get(AuthorizationKey))
		gotAccept.Store(r.Header.Get("Accept"))
		w.Header().Set(ContentType, ApplicationJSONType)
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	_, err := client.GetCart(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth.Load())
	assert.Equal(t, ApplicationJSONType, gotAccept.Load())
}

func TestClient_ServerErrorIsTransient(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal server error"}`))
	})

	_, err := client.ListProducts(context.Background(), domain.ProductFilter{})
	require.ErrorIs(t, err, ErrServer)
	assert.True(t, Transient(err))
	assert.Equal(t, "Internal server error", Message(err, ""))
}

func TestClient_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithBreaker(BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}))

	ctx := context.Background()
	for range 2 {
		_, err := client.ListProducts(ctx, domain.ProductFilter{})
		require.ErrorIs(t, err, ErrServer)
	}

	_, err := client.ListProducts(ctx, domain.ProductFilter{})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, Transient(err))
	assert.Equal(t, int32(2), hits.Load(), "open breaker short-circuits the request")
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := NewClient(srv.URL+"/api", WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = client.ListProducts(context.Background(), domain.ProductFilter{})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, Transient(err))
	assert.Equal(t, "fallback", Message(err, "fallback"))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := client.ListProducts(context.Background(), domain.ProductFilter{})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
