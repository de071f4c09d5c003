package view

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

const (
	noticeSelectVariant = "Please select size and color"
	noticeAdded         = "Added to cart!"
	noticeAddFailed     = "Failed to add to cart"
)

// ProductList is the catalogue page, optionally filtered.
type ProductList struct {
	catalog Catalog
	log     *zap.Logger
	loader  Loader

	mu       sync.RWMutex
	filter   domain.ProductFilter
	products []domain.Product
}

func NewProductList(c Catalog, log *zap.Logger) *ProductList {
	return &ProductList{catalog: c, log: logger.OrNop(log)}
}

// Load fetches the products matching filter. On failure the previous list is
// kept and the error returned.
func (v *ProductList) Load(ctx context.Context, filter domain.ProductFilter) error {
	token := v.loader.Begin()

	products, err := v.catalog.List(ctx, filter)
	if err != nil {
		v.log.Error("failed to load products", zap.Error(err))
		v.loader.Finish(token, nil)
		return err
	}

	v.loader.Finish(token, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.filter = filter
		v.products = products
	})
	return nil
}

func (v *ProductList) Products() []domain.Product {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.products)
}

func (v *ProductList) Filter() domain.ProductFilter {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filter
}

func (v *ProductList) Pending() bool {
	return v.loader.Pending()
}

// ProductDetail shows one product and lets the user pick a variant.
type ProductDetail struct {
	catalog Catalog
	cart    Cart
	session Session
	log     *zap.Logger
	loader  Loader

	mu       sync.RWMutex
	product  *domain.Product
	size     string
	color    string
	quantity int
}

func NewProductDetail(c Catalog, cartStore Cart, s Session, log *zap.Logger) *ProductDetail {
	return &ProductDetail{
		catalog:  c,
		cart:     cartStore,
		session:  s,
		log:      logger.OrNop(log),
		quantity: 1,
	}
}

// Load fetches product id. A new id clears the variant selection.
func (v *ProductDetail) Load(ctx context.Context, id string) error {
	token := v.loader.Begin()

	p, err := v.catalog.Product(ctx, id)
	if err != nil {
		v.log.Error("failed to load product", zap.String("product_id", id), zap.Error(err))
		v.loader.Finish(token, nil)
		return err
	}

	v.loader.Finish(token, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.product == nil || v.product.ID != p.ID {
			v.size, v.color, v.quantity = "", "", 1
		}
		v.product = &p
	})
	return nil
}

func (v *ProductDetail) Product() *domain.Product {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.product == nil {
		return nil
	}
	p := *v.product
	return &p
}

func (v *ProductDetail) Pending() bool {
	return v.loader.Pending()
}

var (
	ErrUnknownSize  = errors.New("size not offered for this product")
	ErrUnknownColor = errors.New("color not offered for this product")
)

func (v *ProductDetail) SelectSize(size string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.product != nil && !slices.Contains(v.product.Sizes, size) {
		return ErrUnknownSize
	}
	v.size = size
	return nil
}

func (v *ProductDetail) SelectColor(color string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.product != nil && !slices.Contains(v.product.Colors, color) {
		return ErrUnknownColor
	}
	v.color = color
	return nil
}

func (v *ProductDetail) SetQuantity(n int) error {
	if n < 1 {
		return cart.ErrInvalidQuantity
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.quantity = n
	return nil
}

// Selection returns the chosen size, color and quantity.
func (v *ProductDetail) Selection() (size, color string, quantity int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.size, v.color, v.quantity
}

// AddToCart adds the selected variant. Anonymous users are sent to the login
// page; a missing size or color is reported without calling the server.
func (v *ProductDetail) AddToCart(ctx context.Context) Action {
	if v.session.CurrentUser() == nil {
		return Action{Navigate: "/login"}
	}

	v.mu.RLock()
	product := v.product
	size, color, quantity := v.size, v.color, v.quantity
	v.mu.RUnlock()

	if product == nil {
		return Action{Notice: noticeAddFailed, Failed: true}
	}
	if size == "" || color == "" {
		return Action{Notice: noticeSelectVariant, Failed: true}
	}

	err := v.cart.Add(ctx, product.ID, quantity, size, color)
	switch {
	case err == nil:
		return Action{Notice: noticeAdded}
	case errors.Is(err, cart.ErrSelectionRequired):
		return Action{Notice: noticeSelectVariant, Failed: true}
	case errors.Is(err, cart.ErrNotAuthenticated):
		return Action{Navigate: "/login"}
	default:
		return Action{Notice: noticeAddFailed, Failed: true}
	}
}
