package view

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// maxProductFetches bounds the parallel product lookups of one view.
const maxProductFetches = 4

// Line is a cart line joined with its product. Product is nil when the
// product could not be fetched.
type Line struct {
	Item     domain.CartItem
	Product  *domain.Product
	Subtotal decimal.Decimal
}

// fetchProducts looks up every distinct product in parallel. Failed lookups
// are logged and left out of the result.
func fetchProducts(ctx context.Context, c Catalog, ids []string, log *zap.Logger) map[string]domain.Product {
	var (
		mu       sync.Mutex
		products = make(map[string]domain.Product, len(ids))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxProductFetches)
	for _, id := range ids {
		g.Go(func() error {
			p, err := c.Product(gctx, id)
			if err != nil {
				log.Warn("failed to fetch cart product", zap.String("product_id", id), zap.Error(err))
				return nil
			}
			mu.Lock()
			products[id] = p
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return products
}

func buildLines(items []domain.CartItem, products map[string]domain.Product) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		line := Line{Item: item, Subtotal: decimal.Zero}
		if p, ok := products[item.ProductID]; ok {
			line.Product = &p
			line.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		lines = append(lines, line)
	}
	return lines
}

// Total sums the subtotals of lines whose product is known.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total
}
