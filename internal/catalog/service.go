// Package catalog reads products from the remote API. Concurrent reads of the
// same product or listing share one round trip.
package catalog

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

type ProductAPI interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	InitData(ctx context.Context) (string, error)
}

type Service struct {
	api ProductAPI
	log *zap.Logger
	sfg singleflight.Group
}

func NewService(a ProductAPI, log *zap.Logger) *Service {
	return &Service{
		api: a,
		log: logger.OrNop(log),
	}
}

func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	v, shared, err := s.do(ctx, "product:"+id, func(ctx context.Context) (interface{}, error) {
		return s.api.GetProduct(ctx, id)
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	if shared {
		s.log.Debug("product fetch shared", zap.String("product_id", id))
	}
	return v.(domain.Product), nil
}

func (s *Service) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	v, _, err := s.do(ctx, listKey(filter), func(ctx context.Context) (interface{}, error) {
		return s.api.ListProducts(ctx, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := v.([]domain.Product)
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out, nil
}

// do runs fn once for all concurrent callers of key. The shared call is
// detached from any single caller's cancellation and is bounded by the API
// client's own request timeout; a caller whose ctx ends stops waiting.
func (s *Service) do(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, bool, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.sfg.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Seed asks the server to load its sample catalogue and returns the server's
// message.
func (s *Service) Seed(ctx context.Context) (string, error) {
	msg, err := s.api.InitData(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to seed catalogue: %w", err)
	}
	return msg, nil
}

func listKey(f domain.ProductFilter) string {
	key := "list:"
	if f.Category != nil {
		key += string(*f.Category)
	}
	key += ":"
	if f.Featured != nil {
		key += strconv.FormatBool(*f.Featured)
	}
	return key
}
