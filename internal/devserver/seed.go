package devserver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	msgSampleExists      = "Sample data already exists"
	msgSampleInitialized = "Sample data initialized successfully"
)

const unsplash = "https://images.unsplash.com/"

// SampleProducts returns the demo catalogue with fresh ids.
func SampleProducts() []domain.Product {
	now := time.Now().UTC()
	shoeSizes := []string{"7", "7.5", "8", "8.5", "9", "9.5", "10", "10.5", "11", "11.5", "12"}
	apparelSizes := []string{"S", "M", "L", "XL", "XXL"}

	products := []domain.Product{
		{
			Name:        "Nike Air Force 1 '07",
			Description: "The basketball original with durably stitched overlays, clean finishes and the perfect amount of flash.",
			Price:       decimal.NewFromInt(90),
			Category:    domain.CategoryShoes,
			Images:      []string{unsplash + "photo-1595950653106-6c9ebd614d3a", unsplash + "photo-1542291026-7eec264c27ff"},
			Sizes:       shoeSizes,
			Colors:      []string{"White", "Black", "Red"},
			Stock:       50,
			Featured:    true,
		},
		{
			Name:        "Nike Legend Essential 2",
			Description: "Comfortable, versatile and durable, made for circuit training, light running or any other workout.",
			Price:       decimal.NewFromInt(60),
			Category:    domain.CategoryShoes,
			Images:      []string{unsplash + "photo-1605408499391-6368c628ef42"},
			Sizes:       []string{"6", "6.5", "7", "7.5", "8", "8.5", "9", "9.5", "10"},
			Colors:      []string{"Black", "Pink", "Blue"},
			Stock:       30,
			Featured:    true,
		},
		{
			Name:        "Nike Dri-FIT Shirt",
			Description: "Sweat-wicking fabric in a comfortable fit keeps you dry through the workout.",
			Price:       decimal.NewFromInt(25),
			Category:    domain.CategoryClothing,
			Images:      []string{unsplash + "photo-1562157873-818bc0726f68"},
			Sizes:       apparelSizes,
			Colors:      []string{"Blue", "Red", "Green", "Black", "White"},
			Stock:       100,
		},
		{
			Name:        "Nike Air Jordan 1",
			Description: "The Retro High OG stays true to its original DNA with premium materials and Nike Air cushioning.",
			Price:       decimal.NewFromInt(170),
			Category:    domain.CategoryShoes,
			Images:      []string{unsplash + "photo-1552346154-21d32810aba3"},
			Sizes:       shoeSizes,
			Colors:      []string{"Black/Red", "White/Black"},
			Stock:       25,
			Featured:    true,
		},
		{
			Name:        "Nike Sportswear Hoodie",
			Description: "Soft Club Fleece with a spacious fit that stays comfortable all day.",
			Price:       decimal.NewFromInt(55),
			Category:    domain.CategoryClothing,
			Images:      []string{unsplash + "photo-1489987707025-afc232f7ea0f"},
			Sizes:       apparelSizes,
			Colors:      []string{"Black", "Grey", "Navy", "Red"},
			Stock:       75,
		},
		{
			Name:        "Nike SuperRep Go",
			Description: "Stability and flexibility for circuit training and HIIT workouts.",
			Price:       decimal.NewFromInt(80),
			Category:    domain.CategoryShoes,
			Images:      []string{unsplash + "photo-1606107557195-0e29a4b5b4aa"},
			Sizes:       []string{"6", "6.5", "7", "7.5", "8", "8.5", "9", "9.5", "10", "10.5"},
			Colors:      []string{"Green", "Black", "White"},
			Stock:       40,
		},
	}

	for i := range products {
		products[i].ID = uuid.New().String()
		products[i].CreatedAt = now
	}
	return products
}

// Seed loads the sample catalogue into an empty store. It reports whether
// anything was inserted.
func Seed(ctx context.Context, store Store) (bool, error) {
	n, err := store.CountProducts(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count products: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := store.InsertProducts(ctx, SampleProducts()); err != nil {
		return false, fmt.Errorf("failed to insert sample products: %w", err)
	}
	return true, nil
}
