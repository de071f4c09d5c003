package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory string

const (
	CategoryShoes       ProductCategory = "shoes"
	CategoryClothing    ProductCategory = "clothing"
	CategoryAccessories ProductCategory = "accessories"
)

func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryShoes, CategoryClothing, CategoryAccessories:
		return true
	}
	return false
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    ProductCategory `json:"category"`
	Images      []string        `json:"images"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Stock       int             `json:"stock"`
	Featured    bool            `json:"featured"`
	CreatedAt   time.Time       `json:"created_at,omitzero"`
}

// ProductFilter narrows a product listing. Nil fields are not applied.
type ProductFilter struct {
	Category *ProductCategory
	Featured *bool
}

func (f ProductFilter) Match(p Product) bool {
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	return true
}
