package devserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const detailProductNotFound = "Product not found"

type ProductHandler struct {
	store   Store
	timeout time.Duration
}

func NewProductHandler(store Store, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		store:   store,
		timeout: timeout,
	}
}

// ProductResponse carries prices as JSON numbers.
type ProductResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Stock       int      `json:"stock"`
	Featured    bool     `json:"featured"`
	CreatedAt   string   `json:"created_at"`
}

type CreateProductRequestDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Stock       int      `json:"stock"`
	Featured    bool     `json:"featured"`
}

func toProductResponse(p domain.Product) ProductResponse {
	price, _ := p.Price.Float64()
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Category:    string(p.Category),
		Images:      nonNil(p.Images),
		Sizes:       nonNil(p.Sizes),
		Colors:      nonNil(p.Colors),
		Stock:       p.Stock,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var filter domain.ProductFilter
	if c := r.URL.Query().Get("category"); c != "" {
		category := domain.ProductCategory(c)
		if !category.Valid() {
			respondError(ctx, w, http.StatusUnprocessableEntity, "category must be one of shoes, clothing, accessories")
			return
		}
		filter.Category = &category
	}
	if f := r.URL.Query().Get("featured"); f != "" {
		featured, err := strconv.ParseBool(f)
		if err != nil {
			respondError(ctx, w, http.StatusUnprocessableEntity, "featured must be a boolean")
			return
		}
		filter.Featured = &featured
	}

	products, err := h.store.ListProducts(ctx, filter)
	if err != nil {
		handleStoreError(ctx, w, err, "")
		return
	}

	res := make([]ProductResponse, len(products))
	for i, p := range products {
		res[i] = toProductResponse(p)
	}
	respondJSON(ctx, w, http.StatusOK, res)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.store.GetProduct(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		handleStoreError(ctx, w, err, detailProductNotFound)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateProductRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	category := domain.ProductCategory(req.Category)
	switch {
	case req.Name == "":
		respondError(ctx, w, http.StatusUnprocessableEntity, "name is required")
		return
	case !category.Valid():
		respondError(ctx, w, http.StatusUnprocessableEntity, "category must be one of shoes, clothing, accessories")
		return
	case req.Price < 0 || req.Stock < 0:
		respondError(ctx, w, http.StatusUnprocessableEntity, "price and stock must not be negative")
		return
	}

	product := domain.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		Category:    category,
		Images:      req.Images,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Stock:       req.Stock,
		Featured:    req.Featured,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.InsertProducts(ctx, []domain.Product{product}); err != nil {
		handleStoreError(ctx, w, err, "")
		return
	}
	respondJSON(ctx, w, http.StatusOK, toProductResponse(product))
}

// InitData seeds the sample catalogue once.
func (h *ProductHandler) InitData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	inserted, err := Seed(ctx, h.store)
	if err != nil {
		handleStoreError(ctx, w, err, "")
		return
	}
	if !inserted {
		respondJSON(ctx, w, http.StatusOK, MessageResponse{Message: msgSampleExists})
		return
	}
	respondJSON(ctx, w, http.StatusOK, MessageResponse{Message: msgSampleInitialized})
}
