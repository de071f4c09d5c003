package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

// ErrorResponse is the error body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(ctx).Error("failed to encode response", zap.Error(err))
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, detail string) {
	respondJSON(ctx, w, status, ErrorResponse{Detail: detail})
}

// handleStoreError maps store errors to HTTP responses.
func handleStoreError(ctx context.Context, w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, notFound)
	case errors.Is(err, ErrCartNotFound):
		respondError(ctx, w, http.StatusNotFound, "Cart not found")
	case errors.Is(err, ErrEmailTaken):
		respondError(ctx, w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(ctx, w, http.StatusGatewayTimeout, "Request timed out")
	default:
		logger.FromContext(ctx).Error("store failure", zap.Error(err))
		respondError(ctx, w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
