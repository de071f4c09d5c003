package devserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

const (
	detailNotAuthenticated   = "Not authenticated"
	detailInvalidCredentials = "Invalid credentials"
)

type AuthHandler struct {
	store      Store
	tokens     *Tokens
	timeout    time.Duration
	bcryptCost int
}

func NewAuthHandler(store Store, tokens *Tokens, timeout time.Duration, bcryptCost int) *AuthHandler {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		store:      store,
		tokens:     tokens,
		timeout:    timeout,
		bcryptCost: bcryptCost,
	}
}

type RegisterRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponseDTO struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.FullName) == "" {
		respondError(ctx, w, http.StatusUnprocessableEntity, "email, password and full_name are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		logger.FromContext(ctx).Error("failed to hash password", zap.Error(err))
		respondError(ctx, w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := domain.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		FullName:  req.FullName,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateUser(ctx, UserRecord{User: user, PasswordHash: string(hash)}); err != nil {
		handleStoreError(ctx, w, err, "")
		return
	}

	h.respondWithToken(ctx, w, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	rec, err := h.store.UserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(ctx, w, http.StatusUnauthorized, detailInvalidCredentials)
			return
		}
		handleStoreError(ctx, w, err, "")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(req.Password)); err != nil {
		respondError(ctx, w, http.StatusUnauthorized, detailInvalidCredentials)
		return
	}

	h.respondWithToken(ctx, w, rec.User)
}

func (h *AuthHandler) respondWithToken(ctx context.Context, w http.ResponseWriter, user domain.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to issue token", zap.Error(err))
		respondError(ctx, w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(ctx, w, http.StatusOK, AuthResponseDTO{User: user, Token: token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := currentUser(ctx, w, h.store)
	if !ok {
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

// currentUser resolves the authenticated user, answering 401 itself when
// there is none.
func currentUser(ctx context.Context, w http.ResponseWriter, store Store) (domain.User, bool) {
	userID := getUserIDFromContext(ctx)
	if userID == "" {
		respondError(ctx, w, http.StatusUnauthorized, detailNotAuthenticated)
		return domain.User{}, false
	}

	user, err := store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(ctx, w, http.StatusUnauthorized, detailNotAuthenticated)
			return domain.User{}, false
		}
		handleStoreError(ctx, w, err, "")
		return domain.User{}, false
	}
	return user, true
}
