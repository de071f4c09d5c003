// Package credstore persists the bearer credential across process restarts.
// Nothing else of the client state is persisted.
package credstore

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrNotFound = errors.New("credential not found")

// Store keeps one credential per profile.
type Store interface {
	// Load returns ErrNotFound when no credential is stored.
	Load(ctx context.Context) (domain.Credential, error)
	Save(ctx context.Context, cred domain.Credential) error
	// Clear removes the credential; clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
