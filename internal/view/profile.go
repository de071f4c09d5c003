package view

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Profile struct {
	session Session
}

func NewProfile(s Session) *Profile {
	return &Profile{session: s}
}

func (v *Profile) User() *domain.User {
	return v.session.CurrentUser()
}

// Logout signs the user out and goes back to the home page.
func (v *Profile) Logout(ctx context.Context) Action {
	v.session.Logout(ctx)
	return Action{Navigate: "/", Notice: "Logged out"}
}
