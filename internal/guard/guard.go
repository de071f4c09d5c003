// Package guard decides whether a view may be shown for the current session.
package guard

import (
	"strings"

	"github.com/fjod/go_cart/storefront/internal/session"
)

const LoginPath = "/login"

// scoped lists the account views that need a signed-in user.
var scoped = []string{"/cart", "/checkout", "/orders", "/profile"}

type Outcome int

const (
	Allow Outcome = iota
	// Pending means the session is still resolving; show a neutral state.
	Pending
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the guard's answer. To is set only for Redirect.
type Decision struct {
	Outcome Outcome
	To      string
}

// Scoped reports whether path is an account view.
func Scoped(path string) bool {
	for _, p := range scoped {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Check never redirects while the session is resolving.
func Check(state session.State, path string) Decision {
	if !Scoped(path) {
		return Decision{Outcome: Allow}
	}
	if state.Resolving {
		return Decision{Outcome: Pending}
	}
	if state.User == nil {
		return Decision{Outcome: Redirect, To: LoginPath}
	}
	return Decision{Outcome: Allow}
}
