package session

import (
	"errors"

	"github.com/smartwaste/pickup/pkg/domain"
)

// ErrUnauthenticated is returned when a protected action has no user.
var ErrUnauthenticated = errors.New(`not logged in, run "pickup login"`)

// Guard decides whether protected screens and commands may run. The store it
// reads is loaded from storage when opened, so no second source is consulted.
type Guard struct {
	store *Store
}

// NewGuard returns a guard over store.
func NewGuard(store *Store) Guard {
	return Guard{store: store}
}

// Allow reports whether a user is resolvable. It has no side effects.
func (g Guard) Allow() bool {
	return g.store != nil && g.store.Current().HasUser()
}

// Require returns the current user or ErrUnauthenticated.
func (g Guard) Require() (domain.User, error) {
	if !g.Allow() {
		return nil, ErrUnauthenticated
	}
	return g.store.Current().User, nil
}
