package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-client/internal/auth"
)

// Status is the guard's verdict for a protected screen activation.
type Status int

const (
	// StatusAuthorized means a credential is present and unexpired.
	StatusAuthorized Status = iota
	// StatusUnauthorized covers every other condition: absent, malformed,
	// or expired credential. The store has already been cleared when this
	// is returned.
	StatusUnauthorized
)

// Guard gates entry to protected screens. It is evaluated once per screen
// activation, not on a timer: a gate, not a background monitor.
type Guard struct {
	store *Store

	// Now is the clock used for expiry evaluation. Overridable in tests.
	Now func() time.Time
}

// NewGuard builds a guard over the given store.
func NewGuard(store *Store) *Guard {
	return &Guard{store: store, Now: time.Now}
}

// Check validates the current session. On any failure it clears the store so
// a stale credential cannot be presented again, and the caller is expected
// to route to the login screen with a session-expired notice.
func (g *Guard) Check() Status {
	access, ok := g.store.Access()
	if ok && !auth.IsExpired(access, g.Now()) {
		return StatusAuthorized
	}
	if err := g.store.Clear(); err != nil {
		g.store.logger.Warn("unable to clear session", zap.Error(err))
	}
	return StatusUnauthorized
}
