package workflow

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-client/internal/auth"
	"github.com/spec-kit/clinic-client/internal/domain"
	"github.com/spec-kit/clinic-client/internal/session"
)

// Auth notices. Login failures are always surfaced with the generic message
// so the client never leaks which of username or password was wrong.
const (
	MsgInvalidCredentials = "Invalid credentials"
	NoticeSessionExpired  = "Session expired. Please login again."
	NoticeLoggedOut       = "Logged out successfully"
)

// ErrInvalidCredentials is returned for any failed token exchange.
var ErrInvalidCredentials = errors.New(MsgInvalidCredentials)

// AuthAPI is the slice of the API client the auth workflow needs.
type AuthAPI interface {
	IssueToken(ctx context.Context, username, password string) (*domain.TokenPair, error)
}

// AuthWorkflow exchanges credentials for a token pair and owns the session
// lifecycle around it. Concurrent login attempts are suppressed by the UI,
// which holds the submitting flag; the workflow itself is a plain
// request/persist sequence.
type AuthWorkflow struct {
	api    AuthAPI
	store  *session.Store
	logger *zap.Logger
}

// NewAuthWorkflow builds the workflow.
func NewAuthWorkflow(api AuthAPI, store *session.Store, logger *zap.Logger) *AuthWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthWorkflow{api: api, store: store, logger: logger}
}

// Login exchanges the username and password for a credential pair, persists
// it, and records the username decoded from the access credential. On any
// issuer rejection it returns ErrInvalidCredentials and persists nothing.
func (w *AuthWorkflow) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	pair, err := w.api.IssueToken(ctx, username, password)
	if err != nil {
		w.logger.Info("login rejected", zap.String("username", username), zap.Error(err))
		return domain.Identity{}, ErrInvalidCredentials
	}

	if err := w.store.Set(pair.Access, pair.Refresh); err != nil {
		return domain.Identity{}, err
	}
	if claims, err := auth.Decode(pair.Access); err == nil && claims.Username != "" {
		if err := w.store.SetUsername(claims.Username); err != nil {
			return domain.Identity{}, err
		}
	}

	w.logger.Info("logged in", zap.String("username", username))
	return w.store.CurrentIdentity(), nil
}

// Logout destroys the session: all persisted keys are cleared together.
func (w *AuthWorkflow) Logout() error {
	w.logger.Info("logged out")
	return w.store.Clear()
}
