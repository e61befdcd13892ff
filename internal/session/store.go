package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-client/internal/auth"
	"github.com/spec-kit/clinic-client/internal/domain"
)

// Fixed keys in the session file, mirroring what the server-side API expects
// clients to keep. All three are cleared together on logout or expiry.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUsername     = "username"
)

// Store persists the credential pair and last-known username for one user in
// a small JSON key/value file. Exactly one session is active per process.
//
// The store never caches expiry state: expiry is recomputed on demand from
// the stored credential and the caller's clock, so there is no stale flag to
// go wrong.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore builds a store backed by the file at path. The file and its
// directory are created on first write.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Set persists both credentials. Effective immediately for all subsequent
// reads.
func (s *Store) Set(access, refresh string) error {
	values := s.load()
	values[keyAccessToken] = access
	values[keyRefreshToken] = refresh
	return s.save(values)
}

// SetUsername records the username decoded from the access credential at
// login time.
func (s *Store) SetUsername(username string) error {
	values := s.load()
	values[keyUsername] = username
	return s.save(values)
}

// Access returns the stored access credential, if any.
func (s *Store) Access() (string, bool) {
	return s.lookup(keyAccessToken)
}

// Refresh returns the stored refresh credential, if any.
func (s *Store) Refresh() (string, bool) {
	return s.lookup(keyRefreshToken)
}

// Username returns the last-known username, if any.
func (s *Store) Username() (string, bool) {
	return s.lookup(keyUsername)
}

// Clear removes every session key, including the derived username. Called on
// logout and on detected expiry.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// CurrentIdentity derives the display identity from the stored access
// credential. It never fails: with no credential, or one that cannot be
// decoded, it returns the fallback identity so protected screens always have
// something to render.
func (s *Store) CurrentIdentity() domain.Identity {
	access, ok := s.Access()
	if !ok {
		return domain.FallbackIdentity
	}
	claims, err := auth.Decode(access)
	if err != nil {
		return domain.FallbackIdentity
	}
	return claims.Identity()
}

func (s *Store) lookup(key string) (string, bool) {
	value, ok := s.load()[key]
	return value, ok && value != ""
}

func (s *Store) load() map[string]string {
	values := map[string]string{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("unable to read session file", zap.String("path", s.path), zap.Error(err))
		}
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Warn("session file corrupt, treating as empty", zap.String("path", s.path), zap.Error(err))
		return map[string]string{}
	}
	return values
}

func (s *Store) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
