package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/clinic-client/internal/auth"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "clinic", "session.json"), nil)
}

func mintToken(t *testing.T, claims *auth.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestStoreSetAndRead(t *testing.T) {
	store := newTestStore(t)
	if err := store.Set("access-1", "refresh-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetUsername("alice"); err != nil {
		t.Fatalf("set username: %v", err)
	}

	if access, ok := store.Access(); !ok || access != "access-1" {
		t.Errorf("access = %q, %v", access, ok)
	}
	if refresh, ok := store.Refresh(); !ok || refresh != "refresh-1" {
		t.Errorf("refresh = %q, %v", refresh, ok)
	}
	if username, ok := store.Username(); !ok || username != "alice" {
		t.Errorf("username = %q, %v", username, ok)
	}
}

func TestStoreSetSupersedesCredentials(t *testing.T) {
	store := newTestStore(t)
	if err := store.Set("access-1", "refresh-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set("access-2", "refresh-2"); err != nil {
		t.Fatalf("second set: %v", err)
	}
	if access, _ := store.Access(); access != "access-2" {
		t.Errorf("expected superseded credential, got %q", access)
	}
}

func TestStoreClearRemovesAllKeys(t *testing.T) {
	store := newTestStore(t)
	if err := store.Set("access-1", "refresh-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetUsername("alice"); err != nil {
		t.Fatalf("set username: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if _, ok := store.Access(); ok {
		t.Error("access credential survived clear")
	}
	if _, ok := store.Refresh(); ok {
		t.Error("refresh credential survived clear")
	}
	if _, ok := store.Username(); ok {
		t.Error("username survived clear")
	}
	// Clearing an already-empty store is not an error.
	if err := store.Clear(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}

func TestStoreFilePermissions(t *testing.T) {
	store := newTestStore(t)
	if err := store.Set("access-1", "refresh-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	info, err := os.Stat(store.path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file mode = %v, want 0600", perm)
	}
}

func TestStoreCorruptFileTreatedAsEmpty(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(store.path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Access(); ok {
		t.Error("corrupt file should read as absent credential")
	}
	if id := store.CurrentIdentity(); id.Name != "User" || id.Role != "Patient" {
		t.Errorf("expected fallback identity, got %+v", id)
	}
}

func TestCurrentIdentity(t *testing.T) {
	store := newTestStore(t)

	if id := store.CurrentIdentity(); id.Name != "User" || id.Role != "Patient" {
		t.Errorf("empty store: expected fallback identity, got %+v", id)
	}

	token := mintToken(t, &auth.Claims{Username: "alice", Role: "Staff"})
	if err := store.Set(token, "refresh-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if id := store.CurrentIdentity(); id.Name != "alice" || id.Role != "Staff" {
		t.Errorf("unexpected identity: %+v", id)
	}

	if err := store.Set("garbage", "refresh-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if id := store.CurrentIdentity(); id.Name != "User" || id.Role != "Patient" {
		t.Errorf("undecodable credential: expected fallback identity, got %+v", id)
	}
}

func TestStoreFileShape(t *testing.T) {
	store := newTestStore(t)
	if err := store.Set("access-1", "refresh-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetUsername("alice"); err != nil {
		t.Fatalf("set username: %v", err)
	}

	data, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"access_token", "refresh_token", "username"} {
		if values[key] == "" {
			t.Errorf("missing key %q in session file", key)
		}
	}
}

func TestGuardAuthorized(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	token := mintToken(t, &auth.Claims{
		Username:         "alice",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	})
	if err := store.Set(token, "refresh-1"); err != nil {
		t.Fatalf("set: %v", err)
	}

	guard := NewGuard(store)
	guard.Now = func() time.Time { return now }
	if status := guard.Check(); status != StatusAuthorized {
		t.Fatalf("expected authorized, got %v", status)
	}
	// The credential survives an authorized check.
	if _, ok := store.Access(); !ok {
		t.Error("authorized check must not clear the store")
	}
}

func TestGuardExpiredCredentialClearsStore(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	token := mintToken(t, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second))},
	})
	if err := store.Set(token, "refresh-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetUsername("alice"); err != nil {
		t.Fatalf("set username: %v", err)
	}

	guard := NewGuard(store)
	guard.Now = func() time.Time { return now }
	if status := guard.Check(); status != StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %v", status)
	}
	if _, ok := store.Access(); ok {
		t.Error("expired session must be cleared")
	}
	if _, ok := store.Username(); ok {
		t.Error("username must be cleared with the credentials")
	}
	// Re-entry stays unauthorized.
	if status := guard.Check(); status != StatusUnauthorized {
		t.Error("re-entry after expiry should remain unauthorized")
	}
}

func TestGuardAbsentAndMalformedCredential(t *testing.T) {
	store := newTestStore(t)
	guard := NewGuard(store)
	if status := guard.Check(); status != StatusUnauthorized {
		t.Errorf("absent credential: expected unauthorized, got %v", status)
	}

	if err := store.Set("not.a.token", "refresh-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if status := guard.Check(); status != StatusUnauthorized {
		t.Errorf("malformed credential: expected unauthorized, got %v", status)
	}
	if _, ok := store.Access(); ok {
		t.Error("malformed credential must be cleared")
	}
}
