package domain

// TokenPair is the credential pair issued by the authentication server.
// Credentials are opaque strings; they are superseded on re-login, never
// mutated.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Identity is the display identity derived from the access credential.
type Identity struct {
	Name string
	Role string
}

// FallbackIdentity is shown when no credential is present or the stored one
// cannot be decoded. Identity display must never block a protected screen.
var FallbackIdentity = Identity{Name: "User", Role: "Patient"}
