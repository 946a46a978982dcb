package auth

import "context"

// Identity is the verified subject of an identity-provider token.
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier verifies tokens issued by an external identity provider.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
}
