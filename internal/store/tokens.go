package store

import (
	"fmt"
	"os"
)

// TokenProvider resolves the access token for a store. A missing credential is
// the one fatal condition of a migration run, so failure here is an error, not
// an empty string.
type TokenProvider interface {
	Token(storeID string) (string, error)
}

// EnvTokenProvider reads tokens from STORE_TOKEN_<storeID> environment
// variables.
type EnvTokenProvider struct {
	Prefix string
}

func NewEnvTokenProvider() *EnvTokenProvider {
	return &EnvTokenProvider{Prefix: "STORE_TOKEN_"}
}

func (p *EnvTokenProvider) Token(storeID string) (string, error) {
	token := os.Getenv(p.Prefix + storeID)
	if token == "" {
		return "", fmt.Errorf("no access token configured for store %s", storeID)
	}
	return token, nil
}
