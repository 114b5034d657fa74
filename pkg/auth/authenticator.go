package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoCredentials is returned when a request carries nothing an
// authenticator recognizes.
var ErrNoCredentials = errors.New("no credentials")

// Authenticator resolves the user behind an HTTP request.
type Authenticator interface {
	Authenticate(r *http.Request) (*UserContext, error)
}

// HeaderAuthenticator trusts a user name set by a fronting proxy.
type HeaderAuthenticator struct {
	Header string
}

// Authenticate reads the configured header.
func (a *HeaderAuthenticator) Authenticate(r *http.Request) (*UserContext, error) {
	user := strings.TrimSpace(r.Header.Get(a.Header))
	if user == "" {
		return nil, fmt.Errorf("%w: header %s not set", ErrNoCredentials, a.Header)
	}
	return &UserContext{UserID: user, AuthType: AuthTypeHeader}, nil
}

// ChainedAuthenticator tries multiple authenticators in order.
type ChainedAuthenticator struct {
	authenticators []Authenticator
	allowAnonymous bool
}

// NewChainedAuthenticator creates a new chained authenticator.
func NewChainedAuthenticator(allowAnonymous bool, authenticators ...Authenticator) *ChainedAuthenticator {
	return &ChainedAuthenticator{
		authenticators: authenticators,
		allowAnonymous: allowAnonymous,
	}
}

// Authenticate tries each authenticator in order. A presented but invalid
// credential fails the request even when anonymous access is allowed.
func (c *ChainedAuthenticator) Authenticate(r *http.Request) (*UserContext, error) {
	for _, a := range c.authenticators {
		uc, err := a.Authenticate(r)
		if err == nil && uc != nil {
			return uc, nil
		}
		if err != nil && !errors.Is(err, ErrNoCredentials) {
			return nil, err
		}
	}

	if c.allowAnonymous {
		return &UserContext{UserID: "anonymous", AuthType: AuthTypeAnonymous}, nil
	}
	return nil, ErrNoCredentials
}

// Verify interface compliance.
var (
	_ Authenticator = (*HeaderAuthenticator)(nil)
	_ Authenticator = (*ChainedAuthenticator)(nil)
)
