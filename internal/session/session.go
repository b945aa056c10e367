// Package session owns the credential bridge: it turns a handle + secret
// into a network session and derives the registry client from it. Session
// lifecycle (create/clear) belongs to the Bridge alone; every other component
// receives the Session value explicitly.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/feedctl/feedctl/internal/common"
	"github.com/feedctl/feedctl/internal/network"
	"github.com/feedctl/feedctl/internal/registry"
)

// Session is the credential state shared by all components. DID and AccessJWT
// are set and cleared together: the access credential is only valid while the
// account identifier is present.
type Session struct {
	Handle          string
	Secret          string
	ServiceEndpoint string

	DID        string
	AccessJWT  string
	RefreshJWT string
	Avatar     string

	Network network.Client
}

// Active reports whether the session carries usable credentials.
func (s *Session) Active() bool {
	return s != nil && s.DID != "" && s.AccessJWT != ""
}

// Expired reports whether the access JWT's exp claim has passed. The token is
// decoded without signature verification: the network is the authority on
// validity, this is only an early hint that a refresh is due. Unparseable
// tokens count as expired.
func (s *Session) Expired(now time.Time) bool {
	token, _, err := jwt.NewParser().ParseUnverified(s.AccessJWT, jwt.MapClaims{})
	if err != nil {
		return true
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.After(exp.Time)
}

// RegistryClient derives a registry client from the session. It is only
// constructible once handle, secret, service endpoint, access JWT and DID are
// all present; the registry validates the bearer token against the same
// network the service parameter names.
func (s *Session) RegistryClient(registryBaseURL string) (*registry.Client, error) {
	if s == nil || s.Handle == "" || s.Secret == "" || s.ServiceEndpoint == "" ||
		s.AccessJWT == "" || s.DID == "" {
		return nil, fmt.Errorf("%w: incomplete session", common.ErrValidation)
	}
	return registry.NewClient(registryBaseURL, s.ServiceEndpoint, s.AccessJWT)
}

// clear wipes all credential material in place so that existing holders of
// the pointer observe the teardown too.
func (s *Session) clear() {
	if s == nil {
		return
	}
	*s = Session{}
}
