package session

import (
	"context"
	"fmt"

	"github.com/feedctl/feedctl/internal/common"
	"github.com/feedctl/feedctl/internal/logging"
	"github.com/feedctl/feedctl/internal/network"
)

// Bridge establishes and tears down sessions. It is the only component that
// mutates Session state.
type Bridge struct {
	log logging.Logger

	// newClient is a seam for tests; defaults to the XRPC transport.
	newClient func(serviceEndpoint string) network.Client

	session *Session
}

func NewBridge(log logging.Logger) *Bridge {
	return &Bridge{
		log: log,
		newClient: func(serviceEndpoint string) network.Client {
			return network.NewXRPCClient(serviceEndpoint)
		},
	}
}

// Session returns the current session, or nil when logged out.
func (b *Bridge) Session() *Session {
	return b.session
}

// Login authenticates against the network's identity endpoint and fetches the
// account avatar. A failure in either step clears any partial session state
// and reports ErrAuthentication, so callers treat both as a forced logout.
// (A transient profile-fetch error does not prove the credentials are bad;
// the coupling is preserved from the existing behavior and is under review.)
func (b *Bridge) Login(ctx context.Context, handle, secret, serviceEndpoint string) (*Session, error) {
	if handle == "" || secret == "" || serviceEndpoint == "" {
		return nil, fmt.Errorf("%w: handle, secret and service endpoint are required", common.ErrValidation)
	}

	client := b.newClient(serviceEndpoint)

	tokens, err := client.CreateSession(ctx, handle, secret)
	if err != nil {
		b.Logout()
		return nil, fmt.Errorf("%w: login as %q: %v", common.ErrAuthentication, handle, err)
	}

	s := &Session{
		Handle:          handle,
		Secret:          secret,
		ServiceEndpoint: serviceEndpoint,
		DID:             tokens.DID,
		AccessJWT:       tokens.AccessJWT,
		RefreshJWT:      tokens.RefreshJWT,
		Network:         client,
	}

	profile, err := client.GetProfile(ctx, handle)
	if err != nil {
		b.session = s
		b.Logout()
		return nil, fmt.Errorf("%w: fetch profile for %q: %v", common.ErrAuthentication, handle, err)
	}
	s.Avatar = profile.Avatar

	b.session = s
	b.log.Info(ctx, "logged in", "handle", handle, "did", s.DID)

	return s, nil
}

// Refresh re-mints the session tokens from the refresh JWT. On failure the
// session is cleared, same as any other authentication failure.
func (b *Bridge) Refresh(ctx context.Context) error {
	s := b.session
	if !s.Active() {
		return fmt.Errorf("%w: no active session", common.ErrAuthentication)
	}

	tokens, err := s.Network.RefreshSession(ctx)
	if err != nil {
		b.Logout()
		return fmt.Errorf("%w: refresh session: %v", common.ErrAuthentication, err)
	}

	s.DID = tokens.DID
	s.Handle = tokens.Handle
	s.AccessJWT = tokens.AccessJWT
	s.RefreshJWT = tokens.RefreshJWT

	return nil
}

// Logout clears all session fields. Safe to call when already logged out.
func (b *Bridge) Logout() {
	if b.session == nil {
		return
	}
	b.session.clear()
	b.session = nil
}
