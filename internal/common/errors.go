// Package common defines shared sentinel errors used across the feedctl
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrAuthentication means the network rejected the session credentials,
	// or a call that is treated the same way failed (e.g. the profile fetch
	// right after login). Handlers must clear the session when they see it.
	ErrAuthentication = errors.New("authentication failed")

	// ErrResolution means a network query failed: listing feed-generator
	// records or resolving a handle to a DID.
	ErrResolution = errors.New("resolution failed")

	// ErrValidation covers malformed local input: bad resource keys and
	// pinned-post URLs that don't have the expected shape.
	ErrValidation = errors.New("validation failed")

	// ErrRemoteWrite means a registry or network write was rejected.
	ErrRemoteWrite = errors.New("remote write failed")
)

// ForcesLogout reports whether err requires tearing down the session.
func ForcesLogout(err error) bool {
	return errors.Is(err, ErrAuthentication)
}
