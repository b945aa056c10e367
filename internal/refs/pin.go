// Package refs converts human-readable references into stable identifiers:
// handles into DIDs, and pinned-post references to and from their canonical
// post URLs.
package refs

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/feedctl/feedctl/internal/common"
)

// postURLBase is the canonical app origin for post URLs.
const postURLBase = "https://bsky.app"

// Pin is a post address. Either both fields are present or both are absent;
// the zero value means "no pin".
type Pin struct {
	DID  string
	Rkey string
}

// Empty reports whether the pin is absent.
func (p Pin) Empty() bool {
	return p.DID == "" && p.Rkey == ""
}

// EncodePin builds the canonical URL for a pinned post. If either component
// is absent there is no pin and no URL.
func EncodePin(identifier, rkey string) string {
	if identifier == "" || rkey == "" {
		return ""
	}
	return postURLBase + "/profile/" + identifier + "/post/" + rkey
}

// DecodePin parses a post URL of the shape .../profile/<identifier>/post/<rkey>
// back into a Pin. An empty input means "no pin" and decodes to the zero Pin;
// anything else that doesn't match the shape is a validation error.
func DecodePin(raw string) (Pin, error) {
	if raw == "" {
		return Pin{}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Pin{}, fmt.Errorf("%w: parse pinned post url: %v", common.ErrValidation, err)
	}

	segments := strings.Split(u.Path, "/")
	if len(segments) < 5 || segments[2] == "" || segments[4] == "" {
		return Pin{}, fmt.Errorf("%w: pinned post url %q does not look like a post link", common.ErrValidation, raw)
	}

	return Pin{DID: segments[2], Rkey: segments[4]}, nil
}
