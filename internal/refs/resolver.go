package refs

import (
	"context"
	"strings"
)

const didPrefix = "did:"

// HandleResolver is the network's handle-resolution endpoint.
type HandleResolver interface {
	ResolveHandle(ctx context.Context, handle string) (string, error)
}

// Resolver normalizes handles into DIDs through the network's
// handle-resolution endpoint.
type Resolver struct {
	network HandleResolver
}

func NewResolver(client HandleResolver) *Resolver {
	return &Resolver{network: client}
}

// ResolveHandle converts ref into a stable identifier. Empty refs and refs
// already in DID form are returned unchanged without a network call.
func (r *Resolver) ResolveHandle(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return ref, nil
	}
	if strings.HasPrefix(ref, didPrefix) {
		return ref, nil
	}
	return r.network.ResolveHandle(ctx, ref)
}

// ResolvePin normalizes the pin's identifier to a DID before it is persisted.
// The zero pin passes through untouched.
func (r *Resolver) ResolvePin(ctx context.Context, pin Pin) (Pin, error) {
	if pin.Empty() {
		return pin, nil
	}

	did, err := r.ResolveHandle(ctx, pin.DID)
	if err != nil {
		return Pin{}, err
	}
	return Pin{DID: did, Rkey: pin.Rkey}, nil
}
