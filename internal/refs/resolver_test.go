package refs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feedctl/feedctl/internal/common"
)

type fakeHandleResolver struct {
	Ret string
	Err error

	Calls      int
	LastHandle string
}

func (f *fakeHandleResolver) ResolveHandle(ctx context.Context, handle string) (string, error) {
	f.Calls++
	f.LastHandle = handle
	return f.Ret, f.Err
}

func TestResolveHandle_EmptyPassesThrough(t *testing.T) {
	fake := &fakeHandleResolver{}
	r := NewResolver(fake)

	got, err := r.ResolveHandle(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "", got)
	require.Zero(t, fake.Calls)
}

func TestResolveHandle_DIDNeverHitsTheNetwork(t *testing.T) {
	fake := &fakeHandleResolver{}
	r := NewResolver(fake)

	got, err := r.ResolveHandle(context.Background(), "did:plc:xyz")
	require.NoError(t, err)
	require.Equal(t, "did:plc:xyz", got)
	require.Zero(t, fake.Calls)
}

func TestResolveHandle_ResolvesViaNetwork(t *testing.T) {
	fake := &fakeHandleResolver{Ret: "did:plc:alice"}
	r := NewResolver(fake)

	got, err := r.ResolveHandle(context.Background(), "alice.example")
	require.NoError(t, err)
	require.Equal(t, "did:plc:alice", got)
	require.Equal(t, 1, fake.Calls)
	require.Equal(t, "alice.example", fake.LastHandle)
}

func TestResolvePin_NormalizesHandle(t *testing.T) {
	fake := &fakeHandleResolver{Ret: "did:plc:alice"}
	r := NewResolver(fake)

	pin, err := r.ResolvePin(context.Background(), Pin{DID: "alice.example", Rkey: "3kabc"})
	require.NoError(t, err)
	require.Equal(t, Pin{DID: "did:plc:alice", Rkey: "3kabc"}, pin)
}

func TestResolvePin_EmptyPinSkipsResolution(t *testing.T) {
	fake := &fakeHandleResolver{}
	r := NewResolver(fake)

	pin, err := r.ResolvePin(context.Background(), Pin{})
	require.NoError(t, err)
	require.True(t, pin.Empty())
	require.Zero(t, fake.Calls)
}

func TestResolvePin_PropagatesResolutionError(t *testing.T) {
	fake := &fakeHandleResolver{Err: common.ErrResolution}
	r := NewResolver(fake)

	_, err := r.ResolvePin(context.Background(), Pin{DID: "alice.example", Rkey: "3kabc"})
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrResolution))
}
