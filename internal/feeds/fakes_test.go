package feeds

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/feedctl/feedctl/internal/common"
	"github.com/feedctl/feedctl/internal/network"
	"github.com/feedctl/feedctl/internal/refs"
	"github.com/feedctl/feedctl/internal/registry"
)

// fakeRegistry is an in-memory registry. Mutations keep the metadata list in
// registry order (append order); the shared call log records the sequence of
// remote effects across both fakes.
type fakeRegistry struct {
	feeds []registry.FeedMetadata

	ListErr   error
	UpsertErr error
	PatchErr  error
	DeleteErr error

	calls *[]string
}

func (f *fakeRegistry) record(format string, args ...any) {
	if f.calls != nil {
		*f.calls = append(*f.calls, fmt.Sprintf(format, args...))
	}
}

func (f *fakeRegistry) ListFeeds(ctx context.Context) ([]registry.FeedMetadata, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]registry.FeedMetadata(nil), f.feeds...), nil
}

func (f *fakeRegistry) UpsertClassifier(ctx context.Context, rkey string, classifier io.Reader, pinnedDID, pinnedRkey string) error {
	if f.UpsertErr != nil {
		return f.UpsertErr
	}
	f.record("registry.upsert %s", rkey)

	for i := range f.feeds {
		if f.feeds[i].Rkey == rkey {
			f.feeds[i].PinnedDID = pinnedDID
			f.feeds[i].PinnedRkey = pinnedRkey
			return nil
		}
	}
	f.feeds = append(f.feeds, registry.FeedMetadata{Rkey: rkey, PinnedDID: pinnedDID, PinnedRkey: pinnedRkey})
	return nil
}

func (f *fakeRegistry) PatchMetadata(ctx context.Context, rkey, pinnedDID, pinnedRkey string) error {
	if f.PatchErr != nil {
		return f.PatchErr
	}
	f.record("registry.patch %s", rkey)

	for i := range f.feeds {
		if f.feeds[i].Rkey == rkey {
			f.feeds[i].PinnedDID = pinnedDID
			f.feeds[i].PinnedRkey = pinnedRkey
			return nil
		}
	}
	return fmt.Errorf("%w: no feed %q", common.ErrRemoteWrite, rkey)
}

func (f *fakeRegistry) DeleteFeed(ctx context.Context, rkey string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.record("registry.delete %s", rkey)

	kept := f.feeds[:0]
	for _, m := range f.feeds {
		if m.Rkey != rkey {
			kept = append(kept, m)
		}
	}
	f.feeds = kept
	return nil
}

// fakeNetwork is an in-memory record repository keyed by rkey.
type fakeNetwork struct {
	records map[string]network.GeneratorView

	ListErr   error
	GetErr    error
	CreateErr error
	PutErr    error
	DeleteErr error

	LastPutSwapCID string

	calls *[]string
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{records: map[string]network.GeneratorView{}}
}

func (f *fakeNetwork) record(format string, args ...any) {
	if f.calls != nil {
		*f.calls = append(*f.calls, fmt.Sprintf(format, args...))
	}
}

func (f *fakeNetwork) put(rkey, cid string, rec network.GeneratorRecord) {
	f.records[rkey] = network.GeneratorView{
		URI:         "at://did:plc:owner/" + network.FeedGeneratorCollection + "/" + rkey,
		Rkey:        rkey,
		CID:         cid,
		DisplayName: rec.DisplayName,
		Description: rec.Description,
	}
}

func (f *fakeNetwork) ListFeedGenerators(ctx context.Context, actor string) ([]network.GeneratorView, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var views []network.GeneratorView
	for _, v := range f.records {
		views = append(views, v)
	}
	return views, nil
}

func (f *fakeNetwork) GetFeedGenerator(ctx context.Context, repo, rkey string) (*network.GeneratorView, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	v, ok := f.records[rkey]
	if !ok {
		return nil, fmt.Errorf("%w: no record %q", common.ErrResolution, rkey)
	}
	return &v, nil
}

func (f *fakeNetwork) CreateFeedGenerator(ctx context.Context, repo, rkey string, rec network.GeneratorRecord) error {
	if f.CreateErr != nil {
		return f.CreateErr
	}
	if _, ok := f.records[rkey]; ok {
		return fmt.Errorf("%w: record %q exists", common.ErrRemoteWrite, rkey)
	}
	f.record("network.create %s", rkey)
	f.put(rkey, "cid-1", rec)
	return nil
}

func (f *fakeNetwork) PutFeedGenerator(ctx context.Context, repo, rkey string, rec network.GeneratorRecord, swapCID string) error {
	if f.PutErr != nil {
		return f.PutErr
	}
	f.LastPutSwapCID = swapCID
	existing, ok := f.records[rkey]
	if !ok {
		return fmt.Errorf("%w: no record %q", common.ErrRemoteWrite, rkey)
	}
	if swapCID != existing.CID {
		return fmt.Errorf("%w: stale swap cid for %q", common.ErrRemoteWrite, rkey)
	}
	f.record("network.put %s", rkey)
	f.put(rkey, existing.CID+"'", rec)
	return nil
}

func (f *fakeNetwork) DeleteFeedGenerator(ctx context.Context, repo, rkey string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.record("network.delete %s", rkey)
	delete(f.records, rkey)
	return nil
}

// fakeResolver normalizes anything without a did: prefix the way the real
// resolver would.
type fakeResolver struct {
	Err error
}

func (f *fakeResolver) ResolvePin(ctx context.Context, pin refs.Pin) (refs.Pin, error) {
	if f.Err != nil {
		return refs.Pin{}, f.Err
	}
	if pin.Empty() || strings.HasPrefix(pin.DID, "did:") {
		return pin, nil
	}
	return refs.Pin{DID: "did:plc:" + pin.DID, Rkey: pin.Rkey}, nil
}
