// Package feeds reconciles the two sources of truth a feed lives in: the
// registry's draft metadata and the network's published feed-generator
// records. The Reader joins fresh fetches of both into published/unpublished
// partitions; the Controller drives the per-rkey state machine and re-runs
// the Reader after every mutation.
package feeds

import (
	"context"
	"sort"

	"github.com/feedctl/feedctl/internal/network"
	"github.com/feedctl/feedctl/internal/refs"
	"github.com/feedctl/feedctl/internal/registry"
)

// Feed is the derived, view-only entity held in memory. A feed is published
// iff a matching network record exists; only published feeds carry a title
// and description.
type Feed struct {
	Rkey          string
	Title         string
	Description   string
	PinnedPostURL string
}

// Lists holds the two partitions of the reconciled feed set.
type Lists struct {
	Published   []Feed
	Unpublished []Feed
}

type metadataLister interface {
	ListFeeds(ctx context.Context) ([]registry.FeedMetadata, error)
}

type generatorLister interface {
	ListFeedGenerators(ctx context.Context, actor string) ([]network.GeneratorView, error)
}

// Reader computes the published/unpublished partitions as a pure function of
// two freshly fetched lists. It is an explicit map-build-then-partition
// rather than an incremental cache, so the result can never diverge from the
// remote state it was computed from.
type Reader struct {
	registry metadataLister
	network  generatorLister

	// SortByTitle orders the published partition alphabetically by title
	// instead of registry order. Off unless a caller opts in.
	SortByTitle bool
}

func NewReader(reg metadataLister, net generatorLister) *Reader {
	return &Reader{registry: reg, network: net}
}

// ListFeeds fetches both backends and joins them on rkey. Registry order is
// preserved. A network record with no matching registry metadata never
// surfaces: the registry is authoritative for a draft's existence.
func (r *Reader) ListFeeds(ctx context.Context, identifier string) (Lists, error) {
	metadata, err := r.registry.ListFeeds(ctx)
	if err != nil {
		return Lists{}, err
	}

	records, err := r.network.ListFeedGenerators(ctx, identifier)
	if err != nil {
		return Lists{}, err
	}

	byRkey := make(map[string]network.GeneratorView, len(records))
	for _, rec := range records {
		byRkey[rec.Rkey] = rec
	}

	var lists Lists
	for _, m := range metadata {
		pinURL := refs.EncodePin(m.PinnedDID, m.PinnedRkey)

		rec, ok := byRkey[m.Rkey]
		if !ok {
			lists.Unpublished = append(lists.Unpublished, Feed{
				Rkey:          m.Rkey,
				PinnedPostURL: pinURL,
			})
			continue
		}

		lists.Published = append(lists.Published, Feed{
			Rkey:          m.Rkey,
			Title:         rec.DisplayName,
			Description:   rec.Description,
			PinnedPostURL: pinURL,
		})
	}

	if r.SortByTitle {
		sort.SliceStable(lists.Published, func(i, j int) bool {
			return lists.Published[i].Title < lists.Published[j].Title
		})
	}

	return lists, nil
}
