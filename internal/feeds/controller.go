package feeds

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sync"
	"time"

	"github.com/feedctl/feedctl/internal/common"
	"github.com/feedctl/feedctl/internal/logging"
	"github.com/feedctl/feedctl/internal/network"
	"github.com/feedctl/feedctl/internal/refs"
	"github.com/feedctl/feedctl/internal/registry"
)

// rkeyPattern is the constraint a resource key must satisfy.
var rkeyPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,15}$`)

// Registry is the write surface of the registry the controller needs.
type Registry interface {
	ListFeeds(ctx context.Context) ([]registry.FeedMetadata, error)
	UpsertClassifier(ctx context.Context, rkey string, classifier io.Reader, pinnedDID, pinnedRkey string) error
	PatchMetadata(ctx context.Context, rkey, pinnedDID, pinnedRkey string) error
	DeleteFeed(ctx context.Context, rkey string) error
}

// Network is the record surface of the network the controller needs.
type Network interface {
	ListFeedGenerators(ctx context.Context, actor string) ([]network.GeneratorView, error)
	GetFeedGenerator(ctx context.Context, repo, rkey string) (*network.GeneratorView, error)
	CreateFeedGenerator(ctx context.Context, repo, rkey string, record network.GeneratorRecord) error
	PutFeedGenerator(ctx context.Context, repo, rkey string, record network.GeneratorRecord, swapCID string) error
	DeleteFeedGenerator(ctx context.Context, repo, rkey string) error
}

// PinResolver normalizes pin identifiers before they are persisted.
type PinResolver interface {
	ResolvePin(ctx context.Context, pin refs.Pin) (refs.Pin, error)
}

// Controller exposes the state-changing feed operations. Every mutation ends
// by re-running the Reader and replacing the in-memory lists wholesale; on
// any failure the lists keep their last successfully reconciled values.
//
// The controller is single-flight from the caller's perspective: Busy is set
// for the duration of a mutation and the read that follows it, and callers
// must not issue a second mutation while one is in flight. That is a caller
// contract, not enforced here.
type Controller struct {
	registry Registry
	network  Network
	resolver PinResolver
	reader   *Reader
	log      logging.Logger

	// identifier is the stable account id owning the repository records.
	identifier string

	mu    sync.Mutex
	busy  bool
	lists Lists
}

func NewController(reg Registry, net Network, resolver PinResolver, identifier string, log logging.Logger) *Controller {
	return &Controller{
		registry:   reg,
		network:    net,
		resolver:   resolver,
		reader:     NewReader(reg, net),
		log:        log,
		identifier: identifier,
	}
}

// SetSortByTitle overrides the published-feed ordering for subsequent reads.
func (c *Controller) SetSortByTitle(v bool) {
	c.reader.SortByTitle = v
}

// Busy reports whether a mutation (plus its trailing re-read) is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Feeds returns a copy of the last reconciled partitions.
func (c *Controller) Feeds() Lists {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Lists{
		Published:   append([]Feed(nil), c.lists.Published...),
		Unpublished: append([]Feed(nil), c.lists.Unpublished...),
	}
}

func (c *Controller) begin() {
	c.mu.Lock()
	c.busy = true
	c.mu.Unlock()
}

func (c *Controller) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// Refresh re-derives the published/unpublished partitions from fresh reads.
func (c *Controller) Refresh(ctx context.Context) error {
	c.begin()
	defer c.end()
	return c.refresh(ctx)
}

func (c *Controller) refresh(ctx context.Context) error {
	lists, err := c.reader.ListFeeds(ctx, c.identifier)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.lists = lists
	c.mu.Unlock()

	c.log.Debug(ctx, "reconciled feeds",
		"published", len(lists.Published), "unpublished", len(lists.Unpublished))
	return nil
}

// Create uploads a new classifier under rkey together with its pin metadata.
// The resulting feed is unpublished until finalized.
func (c *Controller) Create(ctx context.Context, rkey string, classifier io.Reader, pin refs.Pin) error {
	c.begin()
	defer c.end()

	if !rkeyPattern.MatchString(rkey) {
		return fmt.Errorf("%w: rkey %q must match [A-Za-z0-9-]{1,15}", common.ErrValidation, rkey)
	}

	pin, err := c.resolver.ResolvePin(ctx, pin)
	if err != nil {
		return err
	}

	if err := c.registry.UpsertClassifier(ctx, rkey, classifier, pin.DID, pin.Rkey); err != nil {
		return err
	}

	c.log.Info(ctx, "created feed", "rkey", rkey)
	return c.refresh(ctx)
}

// PatchPin updates the pinned-post metadata only. The feed's published state
// is untouched.
func (c *Controller) PatchPin(ctx context.Context, rkey string, pin refs.Pin) error {
	c.begin()
	defer c.end()

	pin, err := c.resolver.ResolvePin(ctx, pin)
	if err != nil {
		return err
	}

	if err := c.registry.PatchMetadata(ctx, rkey, pin.DID, pin.Rkey); err != nil {
		return err
	}

	c.log.Info(ctx, "updated pin", "rkey", rkey)
	return c.refresh(ctx)
}

// ReplaceClassifier overwrites the classifier blob (and pin metadata) for an
// existing feed.
func (c *Controller) ReplaceClassifier(ctx context.Context, rkey string, classifier io.Reader, pin refs.Pin) error {
	c.begin()
	defer c.end()

	pin, err := c.resolver.ResolvePin(ctx, pin)
	if err != nil {
		return err
	}

	if err := c.registry.UpsertClassifier(ctx, rkey, classifier, pin.DID, pin.Rkey); err != nil {
		return err
	}

	c.log.Info(ctx, "replaced classifier", "rkey", rkey)
	return c.refresh(ctx)
}

// Finalize publishes an unpublished feed by creating its feed-generator
// record in the account repository.
func (c *Controller) Finalize(ctx context.Context, generatorDID, rkey, name, description string) error {
	c.begin()
	defer c.end()

	if err := c.network.CreateFeedGenerator(ctx, c.identifier, rkey, network.GeneratorRecord{
		DID:         generatorDID,
		DisplayName: name,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}

	c.log.Info(ctx, "published feed", "rkey", rkey, "name", name)
	return c.refresh(ctx)
}

// Republish refreshes the content of an already-published feed's record. The
// write carries the CID observed by the immediately preceding read as a
// compare-and-swap token; a concurrent change makes the remote reject the
// write instead of being silently overwritten.
func (c *Controller) Republish(ctx context.Context, generatorDID, rkey, name, description string) error {
	c.begin()
	defer c.end()

	if err := c.republish(ctx, generatorDID, rkey, name, description); err != nil {
		return err
	}
	return c.refresh(ctx)
}

func (c *Controller) republish(ctx context.Context, generatorDID, rkey, name, description string) error {
	existing, err := c.network.GetFeedGenerator(ctx, c.identifier, rkey)
	if err != nil {
		return err
	}

	if err := c.network.PutFeedGenerator(ctx, c.identifier, rkey, network.GeneratorRecord{
		DID:         generatorDID,
		DisplayName: name,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}, existing.CID); err != nil {
		return err
	}

	c.log.Info(ctx, "republished feed", "rkey", rkey, "name", name)
	return nil
}

// Unpublish deletes the feed-generator record, returning the feed to the
// unpublished state. The registry draft is untouched.
func (c *Controller) Unpublish(ctx context.Context, rkey string) error {
	c.begin()
	defer c.end()

	if err := c.network.DeleteFeedGenerator(ctx, c.identifier, rkey); err != nil {
		return err
	}

	c.log.Info(ctx, "unpublished feed", "rkey", rkey)
	return c.refresh(ctx)
}

// Delete removes a feed entirely: published feeds are unpublished first, then
// the registry metadata and blob are deleted. The two steps are not
// transactional, and there is no atomic call upstream to make them so; if the
// second step fails the feed is left unpublished and the delete can simply be
// retried.
func (c *Controller) Delete(ctx context.Context, rkey string) error {
	c.begin()
	defer c.end()

	if _, published, ok := c.find(rkey); ok && published {
		if err := c.network.DeleteFeedGenerator(ctx, c.identifier, rkey); err != nil {
			return err
		}
	}

	if err := c.registry.DeleteFeed(ctx, rkey); err != nil {
		return err
	}

	c.log.Info(ctx, "deleted feed", "rkey", rkey)
	return c.refresh(ctx)
}

// EditRequest describes an edit. Nil fields mean "unchanged" and are not
// re-sent. GeneratorDID is only consulted when a republish is needed.
type EditRequest struct {
	Rkey         string
	GeneratorDID string

	Classifier  io.Reader
	Pin         *refs.Pin
	Title       *string
	Description *string
}

// Edit applies the minimal set of primitives for the changed fields: a
// classifier change re-uploads the blob, a pin change patches metadata, and a
// title/description change on a published feed republishes the record.
func (c *Controller) Edit(ctx context.Context, req EditRequest) error {
	c.begin()
	defer c.end()

	current, published, ok := c.find(req.Rkey)
	if !ok {
		return fmt.Errorf("%w: unknown feed %q", common.ErrValidation, req.Rkey)
	}

	pin, err := c.editPin(ctx, current, req)
	if err != nil {
		return err
	}

	mutated := false
	switch {
	case req.Classifier != nil:
		if err := c.registry.UpsertClassifier(ctx, req.Rkey, req.Classifier, pin.DID, pin.Rkey); err != nil {
			return err
		}
		mutated = true
	case req.Pin != nil:
		if err := c.registry.PatchMetadata(ctx, req.Rkey, pin.DID, pin.Rkey); err != nil {
			return err
		}
		mutated = true
	}

	if published && (req.Title != nil || req.Description != nil) {
		title, description := current.Title, current.Description
		if req.Title != nil {
			title = *req.Title
		}
		if req.Description != nil {
			description = *req.Description
		}

		if err := c.republish(ctx, req.GeneratorDID, req.Rkey, title, description); err != nil {
			return err
		}
		mutated = true
	}

	if !mutated {
		return nil
	}
	return c.refresh(ctx)
}

// editPin picks the pin to send with an edit: the requested one (normalized),
// or the feed's current pin when unchanged, so an upsert doesn't clear it.
func (c *Controller) editPin(ctx context.Context, current Feed, req EditRequest) (refs.Pin, error) {
	if req.Pin != nil {
		return c.resolver.ResolvePin(ctx, *req.Pin)
	}
	return refs.DecodePin(current.PinnedPostURL)
}

// find looks up rkey in the last reconciled partitions.
func (c *Controller) find(rkey string) (Feed, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.lists.Published {
		if f.Rkey == rkey {
			return f, true, true
		}
	}
	for _, f := range c.lists.Unpublished {
		if f.Rkey == rkey {
			return f, false, true
		}
	}
	return Feed{}, false, false
}
