// Package userdata bulk-exports and deletes the registry-held state for the
// signed-in account.
package userdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/feedctl/feedctl/internal/logging"
	"github.com/feedctl/feedctl/internal/registry"
	"github.com/feedctl/feedctl/internal/session"
)

// Registry is the userdata surface of the registry client.
type Registry interface {
	StructuredUserdata(ctx context.Context) (*registry.StructuredUserdata, error)
	ClassifierBlob(ctx context.Context, rkey string) (io.ReadCloser, error)
	DeleteUserdata(ctx context.Context) error
}

type Exporter struct {
	registry Registry
	log      logging.Logger
}

func NewExporter(reg Registry, log logging.Logger) *Exporter {
	return &Exporter{registry: reg, log: log}
}

// manifest is the structured artifact's envelope.
type manifest struct {
	Identifier      string                       `json:"identifier"`
	ServiceEndpoint string                       `json:"serviceEndpoint"`
	Structured      *registry.StructuredUserdata `json:"structured"`
}

// Export fetches the structured snapshot and every referenced classifier
// blob, writing one JSON artifact plus one blob artifact per feed. Blob
// fetches run concurrently; a failure in any one of them fails the whole
// export so the caller never sees a partial artifact set.
func (e *Exporter) Export(ctx context.Context, sess *session.Session, sink ArtifactSink) error {
	data, err := e.registry.StructuredUserdata(ctx)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(manifest{
		Identifier:      sess.DID,
		ServiceEndpoint: sess.ServiceEndpoint,
		Structured:      data,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal structured userdata: %w", err)
	}
	if err := sink.WriteArtifact("structured.json", bytes.NewReader(b)); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, feed := range data.Feeds {
		feed := feed
		g.Go(func() error {
			blob, err := e.registry.ClassifierBlob(ctx, feed.Rkey)
			if err != nil {
				return err
			}
			defer blob.Close()

			return sink.WriteArtifact("blobs/classifiers/"+feed.Rkey+".scale", blob)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.log.Info(ctx, "exported userdata", "feeds", len(data.Feeds))
	return nil
}

// Delete removes all registry-held state for the current scope and then
// forces a logout. Records in the network repository are intentionally left
// untouched; unpublish or delete feeds individually first if they should go
// too.
func (e *Exporter) Delete(ctx context.Context, logout func()) error {
	if err := e.registry.DeleteUserdata(ctx); err != nil {
		return err
	}

	logout()
	e.log.Info(ctx, "deleted userdata")
	return nil
}
