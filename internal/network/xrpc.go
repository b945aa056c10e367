package network

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"

	"github.com/feedctl/feedctl/internal/common"
)

// XRPCClient implements Client over the AT Protocol XRPC transport.
type XRPCClient struct {
	c *xrpc.Client
}

// NewXRPCClient returns a client bound to the given service endpoint
// (e.g. https://bsky.social). It carries no credentials until CreateSession
// succeeds.
func NewXRPCClient(serviceEndpoint string) *XRPCClient {
	return &XRPCClient{
		c: &xrpc.Client{
			Client: http.DefaultClient,
			Host:   serviceEndpoint,
			Auth:   &xrpc.AuthInfo{},
		},
	}
}

func (x *XRPCClient) CreateSession(ctx context.Context, identifier, secret string) (*SessionTokens, error) {
	session, err := atproto.ServerCreateSession(ctx, x.c, &atproto.ServerCreateSession_Input{
		Identifier: identifier,
		Password:   secret,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	x.c.Auth.AccessJwt = session.AccessJwt
	x.c.Auth.RefreshJwt = session.RefreshJwt
	x.c.Auth.Handle = session.Handle
	x.c.Auth.Did = session.Did

	return &SessionTokens{
		DID:        session.Did,
		Handle:     session.Handle,
		AccessJWT:  session.AccessJwt,
		RefreshJWT: session.RefreshJwt,
	}, nil
}

func (x *XRPCClient) RefreshSession(ctx context.Context) (*SessionTokens, error) {
	// The transport sends Auth.AccessJwt as the bearer token, and the refresh
	// endpoint expects the refresh JWT there.
	prev := x.c.Auth.AccessJwt
	x.c.Auth.AccessJwt = x.c.Auth.RefreshJwt

	session, err := atproto.ServerRefreshSession(ctx, x.c)
	if err != nil {
		x.c.Auth.AccessJwt = prev
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	x.c.Auth.AccessJwt = session.AccessJwt
	x.c.Auth.RefreshJwt = session.RefreshJwt
	x.c.Auth.Handle = session.Handle
	x.c.Auth.Did = session.Did

	return &SessionTokens{
		DID:        session.Did,
		Handle:     session.Handle,
		AccessJWT:  session.AccessJwt,
		RefreshJWT: session.RefreshJwt,
	}, nil
}

func (x *XRPCClient) GetProfile(ctx context.Context, actor string) (*Profile, error) {
	profile, err := bsky.ActorGetProfile(ctx, x.c, actor)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p := &Profile{Handle: profile.Handle}
	if profile.Avatar != nil {
		p.Avatar = *profile.Avatar
	}
	return p, nil
}

func (x *XRPCClient) ResolveHandle(ctx context.Context, handle string) (string, error) {
	out, err := atproto.IdentityResolveHandle(ctx, x.c, handle)
	if err != nil {
		return "", fmt.Errorf("%w: resolve handle %q: %v", common.ErrResolution, handle, err)
	}
	return out.Did, nil
}

func (x *XRPCClient) ListFeedGenerators(ctx context.Context, actor string) ([]GeneratorView, error) {
	var (
		views  []GeneratorView
		cursor string
	)
	for {
		out, err := bsky.FeedGetActorFeeds(ctx, x.c, actor, cursor, 100)
		if err != nil {
			return nil, fmt.Errorf("%w: list feed generators for %q: %v", common.ErrResolution, actor, err)
		}

		for _, f := range out.Feeds {
			v := GeneratorView{
				URI:         f.Uri,
				Rkey:        rkeyFromURI(f.Uri),
				CID:         f.Cid,
				DisplayName: f.DisplayName,
			}
			if f.Description != nil {
				v.Description = *f.Description
			}
			views = append(views, v)
		}

		if out.Cursor == nil || *out.Cursor == "" {
			return views, nil
		}
		cursor = *out.Cursor
	}
}

func (x *XRPCClient) GetFeedGenerator(ctx context.Context, repo, rkey string) (*GeneratorView, error) {
	out, err := atproto.RepoGetRecord(ctx, x.c, "", FeedGeneratorCollection, repo, rkey)
	if err != nil {
		return nil, fmt.Errorf("%w: get feed generator %q: %v", common.ErrResolution, rkey, err)
	}

	v := &GeneratorView{
		URI:  out.Uri,
		Rkey: rkeyFromURI(out.Uri),
	}
	if out.Cid != nil {
		v.CID = *out.Cid
	}
	if out.Value != nil {
		if gen, ok := out.Value.Val.(*bsky.FeedGenerator); ok {
			v.DisplayName = gen.DisplayName
			if gen.Description != nil {
				v.Description = *gen.Description
			}
		}
	}
	return v, nil
}

func (x *XRPCClient) CreateFeedGenerator(ctx context.Context, repo, rkey string, record GeneratorRecord) error {
	if _, err := atproto.RepoCreateRecord(ctx, x.c, &atproto.RepoCreateRecord_Input{
		Collection: FeedGeneratorCollection,
		Repo:       repo,
		Rkey:       &rkey,
		Record:     wrapGenerator(record),
	}); err != nil {
		return fmt.Errorf("%w: create feed generator %q: %v", common.ErrRemoteWrite, rkey, err)
	}
	return nil
}

func (x *XRPCClient) PutFeedGenerator(ctx context.Context, repo, rkey string, record GeneratorRecord, swapCID string) error {
	input := &atproto.RepoPutRecord_Input{
		Collection: FeedGeneratorCollection,
		Repo:       repo,
		Rkey:       rkey,
		Record:     wrapGenerator(record),
	}
	if swapCID != "" {
		input.SwapRecord = &swapCID
	}

	if _, err := atproto.RepoPutRecord(ctx, x.c, input); err != nil {
		return fmt.Errorf("%w: put feed generator %q: %v", common.ErrRemoteWrite, rkey, err)
	}
	return nil
}

func (x *XRPCClient) DeleteFeedGenerator(ctx context.Context, repo, rkey string) error {
	if err := atproto.RepoDeleteRecord(ctx, x.c, &atproto.RepoDeleteRecord_Input{
		Collection: FeedGeneratorCollection,
		Repo:       repo,
		Rkey:       rkey,
	}); err != nil {
		return fmt.Errorf("%w: delete feed generator %q: %v", common.ErrRemoteWrite, rkey, err)
	}
	return nil
}

func wrapGenerator(record GeneratorRecord) *lexutil.LexiconTypeDecoder {
	description := record.Description
	return &lexutil.LexiconTypeDecoder{
		Val: &bsky.FeedGenerator{
			CreatedAt:   record.CreatedAt,
			Did:         record.DID,
			DisplayName: record.DisplayName,
			Description: &description,
		},
	}
}

// rkeyFromURI extracts the record key from an at:// URI
// (at://<did>/<collection>/<rkey>).
func rkeyFromURI(uri string) string {
	parts := strings.Split(strings.TrimSuffix(uri, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
