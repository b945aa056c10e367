// Package network talks to the user's AT Protocol repository: session
// management, handle resolution and feed-generator record CRUD. The Client
// interface exists so the layers above can be tested with fakes.
package network

import "context"

// FeedGeneratorCollection is the record collection that makes a feed
// discoverable by other users.
const FeedGeneratorCollection = "app.bsky.feed.generator"

// SessionTokens is the credential material minted by the network's identity
// endpoint.
type SessionTokens struct {
	DID        string
	Handle     string
	AccessJWT  string
	RefreshJWT string
}

// Profile is the subset of the account profile the client cares about.
type Profile struct {
	Handle string
	Avatar string
}

// GeneratorRecord is the write-side shape of a feed-generator record.
type GeneratorRecord struct {
	DID         string
	DisplayName string
	Description string
	CreatedAt   string
}

// GeneratorView is a feed-generator record as read back from the repository.
// Rkey is extracted from the record URI; CID is the optimistic-concurrency
// token required to safely replace the record.
type GeneratorView struct {
	URI         string
	Rkey        string
	CID         string
	DisplayName string
	Description string
}

// Client is the network side of the system.
//
// Contract:
//   - CreateSession: authenticate with handle + secret, retain the minted
//     tokens for subsequent calls.
//   - RefreshSession: re-mint tokens from the retained refresh JWT.
//   - GetProfile: fetch the account profile (avatar).
//   - ResolveHandle: resolve a handle to a DID.
//   - ListFeedGenerators: all feed-generator records owned by the actor.
//   - GetFeedGenerator: a single record with its current CID.
//   - PutFeedGenerator: replace a record; swapCID must be the CID observed by
//     the immediately preceding read, and the write fails if it is stale.
//
// All methods honor context cancellation.
type Client interface {
	CreateSession(ctx context.Context, identifier, secret string) (*SessionTokens, error)
	RefreshSession(ctx context.Context) (*SessionTokens, error)
	GetProfile(ctx context.Context, actor string) (*Profile, error)
	ResolveHandle(ctx context.Context, handle string) (string, error)
	ListFeedGenerators(ctx context.Context, actor string) ([]GeneratorView, error)
	GetFeedGenerator(ctx context.Context, repo, rkey string) (*GeneratorView, error)
	CreateFeedGenerator(ctx context.Context, repo, rkey string, record GeneratorRecord) error
	PutFeedGenerator(ctx context.Context, repo, rkey string, record GeneratorRecord, swapCID string) error
	DeleteFeedGenerator(ctx context.Context, repo, rkey string) error
}
