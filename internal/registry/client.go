// Package registry is the REST client for the classifier registry: the
// backend that stores classifier blobs and draft feed metadata per resource
// key. Every call is bearer-authenticated and scoped by a service query
// parameter naming the network deployment the registry should validate the
// credential against.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/feedctl/feedctl/internal/common"
)

type Client struct {
	base      *url.URL
	service   string
	accessJWT string
	http      *http.Client
}

// NewClient parses the registry base URL and binds the client to the given
// network service endpoint and access credential.
func NewClient(baseURL, service, accessJWT string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse registry url: %w", err)
	}
	return &Client{
		base:      u,
		service:   service,
		accessJWT: accessJWT,
		http:      http.DefaultClient,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method string, query url.Values, body io.Reader, segments ...string) (*http.Request, error) {
	u := c.base.JoinPath(segments...)

	q := u.Query()
	q.Set("service", c.service)
	for k, vs := range query {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.accessJWT)
	req.Header.Set("X-Request-Id", uuid.NewString())

	return req, nil
}

// do issues the request and normalizes the status code: 401/403 become
// ErrAuthentication so callers tear the session down, any other non-2xx
// becomes a plain status error. The caller owns closing the body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: registry returned %s", common.ErrAuthentication, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("registry returned %s", resp.Status)
	}

	return resp, nil
}

// ListFeeds fetches the registry's draft metadata list for the current
// service scope, in registry order.
func (c *Client) ListFeeds(ctx context.Context) ([]FeedMetadata, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil, nil, "admin", "feeds")
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer resp.Body.Close()

	var feeds []FeedMetadata
	if err := json.NewDecoder(resp.Body).Decode(&feeds); err != nil {
		return nil, fmt.Errorf("decode feed list: %w", err)
	}
	return feeds, nil
}

// UpsertClassifier creates or replaces the classifier blob stored under rkey,
// together with the pinned-post metadata.
func (c *Client) UpsertClassifier(ctx context.Context, rkey string, classifier io.Reader, pinnedDID, pinnedRkey string) error {
	query := url.Values{
		"rkey":       {rkey},
		"pinnedDID":  {pinnedDID},
		"pinnedRkey": {pinnedRkey},
	}

	req, err := c.newRequest(ctx, http.MethodPut, query, classifier, "admin", "feeds")
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.do(req)
	if err != nil {
		return writeErr("upsert classifier", rkey, err)
	}
	resp.Body.Close()
	return nil
}

// PatchMetadata updates the pinned-post metadata for rkey without touching
// the classifier blob.
func (c *Client) PatchMetadata(ctx context.Context, rkey, pinnedDID, pinnedRkey string) error {
	query := url.Values{
		"rkey":       {rkey},
		"pinnedDID":  {pinnedDID},
		"pinnedRkey": {pinnedRkey},
	}

	req, err := c.newRequest(ctx, http.MethodPatch, query, nil, "admin", "feeds")
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return writeErr("patch metadata", rkey, err)
	}
	resp.Body.Close()
	return nil
}

// DeleteFeed removes the metadata and classifier blob stored under rkey.
func (c *Client) DeleteFeed(ctx context.Context, rkey string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, url.Values{"rkey": {rkey}}, nil, "admin", "feeds")
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return writeErr("delete feed", rkey, err)
	}
	resp.Body.Close()
	return nil
}

// StructuredUserdata fetches the registry-held structured data snapshot.
func (c *Client) StructuredUserdata(ctx context.Context) (*StructuredUserdata, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil, nil, "userdata", "structured")
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("structured userdata: %w", err)
	}
	defer resp.Body.Close()

	var data StructuredUserdata
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode structured userdata: %w", err)
	}
	return &data, nil
}

// ClassifierBlob streams the classifier stored under rkey. The caller owns
// closing the returned reader.
func (c *Client) ClassifierBlob(ctx context.Context, rkey string) (io.ReadCloser, error) {
	query := url.Values{
		"resource": {"classifier"},
		"rkey":     {rkey},
	}

	req, err := c.newRequest(ctx, http.MethodGet, query, nil, "userdata", "blob")
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier blob %q: %w", rkey, err)
	}
	return resp.Body, nil
}

// DeleteUserdata removes all registry-held state for the current service
// scope. The network repository's own records are left untouched.
func (c *Client) DeleteUserdata(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, nil, nil, "userdata")
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		if common.ForcesLogout(err) {
			return fmt.Errorf("delete userdata: %w", err)
		}
		return fmt.Errorf("%w: delete userdata: %v", common.ErrRemoteWrite, err)
	}
	resp.Body.Close()
	return nil
}

// writeErr keeps the authentication kind intact and wraps everything else as
// a remote-write failure.
func writeErr(op, rkey string, err error) error {
	if common.ForcesLogout(err) {
		return fmt.Errorf("%s %q: %w", op, rkey, err)
	}
	return fmt.Errorf("%w: %s %q: %v", common.ErrRemoteWrite, op, rkey, err)
}
