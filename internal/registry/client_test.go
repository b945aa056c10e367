package registry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feedctl/feedctl/internal/common"
)

const (
	testService = "https://pds.example"
	testJWT     = "test-access-jwt"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   []byte
}

func newTestClient(t *testing.T, status int, response any) (*Client, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Query = map[string]string{}
		for k := range r.URL.Query() {
			captured.Query[k] = r.URL.Query().Get(k)
		}
		captured.Header = r.Header.Clone()
		captured.Body, _ = io.ReadAll(r.Body)

		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, testService, testJWT)
	require.NoError(t, err)
	return c, captured
}

func TestListFeeds_RequestShapeAndDecoding(t *testing.T) {
	c, captured := newTestClient(t, http.StatusOK, []FeedMetadata{
		{Rkey: "trend-1", PinnedDID: "did:plc:abc", PinnedRkey: "3kabc"},
		{Rkey: "questions"},
	})

	feeds, err := c.ListFeeds(context.Background())
	require.NoError(t, err)

	require.Equal(t, http.MethodGet, captured.Method)
	require.Equal(t, "/admin/feeds", captured.Path)
	require.Equal(t, testService, captured.Query["service"])
	require.Equal(t, "Bearer "+testJWT, captured.Header.Get("Authorization"))
	require.NotEmpty(t, captured.Header.Get("X-Request-Id"))

	require.Equal(t, []FeedMetadata{
		{Rkey: "trend-1", PinnedDID: "did:plc:abc", PinnedRkey: "3kabc"},
		{Rkey: "questions"},
	}, feeds)
}

func TestUpsertClassifier_SendsBlobAndPinParams(t *testing.T) {
	c, captured := newTestClient(t, http.StatusOK, nil)

	err := c.UpsertClassifier(context.Background(), "trend-1",
		strings.NewReader("\x00asm-classifier"), "did:plc:abc", "3kabc")
	require.NoError(t, err)

	require.Equal(t, http.MethodPut, captured.Method)
	require.Equal(t, "/admin/feeds", captured.Path)
	require.Equal(t, "trend-1", captured.Query["rkey"])
	require.Equal(t, "did:plc:abc", captured.Query["pinnedDID"])
	require.Equal(t, "3kabc", captured.Query["pinnedRkey"])
	require.Equal(t, testService, captured.Query["service"])
	require.Equal(t, "application/octet-stream", captured.Header.Get("Content-Type"))
	require.Equal(t, "\x00asm-classifier", string(captured.Body))
}

func TestPatchMetadata_SendsEmptyPinToClear(t *testing.T) {
	c, captured := newTestClient(t, http.StatusOK, nil)

	require.NoError(t, c.PatchMetadata(context.Background(), "trend-1", "", ""))

	require.Equal(t, http.MethodPatch, captured.Method)
	require.Equal(t, "trend-1", captured.Query["rkey"])
	require.Equal(t, "", captured.Query["pinnedDID"])
	require.Equal(t, "", captured.Query["pinnedRkey"])
}

func TestDeleteFeed_RequestShape(t *testing.T) {
	c, captured := newTestClient(t, http.StatusOK, nil)

	require.NoError(t, c.DeleteFeed(context.Background(), "trend-1"))

	require.Equal(t, http.MethodDelete, captured.Method)
	require.Equal(t, "/admin/feeds", captured.Path)
	require.Equal(t, "trend-1", captured.Query["rkey"])
}

func TestWrites_MapRejectionsToRemoteWrite(t *testing.T) {
	c, _ := newTestClient(t, http.StatusInternalServerError, nil)

	err := c.DeleteFeed(context.Background(), "trend-1")
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrRemoteWrite))

	err = c.PatchMetadata(context.Background(), "trend-1", "", "")
	require.True(t, errors.Is(err, common.ErrRemoteWrite))

	err = c.UpsertClassifier(context.Background(), "trend-1", strings.NewReader("x"), "", "")
	require.True(t, errors.Is(err, common.ErrRemoteWrite))

	err = c.DeleteUserdata(context.Background())
	require.True(t, errors.Is(err, common.ErrRemoteWrite))
}

func TestUnauthorized_ForcesLogoutEverywhere(t *testing.T) {
	c, _ := newTestClient(t, http.StatusUnauthorized, nil)

	_, err := c.ListFeeds(context.Background())
	require.True(t, common.ForcesLogout(err))

	err = c.UpsertClassifier(context.Background(), "trend-1", strings.NewReader("x"), "", "")
	require.True(t, common.ForcesLogout(err))

	err = c.DeleteUserdata(context.Background())
	require.True(t, common.ForcesLogout(err))
}

func TestStructuredUserdata_Decodes(t *testing.T) {
	c, captured := newTestClient(t, http.StatusOK, StructuredUserdata{
		Feeds: []UserdataFeed{{Did: "did:plc:abc", Rkey: "trend-1"}},
	})

	data, err := c.StructuredUserdata(context.Background())
	require.NoError(t, err)

	require.Equal(t, "/userdata/structured", captured.Path)
	require.Len(t, data.Feeds, 1)
	require.Equal(t, "trend-1", data.Feeds[0].Rkey)
}

func TestClassifierBlob_RequestShape(t *testing.T) {
	c, captured := newTestClient(t, http.StatusOK, nil)

	blob, err := c.ClassifierBlob(context.Background(), "trend-1")
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, "/userdata/blob", captured.Path)
	require.Equal(t, "classifier", captured.Query["resource"])
	require.Equal(t, "trend-1", captured.Query["rkey"])
}

func TestDeleteUserdata_RequestShape(t *testing.T) {
	c, captured := newTestClient(t, http.StatusOK, nil)

	require.NoError(t, c.DeleteUserdata(context.Background()))

	require.Equal(t, http.MethodDelete, captured.Method)
	require.Equal(t, "/userdata", captured.Path)
	require.Equal(t, testService, captured.Query["service"])
}
