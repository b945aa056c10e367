package network

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRkeyFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"at://did:plc:abc/app.bsky.feed.generator/trend-1", "trend-1"},
		{"at://did:plc:abc/app.bsky.feed.generator/trend-1/", "trend-1"},
		{"trend-1", "trend-1"},
		{"", ""},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, rkeyFromURI(tc.uri), tc.uri)
	}
}
