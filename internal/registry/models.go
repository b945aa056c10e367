package registry

import "time"

// FeedMetadata is a draft feed as the registry stores it: the resource key
// plus an optional pinned-post reference. Owned by the registry; never
// mutated locally except by issuing remote writes.
type FeedMetadata struct {
	Rkey       string `json:"rkey"`
	PinnedDID  string `json:"pinnedDID"`
	PinnedRkey string `json:"pinnedRkey"`
}

// StructuredUserdata is the export-only snapshot of everything the registry
// holds for the account.
type StructuredUserdata struct {
	Feeds     []UserdataFeed     `json:"feeds"`
	Posts     []UserdataPost     `json:"posts"`
	FeedPosts []UserdataFeedPost `json:"feedPosts"`
}

type UserdataFeed struct {
	Did  string
	Rkey string
}

type UserdataPost struct {
	Did       string
	Rkey      string
	CreatedAt time.Time
	Text      string
	Reply     bool
	Langs     []string
	Likes     int64
}

type UserdataFeedPost struct {
	FeedDid  string
	FeedRkey string
	PostDid  string
	PostRkey string
	Weight   int32
}
