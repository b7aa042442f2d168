package appbsky

import (
	"context"
	"encoding/json"

	"github.com/skylex-dev/skylex/pkg/lexicon/comatproto"
	"github.com/skylex-dev/skylex/pkg/lexicon/lexutil"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

const (
	NSIDFeedGetTimeline   = "app.bsky.feed.getTimeline"
	NSIDFeedGetAuthorFeed = "app.bsky.feed.getAuthorFeed"
	NSIDFeedGetLikes      = "app.bsky.feed.getLikes"
	NSIDFeedGetPosts      = "app.bsky.feed.getPosts"
)

// MaxPosts is the most URIs accepted by app.bsky.feed.getPosts.
const MaxPosts = 25

// Author feed filters.
const (
	AuthorFeedPostsWithReplies      = "posts_with_replies"
	AuthorFeedPostsNoReplies        = "posts_no_replies"
	AuthorFeedPostsWithMedia        = "posts_with_media"
	AuthorFeedPostsAndAuthorThreads = "posts_and_author_threads"
)

const ReasonRepostType = "app.bsky.feed.defs#reasonRepost"

// FeedDefs_ViewerState is the viewer's interaction with a post.
type FeedDefs_ViewerState struct {
	Repost string `json:"repost,omitempty"`
	Like   string `json:"like,omitempty"`
}

// FeedDefs_PostView is app.bsky.feed.defs#postView. Record is the raw post
// record; Embed is one of the app.bsky.embed.*#view variants.
type FeedDefs_PostView struct {
	URI         string                        `json:"uri"`
	Cid         string                        `json:"cid"`
	Author      *ActorDefs_ProfileViewBasic   `json:"author"`
	Record      json.RawMessage               `json:"record"`
	Embed       *lexutil.Union                `json:"embed,omitempty"`
	ReplyCount  *int64                        `json:"replyCount,omitempty"`
	RepostCount *int64                        `json:"repostCount,omitempty"`
	LikeCount   *int64                        `json:"likeCount,omitempty"`
	QuoteCount  *int64                        `json:"quoteCount,omitempty"`
	IndexedAt   string                        `json:"indexedAt"`
	Viewer      *FeedDefs_ViewerState         `json:"viewer,omitempty"`
	Labels      []*comatproto.LabelDefs_Label `json:"labels,omitempty"`
}

// FeedPost_Record is the subset of app.bsky.feed.post read from PostView.Record.
type FeedPost_Record struct {
	Text      string   `json:"text"`
	CreatedAt string   `json:"createdAt"`
	Langs     []string `json:"langs,omitempty"`
}

// Post decodes the post record. It returns nil when the record is absent.
func (p *FeedDefs_PostView) Post() (*FeedPost_Record, error) {
	if len(p.Record) == 0 {
		return nil, nil
	}
	var rec FeedPost_Record
	if err := json.Unmarshal(p.Record, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// FeedDefs_ReasonRepost is app.bsky.feed.defs#reasonRepost.
type FeedDefs_ReasonRepost struct {
	By        *ActorDefs_ProfileViewBasic `json:"by"`
	IndexedAt string                      `json:"indexedAt"`
}

// FeedDefs_FeedViewPost is one entry of a feed. Reason explains why the post
// appears, e.g. a repost.
type FeedDefs_FeedViewPost struct {
	Post        *FeedDefs_PostView `json:"post"`
	Reply       json.RawMessage    `json:"reply,omitempty"`
	Reason      *lexutil.Union     `json:"reason,omitempty"`
	FeedContext string             `json:"feedContext,omitempty"`
}

// RepostedBy returns who reposted the entry, or nil.
func (f *FeedDefs_FeedViewPost) RepostedBy() *ActorDefs_ProfileViewBasic {
	if !f.Reason.Is(ReasonRepostType) {
		return nil
	}
	var reason FeedDefs_ReasonRepost
	if err := f.Reason.Decode(&reason); err != nil {
		return nil
	}
	return reason.By
}

// FeedGetTimeline_Output is the output of app.bsky.feed.getTimeline.
type FeedGetTimeline_Output struct {
	Cursor string                   `json:"cursor,omitempty"`
	Feed   []*FeedDefs_FeedViewPost `json:"feed"`
}

// FeedGetTimeline returns the session user's home timeline.
func FeedGetTimeline(ctx context.Context, c *xrpc.Client, algorithm string, limit *int64, cursor string) (*FeedGetTimeline_Output, error) {
	params := pageParams(xrpc.Params{}.AddOptional("algorithm", algorithm), limit, cursor)

	var out FeedGetTimeline_Output
	if err := c.Query(ctx, NSIDFeedGetTimeline, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FeedGetAuthorFeed_Output is the output of app.bsky.feed.getAuthorFeed.
type FeedGetAuthorFeed_Output struct {
	Cursor string                   `json:"cursor,omitempty"`
	Feed   []*FeedDefs_FeedViewPost `json:"feed"`
}

// FeedGetAuthorFeed returns actor's posts and reposts. includePins is only
// sent when true.
func FeedGetAuthorFeed(ctx context.Context, c *xrpc.Client, actor string, limit *int64, cursor, filter string, includePins bool) (*FeedGetAuthorFeed_Output, error) {
	params := pageParams(xrpc.Params{}.Add("actor", actor), limit, cursor).
		AddOptional("filter", filter)
	if includePins {
		params = params.AddBool("includePins", true)
	}

	var out FeedGetAuthorFeed_Output
	if err := c.Query(ctx, NSIDFeedGetAuthorFeed, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FeedGetLikes_Like is one like of a post.
type FeedGetLikes_Like struct {
	IndexedAt string                 `json:"indexedAt"`
	CreatedAt string                 `json:"createdAt"`
	Actor     *ActorDefs_ProfileView `json:"actor"`
}

// FeedGetLikes_Output is the output of app.bsky.feed.getLikes.
type FeedGetLikes_Output struct {
	URI    string               `json:"uri"`
	Cid    string               `json:"cid,omitempty"`
	Cursor string               `json:"cursor,omitempty"`
	Likes  []*FeedGetLikes_Like `json:"likes"`
}

// FeedGetLikes lists the likes of the post at uri, optionally pinned to cid.
func FeedGetLikes(ctx context.Context, c *xrpc.Client, uri, cid string, limit *int64, cursor string) (*FeedGetLikes_Output, error) {
	params := pageParams(xrpc.Params{}.Add("uri", uri).AddOptional("cid", cid), limit, cursor)

	var out FeedGetLikes_Output
	if err := c.Query(ctx, NSIDFeedGetLikes, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FeedGetPosts_Output is the output of app.bsky.feed.getPosts.
type FeedGetPosts_Output struct {
	Posts []*FeedDefs_PostView `json:"posts"`
}

// FeedGetPosts hydrates up to MaxPosts posts by AT URI; extra URIs are dropped.
func FeedGetPosts(ctx context.Context, c *xrpc.Client, uris []string) (*FeedGetPosts_Output, error) {
	params := xrpc.Params{}.AddList("uris", uris, MaxPosts)

	var out FeedGetPosts_Output
	if err := c.Query(ctx, NSIDFeedGetPosts, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
