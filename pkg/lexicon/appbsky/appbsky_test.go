package appbsky

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylex-dev/skylex/internal/common/apperrors"
	"github.com/skylex-dev/skylex/internal/common/httpclient"
	"github.com/skylex-dev/skylex/internal/xrpctest"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

func TestGraphGetFollowers(t *testing.T) {
	s := xrpctest.NewServer()
	s.RespondJSON(NSIDGraphGetFollowers, http.StatusOK, `{
		"subject": {"did": "did:plc:abc", "handle": "alice.test"},
		"cursor": "next",
		"followers": [
			{"did": "did:plc:b", "handle": "bob.test", "viewer": {"following": "at://did:plc:abc/app.bsky.graph.follow/1"}},
			{"did": "did:plc:c", "handle": "carol.test"}
		]
	}`)
	c, sender := s.Client(xrpctest.Session)

	out, err := GraphGetFollowers(context.Background(), c, "did:plc:abc", xrpc.Limit(500), "")
	require.NoError(t, err)
	assert.Equal(t, "alice.test", out.Subject.Handle)
	assert.Equal(t, "next", out.Cursor)
	require.Len(t, out.Followers, 2)
	assert.Equal(t, "at://did:plc:abc/app.bsky.graph.follow/1", out.Followers[0].Viewer.Following)
	assert.Nil(t, out.Followers[1].Viewer)

	last, ok := sender.LastRequest()
	require.True(t, ok)
	assert.Equal(t, http.MethodGet, last.Method)
	assert.Equal(t, "https://pds.test/xrpc/app.bsky.graph.getFollowers?actor=did:plc:abc&limit=100", last.URL.String())

	_, err = GraphGetFollowers(context.Background(), c, "did:plc:abc", nil, "next")
	require.NoError(t, err)
	last, _ = sender.LastRequest()
	assert.Equal(t, "actor=did:plc:abc&cursor=next", last.URL.RawQuery)
}

func TestPagedGraphQueries(t *testing.T) {
	s := xrpctest.NewServer()
	s.RespondJSON(NSIDGraphGetFollows, http.StatusOK, `{"subject":{"did":"did:plc:abc","handle":"alice.test"},"follows":[{"did":"did:plc:b","handle":"bob.test"}]}`)
	s.RespondJSON(NSIDGraphGetBlocks, http.StatusOK, `{"blocks":[{"did":"did:plc:x","handle":"spam.test"}]}`)
	s.RespondJSON(NSIDGraphGetMutes, http.StatusOK, `{"cursor":"m2","mutes":[]}`)
	c, sender := s.Client(xrpctest.Session)

	tests := []struct {
		name  string
		call  func() error
		query string
	}{
		{
			name: "follows clamps zero to one",
			call: func() error {
				out, err := GraphGetFollows(context.Background(), c, "alice.test", xrpc.Limit(0), "")
				if err == nil && len(out.Follows) != 1 {
					return fmt.Errorf("expected one follow, got %d", len(out.Follows))
				}
				return err
			},
			query: "actor=alice.test&limit=1",
		},
		{
			name: "blocks without arguments",
			call: func() error {
				out, err := GraphGetBlocks(context.Background(), c, nil, "")
				if err == nil && out.Blocks[0].Handle != "spam.test" {
					return fmt.Errorf("unexpected block %q", out.Blocks[0].Handle)
				}
				return err
			},
			query: "",
		},
		{
			name: "mutes with limit and cursor",
			call: func() error {
				out, err := GraphGetMutes(context.Background(), c, xrpc.Limit(42), "m1")
				if err == nil && out.Cursor != "m2" {
					return fmt.Errorf("unexpected cursor %q", out.Cursor)
				}
				return err
			},
			query: "limit=42&cursor=m1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			last, _ := sender.LastRequest()
			assert.Equal(t, tt.query, last.URL.RawQuery)
		})
	}
}

func TestActorProfiles(t *testing.T) {
	s := xrpctest.NewServer()
	s.RespondJSON(NSIDActorGetProfile, http.StatusOK, `{"did":"did:plc:abc","handle":"alice.test","displayName":"Alice","followersCount":12,"postsCount":0}`)
	s.RespondJSON(NSIDActorGetProfiles, http.StatusOK, `{"profiles":[{"did":"did:plc:abc","handle":"alice.test"}]}`)
	c, sender := s.Client(xrpctest.Session)

	p, err := ActorGetProfile(context.Background(), c, "alice.test")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.DisplayName)
	require.NotNil(t, p.FollowersCount)
	assert.Equal(t, int64(12), *p.FollowersCount)
	require.NotNil(t, p.PostsCount)
	assert.Nil(t, p.FollowsCount)

	actors := make([]string, 30)
	for i := range actors {
		actors[i] = fmt.Sprintf("did:plc:a%d", i)
	}
	out, err := ActorGetProfiles(context.Background(), c, actors)
	require.NoError(t, err)
	assert.Len(t, out.Profiles, 1)

	last, _ := sender.LastRequest()
	got := last.URL.Query()["actors"]
	assert.Equal(t, actors[:MaxProfiles], got)
}

func TestGraphGetRelationships(t *testing.T) {
	s := xrpctest.NewServer()
	s.RespondJSON(NSIDGraphGetRelationships, http.StatusOK, `{
		"actor": "did:plc:abc",
		"relationships": [
			{"$type": "app.bsky.graph.defs#relationship", "did": "did:plc:b", "following": "at://did:plc:abc/app.bsky.graph.follow/1"},
			{"$type": "app.bsky.graph.defs#notFoundActor", "actor": "gone.test", "notFound": true}
		]
	}`)
	c, sender := s.Client(xrpctest.Session)

	others := make([]string, 40)
	for i := range others {
		others[i] = fmt.Sprintf("did:plc:o%d", i)
	}
	out, err := GraphGetRelationships(context.Background(), c, "did:plc:abc", others)
	require.NoError(t, err)
	require.Len(t, out.Relationships, 2)

	rel, err := out.Relationship(0)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, "did:plc:b", rel.Did)
	assert.Empty(t, rel.FollowedBy)

	rel, err = out.Relationship(1)
	require.NoError(t, err)
	assert.Nil(t, rel)
	var nf GraphDefs_NotFoundActor
	require.NoError(t, out.Relationships[1].Decode(&nf))
	assert.True(t, nf.NotFound)
	assert.Equal(t, "gone.test", nf.Actor)

	last, _ := sender.LastRequest()
	assert.Equal(t, []string{"did:plc:abc"}, last.URL.Query()["actor"])
	assert.Equal(t, others[:MaxRelationshipOthers], last.URL.Query()["others"])
}

const feedBody = `{
	"cursor": "t2",
	"feed": [
		{
			"post": {
				"uri": "at://did:plc:b/app.bsky.feed.post/1",
				"cid": "bafy1",
				"author": {"did": "did:plc:b", "handle": "bob.test"},
				"record": {"$type": "app.bsky.feed.post", "text": "hello", "createdAt": "2024-01-01T00:00:00Z"},
				"embed": {"$type": "app.bsky.embed.images#view", "images": []},
				"likeCount": 3,
				"indexedAt": "2024-01-01T00:00:01Z"
			},
			"reason": {"$type": "app.bsky.feed.defs#reasonRepost", "by": {"did": "did:plc:c", "handle": "carol.test"}, "indexedAt": "2024-01-02T00:00:00Z"}
		},
		{
			"post": {
				"uri": "at://did:plc:b/app.bsky.feed.post/2",
				"cid": "bafy2",
				"author": {"did": "did:plc:b", "handle": "bob.test"},
				"record": {"text": "second", "createdAt": "2024-01-03T00:00:00Z"},
				"indexedAt": "2024-01-03T00:00:01Z"
			}
		}
	]
}`

func TestFeedGetTimeline(t *testing.T) {
	s := xrpctest.NewServer()
	s.RespondJSON(NSIDFeedGetTimeline, http.StatusOK, feedBody)
	c, sender := s.Client(xrpctest.Session)

	out, err := FeedGetTimeline(context.Background(), c, "reverse-chronological", xrpc.Limit(25), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t2", out.Cursor)
	require.Len(t, out.Feed, 2)

	first := out.Feed[0]
	rec, err := first.Post.Post()
	require.NoError(t, err)
	assert.Equal(t, "hello", rec.Text)
	require.NotNil(t, first.Post.Embed)
	assert.True(t, first.Post.Embed.Is("app.bsky.embed.images#view"))
	require.NotNil(t, first.RepostedBy())
	assert.Equal(t, "carol.test", first.RepostedBy().Handle)

	assert.Nil(t, out.Feed[1].RepostedBy())
	assert.Nil(t, out.Feed[1].Post.Embed)

	last, _ := sender.LastRequest()
	assert.Equal(t, "algorithm=reverse-chronological&limit=25&cursor=t1", last.URL.RawQuery)
}

func TestFeedGetAuthorFeed(t *testing.T) {
	s := xrpctest.NewServer()
	s.RespondJSON(NSIDFeedGetAuthorFeed, http.StatusOK, feedBody)
	c, sender := s.Client(xrpctest.Session)

	_, err := FeedGetAuthorFeed(context.Background(), c, "bob.test", xrpc.Limit(101), "", AuthorFeedPostsNoReplies, true)
	require.NoError(t, err)
	last, _ := sender.LastRequest()
	assert.Equal(t, "actor=bob.test&limit=100&filter=posts_no_replies&includePins=true", last.URL.RawQuery)

	_, err = FeedGetAuthorFeed(context.Background(), c, "bob.test", nil, "", "", false)
	require.NoError(t, err)
	last, _ = sender.LastRequest()
	assert.Equal(t, "actor=bob.test", last.URL.RawQuery)
}

func TestFeedGetLikesAndPosts(t *testing.T) {
	s := xrpctest.NewServer()
	s.RespondJSON(NSIDFeedGetLikes, http.StatusOK, `{"uri":"at://did:plc:b/app.bsky.feed.post/1","likes":[{"indexedAt":"x","createdAt":"y","actor":{"did":"did:plc:c","handle":"carol.test"}}]}`)
	s.Handle(NSIDFeedGetPosts, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"posts":[],"n":%d}`, len(r.URL.Query()["uris"]))
	})
	c, sender := s.Client(xrpctest.Session)

	likes, err := FeedGetLikes(context.Background(), c, "at://did:plc:b/app.bsky.feed.post/1", "bafy1", nil, "")
	require.NoError(t, err)
	require.Len(t, likes.Likes, 1)
	assert.Equal(t, "carol.test", likes.Likes[0].Actor.Handle)
	last, _ := sender.LastRequest()
	assert.Equal(t, "uri=at://did:plc:b/app.bsky.feed.post/1&cid=bafy1", last.URL.RawQuery)

	uris := make([]string, 26)
	for i := range uris {
		uris[i] = fmt.Sprintf("at://did:plc:b/app.bsky.feed.post/%d", i)
	}
	posts, err := FeedGetPosts(context.Background(), c, uris)
	require.NoError(t, err)
	assert.Empty(t, posts.Posts)
	last, _ = sender.LastRequest()
	assert.Equal(t, uris[:MaxPosts], last.URL.Query()["uris"])
}

func TestAppBskyPreconditions(t *testing.T) {
	s := xrpctest.NewServer()
	c, sender := s.Client(xrpc.SessionSnapshot{Endpoint: xrpctest.Endpoint})

	_, err := GraphGetFollowers(context.Background(), c, "alice.test", nil, "")
	assert.ErrorIs(t, err, xrpc.ErrMissingSession)
	_, err = FeedGetTimeline(context.Background(), c, "", nil, "")
	assert.Equal(t, apperrors.KindPrecondition, apperrors.KindOf(err))
	assert.Empty(t, sender.Requests())

	c, _ = s.Client(xrpc.SessionSnapshot{AccessJwt: "tok"})
	_, err = ActorGetProfile(context.Background(), c, "alice.test")
	assert.ErrorIs(t, err, xrpc.ErrInvalidEndpoint)
	assert.Equal(t, apperrors.KindConstruction, apperrors.KindOf(err))
}

func TestAppBskyServerError(t *testing.T) {
	s := xrpctest.NewServer()
	s.Handle(NSIDActorGetProfile, func(w http.ResponseWriter, r *http.Request) {
		xrpctest.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Profile not found")
	})
	c, _ := s.Client(xrpctest.Session)

	_, err := ActorGetProfile(context.Background(), c, "nobody.test")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindTransport, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "Profile not found")
	var respErr *httpclient.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusBadRequest, respErr.StatusCode)
	assert.Equal(t, "InvalidRequest", respErr.Name)
}
