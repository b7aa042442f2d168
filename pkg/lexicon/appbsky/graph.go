package appbsky

import (
	"context"

	"github.com/skylex-dev/skylex/pkg/lexicon/lexutil"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

const (
	NSIDGraphGetFollowers     = "app.bsky.graph.getFollowers"
	NSIDGraphGetFollows       = "app.bsky.graph.getFollows"
	NSIDGraphGetBlocks        = "app.bsky.graph.getBlocks"
	NSIDGraphGetMutes         = "app.bsky.graph.getMutes"
	NSIDGraphGetRelationships = "app.bsky.graph.getRelationships"
)

// Page size bounds shared by every paginated app.bsky query.
const (
	MinLimit = 1
	MaxLimit = 100
)

// MaxRelationshipOthers is the most actors compared by app.bsky.graph.getRelationships.
const MaxRelationshipOthers = 30

const (
	RelationshipType  = "app.bsky.graph.defs#relationship"
	NotFoundActorType = "app.bsky.graph.defs#notFoundActor"
)

func pageParams(params xrpc.Params, limit *int64, cursor string) xrpc.Params {
	return params.
		AddLimit("limit", limit, MinLimit, MaxLimit).
		AddOptional("cursor", cursor)
}

// GraphGetFollowers_Output is the output of app.bsky.graph.getFollowers.
type GraphGetFollowers_Output struct {
	Subject   *ActorDefs_ProfileView   `json:"subject"`
	Cursor    string                   `json:"cursor,omitempty"`
	Followers []*ActorDefs_ProfileView `json:"followers"`
}

// GraphGetFollowers lists the accounts following actor.
func GraphGetFollowers(ctx context.Context, c *xrpc.Client, actor string, limit *int64, cursor string) (*GraphGetFollowers_Output, error) {
	params := pageParams(xrpc.Params{}.Add("actor", actor), limit, cursor)

	var out GraphGetFollowers_Output
	if err := c.Query(ctx, NSIDGraphGetFollowers, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GraphGetFollows_Output is the output of app.bsky.graph.getFollows.
type GraphGetFollows_Output struct {
	Subject *ActorDefs_ProfileView   `json:"subject"`
	Cursor  string                   `json:"cursor,omitempty"`
	Follows []*ActorDefs_ProfileView `json:"follows"`
}

// GraphGetFollows lists the accounts actor follows.
func GraphGetFollows(ctx context.Context, c *xrpc.Client, actor string, limit *int64, cursor string) (*GraphGetFollows_Output, error) {
	params := pageParams(xrpc.Params{}.Add("actor", actor), limit, cursor)

	var out GraphGetFollows_Output
	if err := c.Query(ctx, NSIDGraphGetFollows, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GraphGetBlocks_Output is the output of app.bsky.graph.getBlocks.
type GraphGetBlocks_Output struct {
	Cursor string                   `json:"cursor,omitempty"`
	Blocks []*ActorDefs_ProfileView `json:"blocks"`
}

// GraphGetBlocks lists the accounts the session user blocks.
func GraphGetBlocks(ctx context.Context, c *xrpc.Client, limit *int64, cursor string) (*GraphGetBlocks_Output, error) {
	params := pageParams(nil, limit, cursor)

	var out GraphGetBlocks_Output
	if err := c.Query(ctx, NSIDGraphGetBlocks, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GraphGetMutes_Output is the output of app.bsky.graph.getMutes.
type GraphGetMutes_Output struct {
	Cursor string                   `json:"cursor,omitempty"`
	Mutes  []*ActorDefs_ProfileView `json:"mutes"`
}

// GraphGetMutes lists the accounts the session user mutes.
func GraphGetMutes(ctx context.Context, c *xrpc.Client, limit *int64, cursor string) (*GraphGetMutes_Output, error) {
	params := pageParams(nil, limit, cursor)

	var out GraphGetMutes_Output
	if err := c.Query(ctx, NSIDGraphGetMutes, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GraphDefs_Relationship is app.bsky.graph.defs#relationship. Following and
// FollowedBy hold the AT URI of the follow record when the edge exists.
type GraphDefs_Relationship struct {
	Did        string `json:"did"`
	Following  string `json:"following,omitempty"`
	FollowedBy string `json:"followedBy,omitempty"`
}

// GraphDefs_NotFoundActor is app.bsky.graph.defs#notFoundActor.
type GraphDefs_NotFoundActor struct {
	Actor    string `json:"actor"`
	NotFound bool   `json:"notFound"`
}

// GraphGetRelationships_Output is the output of app.bsky.graph.getRelationships.
// Each entry is a relationship or a notFoundActor.
type GraphGetRelationships_Output struct {
	Actor         string          `json:"actor,omitempty"`
	Relationships []lexutil.Union `json:"relationships"`
}

// Relationship returns entry i as a relationship, or nil when it is another variant.
func (o *GraphGetRelationships_Output) Relationship(i int) (*GraphDefs_Relationship, error) {
	u := o.Relationships[i]
	if !u.Is(RelationshipType) {
		return nil, nil
	}
	var rel GraphDefs_Relationship
	if err := u.Decode(&rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// GraphGetRelationships compares actor with up to MaxRelationshipOthers other
// accounts; extra accounts are dropped.
func GraphGetRelationships(ctx context.Context, c *xrpc.Client, actor string, others []string) (*GraphGetRelationships_Output, error) {
	params := xrpc.Params{}.
		Add("actor", actor).
		AddList("others", others, MaxRelationshipOthers)

	var out GraphGetRelationships_Output
	if err := c.Query(ctx, NSIDGraphGetRelationships, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
