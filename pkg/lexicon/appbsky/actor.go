// Package appbsky implements the app.bsky.* lexicons used by skylex: profiles,
// the social graph and feeds.
package appbsky

import (
	"context"

	"github.com/skylex-dev/skylex/pkg/lexicon/comatproto"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

const (
	NSIDActorGetProfile  = "app.bsky.actor.getProfile"
	NSIDActorGetProfiles = "app.bsky.actor.getProfiles"
)

// MaxProfiles is the most actors accepted by app.bsky.actor.getProfiles.
const MaxProfiles = 25

// ActorDefs_ViewerState is the relationship between the viewer and an actor.
type ActorDefs_ViewerState struct {
	Muted      *bool  `json:"muted,omitempty"`
	BlockedBy  *bool  `json:"blockedBy,omitempty"`
	Blocking   string `json:"blocking,omitempty"`
	Following  string `json:"following,omitempty"`
	FollowedBy string `json:"followedBy,omitempty"`
}

// ActorDefs_ProfileViewBasic is app.bsky.actor.defs#profileViewBasic.
type ActorDefs_ProfileViewBasic struct {
	Did         string                        `json:"did"`
	Handle      string                        `json:"handle"`
	DisplayName string                        `json:"displayName,omitempty"`
	Avatar      string                        `json:"avatar,omitempty"`
	Viewer      *ActorDefs_ViewerState        `json:"viewer,omitempty"`
	Labels      []*comatproto.LabelDefs_Label `json:"labels,omitempty"`
	CreatedAt   string                        `json:"createdAt,omitempty"`
}

// ActorDefs_ProfileView is app.bsky.actor.defs#profileView.
type ActorDefs_ProfileView struct {
	Did         string                        `json:"did"`
	Handle      string                        `json:"handle"`
	DisplayName string                        `json:"displayName,omitempty"`
	Description string                        `json:"description,omitempty"`
	Avatar      string                        `json:"avatar,omitempty"`
	IndexedAt   string                        `json:"indexedAt,omitempty"`
	CreatedAt   string                        `json:"createdAt,omitempty"`
	Viewer      *ActorDefs_ViewerState        `json:"viewer,omitempty"`
	Labels      []*comatproto.LabelDefs_Label `json:"labels,omitempty"`
}

// ActorDefs_ProfileViewDetailed is app.bsky.actor.defs#profileViewDetailed.
type ActorDefs_ProfileViewDetailed struct {
	Did            string                        `json:"did"`
	Handle         string                        `json:"handle"`
	DisplayName    string                        `json:"displayName,omitempty"`
	Description    string                        `json:"description,omitempty"`
	Avatar         string                        `json:"avatar,omitempty"`
	Banner         string                        `json:"banner,omitempty"`
	FollowersCount *int64                        `json:"followersCount,omitempty"`
	FollowsCount   *int64                        `json:"followsCount,omitempty"`
	PostsCount     *int64                        `json:"postsCount,omitempty"`
	IndexedAt      string                        `json:"indexedAt,omitempty"`
	CreatedAt      string                        `json:"createdAt,omitempty"`
	Viewer         *ActorDefs_ViewerState        `json:"viewer,omitempty"`
	Labels         []*comatproto.LabelDefs_Label `json:"labels,omitempty"`
}

// ActorGetProfile fetches the detailed profile of actor, a handle or DID.
func ActorGetProfile(ctx context.Context, c *xrpc.Client, actor string) (*ActorDefs_ProfileViewDetailed, error) {
	params := xrpc.Params{}.Add("actor", actor)

	var out ActorDefs_ProfileViewDetailed
	if err := c.Query(ctx, NSIDActorGetProfile, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActorGetProfiles_Output is the output of app.bsky.actor.getProfiles.
type ActorGetProfiles_Output struct {
	Profiles []*ActorDefs_ProfileViewDetailed `json:"profiles"`
}

// ActorGetProfiles fetches up to MaxProfiles profiles; extra actors are dropped.
func ActorGetProfiles(ctx context.Context, c *xrpc.Client, actors []string) (*ActorGetProfiles_Output, error) {
	params := xrpc.Params{}.AddList("actors", actors, MaxProfiles)

	var out ActorGetProfiles_Output
	if err := c.Query(ctx, NSIDActorGetProfiles, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
