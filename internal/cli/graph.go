package cli

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/skylex-dev/skylex/pkg/lexicon/appbsky"
	"github.com/skylex-dev/skylex/pkg/lexicon/comatproto"
)

// addPageFlags adds --limit and --cursor to a paginated command.
func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("limit", 0, "Page size (1-100); the server default when unset")
	cmd.Flags().String("cursor", "", "Cursor returned by the previous page")
}

// pageFlags returns the limit, nil when unset, and the cursor.
func pageFlags(cmd *cobra.Command) (*int64, string) {
	cursor, _ := cmd.Flags().GetString("cursor")
	if !cmd.Flags().Changed("limit") {
		return nil, cursor
	}
	limit, _ := cmd.Flags().GetInt64("limit")
	return &limit, cursor
}

var resolveCmd = &cobra.Command{
	Use:   "resolve HANDLE",
	Short: "Resolve a handle to its DID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		res, err := comatproto.IdentityResolveHandle(cmd.Context(), c, strings.TrimPrefix(args[0], "@"))
		if err != nil {
			return err
		}
		printOutput(res, func() {
			fmt.Fprintln(out, res.Did)
		})
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile ACTOR...",
	Short: "Show one or more profiles",
	Long: `Show profiles by handle or DID. A single actor uses app.bsky.actor.getProfile;
several are fetched together, at most 25 per call.

Examples:
  skylex profile alice.bsky.social
  skylex profile did:plc:abc123 bob.bsky.social`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			p, err := appbsky.ActorGetProfile(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			printOutput(p, func() { printProfileDetailed(p) })
			return nil
		}
		res, err := appbsky.ActorGetProfiles(cmd.Context(), c, args)
		if err != nil {
			return err
		}
		printOutput(res, func() {
			for i, p := range res.Profiles {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printProfileDetailed(p)
			}
		})
		return nil
	},
}

func printProfileDetailed(p *appbsky.ActorDefs_ProfileViewDetailed) {
	handleLabel.Fprintf(out, "@%s\n", p.Handle)
	printField("Name", p.DisplayName)
	printField("DID", p.Did)
	printField("Bio", oneLine(p.Description))
	if p.FollowersCount != nil {
		printField("Followers", fmt.Sprint(*p.FollowersCount))
	}
	if p.FollowsCount != nil {
		printField("Following", fmt.Sprint(*p.FollowsCount))
	}
	if p.PostsCount != nil {
		printField("Posts", fmt.Sprint(*p.PostsCount))
	}
	if v := p.Viewer; v != nil {
		if v.FollowedBy != "" {
			printField("Follows you", "yes")
		}
		if v.Following != "" {
			printField("You follow", "yes")
		}
	}
}

// filterProfiles keeps the profiles whose handle or display name fuzzily
// matches filter. An empty filter keeps everything.
func filterProfiles(profiles []*appbsky.ActorDefs_ProfileView, filter string) []*appbsky.ActorDefs_ProfileView {
	if filter == "" {
		return profiles
	}
	filter = strings.ToLower(filter)
	var kept []*appbsky.ActorDefs_ProfileView
	for _, p := range profiles {
		if fuzzy.MatchNormalized(filter, strings.ToLower(p.Handle)) ||
			fuzzy.MatchNormalized(filter, strings.ToLower(p.DisplayName)) {
			kept = append(kept, p)
		}
	}
	return kept
}

func printProfiles(profiles []*appbsky.ActorDefs_ProfileView) {
	for _, p := range profiles {
		handleLabel.Fprintf(out, "@%s", p.Handle)
		if p.DisplayName != "" {
			fmt.Fprintf(out, "  %s", p.DisplayName)
		}
		fmt.Fprintf(out, "  %s\n", p.Did)
	}
}

// profileList is the JSON shape of every profile listing command.
type profileList struct {
	Subject  *appbsky.ActorDefs_ProfileView   `json:"subject,omitempty"`
	Cursor   string                           `json:"cursor,omitempty"`
	Profiles []*appbsky.ActorDefs_ProfileView `json:"profiles"`
}

func printProfileList(list profileList) {
	printOutput(list, func() {
		printProfiles(list.Profiles)
		printCursor(list.Cursor)
	})
}

var followersCmd = &cobra.Command{
	Use:   "followers ACTOR",
	Short: "List the followers of an account",
	Long: `List the followers of an account, one page at a time. --filter keeps only
handles and names that fuzzily match the given text, within the fetched page.

Examples:
  skylex followers alice.bsky.social --limit 100
  skylex followers alice.bsky.social --filter bob`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		limit, cursor := pageFlags(cmd)
		filter, _ := cmd.Flags().GetString("filter")
		res, err := appbsky.GraphGetFollowers(cmd.Context(), c, args[0], limit, cursor)
		if err != nil {
			return err
		}
		printProfileList(profileList{Subject: res.Subject, Cursor: res.Cursor, Profiles: filterProfiles(res.Followers, filter)})
		return nil
	},
}

var followsCmd = &cobra.Command{
	Use:   "follows ACTOR",
	Short: "List the accounts an account follows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		limit, cursor := pageFlags(cmd)
		filter, _ := cmd.Flags().GetString("filter")
		res, err := appbsky.GraphGetFollows(cmd.Context(), c, args[0], limit, cursor)
		if err != nil {
			return err
		}
		printProfileList(profileList{Subject: res.Subject, Cursor: res.Cursor, Profiles: filterProfiles(res.Follows, filter)})
		return nil
	},
}

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "List the accounts you block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		limit, cursor := pageFlags(cmd)
		res, err := appbsky.GraphGetBlocks(cmd.Context(), c, limit, cursor)
		if err != nil {
			return err
		}
		printProfileList(profileList{Cursor: res.Cursor, Profiles: res.Blocks})
		return nil
	},
}

var mutesCmd = &cobra.Command{
	Use:   "mutes",
	Short: "List the accounts you mute",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		limit, cursor := pageFlags(cmd)
		res, err := appbsky.GraphGetMutes(cmd.Context(), c, limit, cursor)
		if err != nil {
			return err
		}
		printProfileList(profileList{Cursor: res.Cursor, Profiles: res.Mutes})
		return nil
	},
}

var relationshipsCmd = &cobra.Command{
	Use:   "relationships ACTOR OTHER...",
	Short: "Show follow relationships between an account and others",
	Long: `Show whether ACTOR follows, and is followed by, each OTHER account. At most
30 others are compared per call.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		res, err := appbsky.GraphGetRelationships(cmd.Context(), c, args[0], args[1:])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(res)
			return nil
		}
		for i := range res.Relationships {
			rel, err := res.Relationship(i)
			if err != nil {
				return err
			}
			if rel == nil {
				var nf appbsky.GraphDefs_NotFoundActor
				if err := res.Relationships[i].Decode(&nf); err == nil && nf.Actor != "" {
					fmt.Fprintf(out, "%s  not found\n", nf.Actor)
				}
				continue
			}
			fmt.Fprintf(out, "%s  following=%t  followed_by=%t\n", rel.Did, rel.Following != "", rel.FollowedBy != "")
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{followersCmd, followsCmd, blocksCmd, mutesCmd} {
		addPageFlags(cmd)
	}
	followersCmd.Flags().String("filter", "", "Keep only handles or names that fuzzily match")
	followsCmd.Flags().String("filter", "", "Keep only handles or names that fuzzily match")

	rootCmd.AddCommand(resolveCmd, profileCmd, followersCmd, followsCmd, blocksCmd, mutesCmd, relationshipsCmd)
}
