package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skylex-dev/skylex/pkg/lexicon/appbsky"
)

func printFeed(feed []*appbsky.FeedDefs_FeedViewPost, cursor string) {
	for i, item := range feed {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if by := item.RepostedBy(); by != nil {
			fieldLabel.Fprintf(out, "reposted by @%s\n", by.Handle)
		}
		printPost(item.Post)
	}
	printCursor(cursor)
}

func printPost(p *appbsky.FeedDefs_PostView) {
	if p == nil {
		return
	}
	if p.Author != nil {
		handleLabel.Fprintf(out, "@%s", p.Author.Handle)
	}
	fmt.Fprintf(out, "  %s\n", p.IndexedAt)
	if rec, err := p.Post(); err == nil && rec != nil {
		fmt.Fprintln(out, rec.Text)
	}
	if p.Embed != nil && p.Embed.Type != "" {
		fieldLabel.Fprintf(out, "[%s]\n", p.Embed.Type)
	}
	fmt.Fprintf(out, "%s\n", p.URI)
}

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show your home timeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		limit, cursor := pageFlags(cmd)
		algorithm, _ := cmd.Flags().GetString("algorithm")
		res, err := appbsky.FeedGetTimeline(cmd.Context(), c, algorithm, limit, cursor)
		if err != nil {
			return err
		}
		printOutput(res, func() { printFeed(res.Feed, res.Cursor) })
		return nil
	},
}

var authorFeedCmd = &cobra.Command{
	Use:   "author-feed ACTOR",
	Short: "Show the posts of an account",
	Long: `Show the posts and reposts of an account.

Examples:
  skylex author-feed alice.bsky.social --filter posts_no_replies --pins`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		limit, cursor := pageFlags(cmd)
		filter, _ := cmd.Flags().GetString("filter")
		pins, _ := cmd.Flags().GetBool("pins")
		res, err := appbsky.FeedGetAuthorFeed(cmd.Context(), c, args[0], limit, cursor, filter, pins)
		if err != nil {
			return err
		}
		printOutput(res, func() { printFeed(res.Feed, res.Cursor) })
		return nil
	},
}

var likesCmd = &cobra.Command{
	Use:   "likes URI",
	Short: "List who liked a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		limit, cursor := pageFlags(cmd)
		cid, _ := cmd.Flags().GetString("cid")
		res, err := appbsky.FeedGetLikes(cmd.Context(), c, args[0], cid, limit, cursor)
		if err != nil {
			return err
		}
		printOutput(res, func() {
			for _, like := range res.Likes {
				if like.Actor != nil {
					handleLabel.Fprintf(out, "@%s", like.Actor.Handle)
				}
				fmt.Fprintf(out, "  %s\n", like.CreatedAt)
			}
			printCursor(res.Cursor)
		})
		return nil
	},
}

var postsCmd = &cobra.Command{
	Use:   "posts URI...",
	Short: "Show posts by AT URI",
	Long:  `Show posts by AT URI. At most 25 posts are fetched per call.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		res, err := appbsky.FeedGetPosts(cmd.Context(), c, args)
		if err != nil {
			return err
		}
		printOutput(res, func() {
			for i, p := range res.Posts {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printPost(p)
			}
		})
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{timelineCmd, authorFeedCmd, likesCmd} {
		addPageFlags(cmd)
	}
	timelineCmd.Flags().String("algorithm", "", "Timeline algorithm")
	authorFeedCmd.Flags().String("filter", "", "One of posts_with_replies, posts_no_replies, posts_with_media, posts_and_author_threads")
	authorFeedCmd.Flags().Bool("pins", false, "Include pinned posts")
	likesCmd.Flags().String("cid", "", "Only count likes of this version of the post")

	rootCmd.AddCommand(timelineCmd, authorFeedCmd, likesCmd, postsCmd)
}
