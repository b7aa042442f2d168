package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skylex-dev/skylex/pkg/lexicon/chatbsky"
	"github.com/skylex-dev/skylex/pkg/lexicon/lexutil"
)

var convoCmd = &cobra.Command{
	Use:   "convo",
	Short: "Read and send direct messages",
	Long: `Read and send direct messages. Chat calls are proxied by your PDS to the
Bluesky chat service.

Examples:
  skylex convo list --unread
  skylex convo for-members did:plc:abc123
  skylex convo messages CONVO_ID --limit 20
  skylex convo send CONVO_ID "see you at 5"`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func printConvo(c *chatbsky.ConvoDefs_ConvoView) {
	if c == nil {
		return
	}
	handles := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		handles = append(handles, "@"+m.Handle)
	}
	handleLabel.Fprintf(out, "%s", c.ID)
	fmt.Fprintf(out, "  %s", strings.Join(handles, ", "))
	if c.UnreadCount > 0 {
		fieldLabel.Fprintf(out, "  %d unread", c.UnreadCount)
	}
	if c.Muted {
		fmt.Fprint(out, "  (muted)")
	}
	fmt.Fprintln(out)
	if c.LastMessage != nil {
		printMessage(c.LastMessage)
	}
}

func printMessage(u *lexutil.Union) {
	if chatbsky.IsDeleted(u) {
		fmt.Fprintln(out, "  (deleted message)")
		return
	}
	m, err := chatbsky.Message(u)
	if err != nil || m == nil {
		return
	}
	sender := ""
	if m.Sender != nil {
		sender = m.Sender.Did
	}
	fmt.Fprintf(out, "  %s  %s  %s: %s\n", m.ID, m.SentAt, sender, oneLine(m.Text))
}

func printConvoOutput(res *chatbsky.ConvoOutput) {
	printOutput(res, func() { printConvo(res.Convo) })
}

var convoForMembersCmd = &cobra.Command{
	Use:   "for-members MEMBER...",
	Short: "Get or start the conversation with the given members",
	Long:  `Get or start the conversation with the given DIDs. At most 10 members are sent.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		res, err := chatbsky.ConvoGetConvoForMembers(cmd.Context(), c, args)
		if err != nil {
			return err
		}
		printConvoOutput(res)
		return nil
	},
}

var convoGetCmd = &cobra.Command{
	Use:   "get CONVO_ID",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		res, err := chatbsky.ConvoGetConvo(cmd.Context(), c, args[0])
		if err != nil {
			return err
		}
		printConvoOutput(res)
		return nil
	},
}

var convoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		limit, cursor := pageFlags(cmd)
		status, _ := cmd.Flags().GetString("status")
		readState := ""
		if unread, _ := cmd.Flags().GetBool("unread"); unread {
			readState = chatbsky.ReadStateUnread
		}
		res, err := chatbsky.ConvoListConvos(cmd.Context(), c, limit, cursor, readState, status)
		if err != nil {
			return err
		}
		printOutput(res, func() {
			for _, convo := range res.Convos {
				printConvo(convo)
			}
			printCursor(res.Cursor)
		})
		return nil
	},
}

var convoMessagesCmd = &cobra.Command{
	Use:   "messages CONVO_ID",
	Short: "Show the messages of a conversation, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		limit, cursor := pageFlags(cmd)
		res, err := chatbsky.ConvoGetMessages(cmd.Context(), c, args[0], limit, cursor)
		if err != nil {
			return err
		}
		printOutput(res, func() {
			for i := range res.Messages {
				printMessage(&res.Messages[i])
			}
			printCursor(res.Cursor)
		})
		return nil
	},
}

var convoSendCmd = &cobra.Command{
	Use:   "send CONVO_ID TEXT...",
	Short: "Send a message",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		msg, err := chatbsky.ConvoSendMessage(cmd.Context(), c, &chatbsky.ConvoSendMessage_Input{
			ConvoID: args[0],
			Message: &chatbsky.ConvoDefs_MessageInput{Text: strings.Join(args[1:], " ")},
		})
		if err != nil {
			return err
		}
		printOutput(msg, func() {
			okLabel.Fprintln(out, "✓ Message sent")
			printField("Message ID", msg.ID)
		})
		return nil
	},
}

var convoDeleteCmd = &cobra.Command{
	Use:   "delete CONVO_ID MESSAGE_ID",
	Short: "Delete a message for yourself",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		res, err := chatbsky.ConvoDeleteMessageForSelf(cmd.Context(), c, args[0], args[1])
		if err != nil {
			return err
		}
		printOutput(res, func() {
			okLabel.Fprintf(out, "✓ Message %s deleted\n", res.ID)
		})
		return nil
	},
}

var convoLeaveCmd = &cobra.Command{
	Use:   "leave CONVO_ID",
	Short: "Leave a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		res, err := chatbsky.ConvoLeaveConvo(cmd.Context(), c, args[0])
		if err != nil {
			return err
		}
		printOutput(res, func() {
			okLabel.Fprintf(out, "✓ Left %s\n", res.ConvoID)
		})
		return nil
	},
}

var convoMuteCmd = &cobra.Command{
	Use:   "mute CONVO_ID",
	Short: "Mute a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		res, err := chatbsky.ConvoMuteConvo(cmd.Context(), c, args[0])
		if err != nil {
			return err
		}
		printConvoOutput(res)
		return nil
	},
}

var convoUnmuteCmd = &cobra.Command{
	Use:   "unmute CONVO_ID",
	Short: "Unmute a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		res, err := chatbsky.ConvoUnmuteConvo(cmd.Context(), c, args[0])
		if err != nil {
			return err
		}
		printConvoOutput(res)
		return nil
	},
}

var convoReadCmd = &cobra.Command{
	Use:   "read CONVO_ID [MESSAGE_ID]",
	Short: "Mark a conversation read, up to a message when given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		messageID := ""
		if len(args) == 2 {
			messageID = args[1]
		}
		res, err := chatbsky.ConvoUpdateRead(cmd.Context(), c, args[0], messageID)
		if err != nil {
			return err
		}
		printConvoOutput(res)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Manage your chat account",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var chatExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your chat data as JSON lines",
	Long: `Export every chat record of your account as JSON lines, to --out or stdout.

Example:
  skylex chat export --out chat.jsonl`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		data, err := chatbsky.ActorExportAccountData(cmd.Context(), c)
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("out")
		return writeOutput(file, data)
	},
}

var chatDeleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Delete your chat account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return errors.New("this deletes every message of your chat account; pass --yes to confirm")
		}
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		if err := chatbsky.ActorDeleteAccount(cmd.Context(), c); err != nil {
			return err
		}
		if jsonOutput {
			printJSON(map[string]int{"result": 1})
		} else {
			okLabel.Fprintln(out, "✓ Chat account deleted")
		}
		return nil
	},
}

// writeOutput writes data to file, or to stdout when file is empty or "-".
func writeOutput(file string, data []byte) error {
	if file == "" || file == "-" {
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(file, data, 0o600); err != nil {
		return fmt.Errorf("unable to write %s: %w", file, err)
	}
	if jsonOutput {
		printJSON(map[string]any{"file": file, "bytes": len(data)})
	} else {
		okLabel.Fprintf(out, "✓ Wrote %d bytes to %s\n", len(data), file)
	}
	return nil
}

func init() {
	addPageFlags(convoListCmd)
	addPageFlags(convoMessagesCmd)
	convoListCmd.Flags().Bool("unread", false, "Only conversations with unread messages")
	convoListCmd.Flags().String("status", "", "Only conversations with this status (request or accepted)")

	convoCmd.AddCommand(convoForMembersCmd, convoGetCmd, convoListCmd, convoMessagesCmd, convoSendCmd,
		convoDeleteCmd, convoLeaveCmd, convoMuteCmd, convoUnmuteCmd, convoReadCmd)

	chatExportCmd.Flags().StringP("out", "o", "", "File to write; stdout when unset")
	chatDeleteAccountCmd.Flags().Bool("yes", false, "Confirm the deletion")
	chatCmd.AddCommand(chatExportCmd, chatDeleteAccountCmd)

	rootCmd.AddCommand(convoCmd, chatCmd)
}
