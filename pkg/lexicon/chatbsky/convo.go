package chatbsky

import (
	"context"

	"github.com/skylex-dev/skylex/pkg/lexicon/lexutil"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

const (
	NSIDConvoGetConvo             = "chat.bsky.convo.getConvo"
	NSIDConvoGetConvoForMembers   = "chat.bsky.convo.getConvoForMembers"
	NSIDConvoListConvos           = "chat.bsky.convo.listConvos"
	NSIDConvoGetMessages          = "chat.bsky.convo.getMessages"
	NSIDConvoSendMessage          = "chat.bsky.convo.sendMessage"
	NSIDConvoDeleteMessageForSelf = "chat.bsky.convo.deleteMessageForSelf"
	NSIDConvoLeaveConvo           = "chat.bsky.convo.leaveConvo"
	NSIDConvoMuteConvo            = "chat.bsky.convo.muteConvo"
	NSIDConvoUnmuteConvo          = "chat.bsky.convo.unmuteConvo"
	NSIDConvoUpdateRead           = "chat.bsky.convo.updateRead"
)

// MaxMembers is the most members accepted by chat.bsky.convo.getConvoForMembers.
const MaxMembers = 10

const (
	MinLimit = 1
	MaxLimit = 100
)

// Convo list filters.
const (
	ReadStateUnread = "unread"
	StatusRequest   = "request"
	StatusAccepted  = "accepted"
)

// ConvoOutput wraps the single convo returned by most convo operations.
type ConvoOutput struct {
	Convo *ConvoDefs_ConvoView `json:"convo"`
}

type convoIDInput struct {
	ConvoID string `json:"convoId" validate:"required"`
}

// ConvoGetConvo fetches a conversation by id.
func ConvoGetConvo(ctx context.Context, c *xrpc.Client, convoID string) (*ConvoOutput, error) {
	params := xrpc.Params{}.Add("convoId", convoID)

	var out ConvoOutput
	if err := c.Query(ctx, NSIDConvoGetConvo, params, &out, xrpc.WithChatProxy()); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvoGetConvoForMembers returns the conversation between the session user
// and members, creating it if needed. Only the first MaxMembers are sent.
func ConvoGetConvoForMembers(ctx context.Context, c *xrpc.Client, members []string) (*ConvoOutput, error) {
	params := xrpc.Params{}.AddList("members", members, MaxMembers)

	var out ConvoOutput
	if err := c.Query(ctx, NSIDConvoGetConvoForMembers, params, &out, xrpc.WithChatProxy()); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvoListConvos_Output is the output of chat.bsky.convo.listConvos.
type ConvoListConvos_Output struct {
	Cursor string                 `json:"cursor,omitempty"`
	Convos []*ConvoDefs_ConvoView `json:"convos"`
}

// ConvoListConvos lists the session user's conversations. readState and
// status filter the list when set.
func ConvoListConvos(ctx context.Context, c *xrpc.Client, limit *int64, cursor, readState, status string) (*ConvoListConvos_Output, error) {
	params := xrpc.Params{}.
		AddLimit("limit", limit, MinLimit, MaxLimit).
		AddOptional("cursor", cursor).
		AddOptional("readState", readState).
		AddOptional("status", status)

	var out ConvoListConvos_Output
	if err := c.Query(ctx, NSIDConvoListConvos, params, &out, xrpc.WithChatProxy()); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvoGetMessages_Output is the output of chat.bsky.convo.getMessages. Each
// message is a messageView or a deletedMessageView.
type ConvoGetMessages_Output struct {
	Cursor   string          `json:"cursor,omitempty"`
	Messages []lexutil.Union `json:"messages"`
}

// ConvoGetMessages pages through a conversation, newest first.
func ConvoGetMessages(ctx context.Context, c *xrpc.Client, convoID string, limit *int64, cursor string) (*ConvoGetMessages_Output, error) {
	params := xrpc.Params{}.
		Add("convoId", convoID).
		AddLimit("limit", limit, MinLimit, MaxLimit).
		AddOptional("cursor", cursor)

	var out ConvoGetMessages_Output
	if err := c.Query(ctx, NSIDConvoGetMessages, params, &out, xrpc.WithChatProxy()); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvoSendMessage_Input is the input of chat.bsky.convo.sendMessage.
type ConvoSendMessage_Input struct {
	ConvoID string                  `json:"convoId" validate:"required"`
	Message *ConvoDefs_MessageInput `json:"message" validate:"required"`
}

// ConvoSendMessage posts a message to a conversation.
func ConvoSendMessage(ctx context.Context, c *xrpc.Client, input *ConvoSendMessage_Input) (*ConvoDefs_MessageView, error) {
	var out ConvoDefs_MessageView
	if err := c.Procedure(ctx, NSIDConvoSendMessage, input, &out, xrpc.WithChatProxy()); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvoDeleteMessageForSelf_Input is the input of chat.bsky.convo.deleteMessageForSelf.
type ConvoDeleteMessageForSelf_Input struct {
	ConvoID   string `json:"convoId" validate:"required"`
	MessageID string `json:"messageId" validate:"required"`
}

// ConvoDeleteMessageForSelf hides a message from the session user only.
func ConvoDeleteMessageForSelf(ctx context.Context, c *xrpc.Client, convoID, messageID string) (*ConvoDefs_DeletedMessageView, error) {
	input := &ConvoDeleteMessageForSelf_Input{ConvoID: convoID, MessageID: messageID}

	var out ConvoDefs_DeletedMessageView
	if err := c.Procedure(ctx, NSIDConvoDeleteMessageForSelf, input, &out, xrpc.WithChatProxy()); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvoLeaveConvo_Output is the output of chat.bsky.convo.leaveConvo.
type ConvoLeaveConvo_Output struct {
	ConvoID string `json:"convoId"`
	Rev     string `json:"rev"`
}

// ConvoLeaveConvo leaves a conversation.
func ConvoLeaveConvo(ctx context.Context, c *xrpc.Client, convoID string) (*ConvoLeaveConvo_Output, error) {
	var out ConvoLeaveConvo_Output
	if err := c.Procedure(ctx, NSIDConvoLeaveConvo, &convoIDInput{ConvoID: convoID}, &out, xrpc.WithChatProxy()); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvoMuteConvo mutes a conversation.
func ConvoMuteConvo(ctx context.Context, c *xrpc.Client, convoID string) (*ConvoOutput, error) {
	return convoProcedure(ctx, c, NSIDConvoMuteConvo, &convoIDInput{ConvoID: convoID})
}

// ConvoUnmuteConvo unmutes a conversation.
func ConvoUnmuteConvo(ctx context.Context, c *xrpc.Client, convoID string) (*ConvoOutput, error) {
	return convoProcedure(ctx, c, NSIDConvoUnmuteConvo, &convoIDInput{ConvoID: convoID})
}

// ConvoUpdateRead_Input is the input of chat.bsky.convo.updateRead.
type ConvoUpdateRead_Input struct {
	ConvoID   string `json:"convoId" validate:"required"`
	MessageID string `json:"messageId,omitempty"`
}

// ConvoUpdateRead marks a conversation read, up to messageID when it is set.
func ConvoUpdateRead(ctx context.Context, c *xrpc.Client, convoID, messageID string) (*ConvoOutput, error) {
	return convoProcedure(ctx, c, NSIDConvoUpdateRead, &ConvoUpdateRead_Input{ConvoID: convoID, MessageID: messageID})
}

func convoProcedure(ctx context.Context, c *xrpc.Client, nsid string, input any) (*ConvoOutput, error) {
	var out ConvoOutput
	if err := c.Procedure(ctx, nsid, input, &out, xrpc.WithChatProxy()); err != nil {
		return nil, err
	}
	return &out, nil
}
