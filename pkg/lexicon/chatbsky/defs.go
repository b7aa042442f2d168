// Package chatbsky implements the chat.bsky.* lexicons. Every call is routed
// through the PDS to the chat service with the atproto-proxy header.
package chatbsky

import (
	"github.com/skylex-dev/skylex/pkg/lexicon/lexutil"
)

const (
	MessageViewType        = "chat.bsky.convo.defs#messageView"
	DeletedMessageViewType = "chat.bsky.convo.defs#deletedMessageView"
)

// ActorDefs_ProfileViewBasic is chat.bsky.actor.defs#profileViewBasic.
type ActorDefs_ProfileViewBasic struct {
	Did          string `json:"did"`
	Handle       string `json:"handle"`
	DisplayName  string `json:"displayName,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
	ChatDisabled *bool  `json:"chatDisabled,omitempty"`
}

// ConvoDefs_MessageViewSender identifies the author of a message.
type ConvoDefs_MessageViewSender struct {
	Did string `json:"did"`
}

// ConvoDefs_MessageInput is a message to send. Facets and embed are not modeled.
type ConvoDefs_MessageInput struct {
	Text string `json:"text" validate:"required"`
}

// ConvoDefs_MessageView is chat.bsky.convo.defs#messageView.
type ConvoDefs_MessageView struct {
	ID     string                       `json:"id"`
	Rev    string                       `json:"rev"`
	Text   string                       `json:"text"`
	Sender *ConvoDefs_MessageViewSender `json:"sender"`
	SentAt string                       `json:"sentAt"`
}

// ConvoDefs_DeletedMessageView is chat.bsky.convo.defs#deletedMessageView.
type ConvoDefs_DeletedMessageView struct {
	ID     string                       `json:"id"`
	Rev    string                       `json:"rev"`
	Sender *ConvoDefs_MessageViewSender `json:"sender"`
	SentAt string                       `json:"sentAt"`
}

// ConvoDefs_ConvoView is chat.bsky.convo.defs#convoView. LastMessage is a
// messageView or a deletedMessageView.
type ConvoDefs_ConvoView struct {
	ID          string                        `json:"id"`
	Rev         string                        `json:"rev"`
	Members     []*ActorDefs_ProfileViewBasic `json:"members"`
	LastMessage *lexutil.Union                `json:"lastMessage,omitempty"`
	Muted       bool                          `json:"muted"`
	Status      string                        `json:"status,omitempty"`
	UnreadCount int64                         `json:"unreadCount"`
}

// IsDeleted reports whether u holds a deletedMessageView.
func IsDeleted(u *lexutil.Union) bool {
	return u.Is(DeletedMessageViewType)
}

// Message decodes u as a messageView. It returns nil for deleted or unknown variants.
func Message(u *lexutil.Union) (*ConvoDefs_MessageView, error) {
	if !u.Is(MessageViewType) {
		return nil, nil
	}
	var m ConvoDefs_MessageView
	if err := u.Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}
