package realtime

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Inbound event names accepted from clients.
const (
	EventJoinConversation  = "joinConversation"
	EventLeaveConversation = "leaveConversation"
	EventSendMessage       = "sendMessage"
	EventTyping            = "typing"
	EventStopTyping        = "stopTyping"
	EventMarkRead          = "markRead"
)

// Outbound event names emitted to clients.
const (
	EventOnlineUsers         = "onlineUsers"
	EventNewMessage          = "newMessage"
	EventMessageNotification = "messageNotification"
	EventUserTyping          = "userTyping"
	EventUserStoppedTyping   = "userStoppedTyping"
	EventMessagesRead        = "messagesRead"
	EventError               = "error"
)

var (
	ErrUnknownEvent           = errors.New("realtime: unknown event")
	ErrConversationIDRequired = errors.New("realtime: conversationId is required")
	ErrContentRequired        = errors.New("realtime: content is required")
)

// InboundFrame is the superset of all client frames. Which fields are
// required depends on the event tag; DecodeInbound enforces that.
type InboundFrame struct {
	Event          string `json:"event"`
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

// DecodeInbound parses and validates one client frame at the transport
// boundary, before dispatch.
func DecodeInbound(data []byte) (InboundFrame, error) {
	var frame InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return InboundFrame{}, err
	}
	switch frame.Event {
	case EventJoinConversation, EventLeaveConversation, EventTyping, EventStopTyping, EventMarkRead:
		if strings.TrimSpace(frame.ConversationID) == "" {
			return InboundFrame{}, ErrConversationIDRequired
		}
	case EventSendMessage:
		if strings.TrimSpace(frame.ConversationID) == "" {
			return InboundFrame{}, ErrConversationIDRequired
		}
		if strings.TrimSpace(frame.Content) == "" {
			return InboundFrame{}, ErrContentRequired
		}
	default:
		return InboundFrame{}, ErrUnknownEvent
	}
	return frame, nil
}

// SenderView carries the resolved display fields clients render next to a message.
type SenderView struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// MessageView is the fully-resolved message broadcast to a room.
type MessageView struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	Sender         SenderView `json:"sender"`
	Content        string     `json:"content"`
	ReadBy         []string   `json:"readBy"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type onlineUsersEvent struct {
	Event string   `json:"event"`
	Users []string `json:"users"`
}

type newMessageEvent struct {
	Event   string      `json:"event"`
	Message MessageView `json:"message"`
}

type messageNotificationEvent struct {
	Event          string `json:"event"`
	ConversationID string `json:"conversationId"`
	Sender         string `json:"sender"`
	Content        string `json:"content"`
}

type typingEvent struct {
	Event  string `json:"event"`
	UserID string `json:"userId"`
}

type messagesReadEvent struct {
	Event          string `json:"event"`
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

type errorEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

func encodeOnlineUsers(users []string) []byte {
	if users == nil {
		users = []string{}
	}
	return encode(onlineUsersEvent{Event: EventOnlineUsers, Users: users})
}

func encodeNewMessage(view MessageView) []byte {
	return encode(newMessageEvent{Event: EventNewMessage, Message: view})
}

func encodeMessageNotification(conversationID, sender, content string) []byte {
	return encode(messageNotificationEvent{
		Event:          EventMessageNotification,
		ConversationID: conversationID,
		Sender:         sender,
		Content:        content,
	})
}

func encodeTyping(event, userID string) []byte {
	return encode(typingEvent{Event: event, UserID: userID})
}

func encodeMessagesRead(conversationID, userID string) []byte {
	return encode(messagesReadEvent{Event: EventMessagesRead, ConversationID: conversationID, UserID: userID})
}

func encodeError(message string) []byte {
	return encode(errorEvent{Event: EventError, Message: message})
}

// encode never fails for the event structs above: they contain only
// marshal-safe field types.
func encode(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}
