// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/sera-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Sera"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE IDENTITY
// =============================================================================

// MessageID identifies a message as either provisional (created locally,
// awaiting server confirmation) or confirmed (acknowledged by the backend).
// Exactly one of the two fields is set.
type MessageID struct {
	Local  string `json:"local,omitempty"`
	Server string `json:"server,omitempty"`
}

// NewProvisionalID creates a fresh provisional message id.
func NewProvisionalID() MessageID {
	return MessageID{Local: uuid.NewString()}
}

// ConfirmedID wraps a server-assigned id.
func ConfirmedID(server string) MessageID {
	return MessageID{Server: server}
}

// IsProvisional reports whether the id is still awaiting confirmation.
func (id MessageID) IsProvisional() bool {
	return id.Server == ""
}

// String returns whichever id is set.
func (id MessageID) String() string {
	if id.Server != "" {
		return id.Server
	}
	return id.Local
}

// Equal reports whether two ids refer to the same message. Provisional ids
// compare by local id only; a provisional id never equals a confirmed one.
func (id MessageID) Equal(other MessageID) bool {
	if id.IsProvisional() != other.IsProvisional() {
		return false
	}
	if id.IsProvisional() {
		return id.Local == other.Local
	}
	return id.Server == other.Server
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	ID        MessageID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Pending is true while the message is part of an unresolved round
	// trip. Pending user messages may still be rolled back.
	Pending bool `json:"-"`
}

// NewUserMessage creates a provisional user message.
func NewUserMessage(content string) Message {
	return Message{
		ID:        NewProvisionalID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
		Pending:   true,
	}
}

// NewAssistantMessage creates a confirmed assistant message. Assistant
// messages only ever enter the log from a server response, so they are
// never provisional.
func NewAssistantMessage(serverID, content string, ts time.Time) Message {
	return Message{
		ID:        ConfirmedID(serverID),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: ts,
	}
}

// Confirm returns a copy of the message promoted to a confirmed id.
func (m Message) Confirm(serverID string, ts time.Time) Message {
	m.ID = ConfirmedID(serverID)
	m.Pending = false
	if !ts.IsZero() {
		m.Timestamp = ts
	}
	return m
}

// Preview returns a truncated single-line preview of the message content.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.FirstLine(m.Content), maxLen)
}

// IsEmpty returns true if the message has no content.
func (m Message) IsEmpty() bool {
	return len(m.Content) == 0
}
