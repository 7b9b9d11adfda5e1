// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession is a snapshot of one conversation thread as the backend
// reports it: the ordered message log plus the attached document set.
// ID is empty until the backend assigns one (the first message or upload
// of a new conversation creates it).
type ChatSession struct {
	ID        string     `json:"id"`
	Messages  []Message  `json:"messages"`
	Documents []Document `json:"documents"`
	CreatedAt time.Time  `json:"created_at"`
}

// MessageCount returns the number of messages in the session.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// LastMessage returns the most recent message, or a zero Message if empty.
func (s *ChatSession) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document summarizes one uploaded document. Immutable once created; the
// set for a session only grows via successful uploads and is replaced
// wholesale after each upload.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	TextLength int       `json:"text_length"`
}

// =============================================================================
// HISTORY ENTRY
// =============================================================================

// ChatHistoryEntry is the lightweight per-chat descriptor shown in the
// navigable history list. It is independent of whether the chat is active
// and is refreshed wholesale after any mutation that could change it.
type ChatHistoryEntry struct {
	ID                 string    `json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	LastUpdated        time.Time `json:"last_updated"`
	MessageCount       int       `json:"message_count"`
	DocumentCount      int       `json:"document_count"`
	LastMessagePreview string    `json:"last_message_preview"`

	// Title is a client-side annotation set by a local rename. The backend
	// has no rename endpoint, so this is ephemeral: any history refresh
	// that replaces the entry drops it unless the store carries it over.
	Title string `json:"-"`
}

// DisplayTitle returns the local title if set, otherwise the preview,
// otherwise a default label.
func (e ChatHistoryEntry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	if e.LastMessagePreview != "" {
		return e.LastMessagePreview
	}
	return "New Conversation"
}
