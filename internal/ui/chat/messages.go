// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Bubble Tea message types for the chat interface. Every message that
// resolves an asynchronous operation carries the session Key the request
// was issued against, so the reducer can discard results that arrive after
// the user has moved on.
package chat

import (
	"github.com/jeranaias/sera-tui/internal/backend"
	"github.com/jeranaias/sera-tui/internal/model"
	"github.com/jeranaias/sera-tui/internal/session"
)

// =============================================================================
// BACKEND RESULT MESSAGES
// =============================================================================

// HistoryMsg delivers a chat history refresh.
type HistoryMsg struct {
	Entries []model.ChatHistoryEntry
	Err     error
}

// SendResultMsg resolves a message send.
type SendResultMsg struct {
	Target    session.Key
	MessageID model.MessageID
	Result    *backend.SendResult
	Err       error
}

// UploadResultMsg resolves a document upload.
type UploadResultMsg struct {
	Target session.Key
	Result *backend.UploadResult
	Err    error
}

// DocumentsMsg delivers a document list refresh for a session.
type DocumentsMsg struct {
	Target    session.Key
	Documents []model.Document
	Err       error
}

// SessionMsg resolves a session switch. The command joins the session and
// document fetches; Err is set when either failed.
type SessionMsg struct {
	Target    session.Key
	Session   *model.ChatSession
	Documents []model.Document
	Err       error
}

// DeleteResultMsg resolves a chat deletion.
type DeleteResultMsg struct {
	ID  string
	Err error
}

// HealthMsg reports the startup backend probe.
type HealthMsg struct {
	Status *backend.HealthStatus
	Err    error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// ClearNoticeMsg fires when a notice's dismiss timer expires.
type ClearNoticeMsg struct {
	Seq int
}
