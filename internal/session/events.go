// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"github.com/jeranaias/sera-tui/internal/backend"
	"github.com/jeranaias/sera-tui/internal/model"
)

// Event is a state transition input. Events are applied through Apply and
// carry everything the transition needs, so Apply stays a pure function.
type Event interface {
	isEvent()
}

// =============================================================================
// COMPOSER EVENTS
// =============================================================================

// SetInput replaces the composer buffer.
type SetInput struct {
	Text string
}

// =============================================================================
// MESSAGE SEND PROTOCOL
// =============================================================================

// SendStarted is the optimistic half of a message round trip: append the
// provisional user message, clear the composer, and mark the session busy.
// The UI applies this synchronously before issuing the network call.
type SendStarted struct {
	Message model.Message // provisional user message (model.NewUserMessage)
}

// SendConfirmed resolves a send successfully: the provisional message is
// promoted, the assistant reply appended, and a server-assigned session id
// adopted if the session was new.
type SendConfirmed struct {
	Target    Key             // session the request was issued against
	MessageID model.MessageID // provisional id to promote
	Result    backend.SendResult
}

// SendFailed rolls a send back: the provisional message is removed and its
// text restored to the composer so retrying costs no retyping.
type SendFailed struct {
	Target    Key
	MessageID model.MessageID
	Err       error
}

// =============================================================================
// UPLOAD LIFECYCLE
// =============================================================================

// UploadStarted marks an upload in flight. For a fresh chat the caller
// allocates Provisional with NewProvisionalKey(); the reducer adopts it as
// the active session and registers a placeholder history entry, mirroring
// the append-first policy of message sends.
type UploadStarted struct {
	Provisional Key // used only when no session exists yet
	Filename    string
}

// UploadSucceeded merges a finished upload: adopt the server session id and
// append the analysis text (if any) as an assistant message. The document
// list and history are refreshed separately, wholesale.
type UploadSucceeded struct {
	Target Key
	Result backend.UploadResult
}

// UploadFailed surfaces an upload error. The message log is untouched; a
// session registered provisionally by this upload is rolled back.
type UploadFailed struct {
	Target Key
	Err    error
}

// UploadRejected surfaces a local validation failure (bad type or size).
// Nothing was sent; nothing changes but the notice.
type UploadRejected struct {
	Err error
}

// DocumentsLoaded replaces the active session's document list wholesale,
// issued after a successful upload. A failed refresh keeps the old list.
type DocumentsLoaded struct {
	Target    Key
	Documents []model.Document
	Err       error
}

// =============================================================================
// SESSION NAVIGATION
// =============================================================================

// SessionLoadStarted marks a session switch in flight.
type SessionLoadStarted struct {
	Target Key
}

// SessionLoaded resolves a session switch. The caller joins the session
// and document fetches before building this event; Err is set if either
// failed, in which case both views fail closed to empty.
type SessionLoaded struct {
	Target    Key
	Session   *model.ChatSession
	Documents []model.Document
	Err       error
}

// NewChat resets to the fresh empty new-chat state.
type NewChat struct{}

// =============================================================================
// HISTORY STORE
// =============================================================================

// HistoryLoaded replaces the history summaries wholesale.
type HistoryLoaded struct {
	Entries []model.ChatHistoryEntry
	Err     error
}

// DeleteConfirmed removes a chat after backend confirmation. If it was the
// active chat, the state resets to a fresh new chat.
type DeleteConfirmed struct {
	ID string
}

// DeleteFailed surfaces a delete error.
type DeleteFailed struct {
	Err error
}

// RenameChat sets a local-only title on a history entry. The backend has
// no rename endpoint; the title is an ephemeral client-side annotation.
type RenameChat struct {
	ID    string
	Title string
}

// =============================================================================
// NOTICES
// =============================================================================

// ShowNotice installs a notification.
type ShowNotice struct {
	Kind NoticeKind
	Text string
}

// ClearNotice dismisses the notice with the given sequence number. A stale
// dismiss (for an already-replaced notice) is a no-op.
type ClearNotice struct {
	Seq int
}

func (SetInput) isEvent()           {}
func (SendStarted) isEvent()        {}
func (SendConfirmed) isEvent()      {}
func (SendFailed) isEvent()         {}
func (UploadStarted) isEvent()      {}
func (UploadSucceeded) isEvent()    {}
func (UploadFailed) isEvent()       {}
func (UploadRejected) isEvent()     {}
func (DocumentsLoaded) isEvent()    {}
func (SessionLoadStarted) isEvent() {}
func (SessionLoaded) isEvent()      {}
func (NewChat) isEvent()            {}
func (HistoryLoaded) isEvent()      {}
func (DeleteConfirmed) isEvent()    {}
func (DeleteFailed) isEvent()       {}
func (RenameChat) isEvent()         {}
func (ShowNotice) isEvent()         {}
func (ClearNotice) isEvent()        {}
