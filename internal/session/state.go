// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/jeranaias/sera-tui/internal/model"
)

// =============================================================================
// NOTICES
// =============================================================================

// NoticeKind classifies a user-visible notification.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeError
	NoticeSuccess
)

// Notice is a transient, auto-dismissing notification. Seq lets the UI's
// dismiss timer clear exactly the notice it was armed for and not a newer
// one that replaced it.
type Notice struct {
	Seq  int
	Kind NoticeKind
	Text string
}

// =============================================================================
// STATE
// =============================================================================

// State is the complete client-owned chat state: the active session's
// message log and document set, the history summaries, the composer
// buffer, and the in-flight flags for the three asynchronous operations.
type State struct {
	// Active session. Zero key = fresh new chat (id not yet assigned).
	Active Key

	// Active session contents. Replaced wholesale on session switch.
	Messages  []model.Message
	Documents []model.Document

	// History summaries, replaced wholesale on every refresh.
	History []model.ChatHistoryEntry

	// Composer buffer.
	Input string

	// Round-trip flags. At most one send and one upload per session may be
	// in flight; session loads replace everything when they land.
	Sending   bool
	Uploading bool
	Loading   bool

	// The provisional user message awaiting confirmation, if any.
	PendingSend model.MessageID

	// The session a pending switch is loading, used to discard results of
	// an abandoned switch.
	LoadTarget Key

	// Current notification, if any.
	Notice    *Notice
	noticeSeq int

	// True while the in-flight upload is the one that registered the
	// active session provisionally; its failure unwinds the registration.
	uploadCreated bool

	// Local-only rename annotations by server session id, carried across
	// wholesale history refreshes. Never sent to the backend.
	localTitles map[string]string
}

// NewState returns the fresh new-chat state.
func NewState() State {
	return State{
		Messages:  []model.Message{},
		Documents: []model.Document{},
		History:   []model.ChatHistoryEntry{},
	}
}

// CanSend reports whether a submit of text may start a round trip: the
// trimmed text must be non-empty and no other send may be in flight.
func (s State) CanSend(text string) bool {
	return strings.TrimSpace(text) != "" && !s.Sending
}

// CanUpload reports whether an upload may start.
func (s State) CanUpload() bool {
	return !s.Uploading
}

// Busy reports whether any round trip is in flight.
func (s State) Busy() bool {
	return s.Sending || s.Uploading || s.Loading
}

// LocalTitle returns the local rename for a session id, if any.
func (s State) LocalTitle(id string) string {
	return s.localTitles[id]
}

// clone returns a copy of the state with freshly allocated containers, so
// transitions never alias the slices of the state they were derived from.
func (s State) clone() State {
	out := s
	out.Messages = append([]model.Message(nil), s.Messages...)
	out.Documents = append([]model.Document(nil), s.Documents...)
	out.History = append([]model.ChatHistoryEntry(nil), s.History...)
	if s.localTitles != nil {
		out.localTitles = make(map[string]string, len(s.localTitles))
		for k, v := range s.localTitles {
			out.localTitles[k] = v
		}
	}
	return out
}

// withNotice returns the state with a new notice installed.
func (s State) withNotice(kind NoticeKind, text string) State {
	s.noticeSeq++
	s.Notice = &Notice{Seq: s.noticeSeq, Kind: kind, Text: text}
	return s
}

// findMessage returns the index of the message with the given id, or -1.
func (s State) findMessage(id model.MessageID) int {
	for i, m := range s.Messages {
		if m.ID.Equal(id) {
			return i
		}
	}
	return -1
}
