// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/sera-tui/internal/model"
)

// Apply is the optimistic update protocol: one pure transition per event.
// Unknown or duplicate events leave the state unchanged. A result that
// raced a session change still resolves its round trip (flags clear,
// provisional artifacts unwind) but its payload is never applied.
func Apply(s State, ev Event) State {
	switch ev := ev.(type) {
	case SetInput:
		s.Input = ev.Text
		return s

	case SendStarted:
		return applySendStarted(s, ev)
	case SendConfirmed:
		return applySendConfirmed(s, ev)
	case SendFailed:
		return applySendFailed(s, ev)

	case UploadStarted:
		return applyUploadStarted(s, ev)
	case UploadSucceeded:
		return applyUploadSucceeded(s, ev)
	case UploadFailed:
		return applyUploadFailed(s, ev)
	case UploadRejected:
		return s.withNotice(NoticeError, ev.Err.Error())
	case DocumentsLoaded:
		return applyDocumentsLoaded(s, ev)

	case SessionLoadStarted:
		s.Loading = true
		s.LoadTarget = ev.Target
		return s
	case SessionLoaded:
		return applySessionLoaded(s, ev)
	case NewChat:
		return resetActive(s.clone())

	case HistoryLoaded:
		return applyHistoryLoaded(s, ev)
	case DeleteConfirmed:
		return applyDeleteConfirmed(s, ev)
	case DeleteFailed:
		return s.withNotice(NoticeError, "Could not delete chat: "+ev.Err.Error())
	case RenameChat:
		return applyRenameChat(s, ev)

	case ShowNotice:
		return s.withNotice(ev.Kind, ev.Text)
	case ClearNotice:
		if s.Notice != nil && s.Notice.Seq == ev.Seq {
			s.Notice = nil
		}
		return s
	}
	return s
}

// =============================================================================
// MESSAGE SEND
// =============================================================================

func applySendStarted(s State, ev SendStarted) State {
	// Single-flight: a submit while a send is pending is ignored, never
	// queued. Empty submits never start a round trip.
	if s.Sending || strings.TrimSpace(ev.Message.Content) == "" {
		return s
	}
	s = s.clone()
	s.Messages = append(s.Messages, ev.Message)
	s.Input = ""
	s.Sending = true
	s.PendingSend = ev.Message.ID
	return s
}

func applySendConfirmed(s State, ev SendConfirmed) State {
	if !s.Sending || !s.PendingSend.Equal(ev.MessageID) {
		return s
	}
	if !ev.Target.Equal(s.Active) {
		return discardSend(s, ev.MessageID)
	}
	s = s.clone()
	sid := ev.Result.SessionID

	// Promote the provisional user message to a confirmed one.
	if i := s.findMessage(ev.MessageID); i >= 0 {
		s.Messages[i] = s.Messages[i].Confirm(confirmedMessageID(sid, i), time.Time{})
	}

	// Append the assistant reply.
	s.Messages = append(s.Messages, model.NewAssistantMessage(
		confirmedMessageID(sid, len(s.Messages)),
		ev.Result.AssistantText,
		ev.Result.Timestamp,
	))

	// Adopt the server-assigned session id (no-op if already confirmed).
	s.Active = ConfirmedKey(sid)
	s.Sending = false
	s.PendingSend = model.MessageID{}
	return s
}

func applySendFailed(s State, ev SendFailed) State {
	if !s.Sending || !s.PendingSend.Equal(ev.MessageID) {
		return s
	}
	if !ev.Target.Equal(s.Active) {
		return discardSend(s, ev.MessageID)
	}
	s = s.clone()
	// Roll back: remove the provisional message and restore its text to
	// the composer so the user can retry without retyping.
	if i := s.findMessage(ev.MessageID); i >= 0 {
		s.Input = s.Messages[i].Content
		s.Messages = append(s.Messages[:i], s.Messages[i+1:]...)
	}
	s.Sending = false
	s.PendingSend = model.MessageID{}
	return s.withNotice(NoticeError, "Message failed to send: "+ev.Err.Error())
}

// discardSend resolves a send whose session changed while the request was
// in flight. The result no longer applies, but the round trip is over: the
// flag clears and the stranded provisional message leaves the log, so the
// composer is never left disabled for a response nobody can see.
func discardSend(s State, id model.MessageID) State {
	s = s.clone()
	if i := s.findMessage(id); i >= 0 {
		s.Messages = append(s.Messages[:i], s.Messages[i+1:]...)
	}
	s.Sending = false
	s.PendingSend = model.MessageID{}
	return s
}

// =============================================================================
// UPLOAD LIFECYCLE
// =============================================================================

func applyUploadStarted(s State, ev UploadStarted) State {
	if s.Uploading {
		return s
	}
	s = s.clone()
	s.Uploading = true
	// Optimistic session creation: a fresh chat adopts a provisional local
	// id and registers a placeholder history entry immediately, mirroring
	// the append-first policy of message sends.
	if s.Active.IsZero() && !ev.Provisional.IsZero() {
		s.Active = ev.Provisional
		s.uploadCreated = true
		placeholder := model.ChatHistoryEntry{
			ID:                 ev.Provisional.String(),
			LastMessagePreview: "Uploading " + ev.Filename,
		}
		s.History = append([]model.ChatHistoryEntry{placeholder}, s.History...)
	}
	return s
}

func applyUploadSucceeded(s State, ev UploadSucceeded) State {
	if !s.Uploading {
		return s
	}
	if !ev.Target.Equal(s.Active) {
		return discardUpload(s, ev.Target)
	}
	s = s.clone()
	sid := ev.Result.SessionID

	// The analysis, when present, enters the log as an assistant message.
	if ev.Result.Analysis != "" {
		s.Messages = append(s.Messages, model.NewAssistantMessage(
			sid+"/analysis/"+strconv.Itoa(len(s.Messages)),
			ev.Result.Analysis,
			time.Now(),
		))
	}

	s.Active = ConfirmedKey(sid)
	s.Uploading = false
	s.uploadCreated = false
	return s
}

func applyUploadFailed(s State, ev UploadFailed) State {
	if !s.Uploading {
		return s
	}
	if !ev.Target.Equal(s.Active) {
		return discardUpload(s, ev.Target)
	}
	s = s.clone()
	s.Uploading = false
	// A failed upload leaves no partial trace: if this upload created the
	// session optimistically, unwind the placeholder registration too.
	if s.uploadCreated && s.Active.IsProvisional() {
		s.History = removeHistoryEntry(s.History, s.Active.String())
		s.Active = Key{}
	}
	s.uploadCreated = false
	return s.withNotice(NoticeError, ev.Err.Error())
}

// discardUpload resolves an upload whose session changed while the request
// was in flight: clear the flag and unwind the placeholder history entry
// its optimistic registration left behind, if any.
func discardUpload(s State, target Key) State {
	s = s.clone()
	s.Uploading = false
	if s.uploadCreated && target.IsProvisional() && !target.IsZero() {
		s.History = removeHistoryEntry(s.History, target.String())
	}
	s.uploadCreated = false
	return s
}

func applyDocumentsLoaded(s State, ev DocumentsLoaded) State {
	if !ev.Target.Equal(s.Active) {
		return s
	}
	if ev.Err != nil {
		return s.withNotice(NoticeError, "Could not refresh documents: "+ev.Err.Error())
	}
	s = s.clone()
	s.Documents = append([]model.Document{}, ev.Documents...)
	return s
}

// =============================================================================
// NAVIGATION
// =============================================================================

func applySessionLoaded(s State, ev SessionLoaded) State {
	// Discard results of an abandoned switch.
	if !s.Loading || !ev.Target.Equal(s.LoadTarget) {
		return s
	}
	s = s.clone()
	s.Loading = false
	s.LoadTarget = Key{}

	// A switch supersedes any in-flight send or upload; their late results
	// are discarded by the stale guards above.
	s.Sending = false
	s.Uploading = false
	s.uploadCreated = false
	s.PendingSend = model.MessageID{}

	if ev.Err != nil {
		// Fail closed: never show a mismatched message/document pairing.
		s.Active = ev.Target
		s.Messages = []model.Message{}
		s.Documents = []model.Document{}
		return s.withNotice(NoticeError, "Could not load chat: "+ev.Err.Error())
	}

	s.Active = ConfirmedKey(ev.Session.ID)
	s.Messages = append([]model.Message{}, ev.Session.Messages...)
	if ev.Documents != nil {
		s.Documents = append([]model.Document{}, ev.Documents...)
	} else {
		s.Documents = []model.Document{}
	}
	return s
}

// resetActive returns the state with the active-session portion reset to a
// fresh new chat. History and local titles survive.
func resetActive(s State) State {
	s.Active = Key{}
	s.Messages = []model.Message{}
	s.Documents = []model.Document{}
	s.Input = ""
	s.Sending = false
	s.Uploading = false
	s.Loading = false
	s.uploadCreated = false
	s.PendingSend = model.MessageID{}
	s.LoadTarget = Key{}
	return s
}

// =============================================================================
// HISTORY
// =============================================================================

func applyHistoryLoaded(s State, ev HistoryLoaded) State {
	if ev.Err != nil {
		// Keep the previous summaries; a failed refresh is not worth
		// blanking the navigation list for.
		return s.withNotice(NoticeError, "Could not refresh history: "+ev.Err.Error())
	}
	s = s.clone()
	s.History = append([]model.ChatHistoryEntry{}, ev.Entries...)
	// Carry local rename annotations across the wholesale replace.
	for i := range s.History {
		if title, ok := s.localTitles[s.History[i].ID]; ok {
			s.History[i].Title = title
		}
	}
	return s
}

func applyDeleteConfirmed(s State, ev DeleteConfirmed) State {
	s = s.clone()
	s.History = removeHistoryEntry(s.History, ev.ID)
	delete(s.localTitles, ev.ID)
	if s.Active.ServerID() == ev.ID {
		s = resetActive(s)
	}
	return s
}

func applyRenameChat(s State, ev RenameChat) State {
	s = s.clone()
	if s.localTitles == nil {
		s.localTitles = make(map[string]string)
	}
	s.localTitles[ev.ID] = ev.Title
	for i := range s.History {
		if s.History[i].ID == ev.ID {
			s.History[i].Title = ev.Title
		}
	}
	return s
}

// =============================================================================
// HELPERS
// =============================================================================

// confirmedMessageID builds a stable server-scoped message id from the
// session id and the message's position in the log.
func confirmedMessageID(sessionID string, index int) string {
	return sessionID + "/" + strconv.Itoa(index)
}

func removeHistoryEntry(entries []model.ChatHistoryEntry, id string) []model.ChatHistoryEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
