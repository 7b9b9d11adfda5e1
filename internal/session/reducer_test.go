// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/sera-tui/internal/backend"
	"github.com/jeranaias/sera-tui/internal/model"
)

// submit runs the synchronous half of a send the way the UI layer does:
// guard with CanSend, then apply SendStarted. It returns the provisional
// message so tests can resolve the round trip.
func submit(t *testing.T, s State, text string) (State, model.Message) {
	t.Helper()
	if !s.CanSend(text) {
		return s, model.Message{}
	}
	msg := model.NewUserMessage(strings.TrimSpace(text))
	return Apply(s, SendStarted{Message: msg}), msg
}

// =============================================================================
// SEND PROTOCOL
// =============================================================================

func TestSend_OptimisticAppend(t *testing.T) {
	s := NewState()
	s = Apply(s, SetInput{Text: "Hello"})

	s, msg := submit(t, s, s.Input)

	if len(s.Messages) != 1 {
		t.Fatalf("expected 1 message after submit, got %d", len(s.Messages))
	}
	got := s.Messages[0]
	if got.Role != model.RoleUser || got.Content != "Hello" {
		t.Errorf("unexpected optimistic message: %+v", got)
	}
	if !got.ID.IsProvisional() || !got.Pending {
		t.Error("optimistic message should be provisional and pending")
	}
	if s.Input != "" {
		t.Errorf("input should be cleared on submit, got %q", s.Input)
	}
	if !s.Sending {
		t.Error("session should be busy after submit")
	}
	if !s.PendingSend.Equal(msg.ID) {
		t.Error("pending send id should track the provisional message")
	}
}

func TestSend_ConfirmScenario(t *testing.T) {
	// Empty session, submit "Hello", backend returns
	// {response: "Hi", chatId: "abc"}.
	s := NewState()
	s, msg := submit(t, s, "Hello")
	target := s.Active

	s = Apply(s, SendConfirmed{
		Target:    target,
		MessageID: msg.ID,
		Result:    backend.SendResult{AssistantText: "Hi", SessionID: "abc", Timestamp: time.Now()},
	})

	if len(s.Messages) != 2 {
		t.Fatalf("expected [user, assistant], got %d messages", len(s.Messages))
	}
	user, assistant := s.Messages[0], s.Messages[1]
	if user.Content != "Hello" || user.ID.IsProvisional() || user.Pending {
		t.Errorf("user message not confirmed: %+v", user)
	}
	if assistant.Role != model.RoleAssistant || assistant.Content != "Hi" {
		t.Errorf("unexpected assistant message: %+v", assistant)
	}
	if s.Active.ServerID() != "abc" {
		t.Errorf("session id = %q, want abc", s.Active.ServerID())
	}
	if s.Sending {
		t.Error("busy flag should clear on confirmation")
	}
}

func TestSend_RollbackInvariant(t *testing.T) {
	s := NewState()
	s, _ = submit(t, s, "first")
	s = Apply(s, SendConfirmed{
		Target:    Key{},
		MessageID: s.PendingSend,
		Result:    backend.SendResult{AssistantText: "ok", SessionID: "abc"},
	})

	before := append([]model.Message(nil), s.Messages...)
	s, msg := submit(t, s, "doomed message")
	s = Apply(s, SendFailed{
		Target:    ConfirmedKey("abc"),
		MessageID: msg.ID,
		Err:       errors.New("connection refused"),
	})

	if len(s.Messages) != len(before) {
		t.Fatalf("log length changed after rollback: %d != %d", len(s.Messages), len(before))
	}
	for i := range before {
		if s.Messages[i].Content != before[i].Content {
			t.Errorf("message %d changed after rollback", i)
		}
	}
	if s.Input != "doomed message" {
		t.Errorf("input should be restored for retry, got %q", s.Input)
	}
	if s.Sending {
		t.Error("busy flag should clear on failure")
	}
	if s.Notice == nil || s.Notice.Kind != NoticeError {
		t.Error("rollback should surface an error notice")
	}
}

func TestSend_SingleFlight(t *testing.T) {
	s := NewState()
	s, _ = submit(t, s, "one")

	// Rapid repeated triggers while a send is pending.
	for i := 0; i < 5; i++ {
		if s.CanSend("two") {
			t.Fatal("CanSend should be false while a send is in flight")
		}
		s = Apply(s, SendStarted{Message: model.NewUserMessage("two")})
	}

	if len(s.Messages) != 1 {
		t.Errorf("concurrent submits must be ignored, log has %d messages", len(s.Messages))
	}
}

func TestSend_EmptySubmitIgnored(t *testing.T) {
	s := NewState()
	if s.CanSend("   ") {
		t.Error("whitespace-only input should not be sendable")
	}
	s = Apply(s, SendStarted{Message: model.NewUserMessage("   ")})
	if len(s.Messages) != 0 || s.Sending {
		t.Error("empty submit must not start a round trip")
	}
}

func TestSend_StaleResponseDiscarded(t *testing.T) {
	// A send issued against session "abc", resolving after the user
	// switched to session "xyz", must not touch the visible log.
	s := NewState()
	s.Active = ConfirmedKey("abc")
	s, msg := submit(t, s, "for abc")

	s = Apply(s, SessionLoadStarted{Target: ConfirmedKey("xyz")})
	s = Apply(s, SessionLoaded{
		Target: ConfirmedKey("xyz"),
		Session: &model.ChatSession{
			ID:       "xyz",
			Messages: []model.Message{model.NewAssistantMessage("xyz/0", "hi", time.Now())},
		},
		Documents: []model.Document{},
	})

	before := len(s.Messages)
	s = Apply(s, SendConfirmed{
		Target:    ConfirmedKey("abc"),
		MessageID: msg.ID,
		Result:    backend.SendResult{AssistantText: "late", SessionID: "abc"},
	})

	if len(s.Messages) != before {
		t.Error("late response for an inactive session must be discarded")
	}
	if s.Active.ServerID() != "xyz" {
		t.Errorf("active session corrupted: %q", s.Active.ServerID())
	}
}

// =============================================================================
// UPLOAD LIFECYCLE
// =============================================================================

func TestUpload_ValidationShortCircuit(t *testing.T) {
	// report.exe is rejected locally; the log is unchanged and a
	// notification is produced.
	s := NewState()
	err := backend.ValidateUpload("report.exe", 1024)
	if err == nil {
		t.Fatal("expected validation error for .exe")
	}
	if !backend.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	s = Apply(s, UploadRejected{Err: err})

	if len(s.Messages) != 0 {
		t.Error("log must be unchanged after a rejected upload")
	}
	if s.Uploading {
		t.Error("no upload should be in flight")
	}
	if s.Notice == nil || !strings.Contains(s.Notice.Text, "Unsupported file type") {
		t.Errorf("expected unsupported-type notice, got %+v", s.Notice)
	}
}

func TestUpload_NewSessionScenario(t *testing.T) {
	// Upload policy.pdf (9 MiB) with no active session.
	if err := backend.ValidateUpload("policy.pdf", 9*1024*1024); err != nil {
		t.Fatalf("9 MiB pdf should pass validation: %v", err)
	}

	s := NewState()
	prov := NewProvisionalKey()
	s = Apply(s, UploadStarted{Provisional: prov, Filename: "policy.pdf"})

	if !s.Active.Equal(prov) {
		t.Error("fresh chat should adopt the provisional session key")
	}
	if len(s.History) != 1 || s.History[0].ID != prov.String() {
		t.Error("placeholder history entry should be registered immediately")
	}
	if !s.Uploading {
		t.Error("upload busy flag should be set")
	}

	s = Apply(s, UploadSucceeded{
		Target: prov,
		Result: backend.UploadResult{SessionID: "abc", Analysis: "Key insights..."},
	})
	s = Apply(s, DocumentsLoaded{
		Target: ConfirmedKey("abc"),
		Documents: []model.Document{
			{ID: "d1", Filename: "policy.pdf", FileType: ".pdf", FileSize: 9 * 1024 * 1024},
		},
	})

	if s.Active.ServerID() != "abc" {
		t.Errorf("server session id not adopted: %q", s.Active.ServerID())
	}
	if len(s.Documents) != 1 || s.Documents[0].Filename != "policy.pdf" {
		t.Errorf("document list should contain exactly policy.pdf, got %+v", s.Documents)
	}
	if len(s.Messages) != 1 || s.Messages[0].Role != model.RoleAssistant {
		t.Fatalf("analysis should be appended as an assistant message, got %+v", s.Messages)
	}
	if s.Messages[0].Content != "Key insights..." {
		t.Errorf("analysis content = %q", s.Messages[0].Content)
	}
	if s.Uploading {
		t.Error("upload busy flag should clear")
	}
}

func TestUpload_FailureLeavesNoTrace(t *testing.T) {
	s := NewState()
	prov := NewProvisionalKey()
	s = Apply(s, UploadStarted{Provisional: prov, Filename: "policy.pdf"})
	s = Apply(s, UploadFailed{Target: prov, Err: errors.New("upload timed out after 30s")})

	if len(s.Messages) != 0 {
		t.Error("failed upload must not mutate the message log")
	}
	if !s.Active.IsZero() {
		t.Error("provisional session registration should be unwound")
	}
	if len(s.History) != 0 {
		t.Error("placeholder history entry should be removed")
	}
	if s.Notice == nil || s.Notice.Kind != NoticeError {
		t.Error("failure should surface an error notice")
	}
}

func TestUpload_ExistingSessionKeepsLogOnFailure(t *testing.T) {
	s := NewState()
	s.Active = ConfirmedKey("abc")
	s.Messages = []model.Message{model.NewAssistantMessage("abc/0", "hello", time.Now())}

	s = Apply(s, UploadStarted{Filename: "notes.txt"})
	s = Apply(s, UploadFailed{Target: ConfirmedKey("abc"), Err: errors.New("boom")})

	if len(s.Messages) != 1 {
		t.Error("existing log must survive a failed upload")
	}
	if s.Active.ServerID() != "abc" {
		t.Error("existing session must survive a failed upload")
	}
}

// =============================================================================
// SESSION NAVIGATION
// =============================================================================

func TestSwitch_AtomicReplace(t *testing.T) {
	s := NewState()
	s.Active = ConfirmedKey("old")
	s.Messages = []model.Message{model.NewAssistantMessage("old/0", "old msg", time.Now())}
	s.Documents = []model.Document{{ID: "old-doc", Filename: "old.pdf"}}

	target := ConfirmedKey("new")
	s = Apply(s, SessionLoadStarted{Target: target})
	s = Apply(s, SessionLoaded{
		Target: target,
		Session: &model.ChatSession{
			ID: "new",
			Messages: []model.Message{
				model.NewAssistantMessage("new/0", "new msg", time.Now()),
			},
		},
		Documents: []model.Document{{ID: "new-doc", Filename: "new.pdf"}},
	})

	if s.Active.ServerID() != "new" {
		t.Fatalf("active = %q, want new", s.Active.ServerID())
	}
	if len(s.Messages) != 1 || s.Messages[0].Content != "new msg" {
		t.Error("messages not replaced wholesale")
	}
	if len(s.Documents) != 1 || s.Documents[0].ID != "new-doc" {
		t.Error("documents not replaced wholesale")
	}
}

func TestSwitch_FailClosed(t *testing.T) {
	s := NewState()
	s.Active = ConfirmedKey("old")
	s.Messages = []model.Message{model.NewAssistantMessage("old/0", "old msg", time.Now())}
	s.Documents = []model.Document{{ID: "old-doc"}}

	target := ConfirmedKey("gone")
	s = Apply(s, SessionLoadStarted{Target: target})
	s = Apply(s, SessionLoaded{Target: target, Err: backend.ErrNotFound})

	// Never a stale pairing: both views empty together.
	if len(s.Messages) != 0 || len(s.Documents) != 0 {
		t.Error("failed switch must clear both messages and documents")
	}
	if s.Loading {
		t.Error("loading flag should clear")
	}
	if s.Notice == nil {
		t.Error("failed switch should surface a notice")
	}
}

func TestSwitch_AbandonedLoadDiscarded(t *testing.T) {
	s := NewState()
	first := ConfirmedKey("first")
	second := ConfirmedKey("second")

	s = Apply(s, SessionLoadStarted{Target: first})
	s = Apply(s, SessionLoadStarted{Target: second})

	// The first load resolves late; it targets an abandoned switch.
	s = Apply(s, SessionLoaded{
		Target:    first,
		Session:   &model.ChatSession{ID: "first"},
		Documents: []model.Document{},
	})
	if s.Active.ServerID() == "first" {
		t.Error("abandoned switch result must be discarded")
	}

	s = Apply(s, SessionLoaded{
		Target:    second,
		Session:   &model.ChatSession{ID: "second"},
		Documents: []model.Document{},
	})
	if s.Active.ServerID() != "second" {
		t.Errorf("active = %q, want second", s.Active.ServerID())
	}
}

// =============================================================================
// HISTORY STORE
// =============================================================================

func TestHistory_WholesaleRefresh(t *testing.T) {
	s := NewState()
	s = Apply(s, HistoryLoaded{Entries: []model.ChatHistoryEntry{
		{ID: "abc", MessageCount: 2, LastMessagePreview: "Hello"},
	}})

	if len(s.History) != 1 || s.History[0].MessageCount != 2 {
		t.Fatalf("history not replaced: %+v", s.History)
	}

	// A refresh after a send reflects the increment.
	s = Apply(s, HistoryLoaded{Entries: []model.ChatHistoryEntry{
		{ID: "abc", MessageCount: 4, LastMessagePreview: "Hi"},
	}})
	if s.History[0].MessageCount != 4 {
		t.Error("refresh should replace summaries wholesale")
	}
}

func TestHistory_RefreshFailureKeepsOldList(t *testing.T) {
	s := NewState()
	s = Apply(s, HistoryLoaded{Entries: []model.ChatHistoryEntry{{ID: "abc"}}})
	s = Apply(s, HistoryLoaded{Err: errors.New("boom")})

	if len(s.History) != 1 {
		t.Error("failed refresh should keep the previous summaries")
	}
	if s.Notice == nil {
		t.Error("failed refresh should surface a notice")
	}
}

func TestDelete_ActiveChatResets(t *testing.T) {
	// Delete the active chat "abc".
	s := NewState()
	s.Active = ConfirmedKey("abc")
	s.Messages = []model.Message{model.NewAssistantMessage("abc/0", "hi", time.Now())}
	s.Documents = []model.Document{{ID: "d1"}}
	s = Apply(s, HistoryLoaded{Entries: []model.ChatHistoryEntry{{ID: "abc"}, {ID: "xyz"}}})

	s = Apply(s, DeleteConfirmed{ID: "abc"})

	for _, e := range s.History {
		if e.ID == "abc" {
			t.Error("deleted chat should leave the history list")
		}
	}
	if !s.Active.IsZero() || len(s.Messages) != 0 || len(s.Documents) != 0 {
		t.Error("deleting the active chat should reset to a fresh new chat")
	}
}

func TestDelete_InactiveChatKeepsSession(t *testing.T) {
	s := NewState()
	s.Active = ConfirmedKey("abc")
	s.Messages = []model.Message{model.NewAssistantMessage("abc/0", "hi", time.Now())}
	s = Apply(s, HistoryLoaded{Entries: []model.ChatHistoryEntry{{ID: "abc"}, {ID: "xyz"}}})

	s = Apply(s, DeleteConfirmed{ID: "xyz"})

	if s.Active.ServerID() != "abc" || len(s.Messages) != 1 {
		t.Error("deleting an inactive chat must not disturb the active session")
	}
	if len(s.History) != 1 {
		t.Errorf("history should have 1 entry, got %d", len(s.History))
	}
}

func TestRename_LocalOnlySurvivesRefresh(t *testing.T) {
	s := NewState()
	s = Apply(s, HistoryLoaded{Entries: []model.ChatHistoryEntry{{ID: "abc", LastMessagePreview: "Hello"}}})
	s = Apply(s, RenameChat{ID: "abc", Title: "Budget review"})

	if s.History[0].Title != "Budget review" {
		t.Fatal("rename should annotate the history entry")
	}

	// The annotation survives a wholesale refresh.
	s = Apply(s, HistoryLoaded{Entries: []model.ChatHistoryEntry{{ID: "abc", LastMessagePreview: "Hi"}}})
	if s.History[0].Title != "Budget review" {
		t.Error("local rename should be carried across history refreshes")
	}
	if s.History[0].DisplayTitle() != "Budget review" {
		t.Error("display title should prefer the local rename")
	}
}

// =============================================================================
// NOTICES
// =============================================================================

func TestNotice_StaleDismissIgnored(t *testing.T) {
	s := NewState()
	s = Apply(s, ShowNotice{Kind: NoticeError, Text: "first"})
	firstSeq := s.Notice.Seq
	s = Apply(s, ShowNotice{Kind: NoticeError, Text: "second"})

	// The timer armed for the first notice fires late.
	s = Apply(s, ClearNotice{Seq: firstSeq})
	if s.Notice == nil || s.Notice.Text != "second" {
		t.Error("stale dismiss must not clear a newer notice")
	}

	s = Apply(s, ClearNotice{Seq: s.Notice.Seq})
	if s.Notice != nil {
		t.Error("matching dismiss should clear the notice")
	}
}

// =============================================================================
// STALE RESULTS
// =============================================================================

func TestSend_StaleResultStillClearsFlight(t *testing.T) {
	// A send dispatched from a fresh chat races an upload that confirms
	// the session id first. The late send result no longer applies, but
	// the round trip is over: the flag clears and the stranded provisional
	// message leaves the log instead of staying pending forever.
	s := NewState()
	s, msg := submit(t, s, "hello")
	sendTarget := s.Active

	prov := NewProvisionalKey()
	s = Apply(s, UploadStarted{Provisional: prov, Filename: "policy.pdf"})
	s = Apply(s, UploadSucceeded{Target: prov, Result: backend.UploadResult{SessionID: "A"}})

	s = Apply(s, SendConfirmed{
		Target:    sendTarget,
		MessageID: msg.ID,
		Result:    backend.SendResult{AssistantText: "Hi", SessionID: "B", Timestamp: time.Now()},
	})

	if s.Sending {
		t.Error("discarded send result must still clear the sending flag")
	}
	if !s.CanSend("again") {
		t.Error("composer must accept a new message once the round trip resolved")
	}
	if got := len(s.Messages); got != 0 {
		t.Errorf("stranded provisional message should be removed, log has %d", got)
	}
}

func TestSend_StaleFailureStillClearsFlight(t *testing.T) {
	s := NewState()
	s, msg := submit(t, s, "hello")
	sendTarget := s.Active

	prov := NewProvisionalKey()
	s = Apply(s, UploadStarted{Provisional: prov, Filename: "policy.pdf"})
	s = Apply(s, UploadSucceeded{Target: prov, Result: backend.UploadResult{SessionID: "A"}})

	s = Apply(s, SendFailed{Target: sendTarget, MessageID: msg.ID, Err: errors.New("boom")})

	if s.Sending || !s.CanSend("again") {
		t.Error("discarded send failure must still clear the sending flag")
	}
	if got := len(s.Messages); got != 0 {
		t.Errorf("stranded provisional message should be removed, log has %d", got)
	}
}

func TestUpload_StaleResultStillClearsFlight(t *testing.T) {
	// The upload provisionally creates the session, then a send confirms
	// a different server id before the upload resolves. The late upload
	// result is discarded, but Uploading clears and the placeholder
	// history entry unwinds.
	s := NewState()
	prov := NewProvisionalKey()
	s = Apply(s, UploadStarted{Provisional: prov, Filename: "policy.pdf"})

	s, msg := submit(t, s, "hello")
	s = Apply(s, SendConfirmed{
		Target:    prov,
		MessageID: msg.ID,
		Result:    backend.SendResult{AssistantText: "Hi", SessionID: "B", Timestamp: time.Now()},
	})

	s = Apply(s, UploadSucceeded{
		Target: prov,
		Result: backend.UploadResult{SessionID: "A", Analysis: "Summary."},
	})

	if s.Uploading {
		t.Error("discarded upload result must still clear the uploading flag")
	}
	if !s.CanUpload() {
		t.Error("uploads must be possible again once the round trip resolved")
	}
	for _, e := range s.History {
		if e.ID == prov.String() {
			t.Error("placeholder history entry should unwind")
		}
	}
	// The analysis belongs to a session the user is no longer in.
	if got := len(s.Messages); got != 2 {
		t.Errorf("log should hold only the confirmed exchange, got %d messages", got)
	}
}
