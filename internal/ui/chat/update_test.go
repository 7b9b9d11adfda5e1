// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sera-tui/internal/backend"
	"github.com/jeranaias/sera-tui/internal/config"
	"github.com/jeranaias/sera-tui/internal/model"
	"github.com/jeranaias/sera-tui/internal/session"
)

func newTestModel() *Model {
	m := New(config.Default(), backend.NewClient("http://127.0.0.1:1"))
	m.setSize(100, 30)
	return m
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func pressEnter(m *Model) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

// =============================================================================
// SEND FLOW
// =============================================================================

func TestSubmitAppendsOptimistically(t *testing.T) {
	m := newTestModel()
	typeText(m, "hello")

	cmd := pressEnter(m)
	if cmd == nil {
		t.Fatal("submit should dispatch a send command")
	}

	s := m.State()
	if len(s.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(s.Messages))
	}
	if !s.Messages[0].Pending {
		t.Error("optimistic message should be pending")
	}
	if !s.Sending {
		t.Error("state should be sending")
	}
	if s.Input != "" {
		t.Errorf("composer should be cleared, got %q", s.Input)
	}
}

func TestEmptySubmitIgnored(t *testing.T) {
	m := newTestModel()
	typeText(m, "   ")
	pressEnter(m)

	s := m.State()
	if len(s.Messages) != 0 || s.Sending {
		t.Error("whitespace-only submit should not start a send")
	}
}

func TestSubmitWhileSendingIgnored(t *testing.T) {
	m := newTestModel()
	typeText(m, "first")
	pressEnter(m)
	typeText(m, "second")
	pressEnter(m)

	if got := len(m.State().Messages); got != 1 {
		t.Errorf("second submit during send should be ignored, got %d messages", got)
	}
}

func TestSendResultConfirms(t *testing.T) {
	m := newTestModel()
	typeText(m, "hello")
	pressEnter(m)

	s := m.State()
	m.Update(SendResultMsg{
		Target:    s.Active,
		MessageID: s.PendingSend,
		Result: &backend.SendResult{
			AssistantText: "Hi there",
			Timestamp:     time.Now(),
			SessionID:     "abc",
		},
	})

	s = m.State()
	if len(s.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(s.Messages))
	}
	if s.Messages[0].Pending {
		t.Error("user message should be confirmed")
	}
	if s.Messages[1].Role != model.RoleAssistant {
		t.Error("second message should be the assistant reply")
	}
	if s.Sending {
		t.Error("sending flag should clear")
	}
	if s.Active.ServerID() != "abc" {
		t.Errorf("active session = %q, want abc", s.Active.ServerID())
	}
}

func TestSendResultRollsBack(t *testing.T) {
	m := newTestModel()
	typeText(m, "hello")
	pressEnter(m)

	s := m.State()
	m.Update(SendResultMsg{
		Target:    s.Active,
		MessageID: s.PendingSend,
		Err:       errors.New("connection refused"),
	})

	s = m.State()
	if len(s.Messages) != 0 {
		t.Error("rolled-back message should be removed")
	}
	if s.Input != "hello" {
		t.Errorf("composer should be restored, got %q", s.Input)
	}
	if s.Notice == nil || s.Notice.Kind != session.NoticeError {
		t.Error("rollback should show an error notice")
	}
}

// =============================================================================
// UPLOAD FLOW
// =============================================================================

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadRejectsBadExtension(t *testing.T) {
	m := newTestModel()
	path := writeTempFile(t, "report.exe", "data")

	m.startUpload(path)

	s := m.State()
	if s.Uploading {
		t.Error("rejected upload must not mark the state uploading")
	}
	if s.Notice == nil || s.Notice.Kind != session.NoticeError {
		t.Error("rejected upload should show an error notice")
	}
	if !s.Active.IsZero() {
		t.Error("rejected upload must not create a session")
	}
}

func TestUploadMissingFileRejected(t *testing.T) {
	m := newTestModel()
	m.startUpload(filepath.Join(t.TempDir(), "nope.pdf"))

	s := m.State()
	if s.Uploading {
		t.Error("unreadable file must not start an upload")
	}
	if s.Notice == nil {
		t.Error("unreadable file should show a notice")
	}
}

func TestUploadCreatesProvisionalSession(t *testing.T) {
	m := newTestModel()
	path := writeTempFile(t, "policy.txt", "leave policy text")

	_, cmd := m.startUpload(path)
	if cmd == nil {
		t.Fatal("valid upload should dispatch a command")
	}

	s := m.State()
	if !s.Uploading {
		t.Error("state should be uploading")
	}
	if !s.Active.IsProvisional() {
		t.Error("fresh chat upload should adopt a provisional session key")
	}
	if len(s.History) != 1 {
		t.Fatalf("placeholder history entry missing, got %d entries", len(s.History))
	}
}

func TestUploadResultFailureUnwindsSession(t *testing.T) {
	m := newTestModel()
	path := writeTempFile(t, "policy.txt", "text")
	m.startUpload(path)

	target := m.State().Active
	m.Update(UploadResultMsg{Target: target, Err: errors.New("boom")})

	s := m.State()
	if s.Uploading {
		t.Error("uploading flag should clear")
	}
	if !s.Active.IsZero() {
		t.Error("failed optimistic upload should unwind the provisional session")
	}
	if len(s.History) != 0 {
		t.Error("placeholder history entry should be removed")
	}
}

// =============================================================================
// NAVIGATION AND DIALOGS
// =============================================================================

func seedHistory(m *Model) {
	m.Update(HistoryMsg{Entries: []model.ChatHistoryEntry{
		{ID: "a", MessageCount: 2, LastMessagePreview: "first chat"},
		{ID: "b", MessageCount: 5, LastMessagePreview: "second chat"},
	}})
}

func TestSidebarOpenChatStartsLoad(t *testing.T) {
	m := newTestModel()
	seedHistory(m)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusSidebar {
		t.Fatal("tab should focus the sidebar")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("selecting a chat should dispatch a load command")
	}

	s := m.State()
	if !s.Loading {
		t.Error("state should be loading")
	}
	if s.LoadTarget.ServerID() != "a" {
		t.Errorf("load target = %q, want a", s.LoadTarget.ServerID())
	}
}

func TestDeleteDialogDefaultsToCancel(t *testing.T) {
	m := newTestModel()
	seedHistory(m)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.focus != focusDialog || m.dialog == nil {
		t.Fatal("ctrl+d should open the delete dialog")
	}

	// Enter with cancel focused must not delete.
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("confirming the cancel button should not dispatch a delete")
	}
	if len(m.State().History) != 2 {
		t.Error("history should be untouched")
	}
}

func TestDeleteDialogConfirm(t *testing.T) {
	m := newTestModel()
	seedHistory(m)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})

	m.Update(tea.KeyMsg{Type: tea.KeyTab}) // focus the delete button
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("confirmed delete should dispatch a command")
	}

	_, refresh := m.Update(DeleteResultMsg{ID: "a"})
	if refresh == nil {
		t.Error("confirmed delete should dispatch a history refresh")
	}
	if len(m.State().History) != 1 {
		t.Error("confirmed delete should remove the history entry")
	}
}

func TestRenamePromptSetsLocalTitle(t *testing.T) {
	m := newTestModel()
	seedHistory(m)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	if m.prompt != promptRename {
		t.Fatal("ctrl+r should open the rename prompt")
	}

	m.input.SetValue("Leave policy notes")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if got := m.State().LocalTitle("a"); got != "Leave policy notes" {
		t.Errorf("local title = %q", got)
	}
}

// =============================================================================
// NOTICES
// =============================================================================

func TestStaleNoticeDismissIgnored(t *testing.T) {
	m := newTestModel()
	m.Update(HistoryMsg{Err: errors.New("down")})

	first := m.State().Notice
	if first == nil {
		t.Fatal("failed refresh should show a notice")
	}

	m.Update(HistoryMsg{Err: errors.New("still down")})
	second := m.State().Notice

	m.Update(ClearNoticeMsg{Seq: first.Seq})
	if m.State().Notice == nil {
		t.Error("stale dismiss should not clear a newer notice")
	}

	m.Update(ClearNoticeMsg{Seq: second.Seq})
	if m.State().Notice != nil {
		t.Error("current dismiss should clear the notice")
	}
}

func TestBackendUnreachableNotice(t *testing.T) {
	m := newTestModel()
	m.Update(HealthMsg{Err: errors.New("dial tcp: connection refused")})

	n := m.State().Notice
	if n == nil || n.Kind != session.NoticeError {
		t.Fatal("failed health probe should show an error notice")
	}
}
