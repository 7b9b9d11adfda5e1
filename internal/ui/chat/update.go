// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sera-tui/internal/backend"
	"github.com/jeranaias/sera-tui/internal/model"
	"github.com/jeranaias/sera-tui/internal/session"
	"github.com/jeranaias/sera-tui/internal/ui/components"
)

// Update is the Bubble Tea dispatch loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case HistoryMsg:
		return m, m.apply(session.HistoryLoaded{Entries: msg.Entries, Err: msg.Err})

	case SendResultMsg:
		return m.handleSendResult(msg)

	case UploadResultMsg:
		return m.handleUploadResult(msg)

	case DocumentsMsg:
		return m, m.apply(session.DocumentsLoaded{
			Target:    msg.Target,
			Documents: msg.Documents,
			Err:       msg.Err,
		})

	case SessionMsg:
		return m, m.apply(session.SessionLoaded{
			Target:    msg.Target,
			Session:   msg.Session,
			Documents: msg.Documents,
			Err:       msg.Err,
		})

	case DeleteResultMsg:
		if msg.Err != nil {
			return m, m.apply(session.DeleteFailed{Err: msg.Err})
		}
		// The local removal is optimistic bookkeeping; the summaries are
		// still re-fetched wholesale, like after sends and uploads.
		cmd := m.apply(session.DeleteConfirmed{ID: msg.ID})
		return m, tea.Batch(cmd, refreshHistoryCmd(m.client))

	case HealthMsg:
		if msg.Err != nil {
			return m, m.apply(session.ShowNotice{
				Kind: session.NoticeError,
				Text: "Cannot reach the Sera backend. Check that it is running.",
			})
		}
		return m, nil

	case ClearNoticeMsg:
		return m, m.apply(session.ClearNotice{Seq: msg.Seq})
	}

	return m, nil
}

// =============================================================================
// RESULT HANDLERS
// =============================================================================

func (m *Model) handleSendResult(msg SendResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, m.apply(session.SendFailed{
			Target:    msg.Target,
			MessageID: msg.MessageID,
			Err:       msg.Err,
		})
	}
	cmd := m.apply(session.SendConfirmed{
		Target:    msg.Target,
		MessageID: msg.MessageID,
		Result:    *msg.Result,
	})
	// A confirmed send may have created the session or changed its
	// preview; refresh the summaries.
	return m, tea.Batch(cmd, refreshHistoryCmd(m.client))
}

func (m *Model) handleUploadResult(msg UploadResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, m.apply(session.UploadFailed{Target: msg.Target, Err: msg.Err})
	}
	cmd := m.apply(session.UploadSucceeded{Target: msg.Target, Result: *msg.Result})
	confirmed := session.ConfirmedKey(msg.Result.SessionID)
	return m, tea.Batch(cmd,
		refreshDocumentsCmd(m.client, confirmed),
		refreshHistoryCmd(m.client),
	)
}

// =============================================================================
// KEY DISPATCH
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.focus == focusDialog {
		return m.handleDialogKey(msg)
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}
	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleComposerKey(msg)
}

func (m *Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submitMessage()

	case key.Matches(msg, m.keyMap.Upload):
		return m.openUploadPrompt()

	case key.Matches(msg, m.keyMap.NewChat):
		return m, m.apply(session.NewChat{})

	case key.Matches(msg, m.keyMap.ToggleSidebar):
		m.focus = focusSidebar
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	applyCmd := m.apply(session.SetInput{Text: m.input.Value()})
	return m, tea.Batch(cmd, applyCmd)
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.ToggleSidebar), key.Matches(msg, m.keyMap.Cancel):
		m.focus = focusComposer
		m.input.Focus()
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		m.sidebar.MoveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.sidebar.MoveCursor(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Select):
		return m.openSelectedChat()

	case key.Matches(msg, m.keyMap.Delete):
		return m.openDeleteDialog()

	case key.Matches(msg, m.keyMap.Rename):
		return m.openRenamePrompt()

	case key.Matches(msg, m.keyMap.NewChat):
		m.focus = focusComposer
		m.input.Focus()
		return m, m.apply(session.NewChat{})
	}
	return m, nil
}

func (m *Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "tab", "h", "l":
		m.dialog.Toggle()
		return m, nil
	case "enter":
		confirmed := m.dialog.ConfirmSelected
		id := m.pendingDeleteID
		m.closeDialog()
		if confirmed {
			return m, deleteChatCmd(m.client, id)
		}
		return m, nil
	case "esc":
		m.closeDialog()
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.prompt
		renameID := m.renameID
		m.closePrompt()
		switch mode {
		case promptUpload:
			return m.startUpload(value)
		case promptRename:
			if value != "" && renameID != "" {
				return m, m.apply(session.RenameChat{ID: renameID, Title: value})
			}
		}
		return m, nil
	case "esc":
		m.closePrompt()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

// submitMessage runs the optimistic half of a send: validate, append
// synchronously, then dispatch the network call against the session the
// user is in right now.
func (m *Model) submitMessage() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if !m.state.CanSend(text) {
		return m, nil
	}

	userMsg := model.NewUserMessage(text)
	applyCmd := m.apply(session.SendStarted{Message: userMsg})
	target := m.state.Active

	return m, tea.Batch(applyCmd,
		sendMessageCmd(m.client, target, userMsg.ID, strings.TrimSpace(text)))
}

// startUpload validates the picked file locally and, if it passes, runs
// the optimistic half of the upload before any network traffic.
func (m *Model) startUpload(path string) (tea.Model, tea.Cmd) {
	if path == "" {
		return m, nil
	}
	if !m.state.CanUpload() {
		return m, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return m, m.apply(session.UploadRejected{
			Err: &backend.ValidationError{Reason: "Cannot read file: " + err.Error()},
		})
	}
	filename := filepath.Base(path)
	if err := backend.ValidateUpload(filename, info.Size()); err != nil {
		return m, m.apply(session.UploadRejected{Err: err})
	}

	var provisional session.Key
	if m.state.Active.IsZero() {
		provisional = session.NewProvisionalKey()
	}
	applyCmd := m.apply(session.UploadStarted{Provisional: provisional, Filename: filename})
	target := m.state.Active

	return m, tea.Batch(applyCmd,
		uploadDocumentCmd(m.client, target, path, filename))
}

// openSelectedChat starts an atomic switch to the chat under the cursor.
func (m *Model) openSelectedChat() (tea.Model, tea.Cmd) {
	sel := m.sidebar.Selected()
	if sel == nil || sel.ID == m.state.Active.String() {
		return m, nil
	}

	target := session.ConfirmedKey(sel.ID)
	m.focus = focusComposer
	m.input.Focus()
	applyCmd := m.apply(session.SessionLoadStarted{Target: target})
	return m, tea.Batch(applyCmd, loadSessionCmd(m.client, target))
}

func (m *Model) openDeleteDialog() (tea.Model, tea.Cmd) {
	sel := m.sidebar.Selected()
	if sel == nil {
		return m, nil
	}
	m.pendingDeleteID = sel.ID
	m.dialog = components.NewConfirmDialog(m.theme,
		"Delete chat?",
		"Delete \""+sel.DisplayTitle()+"\" and its documents? This cannot be undone.")
	m.focus = focusDialog
	return m, nil
}

func (m *Model) closeDialog() {
	m.dialog = nil
	m.pendingDeleteID = ""
	m.focus = focusSidebar
}

func (m *Model) openUploadPrompt() (tea.Model, tea.Cmd) {
	if !m.state.CanUpload() {
		return m, nil
	}
	m.prompt = promptUpload
	m.input.SetValue("")
	m.input.Placeholder = "Path to .pdf, .docx or .txt file"
	m.input.Focus()
	return m, nil
}

func (m *Model) openRenamePrompt() (tea.Model, tea.Cmd) {
	sel := m.sidebar.Selected()
	if sel == nil {
		return m, nil
	}
	m.renameID = sel.ID
	m.prompt = promptRename
	m.focus = focusComposer
	m.input.SetValue(sel.DisplayTitle())
	m.input.Placeholder = "New chat title"
	m.input.Focus()
	m.input.CursorEnd()
	return m, nil
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.renameID = ""
	m.input.Placeholder = "Ask Sera about your documents..."
	m.input.SetValue(m.state.Input)
	m.input.CursorEnd()
	m.focus = focusComposer
	m.input.Focus()
}
