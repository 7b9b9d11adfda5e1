// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sera-tui/internal/model"
	"github.com/jeranaias/sera-tui/internal/ui/components"
)

// View renders the full interface.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Starting...\n"
	}

	var main string
	if len(m.state.Messages) == 0 && !m.state.Loading {
		main = m.welcome.Render()
	} else {
		main = m.viewport.View()
	}

	docStrip := m.docs.Render(m.state.Documents)
	if docStrip == "" {
		docStrip = " "
	}

	body := main
	if m.showSidebar {
		m.sidebar.ActiveID = m.state.Active.String()
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.Render(), main)
	}

	sections := []string{
		m.header.Render(),
		docStrip,
		body,
		m.composerView(),
		m.statusView(),
	}

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.focus == focusDialog && m.dialog != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.dialog.Render())
	}
	return view
}

// composerView renders the input row, with the toast overlaid above it
// when a notice is showing.
func (m *Model) composerView() string {
	var rows []string
	if toast := m.toast.Render(m.state.Notice); toast != "" {
		rows = append(rows, toast)
	}

	input := m.input.View()
	if m.state.Sending {
		input = m.spinner.View() + " " + input
	}
	rows = append(rows, m.theme.InputContainer.Width(m.width).Render(input))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) statusView() string {
	switch {
	case m.state.Sending:
		m.statusBar.SetStatus(components.StatusSending)
	case m.state.Uploading:
		m.statusBar.SetStatus(components.StatusUploading)
	case m.state.Loading:
		m.statusBar.SetStatus(components.StatusLoading)
	default:
		m.statusBar.SetStatus(components.StatusReady)
	}
	return m.statusBar.Render()
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshViewport rebuilds the transcript and keeps the view pinned to the
// newest message.
func (m *Model) refreshViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderTranscript() string {
	if len(m.state.Messages) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, msg := range m.state.Messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderMessage(msg))
	}
	return sb.String()
}

func (m *Model) renderMessage(msg model.Message) string {
	label := m.theme.AssistantLabel.Render(msg.Role.DisplayName())
	if msg.Role == model.RoleUser {
		label = m.theme.UserLabel.Render(msg.Role.DisplayName())
	}

	ts := ""
	if !msg.Timestamp.IsZero() {
		ts = " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}

	body := msg.Content
	switch {
	case msg.Pending:
		body = m.theme.PendingText.Render(msg.Content + " …")
	case msg.Role == model.RoleAssistant && m.renderer != nil:
		if rendered, err := m.renderer.Render(msg.Content); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}

	return label + ts + "\n" + body + "\n"
}
