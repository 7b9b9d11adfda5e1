// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/sera-tui/internal/model"
	"github.com/jeranaias/sera-tui/internal/ui/styles"
	"github.com/jeranaias/sera-tui/internal/util"
)

// =============================================================================
// HISTORY SIDEBAR COMPONENT
// =============================================================================

// Sidebar renders the chat history list. Selection (cursor) is distinct
// from the active chat: the cursor moves with the keyboard, the active
// chat is the one whose log fills the transcript.
type Sidebar struct {
	Width    int
	Height   int
	Cursor   int
	ActiveID string
	Entries  []model.ChatHistoryEntry
	theme    *styles.Theme
}

// NewSidebar creates a sidebar renderer.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{Width: 32, Height: 20, theme: theme}
}

// SetSize updates the sidebar dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetEntries replaces the history list, clamping the cursor.
func (s *Sidebar) SetEntries(entries []model.ChatHistoryEntry) {
	s.Entries = entries
	s.clampCursor()
}

// MoveCursor moves the selection by delta, clamped to the list bounds.
func (s *Sidebar) MoveCursor(delta int) {
	s.Cursor += delta
	s.clampCursor()
}

// Selected returns the entry under the cursor, or nil when the list is
// empty.
func (s *Sidebar) Selected() *model.ChatHistoryEntry {
	if len(s.Entries) == 0 {
		return nil
	}
	return &s.Entries[s.Cursor]
}

func (s *Sidebar) clampCursor() {
	if s.Cursor >= len(s.Entries) {
		s.Cursor = len(s.Entries) - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// Render returns the sidebar panel.
func (s *Sidebar) Render() string {
	var sb strings.Builder
	sb.WriteString(s.theme.SidebarTitle.Render("Chats"))
	sb.WriteString("\n\n")

	inner := s.Width - 4
	if inner < 10 {
		inner = 10
	}

	if len(s.Entries) == 0 {
		sb.WriteString(s.theme.SessionMeta.Render("No chats yet"))
	}

	// Two visual rows per entry plus a blank line.
	maxVisible := (s.Height - 3) / 3
	if maxVisible < 1 {
		maxVisible = 1
	}
	start := 0
	if s.Cursor >= maxVisible {
		start = s.Cursor - maxVisible + 1
	}
	end := start + maxVisible
	if end > len(s.Entries) {
		end = len(s.Entries)
	}

	for i := start; i < end; i++ {
		e := s.Entries[i]
		title := util.TruncateWidth(e.DisplayTitle(), inner)
		meta := fmt.Sprintf("%d %s", e.MessageCount,
			util.Pluralize(e.MessageCount, "message", "messages"))
		if e.DocumentCount > 0 {
			meta += fmt.Sprintf(" · %d %s", e.DocumentCount,
				util.Pluralize(e.DocumentCount, "doc", "docs"))
		}

		switch {
		case i == s.Cursor:
			sb.WriteString(s.theme.SessionItemSelected.Render(util.PadWidth(title, inner)))
		case e.ID == s.ActiveID:
			sb.WriteString(s.theme.SessionItemActive.Render(title))
		default:
			sb.WriteString(s.theme.SessionItem.Render(title))
		}
		sb.WriteString("\n")
		sb.WriteString(s.theme.SessionMeta.Render(util.TruncateWidth(meta, inner)))
		sb.WriteString("\n\n")
	}

	return s.theme.Sidebar.
		Width(s.Width).
		Height(s.Height).
		Render(sb.String())
}
