// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/sera-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusSending
	StatusUploading
	StatusLoading
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSending:
		return "Thinking..."
	case StatusUploading:
		return "Uploading..."
	case StatusLoading:
		return "Loading..."
	default:
		return "Unknown"
	}
}

// Shortcut is a key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are the hints shown when idle.
var DefaultShortcuts = []Shortcut{
	{"enter", "send"},
	{"ctrl+u", "upload"},
	{"ctrl+n", "new chat"},
	{"tab", "sidebar"},
	{"ctrl+c", "quit"},
}

// StatusBar is the bottom bar with status and key hints.
type StatusBar struct {
	Width     int
	Status    Status
	Shortcuts []Shortcut
	theme     *styles.Theme
}

// NewStatusBar creates a StatusBar with the default shortcuts.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width:     80,
		Shortcuts: DefaultShortcuts,
		theme:     theme,
	}
}

// SetWidth updates the bar width.
func (b *StatusBar) SetWidth(width int) {
	b.Width = width
}

// SetStatus updates the displayed status.
func (b *StatusBar) SetStatus(s Status) {
	b.Status = s
}

// Render returns the status bar line.
func (b *StatusBar) Render() string {
	var sb strings.Builder

	if b.Status != StatusReady {
		sb.WriteString(b.theme.StatusBusy.Render(b.Status.String()))
	} else {
		sb.WriteString(b.Status.String())
	}
	sb.WriteString("  ")

	for i, s := range b.Shortcuts {
		if i > 0 {
			sb.WriteString(" · ")
		}
		sb.WriteString(b.theme.ShortcutKey.Render(s.Key))
		sb.WriteString(" ")
		sb.WriteString(b.theme.ShortcutDesc.Render(s.Desc))
	}

	return b.theme.StatusBar.Width(b.Width).Render(sb.String())
}
