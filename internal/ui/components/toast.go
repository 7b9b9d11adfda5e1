// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Non-blocking notice toasts inspired by lazygit's popup/toast system.
// Toasts render above the status bar and auto-dismiss, letting the user
// keep typing while an error or status message is displayed.
package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sera-tui/internal/session"
	"github.com/jeranaias/sera-tui/internal/ui/styles"
	"github.com/jeranaias/sera-tui/internal/util"
)

// ToastDuration is the auto-dismiss delay for notices.
const ToastDuration = 5 * time.Second

// Toast renders a session notice.
type Toast struct {
	Width int
	theme *styles.Theme
}

// NewToast creates a toast renderer.
func NewToast(theme *styles.Theme) *Toast {
	return &Toast{Width: 80, theme: theme}
}

// SetWidth updates the available render width.
func (t *Toast) SetWidth(width int) {
	t.Width = width
}

// Render returns the toast for the given notice, or "" when there is none.
func (t *Toast) Render(n *session.Notice) string {
	if n == nil {
		return ""
	}

	var style lipgloss.Style
	var icon string
	switch n.Kind {
	case session.NoticeError:
		style = t.theme.ToastError
		icon = "✗"
	case session.NoticeSuccess:
		style = t.theme.ToastSuccess
		icon = "✓"
	default:
		style = t.theme.ToastInfo
		icon = "ℹ"
	}

	maxText := t.Width - 8
	if maxText < 10 {
		maxText = 10
	}
	return style.Render(icon + " " + util.TruncateWidth(n.Text, maxText))
}
