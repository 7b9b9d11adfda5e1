// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sera-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN COMPONENT
// =============================================================================

// Welcome renders the empty-transcript placeholder for a fresh chat.
type Welcome struct {
	Width  int
	Height int
	theme  *styles.Theme
}

// NewWelcome creates a welcome renderer.
func NewWelcome(theme *styles.Theme) *Welcome {
	return &Welcome{Width: 80, Height: 20, theme: theme}
}

// SetSize updates the render area.
func (w *Welcome) SetSize(width, height int) {
	w.Width = width
	w.Height = height
}

// Render returns the centered welcome box.
func (w *Welcome) Render() string {
	box := w.theme.WelcomeBox.Render(
		lipgloss.JoinVertical(lipgloss.Center,
			w.theme.WelcomeTitle.Render("Hey Sera"),
			"",
			w.theme.WelcomeInfo.Render("Ask about your policy documents,"),
			w.theme.WelcomeInfo.Render("or press ctrl+u to upload one."),
			"",
			w.theme.WelcomeInfo.Render("Accepted: .pdf .docx .txt up to 10 MB"),
		),
	)
	return lipgloss.Place(w.Width, w.Height, lipgloss.Center, lipgloss.Center, box)
}
