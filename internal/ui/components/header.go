// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/jeranaias/sera-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar showing the app brand and the active chat.
type Header struct {
	Title    string
	Subtitle string
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a Header with default branding.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title:    "Hey Sera",
		Subtitle: "Your policy document assistant",
		Width:    80,
		theme:    theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetSubtitle updates the subtitle, usually the active chat label.
func (h *Header) SetSubtitle(subtitle string) {
	h.Subtitle = subtitle
}

// Render returns the header line.
func (h *Header) Render() string {
	title := h.theme.HeaderTitle.Render(h.Title)
	sub := ""
	if h.Subtitle != "" {
		sub = " " + h.theme.HeaderSubtitle.Render(h.Subtitle)
	}
	line := title + sub
	return h.theme.Header.Width(h.Width).Render(line)
}
