// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sera-tui/internal/ui/styles"
	"github.com/jeranaias/sera-tui/internal/util"
)

// =============================================================================
// CONFIRM DIALOG COMPONENT
// =============================================================================

// ConfirmDialog is a two-button modal used for destructive actions.
// Deleting a chat always goes through it.
type ConfirmDialog struct {
	Title   string
	Message string
	// ConfirmSelected is true when the destructive button has focus.
	// It starts false so a double-tap of enter cannot delete.
	ConfirmSelected bool
	theme           *styles.Theme
}

// NewConfirmDialog creates a dialog with the cancel button focused.
func NewConfirmDialog(theme *styles.Theme, title, message string) *ConfirmDialog {
	return &ConfirmDialog{
		Title:   title,
		Message: message,
		theme:   theme,
	}
}

// Toggle switches focus between the two buttons.
func (d *ConfirmDialog) Toggle() {
	d.ConfirmSelected = !d.ConfirmSelected
}

// Render returns the dialog box.
func (d *ConfirmDialog) Render() string {
	confirm := d.theme.DialogButton.Render("Delete")
	cancel := d.theme.DialogButtonActive.Render("Cancel")
	if d.ConfirmSelected {
		confirm = d.theme.DialogButtonActive.Render("Delete")
		cancel = d.theme.DialogButton.Render("Cancel")
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		d.theme.DialogTitle.Render(d.Title),
		"",
		util.TruncateWidth(d.Message, 60),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, cancel, "  ", confirm),
	)
	return d.theme.DialogBox.Render(body)
}
