// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserBubble     lipgloss.Style
	AssistantText  lipgloss.Style
	PendingText    lipgloss.Style
	Timestamp      lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar             lipgloss.Style
	SidebarTitle        lipgloss.Style
	SessionItem         lipgloss.Style
	SessionItemSelected lipgloss.Style
	SessionItemActive   lipgloss.Style
	SessionMeta         lipgloss.Style

	// ==========================================================================
	// DOCUMENT PANEL STYLES
	// ==========================================================================

	DocBadge lipgloss.Style
	DocMeta  lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusBusy   lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// NOTICE TOAST STYLES
	// ==========================================================================

	ToastError   lipgloss.Style
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style

	// ==========================================================================
	// DIALOG STYLES
	// ==========================================================================

	DialogBox          lipgloss.Style
	DialogTitle        lipgloss.Style
	DialogButton       lipgloss.Style
	DialogButtonActive lipgloss.Style

	// ==========================================================================
	// WELCOME SCREEN STYLES
	// ==========================================================================

	WelcomeBox   lipgloss.Style
	WelcomeTitle lipgloss.Style
	WelcomeInfo  lipgloss.Style

	// Spinner
	Spinner lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Messages
	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(TealDeep).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.PendingText = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		Underline(true)

	t.SessionItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SessionItemSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo).
		Bold(true)

	t.SessionItemActive = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.SessionMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Documents
	t.DocBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(TealDeep).
		Padding(0, 1)

	t.DocMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusBusy = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Toasts
	t.ToastError = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(RoseDeep).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.ToastInfo = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(IndigoDeep).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(0, 1)

	t.ToastSuccess = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(TealDeep).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Emerald).
		Padding(0, 1)

	// Dialogs
	t.DialogBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(1, 2)

	t.DialogTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.DialogButton = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.DialogButtonActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 2)

	// Welcome
	t.WelcomeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(1, 4).
		Align(lipgloss.Center)

	t.WelcomeTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.WelcomeInfo = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Indigo)
}
