// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/sera-tui/internal/backend"
	"github.com/jeranaias/sera-tui/internal/config"
	"github.com/jeranaias/sera-tui/internal/session"
	"github.com/jeranaias/sera-tui/internal/ui/components"
	"github.com/jeranaias/sera-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS AND PROMPT MODES
// =============================================================================

// focus identifies which region receives key input.
type focus int

const (
	focusComposer focus = iota
	focusSidebar
	focusDialog
)

// promptMode repurposes the composer input for one-off prompts.
type promptMode int

const (
	promptNone promptMode = iota
	promptUpload
	promptRename
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the sera chat interface.
type Model struct {
	// Protocol state. Everything the reducer owns lives here; the fields
	// below are presentation only.
	state session.State

	// Backend client
	client *backend.Client

	// Styling
	theme    *styles.Theme
	renderer *glamour.TermRenderer

	// Dimensions
	width  int
	height int

	// UI components
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	header    *components.Header
	sidebar   *components.Sidebar
	docs      *components.DocumentStrip
	statusBar *components.StatusBar
	toast     *components.Toast
	welcome   *components.Welcome

	// Input routing
	focus       focus
	prompt      promptMode
	showSidebar bool

	// Delete confirmation
	dialog          *components.ConfirmDialog
	pendingDeleteID string

	// Rename target
	renameID string

	// Key bindings
	keyMap KeyMap

	quitting bool
}

// New creates the chat model.
func New(cfg *config.Config, client *backend.Client) *Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Ask Sera about your documents..."
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	vp := viewport.New(80, 20)

	m := &Model{
		state:       session.NewState(),
		client:      client,
		theme:       theme,
		viewport:    vp,
		input:       input,
		spinner:     sp,
		header:      components.NewHeader(theme),
		sidebar:     components.NewSidebar(theme),
		docs:        components.NewDocumentStrip(theme),
		statusBar:   components.NewStatusBar(theme),
		toast:       components.NewToast(theme),
		welcome:     components.NewWelcome(theme),
		showSidebar: cfg.UI.ShowSidebar,
		keyMap:      DefaultKeyMap(),
	}
	m.sidebar.Width = cfg.UI.HistoryWidth
	return m
}

// State exposes the protocol state for the view and tests.
func (m *Model) State() session.State {
	return m.state
}

// Init starts the history refresh and the backend probe.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		refreshHistoryCmd(m.client),
		checkHealthCmd(m.client),
		textinput.Blink,
		m.spinner.Tick,
	)
}

// setSize lays the regions out for a new terminal size.
func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height

	sidebarWidth := 0
	if m.showSidebar {
		sidebarWidth = m.sidebar.Width
	}
	mainWidth := width - sidebarWidth
	if mainWidth < 20 {
		mainWidth = 20
	}

	// Header, document strip, input, status bar.
	chromeLines := 4
	vpHeight := height - chromeLines
	if vpHeight < 3 {
		vpHeight = 3
	}

	m.viewport.Width = mainWidth
	m.viewport.Height = vpHeight
	m.header.SetWidth(width)
	m.docs.SetWidth(mainWidth)
	m.statusBar.SetWidth(width)
	m.toast.SetWidth(mainWidth)
	m.welcome.SetSize(mainWidth, vpHeight)
	m.sidebar.SetSize(sidebarWidth, vpHeight)
	m.input.Width = mainWidth - 4

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(mainWidth-6),
	)
	if err == nil {
		m.renderer = r
	}

	m.refreshViewport()
}

// apply routes an event through the reducer and arms the dismiss timer
// when the transition installed a new notice.
func (m *Model) apply(ev session.Event) tea.Cmd {
	before := m.state.Notice
	m.state = session.Apply(m.state, ev)
	m.syncComponents()

	after := m.state.Notice
	if after != nil && (before == nil || before.Seq != after.Seq) {
		return clearNoticeCmd(after.Seq)
	}
	return nil
}

// syncComponents pushes reducer state into the presentation components.
func (m *Model) syncComponents() {
	m.sidebar.SetEntries(m.state.History)
	m.sidebar.ActiveID = m.state.Active.String()
	// The composer mirrors the reducer's buffer except while it is
	// repurposed as an upload or rename prompt.
	if m.prompt == promptNone && m.input.Value() != m.state.Input {
		m.input.SetValue(m.state.Input)
		m.input.CursorEnd()
	}
	m.refreshViewport()
}
