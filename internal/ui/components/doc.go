// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the sera TUI:
// the header bar, history sidebar, document strip, status bar, notice
// toasts, and the delete confirmation dialog. Components are pure view
// helpers; all state transitions live in the session package.
package components
