// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main Bubble Tea model for the sera TUI.
//
// The package is a thin shell around the session package: key presses and
// backend results become session events, the session reducer produces the
// next state, and the view renders it. All protocol decisions (optimistic
// appends, rollbacks, stale-result discards) live in the reducer; this
// package only wires commands and paints.
package chat
