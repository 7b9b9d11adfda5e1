// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for sera-tui.
//
// Configuration sources (in order of precedence):
//   - Environment variables (SERA_BACKEND_URL, SERA_VERBOSE)
//   - ~/.sera/config.toml
//   - Built-in defaults (localhost backend)
package config
