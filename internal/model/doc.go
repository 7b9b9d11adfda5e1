// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the client-side data structures for chat sessions,
// messages, documents, and history summaries.
//
// The backend is the source of truth for all of these; the structures here
// are process-local snapshots of it. Message identity is a tagged variant
// (provisional vs. confirmed) so that optimistically appended messages can
// be promoted or rolled back without string-prefix matching on ids.
package model
