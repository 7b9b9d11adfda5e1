// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the client-owned chat state and the optimistic
// update protocol that mutates it.
//
// All state lives in a single State value. Every mutation is expressed as
// an Event applied through the pure function Apply(State, Event) State, so
// the rollback and reconciliation rules are testable without a rendering
// environment. The UI layer owns the asynchrony: it applies the synchronous
// "optimistic" event before issuing a network call, then applies the
// confirmation or failure event when the call resolves.
//
// Every event that resolves a round trip carries the session Key the
// request targeted. Apply discards results whose key no longer matches the
// active session, so a response arriving after the user switched chats can
// never corrupt the visible state.
package session
