// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "github.com/google/uuid"

// Key identifies a chat session on the client. Like message ids, session
// identity is a tagged variant: a session created optimistically by an
// upload carries a local key until the backend assigns a real id. The zero
// Key means "fresh new chat, no session yet".
type Key struct {
	Local  string
	Server string
}

// NewProvisionalKey creates a fresh provisional session key.
func NewProvisionalKey() Key {
	return Key{Local: uuid.NewString()}
}

// ConfirmedKey wraps a server-assigned session id.
func ConfirmedKey(id string) Key {
	return Key{Server: id}
}

// IsZero reports whether no session exists yet.
func (k Key) IsZero() bool {
	return k.Local == "" && k.Server == ""
}

// IsProvisional reports whether the session has no server id yet.
func (k Key) IsProvisional() bool {
	return k.Server == "" && k.Local != ""
}

// ServerID returns the backend id, or empty for provisional/zero keys.
func (k Key) ServerID() string {
	return k.Server
}

// String returns whichever id is set.
func (k Key) String() string {
	if k.Server != "" {
		return k.Server
	}
	return k.Local
}

// Equal reports whether two keys refer to the same session.
func (k Key) Equal(other Key) bool {
	if k.Server != "" || other.Server != "" {
		return k.Server == other.Server
	}
	return k.Local == other.Local
}
